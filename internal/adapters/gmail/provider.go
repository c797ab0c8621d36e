package gmail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

var errNoPayload = errors.New("message has no payload")

// Connector opens Gmail providers for authorized credentials
type Connector struct {
	auth     *Authenticator
	endpoint string
	logger   *zap.Logger
}

// NewConnector creates a new connector. A non-empty endpoint overrides the
// Gmail API base URL.
func NewConnector(auth *Authenticator, endpoint string, logger *zap.Logger) *Connector {
	return &Connector{
		auth:     auth,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Connect creates a Gmail service authorized by cred
func (c *Connector) Connect(ctx context.Context, cred *core.Credential) (core.MailProvider, error) {
	if cred == nil {
		return nil, fmt.Errorf("no credential")
	}

	// the token source outlives the request context of the caller
	httpClient := oauth2.NewClient(context.WithoutCancel(ctx), c.auth.tokenSource(context.WithoutCancel(ctx), cred))

	// Create the service
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return NewProvider(service, c.logger), nil
}

// Provider reads message metadata through the Gmail API
type Provider struct {
	service *gmail.Service
	logger  *zap.Logger
}

// NewProvider creates a new Gmail provider
func NewProvider(service *gmail.Service, logger *zap.Logger) *Provider {
	return &Provider{
		service: service,
		logger:  logger,
	}
}

// ListMessageIDs returns the most recent message ids
func (p *Provider) ListMessageIDs(ctx context.Context, max int) ([]string, error) {
	resp, err := p.service.Users.Messages.List(userID).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}

	p.logger.Debug("Listed messages", zap.Int("count", len(ids)))
	return ids, nil
}

// GetHeaders fetches message metadata and returns the named headers
func (p *Provider) GetHeaders(ctx context.Context, id string, names ...string) (map[string]string, error) {
	msg, err := p.service.Users.Messages.Get(userID, id).
		Format("metadata").
		MetadataHeaders(names...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	// Metadata responses always carry a payload, even with no headers
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s: %w", id, errNoPayload)
	}

	headers := make(map[string]string, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		if _, ok := headers[h.Name]; !ok {
			headers[h.Name] = h.Value
		}
	}

	return headers, nil
}

// GetSnippet returns the message preview from a minimal read
func (p *Provider) GetSnippet(ctx context.Context, id string) (string, error) {
	msg, err := p.service.Users.Messages.Get(userID, id).Format("minimal").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return msg.Snippet, nil
}
