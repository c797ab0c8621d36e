package core

import (
	"context"
	"errors"
)

var (
	// ErrResultNotFound is returned when no result is stored for a session
	ErrResultNotFound = errors.New("result not found")
	// ErrEmptyCompletion is returned by LLM clients that received no content
	ErrEmptyCompletion = errors.New("empty completion from model")
	// ErrUnexpectedSchema is returned when the model reply is JSON of the wrong shape
	ErrUnexpectedSchema = errors.New("unexpected reply schema")
)

// CompletionRequest is a single system + user prompt exchange
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	JSONMode     bool
}

// Completion is the text reply of a model
type Completion struct {
	Text      string
	ModelUsed string
	ID        string
}

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends one request and returns the model's text reply
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// MailProvider reads message metadata from one authorized mailbox
type MailProvider interface {
	// ListMessageIDs returns up to max message identifiers, most recent first
	ListMessageIDs(ctx context.Context, max int) ([]string, error)

	// GetHeaders returns the named headers of a message
	GetHeaders(ctx context.Context, id string, names ...string) (map[string]string, error)

	// GetSnippet returns the short preview of a message
	GetSnippet(ctx context.Context, id string) (string, error)
}

// MailConnector opens a MailProvider for a credential
type MailConnector interface {
	Connect(ctx context.Context, cred *Credential) (MailProvider, error)
}

// Authenticator performs the authorization handshake with the mail provider
type Authenticator interface {
	// AuthCodeURL returns the consent page URL carrying state
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a credential
	Exchange(ctx context.Context, code string) (*Credential, error)
}

// ResultStore holds the latest CategoryAssignment per session
type ResultStore interface {
	// Get retrieves the stored result for a session
	Get(ctx context.Context, sessionID string) (*StoredResult, error)

	// Set stores a result, replacing any previous one for the session
	Set(ctx context.Context, result *StoredResult) error

	// Delete removes the result of a session
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired results
	Cleanup(ctx context.Context) error
}
