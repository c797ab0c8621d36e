package gmail

import (
	"context"
	"fmt"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// Authenticator runs the OAuth consent flow for read-only Gmail access
type Authenticator struct {
	oauthCfg *oauth2.Config
	logger   *zap.Logger
}

// NewAuthenticator creates a new Gmail authenticator
func NewAuthenticator(clientID, clientSecret, redirectURL string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{gmail.GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

// AuthCodeURL returns the consent page URL. Offline access with a forced
// consent prompt makes Google return a refresh token every time.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a credential
func (a *Authenticator) Exchange(ctx context.Context, code string) (*core.Credential, error) {
	token, err := a.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	a.logger.Debug("Exchanged authorization code",
		zap.Bool("refresh_token", token.RefreshToken != ""),
		zap.Time("expiry", token.Expiry))

	return &core.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}, nil
}

// tokenSource refreshes the credential's access token when it expires
func (a *Authenticator) tokenSource(ctx context.Context, cred *core.Credential) oauth2.TokenSource {
	return a.oauthCfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	})
}
