package factory

import (
	"fmt"

	"github.com/mikey/inbox-triage/internal/adapters/gmail"
	"github.com/mikey/inbox-triage/internal/config"
	"go.uber.org/zap"
)

// GmailFactory creates the Gmail authenticator and connector
type GmailFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGmailFactory creates a new Gmail factory
func NewGmailFactory(cfg *config.Config, logger *zap.Logger) *GmailFactory {
	return &GmailFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAuthenticator creates the OAuth authenticator
func (f *GmailFactory) CreateAuthenticator() (*gmail.Authenticator, error) {
	gmailCfg := f.cfg.GetGmail()
	if gmailCfg.ClientID == "" || gmailCfg.ClientSecret == "" {
		return nil, fmt.Errorf("gmail client id and secret are required")
	}
	return gmail.NewAuthenticator(gmailCfg.ClientID, gmailCfg.ClientSecret, gmailCfg.RedirectURL, f.logger), nil
}

// CreateConnector creates a connector that opens Gmail providers for credentials
func (f *GmailFactory) CreateConnector(auth *gmail.Authenticator) *gmail.Connector {
	return gmail.NewConnector(auth, f.cfg.GetGmail().Endpoint, f.logger)
}
