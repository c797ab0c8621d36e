package factory

import (
	"github.com/mikey/inbox-triage/internal/adapters/httpapi"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/ports"
	"go.uber.org/zap"
)

// ServerFactory creates the HTTP front end
type ServerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config, logger *zap.Logger) *ServerFactory {
	return &ServerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateServer creates the HTTP server
func (f *ServerFactory) CreateServer(deps httpapi.Dependencies) ports.Server {
	serverCfg := f.cfg.GetServer()
	if deps.Logger == nil {
		deps.Logger = f.logger
	}
	return httpapi.NewServer(deps, httpapi.Options{
		ListenAddress: serverCfg.ListenAddress,
		FrontendURL:   serverCfg.FrontendURL,
		CookieSecure:  serverCfg.CookieSecure,
	})
}
