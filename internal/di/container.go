package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/gmail"
	"github.com/mikey/inbox-triage/internal/adapters/httpapi"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/ports"
	"github.com/mikey/inbox-triage/internal/session"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGmailFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTriageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register result store
	if err := container.Provide(func(f *factory.StoreFactory) (factory.ResultStore, error) {
		return f.CreateResultStore()
	}); err != nil {
		return nil, err
	}

	// Register categorization engine and triage service
	if err := container.Provide(func(f *factory.TriageFactory, llmClient core.LLMClient) (*core.Categorizer, error) {
		return f.CreateCategorizer(llmClient)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TriageFactory, c *core.Categorizer, store factory.ResultStore) (*core.TriageService, error) {
		return f.CreateTriageService(c, store)
	}); err != nil {
		return nil, err
	}

	// Register sessions and the Gmail handshake
	if err := container.Provide(session.NewManager); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.GmailFactory) (*gmail.Authenticator, error) {
		return f.CreateAuthenticator()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.GmailFactory, auth *gmail.Authenticator) *gmail.Connector {
		return f.CreateConnector(auth)
	}); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(
		f *factory.ServerFactory,
		svc *core.TriageService,
		auth *gmail.Authenticator,
		connector *gmail.Connector,
		sessions *session.Manager,
		logger *zap.Logger,
	) ports.Server {
		return f.CreateServer(httpapi.Dependencies{
			Pipeline:      svc,
			Authenticator: auth,
			Connector:     connector,
			Sessions:      sessions,
			Logger:        logger,
		})
	}); err != nil {
		return nil, err
	}

	return container, nil
}
