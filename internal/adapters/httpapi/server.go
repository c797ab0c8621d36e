package httpapi

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// SessionCookie carries the session id between requests
	SessionCookie = "triage_session"
	// SessionQueryParam lets clients on another origin name their session
	SessionQueryParam = "session_id"

	shutdownTimeout = 10 * time.Second
)

// Pipeline is the part of the triage service used by the HTTP layer
type Pipeline interface {
	Run(ctx context.Context, sessionID string, mail core.MailProvider) (*core.RunReport, error)
	Latest(ctx context.Context, sessionID string) (core.CategoryAssignment, error)
}

// Dependencies wires the server to the rest of the application
type Dependencies struct {
	Pipeline      Pipeline
	Authenticator core.Authenticator
	Connector     core.MailConnector
	Sessions      *session.Manager
	Logger        *zap.Logger
}

// Options configures the HTTP server
type Options struct {
	ListenAddress string
	FrontendURL   string
	CookieSecure  bool
}

// Server exposes the OAuth handshake and the latest categorization result over HTTP
type Server struct {
	app    *fiber.App
	deps   Dependencies
	opts   Options
	logger *zap.Logger
}

// NewServer creates a new HTTP server and registers its routes
func NewServer(deps Dependencies, opts Options) *Server {
	s := &Server{
		deps:   deps,
		opts:   opts,
		logger: deps.Logger,
	}

	app := fiber.New(fiber.Config{
		AppName: "inbox-triage",
	})
	app.Use(logger.New())

	app.Get("/health", s.health)
	app.Get("/auth/login", s.login)
	app.Get("/auth/callback", s.callback)
	app.Get("/result", s.result)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app = app
	return s
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address until Stop is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.opts.ListenAddress))
	return s.app.Listen(s.opts.ListenAddress, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Stop shuts the server down, waiting for in-flight requests
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP server")
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// login starts a session and sends the browser to the consent page
func (s *Server) login(c fiber.Ctx) error {
	id := s.deps.Sessions.Begin()
	s.setSessionCookie(c, id)
	return c.Redirect().Status(fiber.StatusTemporaryRedirect).To(s.deps.Authenticator.AuthCodeURL(id))
}

// callback completes the handshake, runs the pipeline for the session and
// returns the browser to the frontend
func (s *Server) callback(c fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || !s.deps.Sessions.Exists(state) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid or expired state"})
	}
	if reason := c.Query("error"); reason != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": reason})
	}
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing authorization code"})
	}

	ctx := c.Context()
	logger := s.logger.With(zap.String("session_id", state))

	cred, err := s.deps.Authenticator.Exchange(ctx, code)
	if err != nil {
		logger.Error("Callback Error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.deps.Sessions.SetCredential(state, cred); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	mail, err := s.deps.Connector.Connect(ctx, cred)
	if err != nil {
		logger.Error("Callback Error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := s.deps.Pipeline.Run(ctx, state, mail)
	if err != nil {
		logger.Error("Callback Error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if report.Categorization.Failure != nil {
		logger.Warn("Categorization degraded", zap.Error(report.Categorization.Failure))
	}

	s.setSessionCookie(c, state)
	return c.Redirect().Status(fiber.StatusTemporaryRedirect).To(s.frontendURL(state))
}

// result returns the latest assignment of the caller's session; callers
// without one get an empty object
func (s *Server) result(c fiber.Ctx) error {
	id := c.Query(SessionQueryParam)
	if id == "" {
		id = c.Cookies(SessionCookie)
	}

	assignment, err := s.deps.Pipeline.Latest(c.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load result", zap.String("session_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"categories": assignment,
	})
}

func (s *Server) setSessionCookie(c fiber.Ctx, id string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// frontendURL appends the session id so a frontend on another origin can
// request its result
func (s *Server) frontendURL(id string) string {
	u, err := url.Parse(s.opts.FrontendURL)
	if err != nil {
		return s.opts.FrontendURL
	}
	q := u.Query()
	q.Set(SessionQueryParam, id)
	u.RawQuery = q.Encode()
	return u.String()
}
