// Package ui provides the browser-hosted start project panel.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/djhelper/internal/panel"
	"github.com/leapstack-labs/djhelper/internal/ui/features/startproject"
	"github.com/leapstack-labs/djhelper/internal/ui/notifier"
	"github.com/leapstack-labs/djhelper/internal/ui/resources"
	"github.com/leapstack-labs/djhelper/internal/ui/router"
	"github.com/leapstack-labs/djhelper/internal/workspace"
)

// DefaultHost is the listen interface used when none is configured.
const DefaultHost = "127.0.0.1"

// Server is the panel web server.
type Server struct {
	workspace    *workspace.Store
	generator    panel.Creator
	sessionStore *sessions.CookieStore
	registry     *startproject.Registry
	notifier     *notifier.Notifier
	host         string
	port         int
	watch        bool
	datastarURL  string
	logger       *slog.Logger

	handler http.Handler
}

// Config holds configuration for the UI server.
type Config struct {
	Workspace *workspace.Store
	Generator panel.Creator
	// Host is the interface to listen on; loopback when empty.
	Host      string
	Port      int
	Watch     bool
	// SessionSecret signs the browser cookie; a random key is generated
	// when empty, so the remembered folder lasts for one server run.
	SessionSecret string
	DatastarURL   string
	DisposeAfter  time.Duration
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance and its routes.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Workspace == nil {
		return nil, errors.New("ui: workspace is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("ui: generator is required")
	}

	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	s := &Server{
		workspace:    cfg.Workspace,
		generator:    cfg.Generator,
		sessionStore: sessionStore,
		registry:     startproject.NewRegistry(cfg.DisposeAfter, logger),
		notifier:     notifier.New(),
		host:         host,
		port:         cfg.Port,
		watch:        cfg.Watch,
		datastarURL:  cfg.DatastarURL,
		logger:       logger,
	}

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	err := router.SetupRoutes(r, router.Config{
		Workspace:    s.workspace,
		Generator:    s.generator,
		Registry:     s.registry,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		DatastarURL:  s.datastarURL,
		IsDev:        s.IsDev(),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	s.handler = r

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// URL returns the address the panel page is served at.
func (s *Server) URL() string {
	host := s.host
	if ip := net.ParseIP(host); host == "localhost" || (ip != nil && (ip.IsLoopback() || ip.IsUnspecified())) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.port))
}

// Serve starts the UI server and blocks until the context is cancelled.
// Open panels are disposed on the way out, after their in-flight generator
// runs have finished.
func (s *Server) Serve(ctx context.Context) error {
	addr := s.Addr()
	s.logger.Info("starting panel server", "addr", addr, "url", s.URL())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.workspace.Watch(egctx, s.notifier.Broadcast)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down panel server...")
		err := srv.Shutdown(shutdownCtx)
		s.registry.CloseAll()
		return err
	})

	return eg.Wait()
}

// IsDev reports whether the binary was built with the dev tag.
func (s *Server) IsDev() bool {
	return resources.IsDev
}

// Notifier returns the server's notifier for workspace updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Registry returns the open panel sessions.
func (s *Server) Registry() *startproject.Registry {
	return s.registry
}
