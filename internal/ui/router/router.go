// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/djhelper/internal/panel"
	startprojectFeature "github.com/leapstack-labs/djhelper/internal/ui/features/startproject"
	"github.com/leapstack-labs/djhelper/internal/ui/notifier"
	"github.com/leapstack-labs/djhelper/internal/ui/resources"
	"github.com/leapstack-labs/djhelper/internal/workspace"
)

// Config holds what the routes need.
type Config struct {
	Workspace    *workspace.Store
	Generator    panel.Creator
	Registry     *startprojectFeature.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	DatastarURL  string
	IsDev        bool
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, cfg Config) error {
	// Hot reload endpoint for dev mode
	if cfg.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	_, err := startprojectFeature.SetupRoutes(router, startprojectFeature.Config{
		Workspace:    cfg.Workspace,
		Generator:    cfg.Generator,
		Registry:     cfg.Registry,
		SessionStore: cfg.SessionStore,
		Notifier:     cfg.Notifier,
		DatastarURL:  cfg.DatastarURL,
		IsDev:        cfg.IsDev,
		Logger:       cfg.Logger,
	})
	return err
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
