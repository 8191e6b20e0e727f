package startproject

import "github.com/go-chi/chi/v5"

// SetupRoutes configures routes for the start project feature.
func SetupRoutes(router chi.Router, cfg Config) (*Handlers, error) {
	handlers := NewHandlers(cfg)

	router.Get("/", handlers.Page)

	router.Route("/panel/{id}", func(r chi.Router) {
		r.Get("/events", handlers.Events)
		r.Post("/ready", handlers.Ready)
		r.Post("/choose-folder", handlers.ChooseFolder)
		r.Post("/create", handlers.Create)
		r.Post("/messages", handlers.Messages)
		r.Post("/toasts/{toast}/dismiss", handlers.DismissToast)

		r.Route("/picker", func(r chi.Router) {
			r.Post("/open", handlers.PickerOpen)
			r.Post("/select", handlers.PickerSelect)
			r.Post("/cancel", handlers.PickerCancel)
		})
	})

	return handlers, nil
}
