package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"xhub/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func (app *App) SetupRoutes(router *mux.Router) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery)
	router.Use(middleware.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", app.Handlers.HealthCheck).Methods(http.MethodGet)

	if app.Metrics != nil {
		router.Handle("/metrics", app.Metrics.Handler()).Methods(http.MethodGet)
	}

	// Signed webhook deliveries
	router.Handle(app.Config.WebhookPath, app.Verifier.Middleware(http.HandlerFunc(app.Handlers.HandleWebhook))).
		Methods(http.MethodPost)
}

// Router builds the application's HTTP handler.
func (app *App) Router() http.Handler {
	router := mux.NewRouter()
	app.SetupRoutes(router)
	return router
}
