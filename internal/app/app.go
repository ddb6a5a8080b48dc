package app

import (
	"xhub/internal/common/logging"
	"xhub/internal/config"
	"xhub/internal/handlers"
	"xhub/internal/metrics"
	"xhub/internal/signature"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// App holds all the application dependencies
type App struct {
	Config   *config.Config
	Verifier *signature.Verifier
	Metrics  *metrics.Recorder
	Handlers *handlers.Handlers
	Logger   logging.Logger
}

// New creates a new application instance from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	opts := cfg.SignatureOptions()
	if cfg.MetricsEnabled {
		app.Metrics = metrics.NewRecorder(true)
		opts.Recorder = app.Metrics
	}

	verifier, err := signature.New(cfg.Secret, opts, logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "signature"}))
	if err != nil {
		return nil, err
	}
	app.Verifier = verifier
	app.Handlers = handlers.New(logging.GetGlobalLogger(), Version)

	app.Logger.Info("Signature verification configured",
		logging.String("header", cfg.Header),
		logging.String("algorithm", cfg.Algorithm),
		logging.String("preset", cfg.Preset),
		logging.Bool("reject_invalid", cfg.RejectInvalid),
		logging.Int64("max_body_bytes", cfg.MaxBodyBytes),
	)
	return app, nil
}
