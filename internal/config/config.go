// Package config loads the receiver's settings from environment variables
// with sensible defaults and validates them before the server starts.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - TLS_CERT, TLS_KEY: Certificate and key files; both or neither
//   - WEBHOOK_PATH: Path the signed webhooks are posted to (default: /webhook)
//   - METRICS_ENABLED: Serve Prometheus metrics on /metrics (default: true)
//
// Signature Verification:
//   - XHUB_SECRET: Shared HMAC secret (required)
//   - XHUB_PRESET: Provider defaults, one of github, github-sha256, facebook,
//     facebook-sha256. Explicit XHUB_* values below take precedence.
//   - XHUB_ALGORITHM: HMAC algorithm name (default: HmacSHA1)
//   - XHUB_SIGNATURE_PREFIX: Prefix in front of the hex digest (default: sha1=)
//   - XHUB_HEADER: Header carrying the signature (default: X-Hub-Signature)
//   - XHUB_REJECT_INVALID: Answer 400 for unsigned or mis-signed requests (default: false)
//   - XHUB_MAX_BODY_BYTES: Largest body buffered for verification, 0 for no limit (default: 0)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
//
//	verifier, err := signature.New(cfg.Secret, cfg.SignatureOptions(), logger)
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "xhub/internal/common/errors"
	"xhub/internal/signature"
)

// Config holds all configuration values for the receiver. Fields map to
// environment variables, see the package documentation.
type Config struct {
	// Application settings
	Port           string `validate:"required,numeric,listenport"`
	LogLevel       string `validate:"oneof=debug info warn warning error"`
	TLSCert        string `validate:"required_with=TLSKey"`
	TLSKey         string `validate:"required_with=TLSCert"`
	WebhookPath    string `validate:"required,startswith=/"`
	MetricsEnabled bool

	// Signature verification
	Secret          string `validate:"required"`
	Preset          string `validate:"omitempty,preset"`
	Algorithm       string `validate:"required,hmac"`
	SignaturePrefix string `validate:"required"`
	Header          string `validate:"required"`
	RejectInvalid   bool
	MaxBodyBytes    int64 `validate:"gte=0"`
}

var configValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hmac", func(fl validator.FieldLevel) bool {
		return signature.SupportedAlgorithm(fl.Field().String())
	})
	_ = v.RegisterValidation("preset", func(fl validator.FieldLevel) bool {
		_, ok := signature.Presets()[fl.Field().String()]
		return ok
	})
	_ = v.RegisterValidation("listenport", func(fl validator.FieldLevel) bool {
		port, err := strconv.Atoi(fl.Field().String())
		return err == nil && port >= 1 && port <= 65535
	})
	return v
}

// Load creates a new Config with values from environment variables. An
// XHUB_PRESET seeds the algorithm, prefix and header defaults.
//
// Load does not validate; call Validate on the result.
func Load() *Config {
	preset := strings.ToLower(getEnv("XHUB_PRESET", ""))
	defaults := signature.Options{
		Algorithm:       signature.DefaultAlgorithm,
		SignaturePrefix: signature.DefaultSignaturePrefix,
		Header:          signature.DefaultHeader,
	}
	if opts, ok := signature.Presets()[preset]; ok {
		defaults = opts
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		TLSCert:        getEnv("TLS_CERT", ""),
		TLSKey:         getEnv("TLS_KEY", ""),
		WebhookPath:    getEnv("WEBHOOK_PATH", "/webhook"),
		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),

		Secret:          getEnv("XHUB_SECRET", ""),
		Preset:          preset,
		Algorithm:       getEnv("XHUB_ALGORITHM", defaults.Algorithm),
		SignaturePrefix: getEnv("XHUB_SIGNATURE_PREFIX", defaults.SignaturePrefix),
		Header:          getEnv("XHUB_HEADER", defaults.Header),
		RejectInvalid:   getBoolEnv("XHUB_REJECT_INVALID", false),
		MaxBodyBytes:    getInt64Env("XHUB_MAX_BODY_BYTES", 0),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
//
// This function accepts common boolean representations:
//   - "true", "1", "t", "TRUE", "True" -> true
//   - "false", "0", "f", "FALSE", "False" -> false
//   - Any other value or parsing error -> returns defaultValue
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getInt64Env retrieves an integer environment variable. Unparseable values
// come back as -1 so that Validate reports them instead of silently using
// the default.
func getInt64Env(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return -1
	}
	return parsed
}

// Validate checks required fields and value formats. The returned error is
// an AppError of type config naming the offending variable.
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		appErr := apperrors.ConfigError("invalid configuration")
		appErr.Cause = err
		return appErr
	}

	first := validationErrors[0]
	appErr := apperrors.ConfigError(envName(first.Field()) + " " + describe(first)).
		WithContext("field", first.Field()).
		WithContext("rule", first.Tag())
	appErr.Cause = err
	return appErr
}

// SignatureOptions maps the verification settings onto signature.Options.
func (c *Config) SignatureOptions() *signature.Options {
	return &signature.Options{
		RejectInvalid:   c.RejectInvalid,
		Algorithm:       c.Algorithm,
		SignaturePrefix: c.SignaturePrefix,
		Header:          c.Header,
		MaxBodyBytes:    c.MaxBodyBytes,
	}
}

var envNames = map[string]string{
	"Port":            "PORT",
	"LogLevel":        "LOG_LEVEL",
	"TLSCert":         "TLS_CERT",
	"TLSKey":          "TLS_KEY",
	"WebhookPath":     "WEBHOOK_PATH",
	"Secret":          "XHUB_SECRET",
	"Preset":          "XHUB_PRESET",
	"Algorithm":       "XHUB_ALGORITHM",
	"SignaturePrefix": "XHUB_SIGNATURE_PREFIX",
	"Header":          "XHUB_HEADER",
	"MaxBodyBytes":    "XHUB_MAX_BODY_BYTES",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return field
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "must be set together with " + envName(fe.Param())
	case "numeric", "listenport":
		return "must be a valid port number between 1 and 65535"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "startswith":
		return "must start with " + fe.Param()
	case "hmac":
		return "must be one of: " + strings.Join(signature.Algorithms(), ", ")
	case "preset":
		return "is not a known provider preset"
	case "gte":
		return "must be a non-negative integer"
	default:
		return "is invalid"
	}
}
