package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "xhub/internal/common/errors"
	"xhub/internal/signature"
)

var testEnvVars = []string{
	"PORT", "LOG_LEVEL", "TLS_CERT", "TLS_KEY", "WEBHOOK_PATH", "METRICS_ENABLED",
	"XHUB_SECRET", "XHUB_PRESET", "XHUB_ALGORITHM", "XHUB_SIGNATURE_PREFIX",
	"XHUB_HEADER", "XHUB_REJECT_INVALID", "XHUB_MAX_BODY_BYTES",
}

// clearTestEnvVars blanks every variable Load reads. getEnv treats empty
// values as unset.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range testEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearTestEnvVars(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.TLSCert)
	assert.Empty(t, cfg.TLSKey)
	assert.Equal(t, "/webhook", cfg.WebhookPath)
	assert.True(t, cfg.MetricsEnabled)

	assert.Empty(t, cfg.Secret)
	assert.Empty(t, cfg.Preset)
	assert.Equal(t, signature.HmacSHA1, cfg.Algorithm)
	assert.Equal(t, "sha1=", cfg.SignaturePrefix)
	assert.Equal(t, "X-Hub-Signature", cfg.Header)
	assert.False(t, cfg.RejectInvalid)
	assert.Zero(t, cfg.MaxBodyBytes)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("WEBHOOK_PATH", "/hooks/github")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("XHUB_SECRET", "s3cret")
	t.Setenv("XHUB_ALGORITHM", "HmacSHA256")
	t.Setenv("XHUB_SIGNATURE_PREFIX", "sha256=")
	t.Setenv("XHUB_HEADER", "X-Hub-Signature-256")
	t.Setenv("XHUB_REJECT_INVALID", "1")
	t.Setenv("XHUB_MAX_BODY_BYTES", "1048576")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/hooks/github", cfg.WebhookPath)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "s3cret", cfg.Secret)
	assert.Equal(t, "HmacSHA256", cfg.Algorithm)
	assert.Equal(t, "sha256=", cfg.SignaturePrefix)
	assert.Equal(t, "X-Hub-Signature-256", cfg.Header)
	assert.True(t, cfg.RejectInvalid)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoad_Preset(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("XHUB_SECRET", "s")
	t.Setenv("XHUB_PRESET", "GitHub-SHA256")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "github-sha256", cfg.Preset)
	assert.Equal(t, signature.HmacSHA256, cfg.Algorithm)
	assert.Equal(t, "sha256=", cfg.SignaturePrefix)
	assert.Equal(t, "X-Hub-Signature-256", cfg.Header)

	t.Setenv("XHUB_HEADER", "X-Custom-Signature")
	cfg = Load()
	assert.Equal(t, "X-Custom-Signature", cfg.Header, "explicit variables override the preset")
	assert.Equal(t, signature.HmacSHA256, cfg.Algorithm)
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"FALSE", true, false},
		{"0", true, false},
		{"nope", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("XHUB_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, getBoolEnv("XHUB_TEST_BOOL", tt.def))
		})
	}
}

func TestGetInt64Env(t *testing.T) {
	t.Setenv("XHUB_TEST_INT", "")
	assert.Equal(t, int64(7), getInt64Env("XHUB_TEST_INT", 7))

	t.Setenv("XHUB_TEST_INT", "42")
	assert.Equal(t, int64(42), getInt64Env("XHUB_TEST_INT", 7))

	t.Setenv("XHUB_TEST_INT", "lots")
	assert.Equal(t, int64(-1), getInt64Env("XHUB_TEST_INT", 7))
}

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		WebhookPath:     "/webhook",
		Secret:          "s3cret",
		Algorithm:       signature.HmacSHA1,
		SignaturePrefix: "sha1=",
		Header:          "X-Hub-Signature",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Secret = "" }, "XHUB_SECRET is required"},
		{"port not numeric", func(c *Config) { c.Port = "http" }, "PORT must be a valid port number"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "PORT must be a valid port number"},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL must be one of"},
		{"relative webhook path", func(c *Config) { c.WebhookPath = "webhook" }, "WEBHOOK_PATH must start with /"},
		{"unsupported algorithm", func(c *Config) { c.Algorithm = "HmacWhirlpool" }, "XHUB_ALGORITHM must be one of"},
		{"lowercase algorithm alias", func(c *Config) { c.Algorithm = "hmac-sha256" }, ""},
		{"empty prefix", func(c *Config) { c.SignaturePrefix = "" }, "XHUB_SIGNATURE_PREFIX is required"},
		{"negative body limit", func(c *Config) { c.MaxBodyBytes = -1 }, "XHUB_MAX_BODY_BYTES must be a non-negative integer"},
		{"unknown preset", func(c *Config) { c.Preset = "gitlab" }, "XHUB_PRESET is not a known provider preset"},
		{"cert without key", func(c *Config) { c.TLSCert = "cert.pem" }, "TLS_KEY must be set together with TLS_CERT"},
		{"cert and key", func(c *Config) { c.TLSCert, c.TLSKey = "cert.pem", "key.pem" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestSignatureOptions(t *testing.T) {
	cfg := validConfig()
	cfg.RejectInvalid = true
	cfg.MaxBodyBytes = 512

	opts := cfg.SignatureOptions()
	assert.True(t, opts.RejectInvalid)
	assert.Equal(t, signature.HmacSHA1, opts.Algorithm)
	assert.Equal(t, "sha1=", opts.SignaturePrefix)
	assert.Equal(t, "X-Hub-Signature", opts.Header)
	assert.Equal(t, int64(512), opts.MaxBodyBytes)

	v, err := signature.New(cfg.Secret, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v.Config().Secret)
}
