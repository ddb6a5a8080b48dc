package signature

import (
	"xhub/internal/common/errors"
)

const (
	// DefaultHeader is the canonical name of the inbound signature header
	DefaultHeader = "X-Hub-Signature"
	// DefaultAlgorithm is used when no algorithm is configured
	DefaultAlgorithm = HmacSHA1
	// DefaultSignaturePrefix precedes the hex digest in the header value
	DefaultSignaturePrefix = "sha1="
)

// Config is the verification configuration bound to a Verifier. It is
// never mutated once requests flow; Configure swaps in a new value.
type Config struct {
	// Secret is the shared HMAC key. Required.
	Secret string `json:"-"`

	// Algorithm selects the keyed-hash function, e.g. "HmacSHA1" or "HmacSHA256"
	Algorithm string `json:"algorithm"`

	// SignaturePrefix is expected before the hex digest in the header value.
	// Only its length is used: that many leading bytes are skipped without
	// comparing them to the prefix.
	SignaturePrefix string `json:"signature_prefix"`

	// RejectInvalid answers missing or invalid signatures with 400 instead
	// of only flagging the request
	RejectInvalid bool `json:"reject_invalid"`

	// Header is the request header carrying the signature
	Header string `json:"header"`

	// MaxBodyBytes caps how much of the body is buffered for the digest.
	// Zero means unlimited. Larger bodies verify as invalid.
	MaxBodyBytes int64 `json:"max_body_bytes"`

	// Recorder receives verification outcomes, optional
	Recorder Recorder `json:"-"`
}

// Options are the optional settings accepted by New and Configure.
// Zero values select the defaults.
type Options struct {
	RejectInvalid   bool
	Algorithm       string
	SignaturePrefix string
	Header          string
	MaxBodyBytes    int64
	Recorder        Recorder
}

// NewConfig builds a Config from a secret and optional settings, applies
// defaults and validates it.
func NewConfig(secret string, opts *Options) (*Config, error) {
	config := &Config{Secret: secret}
	if opts != nil {
		config.RejectInvalid = opts.RejectInvalid
		config.Algorithm = opts.Algorithm
		config.SignaturePrefix = opts.SignaturePrefix
		config.Header = opts.Header
		config.MaxBodyBytes = opts.MaxBodyBytes
		config.Recorder = opts.Recorder
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SetDefaults applies default values to the configuration
func (c *Config) SetDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}

	if c.SignaturePrefix == "" {
		c.SignaturePrefix = DefaultSignaturePrefix
	}

	if c.Header == "" {
		c.Header = DefaultHeader
	}

	if c.Recorder == nil {
		c.Recorder = NopRecorder{}
	}
}

// Validate checks if the configuration is usable. An unknown algorithm is
// not an error here; it makes every signature verify as invalid.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.ConfigError("X-Hub secret is required")
	}

	if c.MaxBodyBytes < 0 {
		return errors.ConfigError("max body bytes must not be negative").
			WithContext("max_body_bytes", c.MaxBodyBytes)
	}

	return nil
}

// Presets returns option sets for well-known webhook producers.
func Presets() map[string]Options {
	return map[string]Options{
		"github": {
			Header:          "X-Hub-Signature",
			Algorithm:       HmacSHA1,
			SignaturePrefix: "sha1=",
		},
		"github-sha256": {
			Header:          "X-Hub-Signature-256",
			Algorithm:       HmacSHA256,
			SignaturePrefix: "sha256=",
		},
		"facebook": {
			Header:          "X-Hub-Signature",
			Algorithm:       HmacSHA1,
			SignaturePrefix: "sha1=",
		},
		"facebook-sha256": {
			Header:          "X-Hub-Signature-256",
			Algorithm:       HmacSHA256,
			SignaturePrefix: "sha256=",
		},
	}
}
