package signature

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"sync/atomic"

	"xhub/internal/common/errors"
	"xhub/internal/common/logging"
)

const badRequestBody = "Bad Request"

type validKey struct{}

// Verifier checks the X-Hub signature of incoming requests. A zero Verifier
// is unconfigured; serving a request through it panics.
type Verifier struct {
	config atomic.Pointer[Config]
	logger logging.Logger
}

// New creates a verifier for secret. opts may be nil; a nil logger selects
// the global logger.
func New(secret string, opts *Options, logger logging.Logger) (*Verifier, error) {
	v := &Verifier{logger: logger}
	if err := v.Configure(secret, opts); err != nil {
		return nil, err
	}
	return v, nil
}

// NewVerifier creates a verifier from an already built configuration.
func NewVerifier(config *Config, logger logging.Logger) (*Verifier, error) {
	if config == nil {
		return nil, errors.ConfigError("X-Hub configuration is required")
	}

	cfg := *config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Verifier{logger: logger}
	v.store(&cfg)
	return v, nil
}

// Configure replaces the verifier configuration. Every call starts from the
// defaults; nothing from a previous call is kept. Call it before the
// verifier serves traffic.
func (v *Verifier) Configure(secret string, opts *Options) error {
	config, err := NewConfig(secret, opts)
	if err != nil {
		return err
	}
	v.store(config)
	return nil
}

func (v *Verifier) store(config *Config) {
	if !SupportedAlgorithm(config.Algorithm) {
		v.log().Warn("Unsupported signature algorithm, every signature will verify as invalid",
			logging.String("algorithm", config.Algorithm),
		)
	}
	v.config.Store(config)
}

// Config returns a copy of the active configuration, or nil when the
// verifier is unconfigured.
func (v *Verifier) Config() *Config {
	config := v.config.Load()
	if config == nil {
		return nil
	}
	cfg := *config
	return &cfg
}

func (v *Verifier) log() logging.Logger {
	if v.logger == nil {
		return logging.GetGlobalLogger()
	}
	return v.logger
}

func (v *Verifier) mustConfig() *Config {
	config := v.config.Load()
	if config == nil {
		panic(errors.PreconditionError("X-Hub secret not defined"))
	}
	return config
}

// Middleware wraps next with signature verification. The result is stored in
// the request context (see IsValid). With RejectInvalid set, requests that do
// not verify are answered with 400 and never reach next.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		config := v.mustConfig()

		valid := v.check(config, r)
		r = r.WithContext(context.WithValue(r.Context(), validKey{}, valid))

		if !valid && config.RejectInvalid {
			config.Recorder.RecordOutcome(OutcomeRejected)
			v.log().WithContext(r.Context()).Info("Rejected request with invalid signature",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
			)
			writeBadRequest(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Check verifies r without enforcing anything. When a digest was computed the
// body has been read and replaced with a fresh reader over the same bytes.
func (v *Verifier) Check(r *http.Request) bool {
	return v.check(v.mustConfig(), r)
}

// Verify is Check in error form, for handlers that verify without the
// middleware. The error never says why verification failed.
func (v *Verifier) Verify(r *http.Request) error {
	if !v.Check(r) {
		return errors.AuthError("invalid request signature")
	}
	return nil
}

func (v *Verifier) check(config *Config, r *http.Request) bool {
	logger := v.log().WithContext(r.Context())

	header := r.Header.Get(config.Header)
	if len(header) <= len(config.SignaturePrefix) {
		config.Recorder.RecordOutcome(OutcomeMissing)
		logger.Debug("Signature header missing or too short",
			logging.String("header", config.Header),
			logging.Int("length", len(header)),
		)
		return false
	}

	body, err := captureBody(r, config.MaxBodyBytes)
	config.Recorder.RecordBodySize(len(body))

	if err == nil {
		err = verifyDigest(config, body, header[len(config.SignaturePrefix):])
	}

	if err != nil {
		config.Recorder.RecordOutcome(OutcomeInvalid)
		logger.Debug("Signature verification failed", logging.Err(err))
		return false
	}

	config.Recorder.RecordOutcome(OutcomeValid)
	logger.Debug("Signature verified successfully",
		logging.String("header", config.Header),
		logging.Int("body_bytes", len(body)),
	)
	return true
}

func verifyDigest(config *Config, body []byte, encoded string) error {
	digest, err := Digest(body, config.Secret, config.Algorithm)
	if err != nil {
		return NewVerificationError(config.Header, "failed to compute digest: %v", err)
	}

	candidate, err := hex.DecodeString(encoded)
	if err != nil {
		return NewVerificationError(config.Header, "malformed hex digest: %v", err)
	}

	if !constantTimeEqual(digest, candidate) {
		return NewVerificationError(config.Header, "signature mismatch")
	}
	return nil
}

// IsValid reports whether the verifier middleware accepted the signature of r.
func IsValid(r *http.Request) bool {
	valid, _ := FromContext(r.Context())
	return valid
}

// FromContext returns the verification result stored by the middleware. ok is
// false when the request never passed through a verifier.
func FromContext(ctx context.Context) (valid, ok bool) {
	valid, ok = ctx.Value(validKey{}).(bool)
	return valid, ok
}

func writeBadRequest(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = io.WriteString(w, badRequestBody)
}

// PreserveRequestBody reads the whole request body and replaces it with a
// fresh reader over the same bytes.
func PreserveRequestBody(r *http.Request) ([]byte, error) {
	return captureBody(r, 0)
}

// captureBody buffers the body once and rewinds r.Body. Bytes beyond limit,
// and anything left after a read error, stay in the original stream and are
// replayed after the buffered prefix, so downstream always sees the whole
// body. An over-limit body is reported as an error.
func captureBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return []byte{}, nil
	}

	original := r.Body
	var reader io.Reader = original
	if limit > 0 {
		reader = io.LimitReader(original, limit+1)
	}

	body, err := io.ReadAll(reader)
	if err == nil && limit > 0 && int64(len(body)) > limit {
		err = NewVerificationError("", "body exceeds %d bytes", limit)
	}

	if err != nil {
		r.Body = &replayBody{Reader: io.MultiReader(bytes.NewReader(body), original), closer: original}
		return body, err
	}

	r.Body = &replayBody{Reader: bytes.NewReader(body), closer: original}
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return body, nil
}

type replayBody struct {
	io.Reader
	closer io.Closer
}

func (b *replayBody) Close() error {
	return b.closer.Close()
}
