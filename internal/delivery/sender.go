// Package delivery sends signed webhook payloads to a receiver.
//
// Each attempt is signed with the configured secret and algorithm, so a
// receiver running the signature middleware can verify it. Failed attempts
// are retried with exponential backoff. Repeated failures against a target
// open a circuit breaker that fails fast until the target recovers.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"xhub/internal/common/errors"
	"xhub/internal/common/logging"
	"xhub/internal/signature"
)

const maxResponseBody = 64 << 10

// Options configures a Sender. Zero values select defaults.
type Options struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
	ContentType     string
	Breaker         BreakerConfig
	Client          *http.Client
}

// Result describes the final attempt of a delivery.
type Result struct {
	StatusCode int
	Attempts   int
	DeliveryID string
	Body       []byte
}

// Sender delivers signed payloads to one URL.
type Sender struct {
	url     string
	config  *signature.Config
	opts    Options
	client  *http.Client
	breaker *breaker
	logger  logging.Logger
}

// NewSender creates a sender for url, signing with config.
func NewSender(url string, config *signature.Config, opts *Options, logger logging.Logger) (*Sender, error) {
	if url == "" {
		return nil, errors.ConfigError("delivery URL is required")
	}
	if config == nil {
		return nil, errors.ConfigError("X-Hub configuration is required")
	}
	cfg := *config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !signature.SupportedAlgorithm(cfg.Algorithm) {
		return nil, errors.ValidationError("unsupported algorithm").WithContext("algorithm", cfg.Algorithm)
	}

	var o Options
	if opts != nil {
		o = *opts
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = 500 * time.Millisecond
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = 30 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.ContentType == "" {
		o.ContentType = "application/json"
	}
	if o.Breaker == (BreakerConfig{}) {
		o.Breaker = DefaultBreakerConfig()
	}

	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logger.WithFields(logging.Field{Key: "component", Value: "delivery"}, logging.Field{Key: "url", Value: url})

	return &Sender{
		url:     url,
		config:  &cfg,
		opts:    o,
		client:  client,
		breaker: newBreaker(url, o.Breaker, logger),
		logger:  logger,
	}, nil
}

// Send posts body to the target, retrying on transport errors, 429 and 5xx.
// Other 4xx answers end the delivery with a validation error. Every attempt
// carries the same delivery id in X-Request-ID.
func (s *Sender) Send(ctx context.Context, body []byte) (*Result, error) {
	deliveryID := uuid.NewString()
	logger := s.logger.WithFields(logging.String("delivery_id", deliveryID))

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.opts.InitialInterval
	expBackoff.MaxInterval = s.opts.MaxInterval
	expBackoff.Reset()

	attempts := 0
	operation := func() (*Result, error) {
		attempts++
		result, err := s.breaker.execute(func() (*Result, error) {
			return s.attempt(ctx, body, deliveryID)
		})
		if result != nil {
			result.Attempts = attempts
		}
		if err != nil {
			logger.Warn("Delivery attempt failed",
				logging.Int("attempt", attempts),
				logging.Err(err),
			)
			if errors.IsType(err, errors.ErrTypeValidation) {
				return result, backoff.Permanent(err)
			}
		}
		return result, err
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(s.opts.MaxAttempts),
		backoff.WithNotify(func(_ error, d time.Duration) {
			logger.Debug("Retrying delivery", logging.Duration("after", d))
		}),
	)
	if err != nil {
		return result, err
	}

	logger.Info("Delivered webhook",
		logging.Int("status", result.StatusCode),
		logging.Int("attempts", result.Attempts),
	)
	return result, nil
}

func (s *Sender) attempt(ctx context.Context, body []byte, deliveryID string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(errors.ConfigError(fmt.Sprintf("invalid delivery URL: %v", err)))
	}
	req.Header.Set("Content-Type", s.opts.ContentType)
	req.Header.Set("User-Agent", "xhub-sign")
	req.Header.Set("X-Request-ID", deliveryID)
	if err := signature.SignRequest(req.Header, body, s.config); err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	result := &Result{StatusCode: resp.StatusCode, DeliveryID: deliveryID, Body: respBody}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return result, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return result, errors.InternalError(fmt.Sprintf("receiver answered %d", resp.StatusCode), nil).
			WithContext("status", resp.StatusCode)
	default:
		return result, errors.ValidationError(fmt.Sprintf("receiver rejected delivery with %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode)
	}
}
