package delivery

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"xhub/internal/common/errors"
	"xhub/internal/common/logging"
)

// BreakerConfig holds the configuration for the per-target circuit breaker
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures int
	// Timeout is how long the breaker stays open before going half-open
	Timeout time.Duration
	// MaxConcurrentRequests is the number of probes allowed while half-open
	MaxConcurrentRequests int
}

// DefaultBreakerConfig returns a sensible default configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:           5,
		Timeout:               60 * time.Second,
		MaxConcurrentRequests: 1,
	}
}

// Validate checks if the configuration is valid
func (c BreakerConfig) Validate() error {
	if c.MaxFailures <= 0 {
		return fmt.Errorf("MaxFailures must be positive, got %d", c.MaxFailures)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("Timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("MaxConcurrentRequests must be positive, got %d", c.MaxConcurrentRequests)
	}
	return nil
}

type breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

func newBreaker(name string, config BreakerConfig, logger logging.Logger) *breaker {
	if err := config.Validate(); err != nil {
		logger.Warn("Invalid circuit breaker config, using defaults",
			logging.Field{Key: "error", Value: err.Error()},
			logging.Field{Key: "name", Value: name},
		)
		config = DefaultBreakerConfig()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(config.MaxConcurrentRequests),
		Interval:    time.Minute,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.MaxFailures)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				logging.Field{Key: "breaker", Value: name},
				logging.Field{Key: "from", Value: from.String()},
				logging.Field{Key: "to", Value: to.String()},
			)
		},
		IsSuccessful: func(err error) bool {
			// A receiver rejecting the payload is answering, not failing.
			return err == nil || errors.IsType(err, errors.ErrTypeValidation)
		},
	}

	return &breaker{name: name, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breaker) execute(fn func() (*Result, error)) (*Result, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		result, err := fn()
		return result, err
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, errors.InternalError(fmt.Sprintf("circuit breaker '%s' is open", b.name), err)
	}

	result, _ := out.(*Result)
	return result, err
}

func (b *breaker) state() gobreaker.State {
	return b.cb.State()
}
