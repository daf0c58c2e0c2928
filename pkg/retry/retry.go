package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
	"github.com/sessionaut/sessionaut/pkg/logging"
)

// Config controls backoff and the retry predicate
type Config struct {
	MaxAttempts  int                               `json:"maxAttempts"`
	InitialDelay time.Duration                     `json:"initialDelay"`
	MaxDelay     time.Duration                     `json:"maxDelay"`
	Multiplier   float64                           `json:"multiplier"`
	Jitter       bool                              `json:"jitter"`
	ShouldRetry  func(*apperrors.ConsoleError) bool `json:"-"`
}

// DefaultConfig provides sensible retry defaults
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 1 * time.Second,
	MaxDelay:     30 * time.Second,
	Multiplier:   2.0,
	Jitter:       true,
	ShouldRetry:  DefaultShouldRetry,
}

// NetworkConfig is tuned for raw network operations
var NetworkConfig = Config{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   1.5,
	Jitter:       true,
	ShouldRetry:  NetworkShouldRetry,
}

// APIConfig is tuned for cluster API calls
var APIConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 1 * time.Second,
	MaxDelay:     15 * time.Second,
	Multiplier:   2.0,
	Jitter:       true,
	ShouldRetry:  APIShouldRetry,
}

// Func is a function that can be retried; attempt starts at 1
type Func func(attempt int) error

// WithBackoff executes fn with exponential backoff until it succeeds, the
// predicate declines, the attempts run out, or the context is cancelled
func WithBackoff(ctx context.Context, config Config, fn Func) error {
	logger := logging.Default().WithComponent("retry")

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		start := time.Now()
		err := fn(attempt)
		duration := time.Since(start)

		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded after %d attempts (took %v)", attempt, duration)
			}
			return nil
		}

		lastErr = err

		cerr, ok := err.(*apperrors.ConsoleError)
		if !ok {
			cerr = apperrors.Wrap(err, apperrors.ErrorInternal, "RETRY_OPERATION_FAILED", "Operation failed during retry")
		}

		logger.Warn("Attempt %d/%d failed (took %v): %s",
			attempt, config.MaxAttempts, duration, cerr.Error())

		if !config.ShouldRetry(cerr) {
			logger.Info("Not retrying due to error type: %s", cerr.Category)
			return cerr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		if ctx.Err() != nil {
			return apperrors.Wrap(ctx.Err(), apperrors.ErrorTimeout, "RETRY_CANCELLED", "Retry cancelled due to context")
		}

		delay := backoffDelay(attempt, config)
		logger.Debug("Waiting %v before attempt %d", delay, attempt+1)

		select {
		case <-ctx.Done():
			return apperrors.Wrap(ctx.Err(), apperrors.ErrorTimeout, "RETRY_CANCELLED", "Retry cancelled due to context")
		case <-time.After(delay):
		}
	}

	if cerr, ok := lastErr.(*apperrors.ConsoleError); ok {
		return cerr.WithContext("retryAttempts", config.MaxAttempts)
	}
	return apperrors.Wrap(lastErr, apperrors.ErrorInternal, "RETRY_EXHAUSTED",
		"All retry attempts failed").
		WithContext("maxAttempts", config.MaxAttempts).
		WithUserAction("The operation failed after multiple attempts. Check your connection and try again")
}

// backoffDelay computes the delay before the next attempt
func backoffDelay(attempt int, config Config) time.Duration {
	delay := time.Duration(float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt-1)))
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	if config.Jitter {
		// 10% jitter to spread out synchronized clients
		delay += time.Duration(rand.Float64() * float64(delay) * 0.1)
	}
	return delay
}

// DefaultShouldRetry is the default retry predicate
func DefaultShouldRetry(err *apperrors.ConsoleError) bool {
	if err == nil {
		return false
	}
	switch err.Category {
	case apperrors.ErrorAuth, apperrors.ErrorValidation, apperrors.ErrorPermission, apperrors.ErrorQuota:
		return false
	case apperrors.ErrorNetwork, apperrors.ErrorTimeout, apperrors.ErrorAPI:
		return true
	default:
		return err.Recoverable
	}
}

// NetworkShouldRetry retries transport failures and transient API errors
func NetworkShouldRetry(err *apperrors.ConsoleError) bool {
	if err == nil {
		return false
	}
	switch err.Category {
	case apperrors.ErrorNetwork, apperrors.ErrorTimeout:
		return true
	case apperrors.ErrorAuth, apperrors.ErrorValidation, apperrors.ErrorPermission, apperrors.ErrorQuota:
		return false
	case apperrors.ErrorAPI:
		return err.IsCode("CONNECTION_REFUSED") ||
			err.IsCode("TIMEOUT") ||
			err.IsCode("SERVICE_UNAVAILABLE") ||
			err.IsCode("RATE_LIMITED") ||
			err.IsCode("SERVER_ERROR")
	default:
		return err.Recoverable
	}
}

// APIShouldRetry retries server-side failures but never client errors
func APIShouldRetry(err *apperrors.ConsoleError) bool {
	if err == nil {
		return false
	}
	switch err.Category {
	case apperrors.ErrorAuth, apperrors.ErrorValidation, apperrors.ErrorPermission, apperrors.ErrorQuota:
		return false
	case apperrors.ErrorNetwork, apperrors.ErrorTimeout:
		return true
	case apperrors.ErrorAPI:
		return err.IsCode("SERVER_ERROR") ||
			err.IsCode("RATE_LIMITED") ||
			err.IsCode("SERVICE_UNAVAILABLE") ||
			err.IsCode("TIMEOUT")
	default:
		return err.Recoverable
	}
}

// Operation wraps a named operation with retry logic and logging
type Operation struct {
	Name    string
	Config  Config
	Logger  logging.Logger
	Context context.Context
}

// NewOperation creates a named retryable operation
func NewOperation(name string, config Config) *Operation {
	return &Operation{
		Name:    name,
		Config:  config,
		Logger:  logging.Default().WithOperation(name),
		Context: context.Background(),
	}
}

// WithContext sets the context for the operation
func (op *Operation) WithContext(ctx context.Context) *Operation {
	op.Context = ctx
	return op
}

// WithLogger sets a custom logger
func (op *Operation) WithLogger(logger logging.Logger) *Operation {
	op.Logger = logger
	return op
}

// Execute runs the operation with retry logic
func (op *Operation) Execute(fn Func) error {
	start := time.Now()
	err := WithBackoff(op.Context, op.Config, fn)
	duration := time.Since(start)

	if err != nil {
		op.Logger.Error("Operation %s failed after %v: %v", op.Name, duration, err)
	} else {
		op.Logger.Debug("Operation %s completed in %v", op.Name, duration)
	}
	return err
}

// NetworkOperation retries a named network operation with NetworkConfig
func NetworkOperation(ctx context.Context, name string, fn Func) error {
	return NewOperation(name, NetworkConfig).WithContext(ctx).Execute(fn)
}

// APIOperation retries a named API operation with APIConfig
func APIOperation(ctx context.Context, name string, fn Func) error {
	return NewOperation(name, APIConfig).WithContext(ctx).Execute(fn)
}

// Do executes fn with the default retry policy
func Do(ctx context.Context, fn func() error) error {
	return WithBackoff(ctx, DefaultConfig, func(int) error { return fn() })
}
