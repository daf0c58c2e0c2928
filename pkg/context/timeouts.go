package context

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
)

// TimeoutConfig holds timeout budgets for the different operation kinds
type TimeoutConfig struct {
	Default  time.Duration
	API      time.Duration
	Logs     time.Duration
	Auth     time.Duration
	Folder   time.Duration
	Resource time.Duration
	UI       time.Duration
}

// DefaultTimeouts provides sensible defaults per operation type
var DefaultTimeouts = TimeoutConfig{
	Default:  5 * time.Second,
	API:      3 * time.Second,
	Logs:     15 * time.Second, // log tails can be large
	Auth:     5 * time.Second,
	Folder:   10 * time.Second, // folder clones may take a while server-side
	Resource: 3 * time.Second,
	UI:       2 * time.Second,
}

// OperationType represents different types of operations that need timeouts
type OperationType string

const (
	OpDefault  OperationType = "default"
	OpAPI      OperationType = "api"
	OpLogs     OperationType = "logs"
	OpAuth     OperationType = "auth"
	OpFolder   OperationType = "folder"
	OpResource OperationType = "resource"
	OpUI       OperationType = "ui"
)

// WithTimeout creates a context with the timeout matching the operation type.
// A parent that was already scoped through this package keeps its deadline;
// nested calls do not shrink a wider budget set by the caller.
func WithTimeout(parent context.Context, opType OperationType) (context.Context, context.CancelFunc) {
	if _, ok := GetTimeoutDuration(parent); ok {
		return context.WithCancel(parent)
	}
	timeout := timeoutFor(opType)
	if timeout == 0 {
		return context.WithCancel(parent)
	}
	return withStoredTimeout(parent, timeout)
}

func timeoutFor(opType OperationType) time.Duration {
	switch opType {
	case OpAPI:
		return DefaultTimeouts.API
	case OpLogs:
		return DefaultTimeouts.Logs
	case OpAuth:
		return DefaultTimeouts.Auth
	case OpFolder:
		return DefaultTimeouts.Folder
	case OpResource:
		return DefaultTimeouts.Resource
	case OpUI:
		return DefaultTimeouts.UI
	default:
		return DefaultTimeouts.Default
	}
}

// HandleTimeout converts a context error into a structured error, or nil
// when the context is still live
func HandleTimeout(ctx context.Context, opType OperationType) *apperrors.ConsoleError {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return apperrors.TimeoutError(
			"OPERATION_TIMEOUT",
			fmt.Sprintf("Operation timed out after %v", timeoutFor(opType)),
		).WithDetails(fmt.Sprintf("Operation type: %s", opType))
	case context.Canceled:
		return apperrors.New(
			apperrors.ErrorInternal,
			"OPERATION_CANCELED",
			"Operation was canceled",
		).WithDetails(fmt.Sprintf("Operation type: %s", opType))
	}
	return nil
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	if err == context.DeadlineExceeded {
		return true
	}
	if cerr, ok := err.(*apperrors.ConsoleError); ok {
		return cerr.IsCategory(apperrors.ErrorTimeout)
	}
	return false
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	if err == context.Canceled {
		return true
	}
	if cerr, ok := err.(*apperrors.ConsoleError); ok {
		return cerr.IsCode("OPERATION_CANCELED")
	}
	return false
}

// SetRequestTimeout applies a user-configured request timeout to every
// network-bound operation kind. UI timeouts are left alone so the
// interface stays responsive regardless of configuration.
func SetRequestTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	DefaultTimeouts.Default = timeout
	DefaultTimeouts.API = timeout
	DefaultTimeouts.Logs = timeout
	DefaultTimeouts.Auth = timeout
	DefaultTimeouts.Folder = timeout
	DefaultTimeouts.Resource = timeout
}

type timeoutDurationKey struct{}

// GetTimeoutDuration returns the timeout that was applied when the
// context was created through this package
func GetTimeoutDuration(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(timeoutDurationKey{}).(time.Duration)
	return d, ok
}

func withStoredTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.WithValue(parent, timeoutDurationKey{}, timeout)
	return context.WithTimeout(ctx, timeout)
}

// WithMinAPITimeout creates an API context whose timeout is at least min,
// even when the configured request timeout is shorter
func WithMinAPITimeout(parent context.Context, min time.Duration) (context.Context, context.CancelFunc) {
	timeout := DefaultTimeouts.API
	if timeout < min {
		timeout = min
	}
	return withStoredTimeout(parent, timeout)
}

// Convenience wrappers for common timeout patterns

// WithAPITimeout creates a context for general API calls
func WithAPITimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpAPI)
}

// WithLogsTimeout creates a context for session log fetches
func WithLogsTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpLogs)
}

// WithAuthTimeout creates a context for authentication checks
func WithAuthTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpAuth)
}

// WithFolderTimeout creates a context for virtual-folder operations
func WithFolderTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpFolder)
}

// WithResourceTimeout creates a context for resource accounting queries
func WithResourceTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, OpResource)
}
