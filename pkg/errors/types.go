package errors

import (
	"fmt"
	"time"
)

// ErrorCategory groups errors by the subsystem that produced them
type ErrorCategory string

const (
	ErrorNetwork     ErrorCategory = "network"
	ErrorAuth        ErrorCategory = "auth"
	ErrorValidation  ErrorCategory = "validation"
	ErrorConfig      ErrorCategory = "config"
	ErrorAPI         ErrorCategory = "api"
	ErrorTimeout     ErrorCategory = "timeout"
	ErrorPermission  ErrorCategory = "permission"
	ErrorUnavailable ErrorCategory = "unavailable"
	ErrorInternal    ErrorCategory = "internal"
	ErrorSession     ErrorCategory = "session" // compute session lifecycle errors
	ErrorStorage     ErrorCategory = "storage" // virtual folder and file errors
	ErrorQuota       ErrorCategory = "quota"   // resource policy / quota violations
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// ConsoleError is a structured error carrying enough metadata to drive
// logging, the status bar, and retry decisions
type ConsoleError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"cause,omitempty"`
	Recoverable bool                   `json:"recoverable"`
	UserAction  string                 `json:"userAction,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *ConsoleError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ConsoleError) Unwrap() error {
	return e.Cause
}

// Is matches errors by category and code so error chains can be compared
func (e *ConsoleError) Is(target error) bool {
	if t, ok := target.(*ConsoleError); ok {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// WithContext adds contextual information to the error
func (e *ConsoleError) WithContext(key string, value interface{}) *ConsoleError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause of this error
func (e *ConsoleError) WithCause(cause error) *ConsoleError {
	e.Cause = cause
	return e
}

// WithUserAction sets a suggested user action for resolving the error
func (e *ConsoleError) WithUserAction(action string) *ConsoleError {
	e.UserAction = action
	return e
}

// New creates a ConsoleError with medium severity and no retry hint
func New(category ErrorCategory, code, message string) *ConsoleError {
	return &ConsoleError{
		Category:    category,
		Severity:    SeverityMedium,
		Code:        code,
		Message:     message,
		Recoverable: false,
		Timestamp:   time.Now(),
	}
}

// Wrap creates a ConsoleError that wraps an existing error
func Wrap(err error, category ErrorCategory, code, message string) *ConsoleError {
	return &ConsoleError{
		Category:    category,
		Severity:    SeverityMedium,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: false,
		Timestamp:   time.Now(),
	}
}

// ValidationError creates a validation-related error
func ValidationError(code, message string) *ConsoleError {
	return New(ErrorValidation, code, message).
		WithSeverity(SeverityMedium).
		WithUserAction("Please check your input and try again")
}

// ConfigError creates a configuration-related error
func ConfigError(code, message string) *ConsoleError {
	return New(ErrorConfig, code, message).
		WithSeverity(SeverityHigh).
		WithUserAction("Please check your cluster configuration")
}

// TimeoutError creates a timeout-related error
func TimeoutError(code, message string) *ConsoleError {
	return New(ErrorTimeout, code, message).
		WithSeverity(SeverityMedium).
		AsRecoverable().
		WithUserAction("The operation timed out. Please try again")
}

// SessionError creates a compute-session lifecycle error
func SessionError(code, message string) *ConsoleError {
	return New(ErrorSession, code, message).
		WithSeverity(SeverityMedium)
}

// StorageError creates a virtual-folder related error
func StorageError(code, message string) *ConsoleError {
	return New(ErrorStorage, code, message).
		WithSeverity(SeverityMedium)
}

// QuotaError creates a resource-policy violation error
func QuotaError(code, message string) *ConsoleError {
	return New(ErrorQuota, code, message).
		WithSeverity(SeverityHigh).
		WithUserAction("Release resources or ask an administrator to raise your policy")
}

// Helper methods for fluent error construction

// WithSeverity sets the severity level
func (e *ConsoleError) WithSeverity(severity ErrorSeverity) *ConsoleError {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *ConsoleError) WithDetails(details string) *ConsoleError {
	e.Details = details
	return e
}

// AsRecoverable marks the error as recoverable
func (e *ConsoleError) AsRecoverable() *ConsoleError {
	e.Recoverable = true
	return e
}

// AsNonRecoverable marks the error as non-recoverable
func (e *ConsoleError) AsNonRecoverable() *ConsoleError {
	e.Recoverable = false
	return e
}

// IsRecoverable returns true if the error can be recovered from
func (e *ConsoleError) IsRecoverable() bool {
	return e.Recoverable
}

// IsCritical returns true if the error is critical severity
func (e *ConsoleError) IsCritical() bool {
	return e.Severity == SeverityCritical
}

// IsCategory checks if the error belongs to a specific category
func (e *ConsoleError) IsCategory(category ErrorCategory) bool {
	return e.Category == category
}

// IsCode checks if the error has a specific code
func (e *ConsoleError) IsCode(code string) bool {
	return e.Code == code
}
