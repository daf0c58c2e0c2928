package errors

import (
	"sync"
	"time"

	cblog "github.com/charmbracelet/log"
)

// ErrorHandler processes errors consistently: log, record, notify, and
// decide how the application should respond
type ErrorHandler interface {
	Handle(err *ConsoleError) *ErrorResponse
	Log(err *ConsoleError)
	Notify(err *ConsoleError)
	ShouldRetry(err *ConsoleError) bool
	RetryDelay(err *ConsoleError) time.Duration
}

// ErrorResponse represents how the application should respond to an error
type ErrorResponse struct {
	ShouldExit     bool           `json:"shouldExit"`
	DisplayMessage string         `json:"displayMessage"`
	Mode           string         `json:"mode"` // error, connection-error, auth-required
	RetryAfter     *time.Duration `json:"retryAfter,omitempty"`
	UserActions    []UserAction   `json:"userActions,omitempty"`
}

// UserAction represents an action the user can take to resolve an error
type UserAction struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
}

// Handler is the concrete ErrorHandler used by the console
type Handler struct {
	logger     *cblog.Logger
	history    []ConsoleError
	historyMu  sync.RWMutex
	maxHistory int
	notifyFunc func(*ConsoleError)
}

// HandlerConfig configures the error handler
type HandlerConfig struct {
	Logger         *cblog.Logger
	MaxHistory     int
	NotifyCallback func(*ConsoleError)
}

// NewHandler creates an error handler with the given configuration
func NewHandler(config HandlerConfig) *Handler {
	h := &Handler{
		logger:     config.Logger,
		maxHistory: config.MaxHistory,
		notifyFunc: config.NotifyCallback,
	}
	if h.logger == nil {
		h.logger = cblog.Default().With("component", "errors")
	}
	if h.maxHistory <= 0 {
		h.maxHistory = 100
	}
	return h
}

// Handle logs the error, records it in the history, notifies the UI, and
// returns the response the caller should act on
func (h *Handler) Handle(err *ConsoleError) *ErrorResponse {
	if err == nil {
		return nil
	}
	h.Log(err)
	h.addToHistory(*err)
	h.Notify(err)
	return h.determineResponse(err)
}

// Log writes the error through the structured logger at a level matching
// its severity
func (h *Handler) Log(err *ConsoleError) {
	if err == nil {
		return
	}
	kv := []interface{}{"category", err.Category, "code", err.Code}
	if err.Details != "" {
		kv = append(kv, "details", err.Details)
	}
	if err.Cause != nil {
		kv = append(kv, "cause", err.Cause)
	}
	for k, v := range err.Context {
		kv = append(kv, k, v)
	}

	switch err.Severity {
	case SeverityCritical, SeverityHigh:
		h.logger.Error(err.Message, kv...)
	case SeverityMedium:
		h.logger.Warn(err.Message, kv...)
	default:
		h.logger.Info(err.Message, kv...)
	}
}

// Notify forwards the error to the UI notification callback, if any
func (h *Handler) Notify(err *ConsoleError) {
	if err == nil || h.notifyFunc == nil {
		return
	}
	h.notifyFunc(err)
}

// ShouldRetry determines if the failed operation is worth retrying
func (h *Handler) ShouldRetry(err *ConsoleError) bool {
	if err == nil || !err.Recoverable {
		return false
	}
	switch err.Category {
	case ErrorNetwork, ErrorTimeout:
		return true
	case ErrorAPI:
		return err.Code == "CONNECTION_REFUSED" || err.Code == "TIMEOUT" || err.Code == "SERVICE_UNAVAILABLE" || err.Code == "RATE_LIMITED"
	default:
		return false
	}
}

// RetryDelay returns the delay to wait before retrying an operation
func (h *Handler) RetryDelay(err *ConsoleError) time.Duration {
	if err == nil {
		return 0
	}
	switch err.Category {
	case ErrorNetwork:
		return 2 * time.Second
	case ErrorTimeout:
		return 3 * time.Second
	default:
		return 1 * time.Second
	}
}

// History returns a copy of the recent error history
func (h *Handler) History() []ConsoleError {
	h.historyMu.RLock()
	defer h.historyMu.RUnlock()

	history := make([]ConsoleError, len(h.history))
	copy(history, h.history)
	return history
}

// ClearHistory drops all recorded errors
func (h *Handler) ClearHistory() {
	h.historyMu.Lock()
	defer h.historyMu.Unlock()
	h.history = nil
}

func (h *Handler) addToHistory(err ConsoleError) {
	h.historyMu.Lock()
	defer h.historyMu.Unlock()

	h.history = append(h.history, err)
	if len(h.history) > h.maxHistory {
		h.history = h.history[1:]
	}
}

func (h *Handler) determineResponse(err *ConsoleError) *ErrorResponse {
	response := &ErrorResponse{
		DisplayMessage: err.Message,
		ShouldExit:     false,
	}

	switch err.Category {
	case ErrorAuth:
		response.Mode = "auth-required"
		response.UserActions = []UserAction{
			{
				Label:       "Check keypair",
				Description: "Verify the access and secret key for the current cluster",
				Command:     "sessionaut config",
			},
		}
	case ErrorNetwork:
		response.Mode = "connection-error"
		if h.ShouldRetry(err) {
			delay := h.RetryDelay(err)
			response.RetryAfter = &delay
		}
		response.UserActions = []UserAction{
			{Label: "Retry", Description: "Try the operation again"},
			{Label: "Check endpoint", Description: "Verify connectivity to the cluster API endpoint"},
		}
	case ErrorConfig:
		response.Mode = "error"
		response.UserActions = []UserAction{
			{
				Label:       "Check config",
				Description: "Verify the cluster configuration file",
				Command:     "sessionaut config",
			},
		}
	default:
		response.Mode = "error"
		if err.UserAction != "" {
			response.UserActions = []UserAction{
				{Label: "Suggested action", Description: err.UserAction},
			}
		}
	}

	if err.Severity == SeverityCritical {
		response.ShouldExit = true
	}
	return response
}

// ConvertError converts a plain error to a ConsoleError, passing through
// errors that already carry structure
func ConvertError(err error, category ErrorCategory, code string) *ConsoleError {
	if err == nil {
		return nil
	}
	if cerr, ok := err.(*ConsoleError); ok {
		return cerr
	}
	return Wrap(err, category, code, err.Error())
}
