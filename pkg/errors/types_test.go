package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestConsoleErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *ConsoleError
		want string
	}{
		{
			"without details",
			New(ErrorSession, "SESSION_NOT_FOUND", "session does not exist"),
			"[session:SESSION_NOT_FOUND] session does not exist",
		},
		{
			"with details",
			New(ErrorStorage, "FOLDER_EXISTS", "folder already exists").WithDetails("name: data"),
			"[storage:FOLDER_EXISTS] folder already exists: name: data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrorNetwork, "CONNECTION_REFUSED", "cannot reach cluster")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if stderrors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestIsMatchesCategoryAndCode(t *testing.T) {
	a := New(ErrorAuth, "UNAUTHORIZED", "bad keypair")
	b := New(ErrorAuth, "UNAUTHORIZED", "different message")
	c := New(ErrorAuth, "FORBIDDEN", "no access")

	if !stderrors.Is(a, b) {
		t.Error("errors with same category and code should match")
	}
	if stderrors.Is(a, c) {
		t.Error("errors with different codes should not match")
	}
}

func TestFluentBuilders(t *testing.T) {
	err := New(ErrorAPI, "SERVER_ERROR", "internal error").
		WithSeverity(SeverityCritical).
		WithDetails("status 500").
		WithUserAction("try again later").
		WithContext("sessionId", "abc").
		AsRecoverable()

	if !err.IsRecoverable() {
		t.Error("expected recoverable")
	}
	if !err.IsCritical() {
		t.Error("expected critical severity")
	}
	if !err.IsCategory(ErrorAPI) || !err.IsCode("SERVER_ERROR") {
		t.Error("category/code accessors mismatch")
	}
	if err.Context["sessionId"] != "abc" {
		t.Errorf("context not recorded: %+v", err.Context)
	}
}

func TestDomainConstructors(t *testing.T) {
	if err := QuotaError("QUOTA_EXCEEDED", "cpu slots exhausted"); err.Severity != SeverityHigh {
		t.Errorf("quota errors should be high severity, got %s", err.Severity)
	}
	if err := TimeoutError("TIMEOUT", "request timed out"); !err.Recoverable {
		t.Error("timeout errors should be recoverable")
	}
	if err := ConfigError("CONFIG_INVALID", "bad config"); !strings.Contains(err.UserAction, "configuration") {
		t.Errorf("config errors should suggest checking configuration, got %q", err.UserAction)
	}
}

func TestConvertError(t *testing.T) {
	if got := ConvertError(nil, ErrorAPI, "X"); got != nil {
		t.Error("nil error should convert to nil")
	}

	orig := New(ErrorSession, "ALREADY_TERMINATED", "gone")
	if got := ConvertError(orig, ErrorAPI, "OTHER"); got != orig {
		t.Error("structured errors should pass through unchanged")
	}

	plain := stderrors.New("boom")
	got := ConvertError(plain, ErrorInternal, "UNEXPECTED")
	if got.Category != ErrorInternal || got.Cause != plain {
		t.Errorf("plain error not wrapped correctly: %+v", got)
	}
}

func TestHandlerResponses(t *testing.T) {
	var notified *ConsoleError
	h := NewHandler(HandlerConfig{
		MaxHistory:     2,
		NotifyCallback: func(e *ConsoleError) { notified = e },
	})

	authErr := New(ErrorAuth, "UNAUTHORIZED", "bad keypair")
	resp := h.Handle(authErr)
	if resp.Mode != "auth-required" {
		t.Errorf("auth error mode = %q, want auth-required", resp.Mode)
	}
	if notified != authErr {
		t.Error("notify callback not invoked")
	}

	netErr := New(ErrorNetwork, "CONNECTION_REFUSED", "down").AsRecoverable()
	resp = h.Handle(netErr)
	if resp.Mode != "connection-error" {
		t.Errorf("network error mode = %q, want connection-error", resp.Mode)
	}
	if resp.RetryAfter == nil {
		t.Error("recoverable network errors should carry a retry delay")
	}

	critical := New(ErrorInternal, "PANIC", "unrecoverable").WithSeverity(SeverityCritical)
	if resp = h.Handle(critical); !resp.ShouldExit {
		t.Error("critical errors should request exit")
	}

	// history is capped at MaxHistory
	if got := len(h.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}

	h.ClearHistory()
	if len(h.History()) != 0 {
		t.Error("history should be empty after clear")
	}
}

func TestShouldRetry(t *testing.T) {
	h := NewHandler(HandlerConfig{})

	tests := []struct {
		name string
		err  *ConsoleError
		want bool
	}{
		{"recoverable network", New(ErrorNetwork, "X", "m").AsRecoverable(), true},
		{"non-recoverable network", New(ErrorNetwork, "X", "m"), false},
		{"recoverable rate limit", New(ErrorAPI, "RATE_LIMITED", "m").AsRecoverable(), true},
		{"recoverable api other code", New(ErrorAPI, "NOT_FOUND", "m").AsRecoverable(), false},
		{"auth never retries", New(ErrorAuth, "UNAUTHORIZED", "m").AsRecoverable(), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ShouldRetry(tt.err); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}
