package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
)

// LogLevel represents different log levels
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
	LevelFatal LogLevel = "FATAL"
)

// Entry is one structured log record
type Entry struct {
	Timestamp     time.Time              `json:"timestamp"`
	Level         LogLevel               `json:"level"`
	Message       string                 `json:"message"`
	Component     string                 `json:"component,omitempty"`
	Operation     string                 `json:"operation,omitempty"`
	Context       map[string]interface{} `json:"context,omitempty"`
	Error         string                 `json:"error,omitempty"`
	ErrorCode     string                 `json:"errorCode,omitempty"`
	ErrorCategory string                 `json:"errorCategory,omitempty"`
	Duration      *time.Duration         `json:"duration,omitempty"`
	RequestID     string                 `json:"requestId,omitempty"`
}

// Logger is the logging surface used throughout the console
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})

	LogError(err *apperrors.ConsoleError)
	LogOperation(operation string, duration time.Duration, err error)
	LogRequest(method, path string, statusCode int, duration time.Duration)

	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
	WithOperation(operation string) Logger

	SetLevel(level LogLevel)
	Close() error
}

// StructuredLogger writes entries as JSON or a human-readable line format
type StructuredLogger struct {
	level     LogLevel
	component string
	operation string
	context   map[string]interface{}
	output    io.Writer
	encoder   *json.Encoder
	stdLogger *log.Logger
	mu        sync.RWMutex
	useJSON   bool
}

// Config configures the structured logger
type Config struct {
	Level      LogLevel
	OutputPath string
	UseJSON    bool
	Component  string
}

// NewStructuredLogger creates a logger writing to the configured path, or
// stderr when no path is given
func NewStructuredLogger(config Config) (*StructuredLogger, error) {
	logger := &StructuredLogger{
		level:     config.Level,
		component: config.Component,
		context:   make(map[string]interface{}),
		useJSON:   config.UseJSON,
	}

	out := os.Stderr
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
	}

	logger.output = out
	if config.UseJSON {
		logger.encoder = json.NewEncoder(out)
	} else {
		logger.stdLogger = log.New(out, "", 0)
	}
	return logger, nil
}

// Close closes the logger and any associated resources
func (l *StructuredLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.output.(*os.File); ok && f != os.Stderr && f != os.Stdout {
		return f.Close()
	}
	return nil
}

// SetLevel sets the logging level
func (l *StructuredLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

var levelPriority = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

func (l *StructuredLogger) shouldLog(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return levelPriority[level] >= levelPriority[l.level]
}

func (l *StructuredLogger) createEntry(level LogLevel, msg string) *Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry := &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Component: l.component,
		Operation: l.operation,
	}
	if len(l.context) > 0 {
		entry.Context = make(map[string]interface{}, len(l.context))
		for k, v := range l.context {
			entry.Context[k] = v
		}
	}
	return entry
}

func (l *StructuredLogger) writeEntry(entry *Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.useJSON {
		l.encoder.Encode(entry)
		return
	}

	timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")

	var contextStr string
	if len(entry.Context) > 0 {
		parts := make([]string, 0, len(entry.Context))
		for k, v := range entry.Context {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	var prefix string
	if entry.Component != "" {
		prefix = "[" + entry.Component
		if entry.Operation != "" {
			prefix += ":" + entry.Operation
		}
		prefix += "] "
	}

	msg := fmt.Sprintf("%s %s %s%s%s", timestamp, entry.Level, prefix, entry.Message, contextStr)
	if entry.Error != "" {
		msg += fmt.Sprintf(" | Error: %s", entry.Error)
	}
	l.stdLogger.Println(msg)
}

// Debug logs a debug message
func (l *StructuredLogger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(LevelDebug) {
		l.writeEntry(l.createEntry(LevelDebug, fmt.Sprintf(msg, args...)))
	}
}

// Info logs an info message
func (l *StructuredLogger) Info(msg string, args ...interface{}) {
	if l.shouldLog(LevelInfo) {
		l.writeEntry(l.createEntry(LevelInfo, fmt.Sprintf(msg, args...)))
	}
}

// Warn logs a warning message
func (l *StructuredLogger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(LevelWarn) {
		l.writeEntry(l.createEntry(LevelWarn, fmt.Sprintf(msg, args...)))
	}
}

// Error logs an error message
func (l *StructuredLogger) Error(msg string, args ...interface{}) {
	if l.shouldLog(LevelError) {
		l.writeEntry(l.createEntry(LevelError, fmt.Sprintf(msg, args...)))
	}
}

// Fatal logs a fatal message and exits
func (l *StructuredLogger) Fatal(msg string, args ...interface{}) {
	l.writeEntry(l.createEntry(LevelFatal, fmt.Sprintf(msg, args...)))
	os.Exit(1)
}

// LogError logs a structured error with its code and category
func (l *StructuredLogger) LogError(err *apperrors.ConsoleError) {
	if !l.shouldLog(LevelError) || err == nil {
		return
	}

	entry := l.createEntry(LevelError, err.Message)
	entry.Error = err.Error()
	entry.ErrorCode = err.Code
	entry.ErrorCategory = string(err.Category)

	if entry.Context == nil {
		entry.Context = make(map[string]interface{})
	}
	for k, v := range err.Context {
		entry.Context[k] = v
	}
	l.writeEntry(entry)
}

// LogOperation logs an operation with its duration and optional error
func (l *StructuredLogger) LogOperation(operation string, duration time.Duration, err error) {
	level := LevelInfo
	msg := fmt.Sprintf("Operation %s completed", operation)
	if err != nil {
		level = LevelError
		msg = fmt.Sprintf("Operation %s failed", operation)
	}
	if !l.shouldLog(level) {
		return
	}

	entry := l.createEntry(level, msg)
	entry.Operation = operation
	entry.Duration = &duration

	if err != nil {
		entry.Error = err.Error()
		if cerr, ok := err.(*apperrors.ConsoleError); ok {
			entry.ErrorCode = cerr.Code
			entry.ErrorCategory = string(cerr.Category)
		}
	}
	l.writeEntry(entry)
}

// LogRequest logs one HTTP request with its status and duration
func (l *StructuredLogger) LogRequest(method, path string, statusCode int, duration time.Duration) {
	level := LevelInfo
	if statusCode >= 400 {
		level = LevelWarn
	}
	if statusCode >= 500 {
		level = LevelError
	}
	if !l.shouldLog(level) {
		return
	}

	entry := l.createEntry(level, fmt.Sprintf("%s %s - %d", method, path, statusCode))
	entry.Duration = &duration

	if entry.Context == nil {
		entry.Context = make(map[string]interface{})
	}
	entry.Context["httpMethod"] = method
	entry.Context["httpPath"] = path
	entry.Context["httpStatus"] = statusCode
	l.writeEntry(entry)
}

// WithContext returns a logger carrying request-scoped values
func (l *StructuredLogger) WithContext(ctx context.Context) Logger {
	clone := l.clone()
	if requestID, ok := ctx.Value("requestId").(string); ok {
		clone.context["requestId"] = requestID
	}
	return clone
}

// WithComponent returns a logger scoped to a component name
func (l *StructuredLogger) WithComponent(component string) Logger {
	clone := l.clone()
	clone.component = component
	return clone
}

// WithOperation returns a logger scoped to an operation name
func (l *StructuredLogger) WithOperation(operation string) Logger {
	clone := l.clone()
	clone.operation = operation
	return clone
}

func (l *StructuredLogger) clone() *StructuredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	clone := &StructuredLogger{
		level:     l.level,
		component: l.component,
		operation: l.operation,
		output:    l.output,
		encoder:   l.encoder,
		stdLogger: l.stdLogger,
		useJSON:   l.useJSON,
		context:   make(map[string]interface{}, len(l.context)),
	}
	for k, v := range l.context {
		clone.context[k] = v
	}
	return clone
}

var defaultLogger *StructuredLogger
var defaultLoggerOnce sync.Once

// defaultOutputPath resolves where the process-wide logger writes:
// SESSIONAUT_LOG_FILE when set, a file in the temp directory otherwise.
// Writing to stderr is never an option here since the terminal belongs
// to the UI.
func defaultOutputPath() string {
	if p := os.Getenv("SESSIONAUT_LOG_FILE"); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "sessionaut.log")
}

// Default returns the process-wide logger, created on first use
func Default() Logger {
	defaultLoggerOnce.Do(func() {
		logger, err := NewStructuredLogger(Config{
			Level:      LevelInfo,
			OutputPath: defaultOutputPath(),
			UseJSON:    false,
			Component:  "sessionaut",
		})
		if err != nil {
			logger = &StructuredLogger{
				level:     LevelInfo,
				component: "sessionaut",
				context:   make(map[string]interface{}),
				output:    io.Discard,
				stdLogger: log.New(io.Discard, "", 0),
			}
		}
		defaultLogger = logger
	})
	return defaultLogger
}

// Package-level convenience functions

// Debug logs a debug message using the default logger
func Debug(msg string, args ...interface{}) { Default().Debug(msg, args...) }

// Info logs an info message using the default logger
func Info(msg string, args ...interface{}) { Default().Info(msg, args...) }

// Warn logs a warning message using the default logger
func Warn(msg string, args ...interface{}) { Default().Warn(msg, args...) }

// Error logs an error message using the default logger
func Error(msg string, args ...interface{}) { Default().Error(msg, args...) }

// LogError logs a structured error using the default logger
func LogError(err *apperrors.ConsoleError) { Default().LogError(err) }
