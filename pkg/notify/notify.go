package notify

import (
	"fmt"
	"sync"

	cblog "github.com/charmbracelet/log"
)

// Level represents the level of a notification
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelDebug Level = "debug"
)

// Message represents a notification delivered to the UI
type Message struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// ChangeHandler is called when a new notification arrives
type ChangeHandler func(message Message)

// Notifier defines operations for surfacing messages to the user.
// Components receive a Notifier at construction time instead of
// reaching for a process-wide singleton.
type Notifier interface {
	// Info surfaces an informational message
	Info(title string)

	// Warn surfaces a warning
	Warn(title string)

	// Error surfaces an error with an optional detail line
	Error(title string, detail string)

	// Debug surfaces a debug message when debug output is enabled
	Debug(title string)

	// SetProgress updates the progress indicator (cur of total)
	SetProgress(current, total int)

	// Current returns the most recent message, if any
	Current() (Message, bool)

	// Clear clears the current message and progress
	Clear()

	// SetHandler sets the change handler
	SetHandler(handler ChangeHandler)
}

// Service provides a concrete implementation of Notifier
type Service struct {
	mu           sync.Mutex
	handler      ChangeHandler
	current      Message
	hasCurrent   bool
	debugEnabled bool
}

// Config holds configuration for the notification service
type Config struct {
	Handler      ChangeHandler
	DebugEnabled bool
}

// NewService creates a new Notifier implementation
func NewService(config Config) *Service {
	return &Service{
		handler:      config.Handler,
		debugEnabled: config.DebugEnabled,
	}
}

// Info implements Notifier.Info
func (s *Service) Info(title string) {
	s.dispatch(Message{Level: LevelInfo, Title: title})
}

// Warn implements Notifier.Warn
func (s *Service) Warn(title string) {
	s.dispatch(Message{Level: LevelWarn, Title: title})
}

// Error implements Notifier.Error
func (s *Service) Error(title string, detail string) {
	s.dispatch(Message{Level: LevelError, Title: title, Detail: detail})
}

// Debug implements Notifier.Debug
func (s *Service) Debug(title string) {
	s.mu.Lock()
	enabled := s.debugEnabled
	s.mu.Unlock()
	if !enabled {
		return
	}
	s.dispatch(Message{Level: LevelDebug, Title: title})
}

// SetProgress implements Notifier.SetProgress. A total of zero hides
// the progress indicator again.
func (s *Service) SetProgress(current, total int) {
	s.mu.Lock()
	msg := s.current
	msg.Current = current
	msg.Total = total
	if msg.Level == "" {
		msg.Level = LevelInfo
	}
	s.mu.Unlock()
	s.dispatch(msg)
}

// Current implements Notifier.Current
func (s *Service) Current() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// Clear implements Notifier.Clear
func (s *Service) Clear() {
	s.mu.Lock()
	s.current = Message{}
	s.hasCurrent = false
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(Message{})
	}
}

// SetHandler implements Notifier.SetHandler
func (s *Service) SetHandler(handler ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// dispatch records the message, logs it, and invokes the handler
func (s *Service) dispatch(msg Message) {
	s.mu.Lock()
	s.current = msg
	s.hasCurrent = true
	handler := s.handler
	s.mu.Unlock()

	logger := cblog.With("component", "notify")
	switch msg.Level {
	case LevelError:
		if msg.Detail != "" {
			logger.Error(msg.Title, "detail", msg.Detail)
		} else {
			logger.Error(msg.Title)
		}
	case LevelWarn:
		logger.Warn(msg.Title)
	case LevelInfo:
		logger.Info(msg.Title)
	case LevelDebug:
		logger.Debug(msg.Title)
	}

	if handler != nil {
		handler(msg)
	}
}

// StdoutHandler prints notifications to stdout, for non-TUI commands
func StdoutHandler(msg Message) {
	switch msg.Level {
	case LevelError:
		if msg.Detail != "" {
			fmt.Printf("error: %s (%s)\n", msg.Title, msg.Detail)
		} else {
			fmt.Printf("error: %s\n", msg.Title)
		}
	case LevelWarn:
		fmt.Printf("warning: %s\n", msg.Title)
	case LevelInfo, LevelDebug:
		if msg.Title != "" {
			fmt.Println(msg.Title)
		}
	}
}

// NullHandler discards notifications (for testing)
func NullHandler(msg Message) {
	// Do nothing
}
