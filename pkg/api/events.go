package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	cblog "github.com/charmbracelet/log"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// SessionEvent is one session lifecycle notification from the manager's
// event stream.
type SessionEvent struct {
	Name           string `json:"-"`
	Reason         string `json:"reason"`
	SessionName    string `json:"sessionName"`
	SessionID      string `json:"sessionId"`
	OwnerAccessKey string `json:"ownerAccessKey"`
	ExitCode       *int   `json:"exitCode,omitempty"`
}

// WatchSessionsOptions narrows the event stream. An empty name watches
// every session owned by the keypair.
type WatchSessionsOptions struct {
	SessionName string
	SessionID   string
	GroupID     string
}

// EventService consumes the manager's server-sent session events.
type EventService struct {
	client *Client
}

// NewEventService creates a new event service
func NewEventService(server *model.Server) *EventService {
	return &EventService{
		client: NewClient(server),
	}
}

// WatchSessions streams lifecycle events into eventChan until the stream
// ends or ctx is cancelled. The channel is not closed by this method.
func (s *EventService) WatchSessions(ctx context.Context, opts WatchSessionsOptions, eventChan chan<- SessionEvent) error {
	logger := cblog.With("component", "api", "op", "events")

	query := url.Values{}
	if opts.SessionName != "" {
		query.Set("name", opts.SessionName)
	}
	if opts.SessionID != "" {
		query.Set("sessionId", opts.SessionID)
	}
	if opts.GroupID != "" {
		query.Set("group", opts.GroupID)
	}

	path := "/events/session"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	streamResp, err := s.client.Stream(ctx, path)
	if err != nil {
		logger.Error("failed to establish event stream", "error", err)
		return fmt.Errorf("failed to start session event stream: %w", err)
	}

	reader := NewEventReader(streamResp.Body, nil)
	defer reader.Close()

	logger.Info("event stream established", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := reader.ReadEvent()
		if len(frame) > 0 {
			if name, data := parseEventFrame(frame); name != "" && data != "" {
				var event SessionEvent
				if jsonErr := json.Unmarshal([]byte(data), &event); jsonErr != nil {
					logger.Debug("skipping malformed event", "event", name, "error", jsonErr)
				} else {
					event.Name = name
					select {
					case eventChan <- event:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				logger.Info("event stream closed by server")
				return nil
			}
			return fmt.Errorf("session event stream failed: %w", err)
		}
	}
}
