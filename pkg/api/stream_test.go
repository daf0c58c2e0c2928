package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEventReaderSplitsEvents(t *testing.T) {
	input := "event: session_started\ndata: {\"sessionName\":\"a\"}\n\n" +
		"event: session_terminated\ndata: {\"sessionName\":\"b\"}\n\n"
	reader := NewEventReader(io.NopCloser(strings.NewReader(input)), nil)
	defer reader.Close()

	first, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	name, data := parseEventFrame(first)
	if name != "session_started" || data != `{"sessionName":"a"}` {
		t.Errorf("first frame = %q %q", name, data)
	}

	second, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	name, _ = parseEventFrame(second)
	if name != "session_terminated" {
		t.Errorf("second frame name = %q", name)
	}

	if _, err := reader.ReadEvent(); err != io.EOF {
		t.Errorf("expected EOF after last event, got %v", err)
	}
}

func TestEventReaderLargeEvent(t *testing.T) {
	// An event larger than the read buffer must still come through intact.
	payload := strings.Repeat("x", 3000)
	input := "event: big\ndata: " + payload + "\n\nevent: after\ndata: ok\n\n"
	cfg := &StreamConfig{ReadBuffer: 256, MaxEvent: 16 * 1024}
	reader := NewEventReader(io.NopCloser(strings.NewReader(input)), cfg)
	defer reader.Close()

	frame, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("large event: %v", err)
	}
	name, data := parseEventFrame(frame)
	if name != "big" || data != payload {
		t.Errorf("large frame = %q, %d data bytes", name, len(data))
	}

	frame, err = reader.ReadEvent()
	if err != nil && err != io.EOF {
		t.Fatalf("following event: %v", err)
	}
	if name, data := parseEventFrame(frame); name != "after" || data != "ok" {
		t.Errorf("following frame = %q %q", name, data)
	}
}

func TestEventReaderEnforcesMaxEvent(t *testing.T) {
	endless := strings.Repeat("data: x\n", 4096)
	cfg := &StreamConfig{ReadBuffer: 128, MaxEvent: 1024}
	reader := NewEventReader(io.NopCloser(strings.NewReader(endless)), cfg)
	defer reader.Close()

	for {
		_, err := reader.ReadEvent()
		if err == nil {
			continue
		}
		if err == io.EOF {
			t.Fatal("unbounded event should have tripped the size limit")
		}
		if !strings.Contains(err.Error(), "exceeds maximum size") {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
}

func TestParseEventFrame(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantName string
		wantData string
	}{
		{
			name:     "simple",
			frame:    "event: session_started\ndata: {\"a\":1}\n\n",
			wantName: "session_started",
			wantData: `{"a":1}`,
		},
		{
			name:     "multiline data",
			frame:    "event: log\ndata: line1\ndata: line2\n\n",
			wantName: "log",
			wantData: "line1\nline2",
		},
		{
			name:     "comment only",
			frame:    ": keepalive\n\n",
			wantName: "",
			wantData: "",
		},
		{
			name:     "no space after colon",
			frame:    "event:ping\ndata:{}\n\n",
			wantName: "ping",
			wantData: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, data := parseEventFrame([]byte(tt.frame))
			if name != tt.wantName || data != tt.wantData {
				t.Errorf("parseEventFrame = %q %q, want %q %q", name, data, tt.wantName, tt.wantData)
			}
		})
	}
}

func TestWatchSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/session" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("accept header = %s", r.Header.Get("Accept"))
		}
		if r.URL.Query().Get("group") != "g-1" {
			t.Errorf("group not passed: %s", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "event: session_started\n")
		io.WriteString(w, `data: {"reason":"new-session-started","sessionName":"train-1","sessionId":"s-1","ownerAccessKey":"AKIATEST"}`+"\n\n")
		io.WriteString(w, "event: session_terminated\n")
		io.WriteString(w, `data: {"reason":"user-requested","sessionName":"train-1","sessionId":"s-1","ownerAccessKey":"AKIATEST"}`+"\n\n")
	}))
	defer server.Close()

	svc := NewEventService(testServerModel(server.URL))
	eventChan := make(chan SessionEvent, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.WatchSessions(ctx, WatchSessionsOptions{GroupID: "g-1"}, eventChan); err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	close(eventChan)

	var events []SessionEvent
	for ev := range eventChan {
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Name != "session_started" || events[0].SessionName != "train-1" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Name != "session_terminated" || events[1].Reason != "user-requested" {
		t.Errorf("second event = %+v", events[1])
	}
}
