package notify

import (
	"sync"
	"testing"
)

type recordingHandler struct {
	mu       sync.Mutex
	messages []Message
}

func (r *recordingHandler) handle(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingHandler) last(t *testing.T) Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		t.Fatal("no messages recorded")
	}
	return r.messages[len(r.messages)-1]
}

func TestNotifierLevels(t *testing.T) {
	rec := &recordingHandler{}
	svc := NewService(Config{Handler: rec.handle})

	svc.Info("session created")
	if msg := rec.last(t); msg.Level != LevelInfo || msg.Title != "session created" {
		t.Errorf("unexpected message: %+v", msg)
	}

	svc.Warn("quota almost exhausted")
	if msg := rec.last(t); msg.Level != LevelWarn {
		t.Errorf("unexpected level: %s", msg.Level)
	}

	svc.Error("failed to destroy session", "server returned 409")
	msg := rec.last(t)
	if msg.Level != LevelError || msg.Detail != "server returned 409" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestNotifierDebugGating(t *testing.T) {
	rec := &recordingHandler{}

	svc := NewService(Config{Handler: rec.handle})
	svc.Debug("hidden")
	if len(rec.messages) != 0 {
		t.Errorf("debug message delivered with debug disabled")
	}

	svc = NewService(Config{Handler: rec.handle, DebugEnabled: true})
	svc.Debug("visible")
	if msg := rec.last(t); msg.Level != LevelDebug || msg.Title != "visible" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestNotifierCurrentAndClear(t *testing.T) {
	svc := NewService(Config{Handler: NullHandler})

	if _, ok := svc.Current(); ok {
		t.Error("fresh notifier should have no current message")
	}

	svc.Info("fetching sessions")
	msg, ok := svc.Current()
	if !ok || msg.Title != "fetching sessions" {
		t.Errorf("current = %+v, ok = %v", msg, ok)
	}

	svc.Clear()
	if _, ok := svc.Current(); ok {
		t.Error("current message should be cleared")
	}
}

func TestNotifierProgress(t *testing.T) {
	rec := &recordingHandler{}
	svc := NewService(Config{Handler: rec.handle})

	svc.Info("uploading")
	svc.SetProgress(3, 10)

	msg := rec.last(t)
	if msg.Current != 3 || msg.Total != 10 {
		t.Errorf("progress = %d/%d", msg.Current, msg.Total)
	}
	if msg.Title != "uploading" {
		t.Errorf("progress should keep the current title, got %q", msg.Title)
	}

	svc.SetProgress(0, 0)
	if msg := rec.last(t); msg.Total != 0 {
		t.Errorf("progress not cleared: %+v", msg)
	}
}

func TestNotifierHandlerSwap(t *testing.T) {
	first := &recordingHandler{}
	second := &recordingHandler{}

	svc := NewService(Config{Handler: first.handle})
	svc.Info("one")
	svc.SetHandler(second.handle)
	svc.Info("two")

	if len(first.messages) != 1 {
		t.Errorf("first handler saw %d messages", len(first.messages))
	}
	if msg := second.last(t); msg.Title != "two" {
		t.Errorf("second handler saw %+v", msg)
	}
}

func TestNotifierConcurrentUse(t *testing.T) {
	rec := &recordingHandler{}
	svc := NewService(Config{Handler: rec.handle})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				svc.Info("tick")
				svc.SetProgress(j, 25)
			}
		}()
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.messages) != 8*25*2 {
		t.Errorf("recorded %d messages, want %d", len(rec.messages), 8*25*2)
	}
}
