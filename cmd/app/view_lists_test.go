package main

import (
	"strings"
	"testing"
	"time"

	"github.com/sessionaut/sessionaut/pkg/model"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is too long", 8, "this is…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadToWidth(t *testing.T) {
	if got := padToWidth("ab", 5); got != "ab   " {
		t.Errorf("padToWidth = %q", got)
	}
	if got := padToWidth("abcdef", 3); got != "abcdef" {
		t.Errorf("padToWidth must not trim, got %q", got)
	}
}

func TestShortImage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"cr.backend.ai/stable/python:3.11", "stable/python:3.11"},
		{"python:3.11", "python:3.11"},
		{"library/ubuntu", "library/ubuntu"}, // no dot, not a registry host
	}
	for _, tt := range tests {
		if got := shortImage(tt.in); got != tt.want {
			t.Errorf("shortImage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    *time.Time
		want string
	}{
		{nil, "-"},
		{timePtr(now.Add(-30 * time.Second)), "30s"},
		{timePtr(now.Add(-5 * time.Minute)), "5m"},
		{timePtr(now.Add(-3 * time.Hour)), "3h"},
		{timePtr(now.Add(-49 * time.Hour)), "2d"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.t); got != tt.want {
			t.Errorf("formatAge = %q, want %q", got, tt.want)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		cursor, total, height int
		wantStart, wantEnd    int
	}{
		{0, 5, 10, 0, 5},    // list fits, window is the whole list
		{0, 100, 10, 0, 10}, // cursor at top
		{50, 100, 10, 45, 55},
		{99, 100, 10, 90, 100}, // cursor at bottom, window clamps
	}
	for _, tt := range tests {
		start, end := scrollWindow(tt.cursor, tt.total, tt.height)
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("scrollWindow(%d, %d, %d) = %d, %d; want %d, %d",
				tt.cursor, tt.total, tt.height, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestOrderedSlots(t *testing.T) {
	info := model.ResourceInformation{
		Total: map[string]float64{"cuda.shares": 8, "cpu": 64, "mem": 512},
		Used:  map[string]float64{"cuda.shares": 2, "cpu": 16, "mem": 128},
	}
	slots := orderedSlots(info)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %v", slots)
	}
	if slots[0] != "cpu" || slots[1] != "mem" {
		t.Errorf("cpu and mem must come first, got %v", slots)
	}
	if slots[2] != "cuda.shares" {
		t.Errorf("accelerator slot missing, got %v", slots)
	}
}

func TestBodyHeight(t *testing.T) {
	m := testModel(t)
	m.state.Terminal.Rows = 30
	if got := m.bodyHeight(); got != 26 {
		t.Errorf("bodyHeight = %d, want 26", got)
	}
	m.state.Terminal.Rows = 4
	if got := m.bodyHeight(); got != 3 {
		t.Errorf("bodyHeight floor = %d, want 3", got)
	}
}

func TestRenderSummaryPolicyPanel(t *testing.T) {
	m := testModel(t)
	m.state.Terminal.Cols = 80
	m.state.Terminal.Rows = 30
	m.state.Policy = &model.ResourcePolicy{
		Name:                  "gpu-tier",
		MaxConcurrentSessions: 5,
		MaxVFolderCount:       20,
		IdleTimeout:           3600,
	}

	out := m.renderSummaryView()
	if !strings.Contains(out, "Resource policy: gpu-tier") {
		t.Errorf("policy header missing:\n%s", out)
	}
	if !strings.Contains(out, "Max concurrent sessions: 5") {
		t.Errorf("session limit missing:\n%s", out)
	}
	if !strings.Contains(out, "Idle timeout: 1h0m0s") {
		t.Errorf("idle timeout missing:\n%s", out)
	}
}
