package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasics(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "heading and emphasis",
			source: "# Maintenance window\n\nGPU nodes go **offline** at 22:00 UTC.",
			want:   []string{"<h1", "Maintenance window", "<strong>offline</strong>"},
		},
		{
			name:   "link",
			source: "See [status page](https://status.example.com) for details.",
			want:   []string{`href="https://status.example.com"`, "status page"},
		},
		{
			name:   "gfm table",
			source: "| Cluster | State |\n|---|---|\n| main | up |\n",
			want:   []string{"<table>", "<td>main</td>"},
		},
		{
			name:   "gfm strikethrough",
			source: "~~cancelled~~ rescheduled",
			want:   []string{"<del>cancelled</del>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestRenderSanitizesUntrustedInput(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		source   string
		unwanted []string
	}{
		{
			// the sanitizer removes the element itself; inert inner text
			// may survive as plain text
			name:     "script tag stripped",
			source:   "hello <script>alert(1)</script> world",
			unwanted: []string{"<script"},
		},
		{
			name:     "javascript href stripped",
			source:   "[click](javascript:alert(1))",
			unwanted: []string{"javascript:"},
		},
		{
			name:     "event handler stripped",
			source:   `<p onclick="steal()">text</p>`,
			unwanted: []string{"onclick"},
		},
		{
			name:     "iframe stripped",
			source:   `<iframe src="https://evil.example.com"></iframe>`,
			unwanted: []string{"<iframe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, unwanted := range tt.unwanted {
				if strings.Contains(got, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestRenderScriptElementRemovedKeepsText(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render("hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "<script") || strings.Contains(got, "</script") {
		t.Errorf("script element survived:\n%s", got)
	}
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("surrounding text lost:\n%s", got)
	}
}

func TestRenderEmptyInput(t *testing.T) {
	r := NewRenderer()
	got, err := r.Render("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(got) != "" {
		t.Errorf("empty input produced %q", got)
	}
}
