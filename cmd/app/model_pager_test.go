package main

import (
	"strings"
	"testing"
)

func TestRenderLogsHTML(t *testing.T) {
	html := renderLogsHTML("train-resnet", "\x1b[31merror:\x1b[0m out of memory\n", "")

	if !strings.Contains(html, "<title>Logs: train-resnet</title>") {
		t.Error("title missing session name")
	}
	if !strings.Contains(html, "<span style=\"color:") {
		t.Errorf("ANSI colors not converted to spans:\n%s", html)
	}
	if strings.Contains(html, "\x1b[") {
		t.Error("raw escape sequences leaked into the page")
	}
	if !strings.Contains(html, "out of memory") {
		t.Error("log text missing")
	}
}

func TestRenderLogsHTMLEscapesMarkup(t *testing.T) {
	html := renderLogsHTML("s", "<script>alert(1)</script>", "")
	if strings.Contains(html, "<script>") {
		t.Error("log content must be HTML-escaped")
	}
}

func TestRenderLogsHTMLEscapesSessionName(t *testing.T) {
	html := renderLogsHTML(`<img src=x onerror=alert(1)>`, "line\n", "")
	if strings.Contains(html, "<img") {
		t.Error("session name must be HTML-escaped in the title")
	}
	if !strings.Contains(html, "<title>Logs: &lt;img") {
		t.Errorf("escaped session name missing from title:\n%s", html)
	}
}

func TestRenderLogsHTMLAnnouncementBanner(t *testing.T) {
	html := renderLogsHTML("s", "line\n", "<p>maintenance at noon</p>")
	if !strings.Contains(html, `<div class="announcement"><p>maintenance at noon</p></div>`) {
		t.Errorf("announcement banner missing:\n%s", html)
	}

	html = renderLogsHTML("s", "line\n", "")
	if strings.Contains(html, "announcement\"") && strings.Contains(html, "<div") {
		t.Error("no banner div expected without an announcement")
	}
}

func TestHasFlag(t *testing.T) {
	if !hasFlag([]string{"-R", "-S"}, "-R") {
		t.Error("expected -R to be found")
	}
	if hasFlag([]string{"-S"}, "-R") {
		t.Error("-R should not be found")
	}
	if hasFlag(nil, "-R") {
		t.Error("empty args should not match")
	}
}
