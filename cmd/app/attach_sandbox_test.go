//go:build unix

package main

import (
	"bytes"
	"testing"

	"github.com/sessionaut/sessionaut/pkg/model"
)

func TestAttachCommandDefault(t *testing.T) {
	t.Setenv("SESSIONAUT_ATTACH_COMMAND", "")
	parts := attachCommand("train-resnet")
	want := []string{"backend.ai", "ssh", "train-resnet"}
	if len(parts) != len(want) {
		t.Fatalf("attachCommand = %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("attachCommand = %v, want %v", parts, want)
		}
	}
}

func TestAttachCommandOverride(t *testing.T) {
	t.Setenv("SESSIONAUT_ATTACH_COMMAND", "ssh -t gateway attach %s")
	parts := attachCommand("nb1")
	if len(parts) != 5 || parts[0] != "ssh" || parts[4] != "nb1" {
		t.Fatalf("template override failed: %v", parts)
	}

	// Without %s the session name is appended
	t.Setenv("SESSIONAUT_ATTACH_COMMAND", "my-attach")
	parts = attachCommand("nb1")
	if len(parts) != 2 || parts[0] != "my-attach" || parts[1] != "nb1" {
		t.Fatalf("append fallback failed: %v", parts)
	}
}

func TestBuildStatusBarSequence(t *testing.T) {
	session := model.Session{Name: "nb1", Image: "python:3.11"}
	bar := buildStatusBarSequence(40, 120, session)

	if !bytes.HasPrefix(bar, []byte("\x1b7")) || !bytes.HasSuffix(bar, []byte("\x1b8")) {
		t.Error("status bar must save and restore the cursor")
	}
	if !bytes.Contains(bar, []byte("\x1b[40;1H")) {
		t.Error("status bar must move to the last row")
	}
	if !bytes.Contains(bar, []byte("sessionaut » nb1 (python:3.11)")) {
		t.Errorf("status bar missing session identity: %q", bar)
	}
}

func TestInjectStatusBarAfterClearScreen(t *testing.T) {
	session := model.Session{Name: "nb1", Image: "python:3.11"}
	out := injectStatusBarAtFrameBoundaries([]byte("\x1b[2Jhello"), 40, 120, session)

	clearIdx := bytes.Index(out, []byte("\x1b[2J"))
	barIdx := bytes.Index(out, []byte("sessionaut » nb1"))
	if clearIdx != 0 || barIdx < clearIdx {
		t.Errorf("bar must follow clear screen: %q", out)
	}
	if !bytes.HasSuffix(out, []byte("hello")) {
		t.Errorf("payload lost: %q", out)
	}
}

func TestInjectStatusBarBeforeCursorHome(t *testing.T) {
	session := model.Session{Name: "nb1", Image: "python:3.11"}
	out := injectStatusBarAtFrameBoundaries([]byte("tail\x1b[1;1Hframe"), 40, 120, session)

	barIdx := bytes.Index(out, []byte("sessionaut » nb1"))
	homeIdx := bytes.Index(out, []byte("\x1b[1;1H"))
	if barIdx < 0 || homeIdx < 0 || barIdx > homeIdx {
		t.Errorf("bar must precede cursor home: %q", out)
	}
}

func TestInjectStatusBarPassthrough(t *testing.T) {
	session := model.Session{Name: "nb1", Image: "python:3.11"}
	plain := []byte("no control sequences here\n")
	out := injectStatusBarAtFrameBoundaries(plain, 40, 120, session)
	if !bytes.Equal(out, plain) {
		t.Errorf("plain output must pass through unchanged: %q", out)
	}
}
