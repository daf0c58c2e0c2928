package main

import (
	"testing"

	"github.com/sessionaut/sessionaut/pkg/model"
)

func TestHandleDeleteKeyOpensConfirm(t *testing.T) {
	m := testModel(t)
	loadTestSessions(m, testSessions())
	m.state.Navigation.View = model.ViewSessions
	m.state.Navigation.SelectedIdx = 0

	m.handleDeleteKey()

	if m.state.Mode != model.ModeConfirmDestroy {
		t.Fatalf("mode = %v, want confirm-destroy", m.state.Mode)
	}
	if m.state.Modals.DestroyTarget == nil {
		t.Fatal("destroy target not set")
	}
	if m.state.Modals.DestroySelected != 1 {
		t.Error("confirm should default to cancel")
	}
	if m.state.Modals.DestroyForced {
		t.Error("forced should be off for a running session")
	}
}

func TestHandleDeleteKeyForcesTerminating(t *testing.T) {
	m := testModel(t)
	sessions := testSessions()
	sessions[0].Status = model.StatusTerminating
	loadTestSessions(m, sessions)
	m.state.Navigation.View = model.ViewSessions
	m.state.Navigation.SelectedIdx = 0

	m.handleDeleteKey()

	if !m.state.Modals.DestroyForced {
		t.Error("destroying a terminating session should pre-select forced")
	}
}

func TestHandleDeleteKeyNoSelection(t *testing.T) {
	m := testModel(t)
	loadTestSessions(m, nil)
	m.state.Navigation.View = model.ViewSessions

	_, cmd := m.handleDeleteKey()

	if m.state.Mode == model.ModeConfirmDestroy {
		t.Error("no confirmation without a selected session")
	}
	msg := runStatusCmd(t, cmd)
	if msg.Level != "warn" {
		t.Errorf("expected warn status, got %q", msg.Level)
	}
}

func TestHandleDeleteKeyOnFolders(t *testing.T) {
	m := testModel(t)
	m.state.Folders = []model.VFolder{{Name: "datasets", Host: "local"}}
	m.state.Navigation.View = model.ViewFolders
	m.state.Navigation.SelectedIdx = 0

	m.handleDeleteKey()

	if m.state.Mode != model.ModeConfirmFolderDelete {
		t.Fatalf("mode = %v, want confirm-folder-delete", m.state.Mode)
	}
	if m.state.Modals.FolderDeleteTarget == nil || *m.state.Modals.FolderDeleteTarget != "datasets" {
		t.Errorf("folder delete target = %v", m.state.Modals.FolderDeleteTarget)
	}
}

func TestConfirmDestroyWithoutTarget(t *testing.T) {
	m := testModel(t)
	m.state.Mode = model.ModeConfirmDestroy

	_, cmd := m.confirmDestroy()

	if m.state.Mode != model.ModeNormal {
		t.Error("confirm without target should return to normal mode")
	}
	if cmd != nil {
		t.Error("no destroy command without a target")
	}
}

func TestConfirmDestroyStaleTarget(t *testing.T) {
	m := testModel(t)
	loadTestSessions(m, testSessions())
	gone := "vanished"
	m.state.Modals.DestroyTarget = &gone
	m.state.Mode = model.ModeConfirmDestroy

	_, cmd := m.confirmDestroy()

	if m.state.Mode != model.ModeNormal || m.state.Modals.DestroyTarget != nil {
		t.Error("stale target should reset the modal")
	}
	if cmd != nil {
		t.Error("no destroy command for a session that no longer exists")
	}
}

func TestHandleOpenLogsSavesNavigation(t *testing.T) {
	m := testModel(t)
	loadTestSessions(m, testSessions())
	m.state.Navigation.View = model.ViewSessions
	m.state.Navigation.SelectedIdx = 1

	_, cmd := m.handleOpenLogs()

	if m.state.Navigation.View != model.ViewLogs {
		t.Fatalf("view = %v, want logs", m.state.Navigation.View)
	}
	if m.state.SavedNavigation == nil {
		t.Fatal("navigation state not saved before entering logs")
	}
	if m.state.SavedNavigation.View != model.ViewSessions || m.state.SavedNavigation.SelectedIdx != 1 {
		t.Errorf("saved navigation = %+v", m.state.SavedNavigation)
	}
	if cmd == nil {
		t.Error("expected a log fetch command")
	}
}

func TestHandleRenameKeyPrefillsInput(t *testing.T) {
	m := testModel(t)
	loadTestSessions(m, testSessions())
	m.state.Navigation.View = model.ViewSessions
	m.state.Navigation.SelectedIdx = 0

	m.handleRenameKey()

	if m.state.Mode != model.ModeRenameSession {
		t.Fatalf("mode = %v, want rename-session", m.state.Mode)
	}
	if m.state.Modals.RenameTarget == nil {
		t.Fatal("rename target not set")
	}
	if got := m.renameInput.Value(); got != *m.state.Modals.RenameTarget {
		t.Errorf("rename input prefill = %q, want %q", got, *m.state.Modals.RenameTarget)
	}
}

func TestHandleRenameKeyOnFolders(t *testing.T) {
	m := testModel(t)
	m.state.Folders = []model.VFolder{{Name: "datasets", Host: "local"}}
	m.state.Navigation.View = model.ViewFolders
	m.state.Navigation.SelectedIdx = 0

	m.handleRenameKey()

	if m.state.Mode != model.ModeRenameSession {
		t.Fatalf("mode = %v, want rename input", m.state.Mode)
	}
	if m.state.Modals.RenameKind != "folder" {
		t.Errorf("rename kind = %q, want folder", m.state.Modals.RenameKind)
	}
	if m.state.Modals.RenameTarget == nil || *m.state.Modals.RenameTarget != "datasets" {
		t.Errorf("rename target = %v", m.state.Modals.RenameTarget)
	}
}

func TestHandleInviteKey(t *testing.T) {
	m := testModel(t)
	m.state.Folders = []model.VFolder{{Name: "datasets", Host: "local"}}
	m.state.Navigation.View = model.ViewFolders
	m.state.Navigation.SelectedIdx = 0

	m.handleInviteKey()

	if m.state.Mode != model.ModeInviteFolder {
		t.Fatalf("mode = %v, want invite-folder", m.state.Mode)
	}
	if m.state.Modals.InviteTarget == nil || *m.state.Modals.InviteTarget != "datasets" {
		t.Errorf("invite target = %v", m.state.Modals.InviteTarget)
	}

	// Outside the folders view the key does nothing
	m.state.Mode = model.ModeNormal
	m.state.Modals.InviteTarget = nil
	m.state.Navigation.View = model.ViewSessions
	m.handleInviteKey()
	if m.state.Mode != model.ModeNormal || m.state.Modals.InviteTarget != nil {
		t.Error("invite should only open from the folders view")
	}
}

func TestNextViewCycles(t *testing.T) {
	order := []model.View{model.ViewSessions, model.ViewFolders, model.ViewSummary, model.ViewSessions}
	for i := 1; i < len(order); i++ {
		if got := nextView(order[i-1]); got != order[i] {
			t.Fatalf("nextView(%v) = %v, want %v", order[i-1], got, order[i])
		}
	}
}
