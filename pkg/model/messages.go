package model

import (
	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
)

// Messages exchanged between the Bubble Tea update loop and the
// service-integration commands.

// Navigation messages

// SetViewMsg switches the active view
type SetViewMsg struct {
	View View
}

// SetModeMsg switches the application mode
type SetModeMsg struct {
	Mode Mode
}

// SetSelectedIdxMsg sets the selected row index
type SetSelectedIdxMsg struct {
	SelectedIdx int
}

// ResetNavigationMsg resets navigation state, optionally jumping to a view
type ResetNavigationMsg struct {
	View *View
}

// UI messages

// SetSearchQueryMsg sets the search query
type SetSearchQueryMsg struct {
	Query string
}

// SetActiveFilterMsg sets the active filter
type SetActiveFilterMsg struct {
	Filter string
}

// SetCommandMsg sets the command line content
type SetCommandMsg struct {
	Command string
}

// ClearAllSelectionsMsg clears all selected sessions
type ClearAllSelectionsMsg struct{}

// TerminalResizeMsg carries the new terminal dimensions
type TerminalResizeMsg struct {
	Rows int
	Cols int
}

// Data messages

// SessionsLoadedMsg delivers a refreshed session list. Epoch identifies
// the polling generation that issued the request so stale responses can
// be discarded.
type SessionsLoadedMsg struct {
	Sessions []Session
	Total    int
	Epoch    int
}

// FoldersLoadedMsg delivers a refreshed virtual folder list
type FoldersLoadedMsg struct {
	Folders []VFolder
	Epoch   int
}

// InvitationsLoadedMsg delivers pending folder invitations
type InvitationsLoadedMsg struct {
	Invitations []FolderInvitation
}

// ResourcesLoadedMsg delivers resource accounting for the summary view
type ResourcesLoadedMsg struct {
	Resources []ResourceInformation
	Policy    *ResourcePolicy
	Epoch     int
}

// AnnouncementLoadedMsg delivers the announcement with its rendered HTML
type AnnouncementLoadedMsg struct {
	Announcement Announcement
	HTML         string
}

// SessionLogsMsg delivers a fetched log tail for a session
type SessionLogsMsg struct {
	SessionID string
	Logs      string
}

// Operation outcome messages

// SessionDestroyedMsg reports the outcome of a destroy call
type SessionDestroyedMsg struct {
	SessionID string
	Forced    bool
	Err       error
}

// SessionRenamedMsg reports the outcome of a rename call
type SessionRenamedMsg struct {
	SessionID string
	NewName   string
	Err       error
}

// SessionRestartedMsg reports the outcome of a restart call
type SessionRestartedMsg struct {
	SessionID string
	Err       error
}

// FolderMutatedMsg reports the outcome of any folder mutation (create,
// delete, rename, clone, invite, accept)
type FolderMutatedMsg struct {
	Operation string
	Name      string
	Err       error
}

// ExportDoneMsg reports a finished CSV or HTML export
type ExportDoneMsg struct {
	Path string
	Err  error
}

// AttachDoneMsg reports that an interactive session shell has closed
type AttachDoneMsg struct {
	SessionID string
	Err       error
}

// Polling messages

// PollTickMsg fires a scheduled refresh for one view. Ticks from an
// older epoch are ignored by the update loop.
type PollTickMsg struct {
	View  View
	Epoch int
}

// Error and status messages

// StructuredErrorMsg carries a structured error into the update loop
type StructuredErrorMsg struct {
	Error *apperrors.ConsoleError
}

// ClearErrorMsg dismisses the current error state
type ClearErrorMsg struct{}

// StatusChangeMsg updates the status bar text
type StatusChangeMsg struct {
	Message string
	Level   string // info, warn, error, debug
}

// ClearStatusMsg clears the status bar
type ClearStatusMsg struct{}

// ProgressMsg updates the notification progress indicator
type ProgressMsg struct {
	Current int
	Total   int
}
