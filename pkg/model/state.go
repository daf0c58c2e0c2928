package model

import (
	"time"

	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
)

// NavigationState holds navigation-related state
type NavigationState struct {
	View           View  `json:"view"`
	SelectedIdx    int   `json:"selectedIdx"`
	LastGPressed   int64 `json:"lastGPressed"`
	LastEscPressed int64 `json:"lastEscPressed"`
}

// SelectionState tracks multi-selected rows per view
type SelectionState struct {
	SelectedSessions map[string]bool `json:"selectedSessions"`
	SelectedFolders  map[string]bool `json:"selectedFolders"`
}

// NewSelectionState creates a SelectionState with empty sets
func NewSelectionState() *SelectionState {
	return &SelectionState{
		SelectedSessions: NewStringSet(),
		SelectedFolders:  NewStringSet(),
	}
}

// ToggleSession toggles a session's selection status
func (s *SelectionState) ToggleSession(id string) {
	if HasInStringSet(s.SelectedSessions, id) {
		s.SelectedSessions = RemoveFromStringSet(s.SelectedSessions, id)
	} else {
		s.SelectedSessions = AddToStringSet(s.SelectedSessions, id)
	}
}

// HasSession checks if a session is selected
func (s *SelectionState) HasSession(id string) bool {
	return HasInStringSet(s.SelectedSessions, id)
}

// ToggleFolder toggles a folder's selection status
func (s *SelectionState) ToggleFolder(name string) {
	if HasInStringSet(s.SelectedFolders, name) {
		s.SelectedFolders = RemoveFromStringSet(s.SelectedFolders, name)
	} else {
		s.SelectedFolders = AddToStringSet(s.SelectedFolders, name)
	}
}

// HasFolder checks if a folder is selected
func (s *SelectionState) HasFolder(name string) bool {
	return HasInStringSet(s.SelectedFolders, name)
}

// Clear drops all selections
func (s *SelectionState) Clear() {
	s.SelectedSessions = NewStringSet()
	s.SelectedFolders = NewStringSet()
}

// UIState holds UI-related state
type UIState struct {
	SearchQuery      string `json:"searchQuery"`
	ActiveFilter     string `json:"activeFilter"` // session status filter
	Command          string `json:"command"`
	ShowFinished     bool   `json:"showFinished"` // include terminated sessions
	AnnouncementHTML string `json:"announcementHtml,omitempty"`
	CommandInputKey  int    `json:"commandInputKey"`
}

// ModalState holds modal-related state
type ModalState struct {
	// Destroy confirmation: target session and whether to force
	DestroyTarget   *string `json:"destroyTarget,omitempty"`
	DestroyForced   bool    `json:"destroyForced"`
	DestroySelected int     `json:"destroySelected"` // 0 = Yes, 1 = Cancel
	DestroyLoading  bool    `json:"destroyLoading"`

	// Folder deletion confirmation
	FolderDeleteTarget   *string `json:"folderDeleteTarget,omitempty"`
	FolderDeleteSelected int     `json:"folderDeleteSelected"`

	// Rename input: target name and pending value. RenameKind says whether
	// the target is a session or a folder.
	RenameTarget *string `json:"renameTarget,omitempty"`
	RenameValue  string  `json:"renameValue"`
	RenameKind   string  `json:"renameKind,omitempty"`

	// Invite input: folder being shared
	InviteTarget *string `json:"inviteTarget,omitempty"`

	// Folder creation form
	CreateFolderName string `json:"createFolderName"`
	CreateFolderHost string `json:"createFolderHost"`

	// When true, show the initial loading overlay during startup
	InitialLoading bool `json:"initialLoading"`
}

// PollState tracks the polling generation and backoff level per view
type PollState struct {
	Epoch       int  `json:"epoch"`
	ErrorStreak int  `json:"errorStreak"`
	Active      bool `json:"active"`
}

// AppState is the complete application state for the Bubble Tea program
type AppState struct {
	Mode       Mode            `json:"mode"`
	Terminal   TerminalState   `json:"terminal"`
	Navigation NavigationState `json:"navigation"`
	Selections SelectionState  `json:"selections"`
	UI         UIState         `json:"ui"`
	Modals     ModalState      `json:"modals"`
	Server     *Server         `json:"server,omitempty"`

	Sessions     []Session             `json:"sessions"`
	SessionTotal int                   `json:"sessionTotal"`
	Folders      []VFolder             `json:"folders"`
	Invitations  []FolderInvitation    `json:"invitations"`
	Resources    []ResourceInformation `json:"resources"`
	Policy       *ResourcePolicy       `json:"policy,omitempty"`
	Announcement *Announcement         `json:"announcement,omitempty"`

	Polls map[View]*PollState `json:"-"`

	APIVersion string `json:"apiVersion"`

	// Saved navigation for restoration when leaving detail views
	SavedNavigation *NavigationState `json:"savedNavigation,omitempty"`

	ErrorState *ErrorState `json:"errorState,omitempty"`
}

// ErrorState holds the error shown on the error screen plus history
type ErrorState struct {
	Current          *apperrors.ConsoleError  `json:"current"`
	History          []apperrors.ConsoleError `json:"history"`
	RetryCount       int                      `json:"retryCount"`
	LastRetryAt      *time.Time               `json:"lastRetryAt,omitempty"`
	AutoHideAt       *time.Time               `json:"autoHideAt,omitempty"`
	RecoveryAttempts int                      `json:"recoveryAttempts"`
}

// SaveNavigationState saves current navigation state before a detail view
func (s *AppState) SaveNavigationState() {
	nav := s.Navigation
	s.SavedNavigation = &nav
}

// RestoreNavigationState restores previously saved navigation state
func (s *AppState) RestoreNavigationState() {
	if s.SavedNavigation != nil {
		s.Navigation = *s.SavedNavigation
		s.SavedNavigation = nil
	}
}

// Poll returns the poll state for a view, creating it on first use
func (s *AppState) Poll(view View) *PollState {
	if s.Polls == nil {
		s.Polls = make(map[View]*PollState)
	}
	p, ok := s.Polls[view]
	if !ok {
		p = &PollState{}
		s.Polls[view] = p
	}
	return p
}

// SelectedSession returns the session under the cursor, or nil
func (s *AppState) SelectedSession() *Session {
	if s.Navigation.View != ViewSessions {
		return nil
	}
	if s.Navigation.SelectedIdx < 0 || s.Navigation.SelectedIdx >= len(s.Sessions) {
		return nil
	}
	return &s.Sessions[s.Navigation.SelectedIdx]
}

// SelectedFolder returns the folder under the cursor, or nil
func (s *AppState) SelectedFolder() *VFolder {
	if s.Navigation.View != ViewFolders {
		return nil
	}
	if s.Navigation.SelectedIdx < 0 || s.Navigation.SelectedIdx >= len(s.Folders) {
		return nil
	}
	return &s.Folders[s.Navigation.SelectedIdx]
}

// NewAppState creates an AppState with default values
func NewAppState() *AppState {
	return &AppState{
		Mode: ModeNormal,
		Terminal: TerminalState{
			Rows: 24,
			Cols: 80,
		},
		Navigation: NavigationState{
			View:        ViewSessions,
			SelectedIdx: 0,
		},
		Selections: *NewSelectionState(),
		Modals: ModalState{
			InitialLoading: true,
		},
		Sessions: []Session{},
		Folders:  []VFolder{},
		Polls:    make(map[View]*PollState),
	}
}
