package main

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// handleKeyMsg dispatches key presses by application mode
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inPager {
		// Terminal belongs to the external pager
		return m, nil
	}

	switch m.state.Mode {
	case model.ModeSearch:
		return m.handleSearchModeKeys(msg)
	case model.ModeCommand:
		return m.handleCommandModeKeys(msg)
	case model.ModeRenameSession:
		return m.handleRenameModeKeys(msg)
	case model.ModeCreateFolder:
		return m.handleCreateFolderModeKeys(msg)
	case model.ModeInviteFolder:
		return m.handleInviteFolderModeKeys(msg)
	case model.ModeConfirmDestroy:
		return m.handleDestroyConfirmKeys(msg)
	case model.ModeConfirmFolderDelete:
		return m.handleFolderDeleteConfirmKeys(msg)
	case model.ModeHelp:
		return m.handleHelpModeKeys(msg)
	case model.ModeAnnouncement:
		return m.handleAnnouncementModeKeys(msg)
	case model.ModeError, model.ModeConnectionError:
		return m.handleErrorModeKeys(msg)
	case model.ModeAuthRequired:
		return m.handleAuthRequiredKeys(msg)
	case model.ModeLoading:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case model.ModeExternal:
		return m, nil
	}

	return m.handleNormalModeKeys(msg)
}

// handleNormalModeKeys handles keys in the default browsing mode
func (m *Model) handleNormalModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	// Navigation
	case "up", "k":
		m.state.Navigation.SelectedIdx = clampIndex(m.state.Navigation.SelectedIdx-1, len(m.visibleRows()))
		return m, nil
	case "down", "j":
		m.state.Navigation.SelectedIdx = clampIndex(m.state.Navigation.SelectedIdx+1, len(m.visibleRows()))
		return m, nil
	case "g":
		// gg jumps to top
		now := time.Now().UnixMilli()
		if now-m.state.Navigation.LastGPressed < 500 {
			m.state.Navigation.SelectedIdx = 0
		}
		m.state.Navigation.LastGPressed = now
		return m, nil
	case "G":
		m.state.Navigation.SelectedIdx = clampIndex(len(m.visibleRows())-1, len(m.visibleRows()))
		return m, nil

	// View switching
	case "1":
		return m, setView(model.ViewSummary)
	case "2":
		return m, setView(model.ViewSessions)
	case "3":
		return m, setView(model.ViewFolders)
	case "tab":
		return m, setView(nextView(m.state.Navigation.View))

	// Input modes
	case "/":
		m.state.Mode = model.ModeSearch
		m.state.UI.SearchQuery = ""
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, nil
	case ":":
		m.state.Mode = model.ModeCommand
		m.state.UI.Command = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		return m, nil
	case "?":
		m.state.Mode = model.ModeHelp
		return m, nil

	// Selection
	case " ":
		return m.handleToggleSelection()
	case "esc":
		m.state.UI.SearchQuery = ""
		m.state.UI.ActiveFilter = ""
		m.state.Selections.Clear()
		m.clampCursor()
		return m, nil

	// Session and folder operations
	case "enter", "l":
		return m.handleOpenLogs()
	case "d", "ctrl+d":
		return m.handleDeleteKey()
	case "r":
		return m.handleRenameKey()
	case "R":
		if sess := m.selectedSession(); sess != nil {
			return m, m.restartSession(*sess)
		}
		return m, requireSelection("session")
	case "s":
		return m.handleAttachKey()
	case "n":
		if m.state.Navigation.View == model.ViewFolders {
			m.state.Mode = model.ModeCreateFolder
			m.folderInput.Placeholder = "Folder name"
			m.folderInput.SetValue("")
			m.folderInput.Focus()
			return m, nil
		}
		return m, nil
	case "i":
		return m.handleInviteKey()
	case "A":
		return m.handleAcceptInvitation()

	// Toggles and exports
	case "f":
		m.state.UI.ShowFinished = !m.state.UI.ShowFinished
		m.clampCursor()
		return m, m.loadSessions()
	case "e":
		if m.state.Navigation.View == model.ViewSessions {
			return m, m.exportSessionsCSV()
		}
		return m, nil
	case "a":
		if m.state.Announcement != nil {
			m.state.Mode = model.ModeAnnouncement
		}
		return m, nil
	case "ctrl+r":
		return m, m.refreshView(m.state.Navigation.View)
	}

	return m, nil
}

// handleSearchModeKeys handles keys while the search input is focused
func (m *Model) handleSearchModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.state.Mode = model.ModeNormal
		m.state.UI.SearchQuery = ""
		m.clampCursor()
		return m, nil
	case "up":
		m.state.Navigation.SelectedIdx = clampIndex(m.state.Navigation.SelectedIdx-1, len(m.visibleRows()))
		return m, nil
	case "down":
		m.state.Navigation.SelectedIdx = clampIndex(m.state.Navigation.SelectedIdx+1, len(m.visibleRows()))
		return m, nil
	case "enter":
		m.searchInput.Blur()
		m.state.Mode = model.ModeNormal
		m.state.UI.SearchQuery = m.searchInput.Value()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.state.UI.SearchQuery = m.searchInput.Value()
	m.clampCursor()
	return m, cmd
}

// handleCommandModeKeys handles keys while the command input is focused
func (m *Model) handleCommandModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		m.state.Mode = model.ModeNormal
		m.state.UI.Command = ""
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.commandInput.Value())
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		m.state.Mode = model.ModeNormal
		m.state.UI.Command = ""
		if raw == "" {
			return m, nil
		}
		return m.executeCommand(raw)
	}

	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.state.UI.Command = m.commandInput.Value()
	return m, cmd
}

// handleRenameModeKeys handles the rename input for sessions and folders
func (m *Model) handleRenameModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.renameInput.Blur()
		m.state.Mode = model.ModeNormal
		m.state.Modals.RenameTarget = nil
		return m, nil
	case "enter":
		newName := strings.TrimSpace(m.renameInput.Value())
		target := m.state.Modals.RenameTarget
		kind := m.state.Modals.RenameKind
		m.renameInput.Blur()
		if newName == "" || target == nil || newName == *target {
			m.state.Mode = model.ModeNormal
			m.state.Modals.RenameTarget = nil
			return m, nil
		}
		if kind == "folder" {
			return m, m.renameFolder(*target, newName)
		}
		if sess := m.sessionByName(*target); sess != nil {
			return m, m.renameSession(*sess, newName)
		}
		m.state.Mode = model.ModeNormal
		m.state.Modals.RenameTarget = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	m.state.Modals.RenameValue = m.renameInput.Value()
	return m, cmd
}

// handleCreateFolderModeKeys handles the folder creation input
func (m *Model) handleCreateFolderModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.folderInput.Blur()
		m.state.Mode = model.ModeNormal
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.folderInput.Value())
		m.folderInput.Blur()
		if name == "" {
			m.state.Mode = model.ModeNormal
			return m, nil
		}
		return m, m.createFolder(name, m.state.Modals.CreateFolderHost)
	}

	var cmd tea.Cmd
	m.folderInput, cmd = m.folderInput.Update(msg)
	m.state.Modals.CreateFolderName = m.folderInput.Value()
	return m, cmd
}

// handleDestroyConfirmKeys handles the destroy confirmation modal
func (m *Model) handleDestroyConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "ctrl+c":
		m.state.Mode = model.ModeNormal
		m.state.Modals.DestroyTarget = nil
		return m, nil
	case "left", "right", "tab", "h", "l":
		m.state.Modals.DestroySelected = 1 - m.state.Modals.DestroySelected
		return m, nil
	case "f":
		m.state.Modals.DestroyForced = !m.state.Modals.DestroyForced
		return m, nil
	case "y":
		return m.confirmDestroy()
	case "enter":
		if m.state.Modals.DestroySelected != 0 {
			m.state.Mode = model.ModeNormal
			m.state.Modals.DestroyTarget = nil
			return m, nil
		}
		return m.confirmDestroy()
	}
	return m, nil
}

func (m *Model) confirmDestroy() (tea.Model, tea.Cmd) {
	target := m.state.Modals.DestroyTarget
	if target == nil {
		m.state.Mode = model.ModeNormal
		return m, nil
	}
	sess := m.sessionByName(*target)
	if sess == nil {
		m.state.Mode = model.ModeNormal
		m.state.Modals.DestroyTarget = nil
		return m, nil
	}
	m.state.Modals.DestroyLoading = true
	return m, m.destroySession(*sess, m.state.Modals.DestroyForced)
}

// handleFolderDeleteConfirmKeys handles the folder delete confirmation
func (m *Model) handleFolderDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n", "ctrl+c":
		m.state.Mode = model.ModeNormal
		m.state.Modals.FolderDeleteTarget = nil
		return m, nil
	case "left", "right", "tab", "h", "l":
		m.state.Modals.FolderDeleteSelected = 1 - m.state.Modals.FolderDeleteSelected
		return m, nil
	case "y":
		return m.confirmFolderDelete()
	case "enter":
		if m.state.Modals.FolderDeleteSelected != 0 {
			m.state.Mode = model.ModeNormal
			m.state.Modals.FolderDeleteTarget = nil
			return m, nil
		}
		return m.confirmFolderDelete()
	}
	return m, nil
}

func (m *Model) confirmFolderDelete() (tea.Model, tea.Cmd) {
	target := m.state.Modals.FolderDeleteTarget
	if target == nil {
		m.state.Mode = model.ModeNormal
		return m, nil
	}
	name := *target
	return m, m.deleteFolder(name)
}

// handleHelpModeKeys closes the help overlay on any dismissal key
func (m *Model) handleHelpModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter", "?":
		m.state.Mode = model.ModeNormal
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleAnnouncementModeKeys closes the announcement overlay
func (m *Model) handleAnnouncementModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter", "a":
		m.state.Mode = model.ModeNormal
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// handleErrorModeKeys handles the error screens
func (m *Model) handleErrorModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state.ErrorState = nil
		m.state.Mode = model.ModeNormal
		return m, nil
	case "r", "enter":
		m.state.ErrorState = nil
		m.state.Mode = model.ModeLoading
		return m, m.refreshView(m.state.Navigation.View)
	}
	return m, nil
}

// handleAuthRequiredKeys handles the credential error screen. Keypairs
// come from config, so the only way forward is fixing them outside the app.
func (m *Model) handleAuthRequiredKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c", "enter":
		return m, tea.Quit
	case "r":
		m.state.Mode = model.ModeLoading
		return m, m.refreshView(m.state.Navigation.View)
	}
	return m, nil
}

// handleToggleSelection toggles multi-selection of the row under the cursor
func (m *Model) handleToggleSelection() (tea.Model, tea.Cmd) {
	switch m.state.Navigation.View {
	case model.ViewSessions:
		if sess := m.selectedSession(); sess != nil {
			m.state.Selections.ToggleSession(sess.Name)
		}
	case model.ViewFolders:
		if folder := m.selectedFolder(); folder != nil {
			m.state.Selections.ToggleFolder(folder.Name)
		}
	}
	return m, nil
}

// handleOpenLogs fetches and pages the logs for the selected session
func (m *Model) handleOpenLogs() (tea.Model, tea.Cmd) {
	if m.state.Navigation.View != model.ViewSessions {
		return m, nil
	}
	sess := m.selectedSession()
	if sess == nil {
		return m, requireSelection("session")
	}
	m.state.SaveNavigationState()
	m.state.Navigation.View = model.ViewLogs
	m.notifier.Info("Fetching logs for " + sess.Name)
	return m, m.loadSessionLogs(*sess)
}

// handleDeleteKey opens the matching destroy confirmation for the view
func (m *Model) handleDeleteKey() (tea.Model, tea.Cmd) {
	switch m.state.Navigation.View {
	case model.ViewSessions:
		sess := m.selectedSession()
		if sess == nil {
			return m, requireSelection("session")
		}
		name := sess.Name
		m.state.Modals.DestroyTarget = &name
		m.state.Modals.DestroyForced = sess.Status == model.StatusTerminating
		m.state.Modals.DestroySelected = 1
		m.state.Mode = model.ModeConfirmDestroy
		return m, nil
	case model.ViewFolders:
		folder := m.selectedFolder()
		if folder == nil {
			return m, requireSelection("folder")
		}
		name := folder.Name
		m.state.Modals.FolderDeleteTarget = &name
		m.state.Modals.FolderDeleteSelected = 1
		m.state.Mode = model.ModeConfirmFolderDelete
		return m, nil
	}
	return m, nil
}

// handleRenameKey opens the rename input for the row under the cursor
func (m *Model) handleRenameKey() (tea.Model, tea.Cmd) {
	var name, kind string
	switch m.state.Navigation.View {
	case model.ViewSessions:
		sess := m.selectedSession()
		if sess == nil {
			return m, requireSelection("session")
		}
		name, kind = sess.Name, "session"
	case model.ViewFolders:
		folder := m.selectedFolder()
		if folder == nil {
			return m, requireSelection("folder")
		}
		name, kind = folder.Name, "folder"
	default:
		return m, nil
	}
	m.state.Modals.RenameTarget = &name
	m.state.Modals.RenameKind = kind
	m.renameInput.SetValue(name)
	m.renameInput.CursorEnd()
	m.renameInput.Focus()
	m.state.Mode = model.ModeRenameSession
	return m, nil
}

// handleInviteKey opens the invite input for the selected folder
func (m *Model) handleInviteKey() (tea.Model, tea.Cmd) {
	if m.state.Navigation.View != model.ViewFolders {
		return m, nil
	}
	folder := m.selectedFolder()
	if folder == nil {
		return m, requireSelection("folder")
	}
	name := folder.Name
	m.state.Modals.InviteTarget = &name
	m.folderInput.Placeholder = "user@example.com"
	m.folderInput.SetValue("")
	m.folderInput.Focus()
	m.state.Mode = model.ModeInviteFolder
	return m, nil
}

// handleInviteFolderModeKeys handles the invitation email input
func (m *Model) handleInviteFolderModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.folderInput.Blur()
		m.state.Mode = model.ModeNormal
		m.state.Modals.InviteTarget = nil
		return m, nil
	case "enter":
		email := strings.TrimSpace(m.folderInput.Value())
		target := m.state.Modals.InviteTarget
		m.folderInput.Blur()
		m.state.Mode = model.ModeNormal
		m.state.Modals.InviteTarget = nil
		if email == "" || target == nil {
			return m, nil
		}
		return m, m.inviteFolder(*target, email)
	}

	var cmd tea.Cmd
	m.folderInput, cmd = m.folderInput.Update(msg)
	return m, cmd
}

// handleAttachKey opens an interactive shell in the selected session
func (m *Model) handleAttachKey() (tea.Model, tea.Cmd) {
	if m.state.Navigation.View != model.ViewSessions {
		return m, nil
	}
	sess := m.selectedSession()
	if sess == nil {
		return m, requireSelection("session")
	}
	if sess.Status != model.StatusRunning && sess.Status != model.StatusRunningDegraded {
		return m, func() tea.Msg {
			return model.StatusChangeMsg{Message: "Session is not running", Level: "warn"}
		}
	}
	m.state.Mode = model.ModeExternal
	return m, m.attachSession(*sess)
}

// handleAcceptInvitation accepts the first pending folder invitation
func (m *Model) handleAcceptInvitation() (tea.Model, tea.Cmd) {
	if m.state.Navigation.View != model.ViewFolders || len(m.state.Invitations) == 0 {
		return m, nil
	}
	invitation := m.state.Invitations[0]
	m.state.Invitations = m.state.Invitations[1:]
	return m, m.acceptInvitation(invitation)
}

// sessionByName finds a session in the unfiltered list
func (m *Model) sessionByName(name string) *model.Session {
	for i := range m.state.Sessions {
		if m.state.Sessions[i].Name == name {
			return &m.state.Sessions[i]
		}
	}
	return nil
}

// setView returns a command that switches the active view
func setView(view model.View) tea.Cmd {
	return func() tea.Msg {
		return model.SetViewMsg{View: view}
	}
}

// nextView cycles through the three main views
func nextView(view model.View) model.View {
	switch view {
	case model.ViewSummary:
		return model.ViewSessions
	case model.ViewSessions:
		return model.ViewFolders
	default:
		return model.ViewSummary
	}
}
