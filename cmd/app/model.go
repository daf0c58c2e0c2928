package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	cblog "github.com/charmbracelet/log"

	"github.com/sessionaut/sessionaut/pkg/api"
	"github.com/sessionaut/sessionaut/pkg/config"
	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/notify"
)

// Model represents the main Bubble Tea model containing all application state
type Model struct {
	// Core application state
	state *model.AppState

	// Application configuration
	config *config.AppConfig

	// Services
	sessionService  *api.SessionService
	folderService   *api.FolderService
	resourceService *api.ResourceService
	announceService *api.AnnouncementService
	notifier        notify.Notifier

	// Pre-computed session index for filter lookups
	sessionIndex *model.SessionIndex

	// Sort preference applied to the session list
	sortConfig model.SortConfig

	// Internal flags
	ready bool

	// Event stream channel for session lifecycle events
	eventChan chan api.SessionEvent

	// bubbles spinner for loading
	spinner spinner.Model

	// bubbles text inputs for search, command line and modal forms
	searchInput  textinput.Model
	commandInput textinput.Model
	renameInput  textinput.Model
	folderInput  textinput.Model

	// Status bar content fed by the notifier
	statusMessage notify.Message

	// Last fetched log tail, kept for HTML export
	lastLogSession string
	lastLogText    string

	// Bubble Tea program reference for terminal hand-off (pager integration)
	program *tea.Program
	inPager bool
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// Terminal/System messages
	case tea.WindowSizeMsg:
		m.state.Terminal.Rows = msg.Height
		m.state.Terminal.Cols = msg.Width
		if !m.ready {
			m.ready = true
			m.notifier.Info("Ready")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	// Spinner messages
	case spinner.TickMsg:
		if m.inPager {
			// Suspend spinner updates while pager owns the terminal
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// Navigation messages
	case model.SetViewMsg:
		m.switchView(msg.View)
		return m, m.ensurePolling(msg.View)

	case model.SetModeMsg:
		m.state.Mode = msg.Mode
		return m, nil

	case model.SetSelectedIdxMsg:
		m.state.Navigation.SelectedIdx = clampIndex(msg.SelectedIdx, len(m.visibleRows()))
		return m, nil

	case model.ResetNavigationMsg:
		m.state.Navigation.SelectedIdx = 0
		if msg.View != nil {
			m.switchView(*msg.View)
			return m, m.ensurePolling(*msg.View)
		}
		return m, nil

	// UI messages
	case model.SetSearchQueryMsg:
		m.state.UI.SearchQuery = msg.Query
		m.state.Navigation.SelectedIdx = 0
		return m, nil

	case model.SetActiveFilterMsg:
		m.state.UI.ActiveFilter = msg.Filter
		m.state.Navigation.SelectedIdx = 0
		return m, nil

	case model.SetCommandMsg:
		m.state.UI.Command = msg.Command
		return m, nil

	case model.ClearAllSelectionsMsg:
		m.state.Selections.Clear()
		return m, nil

	// Data messages
	case model.SessionsLoadedMsg:
		if msg.Epoch != m.state.Poll(model.ViewSessions).Epoch {
			cblog.With("component", "model").Debug("Dropping stale session list", "epoch", msg.Epoch)
			return m, nil
		}
		m.state.Sessions = msg.Sessions
		m.state.SessionTotal = msg.Total
		m.sessionIndex = model.BuildSessionIndex(msg.Sessions)
		m.applySort()
		m.state.Modals.InitialLoading = false
		m.state.Poll(model.ViewSessions).ErrorStreak = 0
		if m.state.Mode == model.ModeLoading {
			m.state.Mode = model.ModeNormal
		}
		m.clampCursor()
		return m, m.schedulePoll(model.ViewSessions)

	case model.FoldersLoadedMsg:
		if msg.Epoch != m.state.Poll(model.ViewFolders).Epoch {
			return m, nil
		}
		m.state.Folders = msg.Folders
		m.state.Poll(model.ViewFolders).ErrorStreak = 0
		m.clampCursor()
		return m, m.schedulePoll(model.ViewFolders)

	case model.InvitationsLoadedMsg:
		m.state.Invitations = msg.Invitations
		if len(msg.Invitations) > 0 {
			m.notifier.Info(fmt.Sprintf("%d pending folder invitation(s)", len(msg.Invitations)))
		}
		return m, nil

	case model.ResourcesLoadedMsg:
		if msg.Epoch != m.state.Poll(model.ViewSummary).Epoch {
			return m, nil
		}
		m.state.Resources = msg.Resources
		if msg.Policy != nil {
			m.state.Policy = msg.Policy
		}
		m.state.Poll(model.ViewSummary).ErrorStreak = 0
		return m, m.schedulePoll(model.ViewSummary)

	case model.AnnouncementLoadedMsg:
		m.state.Announcement = &msg.Announcement
		m.state.UI.AnnouncementHTML = msg.HTML
		return m, nil

	case model.SessionLogsMsg:
		return m, m.openLogsPager(msg.SessionID, msg.Logs)

	// Operation outcome messages
	case model.SessionDestroyedMsg:
		m.state.Modals.DestroyLoading = false
		m.state.Modals.DestroyTarget = nil
		if m.state.Mode == model.ModeConfirmDestroy {
			m.state.Mode = model.ModeNormal
		}
		if msg.Err != nil {
			return m, m.reportOperationError("destroy", msg.Err)
		}
		m.notifier.Info(fmt.Sprintf("Destroying session %s", msg.SessionID))
		return m, m.loadSessions()

	case model.SessionRenamedMsg:
		if m.state.Mode == model.ModeRenameSession {
			m.state.Mode = model.ModeNormal
		}
		m.state.Modals.RenameTarget = nil
		if msg.Err != nil {
			return m, m.reportOperationError("rename", msg.Err)
		}
		m.notifier.Info(fmt.Sprintf("Renamed session to %s", msg.NewName))
		return m, m.loadSessions()

	case model.SessionRestartedMsg:
		if msg.Err != nil {
			return m, m.reportOperationError("restart", msg.Err)
		}
		m.notifier.Info(fmt.Sprintf("Restarting session %s", msg.SessionID))
		return m, m.loadSessions()

	case model.FolderMutatedMsg:
		switch m.state.Mode {
		case model.ModeCreateFolder, model.ModeConfirmFolderDelete, model.ModeRenameSession, model.ModeInviteFolder:
			m.state.Mode = model.ModeNormal
		}
		m.state.Modals.FolderDeleteTarget = nil
		m.state.Modals.RenameTarget = nil
		m.state.Modals.InviteTarget = nil
		if msg.Err != nil {
			return m, m.reportOperationError(msg.Operation, msg.Err)
		}
		m.notifier.Info(fmt.Sprintf("Folder %s: %s", msg.Operation, msg.Name))
		return m, m.loadFolders()

	case model.ExportDoneMsg:
		if msg.Err != nil {
			return m, m.reportOperationError("export", msg.Err)
		}
		m.notifier.Info(fmt.Sprintf("Exported to %s", msg.Path))
		return m, nil

	case model.AttachDoneMsg:
		m.state.Mode = model.ModeNormal
		if msg.Err != nil {
			return m, m.reportOperationError("attach", msg.Err)
		}
		return m, nil

	// Session lifecycle events from the SSE stream
	case eventStreamStartedMsg:
		m.eventChan = msg.events
		m.notifier.Debug("Session event stream connected")
		return m, m.consumeSessionEvent()

	case sessionEventMsg:
		m.applySessionEvent(msg.event)
		return m, tea.Batch(m.consumeSessionEvent(), m.loadSessions())

	case eventStreamClosedMsg:
		m.eventChan = nil
		if msg.err != nil {
			cblog.With("component", "events").Warn("Event stream closed", "err", msg.err)
		}
		// Reconnect after a pause; polling covers the gap
		return m, tea.Tick(30*time.Second, func(time.Time) tea.Msg {
			return reconnectEventsMsg{}
		})

	case reconnectEventsMsg:
		return m, m.startEventStream()

	// Polling messages
	case model.PollTickMsg:
		poll := m.state.Poll(msg.View)
		if msg.Epoch != poll.Epoch || !poll.Active {
			return m, nil
		}
		return m, m.refreshView(msg.View)

	case pollErrorMsg:
		poll := m.state.Poll(msg.view)
		if msg.epoch != poll.Epoch {
			return m, nil
		}
		poll.ErrorStreak++
		cblog.With("component", "poll").Warn("Refresh failed",
			"view", msg.view, "streak", poll.ErrorStreak, "err", msg.err)
		return m, tea.Batch(m.handleAPIError(msg.err), m.schedulePoll(msg.view))

	// Error and status messages
	case model.StructuredErrorMsg:
		return m, m.applyStructuredError(msg.Error)

	case model.ClearErrorMsg:
		m.state.ErrorState = nil
		if m.state.Mode == model.ModeError || m.state.Mode == model.ModeConnectionError {
			m.state.Mode = model.ModeNormal
		}
		return m, nil

	case model.StatusChangeMsg:
		m.statusMessage = notify.Message{
			Level: notify.Level(msg.Level),
			Title: msg.Message,
		}
		return m, nil

	case model.ClearStatusMsg:
		m.statusMessage = notify.Message{}
		return m, nil

	case pauseRenderingMsg:
		m.inPager = true
		return m, nil

	case resumeRenderingMsg:
		m.inPager = false
		return m, nil

	case pagerDoneMsg:
		m.inPager = false
		if msg.Err != nil {
			cblog.With("component", "pager").Error("Pager error", "err", msg.Err)
			return m, m.reportOperationError("pager", msg.Err)
		}
		if m.state.Navigation.View == model.ViewLogs {
			m.state.RestoreNavigationState()
		}
		m.state.Mode = model.ModeNormal
		return m, nil
	}

	return m, nil
}

// switchView changes the active view, stopping the poll loop of the view
// being left; the caller restarts the new view's loop via ensurePolling
func (m *Model) switchView(view model.View) {
	if m.state.Navigation.View == view {
		return
	}
	m.stopPolling(m.state.Navigation.View)
	m.state.Navigation.View = view
	m.state.Navigation.SelectedIdx = 0
}

// applySessionEvent folds a lifecycle event into the session list without
// waiting for the next poll
func (m *Model) applySessionEvent(ev api.SessionEvent) {
	if ev.SessionName == "" {
		return
	}
	status, ok := eventStatus(ev.Name)
	if !ok {
		return
	}
	for i := range m.state.Sessions {
		if m.state.Sessions[i].Name == ev.SessionName {
			m.state.Sessions[i].Status = status
			break
		}
	}
	m.notifier.Info(fmt.Sprintf("Session %s: %s", ev.SessionName, status))
}

// eventStatus maps a lifecycle event name to the resulting session status
func eventStatus(name string) (model.SessionStatus, bool) {
	switch name {
	case "session_enqueued":
		return model.StatusPending, true
	case "session_scheduled":
		return model.StatusScheduled, true
	case "session_preparing":
		return model.StatusPreparing, true
	case "session_started":
		return model.StatusRunning, true
	case "session_terminating":
		return model.StatusTerminating, true
	case "session_terminated":
		return model.StatusTerminated, true
	case "session_cancelled":
		return model.StatusCancelled, true
	case "session_failure":
		return model.StatusError, true
	}
	return "", false
}

// applyStructuredError records the error and moves the UI to the right mode
func (m *Model) applyStructuredError(consoleErr *apperrors.ConsoleError) tea.Cmd {
	if consoleErr == nil {
		return nil
	}

	cblog.With("component", "model").Debug("Structured error",
		"category", consoleErr.Category, "code", consoleErr.Code, "message", consoleErr.Message)

	title := consoleErr.Message
	m.notifier.Error(title, consoleErr.UserAction)

	if m.state.ErrorState == nil {
		m.state.ErrorState = &model.ErrorState{}
	}
	if m.state.ErrorState.Current != nil {
		m.state.ErrorState.History = append(m.state.ErrorState.History, *m.state.ErrorState.Current)
	}
	m.state.ErrorState.Current = consoleErr

	m.state.Modals.InitialLoading = false
	m.state.Modals.DestroyLoading = false

	switch {
	case consoleErr.IsCategory(apperrors.ErrorAuth):
		m.state.Mode = model.ModeAuthRequired
	case consoleErr.IsCategory(apperrors.ErrorNetwork) || consoleErr.IsCategory(apperrors.ErrorTimeout):
		// Polling keeps retrying network problems; only take over the
		// screen when nothing has loaded yet
		if m.state.Mode == model.ModeLoading {
			m.state.Mode = model.ModeConnectionError
		}
	case consoleErr.Severity == apperrors.SeverityHigh || consoleErr.Severity == apperrors.SeverityCritical:
		m.state.Mode = model.ModeError
	case m.state.Mode == model.ModeLoading:
		m.state.Mode = model.ModeError
	}

	return nil
}

// reportOperationError surfaces a failed user operation without leaving
// the current view
func (m *Model) reportOperationError(operation string, err error) tea.Cmd {
	consoleErr := apperrors.ConvertError(err, apperrors.ErrorAPI, "OPERATION_FAILED")
	m.notifier.Error(fmt.Sprintf("Failed to %s", operation), consoleErr.Message)
	if consoleErr.IsCategory(apperrors.ErrorAuth) {
		m.state.Mode = model.ModeAuthRequired
	}
	return nil
}

// clampCursor keeps the selection within the currently visible rows
func (m *Model) clampCursor() {
	m.state.Navigation.SelectedIdx = clampIndex(m.state.Navigation.SelectedIdx, len(m.visibleRows()))
}

func clampIndex(idx, length int) int {
	if length == 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= length {
		return length - 1
	}
	return idx
}
