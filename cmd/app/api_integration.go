package main

import (
	stdcontext "context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	cblog "github.com/charmbracelet/log"

	"github.com/sessionaut/sessionaut/pkg/api"
	appcontext "github.com/sessionaut/sessionaut/pkg/context"
	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
	"github.com/sessionaut/sessionaut/pkg/export"
	"github.com/sessionaut/sessionaut/pkg/markdown"
	"github.com/sessionaut/sessionaut/pkg/model"
)

// Internal messages for the event stream and poll loops

type eventStreamStartedMsg struct {
	events chan api.SessionEvent
}

type sessionEventMsg struct {
	event api.SessionEvent
}

type eventStreamClosedMsg struct {
	err error
}

type reconnectEventsMsg struct{}

type pollErrorMsg struct {
	view  model.View
	epoch int
	err   error
}

// Backoff intervals while a view's refreshes keep failing. One failure
// slows the loop to errBackoffShort, two or more to errBackoffLong; the
// next success restores the view's base interval.
const (
	errBackoffShort = 45 * time.Second
	errBackoffLong  = 120 * time.Second
)

// handleAPIError converts an arbitrary API error into a structured error
// message for the update loop
func (m *Model) handleAPIError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	var consoleErr *apperrors.ConsoleError
	if !stdErrors.As(err, &consoleErr) {
		consoleErr = apperrors.ConvertError(err, apperrors.ErrorAPI, "API_ERROR")
	}
	return func() tea.Msg {
		return model.StructuredErrorMsg{Error: consoleErr}
	}
}

// schedulePoll arms the next refresh tick for a view, backing off while
// the view's refreshes keep failing
func (m *Model) schedulePoll(view model.View) tea.Cmd {
	poll := m.state.Poll(view)
	if !poll.Active {
		return nil
	}

	interval := pollBackoff(m.pollInterval(view), poll.ErrorStreak)

	epoch := poll.Epoch
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return model.PollTickMsg{View: view, Epoch: epoch}
	})
}

// pollBackoff picks the interval for the next tick given the number of
// consecutive refresh failures
func pollBackoff(base time.Duration, errorStreak int) time.Duration {
	switch {
	case errorStreak == 1:
		return errBackoffShort
	case errorStreak >= 2:
		return errBackoffLong
	}
	return base
}

func (m *Model) pollInterval(view model.View) time.Duration {
	switch view {
	case model.ViewSummary:
		return m.config.ResourcesInterval()
	default:
		return m.config.SessionsInterval()
	}
}

// refreshView runs the data load backing a polled view
func (m *Model) refreshView(view model.View) tea.Cmd {
	switch view {
	case model.ViewSessions:
		return m.loadSessions()
	case model.ViewFolders:
		return m.loadFolders()
	case model.ViewSummary:
		return m.loadResources()
	}
	return nil
}

// loadSessions fetches the session list for the current keypair. The poll
// epoch is captured before the closure runs so a stale response from a
// previous generation is dropped in the update loop.
func (m *Model) loadSessions() tea.Cmd {
	epoch := m.state.Poll(model.ViewSessions).Epoch
	service := m.sessionService
	showFinished := m.state.UI.ShowFinished
	group := groupOf(m.state.Server)

	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpAPI)
		defer cancel()

		statuses := model.ActiveStatuses
		if showFinished {
			statuses = nil
		}

		sessions, total, err := service.List(ctx, api.ListSessionsOptions{
			Statuses: statuses,
			GroupID:  group,
		})
		if err != nil {
			cblog.With("component", "api").Warn("Session list failed", "err", err)
			return pollErrorMsg{view: model.ViewSessions, epoch: epoch, err: err}
		}

		return model.SessionsLoadedMsg{Sessions: sessions, Total: total, Epoch: epoch}
	}
}

// loadFolders fetches the virtual folder list
func (m *Model) loadFolders() tea.Cmd {
	epoch := m.state.Poll(model.ViewFolders).Epoch
	service := m.folderService
	group := groupOf(m.state.Server)

	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		folders, err := service.List(ctx, group)
		if err != nil {
			cblog.With("component", "api").Warn("Folder list failed", "err", err)
			return pollErrorMsg{view: model.ViewFolders, epoch: epoch, err: err}
		}

		return model.FoldersLoadedMsg{Folders: folders, Epoch: epoch}
	}
}

// loadInvitations fetches pending folder invitations once at startup
func (m *Model) loadInvitations() tea.Cmd {
	service := m.folderService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		invitations, err := service.Invitations(ctx)
		if err != nil {
			// Invitations are best-effort; the console works without them
			cblog.With("component", "api").Debug("Invitation list failed", "err", err)
			return model.InvitationsLoadedMsg{}
		}
		return model.InvitationsLoadedMsg{Invitations: invitations}
	}
}

// loadResources fetches resource accounting for the summary view
func (m *Model) loadResources() tea.Cmd {
	epoch := m.state.Poll(model.ViewSummary).Epoch
	service := m.resourceService
	group := groupOf(m.state.Server)

	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpResource)
		defer cancel()

		info, err := service.TotalResourceInformation(ctx, group)
		if err != nil {
			cblog.With("component", "api").Warn("Resource query failed", "err", err)
			return pollErrorMsg{view: model.ViewSummary, epoch: epoch, err: err}
		}

		msg := model.ResourcesLoadedMsg{Resources: []model.ResourceInformation{info}, Epoch: epoch}

		// Policy limits rarely change; resolve the keypair's policy name
		// and fetch it alongside, tolerating failure
		if name, err := service.OwnPolicyName(ctx); err == nil {
			if policy, err := service.ResourcePolicy(ctx, name); err == nil {
				msg.Policy = &policy
			}
		}
		return msg
	}
}

// loadAnnouncement fetches the cluster announcement and renders it for
// terminal display
func (m *Model) loadAnnouncement() tea.Cmd {
	service := m.announceService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpAPI)
		defer cancel()

		announcement, err := service.Get(ctx)
		if err != nil {
			cblog.With("component", "api").Debug("Announcement fetch failed", "err", err)
			return nil
		}
		if !announcement.Enabled || announcement.Markdown == "" {
			return nil
		}

		html, err := markdown.NewRenderer().Render(announcement.Markdown)
		if err != nil {
			cblog.With("component", "api").Warn("Announcement render failed", "err", err)
			html = announcement.Markdown
		}
		return model.AnnouncementLoadedMsg{Announcement: announcement, HTML: html}
	}
}

// loadSessionLogs fetches the log tail for one session
func (m *Model) loadSessionLogs(session model.Session) tea.Cmd {
	service := m.sessionService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpLogs)
		defer cancel()

		logs, err := service.Logs(ctx, session.Name, api.LogsOptions{
			OwnerAccessKey: session.AccessKey,
		})
		if err != nil {
			return model.StructuredErrorMsg{
				Error: apperrors.ConvertError(err, apperrors.ErrorSession, "LOGS_FAILED"),
			}
		}
		return model.SessionLogsMsg{SessionID: session.Name, Logs: logs}
	}
}

// destroySession terminates a session, optionally forcing termination of a
// stuck one
func (m *Model) destroySession(session model.Session, forced bool) tea.Cmd {
	service := m.sessionService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpAPI)
		defer cancel()

		err := service.Destroy(ctx, session.Name, session.AccessKey, forced)
		return model.SessionDestroyedMsg{SessionID: session.Name, Forced: forced, Err: err}
	}
}

// renameSession renames a session
func (m *Model) renameSession(session model.Session, newName string) tea.Cmd {
	service := m.sessionService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpAPI)
		defer cancel()

		err := service.Rename(ctx, session.Name, newName)
		return model.SessionRenamedMsg{SessionID: session.Name, NewName: newName, Err: err}
	}
}

// restartSession restarts a running session in place
func (m *Model) restartSession(session model.Session) tea.Cmd {
	service := m.sessionService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpAPI)
		defer cancel()

		err := service.Restart(ctx, session.Name)
		return model.SessionRestartedMsg{SessionID: session.Name, Err: err}
	}
}

// createFolder creates a virtual folder on the given host
func (m *Model) createFolder(name, host string) tea.Cmd {
	service := m.folderService
	group := groupOf(m.state.Server)
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		_, err := service.Create(ctx, name, api.CreateFolderOptions{
			Host:    host,
			GroupID: group,
		})
		return model.FolderMutatedMsg{Operation: "create", Name: name, Err: err}
	}
}

// deleteFolder deletes a virtual folder by name
func (m *Model) deleteFolder(name string) tea.Cmd {
	service := m.folderService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		err := service.Delete(ctx, name)
		return model.FolderMutatedMsg{Operation: "delete", Name: name, Err: err}
	}
}

// renameFolder renames a virtual folder
func (m *Model) renameFolder(name, newName string) tea.Cmd {
	service := m.folderService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		err := service.Rename(ctx, name, newName)
		return model.FolderMutatedMsg{Operation: "rename", Name: newName, Err: err}
	}
}

// inviteFolder shares a virtual folder with another user by email
func (m *Model) inviteFolder(name, email string) tea.Cmd {
	service := m.folderService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		_, err := service.Invite(ctx, name, model.PermReadWrite, []string{email})
		return model.FolderMutatedMsg{Operation: "invite", Name: name, Err: err}
	}
}

// cloneFolder clones a virtual folder under a new name on the same host
func (m *Model) cloneFolder(name, target string) tea.Cmd {
	service := m.folderService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		err := service.Clone(ctx, name, target, api.CreateFolderOptions{})
		return model.FolderMutatedMsg{Operation: "clone", Name: target, Err: err}
	}
}

// acceptInvitation accepts a pending folder invitation
func (m *Model) acceptInvitation(invitation model.FolderInvitation) tea.Cmd {
	service := m.folderService
	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpFolder)
		defer cancel()

		err := service.AcceptInvitation(ctx, invitation.ID)
		return model.FolderMutatedMsg{Operation: "accept", Name: invitation.FolderName, Err: err}
	}
}

// exportSessionsCSV writes the current session list to a CSV file in the
// configured export directory
func (m *Model) exportSessionsCSV() tea.Cmd {
	sessions := make([]model.Session, len(m.state.Sessions))
	copy(sessions, m.state.Sessions)
	dir := m.config.Export.Directory

	return func() tea.Msg {
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.ExportDoneMsg{Err: err}
		}
		path := filepath.Join(dir, export.DefaultFileName(time.Now()))

		f, err := os.Create(path)
		if err != nil {
			return model.ExportDoneMsg{Err: err}
		}
		defer f.Close()

		if err := export.WriteSessionsCSV(f, sessions, nil); err != nil {
			return model.ExportDoneMsg{Err: err}
		}
		return model.ExportDoneMsg{Path: path}
	}
}

// startEventStream connects the server-sent session event stream and
// forwards events into a channel the update loop drains
func (m *Model) startEventStream() tea.Cmd {
	server := m.state.Server
	group := groupOf(server)
	program := func() *tea.Program { return m.program }

	return func() tea.Msg {
		events := make(chan api.SessionEvent, 16)
		service := api.NewEventService(server)

		go func() {
			err := service.WatchSessions(stdcontext.Background(), api.WatchSessionsOptions{
				GroupID: group,
			}, events)
			close(events)
			if p := program(); p != nil {
				p.Send(eventStreamClosedMsg{err: err})
			}
		}()

		return eventStreamStartedMsg{events: events}
	}
}

// consumeSessionEvent blocks on the event channel and surfaces the next
// lifecycle event as a message
func (m *Model) consumeSessionEvent() tea.Cmd {
	events := m.eventChan
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			// Closure notification arrives via program.Send
			return nil
		}
		return sessionEventMsg{event: ev}
	}
}

// groupOf returns the server's project group, or empty when unscoped
func groupOf(server *model.Server) string {
	if server == nil {
		return ""
	}
	return server.Group
}

// requireSelection surfaces a hint when an operation needs a row selected
func requireSelection(kind string) tea.Cmd {
	return func() tea.Msg {
		return model.StatusChangeMsg{
			Message: fmt.Sprintf("No %s selected", kind),
			Level:   "warn",
		}
	}
}
