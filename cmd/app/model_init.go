package main

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// Init starts the spinner, kicks off the initial loads and connects the
// session event stream
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startPolling(),
		m.loadInvitations(),
		m.loadAnnouncement(),
		m.startEventStream(),
	)
}

// startPolling activates the poll loops for every polled view and issues
// the first refresh of each
func (m *Model) startPolling() tea.Cmd {
	var cmds []tea.Cmd
	for _, view := range []model.View{model.ViewSessions, model.ViewFolders, model.ViewSummary} {
		poll := m.state.Poll(view)
		poll.Active = true
		poll.Epoch++
		cmds = append(cmds, m.refreshView(view))
	}
	return tea.Batch(cmds...)
}

// ensurePolling makes sure the poll loop for a view is running, starting a
// fresh generation if it was stopped
func (m *Model) ensurePolling(view model.View) tea.Cmd {
	switch view {
	case model.ViewSessions, model.ViewFolders, model.ViewSummary:
	default:
		return nil
	}
	poll := m.state.Poll(view)
	if poll.Active {
		return nil
	}
	poll.Active = true
	poll.Epoch++
	poll.ErrorStreak = 0
	return m.refreshView(view)
}

// stopPolling halts the poll loop for a view; in-flight ticks from the old
// generation are dropped by the epoch check
func (m *Model) stopPolling(view model.View) {
	poll := m.state.Poll(view)
	poll.Active = false
	poll.Epoch++
}
