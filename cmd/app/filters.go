package main

import (
	"strings"

	"github.com/sessionaut/sessionaut/pkg/model"
	sortutil "github.com/sessionaut/sessionaut/pkg/sort"
)

// applySort orders the session list by the active sort preference
func (m *Model) applySort() {
	sortutil.SortSessions(m.state.Sessions, m.sortConfig)
	// Indices into the sorted slice change, rebuild lookups
	m.sessionIndex = model.BuildSessionIndex(m.state.Sessions)
}

// visibleSessions returns the sessions matching the status filter and the
// search query, in display order
func (m *Model) visibleSessions() []model.Session {
	sessions := m.sessionIndex.FilteredSessions(
		m.state.Sessions, m.state.UI.ActiveFilter, m.state.UI.ShowFinished)

	query := strings.ToLower(strings.TrimSpace(m.state.UI.SearchQuery))
	if query == "" {
		return sessions
	}

	matched := make([]model.Session, 0, len(sessions))
	for _, sess := range sessions {
		if strings.Contains(strings.ToLower(sess.Name), query) ||
			strings.Contains(strings.ToLower(sess.Image), query) {
			matched = append(matched, sess)
		}
	}
	return matched
}

// visibleFolders returns the folders matching the search query
func (m *Model) visibleFolders() []model.VFolder {
	query := strings.ToLower(strings.TrimSpace(m.state.UI.SearchQuery))
	if query == "" {
		return m.state.Folders
	}

	matched := make([]model.VFolder, 0, len(m.state.Folders))
	for _, folder := range m.state.Folders {
		if strings.Contains(strings.ToLower(folder.Name), query) {
			matched = append(matched, folder)
		}
	}
	return matched
}

// visibleRows returns the row values for the current view as generic
// placeholders used for cursor clamping
func (m *Model) visibleRows() []string {
	switch m.state.Navigation.View {
	case model.ViewSessions:
		sessions := m.visibleSessions()
		names := make([]string, len(sessions))
		for i, sess := range sessions {
			names[i] = sess.Name
		}
		return names
	case model.ViewFolders:
		folders := m.visibleFolders()
		names := make([]string, len(folders))
		for i, folder := range folders {
			names[i] = folder.Name
		}
		return names
	}
	return nil
}

// selectedSession returns the session under the cursor in the filtered
// session list, or nil
func (m *Model) selectedSession() *model.Session {
	if m.state.Navigation.View != model.ViewSessions {
		return nil
	}
	sessions := m.visibleSessions()
	idx := m.state.Navigation.SelectedIdx
	if idx < 0 || idx >= len(sessions) {
		return nil
	}
	return &sessions[idx]
}

// selectedFolder returns the folder under the cursor in the filtered
// folder list, or nil
func (m *Model) selectedFolder() *model.VFolder {
	if m.state.Navigation.View != model.ViewFolders {
		return nil
	}
	folders := m.visibleFolders()
	idx := m.state.Navigation.SelectedIdx
	if idx < 0 || idx >= len(folders) {
		return nil
	}
	return &folders[idx]
}
