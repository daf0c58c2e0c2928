package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// View renders the whole screen for the current mode
func (m *Model) View() string {
	if m.inPager {
		// The external pager owns the terminal
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	switch m.state.Mode {
	case model.ModeLoading:
		return m.renderLoadingScreen()
	case model.ModeAuthRequired:
		return m.renderAuthRequiredScreen()
	case model.ModeConnectionError:
		return m.renderConnectionErrorScreen()
	case model.ModeError:
		return m.renderErrorScreen()
	case model.ModeHelp:
		return m.renderHelpScreen()
	case model.ModeAnnouncement:
		return m.renderAnnouncementScreen()
	case model.ModeExternal:
		return ""
	}

	return m.renderMainLayout()
}

// renderMainLayout composes header, body, optional input bar, modal
// overlay and the status bar
func (m *Model) renderMainLayout() string {
	var sections []string

	sections = append(sections, m.renderHeader())

	switch m.state.Navigation.View {
	case model.ViewSummary:
		sections = append(sections, m.renderSummaryView())
	case model.ViewFolders:
		sections = append(sections, m.renderFoldersView())
	case model.ViewLogs:
		sections = append(sections, dimStyle.Render("  Fetching logs... ")+m.spinner.View())
	default:
		sections = append(sections, m.renderSessionsView())
	}

	switch m.state.Mode {
	case model.ModeSearch:
		sections = append(sections, m.renderSearchBar())
	case model.ModeCommand:
		sections = append(sections, m.renderCommandBar())
	case model.ModeConfirmDestroy:
		sections = append(sections, m.renderDestroyModal())
	case model.ModeConfirmFolderDelete:
		sections = append(sections, m.renderFolderDeleteModal())
	case model.ModeRenameSession:
		sections = append(sections, m.renderRenameModal())
	case model.ModeCreateFolder:
		sections = append(sections, m.renderCreateFolderModal())
	case model.ModeInviteFolder:
		sections = append(sections, m.renderInviteFolderModal())
	}

	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the cluster line and the view tabs
func (m *Model) renderHeader() string {
	endpoint := ""
	if m.state.Server != nil {
		endpoint = m.state.Server.Endpoint
	}

	title := headerStyle.Render("sessionaut")
	cluster := dimStyle.Render(endpoint)
	if m.state.APIVersion != "" {
		cluster += dimStyle.Render(" (" + m.state.APIVersion + ")")
	}

	tabs := m.renderTabs()

	left := title + "  " + cluster
	gap := m.state.Terminal.Cols - lipgloss.Width(left) - lipgloss.Width(tabs) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + tabs
}

func (m *Model) renderTabs() string {
	render := func(label string, view model.View) string {
		if m.state.Navigation.View == view || (m.state.Navigation.View == model.ViewLogs && view == model.ViewSessions) {
			return accentStyle.Bold(true).Render("[" + label + "]")
		}
		return dimStyle.Render(" " + label + " ")
	}
	return render("summary", model.ViewSummary) + " " +
		render("sessions", model.ViewSessions) + " " +
		render("folders", model.ViewFolders)
}

// renderSearchBar renders the active search input
func (m *Model) renderSearchBar() string {
	bar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(currentPalette.Warning).
		PaddingLeft(1).
		PaddingRight(1)

	label := lipgloss.NewStyle().Bold(true).Foreground(currentPalette.Info).Render("Search")
	width := maxInt(0, m.state.Terminal.Cols-2)
	return bar.Width(width).Render(label + " " + m.searchInput.View())
}

// renderCommandBar renders the active command input
func (m *Model) renderCommandBar() string {
	bar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(currentPalette.Warning).
		PaddingLeft(1).
		PaddingRight(1)

	prompt := dimStyle.Render(":")
	width := maxInt(0, m.state.Terminal.Cols-2)
	return bar.Width(width).Render(prompt + m.commandInput.View())
}

// renderLoadingScreen shows a centered spinner during startup
func (m *Model) renderLoadingScreen() string {
	content := fmt.Sprintf("%s Connecting to cluster...", m.spinner.View())
	if m.state.Server != nil {
		content += "\n\n" + dimStyle.Render(m.state.Server.Endpoint)
	}
	return lipgloss.Place(m.state.Terminal.Cols, m.state.Terminal.Rows,
		lipgloss.Center, lipgloss.Center, content)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
