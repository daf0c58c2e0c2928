package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/notify"
)

// renderStatusBar renders the bottom line: last notification on the left,
// key hints on the right
func (m *Model) renderStatusBar() string {
	msg := m.statusMessage

	var left string
	switch msg.Level {
	case notify.LevelError:
		left = dangerStyle.Render(" ✗ " + msg.Title)
		if msg.Detail != "" {
			left += dimStyle.Render(" (" + msg.Detail + ")")
		}
	case notify.LevelWarn:
		left = warningStyle.Render(" ! " + msg.Title)
	default:
		if msg.Title != "" {
			left = dimStyle.Render(" " + msg.Title)
		} else if m.state.Navigation.View == model.ViewSessions {
			// With nothing to report, hint at what the selected
			// session's status means
			if s := m.selectedSession(); s != nil {
				left = dimStyle.Render(" " + model.StatusDescriptions.Get(s.Status))
			}
		}
	}

	if msg.Total > 0 {
		left += dimStyle.Render(fmt.Sprintf(" [%d/%d]", msg.Current, msg.Total))
	}

	right := dimStyle.Render("?:help  /:search  ::command  q:quit ")

	gap := m.state.Terminal.Cols - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelpScreen renders the key binding overview
func (m *Model) renderHelpScreen() string {
	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Navigation", [][2]string{
			{"j/k, ↑/↓", "move cursor"},
			{"gg / G", "jump to top / bottom"},
			{"1 / 2 / 3", "summary / sessions / folders"},
			{"tab", "next view"},
		}},
		{"Sessions", [][2]string{
			{"enter, l", "view logs"},
			{"d", "destroy session"},
			{"r", "rename session"},
			{"R", "restart session"},
			{"s", "attach shell"},
			{"f", "toggle finished sessions"},
			{"e", "export list as CSV"},
		}},
		{"Folders", [][2]string{
			{"n", "create folder"},
			{"d", "delete folder"},
			{"r", "rename folder"},
			{"i", "invite user to folder"},
			{"A", "accept pending invitation"},
		}},
		{"Commands", [][2]string{
			{":sessions :folders :summary", "switch view"},
			{":logs [name]", "view session logs"},
			{":theme [name]", "switch color theme"},
			{":sort <field> [asc|desc]", "change sort order"},
			{":filter [STATUS]", "filter by status"},
			{":clone <new-name>", "clone selected folder"},
			{":invite [email]", "share selected folder"},
			{":export [logs]", "export CSV or log HTML"},
			{":quit", "exit"},
		}},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("sessionaut help"))
	b.WriteString("\n\n")
	for _, section := range sections {
		b.WriteString(accentStyle.Render(section.title))
		b.WriteString("\n")
		for _, kv := range section.keys {
			b.WriteString(fmt.Sprintf("  %-30s %s\n", infoStyle.Render(kv[0]), kv[1]))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("esc to close"))

	return lipgloss.Place(m.state.Terminal.Cols, m.state.Terminal.Rows,
		lipgloss.Center, lipgloss.Center, m.modalStyle().Render(b.String()))
}

// renderAnnouncementScreen shows the cluster announcement full-screen
func (m *Model) renderAnnouncementScreen() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Cluster announcement"))
	b.WriteString("\n\n")
	if m.state.Announcement != nil {
		b.WriteString(m.state.Announcement.Markdown)
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("esc to close"))

	return lipgloss.Place(m.state.Terminal.Cols, m.state.Terminal.Rows,
		lipgloss.Center, lipgloss.Center, m.modalStyle().Render(b.String()))
}

// renderAuthRequiredScreen renders the credential failure screen
func (m *Model) renderAuthRequiredScreen() string {
	var b strings.Builder
	b.WriteString(dangerStyle.Bold(true).Render("Authentication failed"))
	b.WriteString("\n\n")
	if m.state.ErrorState != nil && m.state.ErrorState.Current != nil {
		b.WriteString(m.state.ErrorState.Current.Message)
		b.WriteString("\n\n")
	}
	b.WriteString("Check the keypair for the current cluster:\n")
	b.WriteString(dimStyle.Render("  - BACKEND_ACCESS_KEY / BACKEND_SECRET_KEY environment variables\n"))
	b.WriteString(dimStyle.Render("  - the access-key and secret-key entries in the cluster config\n"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("r to retry, q to quit"))

	return lipgloss.Place(m.state.Terminal.Cols, m.state.Terminal.Rows,
		lipgloss.Center, lipgloss.Center,
		m.modalStyle().BorderForeground(currentPalette.Danger).Render(b.String()))
}

// renderConnectionErrorScreen renders the unreachable-cluster screen
func (m *Model) renderConnectionErrorScreen() string {
	endpoint := ""
	if m.state.Server != nil {
		endpoint = m.state.Server.Endpoint
	}

	var b strings.Builder
	b.WriteString(warningStyle.Bold(true).Render("Cannot reach cluster"))
	b.WriteString("\n\n")
	b.WriteString("No response from " + accentStyle.Render(endpoint))
	b.WriteString("\n")
	if m.state.ErrorState != nil && m.state.ErrorState.Current != nil {
		b.WriteString(dimStyle.Render(m.state.ErrorState.Current.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("r to retry, q to quit"))

	return lipgloss.Place(m.state.Terminal.Cols, m.state.Terminal.Rows,
		lipgloss.Center, lipgloss.Center, m.modalStyle().Render(b.String()))
}

// renderErrorScreen renders a structured error full-screen
func (m *Model) renderErrorScreen() string {
	var b strings.Builder
	b.WriteString(dangerStyle.Bold(true).Render("Error"))
	b.WriteString("\n\n")
	if m.state.ErrorState != nil && m.state.ErrorState.Current != nil {
		cur := m.state.ErrorState.Current
		b.WriteString(cur.Message)
		b.WriteString("\n")
		if cur.Details != "" {
			b.WriteString(dimStyle.Render(cur.Details))
			b.WriteString("\n")
		}
		if cur.UserAction != "" {
			b.WriteString("\n")
			b.WriteString(infoStyle.Render(cur.UserAction))
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("[%s:%s]", cur.Category, cur.Code)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("r to retry, esc to dismiss, q to quit"))

	return lipgloss.Place(m.state.Terminal.Cols, m.state.Terminal.Rows,
		lipgloss.Center, lipgloss.Center,
		m.modalStyle().BorderForeground(currentPalette.Danger).Render(b.String()))
}
