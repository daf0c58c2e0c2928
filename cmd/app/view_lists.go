package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/theme"
)

// renderSessionsView renders the session table
func (m *Model) renderSessionsView() string {
	sessions := m.visibleSessions()

	var b strings.Builder

	header := fmt.Sprintf("  %-24s %-12s %-28s %-11s %-8s %s",
		"NAME", "STATUS", "IMAGE", "TYPE", "CPU", "CREATED")
	b.WriteString(headerStyle.Render(padToWidth(header, m.state.Terminal.Cols)))
	b.WriteString("\n")

	if len(sessions) == 0 {
		b.WriteString(dimStyle.Render("  No sessions"))
		if m.state.UI.SearchQuery != "" || m.state.UI.ActiveFilter != "" {
			b.WriteString(dimStyle.Render(" matching the filter"))
		}
		return b.String()
	}

	height := m.bodyHeight()
	start, end := scrollWindow(m.state.Navigation.SelectedIdx, len(sessions), height)

	for i := start; i < end; i++ {
		sess := sessions[i]
		marker := "  "
		if m.state.Selections.HasSession(sess.Name) {
			marker = accentStyle.Render("* ")
		}

		row := fmt.Sprintf("%-24s %-12s %-28s %-11s %-8s %s",
			truncate(sess.Name, 24),
			sess.Status,
			truncate(shortImage(sess.Image), 28),
			sess.Type,
			sess.Occupied["cpu"],
			formatAge(sess.CreatedAt))

		if i == m.state.Navigation.SelectedIdx {
			b.WriteString(cursorStyle.Render(padToWidth(marker+row, m.state.Terminal.Cols)))
		} else {
			statusStyle := theme.StatusStyle(sess.Status)
			b.WriteString(marker + statusStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d sessions", len(sessions), m.state.SessionTotal)))
	if m.state.UI.ActiveFilter != "" {
		b.WriteString(dimStyle.Render("  filter: " + m.state.UI.ActiveFilter))
	}
	if !m.state.UI.ShowFinished {
		b.WriteString(dimStyle.Render("  (finished hidden, press f)"))
	}

	return b.String()
}

// renderFoldersView renders the virtual folder table
func (m *Model) renderFoldersView() string {
	folders := m.visibleFolders()

	var b strings.Builder

	header := fmt.Sprintf("  %-24s %-16s %-10s %-18s %s",
		"NAME", "HOST", "MODE", "PERMISSION", "OWNERSHIP")
	b.WriteString(headerStyle.Render(padToWidth(header, m.state.Terminal.Cols)))
	b.WriteString("\n")

	if len(m.state.Invitations) > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf("  %d pending invitation(s), press A to accept", len(m.state.Invitations))))
		b.WriteString("\n")
	}

	if len(folders) == 0 {
		b.WriteString(dimStyle.Render("  No folders; press n to create one"))
		return b.String()
	}

	height := m.bodyHeight()
	start, end := scrollWindow(m.state.Navigation.SelectedIdx, len(folders), height)

	for i := start; i < end; i++ {
		folder := folders[i]
		marker := "  "
		if m.state.Selections.HasFolder(folder.Name) {
			marker = accentStyle.Render("* ")
		}

		row := fmt.Sprintf("%-24s %-16s %-10s %-18s %s",
			truncate(folder.Name, 24),
			truncate(folder.Host, 16),
			folder.UsageMode,
			folder.Permission.Describe(),
			folder.Ownership)

		if i == m.state.Navigation.SelectedIdx {
			b.WriteString(cursorStyle.Render(padToWidth(marker+row, m.state.Terminal.Cols)))
		} else {
			b.WriteString(marker + textStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d folders", len(folders))))
	return b.String()
}

// renderSummaryView renders resource usage bars and policy limits
func (m *Model) renderSummaryView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Resource usage"))
	b.WriteString("\n")

	if len(m.state.Resources) == 0 {
		b.WriteString(dimStyle.Render("  Waiting for resource data... "))
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	}

	for _, info := range m.state.Resources {
		if info.GroupName != "" {
			b.WriteString(infoStyle.Render("  " + info.GroupName))
			b.WriteString("\n")
		}
		for _, slot := range orderedSlots(info) {
			b.WriteString(renderUsageBar(slot, info, m.state.Terminal.Cols))
			b.WriteString("\n")
		}
	}

	if m.state.Policy != nil {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("  Resource policy: " + m.state.Policy.Name))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Max concurrent sessions: %d\n", m.state.Policy.MaxConcurrentSessions))
		b.WriteString(fmt.Sprintf("  Max folders: %d\n", m.state.Policy.MaxVFolderCount))
		if m.state.Policy.IdleTimeout > 0 {
			b.WriteString(fmt.Sprintf("  Idle timeout: %s\n", time.Duration(m.state.Policy.IdleTimeout)*time.Second))
		}
	}

	if m.state.Announcement != nil {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  Announcement available, press a to read"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderUsageBar renders one slot as a labelled percentage bar
func renderUsageBar(slot string, info model.ResourceInformation, cols int) string {
	percent := info.PercentUsed(slot)

	barWidth := cols - 40
	if barWidth < 10 {
		barWidth = 10
	}
	filled := int(percent / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	style := successStyle
	switch {
	case percent >= 90:
		style = dangerStyle
	case percent >= 70:
		style = warningStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))

	return fmt.Sprintf("  %-12s %s %5.1f%%  %s",
		slot, bar, percent,
		dimStyle.Render(fmt.Sprintf("%.1f / %.1f", info.Used[slot], info.Total[slot])))
}

// orderedSlots returns slot names with cpu and mem first, accelerators after
func orderedSlots(info model.ResourceInformation) []string {
	slots := make([]string, 0, len(info.Total))
	for _, known := range []string{"cpu", "mem"} {
		if _, ok := info.Total[known]; ok {
			slots = append(slots, known)
		}
	}
	for slot := range info.Total {
		if slot != "cpu" && slot != "mem" {
			slots = append(slots, slot)
		}
	}
	return slots
}

// bodyHeight returns the rows available for list content
func (m *Model) bodyHeight() int {
	// header + column header + footer + status bar
	h := m.state.Terminal.Rows - 4
	if h < 3 {
		h = 3
	}
	return h
}

// scrollWindow keeps the cursor visible within a fixed-height viewport
func scrollWindow(cursor, total, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}

func padToWidth(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// shortImage strips the registry prefix from a container image reference
func shortImage(image string) string {
	if idx := strings.Index(image, "/"); idx > 0 && strings.Contains(image[:idx], ".") {
		return image[idx+1:]
	}
	return image
}

// formatAge renders a creation time as a compact age like 5m or 2d
func formatAge(t *time.Time) string {
	if t == nil {
		return "-"
	}
	d := time.Since(*t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
