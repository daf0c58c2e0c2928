package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

func (m *Model) modalStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(currentPalette.Border).
		Padding(1, 2)
}

// renderDestroyModal renders the session destroy confirmation
func (m *Model) renderDestroyModal() string {
	target := ""
	if m.state.Modals.DestroyTarget != nil {
		target = *m.state.Modals.DestroyTarget
	}

	var b strings.Builder
	b.WriteString(dangerStyle.Bold(true).Render("Destroy session"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Terminate session %s?", accentStyle.Render(target)))
	b.WriteString("\n")
	if m.state.Modals.DestroyForced {
		b.WriteString(warningStyle.Render("Forced termination enabled (f to toggle)"))
	} else {
		b.WriteString(dimStyle.Render("Press f to force-terminate a stuck session"))
	}
	b.WriteString("\n\n")

	if m.state.Modals.DestroyLoading {
		b.WriteString(m.spinner.View() + " Destroying...")
	} else {
		b.WriteString(renderChoiceButtons(m.state.Modals.DestroySelected, "Destroy", "Cancel"))
	}

	return m.modalStyle().BorderForeground(currentPalette.Danger).Render(b.String())
}

// renderFolderDeleteModal renders the folder delete confirmation
func (m *Model) renderFolderDeleteModal() string {
	target := ""
	if m.state.Modals.FolderDeleteTarget != nil {
		target = *m.state.Modals.FolderDeleteTarget
	}

	var b strings.Builder
	b.WriteString(dangerStyle.Bold(true).Render("Delete folder"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete folder %s and its contents?", accentStyle.Render(target)))
	b.WriteString("\n\n")
	b.WriteString(renderChoiceButtons(m.state.Modals.FolderDeleteSelected, "Delete", "Cancel"))

	return m.modalStyle().BorderForeground(currentPalette.Danger).Render(b.String())
}

// renderRenameModal renders the rename input for sessions and folders
func (m *Model) renderRenameModal() string {
	target := ""
	if m.state.Modals.RenameTarget != nil {
		target = *m.state.Modals.RenameTarget
	}
	title := "Rename session"
	if m.state.Modals.RenameKind == "folder" {
		title = "Rename folder"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Current: " + target))
	b.WriteString("\n")
	b.WriteString(m.renameInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter to rename, esc to cancel"))

	return m.modalStyle().Render(b.String())
}

// renderCreateFolderModal renders the folder creation input
func (m *Model) renderCreateFolderModal() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Create folder"))
	b.WriteString("\n\n")
	b.WriteString(m.folderInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter to create on the default host, esc to cancel"))

	return m.modalStyle().Render(b.String())
}

// renderInviteFolderModal renders the invitation email input
func (m *Model) renderInviteFolderModal() string {
	target := ""
	if m.state.Modals.InviteTarget != nil {
		target = *m.state.Modals.InviteTarget
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Invite to folder"))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Share " + target + " (read-write) with:"))
	b.WriteString("\n")
	b.WriteString(m.folderInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter to send the invitation, esc to cancel"))

	return m.modalStyle().Render(b.String())
}

// renderChoiceButtons renders a yes/cancel pair with the selection marked
func renderChoiceButtons(selected int, yes, cancel string) string {
	yesStyle := lipgloss.NewStyle().Padding(0, 2).Background(currentPalette.MutedBG)
	cancelStyle := yesStyle
	if selected == 0 {
		yesStyle = yesStyle.Background(currentPalette.SelectedBG).Bold(true)
	} else {
		cancelStyle = cancelStyle.Background(currentPalette.SelectedBG).Bold(true)
	}
	return yesStyle.Render(yes) + "  " + cancelStyle.Render(cancel)
}
