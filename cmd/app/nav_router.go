package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	cblog "github.com/charmbracelet/log"

	"github.com/sessionaut/sessionaut/pkg/config"
	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/theme"
)

// commandAliases maps every accepted command word to its canonical form
var commandAliases = map[string]string{
	"sessions": "sessions", "session": "sessions", "sess": "sessions", "s": "sessions",
	"folders": "folders", "folder": "folders", "vfolder": "folders", "f": "folders",
	"summary": "summary", "resources": "summary", "res": "summary",
	"logs": "logs", "log": "logs",
	"theme": "theme", "themes": "theme",
	"sort":   "sort",
	"export": "export", "csv": "export",
	"filter": "filter", "status": "filter",
	"clone": "clone",
	"invite": "invite", "share": "invite",
	"finished": "finished", "all": "finished",
	"help": "help", "h": "help",
	"quit": "quit", "q": "quit", "q!": "quit", "exit": "quit",
}

// executeCommand runs a colon command entered in command mode
func (m *Model) executeCommand(raw string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return m, nil
	}
	word := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	canonical, ok := commandAliases[word]
	if !ok {
		return m, statusWarn("Unknown command: " + word)
	}

	cblog.With("component", "command").Debug("Executing command", "command", canonical, "arg", arg)

	switch canonical {
	case "sessions":
		return m, setView(model.ViewSessions)
	case "folders":
		return m, setView(model.ViewFolders)
	case "summary":
		return m, setView(model.ViewSummary)

	case "logs":
		if arg != "" {
			if sess := m.sessionByName(arg); sess != nil {
				m.state.SaveNavigationState()
				m.state.Navigation.View = model.ViewLogs
				return m, m.loadSessionLogs(*sess)
			}
			return m, statusWarn("Unknown session: " + arg)
		}
		return m.handleOpenLogs()

	case "theme":
		return m.executeThemeCommand(arg)

	case "sort":
		return m.executeSortCommand(parts[1:])

	case "export":
		if arg == "logs" || arg == "html" {
			sess := m.selectedSession()
			if sess == nil {
				return m, statusWarn("Select a session to export its logs")
			}
			return m, m.exportSessionLogsHTML(*sess)
		}
		if m.state.Navigation.View != model.ViewSessions {
			return m, statusWarn("Export works from the sessions view")
		}
		return m, m.exportSessionsCSV()

	case "clone":
		folder := m.selectedFolder()
		if folder == nil {
			return m, statusWarn("Select a folder to clone")
		}
		if arg == "" {
			return m, statusWarn("Usage: clone <new-name>")
		}
		return m, m.cloneFolder(folder.Name, arg)

	case "invite":
		folder := m.selectedFolder()
		if folder == nil {
			return m, statusWarn("Select a folder to invite to")
		}
		if arg == "" {
			return m.handleInviteKey()
		}
		return m, m.inviteFolder(folder.Name, arg)

	case "filter":
		m.state.UI.ActiveFilter = strings.ToUpper(arg)
		m.state.Navigation.SelectedIdx = 0
		if arg == "" {
			return m, statusInfo("Status filter cleared")
		}
		return m, statusInfo("Filtering by status " + strings.ToUpper(arg))

	case "finished":
		m.state.UI.ShowFinished = !m.state.UI.ShowFinished
		m.clampCursor()
		if m.state.UI.ShowFinished {
			return m, tea.Batch(statusInfo("Showing finished sessions"), m.loadSessions())
		}
		return m, tea.Batch(statusInfo("Hiding finished sessions"), m.loadSessions())

	case "help":
		m.state.Mode = model.ModeHelp
		return m, nil

	case "quit":
		return m, tea.Quit
	}

	return m, nil
}

// executeThemeCommand switches the color theme, persisting the choice
func (m *Model) executeThemeCommand(name string) (tea.Model, tea.Cmd) {
	if name == "" {
		return m, statusInfo("Themes: " + strings.Join(theme.Names(), ", "))
	}

	if _, ok := theme.Get(name); !ok {
		return m, statusWarn("Unknown theme: " + name)
	}

	m.config.Appearance.Theme = name
	applyTheme(m.config)
	if err := config.SaveAppConfig(m.config); err != nil {
		cblog.With("component", "command").Warn("Could not persist theme", "err", err)
	}
	return m, statusInfo("Theme set to " + name)
}

// executeSortCommand updates the session sort order, persisting the choice
func (m *Model) executeSortCommand(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, statusInfo(fmt.Sprintf("Sorting by %s %s; fields: name, status, created",
			m.sortConfig.Field, m.sortConfig.Direction))
	}

	field := strings.ToLower(args[0])
	if !model.IsValidSortField(field) {
		return m, statusWarn("Unknown sort field: " + field)
	}
	direction := string(m.sortConfig.Direction)
	if len(args) > 1 {
		direction = strings.ToLower(args[1])
		if !model.IsValidSortDirection(direction) {
			return m, statusWarn("Sort direction must be asc or desc")
		}
	}

	m.sortConfig = model.SortConfig{
		Field:     model.SortField(field),
		Direction: model.SortDirection(direction),
	}
	m.applySort()
	m.clampCursor()

	m.config.Sort.Field = field
	m.config.Sort.Direction = direction
	if err := config.SaveAppConfig(m.config); err != nil {
		cblog.With("component", "command").Warn("Could not persist sort order", "err", err)
	}
	return m, statusInfo(fmt.Sprintf("Sorting by %s %s", field, direction))
}

func statusInfo(text string) tea.Cmd {
	return func() tea.Msg {
		return model.StatusChangeMsg{Message: text, Level: "info"}
	}
}

func statusWarn(text string) tea.Cmd {
	return func() tea.Msg {
		return model.StatusChangeMsg{Message: text, Level: "warn"}
	}
}
