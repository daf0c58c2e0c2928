package main

import (
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/sessionaut/sessionaut/pkg/api"
	"github.com/sessionaut/sessionaut/pkg/config"
	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/notify"
)

// NewModel creates the top-level Bubble Tea model wired to a cluster
func NewModel(server *model.Server, appConfig *config.AppConfig) *Model {
	state := model.NewAppState()
	state.Mode = model.ModeLoading
	state.Server = server
	state.APIVersion = server.APIVersion

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(currentPalette.Accent)

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 200
	searchInput.SetWidth(50)

	commandInput := textinput.New()
	commandInput.Placeholder = "Enter command..."
	commandInput.CharLimit = 200
	commandInput.SetWidth(50)

	renameInput := textinput.New()
	renameInput.Placeholder = "New session name"
	renameInput.CharLimit = 64
	renameInput.SetWidth(40)

	folderInput := textinput.New()
	folderInput.Placeholder = "Folder name"
	folderInput.CharLimit = 64
	folderInput.SetWidth(40)

	m := &Model{
		state:           state,
		config:          appConfig,
		sessionService:  api.NewSessionService(server),
		folderService:   api.NewFolderService(server),
		resourceService: api.NewResourceService(server),
		announceService: api.NewAnnouncementService(server),
		sortConfig:      sortConfigFromApp(appConfig),
		spinner:         s,
		searchInput:     searchInput,
		commandInput:    commandInput,
		renameInput:     renameInput,
		folderInput:     folderInput,
	}
	m.notifier = notify.NewService(notify.Config{
		Handler: m.statusHandler(),
	})
	return m
}

// SetProgram stores the program reference needed for terminal hand-off
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// statusHandler feeds notifications into the status bar. The handler runs
// on caller goroutines, so it only copies the message; rendering picks it
// up on the next frame.
func (m *Model) statusHandler() notify.ChangeHandler {
	return func(msg notify.Message) {
		m.statusMessage = msg
	}
}

// sortConfigFromApp translates persisted sort preferences, falling back to
// the default ordering for unknown values
func sortConfigFromApp(appConfig *config.AppConfig) model.SortConfig {
	cfg := model.DefaultSortConfig()
	if appConfig == nil {
		return cfg
	}
	if model.IsValidSortField(appConfig.Sort.Field) {
		cfg.Field = model.SortField(appConfig.Sort.Field)
	}
	if model.IsValidSortDirection(appConfig.Sort.Direction) {
		cfg.Direction = model.SortDirection(appConfig.Sort.Direction)
	}
	return cfg
}
