//go:build !unix

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// attachSession is unavailable without PTY support
func (m *Model) attachSession(session model.Session) tea.Cmd {
	return func() tea.Msg {
		return model.AttachDoneMsg{
			SessionID: session.Name,
			Err:       fmt.Errorf("interactive attach is not supported on this platform"),
		}
	}
}
