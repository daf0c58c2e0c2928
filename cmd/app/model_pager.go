package main

import (
	stdcontext "context"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	cblog "github.com/charmbracelet/log"

	"github.com/sessionaut/sessionaut/pkg/ansihtml"
	"github.com/sessionaut/sessionaut/pkg/api"
	appcontext "github.com/sessionaut/sessionaut/pkg/context"
	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
	"github.com/sessionaut/sessionaut/pkg/model"
)

// pagerDoneMsg reports that the external pager exited
type pagerDoneMsg struct {
	Err error
}

// pauseRenderingMsg suspends UI updates while an external process owns the
// terminal; resumeRenderingMsg lifts the suspension
type pauseRenderingMsg struct{}
type resumeRenderingMsg struct{}

// openLogsPager hands the terminal to the configured pager to display a
// session's log tail. Logs keep their ANSI colors; less runs with -R so
// they render.
func (m *Model) openLogsPager(sessionID, logs string) tea.Cmd {
	m.lastLogSession = sessionID
	m.lastLogText = logs
	title := fmt.Sprintf("Logs: %s", sessionID)
	return m.openTextPager(title, logs)
}

// openTextPager runs the external pager over the given text, pausing the
// Bubble Tea renderer for the duration
func (m *Model) openTextPager(title, body string) tea.Cmd {
	program := m.program
	pagerCmd := m.config.GetPagerCommand()

	return func() tea.Msg {
		if program == nil {
			return pagerDoneMsg{Err: fmt.Errorf("program not initialized")}
		}

		program.Send(pauseRenderingMsg{})
		if err := program.ReleaseTerminal(); err != nil {
			program.Send(resumeRenderingMsg{})
			return pagerDoneMsg{Err: err}
		}

		err := runPager(pagerCmd, title, body)

		// Clear leftover pager output before the UI repaints
		fmt.Print("\x1b[2J\x1b[H")
		time.Sleep(150 * time.Millisecond)

		if rerr := program.RestoreTerminal(); rerr != nil && err == nil {
			err = rerr
		}
		program.Send(resumeRenderingMsg{})
		return pagerDoneMsg{Err: err}
	}
}

// runPager executes the pager command with the text on stdin, falling back
// to a plain print when no pager is usable
func runPager(pagerCmd, title, body string) error {
	parts := strings.Fields(pagerCmd)
	if len(parts) == 0 || !inPath(parts[0]) {
		cblog.With("component", "pager").Warn("Pager not found, printing instead", "pager", pagerCmd)
		fmt.Printf("--- %s ---\n%s\n", title, body)
		return nil
	}

	args := parts[1:]
	if filepath.Base(parts[0]) == "less" && !hasFlag(args, "-R") {
		// Keep ANSI colors in log output readable
		args = append(args, "-R")
	}

	cmd := exec.Command(parts[0], args...)
	cmd.Stdin = strings.NewReader(body)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

// inPath reports whether a binary is resolvable on PATH
func inPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// exportSessionLogsHTML fetches a session's logs and writes them as a
// standalone HTML page with the ANSI colors preserved
func (m *Model) exportSessionLogsHTML(session model.Session) tea.Cmd {
	service := m.sessionService
	dir := m.config.Export.Directory
	banner := m.state.UI.AnnouncementHTML

	return func() tea.Msg {
		ctx, cancel := appcontext.WithTimeout(stdcontext.Background(), appcontext.OpLogs)
		defer cancel()

		logs, err := service.Logs(ctx, session.Name, api.LogsOptions{
			OwnerAccessKey: session.AccessKey,
		})
		if err != nil {
			return model.ExportDoneMsg{
				Err: apperrors.ConvertError(err, apperrors.ErrorSession, "LOGS_FAILED"),
			}
		}

		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.ExportDoneMsg{Err: err}
		}
		path := filepath.Join(dir, fmt.Sprintf("logs-%s-%s.html",
			session.Name, time.Now().Format("20060102-150405")))

		if err := os.WriteFile(path, []byte(renderLogsHTML(session.Name, logs, banner)), 0o644); err != nil {
			return model.ExportDoneMsg{Err: err}
		}
		return model.ExportDoneMsg{Path: path}
	}
}

// renderLogsHTML wraps converted log output in a minimal dark page.
// banner is pre-sanitized announcement HTML shown above the logs, or "".
func renderLogsHTML(sessionName, logs, banner string) string {
	converter := ansihtml.New()
	body := converter.ToHTML(logs) + converter.Flush()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Logs: %s</title>\n", html.EscapeString(sessionName))
	b.WriteString("<style>body{background:#1a1b26;color:#c0caf5;font-family:monospace;white-space:pre-wrap;padding:1em}")
	b.WriteString(".announcement{border:1px solid #3b4261;padding:0.5em 1em;margin-bottom:1em;white-space:normal}</style>\n")
	b.WriteString("</head>\n<body>")
	if banner != "" {
		b.WriteString("<div class=\"announcement\">")
		b.WriteString(banner)
		b.WriteString("</div>")
	}
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
