//go:build unix

package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	"unsafe"

	tea "github.com/charmbracelet/bubbletea/v2"
	cblog "github.com/charmbracelet/log"
	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// defaultAttachCommand is the command template used to open an interactive
// shell in a running session. %s is replaced by the session name.
const defaultAttachCommand = "backend.ai ssh %s"

// attachCommand resolves the attach command template, honoring the
// SESSIONAUT_ATTACH_COMMAND override
func attachCommand(sessionName string) []string {
	template := os.Getenv("SESSIONAUT_ATTACH_COMMAND")
	if template == "" {
		template = defaultAttachCommand
	}
	if strings.Contains(template, "%s") {
		template = fmt.Sprintf(template, sessionName)
	} else {
		template += " " + sessionName
	}
	return strings.Fields(template)
}

// attachSession runs the attach command in a PTY with a status bar on the
// bottom row identifying the session
func (m *Model) attachSession(session model.Session) tea.Cmd {
	return func() tea.Msg {
		if m.program != nil {
			m.program.Send(pauseRenderingMsg{})
			_ = m.program.ReleaseTerminal()
		}
		defer func() {
			// Clear screen and restore terminal to Bubble Tea
			fmt.Print("\x1b[2J\x1b[H")
			time.Sleep(150 * time.Millisecond)
			if m.program != nil {
				_ = m.program.RestoreTerminal()
				m.program.Send(resumeRenderingMsg{})
			}
		}()

		parts := attachCommand(session.Name)
		if len(parts) == 0 || !inPath(parts[0]) {
			cblog.With("component", "attach").Error("Attach command not found in PATH", "cmd", parts)
			return model.AttachDoneMsg{
				SessionID: session.Name,
				Err:       fmt.Errorf("attach command not found in PATH (set SESSIONAUT_ATTACH_COMMAND)"),
			}
		}

		cblog.With("component", "attach").Info("Attaching to session", "session", session.Name, "cmd", parts)

		rows, cols := getTerminalSize()
		if rows < 3 {
			rows = 24
		}
		if cols < 10 {
			cols = 80
		}

		// Reserve 1 row for the status bar at the bottom
		shellRows := rows - 1

		cmd := exec.Command(parts[0], parts[1:]...)
		cmd.Env = os.Environ()

		ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
			Rows: uint16(shellRows),
			Cols: uint16(cols),
		})
		if err != nil {
			cblog.With("component", "attach").Error("Failed to start PTY", "err", err)
			return model.AttachDoneMsg{SessionID: session.Name, Err: err}
		}
		defer ptmx.Close()

		// Shared state for current terminal size
		var sizeMu sync.Mutex
		currentRows := rows
		currentCols := cols

		// Handle window resize
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGWINCH)
		defer signal.Stop(sigCh)
		defer close(sigCh)

		go func() {
			for range sigCh {
				newRows, newCols := getTerminalSize()
				if newRows >= 3 && newCols >= 10 {
					sizeMu.Lock()
					currentRows = newRows
					currentCols = newCols
					sizeMu.Unlock()

					_ = pty.Setsize(ptmx, &pty.Winsize{
						Rows: uint16(newRows - 1),
						Cols: uint16(newCols),
					})
				}
			}
		}()

		// Raw mode so keystrokes pass through immediately
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			cblog.With("component", "attach").Error("Failed to set raw mode", "err", err)
			return model.AttachDoneMsg{SessionID: session.Name, Err: err}
		}
		defer restoreTerminal(int(os.Stdin.Fd()), oldState)

		// Clear screen and draw the initial status bar
		fmt.Print("\x1b[2J\x1b[H")
		os.Stdout.Write(buildStatusBarSequence(rows, cols, session))

		// Forward stdin to the PTY. Blocking stdin reads cannot be
		// interrupted without closing the descriptor; closing ptmx unblocks
		// the write side, the read side exits on the next keystroke.
		stdinDone := make(chan struct{})
		go func() {
			defer close(stdinDone)
			buf := make([]byte, 1024)
			for {
				n, err := os.Stdin.Read(buf)
				if err != nil {
					return
				}
				if n > 0 {
					if _, err = ptmx.Write(buf[:n]); err != nil {
						return
					}
				}
			}
		}()

		processOutputWithStatusBar(ptmx, &sizeMu, &currentRows, &currentCols, session)

		if err := cmd.Wait(); err != nil {
			cblog.With("component", "attach").Debug("Attach command exited", "err", err)
		}

		ptmx.Close()

		select {
		case <-stdinDone:
		case <-time.After(100 * time.Millisecond):
			// stdin read still blocked; it exits on the next keystroke
		}

		return model.AttachDoneMsg{SessionID: session.Name}
	}
}

// processOutputWithStatusBar reads shell output and re-injects the status
// bar at frame boundaries
func processOutputWithStatusBar(ptmx *os.File, sizeMu *sync.Mutex, rows, cols *int, session model.Session) {
	buf := make([]byte, 32*1024)

	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			data := buf[:n]

			sizeMu.Lock()
			r, c := *rows, *cols
			sizeMu.Unlock()

			os.Stdout.Write(injectStatusBarAtFrameBoundaries(data, r, c, session))
		}
		if err != nil {
			break
		}
	}
}

// injectStatusBarAtFrameBoundaries finds screen-clear and cursor-home
// sequences and re-draws the status bar around them so full-screen
// programs inside the session do not wipe it
func injectStatusBarAtFrameBoundaries(data []byte, rows, cols int, session model.Session) []byte {
	statusBar := buildStatusBarSequence(rows, cols, session)

	clearScreen := []byte("\x1b[2J")
	cursorHome := []byte("\x1b[H")
	cursorHomeExplicit := []byte("\x1b[;H")
	cursorHome11 := []byte("\x1b[1;1H")

	var result bytes.Buffer
	i := 0

	for i < len(data) {
		matched := false

		// Inject AFTER a clear screen, which wipes the bar
		if i+len(clearScreen) <= len(data) && bytes.Equal(data[i:i+len(clearScreen)], clearScreen) {
			result.Write(clearScreen)
			result.Write(statusBar)
			i += len(clearScreen)
			matched = true
		}

		// Inject BEFORE cursor-home patterns, the end of the previous frame
		if !matched {
			for _, pattern := range [][]byte{cursorHome11, cursorHomeExplicit, cursorHome} {
				if i+len(pattern) <= len(data) && bytes.Equal(data[i:i+len(pattern)], pattern) {
					result.Write(statusBar)
					result.Write(pattern)
					i += len(pattern)
					matched = true
					break
				}
			}
		}

		if !matched {
			result.WriteByte(data[i])
			i++
		}
	}

	return result.Bytes()
}

// buildStatusBarSequence draws the session identity bar on the last row
func buildStatusBarSequence(rows, cols int, session model.Session) []byte {
	var buf bytes.Buffer

	buf.WriteString("\x1b7") // save cursor
	buf.WriteString(fmt.Sprintf("\x1b[%d;1H", rows))
	buf.WriteString("\x1b[2K")

	left := fmt.Sprintf(" sessionaut » %s (%s)", session.Name, session.Image)
	right := "exit to return "

	padding := cols - len(left) - len(right)
	if padding < 1 {
		padding = 1
	}

	// Blue background, white text
	buf.WriteString("\x1b[48;5;31;97m")
	buf.WriteString(left)
	buf.WriteString(strings.Repeat(" ", padding))
	buf.WriteString(right)
	buf.WriteString("\x1b[0m")

	buf.WriteString("\x1b8") // restore cursor

	return buf.Bytes()
}

// getTerminalSize returns the current terminal rows and cols
func getTerminalSize() (int, int) {
	ws := struct {
		Row uint16
		Col uint16
		X   uint16
		Y   uint16
	}{}

	_, _, _ = syscall.Syscall(
		syscall.SYS_IOCTL,
		os.Stdout.Fd(),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(&ws)),
	)

	return int(ws.Row), int(ws.Col)
}

// restoreTerminal restores the terminal to a previous state
func restoreTerminal(fd int, state *term.State) {
	if state != nil {
		_ = term.Restore(fd, state)
	}
}
