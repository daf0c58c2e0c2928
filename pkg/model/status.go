package model

// StatusTable is an explicit lookup table keyed by session status with a
// default for unknown keys. It replaces ad-hoc fallback maps so every
// access spells out what happens on a miss.
type StatusTable[V any] struct {
	entries  map[SessionStatus]V
	fallback V
}

// NewStatusTable builds a table from entries and a fallback value
func NewStatusTable[V any](entries map[SessionStatus]V, fallback V) StatusTable[V] {
	return StatusTable[V]{entries: entries, fallback: fallback}
}

// GetOr returns the value for key, or def when the key is absent
func (t StatusTable[V]) GetOr(key SessionStatus, def V) V {
	if v, ok := t.entries[key]; ok {
		return v
	}
	return def
}

// Get returns the value for key, or the table's fallback
func (t StatusTable[V]) Get(key SessionStatus) V {
	return t.GetOr(key, t.fallback)
}

// StatusColors maps each session status to a terminal color. Hex values
// follow the lipgloss convention and degrade automatically on terminals
// with smaller palettes.
var StatusColors = NewStatusTable(map[SessionStatus]string{
	StatusPending:         "#e0b341", // amber
	StatusScheduled:       "#e0b341",
	StatusPulling:         "#11abc5", // cyan
	StatusPreparing:       "#11abc5",
	StatusRunning:         "#58d68d", // green
	StatusRestarting:      "#e0b341",
	StatusRunningDegraded: "#e67e22", // orange
	StatusTerminating:     "#e0b341",
	StatusTerminated:      "#a0a0a0", // gray
	StatusError:           "#e74c3c", // red
	StatusCancelled:       "#a0a0a0",
}, "#a0a0a0")

// StatusDescriptions maps each session status to the hint shown in the
// status column tooltip area.
var StatusDescriptions = NewStatusTable(map[SessionStatus]string{
	StatusPending:         "Waiting for resources to be allocated",
	StatusScheduled:       "Scheduled onto an agent, waiting to start",
	StatusPulling:         "Pulling the session image",
	StatusPreparing:       "Preparing the session environment",
	StatusRunning:         "Session is running",
	StatusRestarting:      "Session is restarting",
	StatusRunningDegraded: "Running with degraded kernels",
	StatusTerminating:     "Session is shutting down",
	StatusTerminated:      "Session has ended",
	StatusError:           "Session failed",
	StatusCancelled:       "Session was cancelled before starting",
}, "Unknown status")
