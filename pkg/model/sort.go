package model

// SortField represents the field to sort sessions by
type SortField string

const (
	SortFieldName    SortField = "name"
	SortFieldStatus  SortField = "status"
	SortFieldCreated SortField = "created"
)

// SortDirection represents the sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig holds the complete sort configuration
type SortConfig struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortConfig returns the default sort configuration
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field:     SortFieldCreated,
		Direction: SortDesc,
	}
}

// ValidSortFields returns all valid sort field values
func ValidSortFields() []SortField {
	return []SortField{SortFieldName, SortFieldStatus, SortFieldCreated}
}

// IsValidSortField checks if a string is a valid sort field
func IsValidSortField(s string) bool {
	for _, f := range ValidSortFields() {
		if string(f) == s {
			return true
		}
	}
	return false
}

// IsValidSortDirection checks if a string is a valid sort direction
func IsValidSortDirection(s string) bool {
	return s == string(SortAsc) || s == string(SortDesc)
}

// Indicator returns the arrow character for the sort direction
func (d SortDirection) Indicator() string {
	if d == SortDesc {
		return "▼"
	}
	return "▲"
}

// SortKey holds the values used for semantic ordering.
type SortKey struct {
	Status string
	Name   string
}

// statusRank orders statuses so active work sorts above finished work
var statusRank = map[SessionStatus]int{
	StatusRunning:         0,
	StatusRunningDegraded: 1,
	StatusRestarting:      2,
	StatusPreparing:       3,
	StatusPulling:         4,
	StatusScheduled:       5,
	StatusPending:         6,
	StatusTerminating:     7,
	StatusError:           8,
	StatusCancelled:       9,
	StatusTerminated:      10,
}

// StatusRank returns the ordering rank for a status; unknown statuses
// sort last
func StatusRank(s SessionStatus) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank)
}
