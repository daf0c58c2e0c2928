package sort

import (
	"strings"

	"github.com/sessionaut/sessionaut/pkg/model"
)

// SortSessions sorts sessions according to the provided configuration using
// insertion sort. Status sorting uses semantic ordering (active work first
// when ascending) and falls back to name for stability.
func SortSessions(sessions []model.Session, config model.SortConfig) {
	if len(sessions) <= 1 {
		return
	}

	less := comparator(config)

	// Insertion sort - efficient for small lists and maintains stability
	for i := 1; i < len(sessions); i++ {
		j := i
		for j > 0 && less(sessions[j], sessions[j-1]) {
			sessions[j-1], sessions[j] = sessions[j], sessions[j-1]
			j--
		}
	}
}

// comparator returns a less function based on sort config
func comparator(config model.SortConfig) func(a, b model.Session) bool {
	return func(a, b model.Session) bool {
		cmp := compareByField(a, b, config.Field)

		// If primary field is equal, fall back to name for stability
		if cmp == 0 && config.Field != model.SortFieldName {
			cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}

		// Apply direction
		if config.Direction == model.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
}

// compareByField compares two sessions by the specified field.
// Returns negative if a < b, positive if a > b, zero if equal
func compareByField(a, b model.Session, field model.SortField) int {
	switch field {
	case model.SortFieldStatus:
		return model.StatusRank(a.Status) - model.StatusRank(b.Status)
	case model.SortFieldCreated:
		return compareCreated(a, b)
	default: // name
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

// compareCreated orders sessions by creation time. Sessions without a
// creation timestamp sort last.
func compareCreated(a, b model.Session) int {
	switch {
	case a.CreatedAt == nil && b.CreatedAt == nil:
		return 0
	case a.CreatedAt == nil:
		return 1
	case b.CreatedAt == nil:
		return -1
	case a.CreatedAt.Before(*b.CreatedAt):
		return -1
	case a.CreatedAt.After(*b.CreatedAt):
		return 1
	}
	return 0
}

// SortFolders sorts virtual folders by name, case-insensitively
func SortFolders(folders []model.VFolder, direction model.SortDirection) {
	if len(folders) <= 1 {
		return
	}
	less := func(a, b model.VFolder) bool {
		cmp := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		if direction == model.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
	for i := 1; i < len(folders); i++ {
		j := i
		for j > 0 && less(folders[j], folders[j-1]) {
			folders[j-1], folders[j] = folders[j], folders[j-1]
			j--
		}
	}
}
