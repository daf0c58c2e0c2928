package model

import "sort"

// SessionIndex holds pre-computed indices over the session list for
// filter lookups. Rebuilt every time the Sessions slice is replaced.
type SessionIndex struct {
	// Pre-computed sorted unique dimension values
	Statuses      []string
	Types         []string
	ScalingGroups []string

	// Reverse mappings: dimension value -> session indices
	ByStatus       map[string][]int
	ByType         map[string][]int
	ByScalingGroup map[string][]int

	// Session ID -> index in the Sessions slice
	IDToIndex map[string]int

	// Total number of sessions when the index was built
	Total int
}

// BuildSessionIndex constructs a SessionIndex from the given slice.
// The caller must rebuild whenever the Sessions slice is replaced.
func BuildSessionIndex(sessions []Session) *SessionIndex {
	idx := &SessionIndex{
		ByStatus:       make(map[string][]int),
		ByType:         make(map[string][]int),
		ByScalingGroup: make(map[string][]int),
		IDToIndex:      make(map[string]int, len(sessions)),
		Total:          len(sessions),
	}

	statusSet := make(map[string]bool)
	typeSet := make(map[string]bool)
	sgSet := make(map[string]bool)

	for i, sess := range sessions {
		idx.IDToIndex[sess.ID] = i

		st := string(sess.Status)
		if st != "" {
			statusSet[st] = true
			idx.ByStatus[st] = append(idx.ByStatus[st], i)
		}

		if sess.Type != "" {
			typeSet[sess.Type] = true
			idx.ByType[sess.Type] = append(idx.ByType[sess.Type], i)
		}

		if sess.ScalingGroup != nil && *sess.ScalingGroup != "" {
			sg := *sess.ScalingGroup
			sgSet[sg] = true
			idx.ByScalingGroup[sg] = append(idx.ByScalingGroup[sg], i)
		}
	}

	idx.Statuses = sortedKeys(statusSet)
	idx.Types = sortedKeys(typeSet)
	idx.ScalingGroups = sortedKeys(sgSet)

	return idx
}

// sortedKeys extracts keys from a bool map and returns them sorted.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilteredSessions returns the sessions matching the status filter,
// preserving order. An empty filter keeps everything; finished sessions
// are dropped unless showFinished is set.
func (idx *SessionIndex) FilteredSessions(sessions []Session, statusFilter string, showFinished bool) []Session {
	if idx == nil {
		return sessions
	}

	result := make([]Session, 0, len(sessions))
	if statusFilter != "" {
		for _, i := range idx.ByStatus[statusFilter] {
			if i < len(sessions) {
				result = append(result, sessions[i])
			}
		}
		return result
	}

	for _, sess := range sessions {
		if !showFinished && !sess.Status.IsActive() {
			continue
		}
		result = append(result, sess)
	}
	return result
}

// Lookup returns the session with the given ID, or nil.
func (idx *SessionIndex) Lookup(sessions []Session, id string) *Session {
	if idx == nil {
		return nil
	}
	i, ok := idx.IDToIndex[id]
	if !ok || i >= len(sessions) {
		return nil
	}
	return &sessions[i]
}
