package checklist

import "sort"

// State maps scenario ids to their completed flag. Missing ids are not completed.
type State map[string]bool

func (s State) Completed(id string) bool {
	return s[id]
}

// Toggle flips id and returns the new value.
func (s State) Toggle(id string) bool {
	s[id] = !s[id]
	return s[id]
}

func (s State) Clone() State {
	out := make(State, len(s))
	for id, done := range s {
		out[id] = done
	}
	return out
}

// CompletedIDs returns the ids marked completed, sorted.
func (s State) CompletedIDs() []string {
	ids := make([]string, 0, len(s))
	for id, done := range s {
		if done {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
