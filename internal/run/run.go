// Package run tracks per-run completion state, keyed by item id.
//
// Run state is dependency-agnostic by design: nothing here inspects
// dependsOn. "What is done" stays separate from "what is allowed", which is
// the resolver's job.
package run

// State maps item id -> completed. Absent and false are equivalent; true
// entries are removed on toggle rather than set false, as a representation
// optimization.
type State struct {
	done map[string]bool
}

func NewState() *State {
	return &State{done: map[string]bool{}}
}

// FromSnapshot restores state from a persisted run snapshot. False entries
// are dropped on the way in.
func FromSnapshot(snap map[string]bool) *State {
	s := NewState()
	for id, v := range snap {
		if v {
			s.done[id] = true
		}
	}
	return s
}

// Completed reports whether the item is marked done.
func (s *State) Completed(id string) bool { return s.done[id] }

// Toggle flips completion for the item.
func (s *State) Toggle(id string) {
	if s.done[id] {
		delete(s.done, id)
		return
	}
	s.done[id] = true
}

// SetMany marks every id as completed. Callers must only pass ids drawn
// from the current actionable set; run state itself cannot tell actionable
// from blocked.
func (s *State) SetMany(ids []string) {
	for _, id := range ids {
		s.done[id] = true
	}
}

// Reset clears all entries. The checklist definition is untouched.
func (s *State) Reset() {
	s.done = map[string]bool{}
}

// CompletedCount returns the number of completed items, including entries
// orphaned by a later item deletion.
func (s *State) CompletedCount() int { return len(s.done) }

// Snapshot returns a copy suitable for persistence.
func (s *State) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.done))
	for id := range s.done {
		out[id] = true
	}
	return out
}
