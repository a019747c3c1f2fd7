package history

import "strings"

// StackState is the serializable form of one (document, actor) pair's
// stacks.
type StackState struct {
	Undo []*Entry `json:"undo"`
	Redo []*Entry `json:"redo"`
}

// State is the serializable form of an entire store, suitable for
// snapshotting to a durable store and reloading verbatim at startup.
// Persisted state is rehydration convenience, not a durability guarantee.
type State struct {
	StacksByKey map[string]StackState `json:"stacksByKey"`
	Capacity    int                   `json:"capacity"`
}

// ForDocument returns the subset of the state whose stacks belong to the
// given document, so collaborating services can snapshot documents
// independently. Capacity carries over.
func (s State) ForDocument(documentID string) State {
	sub := State{
		StacksByKey: make(map[string]StackState),
		Capacity:    s.Capacity,
	}
	prefix := documentID + "/"
	for key, st := range s.StacksByKey {
		if strings.HasPrefix(key, prefix) {
			sub.StacksByKey[key] = st
		}
	}
	return sub
}

// ExportState captures the store's current contents. Entries are immutable,
// so the snapshot shares them with the live store safely.
func (s *Store) ExportState() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		StacksByKey: make(map[string]StackState, len(s.stacks)),
		Capacity:    s.capacity,
	}
	for key, p := range s.stacks {
		st := StackState{
			Undo: make([]*Entry, len(p.undo)),
			Redo: make([]*Entry, len(p.redo)),
		}
		copy(st.Undo, p.undo)
		copy(st.Redo, p.redo)
		state.StacksByKey[key] = st
	}
	return state
}

// RestoreState replaces the store's contents with a previously exported
// state, truncating each stack to the restored capacity.
func (s *Store) RestoreState(state State) {
	capacity := state.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.capacity = capacity
	s.stacks = make(map[string]*stackPair, len(state.StacksByKey))
	for key, st := range state.StacksByKey {
		p := &stackPair{
			undo: truncateOldest(append([]*Entry(nil), st.Undo...), capacity),
			redo: truncateOldest(append([]*Entry(nil), st.Redo...), capacity),
		}
		if p.empty() {
			continue
		}
		s.stacks[key] = p
	}
}
