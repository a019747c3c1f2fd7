package history

import (
	"sync"
)

// DefaultCapacity is the undo/redo depth used when none is configured.
const DefaultCapacity = 15

// Sizes reports the current stack depths for a (document, actor) pair.
type Sizes struct {
	Undo int `json:"undoSize"`
	Redo int `json:"redoSize"`
}

// stackPair holds one (document, actor) pair's history, most recent at the
// tail of each slice.
type stackPair struct {
	undo []*Entry
	redo []*Entry
}

func (p *stackPair) empty() bool {
	return len(p.undo) == 0 && len(p.redo) == 0
}

// Store owns the undo/redo stacks for every (document, actor) pair. A single
// capacity bounds all stacks; exceeding it evicts oldest-first. Actors on a
// shared document are fully isolated: each pair owns independent stacks.
type Store struct {
	mu       sync.Mutex
	stacks   map[string]*stackPair
	capacity int
}

// NewStore creates a history store with the given capacity per stack.
// Non-positive capacity falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		stacks:   make(map[string]*stackPair),
		capacity: capacity,
	}
}

// historyKey resolves the stack pair key for a (document, actor) pair.
func historyKey(documentID, actorID string) string {
	return documentID + "/" + actorID
}

func (s *Store) pair(documentID, actorID string) *stackPair {
	key := historyKey(documentID, actorID)
	p, ok := s.stacks[key]
	if !ok {
		p = &stackPair{}
		s.stacks[key] = p
	}
	return p
}

// Push records a new entry on the undo stack for the pair and discards the
// redo stack: a fresh action invalidates the previously-undone future.
//
// Block moves get two special cases. A move whose before and after state are
// identical is discarded outright. A move on the same block as the current
// undo tail merges into that tail instead of appending, keeping the tail's
// original before-state and taking the incoming after-state, so a continuous
// drag gesture stays one undoable step.
func (s *Store) Push(documentID, actorID string, entry *Entry) {
	if entry == nil || entry.Operation == nil || entry.Inverse == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pair(documentID, actorID)
	p.redo = nil

	if entry.Operation.Type == OpMoveBlock && entry.Operation.Move != nil {
		if entry.Operation.Move.IsNoop() {
			if p.empty() {
				delete(s.stacks, historyKey(documentID, actorID))
			}
			return
		}
		if merged := coalesceMove(p, entry); merged {
			return
		}
	}

	p.undo = append(p.undo, entry)
	p.undo = truncateOldest(p.undo, s.capacity)
}

// coalesceMove merges a move-block entry into the undo tail when the tail is
// a move of the same block. Returns true if the entry was absorbed.
func coalesceMove(p *stackPair, incoming *Entry) bool {
	if len(p.undo) == 0 {
		return false
	}
	tail := p.undo[len(p.undo)-1]
	if tail.Operation == nil || tail.Operation.Type != OpMoveBlock || tail.Operation.Move == nil {
		return false
	}
	if tail.Operation.Move.EntityID != incoming.Operation.Move.EntityID {
		return false
	}

	op := tail.Operation.Clone()
	op.Move.After = incoming.Operation.Move.After
	op.Move.AfterParent = incoming.Operation.Move.AfterParent

	invPayload := op.Move.Invert()
	inv := tail.Inverse.Clone()
	inv.Move = &invPayload

	p.undo[len(p.undo)-1] = &Entry{
		ID:        tail.ID,
		Operation: op,
		Inverse:   inv,
		CreatedAt: tail.CreatedAt,
	}
	return true
}

// truncateOldest drops entries from the head until the stack fits capacity.
func truncateOldest(stack []*Entry, capacity int) []*Entry {
	if len(stack) <= capacity {
		return stack
	}
	return stack[len(stack)-capacity:]
}

// Undo pops the most recent undo entry for the pair, moves it to the redo
// stack, and returns it. The caller is responsible for applying
// entry.Inverse to the live graph. Returns false when there is nothing to
// undo.
func (s *Store) Undo(documentID, actorID string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.stacks[historyKey(documentID, actorID)]
	if !ok || len(p.undo) == 0 {
		return nil, false
	}

	entry := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	p.redo = append(p.redo, entry)
	p.redo = truncateOldest(p.redo, s.capacity)
	return entry, true
}

// Redo pops the most recent redo entry for the pair, moves it back to the
// undo stack, and returns it. The caller is responsible for applying
// entry.Operation to the live graph. Returns false when there is nothing to
// redo.
func (s *Store) Redo(documentID, actorID string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.stacks[historyKey(documentID, actorID)]
	if !ok || len(p.redo) == 0 {
		return nil, false
	}

	entry := p.redo[len(p.redo)-1]
	p.redo = p.redo[:len(p.redo)-1]
	p.undo = append(p.undo, entry)
	p.undo = truncateOldest(p.undo, s.capacity)
	return entry, true
}

// Clear discards both stacks for the pair, e.g. on document close.
func (s *Store) Clear(documentID, actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.stacks, historyKey(documentID, actorID))
}

// ClearRedo discards only the redo stack for the pair. Push already does
// this; the method exists for explicit external invalidation.
func (s *Store) ClearRedo(documentID, actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.stacks[historyKey(documentID, actorID)]
	if !ok {
		return
	}
	p.redo = nil
	if p.empty() {
		delete(s.stacks, historyKey(documentID, actorID))
	}
}

// StackSizes reports the current stack depths for the pair. An unknown pair
// reports zero sizes.
func (s *Store) StackSizes(documentID, actorID string) Sizes {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.stacks[historyKey(documentID, actorID)]
	if !ok {
		return Sizes{}
	}
	return Sizes{Undo: len(p.undo), Redo: len(p.redo)}
}

// Capacity returns the shared per-stack capacity.
func (s *Store) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// SetCapacity updates the shared capacity and immediately truncates every
// stack, oldest-first, to the new bound. Non-positive values fall back to
// DefaultCapacity.
func (s *Store) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.capacity = capacity
	for _, p := range s.stacks {
		p.undo = truncateOldest(p.undo, capacity)
		p.redo = truncateOldest(p.redo, capacity)
	}
}
