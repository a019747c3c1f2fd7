package history

import (
	"github.com/dshills/flowstorm/internal/graph"
)

// Applicable reports whether an operation's structural precondition still
// holds against the given document snapshot:
//
//   - remove operations need the target to exist (it can still be removed)
//   - add operations need the target absent (re-adding would not collide)
//   - block moves, reparents, and duplications need the referenced block
//
// Unrecognized types are applicable. Over-aggressive pruning silently
// destroys legitimate history, which is worse than keeping a stale entry
// the caller must still validate at apply time.
func Applicable(op *Operation, snap *graph.Snapshot) bool {
	if op == nil {
		return false
	}

	switch op.Type {
	case OpRemoveBlock, OpRemoveEdge, OpRemoveSubflow:
		return snap.Has(op.TargetID())
	case OpAddBlock, OpAddEdge, OpAddSubflow:
		return !snap.Has(op.TargetID())
	case OpMoveBlock, OpUpdateParent, OpDuplicateBlock:
		return snap.HasBlock(op.TargetID())
	case OpMoveSubflow:
		return true
	}
	return true
}

// PruneInvalidEntries drops history entries for the pair that can no longer
// apply against the current document: undo entries are judged by their
// inverse (what undo would apply), redo entries by their forward operation.
//
// The document drifts from recorded history whenever something outside this
// engine mutates it — collaborators, programmatic edits, server
// reconciliation. Pruning after such changes keeps a later undo/redo from
// handing the caller an operation whose preconditions are already gone. It
// is advisory maintenance, not a mutation barrier: a race between prune and
// apply remains possible, just much smaller.
func (s *Store) PruneInvalidEntries(documentID, actorID string, snap *graph.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := historyKey(documentID, actorID)
	p, ok := s.stacks[key]
	if !ok {
		return
	}

	p.undo = retainApplicable(p.undo, snap, func(e *Entry) *Operation { return e.Inverse })
	p.redo = retainApplicable(p.redo, snap, func(e *Entry) *Operation { return e.Operation })

	if p.empty() {
		delete(s.stacks, key)
	}
}

func retainApplicable(stack []*Entry, snap *graph.Snapshot, pick func(*Entry) *Operation) []*Entry {
	kept := stack[:0]
	for _, e := range stack {
		if Applicable(pick(e), snap) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
