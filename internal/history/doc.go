// Package history provides the operation-log undo/redo engine for the
// workflow canvas editor.
//
// The engine records graph mutations; it never performs them. Key concepts:
//
// # Operations
//
// An Operation is a tagged description of one reversible mutation to the
// document: adding or removing a block, edge, or subflow, moving or
// duplicating a block, or reparenting. Destructive variants carry a full
// snapshot of the prior state so the log can be replayed without consulting
// the live graph.
//
// # Entries
//
// An Entry pairs an operation with its precomputed inverse. The entry
// constructors (NewAddBlockEntry, NewRemoveBlockEntry, ...) build correct
// pairs so callers cannot mismatch them. Entries are immutable once created.
//
// # The Store
//
// The Store keeps a bounded undo stack and a bounded redo stack for every
// (document, actor) pair:
//
//	store := history.NewStore(history.DefaultCapacity)
//
//	// Record a mutation the editor just performed
//	store.Push(docID, actorID, history.NewAddBlockEntry(docID, actorID, block))
//
//	// Undo: the caller applies entry.Inverse to the live graph
//	if entry, ok := store.Undo(docID, actorID); ok {
//	    apply(entry.Inverse)
//	}
//
//	// Redo: the caller applies entry.Operation
//	if entry, ok := store.Redo(docID, actorID); ok {
//	    apply(entry.Operation)
//	}
//
// Consecutive move-block entries on the same block coalesce into one
// undoable step, so a continuous drag gesture does not flood the stack.
//
// # Pruning
//
// The document can change under the engine: collaborators, programmatic
// edits, server reconciliation. PruneInvalidEntries drops entries whose
// next application no longer makes structural sense against a fresh
// graph.Snapshot, so undo/redo never hands the caller an operation that is
// known to be stale.
package history
