package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/flowstorm/internal/graph"
)

// Entry pairs a performed operation with its precomputed inverse. It is the
// atomic unit of history: undo hands the caller Inverse, redo hands back
// Operation. Entries are immutable once created; coalescing builds a
// replacement entry rather than editing one in place.
type Entry struct {
	ID        string     `json:"id"`
	Operation *Operation `json:"operation"`
	Inverse   *Operation `json:"inverse"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewEntry creates an entry from an already-paired operation and inverse.
// Prefer the typed constructors below, which build the pairing correctly.
func NewEntry(op, inverse *Operation) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		Operation: op,
		Inverse:   inverse,
		CreatedAt: time.Now(),
	}
}

// NewAddBlockEntry records the creation of a block. The inverse is a
// remove-block carrying the just-created block's snapshot.
func NewAddBlockEntry(documentID, actorID string, block graph.Block) *Entry {
	op := newOperation(OpAddBlock, documentID, actorID)
	op.Add = &AddPayload{EntityID: block.ID}

	snap := block.Clone()
	inv := newOperation(OpRemoveBlock, documentID, actorID)
	inv.Remove = &RemovePayload{EntityID: block.ID, Block: &snap}

	return NewEntry(op, inv)
}

// NewRemoveBlockEntry records the removal of a block. The payload snapshots
// the block, the edges that were attached to it, and optionally sibling
// blocks affected by the removal (best-effort context).
func NewRemoveBlockEntry(documentID, actorID string, block graph.Block, attached []graph.Edge, siblings []graph.Block) *Entry {
	snap := block.Clone()
	op := newOperation(OpRemoveBlock, documentID, actorID)
	op.Remove = &RemovePayload{
		EntityID:      block.ID,
		Block:         &snap,
		AttachedEdges: attached,
		Siblings:      siblings,
	}

	inv := newOperation(OpAddBlock, documentID, actorID)
	inv.Add = &AddPayload{EntityID: block.ID}

	return NewEntry(op, inv)
}

// NewAddEdgeEntry records the creation of an edge.
func NewAddEdgeEntry(documentID, actorID string, edge graph.Edge) *Entry {
	op := newOperation(OpAddEdge, documentID, actorID)
	op.Add = &AddPayload{EntityID: edge.ID}

	snap := edge
	inv := newOperation(OpRemoveEdge, documentID, actorID)
	inv.Remove = &RemovePayload{EntityID: edge.ID, Edge: &snap}

	return NewEntry(op, inv)
}

// NewRemoveEdgeEntry records the removal of an edge.
func NewRemoveEdgeEntry(documentID, actorID string, edge graph.Edge) *Entry {
	snap := edge
	op := newOperation(OpRemoveEdge, documentID, actorID)
	op.Remove = &RemovePayload{EntityID: edge.ID, Edge: &snap}

	inv := newOperation(OpAddEdge, documentID, actorID)
	inv.Add = &AddPayload{EntityID: edge.ID}

	return NewEntry(op, inv)
}

// NewAddSubflowEntry records the creation of a subflow.
func NewAddSubflowEntry(documentID, actorID string, subflow graph.Subflow) *Entry {
	op := newOperation(OpAddSubflow, documentID, actorID)
	op.Add = &AddPayload{EntityID: subflow.ID}

	snap := subflow.Clone()
	inv := newOperation(OpRemoveSubflow, documentID, actorID)
	inv.Remove = &RemovePayload{EntityID: subflow.ID, Subflow: &snap}

	return NewEntry(op, inv)
}

// NewRemoveSubflowEntry records the removal of a subflow.
func NewRemoveSubflowEntry(documentID, actorID string, subflow graph.Subflow) *Entry {
	snap := subflow.Clone()
	op := newOperation(OpRemoveSubflow, documentID, actorID)
	op.Remove = &RemovePayload{EntityID: subflow.ID, Subflow: &snap}

	inv := newOperation(OpAddSubflow, documentID, actorID)
	inv.Add = &AddPayload{EntityID: subflow.ID}

	return NewEntry(op, inv)
}

// NewMoveBlockEntry records a block move, including a parent change when
// the drag crossed a container boundary. Consecutive move entries on the
// same block coalesce in the store.
func NewMoveBlockEntry(documentID, actorID, blockID string, before, after graph.Position, beforeParent, afterParent string) *Entry {
	payload := MovePayload{
		EntityID:     blockID,
		Before:       before,
		After:        after,
		BeforeParent: beforeParent,
		AfterParent:  afterParent,
	}

	op := newOperation(OpMoveBlock, documentID, actorID)
	op.Move = &payload

	invPayload := payload.Invert()
	inv := newOperation(OpMoveBlock, documentID, actorID)
	inv.Move = &invPayload

	return NewEntry(op, inv)
}

// NewMoveSubflowEntry records a subflow move.
func NewMoveSubflowEntry(documentID, actorID, subflowID string, before, after graph.Position) *Entry {
	payload := MovePayload{EntityID: subflowID, Before: before, After: after}

	op := newOperation(OpMoveSubflow, documentID, actorID)
	op.Move = &payload

	invPayload := payload.Invert()
	inv := newOperation(OpMoveSubflow, documentID, actorID)
	inv.Move = &invPayload

	return NewEntry(op, inv)
}

// NewDuplicateBlockEntry records duplicating sourceID into the given new
// block, with the auto-created connecting edge if the editor made one. The
// inverse removes the copy (and that edge).
func NewDuplicateBlockEntry(documentID, actorID, sourceID string, block graph.Block, edge *graph.Edge) *Entry {
	op := newOperation(OpDuplicateBlock, documentID, actorID)
	op.Duplicate = &DuplicatePayload{
		SourceID: sourceID,
		NewID:    block.ID,
		Block:    block.Clone(),
		Edge:     edge,
	}

	snap := block.Clone()
	inv := newOperation(OpRemoveBlock, documentID, actorID)
	inv.Remove = &RemovePayload{EntityID: block.ID, Block: &snap}
	if edge != nil {
		inv.Remove.AttachedEdges = []graph.Edge{*edge}
	}

	return NewEntry(op, inv)
}

// NewUpdateParentEntry records moving a block into a different container,
// with the edges whose validity depends on the reparenting.
func NewUpdateParentEntry(documentID, actorID, blockID string, oldParent, newParent string, oldPos, newPos graph.Position, affected []graph.Edge) *Entry {
	payload := ReparentPayload{
		EntityID:      blockID,
		OldParentID:   oldParent,
		NewParentID:   newParent,
		OldPosition:   oldPos,
		NewPosition:   newPos,
		AffectedEdges: affected,
	}

	op := newOperation(OpUpdateParent, documentID, actorID)
	op.Reparent = &payload

	invPayload := payload.Invert()
	inv := newOperation(OpUpdateParent, documentID, actorID)
	inv.Reparent = &invPayload

	return NewEntry(op, inv)
}
