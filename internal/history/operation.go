package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/flowstorm/internal/graph"
)

// OperationType identifies the kind of mutation an operation describes.
// The set is closed: every type has an inverse pairing and a pruning rule.
type OperationType string

const (
	// OpAddBlock records the creation of a block.
	OpAddBlock OperationType = "add-block"
	// OpRemoveBlock records the removal of a block and snapshots its state.
	OpRemoveBlock OperationType = "remove-block"
	// OpAddEdge records the creation of an edge.
	OpAddEdge OperationType = "add-edge"
	// OpRemoveEdge records the removal of an edge and snapshots it.
	OpRemoveEdge OperationType = "remove-edge"
	// OpAddSubflow records the creation of a subflow container.
	OpAddSubflow OperationType = "add-subflow"
	// OpRemoveSubflow records the removal of a subflow and snapshots it.
	OpRemoveSubflow OperationType = "remove-subflow"
	// OpMoveBlock records a block position (and parent) change.
	OpMoveBlock OperationType = "move-block"
	// OpMoveSubflow records a subflow position change.
	OpMoveSubflow OperationType = "move-subflow"
	// OpDuplicateBlock records the duplication of a block.
	OpDuplicateBlock OperationType = "duplicate-block"
	// OpUpdateParent records moving a block into a different container.
	OpUpdateParent OperationType = "update-parent"
)

// String returns the wire tag of the operation type.
func (t OperationType) String() string { return string(t) }

// AddPayload carries the id of a created entity. Recreating the entity on
// replay uses the snapshot held by the paired remove operation.
type AddPayload struct {
	EntityID string `json:"entityId"`
}

// RemovePayload carries everything needed to reconstruct a removed entity.
// Exactly one of Block, Edge, or Subflow is set, matching the operation
// type. AttachedEdges holds edges that were connected to a removed block;
// Siblings is best-effort context about other entities affected by the
// removal and is never required for correctness.
type RemovePayload struct {
	EntityID      string         `json:"entityId"`
	Block         *graph.Block   `json:"block,omitempty"`
	Edge          *graph.Edge    `json:"edge,omitempty"`
	Subflow       *graph.Subflow `json:"subflow,omitempty"`
	AttachedEdges []graph.Edge   `json:"attachedEdges,omitempty"`
	Siblings      []graph.Block  `json:"siblings,omitempty"`
}

// MovePayload carries a position change. Parent ids apply to block moves
// only; subflow moves leave them empty.
type MovePayload struct {
	EntityID     string         `json:"entityId"`
	Before       graph.Position `json:"before"`
	After        graph.Position `json:"after"`
	BeforeParent string         `json:"beforeParent,omitempty"`
	AfterParent  string         `json:"afterParent,omitempty"`
}

// IsNoop reports whether the move changes nothing: identical position and
// identical parent.
func (p MovePayload) IsNoop() bool {
	return p.Before.Equal(p.After) && p.BeforeParent == p.AfterParent
}

// Invert returns the payload describing the opposite move.
func (p MovePayload) Invert() MovePayload {
	return MovePayload{
		EntityID:     p.EntityID,
		Before:       p.After,
		After:        p.Before,
		BeforeParent: p.AfterParent,
		AfterParent:  p.BeforeParent,
	}
}

// DuplicatePayload carries the source block, the created copy, and the
// connecting edge the editor auto-creates between them, if any.
type DuplicatePayload struct {
	SourceID string      `json:"sourceId"`
	NewID    string      `json:"newId"`
	Block    graph.Block `json:"block"`
	Edge     *graph.Edge `json:"edge,omitempty"`
}

// ReparentPayload carries a container change: old and new parent, old and
// new position, and any edges whose validity depends on the reparenting.
type ReparentPayload struct {
	EntityID      string         `json:"entityId"`
	OldParentID   string         `json:"oldParentId,omitempty"`
	NewParentID   string         `json:"newParentId,omitempty"`
	OldPosition   graph.Position `json:"oldPosition"`
	NewPosition   graph.Position `json:"newPosition"`
	AffectedEdges []graph.Edge   `json:"affectedEdges,omitempty"`
}

// Invert returns the payload describing the opposite reparenting.
func (p ReparentPayload) Invert() ReparentPayload {
	inv := p
	inv.OldParentID, inv.NewParentID = p.NewParentID, p.OldParentID
	inv.OldPosition, inv.NewPosition = p.NewPosition, p.OldPosition
	return inv
}

// Operation describes one reversible mutation to a document. Exactly one
// payload field is set, selected by Type.
type Operation struct {
	ID         string        `json:"id"`
	Type       OperationType `json:"type"`
	Timestamp  time.Time     `json:"timestamp"`
	DocumentID string        `json:"documentId"`
	ActorID    string        `json:"actorId"`

	Add       *AddPayload       `json:"add,omitempty"`
	Remove    *RemovePayload    `json:"remove,omitempty"`
	Move      *MovePayload      `json:"move,omitempty"`
	Duplicate *DuplicatePayload `json:"duplicate,omitempty"`
	Reparent  *ReparentPayload  `json:"reparent,omitempty"`
}

func newOperation(t OperationType, documentID, actorID string) *Operation {
	return &Operation{
		ID:         uuid.New().String(),
		Type:       t,
		Timestamp:  time.Now(),
		DocumentID: documentID,
		ActorID:    actorID,
	}
}

// TargetID returns the entity id the operation primarily references: the
// created or removed entity, the moved or reparented block, or the source
// block of a duplication.
func (op *Operation) TargetID() string {
	switch {
	case op.Add != nil:
		return op.Add.EntityID
	case op.Remove != nil:
		return op.Remove.EntityID
	case op.Move != nil:
		return op.Move.EntityID
	case op.Duplicate != nil:
		return op.Duplicate.SourceID
	case op.Reparent != nil:
		return op.Reparent.EntityID
	}
	return ""
}

// Clone creates a deep copy of the operation.
func (op *Operation) Clone() *Operation {
	clone := *op
	if op.Add != nil {
		add := *op.Add
		clone.Add = &add
	}
	if op.Remove != nil {
		clone.Remove = op.Remove.clone()
	}
	if op.Move != nil {
		mv := *op.Move
		clone.Move = &mv
	}
	if op.Duplicate != nil {
		dup := *op.Duplicate
		dup.Block = op.Duplicate.Block.Clone()
		if op.Duplicate.Edge != nil {
			edge := *op.Duplicate.Edge
			dup.Edge = &edge
		}
		clone.Duplicate = &dup
	}
	if op.Reparent != nil {
		rp := *op.Reparent
		if op.Reparent.AffectedEdges != nil {
			rp.AffectedEdges = make([]graph.Edge, len(op.Reparent.AffectedEdges))
			copy(rp.AffectedEdges, op.Reparent.AffectedEdges)
		}
		clone.Reparent = &rp
	}
	return &clone
}

func (p *RemovePayload) clone() *RemovePayload {
	clone := *p
	if p.Block != nil {
		b := p.Block.Clone()
		clone.Block = &b
	}
	if p.Edge != nil {
		e := *p.Edge
		clone.Edge = &e
	}
	if p.Subflow != nil {
		sf := p.Subflow.Clone()
		clone.Subflow = &sf
	}
	if p.AttachedEdges != nil {
		clone.AttachedEdges = make([]graph.Edge, len(p.AttachedEdges))
		copy(clone.AttachedEdges, p.AttachedEdges)
	}
	if p.Siblings != nil {
		clone.Siblings = make([]graph.Block, len(p.Siblings))
		for i, b := range p.Siblings {
			clone.Siblings[i] = b.Clone()
		}
	}
	return &clone
}
