// Package graph defines the workflow canvas document shapes the history
// engine records and validates against.
//
// The engine never mutates a document. It stores full copies of blocks,
// edges, and subflows inside operation payloads so history replay is
// self-sufficient, and it reads a Snapshot only to answer "does this id
// still exist" during pruning.
package graph

// Position is a block or subflow location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Equal reports whether two positions are identical.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Block is a node on the canvas. Config holds block-type-specific settings
// the engine copies verbatim and never interprets.
type Block struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Name     string         `json:"name,omitempty"`
	ParentID string         `json:"parentId,omitempty"`
	Position Position       `json:"position"`
	Config   map[string]any `json:"config,omitempty"`
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	clone := b
	if b.Config != nil {
		clone.Config = make(map[string]any, len(b.Config))
		for k, v := range b.Config {
			clone.Config[k] = v
		}
	}
	return clone
}

// Edge is a directed connection between two blocks.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Subflow is a container grouping blocks into a nested flow.
type Subflow struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	ParentID string   `json:"parentId,omitempty"`
	Position Position `json:"position"`
	BlockIDs []string `json:"blockIds,omitempty"`
}

// Clone returns a deep copy of the subflow.
func (s Subflow) Clone() Subflow {
	clone := s
	if s.BlockIDs != nil {
		clone.BlockIDs = make([]string, len(s.BlockIDs))
		copy(clone.BlockIDs, s.BlockIDs)
	}
	return clone
}
