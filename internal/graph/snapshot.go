package graph

// Snapshot is a read-only view of the current document structure: every
// entity keyed by id. The history engine uses it only for existence checks;
// subflow containers appear in Blocks alongside ordinary blocks.
type Snapshot struct {
	Blocks map[string]Block `json:"blocks"`
	Edges  map[string]Edge  `json:"edges"`
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Blocks: make(map[string]Block),
		Edges:  make(map[string]Edge),
	}
}

// Has reports whether any entity with the given id exists in the document.
func (s *Snapshot) Has(id string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.Blocks[id]; ok {
		return true
	}
	_, ok := s.Edges[id]
	return ok
}

// HasBlock reports whether a block (or subflow container) with the given id
// exists in the document.
func (s *Snapshot) HasBlock(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Blocks[id]
	return ok
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	clone := &Snapshot{
		Blocks: make(map[string]Block, len(s.Blocks)),
		Edges:  make(map[string]Edge, len(s.Edges)),
	}
	for id, b := range s.Blocks {
		clone.Blocks[id] = b.Clone()
	}
	for id, e := range s.Edges {
		clone.Edges[id] = e
	}
	return clone
}
