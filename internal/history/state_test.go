package history

import (
	"errors"
	"testing"

	"github.com/dshills/flowstorm/internal/graph"
)

func populatedStore(t *testing.T) *Store {
	t.Helper()

	s := NewStore(5)
	s.Push(testDoc, testActor, NewAddBlockEntry(testDoc, testActor, testBlock("b1")))
	s.Push(testDoc, testActor, NewMoveBlockEntry(testDoc, testActor, "b1",
		graph.Position{}, graph.Position{X: 10, Y: 10}, "", ""))
	s.Undo(testDoc, testActor)
	s.Push("doc-2", "actor-2", NewAddEdgeEntry("doc-2", "actor-2", graph.Edge{ID: "e1", Source: "a", Target: "b"}))
	return s
}

func TestExportRestoreRoundTrip(t *testing.T) {
	s := populatedStore(t)

	state := s.ExportState()
	if state.Capacity != 5 {
		t.Errorf("capacity = %d, want 5", state.Capacity)
	}
	if len(state.StacksByKey) != 2 {
		t.Fatalf("keys = %d, want 2", len(state.StacksByKey))
	}

	restored := NewStore(0)
	restored.RestoreState(state)

	if got := restored.Capacity(); got != 5 {
		t.Errorf("restored capacity = %d, want 5", got)
	}

	sizes := restored.StackSizes(testDoc, testActor)
	if sizes.Undo != 1 || sizes.Redo != 1 {
		t.Errorf("restored sizes = %+v, want undo 1 redo 1", sizes)
	}

	entry, ok := restored.Redo(testDoc, testActor)
	if !ok {
		t.Fatal("expected redo entry after restore")
	}
	if entry.Operation.Type != OpMoveBlock {
		t.Errorf("redo type = %s, want %s", entry.Operation.Type, OpMoveBlock)
	}
}

func TestRestoreTruncatesToCapacity(t *testing.T) {
	s := NewStore(100)
	for i := 0; i < 10; i++ {
		pushAddBlock(s, "b")
	}

	state := s.ExportState()
	state.Capacity = 4

	restored := NewStore(0)
	restored.RestoreState(state)

	if sizes := restored.StackSizes(testDoc, testActor); sizes.Undo != 4 {
		t.Errorf("undo size = %d, want 4", sizes.Undo)
	}
}

func TestStateForDocument(t *testing.T) {
	s := NewStore(5)
	s.Push("doc-a", "actor-1", NewAddBlockEntry("doc-a", "actor-1", testBlock("b1")))
	s.Push("doc-a", "actor-2", NewAddBlockEntry("doc-a", "actor-2", testBlock("b2")))
	s.Push("doc-b", "actor-1", NewAddBlockEntry("doc-b", "actor-1", testBlock("b3")))

	sub := s.ExportState().ForDocument("doc-a")

	if sub.Capacity != 5 {
		t.Errorf("capacity = %d, want 5", sub.Capacity)
	}
	if len(sub.StacksByKey) != 2 {
		t.Fatalf("keys = %d, want 2", len(sub.StacksByKey))
	}
	for key := range sub.StacksByKey {
		if key != "doc-a/actor-1" && key != "doc-a/actor-2" {
			t.Errorf("unexpected key %q", key)
		}
	}

	if got := s.ExportState().ForDocument("doc-c"); len(got.StacksByKey) != 0 {
		t.Errorf("doc-c keys = %d, want 0", len(got.StacksByKey))
	}
}

func TestEncodeDecodeState(t *testing.T) {
	s := populatedStore(t)

	data, err := EncodeState(s.ExportState())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	state, err := DecodeState(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	restored := NewStore(0)
	restored.RestoreState(state)

	sizes := restored.StackSizes("doc-2", "actor-2")
	if sizes.Undo != 1 {
		t.Fatalf("undo size = %d, want 1", sizes.Undo)
	}

	entry, _ := restored.Undo("doc-2", "actor-2")
	if entry.Inverse.Remove == nil || entry.Inverse.Remove.Edge == nil {
		t.Fatal("edge snapshot lost in round trip")
	}
	if entry.Inverse.Remove.Edge.Source != "a" {
		t.Errorf("edge source = %s, want a", entry.Inverse.Remove.Edge.Source)
	}
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	if _, err := DecodeState([]byte("{not json")); !errors.Is(err, ErrBadState) {
		t.Errorf("err = %v, want ErrBadState", err)
	}
}

func TestDecodeStateRejectsUnknownOperationType(t *testing.T) {
	data := []byte(`{
		"capacity": 15,
		"stacksByKey": {
			"doc/actor": {
				"undo": [{
					"id": "e",
					"operation": {"id": "o", "type": "teleport-block"},
					"inverse": {"id": "i", "type": "move-block"}
				}],
				"redo": []
			}
		}
	}`)

	_, err := DecodeState(data)
	if !errors.Is(err, ErrBadState) {
		t.Fatalf("err = %v, want ErrBadState", err)
	}
}
