package storage

import (
	"testing"

	"github.com/dshills/flowstorm/internal/graph"
	"github.com/dshills/flowstorm/internal/history"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return db
}

func TestLoadStateMissing(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Error("expected no snapshot in a fresh database")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	store := history.NewStore(7)
	block := graph.Block{ID: "b1", Position: graph.Position{X: 5, Y: 5}}
	store.Push("doc", "actor", history.NewAddBlockEntry("doc", "actor", block))

	if err := db.SaveState(store.ExportState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	state, ok, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected a snapshot")
	}

	restored := history.NewStore(0)
	restored.RestoreState(state)

	if got := restored.Capacity(); got != 7 {
		t.Errorf("capacity = %d, want 7", got)
	}
	entry, ok := restored.Undo("doc", "actor")
	if !ok {
		t.Fatal("expected restored undo entry")
	}
	if entry.Operation.Type != history.OpAddBlock {
		t.Errorf("type = %s, want %s", entry.Operation.Type, history.OpAddBlock)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	db := openTestDB(t)

	first := history.NewStore(3)
	first.Push("doc", "actor", history.NewAddBlockEntry("doc", "actor", graph.Block{ID: "old"}))
	if err := db.SaveState(first.ExportState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := history.NewStore(3)
	if err := db.SaveState(second.ExportState()); err != nil {
		t.Fatalf("save: %v", err)
	}

	state, ok, err := db.LoadState()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(state.StacksByKey) != 0 {
		t.Errorf("keys = %d, want 0 (replaced by empty state)", len(state.StacksByKey))
	}
}

func TestSaveLoadHistoryPerDocument(t *testing.T) {
	db := openTestDB(t)

	store := history.NewStore(5)
	store.Push("doc-a", "actor-1", history.NewAddBlockEntry("doc-a", "actor-1", graph.Block{ID: "b1"}))
	store.Push("doc-a", "actor-2", history.NewAddBlockEntry("doc-a", "actor-2", graph.Block{ID: "b2"}))
	store.Push("doc-b", "actor-1", history.NewAddBlockEntry("doc-b", "actor-1", graph.Block{ID: "b3"}))

	state := store.ExportState()
	if err := db.SaveHistory("doc-a", state); err != nil {
		t.Fatalf("save doc-a: %v", err)
	}

	// doc-b was never saved, so its record is independent of doc-a's.
	if _, ok, err := db.LoadHistory("doc-b"); err != nil || ok {
		t.Fatalf("doc-b: ok=%v err=%v, want absent", ok, err)
	}

	loaded, ok, err := db.LoadHistory("doc-a")
	if err != nil {
		t.Fatalf("load doc-a: %v", err)
	}
	if !ok {
		t.Fatal("expected a doc-a snapshot")
	}
	if len(loaded.StacksByKey) != 2 {
		t.Fatalf("doc-a keys = %d, want 2", len(loaded.StacksByKey))
	}
	for key := range loaded.StacksByKey {
		if key != "doc-a/actor-1" && key != "doc-a/actor-2" {
			t.Errorf("unexpected key %q in doc-a snapshot", key)
		}
	}

	if err := db.SaveHistory("doc-b", state); err != nil {
		t.Fatalf("save doc-b: %v", err)
	}
	loaded, ok, err = db.LoadHistory("doc-b")
	if err != nil || !ok {
		t.Fatalf("load doc-b: ok=%v err=%v", ok, err)
	}
	if len(loaded.StacksByKey) != 1 {
		t.Errorf("doc-b keys = %d, want 1", len(loaded.StacksByKey))
	}

	// Per-document records do not disturb the whole-engine snapshot.
	if _, ok, _ := db.LoadState(); ok {
		t.Error("whole-engine snapshot should still be absent")
	}
}

func TestDropState(t *testing.T) {
	db := openTestDB(t)

	if err := db.DropState(); err != nil {
		t.Fatalf("drop on empty db: %v", err)
	}

	store := history.NewStore(3)
	if err := db.SaveState(store.ExportState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.DropState(); err != nil {
		t.Fatalf("drop: %v", err)
	}

	if _, ok, _ := db.LoadState(); ok {
		t.Error("snapshot should be gone after drop")
	}
}
