package main

import (
	"strings"
	"testing"

	"github.com/dshills/flowstorm/internal/app"
	"github.com/dshills/flowstorm/internal/graph"
	"github.com/dshills/flowstorm/internal/history"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(app.Options{Logger: app.NullLogger})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { a.Shutdown() })
	return a
}

func TestDispatchUnknownCommand(t *testing.T) {
	a := newTestApp(t)

	err := dispatch(a, []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err = %v, want unknown command", err)
	}
}

func TestDispatchArgValidation(t *testing.T) {
	a := newTestApp(t)

	cases := [][]string{
		{"sizes"},
		{"sizes", "doc"},
		{"prune", "doc", "actor"},
		{"compact"},
		{"compact", "zero"},
		{"compact", "0"},
		{"clear", "doc"},
	}
	for _, args := range cases {
		if err := dispatch(a, args); err == nil {
			t.Errorf("dispatch(%v) succeeded, want error", args)
		}
	}
}

func TestDispatchClear(t *testing.T) {
	a := newTestApp(t)
	a.Record("doc", "actor", history.NewAddBlockEntry("doc", "actor", graph.Block{ID: "b1"}))

	if err := dispatch(a, []string{"clear", "doc", "actor"}); err != nil {
		t.Fatalf("clear: %v", err)
	}

	sizes := a.Store().StackSizes("doc", "actor")
	if sizes.Undo != 0 || sizes.Redo != 0 {
		t.Errorf("sizes = %+v, want empty", sizes)
	}
}

func TestDispatchCompact(t *testing.T) {
	a := newTestApp(t)

	if err := dispatch(a, []string{"compact", "3"}); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if got := a.Store().Capacity(); got != 3 {
		t.Errorf("capacity = %d, want 3", got)
	}
}
