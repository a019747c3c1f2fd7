// Package main is the flowhist history inspection tool.
//
// It opens a persisted flowstorm history database and reports or repairs
// its contents: stack sizes per document/actor pair, pruning against a
// graph snapshot, capacity changes, and clearing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/dshills/flowstorm/internal/app"
	"github.com/dshills/flowstorm/internal/config"
	"github.com/dshills/flowstorm/internal/graph"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "history database path (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("flowhist %s (%s)\n", version, commit)
		return 0
	}

	if flag.NArg() == 0 {
		usage()
		return 2
	}

	if *dbPath != "" {
		// The storage env override is the designed injection point.
		os.Setenv(config.EnvStoragePath, *dbPath)
	}

	application, err := app.New(app.Options{ConfigPath: *configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Handle signals so an interrupt still snapshots persisted history.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Shutdown()
		os.Exit(1)
	}()

	if err := dispatch(application, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(a *app.App, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "keys":
		return cmdKeys(a)
	case "sizes":
		return cmdSizes(a, rest)
	case "prune":
		return cmdPrune(a, rest)
	case "compact":
		return cmdCompact(a, rest)
	case "clear":
		return cmdClear(a, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdKeys(a *app.App) error {
	state := a.Store().ExportState()

	keys := make([]string, 0, len(state.StacksByKey))
	for key := range state.StacksByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		st := state.StacksByKey[key]
		fmt.Printf("%s\tundo=%d\tredo=%d\n", key, len(st.Undo), len(st.Redo))
	}
	return nil
}

func cmdSizes(a *app.App, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: sizes <document-id> <actor-id>")
	}

	sizes := a.Store().StackSizes(args[0], args[1])
	fmt.Printf("undo=%d redo=%d capacity=%d\n", sizes.Undo, sizes.Redo, a.Store().Capacity())
	return nil
}

func cmdPrune(a *app.App, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: prune <document-id> <actor-id> <snapshot.json>")
	}

	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}

	before := a.Store().StackSizes(args[0], args[1])
	a.Prune(args[0], args[1], &snap)
	after := a.Store().StackSizes(args[0], args[1])

	fmt.Printf("pruned undo %d -> %d, redo %d -> %d\n",
		before.Undo, after.Undo, before.Redo, after.Redo)
	return nil
}

func cmdCompact(a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: compact <capacity>")
	}

	capacity, err := strconv.Atoi(args[0])
	if err != nil || capacity < 1 {
		return fmt.Errorf("capacity must be a positive integer, got %q", args[0])
	}

	a.SetCapacity(capacity)
	fmt.Printf("capacity set to %d, stacks truncated\n", capacity)
	return nil
}

func cmdClear(a *app.App, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: clear <document-id> <actor-id>")
	}

	a.Store().Clear(args[0], args[1])
	fmt.Printf("cleared history for %s/%s\n", args[0], args[1])
	return nil
}

func usage() {
	name := os.Args[0]
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	fmt.Fprintf(os.Stderr, `%s - flowstorm history inspection tool

Usage:
  %s [flags] <command> [args]

Commands:
  keys                                    list document/actor pairs with stack sizes
  sizes <document-id> <actor-id>          show stack sizes for a pair
  prune <document-id> <actor-id> <file>   drop entries stale against a graph snapshot
  compact <capacity>                      set capacity and truncate all stacks
  clear <document-id> <actor-id>          discard history for a pair

Flags:
`, name, name)
	flag.PrintDefaults()
}
