package cli

import (
	"context"
	"fmt"

	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
	"github.com/0xb0urn3/pkgtool/pkg/snapshot"
)

// backendFlag is shared by the install and remove commands; exactly
// one of them runs per invocation.
var backendFlag string

// resolveTarget turns mutation arguments into one backend tag and the
// package names addressed to it. --backend sets the fallback for bare
// names; tag:name pins per package and wins over the flag.
func resolveTarget(args []string) (string, []string, error) {
	fallback := backendFlag
	if fallback == "" {
		fallback = defaultTag()
	} else if !knownTag(fallback) {
		return "", nil, fmt.Errorf("unknown backend %q", fallback)
	}
	return backend.SplitTarget(args, fallback, knownTag)
}

// confirmMutation prompts before a mutation unless confirmations are
// off. Dry runs skip the prompt: nothing will execute anyway.
func confirmMutation(prompt string, defaultYes bool) error {
	if !cfg.UI.Confirm || dryRun {
		return nil
	}
	ok, err := ui.Confirm(prompt, defaultYes)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

// recordMutation appends the outcome to the history store. A recording
// failure is reported but never turns a finished operation into an
// error.
func recordMutation(op history.Operation, tag string, packages []string, opErr error) {
	if !cfg.History.Enabled || dryRun {
		return
	}

	store, err := history.Open()
	if err != nil {
		ui.WarningMsg("history not recorded: %v", err)
		return
	}
	defer store.Close()

	entry := history.NewEntry(op, tag, packages)
	if opErr != nil {
		entry.MarkFailed(opErr)
	} else {
		entry.MarkSuccess()
	}
	if err := store.Record(entry); err != nil {
		ui.WarningMsg("history not recorded: %v", err)
		return
	}
	if cfg.History.MaxEntries > 0 {
		_, _ = store.Prune(cfg.History.MaxEntries)
	}
}

// autoSnapshot captures the pre-mutation package state when enabled.
// Capture problems never block the mutation.
func autoSnapshot(ctx context.Context, trigger snapshot.Trigger, description string) {
	if !cfg.Snapshot.Auto || dryRun {
		return
	}

	store, err := snapshot.Open()
	if err != nil {
		ui.WarningMsg("snapshot skipped: %v", err)
		return
	}
	defer store.Close()

	snap := snapshot.Capture(ctx, coord, trigger, description)
	if err := store.Save(snap); err != nil {
		ui.WarningMsg("snapshot skipped: %v", err)
		return
	}
	if cfg.Snapshot.MaxSnapshots > 0 {
		_, _ = store.Prune(cfg.Snapshot.MaxSnapshots)
	}
}
