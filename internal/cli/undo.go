package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/snapshot"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the last reversible operation",
	Long: `Reverse the most recent successful install or remove by
replaying the opposite operation through the same backend. System
updates cannot be reversed.`,
	RunE: runUndo,
}

func runUndo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	entry, err := store.LastReversible()
	store.Close()
	if err != nil {
		if errors.Is(err, history.ErrNoReversible) {
			ui.InfoMsg("Nothing to undo")
			return nil
		}
		return err
	}

	b, ok := registry.Get(entry.Backend)
	if !ok {
		return fmt.Errorf("backend %q is no longer available on this host", entry.Backend)
	}
	if err := executor.CheckPrivileges(b.NeedsSudo()); err != nil {
		return err
	}

	names := strings.Join(entry.Packages, " ")
	ui.InfoMsg("Last reversible operation: %s", entry.Summary())
	ui.InfoMsg("Undo will %s %s via %s", entry.ReverseOp, names, entry.Backend)

	if err := confirmMutation("Proceed?", false); err != nil {
		return err
	}

	trigger := snapshot.TriggerRemove
	if entry.ReverseOp == history.OpInstall {
		trigger = snapshot.TriggerInstall
	}
	autoSnapshot(ctx, trigger, "before undoing "+string(entry.Operation)+" of "+names)

	var opErr error
	switch entry.ReverseOp {
	case history.OpInstall:
		opErr = coord.Install(ctx, entry.Backend, entry.Packages)
	case history.OpRemove:
		opErr = coord.Remove(ctx, entry.Backend, entry.Packages)
	default:
		return fmt.Errorf("%s has no reverse operation", entry.Operation)
	}

	recordMutation(entry.ReverseOp, entry.Backend, entry.Packages, opErr)
	if opErr != nil {
		return opErr
	}

	ui.SuccessMsg("Reversed: %s %s via %s", entry.ReverseOp, names, entry.Backend)
	return nil
}
