package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/snapshot"
)

var removeCmd = &cobra.Command{
	Use:     "remove <package>...",
	Aliases: []string{"uninstall"},
	Short:   "Remove installed packages",
	Long: `Remove packages through the backend that installed them.

Bare names address the host's native backend; use tag:name or
--backend when the package came from another one.

Examples:
  pkgtool remove vim
  pkgtool remove brew:jq
  pkgtool remove htop --backend pacman`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "backend to remove through")
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	tag, pkgs, err := resolveTarget(args)
	if err != nil {
		return err
	}
	b, _ := registry.Get(tag)

	if err := executor.CheckPrivileges(b.NeedsSudo()); err != nil {
		return err
	}

	ui.InfoMsg("Removing via %s:", b.DisplayName())
	for _, name := range pkgs {
		ui.MutedMsg("  - %s", name)
	}

	if err := confirmMutation("Proceed with removal?", false); err != nil {
		return err
	}

	autoSnapshot(ctx, snapshot.TriggerRemove, "before removing "+strings.Join(pkgs, " "))

	err = coord.Remove(ctx, tag, pkgs)
	recordMutation(history.OpRemove, tag, pkgs, err)
	if err != nil {
		return err
	}

	ui.SuccessMsg("Removed %s via %s", strings.Join(pkgs, " "), tag)
	return nil
}
