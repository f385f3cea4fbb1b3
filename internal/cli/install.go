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

var installCmd = &cobra.Command{
	Use:   "install <package>...",
	Short: "Install packages",
	Long: `Install packages through one backend.

Bare names go to the host's native backend. Pin another backend per
package with tag:name, or for the whole command with --backend.

Examples:
  pkgtool install vim git
  pkgtool install brew:jq
  pkgtool install ripgrep --backend pacman
  pkgtool install -y htop`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "backend to install through")
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	tag, pkgs, err := resolveTarget(args)
	if err != nil {
		return err
	}
	b, _ := registry.Get(tag)

	if err := executor.CheckPrivileges(b.NeedsSudo()); err != nil {
		return err
	}

	ui.InfoMsg("Installing via %s:", b.DisplayName())
	for _, name := range pkgs {
		ui.MutedMsg("  - %s", name)
	}

	if err := confirmMutation("Proceed with installation?", true); err != nil {
		return err
	}

	autoSnapshot(ctx, snapshot.TriggerInstall, "before installing "+strings.Join(pkgs, " "))

	err = coord.Install(ctx, tag, pkgs)
	recordMutation(history.OpInstall, tag, pkgs, err)
	if err != nil {
		return err
	}

	ui.SuccessMsg("Installed %s via %s", strings.Join(pkgs, " "), tag)
	return nil
}
