package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
	"github.com/0xb0urn3/pkgtool/pkg/security"
	"github.com/0xb0urn3/pkgtool/pkg/snapshot"
)

var updateAll bool

var updateCmd = &cobra.Command{
	Use:     "update [backend]",
	Aliases: []string{"upgrade"},
	Short:   "Apply pending upgrades",
	Long: `Apply every pending upgrade for one backend, or for all of
them in turn with --all. Without arguments the host's native backend
is updated.

Examples:
  pkgtool update           # native backend
  pkgtool update brew
  pkgtool update --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "update every backend in turn")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if updateAll {
		return runUpdateAll(ctx)
	}

	tag := defaultTag()
	if len(args) > 0 {
		tag = args[0]
	}
	if tag == "" {
		return errors.New("no backend named; pass one or use --all")
	}
	b, ok := registry.Get(tag)
	if !ok {
		return fmt.Errorf("unknown backend %q", tag)
	}

	if err := executor.CheckPrivileges(b.NeedsSudo()); err != nil {
		return err
	}

	if err := confirmMutation(fmt.Sprintf("Run a full %s upgrade?", tag), true); err != nil {
		return err
	}

	autoSnapshot(ctx, snapshot.TriggerUpdate, "before "+tag+" upgrade")

	err := coord.UpdateSystem(ctx, tag)
	recordMutation(history.OpUpdate, tag, nil, err)
	if err != nil {
		return err
	}

	ui.SuccessMsg("%s is up to date", tag)
	return nil
}

func runUpdateAll(ctx context.Context) error {
	needsSudo := false
	for _, b := range registry.Active() {
		if b.NeedsSudo() {
			needsSudo = true
			break
		}
	}
	if err := executor.CheckPrivileges(needsSudo); err != nil {
		return err
	}

	if err := confirmMutation("Update every backend?", true); err != nil {
		return err
	}

	autoSnapshot(ctx, snapshot.TriggerUpdate, "before updating all backends")

	failures := coord.UpdateAll(ctx)
	var err error
	switch len(failures) {
	case 0:
	case 1:
		err = failures[0].Err
	default:
		err = fmt.Errorf("%d backends failed", len(failures))
	}
	recordMutation(history.OpUpdate, "all", nil, err)

	if err != nil {
		ui.PrintFailures(failures)
		return err
	}

	ui.SuccessMsg("All backends up to date")
	return nil
}

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "List pending upgrades without applying them",
	RunE:  runUpdates,
}

func runUpdates(cmd *cobra.Command, args []string) error {
	var result backend.UpdatesResult
	_ = ui.WithSpinner(cfg.UI.Spinner, "Checking for updates", func() error {
		result = coord.Updates(context.Background())
		return nil
	})

	ui.PrintUpdates(result.Updates)
	ui.PrintFailures(result.Failures)

	report := security.Compile(registry.Tags(), result.Updates, result.Failures)
	if n := report.TotalSecurity(); n > 0 {
		ui.WarningMsg("%d pending security fixes; run pkgtool audit for the breakdown", n)
	}

	ui.MutedMsg("%s", result.Summary())
	return nil
}
