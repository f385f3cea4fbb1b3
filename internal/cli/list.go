package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

var listCmd = &cobra.Command{
	Use:   "list [backend]",
	Short: "List installed packages",
	Long: `List installed packages from every backend, or from one when
its tag is given.

Examples:
  pkgtool list
  pkgtool list brew`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) > 0 {
		return listBackend(ctx, args[0])
	}

	var result backend.InstalledResult
	_ = ui.WithSpinner(cfg.UI.Spinner, "Listing installed packages", func() error {
		result = coord.Installed(ctx)
		return nil
	})

	ui.PrintPackages(result.Packages)
	ui.PrintFailures(result.Failures)
	ui.MutedMsg("%s", result.Summary())
	return nil
}

// listBackend queries a single backend directly, bypassing the
// fan-out but keeping the read deadline.
func listBackend(ctx context.Context, tag string) error {
	b, ok := registry.Get(tag)
	if !ok {
		return fmt.Errorf("unknown backend %q", tag)
	}

	var pkgs []backend.PackageInfo
	err := ui.WithSpinner(cfg.UI.Spinner, "Listing "+tag+" packages", func() error {
		ctx, cancel := context.WithTimeout(ctx, durs.Read)
		defer cancel()
		var err error
		pkgs, err = b.Installed(ctx)
		return err
	})
	if err != nil {
		return err
	}

	ui.PrintPackages(pkgs)
	ui.MutedMsg("%d packages", len(pkgs))
	return nil
}
