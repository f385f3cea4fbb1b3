package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every backend for a package",
	Long: `Search all detected backends concurrently and merge the
results. A backend that fails or times out is reported alongside the
results from the others.

Examples:
  pkgtool search ripgrep
  pkgtool search "modal editor"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	var result backend.SearchResult
	_ = ui.WithSpinner(cfg.UI.Spinner, fmt.Sprintf("Searching for %q", query), func() error {
		result = coord.Search(context.Background(), query)
		return nil
	})

	ui.PrintPackages(result.Packages)
	ui.PrintFailures(result.Failures)
	ui.MutedMsg("%s", result.Summary())
	return nil
}
