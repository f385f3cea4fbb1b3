package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past operations",
	Long: `Show the most recent mutations, newest first. Reversible
entries can be undone with pkgtool undo.

Examples:
  pkgtool history
  pkgtool history -l 30`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 15, "entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(entries) == 0 {
		ui.MutedMsg("No operations recorded yet")
		return nil
	}

	ui.HeaderMsg("Operation history")
	for _, e := range entries {
		line := "  " + e.Summary()
		if e.CanUndo() {
			line += " " + ui.Cyan("[reversible]")
		}
		fmt.Println(line)
	}

	total, _ := store.Count()
	ui.MutedMsg("Showing %d of %d entries", len(entries), total)
	return nil
}
