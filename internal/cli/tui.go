package cli

import (
	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/internal/tui"
	"github.com/0xb0urn3/pkgtool/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive interface",
	Long: `Open the full-screen interface: browse installed packages and
pending updates, search, and run installs or removals without leaving
the terminal. Running pkgtool with no arguments does the same thing.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	var hist *history.Store
	if cfg.History.Enabled {
		var err error
		hist, err = history.Open()
		if err != nil {
			ui.WarningMsg("history disabled: %v", err)
			hist = nil
		}
	}
	if hist != nil {
		defer hist.Close()
	}

	return tui.Run(tui.Options{
		Coordinator: coord,
		Config:      cfg,
		Durations:   durs,
		Host:        host,
		History:     hist,
	})
}
