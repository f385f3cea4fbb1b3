package cli

import (
	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/ui"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show the package managers detected on this host",
	RunE:  runBackends,
}

func runBackends(cmd *cobra.Command, args []string) error {
	def := defaultTag()

	table := ui.NewTable([]string{"backend", "name", "sudo", "notes"})
	for _, b := range registry.Active() {
		sudo := ""
		if b.NeedsSudo() {
			sudo = "yes"
		}
		notes := ""
		if b.Tag() == def {
			notes = "default target"
		}
		table.AddRow(b.Tag(), b.DisplayName(), sudo, notes)
	}
	table.Render()

	for _, f := range registry.InitFailures() {
		ui.MutedMsg("  %s: %v", f.Tag, f.Err)
	}

	if host.PrettyName != "" {
		ui.MutedMsg("Host: %s (%s/%s)", host.PrettyName, host.OS, host.Arch)
	}
	return nil
}
