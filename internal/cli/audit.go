package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
	"github.com/0xb0urn3/pkgtool/pkg/security"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report pending security updates per backend",
	Long: `Check every backend for pending upgrades and break out the
ones flagged as security fixes. Backends that could not be checked
are listed so silence is never mistaken for safety.`,
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	var result backend.UpdatesResult
	_ = ui.WithSpinner(cfg.UI.Spinner, "Checking security state", func() error {
		result = coord.Updates(context.Background())
		return nil
	})

	report := security.Compile(registry.Tags(), result.Updates, result.Failures)
	fmt.Print(report.Render())

	if report.TotalSecurity() > 0 {
		ui.WarningMsg("%s", report.Headline())
	} else {
		ui.SuccessMsg("%s", report.Headline())
	}
	return nil
}
