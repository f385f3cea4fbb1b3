// Package cli implements the pkgtool command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/config"
	"github.com/0xb0urn3/pkgtool/internal/executor"
	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
	"github.com/0xb0urn3/pkgtool/pkg/backend/detector"
	"github.com/0xb0urn3/pkgtool/pkg/backend/native"
)

var (
	// Global flags
	cfgFile string
	dryRun  bool
	yes     bool
	verbose bool
	noColor bool
	noCache bool

	// Global state, built by initializeApp before any command runs
	cfg      *config.Config
	durs     config.Durations
	registry *backend.Registry
	coord    *backend.Coordinator
	host     detector.Host
)

// Build metadata, set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pkgtool",
	Short: "One front end for every package manager on the host",
	Long: `pkgtool drives apt, pacman, dnf, zypper, apk and Homebrew through
one interface. Read operations fan out to every manager present on the
host and merge the results; mutations address exactly one manager.

Run without arguments to open the interactive interface.

Examples:
  pkgtool                      # open the TUI
  pkgtool search ripgrep       # search every backend at once
  pkgtool install vim git      # install via the native backend
  pkgtool install brew:jq      # pin a backend per package
  pkgtool update --all         # full upgrade, every backend in turn`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "print the commands that would run without running them")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace subprocess invocations")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(updatesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(backendsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initializeApp loads configuration, probes the host's package
// managers and wires the coordinator every command runs through.
func initializeApp() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Flag overrides
	if yes {
		cfg.UI.Confirm = false
	}
	if noColor {
		cfg.UI.Color = false
	}
	if noCache {
		cfg.Cache.Disabled = true
	}

	durs, err = cfg.Durations()
	if err != nil {
		return err
	}

	ui.Init(cfg.ShouldUseColor())

	host = detector.Detect()

	exec := executor.New(dryRun, verbose)

	var candidates []backend.Backend
	for _, c := range native.Candidates(exec) {
		if cfg.BackendDisabled(c.Tag()) {
			continue
		}
		if durs.CacheTTL > 0 {
			c = backend.NewCached(c, durs.CacheTTL)
		}
		candidates = append(candidates, c)
	}

	registry = backend.NewRegistry()
	if err := registry.Discover(context.Background(), candidates); err != nil {
		return err
	}

	if verbose {
		for _, f := range registry.InitFailures() {
			ui.WarningMsg("%s not available: %v", f.Tag, f.Err)
		}
	}

	coord = backend.NewCoordinator(registry, durs.Read, durs.Mutate)
	return nil
}

// defaultTag picks the backend bare package names go to.
func defaultTag() string {
	return backend.DefaultTarget(registry, cfg.Backends.Default, host.Suggested())
}

func knownTag(tag string) bool {
	_, ok := registry.Get(tag)
	return ok
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pkgtool version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("pkgtool %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  built:  %s", BuildTime)
		}
	},
}
