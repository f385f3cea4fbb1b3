package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xb0urn3/pkgtool/internal/ui"
	"github.com/0xb0urn3/pkgtool/pkg/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage package state snapshots",
	Long: `Snapshots record which packages were installed at a point in
time, across every backend. One is captured automatically before each
mutation (see the [snapshot] config section); manual ones are never
pruned.

Examples:
  pkgtool snapshot create "before the big migration"
  pkgtool snapshot list
  pkgtool snapshot show
  pkgtool snapshot diff
  pkgtool snapshot prune --keep 20`,
}

var (
	snapshotLimit int
	snapshotKeep  int
)

func init() {
	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotPruneCmd)

	snapshotListCmd.Flags().IntVarP(&snapshotLimit, "limit", "l", 20, "snapshots to list")
	snapshotPruneCmd.Flags().IntVar(&snapshotKeep, "keep", 0, "snapshots to keep (0 = config value)")
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create [description]",
	Short: "Capture the current package state",
	RunE:  runSnapshotCreate,
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	description := strings.Join(args, " ")

	store, err := snapshot.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var snap *snapshot.Snapshot
	_ = ui.WithSpinner(cfg.UI.Spinner, "Capturing package state", func() error {
		snap = snapshot.Capture(ctx, coord, snapshot.TriggerManual, description)
		return nil
	})

	if err := store.Save(snap); err != nil {
		return err
	}

	ui.SuccessMsg("Saved snapshot %s (%d packages)", snap.ID, len(snap.Packages))
	for _, tag := range snap.Incomplete {
		ui.WarningMsg("%s could not be listed; its packages are missing from this snapshot", tag)
	}
	return nil
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE:  runSnapshotList,
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	store, err := snapshot.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.List(snapshotLimit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ui.MutedMsg("No snapshots yet; one is captured before every mutation")
		return nil
	}

	ui.HeaderMsg("Snapshots")
	for _, s := range snaps {
		line := "  " + s.Summary()
		if len(s.Incomplete) > 0 {
			line += " " + ui.Yellow("[partial]")
		}
		fmt.Println(line)
	}

	total, _ := store.Count()
	ui.MutedMsg("Showing %d of %d snapshots", len(snaps), total)
	return nil
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one snapshot in full",
	Long: `Show a snapshot's packages grouped by backend. Without an ID
the most recent snapshots are offered for selection.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotShow,
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	store, err := snapshot.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		snaps, err := store.List(10)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			ui.MutedMsg("No snapshots yet")
			return nil
		}
		labels := make([]string, len(snaps))
		for i, s := range snaps {
			labels[i] = s.Summary()
		}
		idx, _, err := ui.Select("Snapshot", labels)
		if err != nil {
			return err
		}
		id = snaps[idx].ID
	}

	snap, err := store.Get(id)
	if err != nil {
		return err
	}

	ui.HeaderMsg("Snapshot %s", snap.ID)
	ui.Field("taken", snap.FormatTime())
	ui.Field("trigger", string(snap.Trigger))
	if snap.Description != "" {
		ui.Field("description", snap.Description)
	}
	if len(snap.Incomplete) > 0 {
		ui.Field("missing", strings.Join(snap.Incomplete, ", "))
	}
	ui.Field("packages", fmt.Sprintf("%d", len(snap.Packages)))

	bySource := snap.PackagesBySource()
	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		pkgs := bySource[source]
		ui.InfoMsg("%s (%d)", source, len(pkgs))
		for _, p := range pkgs {
			ui.MutedMsg("  %s %s", p.Name, p.Version)
		}
	}
	return nil
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff [from] [to]",
	Short: "Compare two snapshots",
	Long: `Compare two snapshots and list what was added, removed,
upgraded or downgraded between them. Without arguments the two most
recent snapshots are compared.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runSnapshotDiff,
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	store, err := snapshot.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var from, to *snapshot.Snapshot
	switch len(args) {
	case 0:
		snaps, err := store.List(2)
		if err != nil {
			return err
		}
		if len(snaps) < 2 {
			ui.MutedMsg("Need at least two snapshots to diff")
			return nil
		}
		from, to = &snaps[1], &snaps[0]
	case 2:
		if from, err = store.Get(args[0]); err != nil {
			return err
		}
		if to, err = store.Get(args[1]); err != nil {
			return err
		}
	default:
		return errors.New("diff takes no arguments or two snapshot IDs")
	}

	diff := snapshot.Compare(from, to)

	ui.HeaderMsg("%s -> %s", from.ID, to.ID)
	if diff.IsEmpty() {
		ui.SuccessMsg("No changes between these snapshots")
		return nil
	}

	ui.InfoMsg("%s", diff.Summary())
	for _, c := range diff.Changes {
		fmt.Println("  " + c.String())
	}
	return nil
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	store, err := snapshot.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Get(args[0])
	if err != nil {
		return err
	}

	if err := confirmMutation(fmt.Sprintf("Delete snapshot %s?", snap.ID), false); err != nil {
		return err
	}

	if err := store.Delete(snap.ID); err != nil {
		return err
	}
	ui.SuccessMsg("Deleted snapshot %s", snap.ID)
	return nil
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old automatic snapshots",
	Long: `Delete the oldest automatic snapshots beyond the keep limit.
Manual snapshots are never pruned.`,
	RunE: runSnapshotPrune,
}

func runSnapshotPrune(cmd *cobra.Command, args []string) error {
	store, err := snapshot.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	keep := snapshotKeep
	if keep <= 0 {
		keep = cfg.Snapshot.MaxSnapshots
	}

	deleted, err := store.Prune(keep)
	if err != nil {
		return err
	}

	remaining, _ := store.Count()
	if deleted == 0 {
		ui.InfoMsg("Nothing to prune (%d snapshots)", remaining)
		return nil
	}
	ui.SuccessMsg("Pruned %d snapshots, %d remain", deleted, remaining)
	return nil
}
