package snapshot

import "testing"

func TestCompare(t *testing.T) {
	from := stored("20240301-120000", TriggerManual,
		PackageState{Name: "vim", Version: "9.0", Source: "apt"},
		PackageState{Name: "git", Version: "2.44", Source: "apt"},
		PackageState{Name: "htop", Version: "3.3", Source: "apt"},
		PackageState{Name: "node", Version: "21.0", Source: "brew"},
	)
	to := stored("20240302-120000", TriggerInstall,
		PackageState{Name: "vim", Version: "9.1", Source: "apt"},
		PackageState{Name: "git", Version: "2.44", Source: "apt"},
		PackageState{Name: "curl", Version: "8.6", Source: "apt"},
		PackageState{Name: "node", Version: "20.9", Source: "brew"},
	)

	diff := Compare(from, to)

	if diff.From != "20240301-120000" || diff.To != "20240302-120000" {
		t.Errorf("diff endpoints wrong: %s -> %s", diff.From, diff.To)
	}
	if len(diff.Changes) != 4 {
		t.Fatalf("expected 4 changes, got %d: %+v", len(diff.Changes), diff.Changes)
	}

	added := diff.ByType(ChangeAdded)
	if len(added) != 1 || added[0].Package != "curl" || added[0].NewVersion != "8.6" {
		t.Errorf("unexpected added set: %+v", added)
	}

	removed := diff.ByType(ChangeRemoved)
	if len(removed) != 1 || removed[0].Package != "htop" || removed[0].OldVersion != "3.3" {
		t.Errorf("unexpected removed set: %+v", removed)
	}

	upgraded := diff.ByType(ChangeUpgraded)
	if len(upgraded) != 1 || upgraded[0].Package != "vim" {
		t.Fatalf("unexpected upgraded set: %+v", upgraded)
	}
	if upgraded[0].OldVersion != "9.0" || upgraded[0].NewVersion != "9.1" {
		t.Errorf("upgrade versions wrong: %+v", upgraded[0])
	}

	downgraded := diff.ByType(ChangeDowngraded)
	if len(downgraded) != 1 || downgraded[0].Package != "node" {
		t.Errorf("unexpected downgraded set: %+v", downgraded)
	}

	// Unchanged packages never appear.
	for _, c := range diff.Changes {
		if c.Package == "git" {
			t.Errorf("unchanged package reported: %+v", c)
		}
	}
}

func TestCompareOrdersChanges(t *testing.T) {
	from := stored("20240301-120000", TriggerManual,
		PackageState{Name: "gone", Version: "1.0", Source: "apt"},
		PackageState{Name: "bumped", Version: "1.0", Source: "apt"},
	)
	to := stored("20240302-120000", TriggerManual,
		PackageState{Name: "bumped", Version: "1.1", Source: "apt"},
		PackageState{Name: "zzz-new", Version: "1.0", Source: "apt"},
		PackageState{Name: "aaa-new", Version: "1.0", Source: "brew"},
	)

	diff := Compare(from, to)

	want := []struct {
		typ  ChangeType
		name string
	}{
		{ChangeAdded, "aaa-new"},
		{ChangeAdded, "zzz-new"},
		{ChangeRemoved, "gone"},
		{ChangeUpgraded, "bumped"},
	}
	if len(diff.Changes) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(diff.Changes))
	}
	for i, w := range want {
		if diff.Changes[i].Type != w.typ || diff.Changes[i].Package != w.name {
			t.Errorf("change %d: expected %s %s, got %s %s",
				i, w.typ, w.name, diff.Changes[i].Type, diff.Changes[i].Package)
		}
	}
}

func TestCompareIdenticalSnapshots(t *testing.T) {
	pkgs := []PackageState{
		{Name: "vim", Version: "9.1", Source: "apt"},
		{Name: "git", Version: "2.44", Source: "apt"},
	}
	from := stored("20240301-120000", TriggerManual, pkgs...)
	to := stored("20240302-120000", TriggerManual, pkgs...)

	diff := Compare(from, to)
	if !diff.IsEmpty() {
		t.Errorf("expected empty diff, got %+v", diff.Changes)
	}
	if diff.Summary() != "no changes" {
		t.Errorf("unexpected summary: %q", diff.Summary())
	}
}

func TestCompareTreatsSourcesAsDistinct(t *testing.T) {
	from := stored("20240301-120000", TriggerManual,
		PackageState{Name: "jq", Version: "1.7", Source: "apt"},
	)
	to := stored("20240302-120000", TriggerManual,
		PackageState{Name: "jq", Version: "1.7", Source: "brew"},
	)

	diff := Compare(from, to)
	if len(diff.ByType(ChangeAdded)) != 1 || len(diff.ByType(ChangeRemoved)) != 1 {
		t.Errorf("same name under two backends should diff as add plus remove, got %+v", diff.Changes)
	}
}

func TestDiffSummary(t *testing.T) {
	diff := &Diff{Changes: []Change{
		{Type: ChangeAdded, Package: "curl"},
		{Type: ChangeAdded, Package: "wget"},
		{Type: ChangeRemoved, Package: "htop"},
		{Type: ChangeUpgraded, Package: "vim"},
	}}

	got := diff.Summary()
	if got != "+2 added, -1 removed, ^1 upgraded" {
		t.Errorf("unexpected summary: %q", got)
	}
}

func TestChangeString(t *testing.T) {
	tests := []struct {
		change Change
		want   string
	}{
		{
			Change{Type: ChangeAdded, Package: "curl", Source: "apt", NewVersion: "8.6"},
			"+ curl (8.6) [apt]",
		},
		{
			Change{Type: ChangeRemoved, Package: "htop", Source: "apt", OldVersion: "3.3"},
			"- htop (3.3) [apt]",
		},
		{
			Change{Type: ChangeUpgraded, Package: "vim", Source: "apt", OldVersion: "9.0", NewVersion: "9.1"},
			"^ vim: 9.0 -> 9.1 [apt]",
		},
		{
			Change{Type: ChangeDowngraded, Package: "node", Source: "brew", OldVersion: "21.0", NewVersion: "20.9"},
			"v node: 21.0 -> 20.9 [brew]",
		},
	}

	for _, tt := range tests {
		if got := tt.change.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
