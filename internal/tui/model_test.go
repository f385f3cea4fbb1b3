package tui

import (
	"strings"
	"testing"

	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

func testModel(rows ...backend.PackageInfo) *Model {
	return &Model{
		installed: rows,
		height:    20,
		cursors:   make(map[Tab]int),
		scrolls:   make(map[Tab]int),
	}
}

func pkg(name, desc string) backend.PackageInfo {
	return backend.PackageInfo{Name: name, Description: desc, Source: "apt"}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		verb string
		args string
	}{
		{"empty", "", "", ""},
		{"blank", "   ", "", ""},
		{"verb only", "refresh", "refresh", ""},
		{"verb lowercased, args preserved", "Install Vim", "install", "Vim"},
		{"extra whitespace collapsed", "  search   fuzzy   finder ", "search", "fuzzy finder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verb, args := parseCommand(tt.in)
			if verb != tt.verb {
				t.Errorf("verb = %q, want %q", verb, tt.verb)
			}
			if got := strings.Join(args, " "); got != tt.args {
				t.Errorf("args = %q, want %q", got, tt.args)
			}
		})
	}
}

func TestMoveCursorWrapsSingleSteps(t *testing.T) {
	m := testModel(pkg("vim", ""), pkg("git", ""), pkg("zsh", ""))

	m.moveCursor(-1)
	if m.cursor() != 2 {
		t.Errorf("up from the top lands on %d, want 2", m.cursor())
	}

	m.moveCursor(1)
	if m.cursor() != 0 {
		t.Errorf("down from the bottom lands on %d, want 0", m.cursor())
	}
}

func TestMoveCursorClampsPageJumps(t *testing.T) {
	rows := make([]backend.PackageInfo, 10)
	for i := range rows {
		rows[i] = pkg("pkg"+strings.Repeat("x", i), "")
	}
	m := testModel(rows...)

	m.moveCursor(m.visibleHeight())
	if m.cursor() != 9 {
		t.Errorf("page down clamps to %d, want 9", m.cursor())
	}

	m.moveCursor(-m.visibleHeight())
	if m.cursor() != 0 {
		t.Errorf("page up clamps to %d, want 0", m.cursor())
	}
}

func TestGoToBottomScrolls(t *testing.T) {
	rows := make([]backend.PackageInfo, 30)
	for i := range rows {
		rows[i] = pkg("pkg"+strings.Repeat("x", i), "")
	}
	m := testModel(rows...)
	m.height = 12 // 5 visible rows

	m.goToBottom()
	if m.cursor() != 29 {
		t.Errorf("cursor = %d, want 29", m.cursor())
	}
	if m.scroll() != 25 {
		t.Errorf("scroll = %d, want 25", m.scroll())
	}

	m.goToTop()
	if m.cursor() != 0 || m.scroll() != 0 {
		t.Errorf("top = (%d, %d), want (0, 0)", m.cursor(), m.scroll())
	}
}

func TestClampCursorAfterShrink(t *testing.T) {
	m := testModel(pkg("a", ""), pkg("b", ""), pkg("c", ""))
	m.setCursor(2)

	m.installed = m.installed[:1]
	m.clampCursor()
	if m.cursor() != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor())
	}

	m.installed = nil
	m.clampCursor()
	if m.cursor() != 0 || m.scroll() != 0 {
		t.Errorf("empty list leaves cursor at (%d, %d), want (0, 0)", m.cursor(), m.scroll())
	}
}

func TestPackageRowsFilter(t *testing.T) {
	m := testModel(
		pkg("vim", "modal text editor"),
		pkg("ripgrep", "line-oriented search"),
		pkg("htop", "process viewer"),
	)

	t.Run("matches description case-insensitively", func(t *testing.T) {
		m.filterText = "SEARCH"
		rows := m.packageRows()
		if len(rows) != 1 || rows[0].Name != "ripgrep" {
			t.Errorf("rows = %v, want just ripgrep", rows)
		}
	})

	t.Run("matches name", func(t *testing.T) {
		m.filterText = "vim"
		rows := m.packageRows()
		if len(rows) != 1 || rows[0].Name != "vim" {
			t.Errorf("rows = %v, want just vim", rows)
		}
	})

	t.Run("empty filter shows everything", func(t *testing.T) {
		m.filterText = ""
		if rows := m.packageRows(); len(rows) != 3 {
			t.Errorf("got %d rows, want 3", len(rows))
		}
	})
}

func TestPackageRowsDuringSearch(t *testing.T) {
	m := testModel(pkg("vim", "modal text editor"))
	m.query = "wget"
	m.results = []backend.PackageInfo{
		{Name: "wget", Description: "network downloader", Source: "apt"},
		{Name: "wget2", Description: "successor to wget", Source: "brew"},
	}

	rows := m.packageRows()
	if len(rows) != 2 || rows[0].Name != "wget" {
		t.Fatalf("rows = %v, want the search results", rows)
	}

	m.filterText = "successor"
	rows = m.packageRows()
	if len(rows) != 1 || rows[0].Name != "wget2" {
		t.Errorf("filtered rows = %v, want just wget2", rows)
	}
}

func TestSelection(t *testing.T) {
	t.Run("empty list selects nothing", func(t *testing.T) {
		m := testModel()
		if got := m.selectedPackage(); got != nil {
			t.Errorf("selectedPackage() = %v, want nil", got)
		}
	})

	t.Run("cursor picks the row", func(t *testing.T) {
		m := testModel(pkg("a", ""), pkg("b", ""))
		m.setCursor(1)
		got := m.selectedPackage()
		if got == nil || got.Name != "b" {
			t.Errorf("selectedPackage() = %v, want b", got)
		}
	})

	t.Run("updates tab selects updates", func(t *testing.T) {
		m := testModel(pkg("a", ""))
		m.updates = []backend.PackageUpdate{
			{Name: "openssl", Current: "3.1", Candidate: "3.2", Source: "apt", Security: true},
		}
		m.tab = TabUpdates
		if got := m.selectedPackage(); got != nil {
			t.Errorf("selectedPackage() = %v on the updates tab, want nil", got)
		}
		upd := m.selectedUpdate()
		if upd == nil || upd.Name != "openssl" {
			t.Errorf("selectedUpdate() = %v, want openssl", upd)
		}
	})
}

func TestTabCycle(t *testing.T) {
	m := testModel()

	m.tab = TabSettings
	m.nextTab()
	if m.tab != TabPackages {
		t.Errorf("nextTab from Settings = %v, want Packages", m.tab)
	}

	m.prevTab()
	if m.tab != TabSettings {
		t.Errorf("prevTab from Packages = %v, want Settings", m.tab)
	}

	m.setTab(5)
	if m.tab != TabSettings {
		t.Errorf("out-of-range setTab moved to %v", m.tab)
	}
}
