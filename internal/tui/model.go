package tui

import (
	"strings"

	"github.com/0xb0urn3/pkgtool/internal/config"
	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
	"github.com/0xb0urn3/pkgtool/pkg/backend/detector"
)

// Tab identifies one of the top-level views.
type Tab int

const (
	TabPackages Tab = iota
	TabUpdates
	TabSettings
)

var tabNames = []string{"Packages", "Updates", "Settings"}

// Mode is the input mode: Normal dispatches keybindings, Editing feeds
// keystrokes to the command buffer.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
)

// Options carries everything the TUI needs from the command line
// wiring. History may be nil; mutations then go unrecorded.
type Options struct {
	Coordinator *backend.Coordinator
	Config      *config.Config
	Durations   config.Durations
	Host        detector.Host
	History     *history.Store
}

// Model holds the TUI state apart from the bubbles components.
type Model struct {
	coord    *backend.Coordinator
	registry *backend.Registry
	cfg      *config.Config
	durs     config.Durations
	host     detector.Host
	hist     *history.Store

	tab  Tab
	mode Mode

	width    int
	height   int
	ready    bool
	quitting bool

	installed  []backend.PackageInfo
	updates    []backend.PackageUpdate
	results    []backend.PackageInfo
	query      string // non-empty while the Packages tab shows search results
	filterText string

	status    string
	statusErr bool
	pending   int
	working   string // what the in-flight operation is doing

	defaultTag string

	cursors map[Tab]int
	scrolls map[Tab]int

	styles *Styles
	keys   KeyMap
}

// NewModel builds the initial state.
func NewModel(opts Options) *Model {
	registry := opts.Coordinator.Registry()
	configured := ""
	if opts.Config != nil {
		configured = opts.Config.Backends.Default
	}
	return &Model{
		coord:      opts.Coordinator,
		registry:   registry,
		cfg:        opts.Config,
		durs:       opts.Durations,
		host:       opts.Host,
		hist:       opts.History,
		defaultTag: backend.DefaultTarget(registry, configured, opts.Host.Suggested()),
		cursors:    make(map[Tab]int),
		scrolls:    make(map[Tab]int),
		styles:     DefaultStyles(),
		keys:       DefaultKeyMap(),
	}
}

func (m *Model) knownTag(tag string) bool {
	_, ok := m.registry.Get(tag)
	return ok
}

// setStatus records a one-line account of the last completed action.
func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}

// packageRows returns what the Packages tab lists: search results when
// a query is showing, the installed inventory otherwise, both narrowed
// by the filter.
func (m *Model) packageRows() []backend.PackageInfo {
	rows := m.installed
	if m.query != "" {
		rows = m.results
	}
	if m.filterText == "" {
		return rows
	}
	needle := strings.ToLower(m.filterText)
	var filtered []backend.PackageInfo
	for _, pkg := range rows {
		if strings.Contains(strings.ToLower(pkg.Name), needle) ||
			strings.Contains(strings.ToLower(pkg.Description), needle) {
			filtered = append(filtered, pkg)
		}
	}
	return filtered
}

// listLen is the row count of the current tab's list.
func (m *Model) listLen() int {
	switch m.tab {
	case TabPackages:
		return len(m.packageRows())
	case TabUpdates:
		return len(m.updates)
	default:
		return 0
	}
}

func (m *Model) cursor() int {
	return m.cursors[m.tab]
}

func (m *Model) setCursor(pos int) {
	m.cursors[m.tab] = pos
}

func (m *Model) scroll() int {
	return m.scrolls[m.tab]
}

func (m *Model) setScroll(offset int) {
	m.scrolls[m.tab] = offset
}

// visibleHeight is the number of list rows that fit between the chrome
// lines (header, tabs, title, status, footer).
func (m *Model) visibleHeight() int {
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	return h
}

// moveCursor moves the selection. Single steps wrap around the list;
// page jumps clamp at the ends.
func (m *Model) moveCursor(delta int) {
	n := m.listLen()
	if n == 0 {
		return
	}
	pos := m.cursor() + delta
	switch {
	case delta == 1 && pos >= n:
		pos = 0
	case delta == -1 && pos < 0:
		pos = n - 1
	case pos < 0:
		pos = 0
	case pos >= n:
		pos = n - 1
	}
	m.setCursor(pos)
	m.keepVisible(pos)
}

func (m *Model) keepVisible(pos int) {
	h := m.visibleHeight()
	switch s := m.scroll(); {
	case pos < s:
		m.setScroll(pos)
	case pos >= s+h:
		m.setScroll(pos - h + 1)
	}
}

func (m *Model) goToTop() {
	m.setCursor(0)
	m.setScroll(0)
}

func (m *Model) goToBottom() {
	n := m.listLen()
	if n == 0 {
		return
	}
	m.setCursor(n - 1)
	if h := m.visibleHeight(); n > h {
		m.setScroll(n - h)
	}
}

// clampCursor pulls the selection back inside the list after its
// contents changed.
func (m *Model) clampCursor() {
	n := m.listLen()
	if n == 0 {
		m.setCursor(0)
		m.setScroll(0)
		return
	}
	if m.cursor() >= n {
		m.setCursor(n - 1)
	}
	m.keepVisible(m.cursor())
}

func (m *Model) nextTab() {
	m.tab = Tab((int(m.tab) + 1) % len(tabNames))
}

func (m *Model) prevTab() {
	m.tab = Tab((int(m.tab) + len(tabNames) - 1) % len(tabNames))
}

func (m *Model) setTab(i int) {
	if i >= 0 && i < len(tabNames) {
		m.tab = Tab(i)
	}
}

// selectedPackage returns the Packages tab selection, nil when the
// list is empty or another tab is active.
func (m *Model) selectedPackage() *backend.PackageInfo {
	if m.tab != TabPackages {
		return nil
	}
	rows := m.packageRows()
	if pos := m.cursor(); pos >= 0 && pos < len(rows) {
		return &rows[pos]
	}
	return nil
}

// selectedUpdate returns the Updates tab selection.
func (m *Model) selectedUpdate() *backend.PackageUpdate {
	if m.tab != TabUpdates {
		return nil
	}
	if pos := m.cursor(); pos >= 0 && pos < len(m.updates) {
		return &m.updates[pos]
	}
	return nil
}

// parseCommand splits the command buffer into its verb and arguments.
func parseCommand(input string) (string, []string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
