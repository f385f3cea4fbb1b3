// Package tui implements the interactive terminal frontend: three tabs
// (Packages, Updates, Settings), list navigation, and a command buffer
// for the mutating verbs. Backend calls run in the background so the
// interface stays responsive while subprocesses work.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xb0urn3/pkgtool/internal/history"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

// Messages delivered by background commands.
type installedLoadedMsg struct{ result backend.InstalledResult }

type updatesLoadedMsg struct{ result backend.UpdatesResult }

type searchResultsMsg struct {
	query  string
	result backend.SearchResult
}

type operationDoneMsg struct {
	op       history.Operation
	tag      string
	packages []string
	failures []backend.BackendFailure
	err      error
}

// pendingConfirm holds a mutation awaiting a y/n answer.
type pendingConfirm struct {
	text    string
	working string
	cmd     tea.Cmd
}

// App is the bubbletea program: the Model state plus the interactive
// components layered on top of it.
type App struct {
	*Model

	spinner spinner.Model
	input   textinput.Model
	help    help.Model

	confirm *pendingConfirm
}

// NewApp assembles the program around the given wiring.
func NewApp(opts Options) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = "install vim | search editor | update | filter cli"
	ti.CharLimit = 256

	return &App{
		Model:   NewModel(opts),
		spinner: sp,
		input:   ti,
		help:    help.New(),
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init kicks off the first inventory load.
func (a *App) Init() tea.Cmd {
	a.working = "loading packages"
	return tea.Batch(a.spinner.Tick, a.issue(a.loadInstalledCmd(), a.loadUpdatesCmd()))
}

// issue counts the commands as in flight and batches them.
func (a *App) issue(cmds ...tea.Cmd) tea.Cmd {
	a.pending += len(cmds)
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.input.Width = msg.Width - 4
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		if a.confirm != nil {
			return a.updateConfirm(msg)
		}
		if a.mode == ModeEditing {
			return a.updateEditing(msg)
		}
		return a.updateNormal(msg)

	case installedLoadedMsg:
		a.pending--
		a.installed = msg.result.Packages
		a.clampCursor()
		a.noteResult(msg.result.Failures)
		return a, nil

	case updatesLoadedMsg:
		a.pending--
		a.updates = msg.result.Updates
		a.clampCursor()
		a.noteResult(msg.result.Failures)
		return a, nil

	case searchResultsMsg:
		a.pending--
		a.query = msg.query
		a.results = msg.result.Packages
		a.tab = TabPackages
		a.goToTop()
		text := fmt.Sprintf("%q: %s", msg.query, msg.result.Summary())
		if len(msg.result.Failures) > 0 {
			a.setError(text)
		} else {
			a.setStatus(text)
		}
		return a, nil

	case operationDoneMsg:
		a.pending--
		return a, a.finishOperation(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.mode == ModeEditing {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		pc := a.confirm
		a.confirm = nil
		a.working = pc.working
		return a, a.issue(pc.cmd)
	case "n", "N", "esc", "q":
		a.confirm = nil
		a.setStatus("cancelled")
	}
	return a, nil
}

func (a *App) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := strings.TrimSpace(a.input.Value())
		a.endEditing()
		return a, a.execute(line)
	case tea.KeyEsc:
		a.endEditing()
		return a, nil
	case tea.KeyCtrlC:
		a.quitting = true
		return a, tea.Quit
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		a.moveCursor(-a.visibleHeight())
	case key.Matches(msg, a.keys.PageDown):
		a.moveCursor(a.visibleHeight())
	case key.Matches(msg, a.keys.Top):
		a.goToTop()
	case key.Matches(msg, a.keys.Bottom):
		a.goToBottom()

	case key.Matches(msg, a.keys.NextTab):
		a.nextTab()
		a.clampCursor()
	case key.Matches(msg, a.keys.PrevTab):
		a.prevTab()
		a.clampCursor()
	case key.Matches(msg, a.keys.Tab1):
		a.setTab(0)
		a.clampCursor()
	case key.Matches(msg, a.keys.Tab2):
		a.setTab(1)
		a.clampCursor()
	case key.Matches(msg, a.keys.Tab3):
		a.setTab(2)
		a.clampCursor()

	case key.Matches(msg, a.keys.Refresh):
		return a, a.refresh()

	case key.Matches(msg, a.keys.Install):
		a.armInstall()
	case key.Matches(msg, a.keys.Remove):
		a.armRemove()
	case key.Matches(msg, a.keys.Update):
		a.armUpdate()

	case key.Matches(msg, a.keys.Command):
		prefill := ""
		if msg.String() == "/" {
			prefill = "search "
		}
		return a, a.beginEditing(prefill)

	case key.Matches(msg, a.keys.Cancel):
		switch {
		case a.filterText != "":
			a.filterText = ""
			a.clampCursor()
			a.setStatus("filter cleared")
		case a.query != "":
			a.query, a.results = "", nil
			a.clampCursor()
			a.setStatus("showing installed packages")
		}
	}
	return a, nil
}

func (a *App) beginEditing(prefill string) tea.Cmd {
	a.mode = ModeEditing
	a.input.Reset()
	if prefill != "" {
		a.input.SetValue(prefill)
		a.input.CursorEnd()
	}
	return a.input.Focus()
}

func (a *App) endEditing() {
	a.mode = ModeNormal
	a.input.Blur()
	a.input.Reset()
}

// armInstall readies installation of the selected package behind a
// confirmation.
func (a *App) armInstall() {
	pkg := a.selectedPackage()
	if pkg == nil {
		a.setError("nothing selected")
		return
	}
	if pkg.Installed {
		a.setStatus(fmt.Sprintf("%s is already installed", pkg.Name))
		return
	}
	a.confirm = &pendingConfirm{
		text:    fmt.Sprintf("Install %s %s via %s?", pkg.Name, pkg.Version, pkg.Source),
		working: "installing " + pkg.Name,
		cmd:     a.installCmd(pkg.Source, []string{pkg.Name}),
	}
}

func (a *App) armRemove() {
	pkg := a.selectedPackage()
	if pkg == nil {
		a.setError("nothing selected")
		return
	}
	if a.query != "" && !pkg.Installed {
		a.setError(fmt.Sprintf("%s is not installed", pkg.Name))
		return
	}
	a.confirm = &pendingConfirm{
		text:    fmt.Sprintf("Remove %s via %s?", pkg.Name, pkg.Source),
		working: "removing " + pkg.Name,
		cmd:     a.removeCmd(pkg.Source, []string{pkg.Name}),
	}
}

// armUpdate targets the selected row's backend on the Updates tab and
// every backend everywhere else.
func (a *App) armUpdate() {
	if upd := a.selectedUpdate(); upd != nil {
		a.confirm = &pendingConfirm{
			text:    fmt.Sprintf("Run a full %s upgrade?", upd.Source),
			working: "updating " + upd.Source,
			cmd:     a.updateSystemCmd(upd.Source),
		}
		return
	}
	a.confirm = &pendingConfirm{
		text:    "Update every backend?",
		working: "updating all backends",
		cmd:     a.updateAllCmd(),
	}
}

// refresh purges every backend cache and reloads whatever is showing.
func (a *App) refresh() tea.Cmd {
	backend.PurgeAll(a.registry)
	a.setStatus("")
	a.working = "refreshing"
	cmds := []tea.Cmd{a.loadInstalledCmd(), a.loadUpdatesCmd()}
	if a.query != "" {
		cmds = append(cmds, a.searchCmd(a.query))
	}
	return a.issue(cmds...)
}

// execute dispatches a submitted command line. Typed commands skip the
// confirmation overlay: spelling the verb out is the confirmation.
func (a *App) execute(line string) tea.Cmd {
	verb, args := parseCommand(line)
	switch verb {
	case "":
		return nil

	case "search":
		if len(args) == 0 {
			a.setError("usage: search <query>")
			return nil
		}
		query := strings.Join(args, " ")
		a.working = "searching " + query
		return a.issue(a.searchCmd(query))

	case "install":
		tag, pkgs, err := backend.SplitTarget(args, a.defaultTag, a.knownTag)
		if err != nil {
			a.setError("install: " + err.Error())
			return nil
		}
		a.working = "installing " + strings.Join(pkgs, " ")
		return a.issue(a.installCmd(tag, pkgs))

	case "remove":
		tag, pkgs, err := backend.SplitTarget(args, a.defaultTag, a.knownTag)
		if err != nil {
			a.setError("remove: " + err.Error())
			return nil
		}
		a.working = "removing " + strings.Join(pkgs, " ")
		return a.issue(a.removeCmd(tag, pkgs))

	case "update":
		if len(args) == 0 {
			a.working = "updating all backends"
			return a.issue(a.updateAllCmd())
		}
		tag := strings.ToLower(args[0])
		if !a.knownTag(tag) {
			a.setError(fmt.Sprintf("unknown backend %q", tag))
			return nil
		}
		a.working = "updating " + tag
		return a.issue(a.updateSystemCmd(tag))

	case "filter":
		a.filterText = strings.Join(args, " ")
		a.clampCursor()
		if a.filterText == "" {
			a.setStatus("filter cleared")
		} else {
			a.setStatus(fmt.Sprintf("filtering on %q", a.filterText))
		}
		return nil

	case "refresh":
		return a.refresh()

	case "quit", "q":
		a.quitting = true
		return tea.Quit

	default:
		a.setError(fmt.Sprintf("unknown command %q", verb))
		return nil
	}
}

// noteResult surfaces fan-out failures, or the inventory line once the
// last in-flight load lands.
func (a *App) noteResult(failures []backend.BackendFailure) {
	if len(failures) > 0 {
		a.setError("backend failures: " + strings.Join(failureTags(failures), ", "))
		return
	}
	if a.pending == 0 && !a.statusErr {
		a.setStatus(fmt.Sprintf("%d packages installed, %d updates available",
			len(a.installed), len(a.updates)))
	}
}

func (a *App) finishOperation(msg operationDoneMsg) tea.Cmd {
	switch {
	case msg.err != nil:
		a.setError(msg.err.Error())
	case len(msg.failures) > 0:
		a.setError("update finished with failures: " + strings.Join(failureTags(msg.failures), ", "))
	case len(msg.packages) > 0:
		verb := "installed"
		if msg.op == history.OpRemove {
			verb = "removed"
		}
		a.setStatus(fmt.Sprintf("%s %s via %s", verb, strings.Join(msg.packages, " "), msg.tag))
	case msg.tag == "all":
		a.setStatus("updated all backends")
	default:
		a.setStatus("updated " + msg.tag)
	}
	a.working = "reloading"
	return a.issue(a.loadInstalledCmd(), a.loadUpdatesCmd())
}

func failureTags(failures []backend.BackendFailure) []string {
	tags := make([]string, 0, len(failures))
	for _, f := range failures {
		tags = append(tags, f.Tag)
	}
	return tags
}

// Background commands. The coordinator applies its own per-call
// timeouts, so these run against the background context.

func (a *App) loadInstalledCmd() tea.Cmd {
	coord := a.coord
	return func() tea.Msg {
		return installedLoadedMsg{result: coord.Installed(context.Background())}
	}
}

func (a *App) loadUpdatesCmd() tea.Cmd {
	coord := a.coord
	return func() tea.Msg {
		return updatesLoadedMsg{result: coord.Updates(context.Background())}
	}
}

func (a *App) searchCmd(query string) tea.Cmd {
	coord := a.coord
	return func() tea.Msg {
		return searchResultsMsg{query: query, result: coord.Search(context.Background(), query)}
	}
}

func (a *App) installCmd(tag string, pkgs []string) tea.Cmd {
	coord, hist := a.coord, a.hist
	return func() tea.Msg {
		err := coord.Install(context.Background(), tag, pkgs)
		recordHistory(hist, history.OpInstall, tag, pkgs, err)
		return operationDoneMsg{op: history.OpInstall, tag: tag, packages: pkgs, err: err}
	}
}

func (a *App) removeCmd(tag string, pkgs []string) tea.Cmd {
	coord, hist := a.coord, a.hist
	return func() tea.Msg {
		err := coord.Remove(context.Background(), tag, pkgs)
		recordHistory(hist, history.OpRemove, tag, pkgs, err)
		return operationDoneMsg{op: history.OpRemove, tag: tag, packages: pkgs, err: err}
	}
}

func (a *App) updateSystemCmd(tag string) tea.Cmd {
	coord, hist := a.coord, a.hist
	return func() tea.Msg {
		err := coord.UpdateSystem(context.Background(), tag)
		recordHistory(hist, history.OpUpdate, tag, nil, err)
		return operationDoneMsg{op: history.OpUpdate, tag: tag, err: err}
	}
}

func (a *App) updateAllCmd() tea.Cmd {
	coord, hist := a.coord, a.hist
	return func() tea.Msg {
		failures := coord.UpdateAll(context.Background())
		var err error
		switch len(failures) {
		case 0:
		case 1:
			err = failures[0].Err
		default:
			err = fmt.Errorf("%d backends failed", len(failures))
		}
		recordHistory(hist, history.OpUpdate, "all", nil, err)
		return operationDoneMsg{op: history.OpUpdate, tag: "all", failures: failures}
	}
}

// recordHistory is a no-op without a store so the TUI can run with
// history disabled.
func recordHistory(store *history.Store, op history.Operation, tag string, pkgs []string, err error) {
	if store == nil {
		return
	}
	entry := history.NewEntry(op, tag, pkgs)
	if err != nil {
		entry.MarkFailed(err)
	} else {
		entry.MarkSuccess()
	}
	_ = store.Record(entry)
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if !a.ready {
		return "starting..."
	}
	if a.confirm != nil {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.renderConfirm())
	}

	top := strings.Join([]string{a.renderHeader(), a.renderTabs(), a.renderContent()}, "\n")
	footer := a.renderFooter()

	pad := a.height - lipgloss.Height(top) - lipgloss.Height(footer)
	if pad < 1 {
		pad = 1
	}
	return top + strings.Repeat("\n", pad) + footer
}

func (a *App) renderHeader() string {
	left := a.styles.Title.Render("pkgtool")
	if a.host.PrettyName != "" {
		left += " " + a.styles.Muted.Render(a.host.PrettyName)
	}
	var right string
	if a.pending > 0 {
		right = a.spinner.View() + " " + a.styles.Muted.Render(a.working)
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

func (a *App) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		label := fmt.Sprintf("[%d] %s", i+1, name)
		if Tab(i) == TabUpdates && len(a.updates) > 0 {
			label = fmt.Sprintf("%s (%d)", label, len(a.updates))
		}
		style := a.styles.TabInactive
		if Tab(i) == a.tab {
			style = a.styles.TabActive
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderContent() string {
	switch a.tab {
	case TabUpdates:
		return a.renderUpdates()
	case TabSettings:
		return a.renderSettings()
	default:
		return a.renderPackages()
	}
}

func (a *App) renderPackages() string {
	rows := a.packageRows()

	title := fmt.Sprintf("Installed (%d)", len(rows))
	if a.query != "" {
		title = fmt.Sprintf("Results for %q (%d)", a.query, len(rows))
	}
	if a.filterText != "" {
		title += a.styles.Muted.Render(fmt.Sprintf("  filter: %s", a.filterText))
	}

	var b strings.Builder
	b.WriteString(" " + a.styles.Subtitle.Render(title) + "\n")

	if len(rows) == 0 {
		b.WriteString(a.styles.Muted.Render("  nothing to show"))
		return b.String()
	}

	start := a.scroll()
	end := start + a.visibleHeight()
	if end > len(rows) {
		end = len(rows)
	}
	for i := start; i < end; i++ {
		b.WriteString(a.renderPackageRow(rows[i], i == a.cursor()))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *App) renderPackageRow(pkg backend.PackageInfo, selected bool) string {
	marker := "  "
	name := a.styles.Name.Render(pkg.Name)
	if selected {
		marker = a.styles.Selected.Render("> ")
		name = a.styles.Selected.Render(pkg.Name)
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(SourceBadge(pkg.Source))
	b.WriteString(" ")
	b.WriteString(name)
	if pkg.Version != "" {
		b.WriteString(" " + a.styles.Version.Render(pkg.Version))
	}
	if a.query != "" && pkg.Installed {
		b.WriteString(" " + a.styles.Success.Render("[installed]"))
	}
	if pkg.Description != "" {
		b.WriteString("  " + a.styles.Muted.Render(clip(pkg.Description, 60)))
	}
	return b.String()
}

func (a *App) renderUpdates() string {
	var b strings.Builder
	b.WriteString(" " + a.styles.Subtitle.Render(fmt.Sprintf("Available updates (%d)", len(a.updates))) + "\n")

	if len(a.updates) == 0 {
		b.WriteString(a.styles.Muted.Render("  everything is up to date"))
		return b.String()
	}

	start := a.scroll()
	end := start + a.visibleHeight()
	if end > len(a.updates) {
		end = len(a.updates)
	}
	for i := start; i < end; i++ {
		upd := a.updates[i]
		marker := "  "
		name := a.styles.Name.Render(upd.Name)
		if i == a.cursor() {
			marker = a.styles.Selected.Render("> ")
			name = a.styles.Selected.Render(upd.Name)
		}
		b.WriteString(marker)
		b.WriteString(SourceBadge(upd.Source))
		b.WriteString(" " + name)
		b.WriteString(" " + a.styles.Muted.Render(upd.Current))
		b.WriteString(" -> " + a.styles.Version.Render(upd.Candidate))
		if upd.Security {
			b.WriteString(" " + a.styles.Security.Render("[security]"))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *App) renderSettings() string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(fmt.Sprintf("  %s %s\n", a.styles.Muted.Render(label+":"), value))
	}

	b.WriteString(" " + a.styles.Subtitle.Render("Host") + "\n")
	line("system", a.host.OS+"/"+a.host.Arch)
	if a.host.PrettyName != "" {
		line("distro", a.host.PrettyName)
	}
	if len(a.host.Family) > 0 {
		line("family", strings.Join(a.host.Family, ", "))
	}

	b.WriteString("\n " + a.styles.Subtitle.Render("Backends") + "\n")
	for _, tag := range a.registry.Tags() {
		suffix := ""
		if tag == a.defaultTag {
			suffix = "  " + a.styles.Muted.Render("default target")
		}
		b.WriteString("  " + SourceBadge(tag) + suffix + "\n")
	}
	for _, f := range a.registry.InitFailures() {
		b.WriteString("  " + a.styles.Error.Render(f.Tag) + " " +
			a.styles.Muted.Render(clip(f.Err.Error(), 60)) + "\n")
	}

	b.WriteString("\n " + a.styles.Subtitle.Render("Configuration") + "\n")
	cache := "disabled"
	if a.durs.CacheTTL > 0 {
		cache = a.durs.CacheTTL.String()
	}
	line("cache ttl", cache)
	line("read timeout", a.durs.Read.String())
	line("mutate timeout", a.durs.Mutate.String())
	hist := "disabled"
	if a.hist != nil {
		hist = "enabled"
	}
	line("history", hist)
	return b.String()
}

func (a *App) renderFooter() string {
	var status string
	switch {
	case a.mode == ModeEditing:
		status = a.input.View()
	case a.statusErr:
		status = a.styles.Error.Render(a.status)
	default:
		status = a.status
	}
	return a.styles.StatusBar.Render(status) + "\n" + a.styles.Footer.Render(a.help.View(a.keys))
}

func (a *App) renderConfirm() string {
	content := a.styles.DialogTitle.Render("Confirm") + "\n" +
		a.confirm.text + "\n\n" +
		a.styles.Muted.Render("y: proceed   n: cancel")
	return a.styles.Dialog.Render(content)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
