// Package tui provides a Bubble Tea terminal user interface for confwatch.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halfdome/confwatch/internal/config"
	"github.com/halfdome/confwatch/internal/directory"
	"github.com/halfdome/confwatch/internal/favorites"
	"github.com/halfdome/confwatch/internal/model"
	"github.com/halfdome/confwatch/internal/notify"
	"github.com/halfdome/confwatch/internal/store"
	"github.com/halfdome/confwatch/internal/toast"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateBrowse
	StateError
)

// Tab identifies one of the top-level views.
type Tab int

const (
	TabDirectory Tab = iota
	TabSaved
	TabSettings
)

// toastPayload is one reminder captured during a scan command, waiting to
// be shown by the Update loop.
type toastPayload struct {
	title string
	body  string
}

// eventSink collects scanner output emitted on a command goroutine. The
// Update loop drains it after the scan's completion message arrives, so
// the presenter and log pane are only ever touched from the event loop.
type eventSink struct {
	mu     sync.Mutex
	toasts []toastPayload
	events []notify.Event
}

func (s *eventSink) addToast(title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, toastPayload{title: title, body: body})
}

func (s *eventSink) addEvent(e notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) drain() ([]toastPayload, []notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	toasts, events := s.toasts, s.events
	s.toasts, s.events = nil, nil
	return toasts, events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state State
	tab   Tab

	table      table.Model
	filter     textinput.Model
	thresholds textinput.Model
	spinner    spinner.Model

	filtering bool
	editing   bool
	compact   bool

	// Engine collaborators
	appSettings   *config.Settings
	configPath    string
	store         *store.Store
	favorites     *favorites.Manager
	notifier      notify.Notifier
	scanner       *notify.Scanner
	sink          *eventSink
	presenter     *toast.Presenter
	notifSettings notify.Settings

	// Countdown state
	confs    []model.Conference
	visible  []model.Conference
	bindings *bindingSet
	marked   map[string]bool
	now      func() time.Time

	logs []notify.Event
	err  error

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a new TUI model wired to the given application settings.
func NewModel(settings *config.Settings, configPath string) Model {
	st := store.Open(settings.StoreDir())
	fav := favorites.NewManager(st)
	notifier := notify.NewDesktopNotifier(settings.ToPermission())
	sink := &eventSink{}
	scanner := notify.NewScanner(st, fav, notifier, sink.addToast, sink.addEvent)

	filter := textinput.New()
	filter.Placeholder = "conference name"
	filter.CharLimit = 60
	filter.Width = 30

	thresholds := textinput.New()
	thresholds.Placeholder = "14, 7, 3, 1"
	thresholds.CharLimit = 40
	thresholds.Width = 24

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	tbl := table.New(
		table.WithColumns(boardColumns(28)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(lipgloss.Color("#4ECDC4")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#6C757D")).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#1A1B26")).
		Background(lipgloss.Color("#F8B500"))
	tbl.SetStyles(styles)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:         StateLoading,
		tab:           TabDirectory,
		table:         tbl,
		filter:        filter,
		thresholds:    thresholds,
		spinner:       sp,
		appSettings:   settings,
		configPath:    configPath,
		store:         st,
		favorites:     fav,
		notifier:      notifier,
		scanner:       scanner,
		sink:          sink,
		presenter:     toast.NewPresenter(),
		notifSettings: notify.LoadSettings(st),
		bindings:      newBindingSet(),
		marked:        make(map[string]bool),
		compact:       settings.CompactCountdowns,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadDirectory(), m.tick())
}

// Message types
type (
	// tickMsg drives countdown refresh and toast expiry once per second.
	tickMsg time.Time

	// loadedMsg is sent when the conference directory finishes loading.
	loadedMsg struct {
		result *directory.Result
		err    error
	}

	// scanDoneMsg is sent when a reminder scan command completes.
	scanDoneMsg struct {
		delivered int
		err       error
	}

	// permissionMsg is sent when a permission request completes.
	permissionMsg struct {
		perm notify.Permission
		err  error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case tea.KeyMsg:
		// Text-entry modes capture most keys.
		if m.filtering {
			switch msg.String() {
			case "ctrl+c":
				m.cancel()
				return m, tea.Quit
			case "enter":
				m.filtering = false
				m.filter.Blur()
			case "esc":
				m.filtering = false
				m.filter.SetValue("")
				m.filter.Blur()
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				cmds = append(cmds, cmd)
			}
			m.refreshRows()
			return m, tea.Batch(cmds...)
		}
		if m.editing {
			switch msg.String() {
			case "ctrl+c":
				m.cancel()
				return m, tea.Quit
			case "enter":
				m.applyThresholdEdit()
			case "esc":
				m.editing = false
				m.thresholds.Blur()
			default:
				var cmd tea.Cmd
				m.thresholds, cmd = m.thresholds.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit

		case "tab":
			m.tab = (m.tab + 1) % 3
			m.refreshRows()

		case "1":
			m.tab = TabDirectory
			m.refreshRows()

		case "2":
			m.tab = TabSaved
			m.refreshRows()

		case "3":
			m.tab = TabSettings

		case "/":
			if m.state == StateBrowse && m.tab != TabSettings {
				m.filtering = true
				cmds = append(cmds, m.filter.Focus())
			}

		case "v":
			m.compact = !m.compact
			m.refreshRows()

		case "s":
			if m.tab != TabSettings {
				m.toggleSave()
			}

		case "m":
			if m.tab != TabSettings {
				if cmd := m.markForQuickCheck(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}

		case "r":
			if m.state == StateBrowse {
				cmds = append(cmds, m.rescan())
			}

		case "x":
			if notices := m.presenter.Visible(); len(notices) > 0 {
				m.presenter.Dismiss(notices[0].ID)
			}

		case "e":
			if m.tab == TabSettings {
				m.toggleEnabled()
			}

		case "p":
			if m.tab == TabSettings {
				cmds = append(cmds, m.requestPermission())
			}

		case "enter":
			if m.tab == TabSettings {
				m.editing = true
				m.thresholds.SetValue(notify.FormatDays(m.notifSettings.Days))
				cmds = append(cmds, m.thresholds.Focus())
			}
		}

	case spinner.TickMsg:
		if m.state == StateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tickMsg:
		m.presenter.Expire(time.Time(msg))
		m.refreshRows()
		cmds = append(cmds, m.tick())

	case loadedMsg:
		if msg.err != nil {
			m.state = StateError
			m.err = msg.err
			return m, nil
		}
		confs := msg.result.Conferences
		model.SortByDeadline(confs)
		m.confs = confs
		for _, w := range msg.result.Warnings {
			m.appendLog(notify.Event{Message: w, Level: notify.LevelWarning})
		}
		m.state = StateBrowse
		m.refreshRows()

	case scanDoneMsg:
		toasts, events := m.sink.drain()
		for _, t := range toasts {
			m.showToast(t.title, t.body, toast.SeverityInfo)
		}
		for _, e := range events {
			m.appendLog(e)
		}
		if msg.err != nil {
			m.appendLog(notify.Event{Message: msg.err.Error(), Level: notify.LevelError})
		}
		m.refreshRows()

	case permissionMsg:
		m.appSettings.SetPermission(msg.perm)
		if err := m.appSettings.Save(m.configPath); err != nil {
			m.showToast("Settings", "Could not save the config file", toast.SeverityWarning)
		}
		if msg.err != nil {
			m.showToast("Desktop notifications", "Unavailable on this system, reminders stay in the app", toast.SeverityWarning)
			m.appendLog(notify.Event{Message: msg.err.Error(), Level: notify.LevelWarning})
		} else {
			m.showToast("Desktop notifications", "Enabled", toast.SeveritySuccess)
		}
	}

	// Arrow keys and paging go to the table while a board tab is active.
	if m.state == StateBrowse && m.tab != TabSettings && !m.filtering {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tick arms the single recurring one-second countdown tick.
func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📅 confwatch"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("CFP deadline countdowns for your conference shortlist"))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StateError:
		b.WriteString(m.viewError())
	default:
		b.WriteString(m.viewTabs())
		b.WriteString("\n\n")
		if m.tab == TabSettings {
			b.WriteString(m.viewSettings())
		} else {
			b.WriteString(m.viewBoard())
		}
	}

	if logs := m.renderLogs(); logs != "" {
		b.WriteString("\n")
		b.WriteString(logs)
	}
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewLoading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Loading conference data from %s...", m.appSettings.DataPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewTabs() string {
	labels := []string{
		fmt.Sprintf("Directory (%d)", len(m.confs)),
		fmt.Sprintf("Saved (%d)", m.favorites.Count()),
		"Settings",
	}

	parts := make([]string, len(labels))
	for i, label := range labels {
		if Tab(i) == m.tab {
			parts[i] = activeTabStyle.Render(label)
		} else {
			parts[i] = dimStyle.Render(label)
		}
	}
	return strings.Join(parts, dimStyle.Render("  │  "))
}

func (m Model) viewBoard() string {
	var b strings.Builder

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(subtitleStyle.Render("Filter: "))
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		if m.tab == TabSaved && m.favorites.Count() == 0 {
			b.WriteString(dimStyle.Render("No saved conferences yet. Press s on a directory row to save one."))
		} else {
			b.WriteString(dimStyle.Render("No conferences match."))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewSettings() string {
	var b strings.Builder

	enabled := "[ ]"
	if m.notifSettings.Enabled {
		enabled = "[×]"
	}

	b.WriteString(subtitleStyle.Render("Deadline reminders"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s Enabled (e)\n", enabled))

	if m.editing {
		b.WriteString("  Thresholds: ")
		b.WriteString(m.thresholds.View())
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("  Thresholds: %s days before the deadline\n", notify.FormatDays(m.notifSettings.Days)))
	}

	b.WriteString(fmt.Sprintf("  Desktop channel: %s\n", m.notifier.Permission()))
	b.WriteString("\n")

	if m.store.Available() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Profile: %s", m.appSettings.ProfileDir)))
	} else {
		b.WriteString(warningStyle.Render("Profile directory unavailable, changes last until quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case notify.LevelError:
			style = errorStyle
			prefix = "✗"
		case notify.LevelWarning:
			style = warningStyle
			prefix = "!"
		case notify.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case notify.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderToasts() string {
	notices := m.presenter.Visible()
	if len(notices) == 0 {
		return ""
	}

	var b strings.Builder
	for _, n := range notices {
		line := n.Title
		if n.Body != "" {
			line += ": " + n.Body
		}
		b.WriteString(toastStyle.BorderForeground(severityColor(n.Severity)).Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

func severityColor(s toast.Severity) lipgloss.Color {
	switch s {
	case toast.SeveritySuccess:
		return lipgloss.Color("#95E1A3")
	case toast.SeverityWarning:
		return lipgloss.Color("#FFE66D")
	case toast.SeverityError:
		return lipgloss.Color("#FF6B6B")
	default:
		return lipgloss.Color("#A8DADC")
	}
}

func (m Model) getHelpText() string {
	switch {
	case m.state == StateLoading, m.state == StateError:
		return "q: quit"
	case m.filtering:
		return "enter: apply • esc: clear"
	case m.editing:
		return "enter: save • esc: cancel"
	case m.tab == TabSettings:
		return "e: toggle • enter: edit thresholds • p: request permission • tab: switch view • q: quit"
	default:
		return "s: save • m: quick check • r: rescan • v: density • /: filter • x: dismiss • tab: switch view • q: quit"
	}
}

// refreshRows rebuilds the table from the rows currently visible. Called on
// every tick and after anything that changes the visible set, so countdown
// cells always reflect live state.
func (m *Model) refreshRows() {
	if m.state != StateBrowse || m.tab == TabSettings {
		return
	}

	now := m.now()
	confs := m.visibleConfs()
	rows := make([]table.Row, 0, len(confs))
	for _, conf := range confs {
		rows = append(rows, table.Row{
			m.rowFlags(conf),
			conf.Name,
			m.bindings.cell(conf, now, m.compact),
			deadlineLabel(conf),
			conf.Place,
		})
	}

	m.visible = confs
	m.table.SetRows(rows)
	if cursor := m.table.Cursor(); len(rows) > 0 && (cursor < 0 || cursor >= len(rows)) {
		m.table.SetCursor(0)
	}
}

// visibleConfs derives the conference list for the active tab and filter.
func (m *Model) visibleConfs() []model.Conference {
	var confs []model.Conference
	if m.tab == TabSaved {
		for _, sc := range m.favorites.List() {
			confs = append(confs, sc.Conference)
		}
		model.SortByDeadline(confs)
	} else {
		confs = m.confs
	}

	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		return confs
	}

	var out []model.Conference
	for _, conf := range confs {
		if strings.Contains(strings.ToLower(conf.Name), query) ||
			strings.Contains(strings.ToLower(conf.Place), query) {
			out = append(out, conf)
		}
	}
	return out
}

func (m *Model) rowFlags(conf model.Conference) string {
	flags := " "
	if m.favorites.IsSaved(conf.ID) {
		flags = "★"
	}
	if m.marked[conf.ID] {
		flags += "•"
	}
	return flags
}

func (m *Model) selectedConf() (model.Conference, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return model.Conference{}, false
	}
	return m.visible[cursor], true
}

// toggleSave flips the favorite state of the selected row. Persistence is
// best-effort here; only the explicit settings save surfaces failures.
func (m *Model) toggleSave() {
	conf, ok := m.selectedConf()
	if !ok {
		return
	}

	if m.favorites.IsSaved(conf.ID) {
		_ = m.favorites.Remove(conf.ID)
		m.showToast(conf.Name, "Removed from saved conferences", toast.SeverityInfo)
	} else {
		_ = m.favorites.Add(conf)
		m.showToast(conf.Name, "Saved", toast.SeveritySuccess)
	}
	m.refreshRows()
}

// markForQuickCheck adds the selected row to the session's quick list and
// kicks off a scan over everything marked so far.
func (m *Model) markForQuickCheck() tea.Cmd {
	conf, ok := m.selectedConf()
	if !ok {
		return nil
	}
	m.marked[conf.ID] = true
	m.refreshRows()

	// Marked rows can come from either tab; saved entries may no longer be
	// in the directory, so collect from both and dedup.
	listed := make([]model.Conference, 0, len(m.marked))
	seen := make(map[string]bool, len(m.marked))
	for _, c := range m.confs {
		if m.marked[c.ID] && !seen[c.ID] {
			listed = append(listed, c)
			seen[c.ID] = true
		}
	}
	for _, sc := range m.favorites.List() {
		if m.marked[sc.ID] && !seen[sc.ID] {
			listed = append(listed, sc.Conference)
			seen[sc.ID] = true
		}
	}

	ctx, scanner := m.ctx, m.scanner
	return func() tea.Msg {
		delivered, err := scanner.CheckListed(ctx, listed)
		return scanDoneMsg{delivered: delivered, err: err}
	}
}

// rescan runs a full pass over the saved conferences.
func (m *Model) rescan() tea.Cmd {
	ctx, scanner := m.ctx, m.scanner
	return func() tea.Msg {
		delivered, err := scanner.CheckUpcoming(ctx)
		return scanDoneMsg{delivered: delivered, err: err}
	}
}

// requestPermission asks the desktop channel for consent. Only ever
// triggered by the settings-view key, never by a scan.
func (m *Model) requestPermission() tea.Cmd {
	notifier := m.notifier
	return func() tea.Msg {
		perm, err := notifier.RequestPermission()
		return permissionMsg{perm: perm, err: err}
	}
}

// loadDirectory reads the conference data in the background.
func (m *Model) loadDirectory() tea.Cmd {
	ctx, path := m.ctx, m.appSettings.DataPath
	return func() tea.Msg {
		result, err := directory.Load(ctx, path)
		return loadedMsg{result: result, err: err}
	}
}

// applyThresholdEdit parses and saves the edited reminder thresholds. A
// failed persist still applies for the session and surfaces a toast, per
// the explicit-settings-save error contract.
func (m *Model) applyThresholdEdit() {
	days, err := notify.ParseDays(m.thresholds.Value())
	if err != nil {
		m.showToast("Notification settings", err.Error(), toast.SeverityError)
		return
	}

	saved, err := notify.SaveSettings(m.store, notify.Settings{Enabled: m.notifSettings.Enabled, Days: days})
	m.notifSettings = saved
	if err != nil {
		m.showToast("Notification settings", "Could not save, changes last until quit", toast.SeverityError)
	} else {
		m.showToast("Notification settings", "Saved", toast.SeveritySuccess)
	}
	m.editing = false
	m.thresholds.Blur()
}

func (m *Model) toggleEnabled() {
	next := m.notifSettings
	next.Enabled = !next.Enabled

	saved, err := notify.SaveSettings(m.store, next)
	m.notifSettings = saved
	if err != nil {
		m.showToast("Notification settings", "Could not save, changes last until quit", toast.SeverityError)
	}
}

func (m *Model) showToast(title, body string, severity toast.Severity) {
	m.presenter.Show(toast.Notice{Title: title, Body: body, Severity: severity}, m.now())
}

// appendLog keeps the last few non-verbose events for the log pane.
func (m *Model) appendLog(e notify.Event) {
	if e.Level == notify.LevelVerbose {
		return
	}
	m.logs = append(m.logs, e)
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

func (m *Model) resizeTable() {
	height := m.height - 14
	if height < 5 {
		height = 5
	}
	m.table.SetHeight(height)

	name := m.width - 78
	if name < 24 {
		name = 24
	}
	m.table.SetColumns(boardColumns(name))
}

func boardColumns(nameWidth int) []table.Column {
	return []table.Column{
		{Title: " ", Width: 2},
		{Title: "Conference", Width: nameWidth},
		{Title: "CFP closes in", Width: 24},
		{Title: "Deadline", Width: 21},
		{Title: "Where", Width: 18},
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, configPath string) error {
	p := tea.NewProgram(NewModel(settings, configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
