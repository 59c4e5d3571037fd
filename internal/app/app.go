package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/nhle/notification-center/internal/alert"
	"github.com/nhle/notification-center/internal/keys"
	"github.com/nhle/notification-center/internal/logger"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/session"
	"github.com/nhle/notification-center/internal/source"
	"github.com/nhle/notification-center/internal/store"
	appsync "github.com/nhle/notification-center/internal/sync"
	"github.com/nhle/notification-center/internal/theme"
	"github.com/nhle/notification-center/internal/ui"
	"github.com/nhle/notification-center/internal/ui/command"
	"github.com/nhle/notification-center/internal/ui/detail"
	"github.com/nhle/notification-center/internal/ui/filterform"
	helpview "github.com/nhle/notification-center/internal/ui/help"
	"github.com/nhle/notification-center/internal/ui/history"
	"github.com/nhle/notification-center/internal/ui/notiflist"
	"github.com/nhle/notification-center/internal/ui/settings"
	statsview "github.com/nhle/notification-center/internal/ui/stats"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewFilter
	ViewStats
	ViewHistory
	ViewSettings
	ViewHelp
	ViewCommand
)

// openSettingsMsg opens the settings form from Init, where the model
// cannot be mutated directly.
type openSettingsMsg struct {
	firstRun bool
}

// Options are the collaborators the root model is built from.
type Options struct {
	Config *model.AppConfig
	Token  string

	// Source is nil until a base URL is configured; the settings form is
	// shown first in that case.
	Source source.Source

	// Store holds the sync journal. It may be nil.
	Store store.Store

	// Alert plays the arrival tone. It may be nil.
	Alert *alert.Trigger

	// Connect builds a Source for the given configuration and token.
	Connect func(cfg model.AppConfig, token string) source.Source

	// Persist saves the configuration and the token.
	Persist func(cfg model.AppConfig, token string) error

	// BellOut receives the terminal bell when no audio player is found.
	BellOut io.Writer

	Logger zerolog.Logger
}

// Model is the root Bubble Tea model. It routes messages between views and
// is the only place the session is mutated.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	ready        bool
	firstRun     bool

	cfg     *model.AppConfig
	token   string
	src     source.Source
	connect func(cfg model.AppConfig, token string) source.Source
	bellOut io.Writer
	log     zerolog.Logger

	session *session.Session
	poller  *appsync.Poller
	alert   *alert.Trigger
	journal *journal
	spinner spinner.Model

	list         notiflist.Model
	detail       detail.Model
	filterView   filterform.Model
	statsView    statsview.Model
	historyView  history.Model
	settingsView settings.Model
	helpView     helpview.Model
	commandView  command.Model
}

// New creates the root application model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	bellOut := opts.BellOut
	if bellOut == nil {
		bellOut = os.Stderr
	}
	k := keys.DefaultKeyMap()

	var alerter session.Alerter
	if opts.Alert != nil {
		alerter = opts.Alert
	}

	p := appsync.New(opts.Source, appsync.Options{
		Period:       cfg.RefreshInterval(),
		Limit:        cfg.Refresh.Limit,
		FetchTimeout: cfg.APITimeout(),
		Enabled:      cfg.Refresh.Auto,
		Logger:       logger.Component(opts.Logger, "poller"),
	})

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.HeaderStyle

	m := Model{
		currentView: ViewList,
		keys:        k,
		cfg:         cfg,
		token:       opts.Token,
		src:         opts.Source,
		connect:     opts.Connect,
		bellOut:     bellOut,
		log:         logger.Component(opts.Logger, "app"),
		session:     session.New(alerter, cfg.Alert.Sound),
		poller:      p,
		alert:       opts.Alert,
		journal:     newJournal(opts.Store, cfg.History.Keep, logger.Component(opts.Logger, "journal")),
		spinner:     sp,
		list:        notiflist.New(k, 80, 24),
		detail:      detail.New(k, 80, 24),
		filterView:  filterform.New(80, 24),
		statsView:   statsview.New(80, 24),
		historyView: history.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
	m.settingsView = settings.New(settings.Deps{
		Validate: m.validateConnection,
		Persist:  opts.Persist,
	}, 80, 24)

	if opts.Source == nil {
		m.currentView = ViewSettings
		m.firstRun = true
	}
	return m
}

// Init starts listening for poll results, performs the initial fetch and
// schedules the periodic loop.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.poller.WaitForNextResult(), m.spinner.Tick}
	if m.firstRun {
		cmds = append(cmds, func() tea.Msg { return openSettingsMsg{firstRun: true} })
		return tea.Batch(cmds...)
	}
	m.poller.RefreshNow()
	m.poller.Start()
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncLayout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height).WithError(m.session.Err() != "")
		m.ready = true
		m.resizeViews()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.currentView == ViewSettings {
			m.settingsView, cmd = m.settingsView.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case openSettingsMsg:
		return m, m.openSettings(msg.firstRun)

	case appsync.SnapshotMsg:
		return m, tea.Batch(m.applySnapshot(msg), m.poller.WaitForNextResult())

	case appsync.StatsMsg:
		return m, tea.Batch(m.applyStats(msg), m.poller.WaitForNextResult())

	case actionResultMsg:
		return m, m.handleActionResult(msg)

	case testCreatedMsg:
		return m, m.handleTestCreated(msg)

	case refreshSnapshotMsg:
		m.poller.RefreshSnapshot()
		return m, nil

	case ConfigReloadedMsg:
		return m, m.handleConfigReload(msg)

	case notiflist.SelectedNotificationMsg:
		n, ok := m.session.Find(msg.ID)
		if !ok {
			return m, nil
		}
		m.detail.SetNotification(n)
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, nil

	case detail.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case filterform.AppliedMsg:
		m.session.SetFilter(msg.Filter)
		m.currentView = ViewList
		return m, m.refreshList()

	case filterform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case history.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case history.BackMsg:
		m.currentView = ViewList
		return m, nil

	case settings.SavedMsg:
		return m, m.handleSettingsSaved(msg)

	case settings.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(command.Command(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleKey processes global shortcuts. Views with text input receive
// every key untouched.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch m.currentView {
	case ViewFilter, ViewSettings, ViewCommand:
		return m, nil, false

	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewStats:
		if key.Matches(msg, m.keys.Stats) || key.Matches(msg, m.keys.Back) {
			m.currentView = ViewList
			return m, nil, true
		}
		return m, nil, false

	case ViewDetail, ViewHistory:
		switch {
		case key.Matches(msg, m.keys.Help):
			return m.openHelp(), nil, true
		case key.Matches(msg, m.keys.Command):
			next, cmd := m.openCommand()
			return next, cmd, true
		case key.Matches(msg, m.keys.DismissError):
			m.session.DismissError()
			return m, nil, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true

	case key.Matches(msg, m.keys.Help):
		return m.openHelp(), nil, true

	case key.Matches(msg, m.keys.Command):
		next, cmd := m.openCommand()
		return next, cmd, true

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.list.Selected()
		if !ok {
			return m, nil, true
		}
		return m, m.markRead(n.ID), true

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead(), true

	case key.Matches(msg, m.keys.Refresh):
		m.poller.RefreshNow()
		return m, nil, true

	case key.Matches(msg, m.keys.AutoRefresh):
		m.poller.Toggle()
		return m, nil, true

	case key.Matches(msg, m.keys.Sound):
		m.session.ToggleSound()
		return m, nil, true

	case key.Matches(msg, m.keys.UnreadOnly):
		m.session.ToggleUnreadOnly()
		return m, m.refreshList(), true

	case key.Matches(msg, m.keys.Filter):
		m.previousView = m.currentView
		m.currentView = ViewFilter
		return m, m.filterView.Start(m.session.Filter(), m.session.Types(), m.session.Severities()), true

	case key.Matches(msg, m.keys.ClearFilters):
		m.session.ClearFilters()
		return m, m.refreshList(), true

	case key.Matches(msg, m.keys.CreateTest):
		return m, m.createTest(""), true

	case key.Matches(msg, m.keys.DismissError):
		m.session.DismissError()
		return m, nil, true

	case key.Matches(msg, m.keys.Stats):
		m.currentView = ViewStats
		return m, nil, true

	case key.Matches(msg, m.keys.History):
		next, cmd := m.openHistory()
		return next, cmd, true

	case key.Matches(msg, m.keys.Settings):
		return m, m.openSettings(false), true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewFilter:
		m.filterView, cmd = m.filterView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

func (m Model) openHelp() Model {
	st := m.poller.Status()
	m.helpView.SetInfo(
		"API: "+m.cfg.API.BaseURL,
		fmt.Sprintf("Refresh every %s (auto %s)", st.Period, onOff(st.Enabled)),
		"Sound: "+onOff(m.session.SoundEnabled()),
	)
	if m.currentView != ViewHelp {
		m.previousView = m.currentView
	}
	m.currentView = ViewHelp
	return m
}

func (m Model) openCommand() (Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewCommand
	return m, m.commandView.Focus()
}

func (m Model) openHistory() (Model, tea.Cmd) {
	m.currentView = ViewHistory
	return m, m.journal.load()
}

func (m *Model) openSettings(firstRun bool) tea.Cmd {
	m.currentView = ViewSettings
	return m.settingsView.Start(*m.cfg, m.token, firstRun)
}

func (m *Model) quit() tea.Cmd {
	m.poller.Stop()
	return tea.Quit
}

// Shutdown stops the periodic loop. It is safe to call after quit.
func (m Model) Shutdown() {
	m.poller.Stop()
}

// refreshList pushes the filtered collection to the list view and keeps an
// open detail view in sync with local read changes.
func (m *Model) refreshList() tea.Cmd {
	if m.currentView == ViewDetail {
		if n, ok := m.session.Find(m.detail.NotificationID()); ok {
			m.detail.SetNotification(n)
		}
	}
	return m.list.SetNotifications(m.session.View(), !m.session.Filter().IsNeutral())
}

// syncLayout reserves or frees the error line as the error slot changes.
func (m *Model) syncLayout() {
	if !m.ready {
		return
	}
	l := m.layout.WithError(m.session.Err() != "")
	if l.ErrorHeight == m.layout.ErrorHeight {
		return
	}
	m.layout = l
	m.resizeViews()
}

func (m *Model) resizeViews() {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.list.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.filterView.SetSize(w, h)
	m.statsView.SetSize(w, h)
	m.historyView.SetSize(w, h)
	m.settingsView.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "🔔 Notifications"
	if unread := m.session.UnreadCount(); unread > 0 {
		title += " " + theme.BadgeStyle.Render(fmt.Sprintf("%d unread", unread))
	}
	header := m.layout.RenderHeader(title, m.syncStatus())

	errLine := ""
	if msg := m.session.Err(); msg != "" {
		errLine = m.layout.RenderErrorLine(msg + "  (e to dismiss)")
	}

	return m.layout.RenderWithFrame(header, errLine, m.renderContent(), m.layout.RenderStatusBar(m.keyHints()))
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.list.View()
	case ViewDetail:
		return m.detail.View()
	case ViewFilter:
		return m.filterView.View()
	case ViewStats:
		return m.statsView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus describes the poller and the sound flag for the header.
func (m Model) syncStatus() string {
	st := m.poller.Status()
	var parts []string

	switch st.State {
	case appsync.SyncRunning:
		parts = append(parts, m.spinner.View()+" syncing")
	case appsync.SyncError:
		parts = append(parts, "⚠ sync failed")
	}

	if st.Active {
		parts = append(parts, "auto "+st.Period.String())
	} else {
		parts = append(parts, "auto off")
	}
	parts = append(parts, "sound "+onOff(m.session.SoundEnabled()))

	if last := m.session.LastUpdate(); !last.IsZero() {
		parts = append(parts, "updated "+humanize.Time(last))
	}
	return strings.Join(parts, " · ")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | m mark read | j/k scroll"
	case ViewFilter:
		return "enter apply | esc cancel"
	case ViewStats:
		return "S/esc back"
	case ViewHistory:
		return "h/esc back | j/k scroll"
	case ViewSettings:
		if m.firstRun {
			return "enter next | connect to the notifications API to continue"
		}
		return "enter next | esc cancel"
	}

	hints := "q quit | ? help | m read | M read all | r refresh | f filter | t test"
	if f := m.session.Filter(); !f.IsNeutral() {
		hints = filterSummary(f) + " | x clear | " + hints
	}
	if stats, ok := m.session.Stats(); ok && stats.Total > 0 {
		hints = m.statsView.Summary() + " | " + hints
	}
	return hints
}

func filterSummary(f model.FilterState) string {
	var parts []string
	if f.UnreadOnly {
		parts = append(parts, "unread")
	}
	if f.TypeActive() {
		parts = append(parts, "type="+f.Type)
	}
	if f.SeverityActive() {
		parts = append(parts, "severity="+string(f.Severity))
	}
	return "filter: " + strings.Join(parts, ",")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
