package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm       Mode = iota // Editing fields
	ModeValidating             // Testing connection
	ModeResult                 // Showing validation result
)

// validateTimeout bounds the connection probe.
const validateTimeout = 10 * time.Second

// SavedMsg signals the settings were validated and persisted.
type SavedMsg struct {
	Config model.AppConfig
	Token  string
}

// DoneMsg signals the settings view should close without changes.
type DoneMsg struct{}

// validateResultMsg carries the result of a validate-and-save attempt.
type validateResultMsg struct {
	summary string
	err     error
	cfg     model.AppConfig
	token   string
}

// Deps are the side effects the settings view needs.
type Deps struct {
	// Validate probes the API with the given base URL and token.
	Validate func(ctx context.Context, baseURL, token string) (string, error)

	// Persist writes the configuration and stores the token.
	Persist func(cfg model.AppConfig, token string) error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL    string
	token      string
	intervalMs string
	limit      string
	auto       bool
	sound      bool
	player     string
}

// Model is the Bubble Tea model for the settings form.
type Model struct {
	mode     Mode
	form     *huh.Form
	fb       *formBindings
	deps     Deps
	base     model.AppConfig
	curToken string
	firstRun bool

	spinner spinner.Model
	result  validateResultMsg

	width, height int
}

// New creates a new settings view model.
func New(deps Deps, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		fb:      &formBindings{},
		deps:    deps,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start opens the form seeded from cfg. token is the currently stored API
// token; the form keeps it when the token field is left blank. firstRun
// changes the title and hides the cancel hint.
func (m *Model) Start(cfg model.AppConfig, token string, firstRun bool) tea.Cmd {
	m.mode = ModeForm
	m.base = cfg
	m.curToken = token
	m.firstRun = firstRun
	m.result = validateResultMsg{}

	m.fb.baseURL = cfg.API.BaseURL
	m.fb.token = ""
	m.fb.intervalMs = strconv.Itoa(cfg.Refresh.IntervalMs)
	m.fb.limit = strconv.Itoa(cfg.Refresh.Limit)
	m.fb.auto = cfg.Refresh.Auto
	m.fb.sound = cfg.Alert.Sound
	m.fb.player = cfg.Alert.Player

	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case validateResultMsg:
		m.mode = ModeResult
		m.result = msg
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeResult {
			return m.handleResultKeys(msg)
		}
		if m.mode == ModeValidating {
			return m, nil
		}
	}

	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		cfg, token := m.collect()
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.validateAndSave(cfg, token))
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.result.err == nil {
		saved := SavedMsg{Config: m.result.cfg, Token: m.result.token}
		return m, func() tea.Msg { return saved }
	}

	switch msg.String() {
	case "esc", "q":
		if m.firstRun {
			return m, nil
		}
		return m, func() tea.Msg { return DoneMsg{} }
	default:
		// Back to the form with the entered values kept.
		m.mode = ModeForm
		m.form = m.buildForm()
		return m, m.form.Init()
	}
}

// collect builds the resulting configuration from the form bindings.
func (m Model) collect() (model.AppConfig, string) {
	cfg := m.base
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	if v, err := strconv.Atoi(strings.TrimSpace(m.fb.intervalMs)); err == nil {
		cfg.Refresh.IntervalMs = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(m.fb.limit)); err == nil {
		cfg.Refresh.Limit = v
	}
	cfg.Refresh.Auto = m.fb.auto
	cfg.Alert.Sound = m.fb.sound
	cfg.Alert.Player = strings.TrimSpace(m.fb.player)

	token := strings.TrimSpace(m.fb.token)
	if token == "" {
		token = m.curToken
	}
	return cfg, token
}

// validateAndSave probes the API and persists the settings on success.
func (m Model) validateAndSave(cfg model.AppConfig, token string) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
		defer cancel()

		res := validateResultMsg{cfg: cfg, token: token}
		if deps.Validate != nil {
			summary, err := deps.Validate(ctx, cfg.API.BaseURL, token)
			if err != nil {
				res.err = err
				return res
			}
			res.summary = summary
		}

		if deps.Persist != nil {
			if err := deps.Persist(cfg, token); err != nil {
				res.err = fmt.Errorf("connection OK but save failed: %w", err)
			}
		}
		return res
	}
}

func (m *Model) buildForm() *huh.Form {
	tokenDesc := "Bearer token, stored in the system keyring"
	if m.curToken != "" {
		tokenDesc = "Leave blank to keep the stored token"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Notifications resource root").
				Placeholder("http://localhost:8083/api/notifications").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API token").
				Description(tokenDesc).
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
			huh.NewInput().
				Title("Refresh interval (ms)").
				Value(&m.fb.intervalMs).
				Validate(validateIntRange("Interval", 500, 3_600_000)),
			huh.NewInput().
				Title("Snapshot size").
				Description("Number of recent notifications to fetch").
				Value(&m.fb.limit).
				Validate(validateIntRange("Snapshot size", 1, 1000)),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Auto refresh").
				Value(&m.fb.auto),
			huh.NewConfirm().
				Title("Sound on new notifications").
				Value(&m.fb.sound),
			huh.NewInput().
				Title("Audio player").
				Description("Command name, \"bell\", or blank to auto-detect").
				Value(&m.fb.player),
		),
	).WithWidth(m.formWidth())
}

// View renders the settings view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Settings"
	if m.firstRun {
		title = "Welcome! Connect to your notifications API"
	}

	var body string
	switch m.mode {
	case ModeValidating:
		body = m.spinner.View() + " Testing connection..."
	case ModeResult:
		body = m.viewResult()
	default:
		if m.form != nil {
			body = m.form.View()
		}
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(title) + "\n" + body)
}

func (m Model) viewResult() string {
	hint := lipgloss.NewStyle().Foreground(theme.ColorGray)
	if m.result.err != nil {
		lines := []string{
			theme.SeverityStyle(model.SeverityError).Render("✗ " + m.result.err.Error()),
			"",
			hint.Render("enter: edit again"),
		}
		if !m.firstRun {
			lines[2] += hint.Render(" · esc: discard")
		}
		return strings.Join(lines, "\n")
	}

	return strings.Join([]string{
		theme.SeverityStyle(model.SeveritySuccess).Render("✓ " + m.result.summary),
		"",
		hint.Render("Settings saved. Press any key to continue."),
	}, "\n")
}

// Mode returns the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8083/api/notifications)")
	}
	return nil
}

func validateIntRange(fieldName string, lo, hi int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		if v < lo || v > hi {
			return fmt.Errorf("%s must be between %d and %d", fieldName, lo, hi)
		}
		return nil
	}
}
