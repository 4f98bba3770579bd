package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/edit"
	"github.com/ShayOinif/Contacts/internal/prefs"
	"github.com/ShayOinif/Contacts/internal/repo"
	"github.com/ShayOinif/Contacts/internal/state"
	"github.com/ShayOinif/Contacts/internal/view"
)

// Screen is the active top-level screen.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Repo      *repo.Repository
	Logger    *zap.Logger
	Tick      time.Duration
	ThemeName string
	LastQuery string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	repo      *repo.Repository
	log       *zap.Logger
	prefsPath string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme    Theme
	screen   Screen
	width    int
	height   int
	ready    bool
	showHelp bool
	flash    string
	flashAt  time.Time

	// Streams. The channels are shared by every copy of the model.
	queries    chan string
	selections chan string
	contacts   <-chan contact.Result[[]contact.Contact]
	details    <-chan view.DetailResult
	session    *edit.Session

	// Cache state for the header
	snapshot state.Snapshot

	// List state
	search      textinput.Model
	searching   bool
	list        []contact.Contact
	listErr     error
	listLoaded  bool
	selectedRow int

	// Detail state
	detail         view.DetailResult
	detailLoaded   bool
	detailViewport viewport.Model
	editor         editor
}

// New creates the model and opens its list view, detail view and edit
// session over opts.Repo. The views live until opts.Context ends.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name"
	search.CharLimit = 128
	search.SetValue(opts.LastQuery)

	queries := make(chan string, 1)
	selections := make(chan string, 1)
	if q := strings.TrimSpace(opts.LastQuery); q != "" {
		offer(queries, opts.LastQuery)
	}

	return Model{
		ctx:        ctx,
		repo:       opts.Repo,
		log:        logger,
		prefsPath:  prefsPath,
		tick:       tick,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(themeName),
		screen:     ScreenList,
		queries:    queries,
		selections: selections,
		contacts:   opts.Repo.ObserveContacts(ctx, queries),
		details:    opts.Repo.ObserveDetail(ctx, selections),
		session:    opts.Repo.NewSession(),
		search:     search,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.tick),
		fetchSnapshotCmd(m.repo),
		waitForContacts(m.contacts),
		waitForDetail(m.details),
		waitForSession(m.session.Updates()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(msg.Width, m.contentHeight())
		}
		m.ready = true
		m.search.Width = maxWidth(m.width-4, 10)
		m.detailViewport.Width = msg.Width
		m.detailViewport.Height = m.contentHeight()
		m.updateDetailViewport()
		return m, nil

	case tickMsg:
		if m.flash != "" && time.Since(m.flashAt) > FlashDuration {
			m.flash = ""
		}
		return m, tea.Batch(fetchSnapshotCmd(m.repo), tickCmd(m.tick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case contactsMsg:
		m.applyContacts(contact.Result[[]contact.Contact](msg))
		return m, waitForContacts(m.contacts)

	case detailMsg:
		res := view.DetailResult(msg)
		m.detail = res
		m.detailLoaded = true
		m.session.Apply(res)
		cmd := m.syncEditor()
		m.updateDetailViewport()
		return m, tea.Batch(cmd, waitForDetail(m.details))

	case sessionMsg:
		cmd := m.syncEditor()
		m.updateDetailViewport()
		return m, tea.Batch(cmd, waitForSession(m.session.Updates()))

	case savedMsg:
		if msg.err != nil {
			m.setFlash("save failed: " + msg.err.Error())
		} else {
			m.setFlash("saved")
		}
		cmd := m.syncEditor()
		m.updateDetailViewport()
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	switch m.screen {
	case ScreenDetail:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.renderList())
	}
	return b.String()
}

// handleKey routes keyboard input. Text inputs get first refusal so typed
// characters never trigger shortcuts.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.screen == ScreenDetail && m.editor.active() {
		return m.handleEditKey(msg)
	}
	if m.screen == ScreenList && m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.repo.Refresh()
		m.setFlash("refreshing")
		return m, fetchSnapshotCmd(m.repo)
	}

	switch m.screen {
	case ScreenDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.savePrefs()
	m.session.Close()
	return m, tea.Quit
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastQuery: m.search.Value()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save preferences", zap.Error(err))
	}
}

func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashAt = time.Now()
}

func (m Model) contentHeight() int {
	return maxWidth(m.height-chromeHeight, 1)
}

func maxWidth(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context ends.
func Run(opts Options) error {
	m := New(opts)
	teaOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		teaOpts = append(teaOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, teaOpts...)
	_, err := p.Run()
	return err
}
