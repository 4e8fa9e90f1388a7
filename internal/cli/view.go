package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/questgraph/pkg/canvas"
	"github.com/matzehuels/questgraph/pkg/canvas/term"
	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/events"
	"github.com/matzehuels/questgraph/pkg/geom"
	"github.com/matzehuels/questgraph/pkg/quest"
	"github.com/matzehuels/questgraph/pkg/questgraph"
	"github.com/matzehuels/questgraph/pkg/session"
	"github.com/matzehuels/questgraph/pkg/textmeasure"
)

// frameInterval paces result polling and the loading spinner.
const frameInterval = 50 * time.Millisecond

// chromeRows is the header plus the status line around the graph.
const chromeRows = 2

// viewCommand creates the interactive graph viewer.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [quest-id]",
		Short: "Explore quest graphs interactively in the terminal",
		Long: `View draws the graph of a quest in the terminal.

Drag with the left button to pan and use the wheel to zoom. Click a quest
to highlight it and press enter to make it the focus. Right-click shows a
quest's details.

Keys: enter focus highlighted quest, r redraw, c toggle main scenario
compression, a toggle arrowheads, q quit.

The config and progress files are watched; edits apply immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var focus uint32
			if len(args) == 1 {
				id, err := errors.ParseQuestID(args[0])
				if err != nil {
					return err
				}
				focus = id
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), focus, cfg)
		},
	}
}

func (c *CLI) runView(ctx context.Context, focus uint32, cfg config.Config) error {
	m, err := c.loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	if focus != 0 {
		if _, err := m.Catalog().Lookup(focus); err != nil {
			return err
		}
	}
	engines, err := c.engines()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; logs go to a file instead.
	restore := c.logToFile()
	defer restore()

	store := c.loadProgress()
	measurer := textmeasure.CellMeasurer{Cell: term.DefaultCell}
	sess := session.New(session.Options{
		Catalogs: m,
		Builder:  questgraph.NewBuilder(measurer, questgraph.WithLogger(c.Logger), questgraph.WithHooks(c.hooks.Pipeline)),
		Engines:  engines,
		Config:   cfg,
		Logger:   c.Logger,
		Hooks:    c.hooks.Pipeline,
	})
	defer sess.Close()

	bus := events.New()
	cv := canvas.New(sess, canvas.Options{
		Palette:  canvas.PaletteFrom(cfg.Colors),
		Oracle:   store,
		Bus:      bus,
		Hooks:    c.hooks.Render,
		Measurer: measurer,
		FontSize: term.DefaultCell.Y,
	})

	model := newViewModel(ctx, m, sess, cv, bus, cfg)
	defer model.close()
	if focus != 0 {
		sess.Show(focus)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if path := c.configPath(); path != "" {
		go func() {
			err := config.Watch(wctx, path, c.Logger, func(cfg config.Config) { p.Send(configMsg{cfg}) })
			if err != nil && !stderrors.Is(err, context.Canceled) {
				c.Logger.Debug("not watching config", "path", path, "err", err)
			}
		}()
	}
	if store.Path() != "" {
		go func() {
			err := store.Watch(wctx, c.Logger, func() { p.Send(redrawMsg{}) })
			if err != nil && !stderrors.Is(err, context.Canceled) {
				c.Logger.Debug("not watching progress", "path", store.Path(), "err", err)
			}
		}()
	}

	_, err = p.Run()
	return err
}

// logToFile sends the logger to view.log in the cache directory, or
// silences it, and returns a function restoring stderr.
func (c *CLI) logToFile() func() {
	restore := func() { c.Logger.SetOutput(os.Stderr) }
	dir, err := cacheDir()
	if err == nil {
		err = os.MkdirAll(dir, 0o755)
	}
	var f *os.File
	if err == nil {
		f, err = os.OpenFile(filepath.Join(dir, "view.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
	if err != nil {
		c.Logger.SetOutput(io.Discard)
		return restore
	}
	c.Logger.SetOutput(f)
	return func() {
		restore()
		_ = f.Close()
	}
}

// =============================================================================
// Model
// =============================================================================

type (
	tickMsg    time.Time
	redrawMsg  struct{}
	configMsg  struct{ cfg config.Config }
	rebuiltMsg struct {
		cfg config.Config
		err error
	}
)

// viewModel is the bubbletea model of the viewer. Every message that can
// change the picture renders a new frame; View returns the last one.
type viewModel struct {
	ctx     context.Context
	manager *quest.Manager
	sess    *session.Session
	cv      *canvas.Canvas
	cfg     config.Config

	selected    <-chan events.QuestSelected
	journal     <-chan events.JournalRequested
	unsubscribe []func()

	cols, rows int
	grid       *term.Grid

	mouse    geom.Vec
	leftDown bool
	pressed  canvas.Button
	released canvas.Button
	wheel    int

	start  time.Time
	status string
	frame  string
}

func newViewModel(ctx context.Context, m *quest.Manager, sess *session.Session, cv *canvas.Canvas, bus *events.Bus, cfg config.Config) *viewModel {
	selected, unsubSelected := events.Subscribe[events.QuestSelected](bus, events.DefaultBuffer)
	journal, unsubJournal := events.Subscribe[events.JournalRequested](bus, events.DefaultBuffer)
	return &viewModel{
		ctx:         ctx,
		manager:     m,
		sess:        sess,
		cv:          cv,
		cfg:         cfg,
		selected:    selected,
		journal:     journal,
		unsubscribe: []func(){unsubSelected, unsubJournal},
		cols:        80,
		rows:        24,
		start:       time.Now(),
	}
}

func (m *viewModel) close() {
	for _, u := range m.unsubscribe {
		u()
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *viewModel) Init() tea.Cmd { return tick() }

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.grid = nil
	case tea.KeyMsg:
		if quit := m.key(msg); quit {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.mouseEvent(msg)
	case tickMsg:
		m.drain()
		m.flightStatus()
		cmd = tick()
	case redrawMsg:
	case configMsg:
		cmd = m.applyConfig(msg.cfg)
	case rebuiltMsg:
		if msg.err != nil {
			m.status = "reload failed: " + errors.UserMessage(msg.err)
			break
		}
		old := m.sess.Config()
		m.cfg = msg.cfg
		m.sess.SetConfig(msg.cfg)
		if !config.TopologyChanged(old, msg.cfg) {
			m.sess.Redraw()
		}
		m.status = "languages reloaded"
	}
	m.render()
	return m, cmd
}

func (m *viewModel) View() string { return m.frame }

// key handles a key press and reports whether to quit.
func (m *viewModel) key(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return true
	case "r":
		m.sess.Redraw()
	case "c":
		cfg := m.sess.Config()
		cfg.Graph.CompressMSQ = !cfg.Graph.CompressMSQ
		m.sess.SetConfig(cfg)
		m.status = "compression " + onOff(cfg.Graph.CompressMSQ)
	case "a":
		cfg := m.sess.Config()
		cfg.Graph.ShowArrowheads = !cfg.Graph.ShowArrowheads
		m.sess.SetConfig(cfg)
		m.status = "arrowheads " + onOff(cfg.Graph.ShowArrowheads)
	case "enter":
		if h := m.cv.Highlight(); h != 0 && h != m.sess.Focus() {
			m.sess.Show(h)
			m.status = ""
		}
	}
	return false
}

// mouseEvent turns terminal mouse reports into canvas input. Releases do
// not always say which button went up, so the pressed one is tracked.
func (m *viewModel) mouseEvent(msg tea.MouseMsg) {
	m.mouse = m.gridPoint(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.wheel++
		case tea.MouseButtonWheelDown:
			m.wheel--
		case tea.MouseButtonLeft:
			m.leftDown = true
			m.pressed = canvas.ButtonLeft
		case tea.MouseButtonRight:
			m.pressed = canvas.ButtonRight
		case tea.MouseButtonMiddle:
			m.pressed = canvas.ButtonMiddle
		}
	case tea.MouseActionRelease:
		m.released = m.pressed
		m.leftDown = false
		m.pressed = canvas.ButtonNone
	}
}

// gridPoint maps a terminal cell to canvas pixels below the header row.
func (m *viewModel) gridPoint(col, row int) geom.Vec {
	return geom.V((float64(col)+0.5)*term.DefaultCell.X, (float64(row-1)+0.5)*term.DefaultCell.Y)
}

// drain reads pending canvas events without blocking.
func (m *viewModel) drain() {
	for {
		select {
		case ev := <-m.selected:
			m.status = "selected " + m.describe(ev.ID) + " · enter to focus"
		case ev := <-m.journal:
			m.status = m.details(ev.ID)
		default:
			return
		}
	}
}

// flightStatus reports a failed flight on the status line.
func (m *viewModel) flightStatus() {
	f := m.sess.Flight()
	if f == nil {
		return
	}
	if err := f.Err(); err != nil && !stderrors.Is(err, context.Canceled) {
		m.status = errors.UserMessage(err)
	}
}

// applyConfig installs reloaded settings. A language change rebuilds the
// catalog off the UI goroutine first.
func (m *viewModel) applyConfig(cfg config.Config) tea.Cmd {
	m.cv.SetPalette(canvas.PaletteFrom(cfg.Colors))
	if cfg.Language != m.cfg.Language {
		m.status = "reloading languages..."
		return m.rebuild(cfg)
	}
	m.cfg = cfg
	m.sess.SetConfig(cfg)
	m.status = "config reloaded"
	return nil
}

func (m *viewModel) rebuild(cfg config.Config) tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		langs, err := quest.ParseLanguages(cfg.Language)
		if err == nil {
			_, err = manager.Rebuild(ctx, langs)
		}
		return rebuiltMsg{cfg: cfg, err: err}
	}
}

// render draws a frame with the pending pointer input and consumes it.
func (m *viewModel) render() {
	cols, rows := max(m.cols, 1), max(m.rows-chromeRows, 1)
	if m.grid == nil {
		m.grid = term.New(cols, rows, term.DefaultCell)
	} else {
		m.grid.Clear()
	}
	m.cv.Frame(m.grid, m.grid.Area(), canvas.Input{
		Mouse:    m.mouse,
		LeftDown: m.leftDown,
		Released: m.released,
		Wheel:    m.wheel,
		Elapsed:  time.Since(m.start),
	})
	m.released = canvas.ButtonNone
	m.wheel = 0

	m.frame = strings.Join([]string{m.header(cols), m.grid.Render(), m.footer(cols)}, "\n")
}

func (m *viewModel) header(width int) string {
	title := StyleTitle.Render(appName)
	if focus := m.sess.Focus(); focus != 0 {
		title += " " + StyleValue.Render(m.describe(focus))
	}
	cfg := m.sess.Config()
	info := StyleDim.Render(fmt.Sprintf("%s · zoom %.2f", cfg.Graph.Engine, m.cv.Viewport().Zoom))
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(info), 1)
	return title + strings.Repeat(" ", gap) + info
}

func (m *viewModel) footer(width int) string {
	text := m.status
	if text == "" {
		text = "drag pan · wheel zoom · click select · enter focus · r redraw · c compress · a arrows · q quit"
	}
	return StyleDim.MaxWidth(width).Render(text)
}

// describe returns a quest's name and id.
func (m *viewModel) describe(id uint32) string {
	if r, ok := m.manager.Catalog().Get(id); ok {
		return fmt.Sprintf("%s (#%d)", r.Name, id)
	}
	if label, ok := questgraph.CompressedLabel(id); ok {
		return label
	}
	return fmt.Sprintf("#%d", id)
}

// details summarizes a quest on one line.
func (m *viewModel) details(id uint32) string {
	r, ok := m.manager.Catalog().Get(id)
	if !ok {
		return m.describe(id)
	}
	parts := []string{m.describe(id), typeLabel(r.Type)}
	if s := unlockSummary(r); s != "" {
		parts = append(parts, s)
	}
	if n := len(r.Rewards.All()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d rewards", n))
	}
	return strings.Join(parts, " · ")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

var _ tea.Model = (*viewModel)(nil)
