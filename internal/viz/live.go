package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	defaultCols     = 60
	defaultRows     = 22
	minCols         = 20
	minRows         = 8
	canvasPadX      = 2
	canvasPadY      = 1
	historyCapacity = 300
	zoomStep        = 1.25
	// minFitSpan keeps a collapsed scene from filling the screen.
	minFitSpan = 0.1
)

type tickMsg time.Time

type reloadMsg struct{ path string }

type reloadErrMsg struct{ err error }

// Option customizes a live Model.
type Option func(*Model)

// WithScript replaces the configuration's scripted interactions.
// The script is kept across reloads.
func WithScript(script []sim.Interaction) Option {
	return func(m *Model) {
		m.script = append([]sim.Interaction(nil), script...)
		m.scripted = true
	}
}

// WithWatcher rebuilds the world whenever w reports a changed config file.
func WithWatcher(w *config.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithLoader sets how a changed config file is read on reload. The default
// is config.Load followed by Validate.
func WithLoader(load func(path string) (*config.Config, error)) Option {
	return func(m *Model) { m.load = load }
}

// WithSnapshotDir sets where the s key writes SVG snapshots.
func WithSnapshotDir(dir string) Option {
	return func(m *Model) { m.snapshotDir = dir }
}

// Model drives one world in real time. Mouse press, drag and release map to
// Grab, Pull and Release at the world point under the pointer.
type Model struct {
	cfg         *config.Config
	driver      *sim.Driver
	camera      Camera
	canvas      *Canvas
	snap        sim.Snapshot
	running     bool
	dragging    bool
	script      []sim.Interaction
	scripted    bool
	pending     []sim.Interaction
	energy      []float64
	strain      []float64
	status      string
	err         error
	watcher     *config.Watcher
	load        func(path string) (*config.Config, error)
	snapshotDir string
}

func NewModel(cfg *config.Config, opts ...Option) (Model, error) {
	m := Model{
		cfg:     cfg,
		canvas:  NewCanvas(defaultCols, defaultRows),
		running: true,
		script:  cfg.Interactions,
		load:    loadValidated,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.rebuild(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Driver exposes the running driver, mainly for tests.
func (m Model) Driver() *sim.Driver { return m.driver }

func (m *Model) rebuild() error {
	d, err := m.cfg.NewDriver()
	if err != nil {
		return err
	}
	m.driver = d
	m.dragging = false
	m.err = nil
	m.energy = make([]float64, 0, historyCapacity)
	m.strain = make([]float64, 0, historyCapacity)
	m.pending = append([]sim.Interaction(nil), m.script...)
	sort.SliceStable(m.pending, func(i, j int) bool { return m.pending[i].Frame < m.pending[j].Frame })
	m.snap = d.Snapshot()
	m.fit()
	m.draw()
	return nil
}

func (m *Model) fit() {
	balls := make([]dynamo.Vec2, 0, len(m.snap.Balls))
	anchors := make([]dynamo.Vec2, 0)
	for _, b := range m.snap.Balls {
		balls = append(balls, b.Pos)
		if b.Anchored {
			anchors = append(anchors, b.Pos)
		}
	}
	m.camera = FitCamera(Reach(balls, anchors), m.canvas.Width, m.canvas.Height, minFitSpan)
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForReload(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			return reloadMsg{path: path}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return reloadErrMsg{err: err}
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.cfg.Timing.FrameDelay), waitForReload(m.watcher))
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.rebuild(); err != nil {
				m.err = err
			}
		case "n":
			if !m.running {
				m.frame()
			}
		case "+", "=":
			m.camera.Zoom(zoomStep)
		case "-", "_":
			m.camera.Zoom(1 / zoomStep)
		case "f":
			m.fit()
		case "t":
			NextTheme()
		case "s":
			m.saveSnapshot()
		}
		m.draw()
	case tea.MouseMsg:
		m.mouse(msg)
		m.draw()
	case tea.WindowSizeMsg:
		cols := max(minCols, msg.Width-statsWidth-2*canvasPadX-2)
		rows := max(minRows, msg.Height-2*canvasPadY)
		m.canvas.Resize(cols, rows)
		m.camera.Cols, m.camera.Rows = cols, rows
		m.draw()
	case tickMsg:
		if m.running && m.err == nil {
			m.frame()
		}
		m.draw()
		return m, tick(m.cfg.Timing.FrameDelay)
	case reloadMsg:
		m.reload(msg.path)
		m.draw()
		return m, waitForReload(m.watcher)
	case reloadErrMsg:
		m.status = "watch: " + msg.err.Error()
		return m, waitForReload(m.watcher)
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	p := m.camera.CellToWorld(msg.X-canvasPadX, msg.Y-canvasPadY)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.driver.Grab(p.X, p.Y)
		m.dragging = true
	case tea.MouseActionMotion:
		if m.dragging {
			m.driver.Pull(p.X, p.Y)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.driver.Release()
			m.dragging = false
		}
	}
	m.snap = m.driver.Snapshot()
}

func (m *Model) frame() {
	for len(m.pending) > 0 && m.pending[0].Frame <= m.snap.Frame {
		m.driver.Apply(m.pending[0])
		m.pending = m.pending[1:]
	}
	m.driver.Frame()
	m.snap = m.driver.Snapshot()

	total := m.snap.Energy.Total()
	if !validSnapshot(m.snap) {
		m.err = &dynamo.SimulationError{Frame: m.snap.Frame, Time: m.snap.Time, Wrapped: dynamo.ErrUnstable}
		return
	}
	m.energy = pushHistory(m.energy, total)

	worst := 0.0
	for _, sp := range m.snap.Springs {
		if s := abs(sp.Strain); s > worst {
			worst = s
		}
	}
	m.strain = pushHistory(m.strain, worst)
}

func loadValidated(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// reload keeps the running world when the new config cannot be loaded or built.
func (m *Model) reload(path string) {
	cfg, err := m.load(path)
	if err != nil {
		m.status = "reload: " + err.Error()
		return
	}
	prevCfg, prevScript := m.cfg, m.script
	m.cfg = cfg
	if !m.scripted {
		m.script = cfg.Interactions
	}
	if err := m.rebuild(); err != nil {
		m.cfg, m.script = prevCfg, prevScript
		m.status = "reload: " + err.Error()
		return
	}
	m.status = "reloaded " + filepath.Base(path)
}

func (m *Model) saveSnapshot() {
	dir := m.snapshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("springsim_%06d.svg", m.snap.Frame))
	svg := export.SceneToSVG(m.snap, 800, 800)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.status = "snapshot: " + err.Error()
		return
	}
	m.status = "saved " + path
}

func validSnapshot(s sim.Snapshot) bool {
	for _, b := range s.Balls {
		if !b.Pos.IsValid() {
			return false
		}
	}
	return true
}

func pushHistory(h []float64, v float64) []float64 {
	if len(h) >= historyCapacity {
		h = h[1:]
	}
	return append(h, v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, sp := range m.snap.Springs {
		x0, y0 := m.camera.ToSub(sp.A)
		x1, y1 := m.camera.ToSub(sp.B)
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	for _, b := range m.snap.Balls {
		x, y := m.camera.ToSub(b.Pos)
		switch {
		case b.Grabbed:
			m.canvas.Ring(x, y, 3)
			m.canvas.Set(x, y)
		case b.Anchored:
			m.canvas.FillRect(x, y, 1)
		default:
			m.canvas.Disc(x, y, 1)
		}
	}
}

// View renders the canvas with the stats panel to its right.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.cfg.World)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("DIVERGED") + "\n\n")
	case m.running:
		s.WriteString(runningStyle.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(pausedStyle.Render("PAUSED") + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy (J)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	e := m.snap.Energy
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.snap.Time))
	row("Frame", fmt.Sprintf("%d", m.snap.Frame))
	row("Kinetic", fmt.Sprintf("%.5f J", e.Kinetic))
	row("Potential", fmt.Sprintf("%.5f J", e.Potential))
	row("Total", fmt.Sprintf("%.5f J", e.Total()))
	row("Balls", fmt.Sprintf("%d / %d springs", len(m.snap.Balls), len(m.snap.Springs)))
	row("Holding", m.holding())
	row("Strain", SparklineChart(m.strain, 24, 0.5))
	row("Zoom", fmt.Sprintf("%.0f px/m", m.camera.Scale))
	if len(m.pending) > 0 {
		row("Script", fmt.Sprintf("%d steps left", len(m.pending)))
	}
	if m.status != "" {
		s.WriteString("\n" + valueStyle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nDrag:Grab SP:Pause N:Step\nR:Rebuild F:Fit +/-:Zoom\nT:Theme S:SVG Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func (m Model) holding() string {
	for i, b := range m.snap.Balls {
		if b.Grabbed {
			return fmt.Sprintf("ball %d", i)
		}
	}
	return "-"
}

// Run starts the live view on the alternate screen with mouse tracking.
func Run(cfg *config.Config, opts ...Option) error {
	m, err := NewModel(cfg, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
