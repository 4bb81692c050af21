package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/world"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type preset struct {
	world, name string
}

// param is one numeric configuration field that can be tuned before start.
type param struct {
	name string
	get  func(c *config.Config) float64
	set  func(c *config.Config, v float64)
}

var params = []param{
	{"stiffness", func(c *config.Config) float64 { return c.Spring.Stiffness }, func(c *config.Config, v float64) { c.Spring.Stiffness = v }},
	{"mass", func(c *config.Config) float64 { return c.Ball.Mass }, func(c *config.Config, v float64) { c.Ball.Mass = v }},
	{"rest", func(c *config.Config) float64 { return c.Spring.RestLength }, func(c *config.Config, v float64) { c.Spring.RestLength = v }},
	{"half-life", func(c *config.Config) float64 { return c.Damping.HalfLife }, func(c *config.Config, v float64) { c.Damping.HalfLife = v }},
	{"gravity", func(c *config.Config) float64 { return c.Gravity.Y }, func(c *config.Config, v float64) { c.Gravity.Y = v }},
	{"segments", func(c *config.Config) float64 { return float64(c.Chain.Segments) }, func(c *config.Config, v float64) { c.Chain.Segments = int(v) }},
	{"substeps", func(c *config.Config) float64 { return float64(c.Timing.Substeps) }, func(c *config.Config, v float64) { c.Timing.Substeps = int(v) }},
}

// App lets the user pick a preset, tune it, and then runs it live.
type App struct {
	state       int
	cursor      int
	presets     []preset
	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string
	err         error
	opts        []Option
	live        Model
}

func NewApp(opts ...Option) App {
	items := make([]preset, 0)
	for _, w := range world.Names() {
		for _, name := range config.ListPresets(w) {
			items = append(items, preset{world: w, name: name})
		}
	}
	return App{presets: items, opts: opts}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(msg)
		case stateConfig:
			return a.configKey(msg)
		}
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		if len(a.presets) == 0 {
			return a, nil
		}
		p := a.presets[a.cursor]
		a.cfg = config.GetPreset(p.world, p.name)
		a.state, a.paramCursor, a.err = stateConfig, 0, nil
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				params[a.paramCursor].set(a.cfg, v)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				a.editBuf += s
			}
		}
		return a, nil
	}
	switch msg.String() {
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(params)-1 {
			a.paramCursor++
		}
	case "enter", " ":
		a.editing = true
		a.editBuf = strconv.FormatFloat(params[a.paramCursor].get(a.cfg), 'g', -1, 64)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	live, err := NewModel(a.cfg, a.opts...)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.live, a.state = live, stateSim
	return a, live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateSim:
		return a.live.View()
	case stateConfig:
		return a.configView()
	}
	return a.menuView()
}

func (a App) menuView() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("SPRINGSIM") + "\n")
	current := ""
	for i, p := range a.presets {
		if p.world != current {
			current = p.world
			s.WriteString("\n" + labelStyle.Render(strings.ToUpper(p.world)) + "  " + helpStyle.UnsetMarginTop().Render(world.Describe(p.world)) + "\n")
		}
		line := fmt.Sprintf("  %s", p.name)
		if i == a.cursor {
			line = cursorStyle.Render("> " + p.name)
		}
		s.WriteString(line + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓:Select Enter:Choose Q:Quit"))
	return canvasStyle.Render(s.String())
}

func (a App) configView() string {
	var s strings.Builder
	p := a.presets[a.cursor]
	s.WriteString(headerStyle.Render(strings.ToUpper(p.world+" / "+p.name)) + "\n")
	for i, prm := range params {
		val := strconv.FormatFloat(prm.get(a.cfg), 'g', 6, 64)
		if i == a.paramCursor && a.editing {
			val = a.editBuf + "_"
		}
		line := fmt.Sprintf("%-10s %s", prm.name, val)
		if i == a.paramCursor {
			s.WriteString(cursorStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	if a.err != nil {
		s.WriteString("\n" + errorStyle.Render(a.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓:Select Enter:Edit S:Start Esc:Back"))
	return canvasStyle.Render(s.String())
}

// RunApp starts the preset picker on the alternate screen.
func RunApp(opts ...Option) error {
	_, err := tea.NewProgram(NewApp(opts...), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
