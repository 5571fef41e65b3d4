package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gearset/internal/gearset"
	"github.com/san-kum/gearset/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 60
	height          = 30
	historyCapacity = 240
	defaultSpeed    = 2.0
)

type TickMsg time.Time

// Model drives a gear train in the terminal. Every tick advances the sun
// angle and runs a full recompute.
type Model struct {
	sched *gearset.Scheduler
	train *gearset.Train

	layout *gearset.Layout
	err    error

	running    bool
	speed      float64 // sun degrees per tick
	showHidden bool
	fps        int

	initialSun  float64
	initialRing float64

	canvas  *Canvas
	theme   Theme
	styles  styles
	carrier []float64
}

// NewModel recomputes t once and returns a running live view.
func NewModel(sched *gearset.Scheduler, t *gearset.Train, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		sched:       sched,
		train:       t,
		running:     true,
		speed:       defaultSpeed,
		fps:         fps,
		initialSun:  t.SunAngle,
		initialRing: t.RingAngle,
		canvas:      NewCanvas(width, height),
		theme:       ThemeBrass,
		styles:      newStyles(ThemeBrass),
		carrier:     make([]float64, 0, historyCapacity),
	}
	m.recompute()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the drive.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.adjustPlanets(1)
		case "-", "_":
			m.adjustPlanets(-1)
		case "s":
			m.train.SolveFor = gearset.Roles[(int(m.train.SolveFor)+1)%len(gearset.Roles)]
			m.recompute()
		case "up", "k":
			m.speed *= 1.5
		case "down", "j":
			m.speed /= 1.5
		case "[":
			m.train.RingAngle -= 5
			m.recompute()
		case "]":
			m.train.RingAngle += 5
			m.recompute()
		case "h":
			m.showHidden = !m.showHidden
		case "r":
			m.reset()
		case "t":
			m.theme = m.theme.next()
			m.styles = newStyles(m.theme)
		}
	case TickMsg:
		if m.running {
			m.train.SunAngle += m.speed
			m.recompute()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) adjustPlanets(delta int) {
	n := m.train.PlanetCount + delta
	if n < 0 {
		n = 0
	}
	m.train.PlanetCount = n
	m.recompute()
}

func (m *Model) reset() {
	m.train.SunAngle = m.initialSun
	m.train.RingAngle = m.initialRing
	m.carrier = m.carrier[:0]
	m.recompute()
}

func (m *Model) recompute() {
	layout, err := m.sched.Execute(m.train)
	if err != nil {
		m.err = err
		return
	}
	m.layout, m.err = layout, nil

	// carrier angle: the orbit angle of slot 0
	carrier := layout.Phase.Theta - layout.Phase.Theta0 + m.train.RingAngle
	m.carrier = append(m.carrier, carrier)
	if len(m.carrier) > historyCapacity {
		m.carrier = m.carrier[1:]
	}
}

// draw renders the current layout onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	if m.layout == nil {
		return
	}
	gears, err := geometry.ForLayout(m.layout)
	if err != nil {
		return
	}

	proj := m.canvas.Fit(gears.Ring.RootRadius + m.train.Module)
	origin := r2.Vec{}
	m.canvas.DrawCircle(origin, gears.Ring.RootRadius+m.train.Module, proj)
	m.canvas.DrawPolygon(gears.Ring.Profile(m.layout.Ring.Rotation), origin, proj)
	m.canvas.DrawPolygon(gears.Sun.Profile(m.layout.Sun.Rotation), origin, proj)

	for _, p := range m.layout.Planets {
		switch {
		case p.Visible:
			m.canvas.DrawPolygon(gears.Planet.Profile(p.Rotation), p.Position, proj)
		case m.showHidden:
			m.canvas.DrawCircle(p.Position, gears.Planet.PitchRadius, proj)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render("PLANETARY GEAR TRAIN") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.styles.label.Render(label) + m.styles.value.Render(value) + "\n")
	}

	t := m.train
	row("Solve for", t.SolveFor.String())
	if m.layout != nil {
		tr := m.layout.Triple
		row("Teeth", fmt.Sprintf("sun %d  planet %d  ring %d", tr.Sun, tr.Planet, tr.Ring))
		row("Center dist", fmt.Sprintf("%.3f", m.layout.Phase.CenterDistance))
		row("Mesh step", fmt.Sprintf("%.3f°", m.layout.Phase.Theta0))
	}
	row("Module", fmt.Sprintf("%.3f", t.Module))
	row("Planets", fmt.Sprintf("%d of %d", t.PlanetCount, len(t.Planets)))
	row("Sun angle", fmt.Sprintf("%.1f°", t.SunAngle))
	row("Ring angle", fmt.Sprintf("%.1f°", t.RingAngle))
	row("Speed", fmt.Sprintf("%.2f°/tick", m.speed))

	if len(m.carrier) > 1 {
		chart := asciigraph.Plot(m.carrier, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("carrier angle"))
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + m.styles.warning.Render(m.err.Error()) + "\n")
	} else if m.layout != nil {
		for _, d := range m.layout.Diagnostics {
			s.WriteString("\n" + m.styles.warning.Render(d.Message) + "\n")
		}
	}

	s.WriteString(m.styles.help.Render("space pause  +/- planets  s solve-for  ↑/↓ speed\n[/] ring  h hidden  r reset  t theme  q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.stats.Render(s.String()))
}

// WithTheme returns m drawn in theme.
func (m Model) WithTheme(theme Theme) Model {
	m.theme = theme
	m.styles = newStyles(theme)
	return m
}

// Layout returns the last successful layout.
func (m Model) Layout() *gearset.Layout {
	return m.layout
}

// Err returns the error of the last recompute, if any.
func (m Model) Err() error {
	return m.err
}

// Run starts the live view on the terminal in the named theme.
func Run(sched *gearset.Scheduler, t *gearset.Train, fps int, theme string) error {
	p := tea.NewProgram(NewModel(sched, t, fps).WithTheme(GetTheme(theme)))
	_, err := p.Run()
	return err
}
