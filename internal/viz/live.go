package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/control"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/metrics"
)

const (
	width           = 80
	height          = 24
	frameRate       = 60
	historyCapacity = 600
	feedCapacity    = 256
	viewSpan        = 20.0

	torqueNudge       = 0.1
	displacementNudge = 0.002
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a bicycle in real time and draws its wheel tracks.
type Model struct {
	bike       *bicycle.Bicycle
	controller dynamo.Controller
	manual     *control.Manual
	feed       *Feed
	name       string
	log        zerolog.Logger

	stepsPerFrame int
	canvas        *Canvas
	view          Viewport
	front, rear   []bicycle.Point
	roll          []float64
	last          Frame

	running bool
	fallen  bool
	err     error
}

// NewModel registers a Feed on bike and returns a running model. Arrow keys
// drive the bicycle when controller is a *control.Manual.
func NewModel(bike *bicycle.Bicycle, controller dynamo.Controller, name string, log zerolog.Logger) Model {
	feed := NewFeed(feedCapacity, log)
	bike.AddObserver(feed)

	dt := bike.Params().TimeStep
	m := Model{
		bike:          bike,
		controller:    controller,
		feed:          feed,
		name:          name,
		log:           log,
		stepsPerFrame: max(1, int(math.Round(1/(frameRate*dt)))),
		canvas:        NewCanvas(width/2, height/2),
		running:       true,
	}
	if mc, ok := controller.(*control.Manual); ok {
		m.manual = mc
	}
	m.resetView()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.fallen && m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "left":
			m.nudge(-torqueNudge, 0)
		case "right":
			m.nudge(torqueNudge, 0)
		case "up":
			m.nudge(0, displacementNudge)
		case "down":
			m.nudge(0, -displacementNudge)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.absorb()
		return m, tick()
	}
	return m, nil
}

func (m *Model) nudge(dT, dd float64) {
	if m.manual != nil {
		m.manual.Nudge(dT, dd)
	}
}

func (m *Model) advance() {
	for range m.stepsPerFrame {
		u := m.controller.Compute(m.bike.Sensors(), m.bike.Time())
		a, err := bicycle.ActionFrom(u)
		if err == nil {
			_, err = m.bike.Step(a)
		}
		if err != nil {
			m.halt(err)
			return
		}
		if math.Abs(m.bike.Tilt()) >= metrics.FallAngle {
			m.fallen = true
			m.running = false
			m.log.Info().Float64("t", m.bike.Time()).Float64("omega", m.bike.Tilt()).Msg("bicycle fell")
			return
		}
	}
}

func (m *Model) halt(err error) {
	m.err = err
	m.running = false
	var ae *dynamo.ActionError
	if errors.As(err, &ae) {
		m.log.Warn().Err(err).Int("step", ae.Step).Msg("controller produced an invalid action")
		return
	}
	m.log.Warn().Err(err).Msg("live step failed")
}

// absorb drains the feed into the trails and roll history.
func (m *Model) absorb() {
	for _, f := range m.feed.Drain() {
		s := bicycle.FromSensors(f.State)
		m.front = pushCapped(m.front, s.Front())
		m.rear = pushCapped(m.rear, s.Rear())
		m.roll = pushCapped(m.roll, s.Omega*180/math.Pi)
		m.last = f
	}
	if len(m.rear) > 0 {
		r := m.rear[len(m.rear)-1]
		m.view.Follow(r.X, r.Y)
	}
}

func pushCapped[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) reset() {
	m.bike.Reset()
	if r, ok := m.controller.(dynamo.Resetter); ok {
		r.Reset()
	}
	m.feed.Drain()
	m.front = m.front[:0]
	m.rear = m.rear[:0]
	m.roll = m.roll[:0]
	m.last = Frame{}
	m.fallen = false
	m.err = nil
	m.running = true
	m.resetView()
}

func (m *Model) resetView() {
	s := m.bike.State()
	m.view = Viewport{CX: s.XB, CY: s.YB, Span: viewSpan}
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.drawTrail(m.rear)
	m.drawTrail(m.front)

	s := m.bike.State()
	x0, y0 := m.view.Project(m.canvas, s.XB, s.YB)
	x1, y1 := m.view.Project(m.canvas, s.XF, s.YF)
	m.canvas.DrawLine(x0, y0, x1, y1)

	if g, ok := m.bike.Goal(); ok {
		gx, gy := m.view.Project(m.canvas, g.X, g.Y)
		m.canvas.DrawLine(gx-2, gy, gx+2, gy)
		m.canvas.DrawLine(gx, gy-2, gx, gy+2)
	}
}

func (m *Model) drawTrail(pts []bicycle.Point) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := m.view.Project(m.canvas, pts[i-1].X, pts[i-1].Y)
		x1, y1 := m.view.Project(m.canvas, pts[i].X, pts[i].Y)
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(statusFallen.Render("HALTED") + "\n")
		s.WriteString(valueStyle.Render(m.err.Error()) + "\n\n")
	case m.fallen:
		s.WriteString(statusFallen.Render("FALLEN") + "\n\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.roll) > 1 {
		chart := asciigraph.Plot(m.roll, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Roll (deg)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.bike.Time())) + "\n")
	x := m.bike.Sensors()
	for i, v := range x {
		s.WriteString(labelStyle.Render(bicycle.SensorNames[i]) + valueStyle.Render(fmt.Sprintf("%+.4f", v)) + "\n")
	}
	if len(m.last.Control) == 2 {
		s.WriteString(labelStyle.Render("T") + valueStyle.Render(fmt.Sprintf("%+.3f", m.last.Control[0])) + "\n")
		s.WriteString(labelStyle.Render("d") + valueStyle.Render(fmt.Sprintf("%+.4f", m.last.Control[1])) + "\n")
	}
	if n := m.feed.Dropped(); n > 0 {
		s.WriteString(labelStyle.Render("dropped") + valueStyle.Render(fmt.Sprint(n)) + "\n")
	}

	help := "SP:Pause R:Reset Q:Quit"
	if m.manual != nil {
		help += "\n←→:Torque ↑↓:Lean"
	}
	s.WriteString(helpStyle.Render("─────────────────────\n" + help))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
}

// Running reports whether ticks advance the bicycle.
func (m Model) Running() bool { return m.running }

// Fallen reports whether the roll angle passed metrics.FallAngle.
func (m Model) Fallen() bool { return m.fallen }

func (m Model) Err() error { return m.err }
