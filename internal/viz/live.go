package viz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/config"
	"github.com/san-kum/atomsim/internal/driver"
	"github.com/san-kum/atomsim/internal/input"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	maxCatchUp      = 4
	gifPath         = "atoms.gif"
)

type TickMsg time.Time

// Model contains the world, the pointer sampler and the render buffers.
type Model struct {
	cfg     *config.Config
	name    string
	seed    int64
	runner  *driver.Runner
	sampler *input.Sampler
	clock   *driver.Clock
	canvas  *Canvas
	surface *Surface
	last    time.Time

	running      bool
	showHelp     bool
	recorder     *Recorder
	speedHistory []float64
	linkHistory  []float64
	err          error
}

// NewModel builds a live model with a width x height cell canvas.
func NewModel(cfg *config.Config, name string) (Model, error) {
	canvas := NewCanvas(width, height)
	m := Model{
		cfg:          cfg,
		name:         name,
		seed:         cfg.Seed,
		sampler:      input.NewSampler(cfg.ActiveDuration()),
		clock:        driver.NewClock(cfg.FPS, maxCatchUp),
		canvas:       canvas,
		surface:      NewSurface(canvas, cfg.Width, cfg.Height),
		running:      true,
		speedHistory: make([]float64, 0, historyCapacity),
		linkHistory:  make([]float64, 0, historyCapacity),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Run starts the TUI and blocks until the user quits.
func Run(cfg *config.Config, name string) error {
	m, err := NewModel(cfg, name)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m *Model) reset() error {
	wc, err := m.cfg.World()
	if err != nil {
		return err
	}
	w, err := atomic.New(wc, rand.New(rand.NewSource(m.seed)))
	if err != nil {
		return err
	}
	m.runner = driver.New(w, m.sampler)
	m.clock.Reset()
	m.last = time.Time{}
	m.speedHistory = m.speedHistory[:0]
	m.linkHistory = m.linkHistory[:0]
	m.canvas.Clear()
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.clock.Interval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.last = time.Time{}
		case "r":
			m.seed++
			if err := m.reset(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case "b":
			p := m.sampler.Position()
			m.sampler.Click(p.X, p.Y)
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if m.running {
			m.advance(time.Time(msg))
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X-canvasPadLeft, msg.Y-canvasPadTop
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return
	}
	p := m.surface.ToWorld(col, row)
	switch msg.Action {
	case tea.MouseActionMotion:
		m.sampler.Move(p.X, p.Y)
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.sampler.Click(p.X, p.Y)
		}
	}
}

// advance runs however many fixed ticks the elapsed wall time allows.
func (m *Model) advance(now time.Time) {
	elapsed := m.clock.Interval()
	if !m.last.IsZero() {
		elapsed = now.Sub(m.last)
	}
	m.last = now

	var cmds []atomic.DrawCommand
	n := m.clock.Advance(elapsed)
	for i := 0; i < n; i++ {
		cmds = m.runner.Step(m.cfg.Dt)
		st := m.runner.World().Stats()
		m.speedHistory = appendCapped(m.speedHistory, st.MeanSpeed)
		m.linkHistory = appendCapped(m.linkHistory, float64(st.Links))
	}
	if n == 0 {
		return
	}
	m.surface.Render(cmds)
	if m.recorder != nil {
		m.recorder.Capture(m.canvas)
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(2)
		return
	}
	if err := m.recorder.Save(gifPath); err != nil {
		m.err = err
	}
	m.recorder = nil
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := themedCanvas().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(themedHeader().Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(themedStatus(!m.running).Render(status))
	if m.recorder != nil {
		s.WriteString("  " + StatusRecording.Render(fmt.Sprintf("REC %d", m.recorder.Len())))
	}
	s.WriteString("\n\n")

	if len(m.speedHistory) > 1 {
		chart := asciigraph.Plot(m.speedHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Mean speed"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	w := m.runner.World()
	st := w.Stats()
	ptr := m.sampler.Position()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.runner.Tick()))
	row("Atoms", fmt.Sprintf("%d", w.Len()))
	row("Links", fmt.Sprintf("%d  %s", st.Links, Sparkline(m.linkHistory, 16)))
	row("Collisions", fmt.Sprintf("%d", st.Collisions))
	row("Pointer", fmt.Sprintf("%.0f, %.0f", ptr.X, ptr.Y))
	s.WriteString(labelStyle.Render("Bursting") + ProgressBar(float64(st.Bursting)/float64(w.Len()), 16) + "\n")
	row("Theme", CurrentTheme.Name)
	if m.err != nil {
		row("Error", m.err.Error())
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reseed Q:Quit\nB:Burst  T:Theme  G:Record\n?:Help   mouse: repel/burst"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reseed and restart       ║
║  B        - Burst at the pointer     ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  Mouse    - Move to repel, click to  ║
║             burst                    ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
