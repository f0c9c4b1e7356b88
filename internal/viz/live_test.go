package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/atomsim/internal/config"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Particles = 20
	cfg.Seed = 1
	m, err := NewModel(cfg, "atomic")
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", next)
	}
	return nm, cmd
}

func TestModelTickSteps(t *testing.T) {
	m := newTestModel(t)
	now := time.Now()

	m, cmd := update(t, m, TickMsg(now))
	if cmd == nil {
		t.Error("expected next tick scheduled")
	}
	if m.runner.Tick() != 1 {
		t.Errorf("expected 1 tick, got %d", m.runner.Tick())
	}
	if len(m.speedHistory) != 1 {
		t.Errorf("expected 1 history sample, got %d", len(m.speedHistory))
	}

	// three intervals later: three ticks, under the catch-up cap
	m, _ = update(t, m, TickMsg(now.Add(3*m.clock.Interval())))
	if m.runner.Tick() != 4 {
		t.Errorf("expected 4 ticks, got %d", m.runner.Tick())
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.running {
		t.Fatal("expected paused")
	}
	m, _ = update(t, m, TickMsg(time.Now()))
	if m.runner.Tick() != 0 {
		t.Errorf("paused model should not step, got %d ticks", m.runner.Tick())
	}
}

func TestModelMouseMovesPointer(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.MouseMsg{X: 20 + canvasPadLeft, Y: 7 + canvasPadTop, Action: tea.MouseActionMotion})

	want := m.surface.ToWorld(20, 7)
	got := m.sampler.Position()
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Errorf("expected pointer at %v, got %v", want, got)
	}
	if !m.sampler.Next().Active {
		t.Error("expected pointer active after motion")
	}
}

func TestModelMouseOutsideCanvasIgnored(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	if m.sampler.Next().Active {
		t.Error("motion on the padding should be ignored")
	}
}

func TestModelClickBursts(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	s := m.sampler.Next()
	if !s.BurstPending {
		t.Error("expected burst pending after click")
	}
	if m.sampler.Next().BurstPending {
		t.Error("burst must be consumed by one sample")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelReseed(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, TickMsg(time.Now()))
	before := m.runner.World().Particle(0).Pos

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.runner.Tick() != 0 {
		t.Errorf("expected fresh runner, got tick %d", m.runner.Tick())
	}
	if m.runner.World().Particle(0).Pos == before {
		t.Error("expected a different layout after reseed")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, TickMsg(time.Now()))
	view := m.View()
	for _, want := range []string{"ATOMIC", "RUNNING", "Links", "Bursting"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
