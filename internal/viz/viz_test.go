package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.String() != strings.Repeat(strings.Repeat("\u2800", 4)+"\n", 2) {
		t.Error("expected blank braille canvas")
	}

	c.DrawLine(0, 0, 7, 7)
	for i := 0; i <= 7; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("expected dot at (%d,%d)", i, i)
		}
	}
	c.Set(-1, 3)
	c.Set(100, 0)
	if c.IsSet(100, 0) {
		t.Error("expected out of range dot to be ignored")
	}

	c.Clear()
	if c.IsSet(3, 3) {
		t.Error("expected clear canvas")
	}
}

func TestSideViewDraw(t *testing.T) {
	s := sim.Sample{
		Hands:   []sim.HandSample{{Side: grab.Right, Position: mgl64.Vec3{0, 0.5, 0}, Held: "ball"}},
		Targets: []sim.TargetSample{{ID: "ball", Position: mgl64.Vec3{0, 0.5, 0}}},
	}
	v := FitSideView(s)
	if v != DefaultSideView {
		t.Errorf("expected default framing for a centered scene, got %+v", v)
	}

	far := s
	far.Targets = []sim.TargetSample{{ID: "ball", Position: mgl64.Vec3{2, 1.5, 0}}}
	if fv := FitSideView(far); fv.MaxX < 2.1 || fv.MaxY < 1.6 {
		t.Errorf("expected framing to grow around far targets, got %+v", fv)
	}

	c := NewCanvas(20, 10)
	v.Draw(c, s, 0.05)
	x, y := v.project(c, s.Hands[0].Position)
	if !c.IsSet(x, y) {
		t.Error("expected hand cross at its projected position")
	}
	_, gy := v.project(c, mgl64.Vec3{})
	if !c.IsSet(0, gy) || !c.IsSet(39, gy) {
		t.Error("expected ground line across the canvas")
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("expected flat line, got %q", got)
	}
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i)
	}
	if got := SparklineChart(values, 10); !strings.Contains(got, "█") {
		t.Errorf("expected a full bar for the newest value, got %q", got)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("expected fallback theme")
	}
	if NextTheme(Themes[len(Themes)-1]).Name != Themes[0].Name {
		t.Error("expected theme cycling to wrap")
	}
	if ThemeOcean.StateColor(grab.Held) != ThemeOcean.Success {
		t.Error("expected held to use the success color")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("expected a name per theme")
	}
}

func TestPlotSpeeds(t *testing.T) {
	if PlotSpeeds(nil, 40, 5) != "" {
		t.Error("expected empty plot without data")
	}
	out := PlotSpeeds([]Series{
		{Name: "right", Values: []float64{0, 1, 2, 1}},
		{Name: "left"},
		{Name: "ball", Values: []float64{0, 0.5, 1, 3}},
	}, 40, 5)
	if !strings.Contains(out, "right · ball") {
		t.Errorf("expected caption naming plotted series, got:\n%s", out)
	}
}

func TestLiveObserve(t *testing.T) {
	m := NewLive(nil, sim.Config{Dt: 0.01, Duration: 1}, "pickup")
	ball := &grab.Target{ID: "ball"}
	msg := frameMsg{
		sample: sim.Sample{
			Time:  0.5,
			Hands: []sim.HandSample{{Side: grab.Right, State: grab.Held, Held: "ball", Speed: 1.25}},
		},
		events: []grab.Event{{Kind: grab.EventGrabbed, Side: grab.Right, Target: ball, Time: 0.5}},
	}

	next, _ := m.Update(msg)
	m = next.(Live)
	if len(m.speeds[grab.Right]) != 1 || m.speeds[grab.Right][0] != 1.25 {
		t.Errorf("expected speed history, got %v", m.speeds[grab.Right])
	}
	if len(m.events) != 1 || !strings.Contains(m.events[0], "ball") {
		t.Errorf("expected grab event line, got %v", m.events)
	}

	view := m.View()
	for _, want := range []string{"pickup", "held", "ball", "1.25 m/s"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if next.(Live).running {
		t.Error("expected space to pause")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if next.(Live).theme.Name == m.theme.Name {
		t.Error("expected t to change theme")
	}
}

func TestPicker(t *testing.T) {
	p := NewPicker([]Choice{{Name: "pickup"}, {Name: "throw"}})
	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(Picker).Chosen; got != "throw" {
		t.Errorf("expected throw, got %q", got)
	}
	if cmd == nil {
		t.Error("expected quit command after choosing")
	}
	if !strings.Contains(p.View(), "pickup") {
		t.Error("expected view to list scenarios")
	}
}
