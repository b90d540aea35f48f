package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

const (
	width           = 60
	height          = 16
	historyCapacity = 600
	eventLines      = 8
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

type frameMsg struct {
	sample sim.Sample
	events []grab.Event
}

type doneMsg struct{ err error }

// feed runs the simulator on its own goroutine and hands frames over one
// at a time. Events are collected on the simulator goroutine and shipped
// with the frame that produced them.
type feed struct {
	frames  chan frameMsg
	done    chan error
	cancel  context.CancelFunc
	pending []grab.Event
}

func startFeed(s *sim.Simulator, cfg sim.Config) *feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &feed{frames: make(chan frameMsg), done: make(chan error, 1), cancel: cancel}
	s.Scene().AddListener(grab.ListenerFunc(func(e grab.Event) { f.pending = append(f.pending, e) }))

	go func() {
		err := s.RunWithCallback(ctx, cfg, func(smp sim.Sample) bool {
			msg := frameMsg{sample: smp, events: f.pending}
			f.pending = nil
			select {
			case f.frames <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		})
		f.done <- err
		close(f.frames)
	}()
	return f
}

func (f *feed) next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-f.frames
		if !ok {
			return doneMsg{err: <-f.done}
		}
		return msg
	}
}

// Live plays a simulator in the terminal.
type Live struct {
	sim       *sim.Simulator
	cfg       sim.Config
	scenario  string
	feed      *feed
	last      sim.Sample
	speeds    map[grab.Side][]float64
	events    []string
	canvas    *Canvas
	view      SideView
	fitted    bool
	theme     Theme
	running   bool
	finished  bool
	err       error
	showHelp  bool
	tickEvery time.Duration
}

func NewLive(s *sim.Simulator, cfg sim.Config, scenario string) Live {
	tick := time.Duration(cfg.Dt * float64(time.Second))
	if tick <= 0 {
		tick = time.Second / 60
	}
	return Live{
		sim:       s,
		cfg:       cfg,
		scenario:  scenario,
		speeds:    make(map[grab.Side][]float64),
		canvas:    NewCanvas(width, height),
		view:      DefaultSideView,
		theme:     CurrentTheme,
		running:   true,
		tickEvery: tick,
	}
}

func (m Live) tick() tea.Cmd {
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd { return m.tick() }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.feed != nil {
				m.feed.cancel()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running && !m.finished {
				return m, m.tick()
			}
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}

	case TickMsg:
		if !m.running || m.finished {
			return m, nil
		}
		if m.feed == nil {
			m.feed = startFeed(m.sim, m.cfg)
		}
		return m, m.feed.next()

	case frameMsg:
		m.observe(msg)
		if m.running {
			return m, m.tick()
		}

	case doneMsg:
		m.feed.cancel()
		m.finished = true
		m.err = msg.err
	}
	return m, nil
}

func (m *Live) observe(f frameMsg) {
	m.last = f.sample
	if !m.fitted {
		m.view = FitSideView(f.sample)
		m.fitted = true
	}
	for _, h := range f.sample.Hands {
		hist := append(m.speeds[h.Side], h.Speed)
		if len(hist) > historyCapacity {
			hist = hist[len(hist)-historyCapacity:]
		}
		m.speeds[h.Side] = hist
	}
	for _, e := range f.events {
		line := fmt.Sprintf("%6.3fs %-5s %s", e.Time, e.Side, e.Kind)
		if id := e.TargetID(); id != "" {
			line += " " + id
		}
		m.events = append(m.events, line)
	}
	if len(m.events) > eventLines {
		m.events = m.events[len(m.events)-eventLines:]
	}
}

func (m Live) status() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Bold(true).Foreground(m.theme.Error).Render("ERROR")
	case m.finished:
		return StatusDone.Render("DONE")
	case m.running:
		return StatusRunning.Render("RUNNING")
	default:
		return StatusPaused.Render("PAUSED")
	}
}

func (m Live) View() string {
	if m.showHelp {
		return GlassPanel.Render(strings.Join([]string{
			HeaderStyle.Render("keys"),
			"space  pause / resume",
			"t      next theme",
			"?      close help",
			"q      quit",
		}, "\n"))
	}

	m.view.Draw(m.canvas, m.last, 0.05)
	scene := canvasStyle.Render(lipgloss.NewStyle().Foreground(m.theme.Secondary).Render(m.canvas.String()))

	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(m.scenario)
	b.WriteString(HeaderStyle.Render(title+"  "+m.status()) + "\n\n")

	progress := 0.0
	if m.cfg.Duration > 0 {
		progress = m.last.Time / m.cfg.Duration
	}
	fmt.Fprintf(&b, "%s %s %s\n", MetricLabel.Render("time"), MetricValue.Render(fmt.Sprintf("%6.3fs", m.last.Time)), ProgressBar(progress, 20))
	fmt.Fprintf(&b, "%s %s\n\n", MetricLabel.Render("joints"), MetricValue.Render(fmt.Sprint(m.last.Constraints)))

	for _, h := range m.last.Hands {
		held := h.Held
		if held == "" {
			held = "-"
		}
		fmt.Fprintf(&b, "%s %s %s\n", MetricLabel.Render(h.Side.String()), StateBadge(h.State, m.theme), MetricValue.Render(held))
		fmt.Fprintf(&b, "%s %s %s\n", MetricLabel.Render(""), MetricValue.Render(fmt.Sprintf("%5.2f m/s", h.Speed)), SparklineChart(m.speeds[h.Side], 20))
	}

	if right := m.speeds[grab.Right]; len(right) > 1 {
		chart := asciigraph.Plot(right, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("right hand speed"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	b.WriteString("\n" + Separator(40) + "\n")
	for _, line := range m.events {
		b.WriteString(Subtle.Render(line) + "\n")
	}
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("space pause · t theme · ? help · q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, scene, statsStyle.Render(b.String()))
}

// RunLive plays s in the alternate screen until the run ends and the user
// quits.
func RunLive(s *sim.Simulator, cfg sim.Config, scenario string) error {
	_, err := tea.NewProgram(NewLive(s, cfg, scenario), tea.WithAltScreen()).Run()
	return err
}
