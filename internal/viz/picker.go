package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// Choice is one pickable scenario.
type Choice struct {
	Name        string
	Description string
}

// Picker is a menu of scenarios. Chosen is empty when the user quit.
type Picker struct {
	choices []Choice
	cursor  int
	Chosen  string
}

func NewPicker(choices []Choice) Picker {
	return Picker{choices: choices}
}

func (m Picker) Init() tea.Cmd { return nil }

func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.choices) > 0 {
			m.Chosen = m.choices[m.cursor].Name
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Picker) View() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("grabsim") + dim.Render(" · pick a scenario") + "\n\n")
	for i, c := range m.choices {
		cursor, name := "  ", dim.Render(c.Name)
		if i == m.cursor {
			cursor, name = cyan.Render("> "), white.Bold(true).Render(c.Name)
		}
		fmt.Fprintf(&b, "%s%-24s %s\n", cursor, name, dim.Render(c.Description))
	}
	b.WriteString("\n" + KeyHint.Render("↑/↓ move · enter run · q quit"))
	return b.String()
}

// Pick runs the picker and returns the chosen scenario name.
func Pick(choices []Choice) (string, error) {
	final, err := tea.NewProgram(NewPicker(choices)).Run()
	if err != nil {
		return "", err
	}
	return final.(Picker).Chosen, nil
}
