package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/modxel/internal/editor"
)

// Styles holds the lipgloss styles of the widgets.
type Styles struct {
	Caption  lipgloss.Style
	Selected lipgloss.Style
	Option   lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the built-in styles.
func DefaultStyles() Styles {
	return Styles{
		Caption:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Option:   lipgloss.NewStyle(),
		Help:     lipgloss.NewStyle().Faint(true),
	}
}

// promptModel asks for one line of text.
type promptModel struct {
	caption   string
	input     textinput.Model
	keys      KeyMap
	styles    Styles
	done      bool
	cancelled bool
}

func newPromptModel(p editor.Prompt, keys KeyMap, styles Styles) promptModel {
	input := textinput.New()
	input.Prompt = "> "
	input.SetValue(p.Initial)
	input.CursorEnd()
	if p.Secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.Focus()

	return promptModel{
		caption: p.Caption,
		input:   input,
		keys:    keys,
		styles:  styles,
	}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Accept):
			m.done = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.styles.Caption.Render(m.caption) + "\n" +
		m.input.View() + "\n" +
		m.styles.Help.Render("enter accept • esc cancel") + "\n"
}

// Value returns the entered text.
func (m promptModel) Value() string {
	return m.input.Value()
}

// chooserHeight is the number of options visible at once.
const chooserHeight = 10

// chooserModel asks for one of several options.
type chooserModel struct {
	caption   string
	options   []string
	cursor    int
	offset    int
	keys      KeyMap
	styles    Styles
	done      bool
	cancelled bool
}

func newChooserModel(c editor.Choice, keys KeyMap, styles Styles) chooserModel {
	m := chooserModel{
		caption: c.Caption,
		options: c.Options,
		keys:    keys,
		styles:  styles,
	}
	if c.Selected >= 0 && c.Selected < len(c.Options) {
		m.cursor = c.Selected
	}
	m.scroll()
	return m
}

func (m chooserModel) Init() tea.Cmd {
	return nil
}

func (m chooserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Accept):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Home):
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.End):
		m.cursor = len(m.options) - 1
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *chooserModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+chooserHeight {
		m.offset = m.cursor - chooserHeight + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m chooserModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Caption.Render(m.caption))
	b.WriteString("\n")

	end := m.offset + chooserHeight
	if end > len(m.options) {
		end = len(m.options)
	}
	for i := m.offset; i < end; i++ {
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + m.options[i]))
		} else {
			b.WriteString(m.styles.Option.Render("  " + m.options[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(fmt.Sprintf("%d/%d • ↑/↓ move • enter accept • esc cancel", m.cursor+1, len(m.options))))
	b.WriteString("\n")
	return b.String()
}

// Index returns the chosen option, or -1 when cancelled.
func (m chooserModel) Index() int {
	if m.cancelled || !m.done {
		return -1
	}
	return m.cursor
}
