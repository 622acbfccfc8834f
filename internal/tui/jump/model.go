// Package jump содержит модель строки перехода к позиции песни для TUI
package jump

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-remixer/internal/utils"
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// SubmitMsg отправляется, когда введена корректная позиция
type SubmitMsg struct {
	Position float64
}

// CancelMsg отправляется при отмене ввода
type CancelMsg struct{}

// Model строка ввода позиции в формате M:SS
type Model struct {
	input    textinput.Model
	duration float64
	err      string
}

// NewModel создает строку ввода для песни заданной длительности
func NewModel(current, duration float64) *Model {
	input := textinput.New()
	input.Placeholder = "м:сс"
	input.Prompt = "⏩ "
	input.CharLimit = 9
	input.Width = 10
	input.SetValue(utils.FormatClock(current))
	input.PromptStyle = focusedStyle
	input.TextStyle = focusedStyle
	input.Focus()

	return &Model{input: input, duration: duration}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, func() tea.Msg { return CancelMsg{} }

		case "enter":
			pos, err := utils.ParseClock(m.input.Value())
			if err != nil {
				m.err = "Позиция в формате м:сс"
				return m, nil
			}
			if pos > m.duration {
				m.err = "Позиция за концом песни (" + utils.FormatClock(m.duration) + ")"
				return m, nil
			}
			return m, func() tea.Msg { return SubmitMsg{Position: pos} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Перейти к: "))
	b.WriteString(m.input.View())
	if m.err != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.err))
	}
	return b.String()
}
