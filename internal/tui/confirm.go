// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stacks/internal/library"
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

type confirmKeyMap struct {
	Accept  key.Binding
	Decline key.Binding
	Quit    key.Binding
}

var confirmKeys = confirmKeyMap{
	Accept: key.NewBinding(
		key.WithKeys("y", "Y", "enter"),
		key.WithHelp("y/enter", "add book"),
	),
	Decline: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "skip"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

type confirmStyles struct {
	box     lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	help    lipgloss.Style
	missing lipgloss.Style
}

func newConfirmStyles() confirmStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	return confirmStyles{
		box: lipgloss.NewStyle().
			Border(asciiBorder).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		missing: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}

type confirmModel struct {
	book     library.Book
	styles   confirmStyles
	answered bool
	accepted bool
}

func newConfirmModel(book library.Book) confirmModel {
	return confirmModel{
		book:   book,
		styles: newConfirmStyles(),
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmKeys.Accept):
		m.answered = true
		m.accepted = true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Decline), key.Matches(keyMsg, confirmKeys.Quit):
		m.answered = true
		m.accepted = false
		return m, tea.Quit
	}

	return m, nil
}

func (m confirmModel) View() string {
	var sb strings.Builder

	title := m.book.Title
	if title == "" {
		title = m.styles.missing.Render("(no title)")
	} else {
		title = m.styles.title.Render(title)
	}
	sb.WriteString(title)
	sb.WriteString("\n\n")

	rows := []struct {
		label, value string
	}{
		{"ISBN", m.book.ISBN},
		{"Author", m.book.Author},
		{"Publisher", m.book.Publisher},
		{"Published", m.book.PublishedDate},
	}
	for _, row := range rows {
		value := row.value
		if value == "" {
			value = m.styles.missing.Render("unknown")
		} else {
			value = m.styles.value.Render(value)
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", m.styles.label.Render(row.label+":"), value))
	}

	body := m.styles.box.Render(sb.String())
	help := m.styles.help.Render("y/enter: add book  n: skip  q/esc: cancel")

	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

// ConfirmAddition shows a fetched record and asks whether to add it to the
// collection. It satisfies flow.ConfirmFunc.
func ConfirmAddition(book library.Book) (bool, error) {
	final, err := runProgram(newConfirmModel(book))
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", final)
	}
	return m.answered && m.accepted, nil
}
