package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/rmw-cdr/msgspec"
	"github.com/wippyai/rmw-cdr/typesupport"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// listWindow is the number of type names shown at once.
const listWindow = 20

type modelState int

const (
	stateSelectType modelState = iota
	stateInputHex
	stateShowResult
)

type interactiveModel struct {
	err      error
	loader   *msgspec.Loader
	logger   *zap.Logger
	session  *session
	types    []string
	details  string
	witText  string
	result   string
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(loader *msgspec.Loader, logger *zap.Logger) *interactiveModel {
	return &interactiveModel{
		loader: loader,
		logger: logger,
		state:  stateSelectType,
	}
}

type discoveredMsg struct {
	err   error
	types []string
}

type loadedMsg struct {
	err     error
	session *session
	details string
	wit     string
}

type decodedMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.discover
}

func (m *interactiveModel) discover() tea.Msg {
	names, err := m.loader.Discover()
	if err != nil {
		return discoveredMsg{err: err}
	}
	if len(names) == 0 {
		return discoveredMsg{err: errors.New("no message definitions found; set -path or AMENT_PREFIX_PATH")}
	}
	return discoveredMsg{types: names}
}

func (m *interactiveModel) loadType() tea.Msg {
	mm, err := m.loader.Message(m.types[m.selected])
	if err != nil {
		return loadedMsg{err: err}
	}
	s, err := newSession(mm, typesupport.Options{}, m.logger)
	if err != nil {
		return loadedMsg{err: err}
	}
	witText, err := s.wit()
	if err != nil {
		witText = "(" + err.Error() + ")"
	}
	return loadedMsg{session: s, details: s.describe(), wit: witText}
}

func (m *interactiveModel) decodeInput() tea.Msg {
	data, err := parseHex(m.input.Value())
	if err != nil {
		return decodedMsg{err: err}
	}
	out, err := m.session.decode(data)
	return decodedMsg{result: out, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputHex {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				if len(m.types) > 0 {
					m.err = nil
					return m, m.loadType
				}
			case stateInputHex:
				return m, m.decodeInput
			case stateShowResult:
				m.state = stateInputHex
				m.result = ""
				m.err = nil
				m.input.SetValue("")
				m.input.Focus()
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateInputHex:
				m.state = stateSelectType
				m.session = nil
				m.err = nil
			case stateShowResult:
				m.state = stateInputHex
				m.result = ""
				m.err = nil
				m.input.Focus()
			}
			return m, nil
		}

	case discoveredMsg:
		m.err = msg.err
		m.types = msg.types

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.details = msg.details
		m.witText = msg.wit
		m.input = newHexInput()
		m.state = stateInputHex

	case decodedMsg:
		m.result = msg.result
		m.err = msg.err
		m.input.Blur()
		m.state = stateShowResult
	}

	if m.state == stateInputHex {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func newHexInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "2a000000 03000000 686900..."
	ti.Prompt = "hex: "
	ti.Width = 60
	ti.Focus()
	return ti
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.types == nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.types == nil {
		return "Discovering message types..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("CDR Inspector"))
	b.WriteString(fmt.Sprintf(" %d types\n\n", len(m.types)))

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a message type:\n\n")
		start := max(0, min(m.selected-listWindow/2, len(m.types)-listWindow))
		end := min(start+listWindow, len(m.types))
		for i := start; i < end; i++ {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + m.types[i]))
			} else {
				b.WriteString("  " + m.types[i])
			}
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • q quit"))

	case stateInputHex:
		b.WriteString(nameStyle.Render(m.types[m.selected]))
		b.WriteString("\n\n")
		b.WriteString(m.details)
		b.WriteString("\n")
		b.WriteString(typeStyle.Render(m.witText))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Decoded %s:\n\n", nameStyle.Render(m.types[m.selected])))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode another • esc back • q quit"))
	}

	return b.String()
}

func runInteractive(loader *msgspec.Loader, logger *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(loader, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
