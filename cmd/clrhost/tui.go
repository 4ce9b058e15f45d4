package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/clr-host/config"
	"github.com/wippyai/clr-host/host"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
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

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Pick configured delegates and call them interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("tui needs an interactive terminal; use run instead")
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if len(cfg.Delegates) == 0 {
				return fmt.Errorf("no delegates defined in config")
			}

			h, s, err := c.start(cfg)
			if err != nil {
				return err
			}
			m := newInteractiveModel(cfg, h, s)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			if cerr := m.close(); err == nil {
				err = cerr
			}
			return err
		},
	}
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

// interactiveModel owns a started session from construction until close.
// Calls run on tea.Cmd goroutines and only see copies of the model's state.
type interactiveModel struct {
	err      error
	host     *host.Host
	session  *host.Session
	invoker  *invoker
	library  string
	result   string
	funcs    []config.DelegateConfig
	inputs   []textinput.Model
	calls    sync.WaitGroup
	selected int
	focusIdx int
	state    modelState
	busy     bool
}

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(cfg *config.Config, h *host.Host, s *host.Session) *interactiveModel {
	return &interactiveModel{
		host:    h,
		session: s,
		invoker: newInvoker(s),
		library: cfg.Library,
		funcs:   cfg.Delegates,
		state:   stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

// close waits for a running call to return, then shuts the runtime down.
// Only the first call has any effect.
func (m *interactiveModel) close() error {
	m.calls.Wait()
	if m.session == nil {
		return nil
	}
	err := stop(m.host, m.session)
	m.session = nil
	return err
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			if m.busy {
				return m, nil
			}
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction()
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callFunction()

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.busy = false
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = p
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// callFunction snapshots the selected delegate and its arguments and
// returns a Cmd that calls it. The call is counted in m.calls until it
// returns.
func (m *interactiveModel) callFunction() tea.Cmd {
	d := m.funcs[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = input.Value()
	}
	iv, wg := m.invoker, &m.calls

	m.busy = true
	wg.Add(1)
	return func() tea.Msg {
		defer wg.Done()
		result, err := iv.invoke(d, args)
		return callResultMsg{result: result, err: err}
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("CLR Host"))
	b.WriteString(" ")
	b.WriteString(m.library)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a delegate to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f)))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(f.Params[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatFunc(f config.DelegateConfig) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = typeStyle.Render(p)
	}
	result := ""
	if f.Result != "" && f.Result != "void" {
		result = " -> " + typeStyle.Render(f.Result)
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result + " " +
		helpStyle.Render(f.Assembly+"!"+f.Type+"."+f.Method)
}
