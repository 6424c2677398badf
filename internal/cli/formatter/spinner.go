package formatter

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type stopMsg struct{}

type spinnerModel struct {
	spin    spinner.Model
	message string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd { return m.spin.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return "  " + m.spin.View() + " " + Dim(m.message)
}

// StartSpinner animates message on out until the returned function is
// called. It does nothing when out is not an interactive terminal.
func StartSpinner(out io.Writer, message string, interactive bool) func() {
	if !interactive {
		return func() {}
	}
	model := spinnerModel{
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StylePurple)),
		message: message,
	}
	p := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithoutSignalHandler())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.Send(stopMsg{})
			<-done
		})
	}
}
