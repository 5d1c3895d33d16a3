package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stuart/site"
)

type (
	progressMsg site.Progress
	finishedMsg struct{}
)

type progressModel struct {
	last     string
	spinner  spinner.Model
	done     int
	total    int
	failed   int
	finished bool
}

func newProgressModel() progressModel {
	return progressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(nameStyle),
		),
	}
}

func (m progressModel) Init() tea.Cmd { return m.spinner.Tick }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done, m.total, m.last = msg.Done, msg.Total, msg.Path
		if msg.Err != nil {
			m.failed++
		}

		return m, nil

	case finishedMsg:
		m.finished = true

		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}

	view := fmt.Sprintf("%s %d/%d %s", m.spinner.View(), m.done, m.total, hintStyle.Render(m.last))
	if m.failed > 0 {
		view += errorStyle.Render(fmt.Sprintf(" %d failed", m.failed))
	}

	return view + "\n"
}

// progress shows a spinner with the count of finished outputs while a build
// runs.
type progress struct {
	program *tea.Program
	exited  chan struct{}
}

func startProgress(ctx context.Context, w io.Writer) *progress {
	p := &progress{
		program: tea.NewProgram(newProgressModel(),
			tea.WithContext(ctx),
			tea.WithOutput(w),
			tea.WithInput(nil),
		),
		exited: make(chan struct{}),
	}

	go func() {
		defer close(p.exited)

		_, _ = p.program.Run()
	}()

	return p
}

func (p *progress) report(sp site.Progress) { p.program.Send(progressMsg(sp)) }

// stop clears the spinner and waits for the program to exit.
func (p *progress) stop() {
	p.program.Send(finishedMsg{})
	<-p.exited
}
