package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voxreel/internal/pipeline"
)

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorInfo    = "#626262"
	maxBarWidth  = 60
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))
)

type progressMsg pipeline.Progress

type runDoneMsg struct {
	result pipeline.Result
	err    error
}

// progressModel renders one pipeline run as a spinner, a stage label and a
// progress bar.
type progressModel struct {
	spinner  spinner.Model
	bar      progress.Model
	label    string
	fraction float64
	cancel   context.CancelFunc
	done     bool
	result   pipeline.Result
	err      error
}

func newProgressModel(cancel context.CancelFunc) progressModel {
	return progressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(titleStyle),
		),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label:  "Starting",
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.label = "Cancelling"
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-8, 10), maxBarWidth)
		return m, nil
	case progressMsg:
		m.label = msg.Label
		m.fraction = msg.Fraction
		return m, nil
	case runDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		if msg.err == nil {
			m.fraction = 1
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), labelStyle.Render(m.label))
	b.WriteString(m.bar.ViewAs(m.fraction))
	b.WriteString("\n")
	return b.String()
}

// runWithProgressUI drives the run on a goroutine while a bubbletea program
// owns the terminal.
func runWithProgressUI(ctx context.Context, r runner, req pipeline.Request, out io.Writer) (pipeline.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newProgressModel(cancel), tea.WithOutput(out), tea.WithContext(ctx))
	go func() {
		result, err := r.Run(runCtx, req, func(p pipeline.Progress) {
			program.Send(progressMsg(p))
		})
		program.Send(runDoneMsg{result: result, err: err})
	}()

	final, err := program.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return pipeline.Result{}, ctxErr
	}
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("progress display: %w", err)
	}
	model := final.(progressModel)
	return model.result, model.err
}
