package ui

// spinner.go provides a blocking spinner for long-running operations.
// Uses Bubble Tea spinner (white) instead of huh/spinner.

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user aborts a blocking operation
var ErrCancelled = errors.New("cancelled")

// actionDoneMsg signals the action completed
type actionDoneMsg struct {
	err error
}

// blockingSpinnerModel runs a spinner while an action executes
type blockingSpinnerModel struct {
	spinner   spinner.Model
	title     string
	action    func() error
	done      bool
	cancelled bool
	err       error
}

// RunWithSpinner executes an action while displaying a spinner and returns
// the action's error. ctrl+c stops waiting and returns ErrCancelled; the
// action keeps running in the background.
//
// Example:
//
//	var doc *dom.Document
//	err := RunWithSpinner("Loading page...", func() (err error) {
//	    doc, err = client.OpenPage(ctx, target, depth)
//	    return err
//	})
func RunWithSpinner(title string, action func() error, opts ...tea.ProgramOption) error {
	m := newSpinnerModel(title, action)

	p := tea.NewProgram(m, opts...)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("spinner program error: %w", err)
	}

	final := finalModel.(blockingSpinnerModel)
	if final.cancelled {
		return ErrCancelled
	}
	return final.err
}

func newSpinnerModel(title string, action func() error) blockingSpinnerModel {
	return blockingSpinnerModel{
		spinner: NewAppSpinner(),
		title:   title,
		action:  action,
	}
}

func (m blockingSpinnerModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.runAction(),
	)
}

func (m blockingSpinnerModel) runAction() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.action()}
	}
}

func (m blockingSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m blockingSpinnerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), RenderNormal(m.title))
}
