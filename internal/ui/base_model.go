package ui

// base_model.go provides common TUI functionality for Bubble Tea models.
// Embed these helpers in models to reduce boilerplate for Init, Update, and View patterns.

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// BaseTableModel provides common table TUI functionality.
// Embed this in models to get standard WindowSizeMsg handling and selection state.
type BaseTableModel struct {
	Table    table.Model
	Layout   Layout
	Quitting bool
	Selected int // -1 = no selection
}

// NewBaseTableModel creates a BaseTableModel with default layout.
func NewBaseTableModel() BaseTableModel {
	return BaseTableModel{
		Layout:   DefaultLayout(),
		Selected: -1,
	}
}

// InitTable creates and configures a table with proper styling and dimensions.
// Use this instead of manually calling table.New() to ensure consistent setup.
func InitTable(columns []table.Column, rows []table.Row, layout Layout) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(layout.TableHeight),
	)

	ApplyTableStyles(&t)

	// Ensure cursor starts at the top for proper viewport positioning
	t.GotoTop()

	return t
}

// StandardInit returns the standard Init command for table models.
func StandardInit() tea.Cmd {
	return tea.WindowSize()
}

// HandleWindowResize updates layout dimensions and the table height.
func (m *BaseTableModel) HandleWindowResize(width, height int) {
	m.Layout = NewLayout(width, height)
	m.Table.SetHeight(m.Layout.TableHeight)
}

// HandleQuitKeys returns true and Quit cmd for q/esc/ctrl+c keys.
//
// Example:
//
//	case tea.KeyMsg:
//	    if quit, cmd := HandleQuitKeys(msg.String()); quit {
//	        m.Quitting = true
//	        return m, cmd
//	    }
func HandleQuitKeys(key string) (bool, tea.Cmd) {
	switch key {
	case "q", "esc", "ctrl+c":
		return true, tea.Quit
	}
	return false, nil
}

// HandleSelectKey returns cursor position and true if enter pressed.
func HandleSelectKey(key string, cursor int) (int, bool) {
	if key == "enter" {
		return cursor, true
	}
	return -1, false
}

// HasSelection returns true if a selection was made (Selected >= 0).
func (m BaseTableModel) HasSelection() bool {
	return m.Selected >= 0
}

// GetSelectedRow returns the selected row data, or nil if no selection.
func (m BaseTableModel) GetSelectedRow() table.Row {
	if m.Selected >= 0 && m.Selected < len(m.Table.Rows()) {
		return m.Table.Rows()[m.Selected]
	}
	return nil
}
