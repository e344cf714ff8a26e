package ui

// selectors.go provides the table selector used to pick stored snapshots.

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thesavant42/formkeeper/internal/models"
)

// SelectorConfig defines configuration for a table selector.
type SelectorConfig struct {
	Title    string         // Main title displayed at top
	Subtitle string         // Optional subtitle (e.g., "5 items available")
	HelpText string         // Help text for footer
	Columns  []table.Column // Optional: defaults to one column titled Title
	Specs    []ColumnSpec   // Optional: sizes columns to the terminal, overrides Columns
	Rows     []table.Row
	Values   []string // Optional: value returned per row instead of its first cell
}

// SelectorModel is a table selector that returns the chosen row.
type SelectorModel struct {
	BaseTableModel
	config SelectorConfig
}

// NewSelectorModel creates a selector with the given configuration.
func NewSelectorModel(cfg SelectorConfig) SelectorModel {
	base := NewBaseTableModel()

	if len(cfg.Specs) > 0 {
		cfg.Columns = CalculateColumns(cfg.Specs, base.Layout.TableWidth)
	}
	if len(cfg.Columns) == 0 {
		cfg.Columns = []table.Column{{Title: cfg.Title, Width: base.Layout.TableWidth}}
	}
	if cfg.HelpText == "" {
		cfg.HelpText = "↑/↓: navigate | Enter: select | Esc: cancel"
	}
	base.Table = InitTable(cfg.Columns, cfg.Rows, base.Layout)

	return SelectorModel{BaseTableModel: base, config: cfg}
}

func (m SelectorModel) Init() tea.Cmd {
	return StandardInit()
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.HandleWindowResize(msg.Width, msg.Height)
		if len(m.config.Specs) > 0 {
			m.Table.SetColumns(CalculateColumns(m.config.Specs, m.Layout.TableWidth))
		}
		return m, nil

	case tea.KeyMsg:
		if quit, cmd := HandleQuitKeys(msg.String()); quit {
			m.Selected = -1
			m.Quitting = true
			return m, cmd
		}
		if sel, ok := HandleSelectKey(msg.String(), m.Table.Cursor()); ok && len(m.config.Rows) > 0 {
			m.Selected = sel
			m.Quitting = true
			return m, tea.Quit
		}
	}

	// Let table handle navigation
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m SelectorModel) View() string {
	if m.Quitting {
		return ""
	}
	content := ViewHeaderWithSubtitle(m.config.Title, m.config.Subtitle, m.Layout.InnerWidth)
	content += RenderTableWithSelection(m.Table, m.Layout)
	return TwoBoxView(content, m.config.HelpText, m.Layout)
}

// SelectedValue returns the value of the selected row: the matching entry of
// Values when given, otherwise the row's first cell. "" when cancelled.
func (m SelectorModel) SelectedValue() string {
	if !m.HasSelection() || m.Selected >= len(m.config.Rows) {
		return ""
	}
	if len(m.config.Values) > m.Selected {
		return m.config.Values[m.Selected]
	}
	if row := m.GetSelectedRow(); len(row) > 0 {
		return row[0]
	}
	return ""
}

// RunSelector runs a selector TUI and returns the selected value.
// Returns empty string if the user cancelled.
func RunSelector(cfg SelectorConfig) (string, error) {
	p := tea.NewProgram(NewSelectorModel(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("selector error: %w", err)
	}
	return finalModel.(SelectorModel).SelectedValue(), nil
}

// SnapshotSelectorConfig lays stored snapshots out as selector rows, newest first
func SnapshotSelectorConfig(page string, records []models.SnapshotRecord, total int) SelectorConfig {
	rows := make([]table.Row, len(records))
	values := make([]string, len(records))
	for i, r := range records {
		label := r.Label
		if label == "" {
			label = "-"
		}
		rows[i] = table.Row{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			label,
			strconv.Itoa(r.FieldCount),
			r.Page,
			shortID(r.ID),
		}
		values[i] = r.ID
	}

	title := "Stored Snapshots"
	if page != "" {
		title = "Snapshots of " + page
	}
	return SelectorConfig{
		Title:    title,
		Subtitle: fmt.Sprintf("%d of %d snapshots", len(records), total),
		Specs:    SnapshotColumns(),
		Rows:     rows,
		Values:   values,
	}
}

// RunSnapshotSelector lets the user pick a stored snapshot; returns its id
func RunSnapshotSelector(page string, records []models.SnapshotRecord, total int) (string, error) {
	return RunSelector(SnapshotSelectorConfig(page, records, total))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
