package ui

// view_helpers.go provides common View() rendering helpers.
// Use these to build consistent two-box layouts across all TUI models.

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// =============================================================================
// Table Rendering with Full-Width Selection
// =============================================================================

// RenderTableWithSelection renders a bubbles table with full-width selection highlight.
// The table's Selected style should be neutral (see ApplyTableStyles); this
// function applies the visible selection styling.
//
// bubbles/table View() output: line 0 is the header, lines 1+ are the visible
// data rows. The visible cursor row is derived from the table's scroll window.
func RenderTableWithSelection(t table.Model, layout Layout) string {
	lines := strings.Split(t.View(), "\n")
	result := make([]string, 0, len(lines)+1)

	cursor := t.Cursor()
	height := t.Height()
	totalRows := len(t.Rows())

	// Match the bubbles viewport: it only scrolls once the cursor leaves the window
	start := 0
	if totalRows > height {
		if cursor >= height {
			start = cursor - height + 1
		}
		if maxStart := totalRows - height; start > maxStart {
			start = maxStart
		}
	}
	visibleCursorIndex := cursor - start

	for i, line := range lines {
		if i == 0 {
			result = append(result, NormalStyle.Render(line))
			result = append(result, FullWidthDivider(layout.InnerWidth))
			continue
		}

		if i-1 == visibleCursorIndex {
			// Strip escape codes so embedded resets cannot cut the background short
			clean := stripEscapeCodes(line)
			if w := StringWidth(clean); w < layout.InnerWidth {
				clean += strings.Repeat(" ", layout.InnerWidth-w)
			} else if w > layout.InnerWidth {
				clean = truncateToWidth(clean, layout.InnerWidth)
			}
			result = append(result, SelectedStyle.Render(clean))
			continue
		}

		result = append(result, NormalStyle.Render(line))
	}

	return strings.Join(result, "\n")
}

// =============================================================================
// View Header - Title + Divider Pattern
// =============================================================================

// ViewHeader renders title + full-width divider + spacing.
func ViewHeader(title string, innerWidth int) string {
	return ViewHeaderWithSubtitle(title, "", innerWidth)
}

// ViewHeaderWithSubtitle renders title + subtitle + divider + spacing.
func ViewHeaderWithSubtitle(title, subtitle string, innerWidth int) string {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	if subtitle != "" {
		b.WriteString(RenderHint(subtitle))
		b.WriteString("\n")
	}
	b.WriteString(FullWidthDivider(innerWidth))
	b.WriteString("\n\n")
	return b.String()
}

// =============================================================================
// Two-Box Layout
// =============================================================================

// TwoBoxView constructs the standard two-box layout: the main content in a
// red-bordered box and the centered help text in a one-row box below it.
//
//	func (m myModel) View() string {
//	    content := ViewHeader("Title", m.layout.InnerWidth)
//	    content += m.table.View()
//	    return TwoBoxView(content, "up/down: nav | Enter: select", m.layout)
//	}
func TwoBoxView(content, helpText string, layout Layout) string {
	main := BorderedBox(layout).Render(content)
	help := BorderStyle.
		BorderForeground(ColorText).
		Width(layout.InnerWidth).
		Render(CenterText(RenderHint(helpText), layout.InnerWidth))
	return lipgloss.JoinVertical(lipgloss.Left, main, help)
}

// CenterText centers text within the given width
func CenterText(text string, width int) string {
	w := StringWidth(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// FullWidthDivider returns a horizontal divider spanning the inner width.
func FullWidthDivider(innerWidth int) string {
	return strings.Repeat("─", innerWidth)
}

// StringWidth returns the printable width of s, ignoring ANSI sequences
func StringWidth(s string) int {
	return lipgloss.Width(s)
}

func stripEscapeCodes(s string) string {
	return ansi.Strip(s)
}

func truncateToWidth(s string, width int) string {
	return ansi.Truncate(s, width, "")
}
