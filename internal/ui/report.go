package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/formstate"
	"github.com/thesavant42/formkeeper/internal/models"
)

var (
	borderStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	headerStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	rowStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	dimRowStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Output is where Print* helpers write; messages go to stderr so stdout
// stays clean for snapshot JSON and restored HTML.
var Output io.Writer = os.Stderr

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintln(Output, SuccessStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintln(Output, ErrorStyle.Render("Error: "+message))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintln(Output, AccentStyle.Render("Warning: "+message))
}

// PrintInfo prints an informational line
func PrintInfo(message string) {
	fmt.Fprintln(Output, InfoStyle.Render(message))
}

// PrintHeader prints a styled header with an optional subtitle
func PrintHeader(title, subtitle string) {
	fmt.Fprintln(Output)
	fmt.Fprintln(Output, RenderTitle(title))
	if subtitle != "" {
		fmt.Fprintln(Output, InfoStyle.Render(subtitle))
	}
	fmt.Fprintln(Output)
}

// SaveSummary renders the one-line result of a save
func SaveSummary(page string, snap models.Snapshot) string {
	lists := 0
	for _, v := range snap {
		if v.IsList {
			lists++
		}
	}
	return fmt.Sprintf("Saved %d keys from %s (%d multi-value)", len(snap), page, lists)
}

// LoadSummary renders the one-line result of a restore
func LoadSummary(page string, result formstate.ApplyResult) string {
	s := fmt.Sprintf("Restored %d controls on %s, %d left untouched", result.Restored, page, result.Untouched)
	if n := len(result.EventErrors); n > 0 {
		s += fmt.Sprintf(", %d event handler errors", n)
	}
	return s
}

// FrameSummary lists the frames that could not be read, one per line
func FrameSummary(doc *dom.Document) []string {
	var lines []string
	var visit func(d *dom.Document, depth int)
	visit = func(d *dom.Document, depth int) {
		for _, f := range d.Frames {
			if !f.Accessible() {
				src := f.Src
				if src == "" {
					src = "(no src)"
				}
				lines = append(lines, fmt.Sprintf("%s%s: %v", strings.Repeat("  ", depth), src, f.Err))
				continue
			}
			visit(f.Doc, depth+1)
		}
	}
	if doc != nil {
		visit(doc, 0)
	}
	return lines
}

// KeyTable renders the keying of every control as a text table.
//
// This is a CLI report (non-interactive), so the table structure is plain
// string formatting; lipgloss only colors the lines.
func KeyTable(census *formstate.Census, reports []formstate.FieldReport) string {
	var b strings.Builder

	if census != nil && census.Len() > 0 {
		b.WriteString(headerStyle.Render("Name census"))
		b.WriteString("\n")
		for _, name := range census.Names() {
			count, _ := census.Count(name)
			line := fmt.Sprintf("  %-30s %d", truncate(name, 30), count)
			if count > 1 {
				b.WriteString(rowStyle.Render(line))
			} else {
				b.WriteString(dimRowStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(reports) == 0 {
		b.WriteString(dimRowStyle.Render("No eligible form controls"))
		b.WriteString("\n")
		return b.String()
	}

	colWidths := []int{4, 9, 20, 16, 40}
	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s",
		colWidths[0], "#",
		colWidths[1], "Kind",
		colWidths[2], "Name",
		colWidths[3], "ID",
		colWidths[4], "Candidate keys (write key last)")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", StringWidth(header))))
	b.WriteString("\n")

	for i, r := range reports {
		name := r.Name
		if name == "" {
			name = "-"
		}
		id := r.ID
		if id == "" {
			id = "-"
		}
		line := fmt.Sprintf("%-*d  %-*s  %-*s  %-*s  %s",
			colWidths[0], i+1,
			colWidths[1], r.Kind.String(),
			colWidths[2], truncate(name, colWidths[2]),
			colWidths[3], truncate(id, colWidths[3]),
			strings.Join(r.Keys, "  "))
		b.WriteString(rowStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// HistoryTable renders stored snapshots as a text table
func HistoryTable(records []models.SnapshotRecord, total int) string {
	if len(records) == 0 {
		return dimRowStyle.Render("No stored snapshots") + "\n"
	}

	var b strings.Builder
	header := fmt.Sprintf("%-36s  %-19s  %6s  %-20s  %s", "ID", "Taken", "Fields", "Label", "Page")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", StringWidth(header))))
	b.WriteString("\n")

	for _, r := range records {
		line := fmt.Sprintf("%-36s  %-19s  %6d  %-20s  %s",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.FieldCount,
			truncate(r.Label, 20),
			r.Page)
		b.WriteString(rowStyle.Render(line))
		b.WriteString("\n")
	}

	if total > len(records) {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Showing %d of %d snapshots", len(records), total)))
		b.WriteString("\n")
	}
	return b.String()
}

// SnapshotRows returns a snapshot's entries sorted by key, one value per row.
// List values produce one row per element.
func SnapshotRows(snap models.Snapshot) [][2]string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows [][2]string
	for _, k := range keys {
		v := snap[k]
		if !v.IsList {
			rows = append(rows, [2]string{k, v.Scalar})
			continue
		}
		for _, item := range v.List {
			rows = append(rows, [2]string{k, item})
		}
	}
	return rows
}

// truncate shortens s to width display columns, marking the cut with "..."
func truncate(s string, width int) string {
	if StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return truncateToWidth(s, width)
	}
	return truncateToWidth(s, width-3) + "..."
}
