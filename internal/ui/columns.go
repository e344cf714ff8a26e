package ui

// columns.go sizes bubbles/table columns from fixed and flexible specs.

import (
	"github.com/charmbracelet/bubbles/table"
)

// ColumnSpec defines a table column with flexible or fixed width.
type ColumnSpec struct {
	Title      string
	MinWidth   int // 0 = no minimum
	FixedWidth int // if > 0, used as is and FlexRatio is ignored
	FlexRatio  int
}

// CalculateColumns computes column widths from specs. Fixed columns are
// allocated first; flexible columns split what is left by ratio.
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	if totalWidth < MinViewportWidth-4 {
		totalWidth = MinViewportWidth - 4
	}

	fixedTotal := 0
	flexTotal := 0
	for _, s := range specs {
		if s.FixedWidth > 0 {
			fixedTotal += s.FixedWidth
		} else {
			flexTotal += s.FlexRatio
		}
	}
	// bubbles/table pads every cell by one column on each side
	remaining := totalWidth - fixedTotal - 2*len(specs)
	if remaining < 0 {
		remaining = 0
	}

	columns := make([]table.Column, len(specs))
	for i, s := range specs {
		width := s.FixedWidth
		if width == 0 && flexTotal > 0 {
			width = remaining * s.FlexRatio / flexTotal
		}
		if width < s.MinWidth {
			width = s.MinWidth
		}
		columns[i] = table.Column{Title: s.Title, Width: width}
	}
	return columns
}

// SnapshotColumns returns the column specs of the snapshot selector
func SnapshotColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "Taken", FixedWidth: 19},
		{Title: "Label", FlexRatio: 35, MinWidth: 10},
		{Title: "Fields", FixedWidth: 6},
		{Title: "Page", FlexRatio: 65, MinWidth: 20},
		{Title: "ID", FixedWidth: 8},
	}
}
