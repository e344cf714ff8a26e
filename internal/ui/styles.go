package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Layout constants - single source of truth for all viewport dimensions
const (
	MinViewportWidth = 80
	MaxViewportWidth = 140
	DefaultWidth     = 100 // Used when terminal size is unknown
	DefaultHeight    = 30
	MinTableHeight   = 5
	chromeHeight     = 10 // header, dividers, help box
)

// Layout holds computed dimensions for the current terminal size
type Layout struct {
	ViewportWidth int // clamped terminal width
	InnerWidth    int // ViewportWidth - 2 border chars
	TableWidth    int // InnerWidth - column padding
	TableHeight   int // visible table rows
}

// NewLayout creates a Layout from the terminal size, clamping to min/max
func NewLayout(terminalWidth, terminalHeight int) Layout {
	width := clamp(terminalWidth, MinViewportWidth, MaxViewportWidth)
	height := terminalHeight - chromeHeight
	if height < MinTableHeight {
		height = MinTableHeight
	}
	return Layout{
		ViewportWidth: width,
		InnerWidth:    width - 2,
		TableWidth:    width - 4,
		TableHeight:   height,
	}
}

// DefaultLayout returns a layout using the default size
func DefaultLayout() Layout {
	return NewLayout(DefaultWidth, DefaultHeight)
}

// clamp restricts a value to the given range
func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Color palette - centralized color definitions
var (
	ColorBorder    = lipgloss.Color("196") // red
	ColorHighlight = lipgloss.Color("88")  // dark red background
	ColorText      = lipgloss.Color("15")  // bright white
	ColorAccent    = lipgloss.Color("226") // bright yellow
	ColorTextDim   = lipgloss.Color("241") // gray
	ColorSuccess   = lipgloss.Color("82")  // green
	ColorInfo      = lipgloss.Color("86")  // cyan
)

// Common styles - reusable style definitions
var (
	// Border style for main viewport
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	// Title style for section headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	// Selected row/item style
	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true)

	// Normal text style
	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Hint/help text style
	HintStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)

	// Accent style for highlighted text (yellow)
	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Italic(true)
)

// RenderTitle renders a section title
func RenderTitle(s string) string {
	return TitleStyle.Render(s)
}

// RenderNormal renders plain body text
func RenderNormal(s string) string {
	return NormalStyle.Render(s)
}

// RenderHint renders dimmed help text
func RenderHint(s string) string {
	return HintStyle.Render(s)
}

// RenderSelectedWidth renders a selected line padded to width
func RenderSelectedWidth(s string, width int) string {
	return SelectedStyle.Width(width).Render(s)
}

// BorderedBox returns a style for bordered content boxes with the layout width
func BorderedBox(layout Layout) lipgloss.Style {
	return BorderStyle.Width(layout.InnerWidth)
}

// ApplyTableStyles gives a bubbles table the app look. The selected style is
// neutral; RenderTableWithSelection paints the visible highlight.
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(false).
		Bold(true).
		Foreground(ColorText)
	s.Selected = lipgloss.NewStyle()
	s.Cell = s.Cell.Foreground(ColorText)
	t.SetStyles(s)
}

// NewAppSpinner returns the white dot spinner used everywhere
func NewAppSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorText)
	return s
}

// NewAppTheme creates a huh theme matching the app's style guide
// White text, red highlights/selection
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Title styling - white bold
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)
	t.Blurred.Title = t.Focused.Title

	// Description - dimmed
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Blurred.Description = t.Focused.Description

	// Base text - white
	t.Focused.Base = lipgloss.NewStyle().
		Foreground(ColorText)
	t.Blurred.Base = t.Focused.Base

	// Selected option - red background, white text
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)

	t.Focused.UnselectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)

	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	// Text input styling
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorBorder)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(ColorBorder)

	t.Focused.ErrorMessage = ErrorStyle
	t.Focused.ErrorIndicator = ErrorStyle

	return t
}
