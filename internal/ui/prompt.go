package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/thesavant42/formkeeper/internal/api"
)

// Actions offered by interactive mode
const (
	ActionSave    = "save"
	ActionLoad    = "load"
	ActionHistory = "history"
	ActionQuit    = "quit"
)

// Snapshot sources for a restore
const (
	SourceLatest = "latest"
	SourcePick   = "pick"
	SourceFile   = "file"
)

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		// Keep printable characters and normal whitespace (space, tab, newline)
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// validatePage accepts an http(s) URL or the path of an existing file
func validatePage(s string) error {
	s = strings.TrimSpace(sanitizeInput(s))
	if s == "" {
		return fmt.Errorf("page cannot be empty")
	}
	if api.IsRemote(s) {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no such file: %s", s)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

// PromptForAction asks what to do next in interactive mode
func PromptForAction() (string, error) {
	var action string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What do you want to do?").
				Options(
					huh.NewOption("Save form state from a page", ActionSave),
					huh.NewOption("Restore form state onto a page", ActionLoad),
					huh.NewOption("Browse snapshot history", ActionHistory),
					huh.NewOption("Quit", ActionQuit),
				).
				Value(&action),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return ActionQuit, fmt.Errorf("prompt cancelled: %w", err)
	}
	return action, nil
}

// PromptForPage asks for the page to work on: a local HTML file or an http(s) URL
func PromptForPage(defaultPage string) (string, error) {
	page := defaultPage

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Page").
				Description("Path to an HTML file or an http(s) URL").
				Placeholder("form.html").
				Value(&page).
				Validate(validatePage),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(sanitizeInput(page)), nil
}

// PromptForLabel optionally asks for a label to store with a snapshot
func PromptForLabel() (string, error) {
	var label string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Label").
				Description("Optional note stored with the snapshot").
				CharLimit(80).
				Value(&label),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", nil // Continue without a label on cancel
	}
	return strings.TrimSpace(sanitizeInput(label)), nil
}

// PromptForSnapshotSource asks where the snapshot to restore comes from
func PromptForSnapshotSource() (string, error) {
	var source string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Restore from").
				Options(
					huh.NewOption("Latest snapshot of this page", SourceLatest),
					huh.NewOption("Pick from history", SourcePick),
					huh.NewOption("Snapshot file", SourceFile),
				).
				Value(&source),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return source, nil
}

// PromptForFilename asks for an output or input file name
func PromptForFilename(title, description, defaultName string) (string, error) {
	var filename string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(description).
				Placeholder(defaultName).
				Value(&filename),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	filename = strings.TrimSpace(sanitizeInput(filename))
	if filename == "" {
		filename = defaultName
	}
	return filename, nil
}

// ConfirmOverwrite asks before replacing an existing file. A missing file needs no confirmation.
func ConfirmOverwrite(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return true, nil
	}

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Overwrite %s?", path)).
				Affirmative("Yes, overwrite").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirm, nil
}
