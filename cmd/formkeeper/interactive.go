package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thesavant42/formkeeper/internal/api"
	"github.com/thesavant42/formkeeper/internal/app"
	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/formstate"
	"github.com/thesavant42/formkeeper/internal/models"
	"github.com/thesavant42/formkeeper/internal/ui"
)

// runInteractive loops over huh prompts until the user quits
func runInteractive(ctx context.Context, a *app.App) error {
	ui.PrintHeader("formkeeper", "Save and restore form state of HTML pages")

	var page string
	for {
		action, err := ui.PromptForAction()
		if err != nil || action == ui.ActionQuit {
			return nil
		}

		switch action {
		case ui.ActionSave:
			if page, err = ui.PromptForPage(page); err != nil {
				continue
			}
			err = interactiveSave(ctx, a, page)
		case ui.ActionLoad:
			if page, err = ui.PromptForPage(page); err != nil {
				continue
			}
			err = interactiveLoad(ctx, a, page)
		case ui.ActionHistory:
			err = interactiveHistory(a)
		}

		if errors.Is(err, ui.ErrCancelled) {
			ui.PrintWarning("cancelled")
			continue
		}
		if err != nil {
			ui.PrintError(err.Error())
		}
	}
}

func interactiveSave(ctx context.Context, a *app.App, page string) error {
	label, _ := ui.PromptForLabel()

	var doc *dom.Document
	var snap models.Snapshot
	err := ui.RunWithSpinner("Reading "+page, func() error {
		var err error
		doc, snap, err = a.Save(ctx, page)
		return err
	})
	if err != nil {
		return err
	}
	reportFrames(doc)

	history, err := a.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer history.Close()

	rec, err := history.SaveSnapshot(app.PageKey(page), label, snap)
	if err != nil {
		return err
	}
	ui.PrintSuccess(ui.SaveSummary(page, snap))
	ui.PrintInfo("Stored snapshot " + rec.ID)

	filename, err := ui.PromptForFilename("Export JSON", "Leave empty to skip", "")
	if err != nil || filename == "" {
		return nil
	}
	if ok, err := ui.ConfirmOverwrite(filename); err != nil || !ok {
		return nil
	}
	if err := app.WriteSnapshotFile(filename, snap); err != nil {
		return err
	}
	ui.PrintSuccess("Wrote " + filename)
	return nil
}

func interactiveLoad(ctx context.Context, a *app.App, page string) error {
	snap, err := pickSnapshot(a, page)
	if err != nil || snap == nil {
		return err
	}

	var doc *dom.Document
	var result formstate.ApplyResult
	err = ui.RunWithSpinner("Restoring "+page, func() error {
		var err error
		doc, result, err = a.Restore(ctx, page, snap, app.RestoreOptions{RunScripts: a.Config().RunScripts})
		return err
	})
	if err != nil {
		return err
	}
	reportFrames(doc)
	reportEventErrors(result)

	filename, err := ui.PromptForFilename("Write restored page", "Path of the restored HTML file", restoredName(page))
	if err != nil {
		return nil
	}
	if ok, err := ui.ConfirmOverwrite(filename); err != nil || !ok {
		return nil
	}
	if err := writePage(filename, os.Stdout, doc); err != nil {
		return err
	}
	ui.PrintSuccess(ui.LoadSummary(page, result))
	ui.PrintInfo("Wrote " + filename)
	return nil
}

// pickSnapshot asks where the snapshot comes from. A nil snapshot with a nil
// error means the user backed out.
func pickSnapshot(a *app.App, page string) (models.Snapshot, error) {
	source, err := ui.PromptForSnapshotSource()
	if err != nil {
		return nil, nil
	}

	if source == ui.SourceFile {
		path, err := ui.PromptForFilename("Snapshot file", "JSON written by formkeeper save", "form.json")
		if err != nil {
			return nil, nil
		}
		return app.ReadSnapshotFile(path)
	}

	history, err := a.OpenHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer history.Close()

	key := app.PageKey(page)
	if source == ui.SourceLatest {
		rec, err := history.GetLatestSnapshot(key)
		if err != nil {
			return nil, fmt.Errorf("no stored snapshot for %s: %w", page, err)
		}
		return rec.Data, nil
	}

	records, total, err := history.ListSnapshots(models.SnapshotFilter{Page: key})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		ui.PrintWarning("no stored snapshots for " + page)
		return nil, nil
	}
	id, err := ui.RunSnapshotSelector(page, records, total)
	if err != nil || id == "" {
		return nil, err
	}
	rec, err := history.GetSnapshot(id)
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}

func interactiveHistory(a *app.App) error {
	history, err := a.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer history.Close()

	records, total, err := history.ListSnapshots(models.SnapshotFilter{})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.PrintInfo("No stored snapshots")
		return nil
	}

	id, err := ui.RunSnapshotSelector("", records, total)
	if err != nil || id == "" {
		return err
	}
	rec, err := history.GetSnapshot(id)
	if err != nil {
		return err
	}

	ui.PrintHeader(rec.Page, rec.CreatedAt.Local().Format("2006-01-02 15:04:05")+"  "+rec.Label)
	for _, row := range ui.SnapshotRows(rec.Data) {
		fmt.Fprintf(os.Stdout, "  %-30s %s\n", row[0], row[1])
	}
	return nil
}

// restoredName suggests an output file next to the input page
func restoredName(page string) string {
	base := filepath.Base(page)
	if api.IsRemote(page) {
		return "restored.html"
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".restored" + ext
}
