package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/thesavant42/formkeeper/internal/app"
	"github.com/thesavant42/formkeeper/internal/db"
	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/formstate"
	"github.com/thesavant42/formkeeper/internal/models"
	"github.com/thesavant42/formkeeper/internal/script"
	"github.com/thesavant42/formkeeper/internal/ui"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(ui.Output)
	return fs
}

// pageArg returns the single positional page argument of a command
func pageArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one page (file or URL), got %d", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func runSave(ctx context.Context, a *app.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("save")
	output := fs.String("out", "form.json", "Write the snapshot JSON here (- for stdout)")
	store := fs.Bool("store", false, "Also record the snapshot in the history database")
	label := fs.String("label", "", "Label stored with the snapshot (implies -store)")
	dbPath := fs.String("db", "", "History database path (overrides config)")
	includeHidden := fs.Bool("include-hidden", false, "Capture hidden inputs too")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := pageArg(fs)
	if err != nil {
		return err
	}

	cfg := a.Config()
	if *includeHidden {
		cfg.ExcludeHidden = false
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
		*store = true
	}
	if *label != "" {
		*store = true
	}

	doc, snap, err := a.Save(ctx, page)
	if err != nil {
		return err
	}
	reportFrames(doc)

	if *output == "-" {
		if err := app.WriteSnapshot(stdout, snap); err != nil {
			return err
		}
	} else if err := app.WriteSnapshotFile(*output, snap); err != nil {
		return err
	}

	if *store {
		history, err := a.OpenHistory()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer history.Close()

		rec, err := history.SaveSnapshot(app.PageKey(page), *label, snap)
		if err != nil {
			return err
		}
		ui.PrintInfo(fmt.Sprintf("Stored snapshot %s", rec.ID))
	}

	ui.PrintSuccess(ui.SaveSummary(page, snap))
	return nil
}

func runLoad(ctx context.Context, a *app.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("load")
	snapshotPath := fs.String("snapshot", "", "Snapshot JSON file to restore (- for stdin)")
	id := fs.String("id", "", "Restore a stored snapshot by id")
	dbPath := fs.String("db", "", "History database path (overrides config)")
	output := fs.String("out", "-", "Write the restored page here (- for stdout)")
	framesDir := fs.String("frames-dir", "", "Also write restored local frame documents under this directory")
	scripts := fs.Bool("scripts", false, "Run inline event handlers of restored controls")
	dryRun := fs.Bool("dry-run", false, "Report what would be restored without writing the page")
	includeHidden := fs.Bool("include-hidden", false, "Restore hidden inputs too")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := pageArg(fs)
	if err != nil {
		return err
	}

	cfg := a.Config()
	if *includeHidden {
		cfg.ExcludeHidden = false
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	snap, err := resolveSnapshot(a, page, *snapshotPath, *id)
	if err != nil {
		return err
	}

	rec := &script.Recorder{}
	opts := app.RestoreOptions{RunScripts: (*scripts || cfg.RunScripts) && !*dryRun, Recorder: rec}
	doc, result, err := a.Restore(ctx, page, snap, opts)
	if err != nil {
		return err
	}
	reportFrames(doc)
	reportEventErrors(result)

	if *dryRun {
		for _, key := range rec.Keys() {
			fmt.Fprintln(stdout, key)
		}
		ui.PrintInfo(ui.LoadSummary(page, result))
		return nil
	}

	if err := writePage(*output, stdout, doc); err != nil {
		return err
	}
	if *framesDir != "" {
		written, err := dom.WriteFrames(*framesDir, doc)
		if err != nil {
			return err
		}
		for _, f := range written {
			ui.PrintInfo("Wrote frame " + f)
		}
	}

	ui.PrintSuccess(ui.LoadSummary(page, result))
	return nil
}

// resolveSnapshot picks the snapshot to restore: a file, a stored id, or the
// latest stored snapshot of page
func resolveSnapshot(a *app.App, page, path, id string) (models.Snapshot, error) {
	if path != "" && id != "" {
		return nil, fmt.Errorf("load: -snapshot and -id are mutually exclusive")
	}
	if path != "" {
		return app.ReadSnapshotFile(path)
	}

	history, err := a.OpenHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer history.Close()

	var rec *models.SnapshotRecord
	if id != "" {
		rec, err = history.GetSnapshot(id)
	} else {
		rec, err = history.GetLatestSnapshot(app.PageKey(page))
	}
	if errors.Is(err, db.ErrNotFound) {
		if id != "" {
			return nil, fmt.Errorf("no stored snapshot with id %s", id)
		}
		return nil, fmt.Errorf("no stored snapshot for %s; pass -snapshot or save one first", page)
	}
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}

func runHistory(a *app.App, args []string, stdout io.Writer) error {
	fs := newFlagSet("history")
	page := fs.String("page", "", "Only list snapshots of this page")
	label := fs.String("label", "", "Only list snapshots whose label contains this text")
	limit := fs.Int("limit", 20, "Maximum number of snapshots to list")
	offset := fs.Int("offset", 0, "Skip this many snapshots")
	dbPath := fs.String("db", "", "History database path (overrides config)")
	remove := fs.String("delete", "", "Delete the stored snapshot with this id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath != "" {
		a.Config().DBPath = *dbPath
	}

	history, err := a.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer history.Close()

	if *remove != "" {
		if err := history.DeleteSnapshot(*remove); err != nil {
			return err
		}
		ui.PrintSuccess("Deleted snapshot " + *remove)
		return nil
	}

	filter := models.SnapshotFilter{Label: *label, Limit: *limit, Offset: *offset}
	if *page != "" {
		filter.Page = app.PageKey(*page)
	}
	records, total, err := history.ListSnapshots(filter)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, ui.HistoryTable(records, total))
	return nil
}

func writePage(path string, stdout io.Writer, doc *dom.Document) error {
	if path == "-" {
		return app.RenderPage(stdout, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := app.RenderPage(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func reportFrames(doc *dom.Document) {
	for _, line := range ui.FrameSummary(doc) {
		ui.PrintWarning("skipped frame " + line)
	}
}

func reportEventErrors(result formstate.ApplyResult) {
	for _, err := range result.EventErrors {
		ui.PrintWarning(err.Error())
	}
}
