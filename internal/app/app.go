// Package app wires configuration, page loading, the form state engine and
// snapshot history together for the formkeeper binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/thesavant42/formkeeper/internal/api"
	"github.com/thesavant42/formkeeper/internal/config"
	"github.com/thesavant42/formkeeper/internal/db"
	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/formstate"
	"github.com/thesavant42/formkeeper/internal/models"
	"github.com/thesavant42/formkeeper/internal/script"
)

// App holds the shared services of one formkeeper run
type App struct {
	cfg    *config.Config
	logger *log.Logger
	client *api.PageClient
}

// New creates an App; logger may be nil
func New(cfg *config.Config, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		client: api.NewPageClient(logger, api.PageOptions{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Policy:    cfg.Policy(),
		}),
	}
}

// Config returns the configuration in use
func (a *App) Config() *config.Config {
	return a.cfg
}

// Open loads a page and resolves its frames
func (a *App) Open(ctx context.Context, page string) (*dom.Document, error) {
	doc, err := a.client.OpenPage(ctx, page, a.cfg.MaxFrameDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", page, err)
	}
	return doc, nil
}

// Engine returns a form state engine configured from the app settings
func (a *App) Engine(dispatcher formstate.Dispatcher) *formstate.Engine {
	return formstate.New(
		formstate.WithExcludeHidden(a.cfg.ExcludeHidden),
		formstate.WithLogger(a.logger),
		formstate.WithDispatcher(dispatcher),
	)
}

// Save opens page and captures its form state
func (a *App) Save(ctx context.Context, page string) (*dom.Document, models.Snapshot, error) {
	doc, err := a.Open(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	snap := a.Engine(nil).Save(doc).Snapshot()
	if a.logger != nil {
		a.logger.Info("Saved form state", "page", page, "keys", len(snap))
	}
	return doc, snap, nil
}

// RestoreOptions controls how a snapshot is applied
type RestoreOptions struct {
	RunScripts bool             // run inline on<event> handlers of restored controls
	Recorder   *script.Recorder // optional; receives every synthetic event
}

// Restore opens page and applies snap to it
func (a *App) Restore(ctx context.Context, page string, snap models.Snapshot, opts RestoreOptions) (*dom.Document, formstate.ApplyResult, error) {
	doc, err := a.Open(ctx, page)
	if err != nil {
		return nil, formstate.ApplyResult{}, err
	}

	var dispatchers []formstate.Dispatcher
	if opts.RunScripts {
		dispatchers = append(dispatchers, script.NewDispatcher(script.WithLogger(a.logger)))
	}
	if opts.Recorder != nil {
		dispatchers = append(dispatchers, opts.Recorder)
	}

	var dispatcher formstate.Dispatcher
	if len(dispatchers) > 0 {
		dispatcher = script.Chain(dispatchers...)
	}

	result := a.Engine(dispatcher).Load(doc, snap)
	if a.logger != nil {
		a.logger.Info("Restored form state", "page", page, "restored", result.Restored, "untouched", result.Untouched)
	}
	return doc, result, nil
}

// OpenHistory opens the snapshot history database
func (a *App) OpenHistory() (*db.DB, error) {
	return db.New(a.cfg.DBPath)
}

// PageKey normalizes a page reference for history lookups: URLs as given,
// files as absolute paths.
func PageKey(page string) string {
	if api.IsRemote(page) {
		return page
	}
	abs, err := filepath.Abs(page)
	if err != nil {
		return page
	}
	return abs
}

// ReadSnapshotFile reads and validates a snapshot JSON file; "-" reads stdin
func ReadSnapshotFile(path string) (models.Snapshot, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return models.ParseSnapshot(data)
}

// WriteSnapshot writes a snapshot as indented JSON
func WriteSnapshot(w io.Writer, snap models.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// WriteSnapshotFile writes a snapshot to path, or stdout for "-"
func WriteSnapshotFile(path string, snap models.Snapshot) error {
	if path == "-" {
		return WriteSnapshot(os.Stdout, snap)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteSnapshot(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderPage writes the restored page markup. Inline frames are synced into
// their srcdoc attribute first so their restored state is kept.
func RenderPage(w io.Writer, doc *dom.Document) error {
	if err := doc.SyncInlineFrames(); err != nil {
		return err
	}
	return dom.Render(w, doc)
}
