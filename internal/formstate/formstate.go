// Package formstate captures the values of a page's form controls into a
// snapshot and restores them onto a structurally similar page.
//
// Controls carry no stable identifier, so every control gets a list of
// candidate keys derived from its id, its name and its position among
// controls sharing that name. Save writes each control under its most
// qualified key; Load looks the same control up through its whole candidate
// list so hand-written snapshots keyed by id or bare name still apply.
package formstate

import (
	"github.com/charmbracelet/log"

	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/models"
)

// Engine runs save and restore passes with a fixed configuration
type Engine struct {
	opts       Options
	logger     *log.Logger
	dispatcher Dispatcher
}

// New returns an Engine. Hidden inputs are excluded unless configured otherwise.
func New(opts ...Option) *Engine {
	cfg := applyOptions(opts)
	return &Engine{opts: cfg.opts, logger: cfg.logger, dispatcher: cfg.dispatcher}
}

// Options returns the pass options
func (e *Engine) Options() Options {
	return e.opts
}

// Save collects the state of every control in doc
func (e *Engine) Save(doc *dom.Document) *Store {
	return NewCollector(e.opts, e.logger).Collect(doc)
}

// Load restores snap onto doc, firing synthetic events on restored controls
func (e *Engine) Load(doc *dom.Document, snap models.Snapshot) ApplyResult {
	return NewApplier(e.opts, e.logger, e.dispatcher).Apply(doc, StoreFrom(snap))
}

// FieldReport describes how one control is keyed
type FieldReport struct {
	Kind     Kind
	Name     string
	ID       string
	Keys     []string
	WriteKey string
	Count    int // census count for Name, 0 when unnamed
}

// Inspect reports the candidate keys of every eligible control, in pass order
func (e *Engine) Inspect(doc *dom.Document) (*Census, []FieldReport) {
	census := BuildCensus(doc, e.opts)
	resolver := NewResolver(census)

	var reports []FieldReport
	walkControls(doc, e.opts, func(d Descriptor) {
		keys := resolver.Keys(d)
		count, _ := census.Count(d.Name)
		reports = append(reports, FieldReport{
			Kind:     d.Kind,
			Name:     d.Name,
			ID:       d.ID,
			Keys:     keys,
			WriteKey: WriteKey(keys),
			Count:    count,
		})
	})
	return census, reports
}
