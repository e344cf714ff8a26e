package formstate

import (
	"github.com/charmbracelet/log"

	"github.com/thesavant42/formkeeper/internal/dom"
)

// ApplyResult summarizes a restore pass
type ApplyResult struct {
	Restored    int     // controls whose state was written
	Untouched   int     // controls with no stored value
	EventErrors []error // dispatch failures; the pass continues past them
}

// Applier writes stored values back onto controls
type Applier struct {
	opts       Options
	logger     *log.Logger
	dispatcher Dispatcher
}

// NewApplier returns an applier; logger and dispatcher may be nil
func NewApplier(opts Options, logger *log.Logger, dispatcher Dispatcher) *Applier {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	return &Applier{opts: opts, logger: logger, dispatcher: dispatcher}
}

// Apply restores every control of doc and its accessible frames that has a
// stored value. Controls without one keep their current state.
func (a *Applier) Apply(doc *dom.Document, store *Store) ApplyResult {
	var result ApplyResult
	census := BuildCensus(doc, a.opts)
	resolver := NewResolver(census)

	walkControls(doc, a.opts, func(d Descriptor) {
		keys := resolver.Keys(d)
		if len(keys) == 0 {
			return
		}

		key, ok := a.restore(d, keys, store)
		if !ok {
			result.Untouched++
			return
		}
		result.Restored++

		for _, typ := range EventSequence(d.Kind) {
			err := a.dispatcher.Dispatch(Event{Type: typ, Target: d.Node, Kind: d.Kind, Key: key})
			if err != nil {
				result.EventErrors = append(result.EventErrors, err)
				if a.logger != nil {
					a.logger.Warn("Event handler failed", "event", typ, "key", key, "err", err)
				}
			}
		}
	})

	if a.logger != nil {
		a.logger.Debug("Applied form state", "restored", result.Restored, "untouched", result.Untouched)
	}
	return result
}

func (a *Applier) restore(d Descriptor, keys []string, store *Store) (string, bool) {
	v, key, ok := store.Lookup(keys)
	if !ok {
		return "", false
	}

	switch d.Kind {
	case KindCheckbox, KindRadio:
		dom.SetChecked(d.Node, contains(v.NonEmpty(), dom.CheckedValue(d.Node)))
	case KindSelect:
		values := v.NonEmpty()
		for _, opt := range dom.Options(d.Node) {
			dom.SetSelected(opt, contains(values, dom.OptionValue(opt)))
		}
	case KindTextarea:
		dom.SetTextContent(d.Node, v.First())
	default:
		dom.SetValue(d.Node, v.First())
	}
	return key, true
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
