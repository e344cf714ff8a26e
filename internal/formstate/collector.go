package formstate

import (
	"github.com/charmbracelet/log"

	"github.com/thesavant42/formkeeper/internal/dom"
)

// Collector captures control values into a Store
type Collector struct {
	opts   Options
	logger *log.Logger
}

// NewCollector returns a collector; logger may be nil
func NewCollector(opts Options, logger *log.Logger) *Collector {
	return &Collector{opts: opts, logger: logger}
}

// Collect walks doc and its accessible frames and returns the captured values.
// Each control writes under its last candidate key.
func (c *Collector) Collect(doc *dom.Document) *Store {
	store := NewStore()
	census := BuildCensus(doc, c.opts)
	resolver := NewResolver(census)

	fields := 0
	walkControls(doc, c.opts, func(d Descriptor) {
		key := WriteKey(resolver.Keys(d))
		if key == "" {
			return
		}
		fields++

		switch d.Kind {
		case KindCheckbox, KindRadio:
			if dom.Checked(d.Node) {
				store.Set(key, dom.CheckedValue(d.Node))
			} else {
				store.Set(key, "")
			}
		case KindSelect:
			selected := dom.SelectedOptions(d.Node)
			if len(selected) == 0 {
				store.Set(key, "")
			}
			for _, opt := range selected {
				store.Set(key, dom.OptionValue(opt))
			}
		case KindTextarea:
			store.Set(key, dom.TextContent(d.Node))
		default:
			store.Set(key, dom.Value(d.Node))
		}
	})

	if c.logger != nil {
		c.logger.Debug("Collected form state", "fields", fields, "keys", store.Len(), "names", census.Len())
	}
	return store
}
