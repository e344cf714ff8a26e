package formstate

import (
	"sort"

	"github.com/thesavant42/formkeeper/internal/dom"
)

// Census counts, per lowercase name, the logical fields that use it. A group
// of checkboxes (or radios) sharing a name counts once; every other named
// control counts individually.
type Census struct {
	counts map[string]int
}

// BuildCensus walks doc and its accessible frames once
func BuildCensus(doc *dom.Document, opts Options) *Census {
	c := &Census{counts: make(map[string]int)}
	checkboxes := make(map[string]struct{})
	radios := make(map[string]struct{})

	walkControls(doc, opts, func(d Descriptor) {
		if d.Name == "" {
			return
		}
		switch d.Kind {
		case KindCheckbox:
			checkboxes[d.Name] = struct{}{}
		case KindRadio:
			radios[d.Name] = struct{}{}
		default:
			c.counts[d.Name]++
		}
	})

	for name := range checkboxes {
		c.counts[name]++
	}
	for name := range radios {
		c.counts[name]++
	}
	return c
}

// Count returns how many logical fields use name. ok is false for names the
// census never saw; those are always qualified.
func (c *Census) Count(name string) (count int, ok bool) {
	if c == nil {
		return 0, false
	}
	count, ok = c.counts[name]
	return count, ok
}

// Has reports whether name is in the census
func (c *Census) Has(name string) bool {
	_, ok := c.Count(name)
	return ok
}

// Unique reports whether name identifies exactly one logical field
func (c *Census) Unique(name string) bool {
	count, ok := c.Count(name)
	return ok && count <= 1
}

// Names returns every counted name, sorted
func (c *Census) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.counts))
	for name := range c.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct names
func (c *Census) Len() int {
	if c == nil {
		return 0
	}
	return len(c.counts)
}
