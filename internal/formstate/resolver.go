package formstate

import (
	"strconv"
	"strings"
)

// counters is the per-pass index state. n hands out sequential slots per
// name; c and r remember the slot a checkbox or radio group took so every
// member of the group reuses it.
type counters struct {
	n map[string]int
	c map[string]int
	r map[string]int
}

func newCounters() *counters {
	return &counters{
		n: make(map[string]int),
		c: make(map[string]int),
		r: make(map[string]int),
	}
}

// Resolver derives the candidate keys of each control during one pass
type Resolver struct {
	census   *Census
	idMarker string
	counters *counters
}

// NewResolver returns a resolver for a pass over the census' document
func NewResolver(census *Census) *Resolver {
	return &Resolver{
		census:   census,
		idMarker: idMarker(census),
		counters: newCounters(),
	}
}

// Reset clears the per-name counters; call it before every pass
func (r *Resolver) Reset() {
	r.counters = newCounters()
}

// IDMarker returns the prefix used for id keys
func (r *Resolver) IDMarker() string {
	return r.idMarker
}

// Keys returns the candidate keys for a control, most specific first: the id
// key, the bare name when it is unambiguous, then the qualified name.<index>
// key. Keys must be called exactly once per control per pass. An empty result
// means the control has no usable key.
func (r *Resolver) Keys(d Descriptor) []string {
	keys := make([]string, 0, 3)
	if d.ID != "" {
		keys = append(keys, r.idMarker+d.ID)
	}
	if d.Name == "" {
		return keys
	}

	index := r.index(d.Kind, d.Name)
	if index == 0 && r.census.Unique(d.Name) {
		keys = append(keys, d.Name)
	}
	return append(keys, r.qualifiedKey(d.Name, index))
}

// WriteKey returns the key a collected value is stored under: the last candidate
func WriteKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[len(keys)-1]
}

func (r *Resolver) index(kind Kind, name string) int {
	var groups map[string]int
	switch kind {
	case KindCheckbox:
		groups = r.counters.c
	case KindRadio:
		groups = r.counters.r
	}

	if groups != nil {
		if i, ok := groups[name]; ok {
			return i
		}
	}

	i := r.counters.n[name]
	r.counters.n[name] = i + 1
	if groups != nil {
		groups[name] = i
	}
	return i
}

// qualifiedKey builds name.<index>, zero-padding the index while the result
// would equal a name present in the census.
func (r *Resolver) qualifiedKey(name string, index int) string {
	digits := strconv.Itoa(index)
	key := name + "." + digits
	for r.census.Has(key) {
		digits = "0" + digits
		key = name + "." + digits
	}
	return key
}

// idMarker picks the shortest run of '#' that no census name starts with, so
// an id key can never equal a name-derived key.
func idMarker(census *Census) string {
	marker := "#"
	for _, name := range census.Names() {
		for strings.HasPrefix(name, marker) {
			marker += "#"
		}
	}
	return marker
}
