package script

import (
	"errors"
	"sync"

	"github.com/thesavant42/formkeeper/internal/formstate"
)

// Record is one event seen by a Recorder
type Record struct {
	Type string
	Kind formstate.Kind
	Key  string
}

// Recorder keeps every event it is given. Used for dry runs and tests.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// Dispatch records ev
func (r *Recorder) Dispatch(ev formstate.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Type: ev.Type, Kind: ev.Kind, Key: ev.Key})
	return nil
}

// Records returns a copy of the recorded events in dispatch order
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Keys returns the distinct keys events were raised for, in first-seen order
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var keys []string
	for _, rec := range r.records {
		if !seen[rec.Key] {
			seen[rec.Key] = true
			keys = append(keys, rec.Key)
		}
	}
	return keys
}

// Reset drops everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

type chain []formstate.Dispatcher

// Chain returns a dispatcher that hands every event to each of ds in order.
// All dispatchers run even when one fails; the failures are joined.
func Chain(ds ...formstate.Dispatcher) formstate.Dispatcher {
	var c chain
	for _, d := range ds {
		if d != nil {
			c = append(c, d)
		}
	}
	return c
}

func (c chain) Dispatch(ev formstate.Event) error {
	var errs []error
	for _, d := range c {
		if err := d.Dispatch(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
