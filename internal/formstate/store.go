package formstate

import (
	"github.com/thesavant42/formkeeper/internal/models"
)

// Store holds snapshot values by key and implements the merge rules used when
// several controls write to the same key.
type Store struct {
	values models.Snapshot
}

// NewStore returns an empty store for collection
func NewStore() *Store {
	return &Store{values: make(models.Snapshot)}
}

// StoreFrom wraps an existing snapshot, typically one read from a file
func StoreFrom(snap models.Snapshot) *Store {
	if snap == nil {
		snap = make(models.Snapshot)
	}
	return &Store{values: snap}
}

// Set records value under key.
//
// An absent key stores the scalar as-is. An empty-string placeholder is
// overwritten. Otherwise a non-empty value is appended, promoting a scalar to
// a list first, and an empty value is dropped so collected data is never
// demoted.
func (s *Store) Set(key, value string) {
	if key == "" {
		return
	}

	current, ok := s.values[key]
	if !ok || current.IsEmpty() {
		s.values[key] = models.StringValue(value)
		return
	}
	if value == "" {
		return
	}

	list := current.List
	if !current.IsList {
		list = []string{current.Scalar}
	}
	s.values[key] = models.Value{List: append(list, value), IsList: true}
}

// Lookup returns the value of the first key present
func (s *Store) Lookup(keys []string) (models.Value, string, bool) {
	for _, key := range keys {
		if v, ok := s.values[key]; ok {
			return v, key, true
		}
	}
	return models.Value{}, "", false
}

// Value returns the stored value as a single string. A list yields its first
// element, an empty list "".
func (s *Store) Value(keys []string) (string, bool) {
	v, _, ok := s.Lookup(keys)
	if !ok {
		return "", false
	}
	return v.First(), true
}

// Values returns the stored value as a set of strings with placeholders removed
func (s *Store) Values(keys []string) ([]string, bool) {
	v, _, ok := s.Lookup(keys)
	if !ok {
		return nil, false
	}
	return v.NonEmpty(), true
}

// Has reports whether key is stored
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Len returns the number of keys
func (s *Store) Len() int {
	return len(s.values)
}

// Snapshot returns the underlying snapshot for encoding
func (s *Store) Snapshot() models.Snapshot {
	return s.values
}
