package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSnapshot is returned when snapshot JSON is not an object of
// strings and string arrays.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Value is a snapshot entry: either a single string or an ordered list of strings.
type Value struct {
	Scalar string
	List   []string
	IsList bool
}

// StringValue returns a scalar Value
func StringValue(s string) Value {
	return Value{Scalar: s}
}

// ListValue returns a list Value holding a copy of items
func ListValue(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{List: list, IsList: true}
}

// First returns the scalar, or the first list element ("" for an empty list)
func (v Value) First() string {
	if !v.IsList {
		return v.Scalar
	}
	if len(v.List) == 0 {
		return ""
	}
	return v.List[0]
}

// NonEmpty returns every non-empty string held by the value, in order
func (v Value) NonEmpty() []string {
	if !v.IsList {
		if v.Scalar == "" {
			return []string{}
		}
		return []string{v.Scalar}
	}
	out := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsEmpty reports whether the value is the empty-string placeholder
func (v Value) IsEmpty() bool {
	return !v.IsList && v.Scalar == ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Scalar)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty value", ErrInvalidSnapshot)
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		*v = Value{Scalar: s}
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: list must contain only strings", ErrInvalidSnapshot)
		}
		if list == nil {
			list = []string{}
		}
		*v = Value{List: list, IsList: true}
		return nil
	}

	return fmt.Errorf("%w: value must be a string or an array of strings, got %s", ErrInvalidSnapshot, string(data))
}

// Snapshot maps field keys to captured values. It is the JSON document
// written by save and read by load.
type Snapshot map[string]Value

// ParseSnapshot decodes a snapshot file. Anything other than a JSON object whose
// values are strings or string arrays is rejected.
func ParseSnapshot(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top level must be a JSON object", ErrInvalidSnapshot)
	}

	snap := make(Snapshot)
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		if errors.Is(err, ErrInvalidSnapshot) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return snap, nil
}

// Encode renders the snapshot as indented JSON
func (s Snapshot) Encode() ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return json.MarshalIndent(s, "", "  ")
}

// SnapshotRecord is a snapshot stored in the history database
type SnapshotRecord struct {
	ID         string
	Page       string // path or URL the snapshot was taken from
	Label      string
	FieldCount int
	Data       Snapshot
	CreatedAt  time.Time
}

// SnapshotFilter holds filter criteria for listing stored snapshots
type SnapshotFilter struct {
	Page   string // exact page match, "" for all
	Label  string // substring match on label
	Limit  int
	Offset int
}
