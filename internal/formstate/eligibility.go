package formstate

import (
	"golang.org/x/net/html"

	"github.com/thesavant42/formkeeper/internal/dom"
)

// Kind classifies a form control
type Kind int

const (
	KindText Kind = iota // any text-like input
	KindHidden
	KindCheckbox
	KindRadio
	KindSelect
	KindTextarea
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHidden:
		return "hidden"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindSelect:
		return "select"
	case KindTextarea:
		return "textarea"
	}
	return "unknown"
}

// grouped reports whether controls of this kind sharing a name form one logical field
func (k Kind) grouped() bool {
	return k == KindCheckbox || k == KindRadio
}

// Descriptor is what the resolver needs to know about one control. It is
// derived per element per pass and never stored.
type Descriptor struct {
	Node *html.Node
	Kind Kind
	Name string // lowercase, may be empty
	ID   string // may be empty
}

// input types that are never captured or restored
var excludedInputTypes = map[string]bool{
	"file":   true,
	"submit": true,
	"reset":  true,
	"image":  true,
	"button": true,
}

// Describe classifies n and reports whether it takes part in a pass.
// A control is eligible when it has a name or an id and is not an excluded
// input type.
func Describe(n *html.Node, opts Options) (Descriptor, bool) {
	var kind Kind
	switch dom.Tag(n) {
	case "input":
		t := dom.InputType(n)
		if excludedInputTypes[t] {
			return Descriptor{}, false
		}
		switch t {
		case "checkbox":
			kind = KindCheckbox
		case "radio":
			kind = KindRadio
		case "hidden":
			if opts.ExcludeHidden {
				return Descriptor{}, false
			}
			kind = KindHidden
		default:
			kind = KindText
		}
	case "select":
		kind = KindSelect
	case "textarea":
		kind = KindTextarea
	default:
		return Descriptor{}, false
	}

	d := Descriptor{Node: n, Kind: kind, Name: dom.Name(n), ID: dom.ID(n)}
	if d.Name == "" && d.ID == "" {
		return Descriptor{}, false
	}
	return d, true
}
