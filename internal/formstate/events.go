package formstate

import "golang.org/x/net/html"

// Event is a synthetic UI event raised on a control after it was restored
type Event struct {
	Type   string
	Target *html.Node
	Kind   Kind
	Key    string // key the restored value was found under
}

// Dispatcher delivers synthetic events to whatever listens on the page
type Dispatcher interface {
	Dispatch(ev Event) error
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(ev Event) error

func (f DispatcherFunc) Dispatch(ev Event) error {
	return f(ev)
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(Event) error { return nil }

// EventSequence returns the events fired after restoring a control of the
// given kind. Hidden inputs cannot take focus and get none.
func EventSequence(kind Kind) []string {
	switch kind {
	case KindCheckbox, KindRadio:
		return []string{"focus", "click", "blur"}
	case KindSelect:
		return []string{"focus", "change", "blur"}
	case KindText, KindTextarea:
		return []string{"focus", "keypress", "blur"}
	}
	return nil
}
