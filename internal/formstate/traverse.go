package formstate

import "github.com/thesavant42/formkeeper/internal/dom"

// controlTags is the per-document visiting order. Collect and Apply must walk
// identically or the per-name counters drift apart.
var controlTags = []string{"input", "select", "textarea"}

// walkControls visits every eligible control in doc and its accessible frames:
// within a document inputs first, then selects, then textareas, each in
// document order; then each frame, depth-first.
func walkControls(doc *dom.Document, opts Options, fn func(Descriptor)) {
	_ = doc.Walk(func(d *dom.Document) error {
		for _, tag := range controlTags {
			for _, el := range d.Elements(tag) {
				if desc, ok := Describe(el, opts); ok {
					fn(desc)
				}
			}
		}
		return nil
	})
}
