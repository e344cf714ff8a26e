package dom

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Attr returns the value of an attribute, or "" when absent
func Attr(n *html.Node, key string) string {
	v, _ := getAttr(n, key)
	return v
}

// HasAttr reports whether the attribute is present (boolean attributes like checked)
func HasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

// SetAttr adds or updates an attribute
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes every occurrence of an attribute
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

func getAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Tag returns the lowercase element name, or "" for non-element nodes
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// InputType returns the lowercase type of an input element. A missing or
// empty type attribute means "text".
func InputType(n *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(Attr(n, "type")))
	if t == "" {
		return "text"
	}
	return t
}

// Name returns the element's name, case-folded to lowercase
func Name(n *html.Node) string {
	return strings.ToLower(Attr(n, "name"))
}

// ID returns the element's id as written
func ID(n *html.Node) string {
	return Attr(n, "id")
}

// Value returns the current value of a text-like input
func Value(n *html.Node) string {
	return Attr(n, "value")
}

// SetValue sets the value of a text-like input
func SetValue(n *html.Node, v string) {
	SetAttr(n, "value", v)
}

// Checked reports whether a checkbox or radio is checked
func Checked(n *html.Node) bool {
	return HasAttr(n, "checked")
}

// SetChecked checks or unchecks a checkbox or radio
func SetChecked(n *html.Node, checked bool) {
	if checked {
		SetAttr(n, "checked", "checked")
		return
	}
	RemoveAttr(n, "checked")
}

// CheckedValue returns the value a checkbox or radio submits when checked.
// Browsers report "on" when the value attribute is missing.
func CheckedValue(n *html.Node) string {
	if v, ok := getAttr(n, "value"); ok {
		return v
	}
	return "on"
}

// Options returns the option elements of a select, including those nested in optgroups
func Options(sel *html.Node) []*html.Node {
	if sel == nil {
		return nil
	}
	return htmlquery.Find(sel, ".//option")
}

// OptionValue returns the option's value attribute, falling back to its text
func OptionValue(opt *html.Node) string {
	if v, ok := getAttr(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(htmlquery.InnerText(opt))
}

// SelectedOptions returns the options a browser would report as selected.
// A single-choice select with no explicitly selected option selects its first
// enabled option; a multiple select may have none.
func SelectedOptions(sel *html.Node) []*html.Node {
	options := Options(sel)
	var selected []*html.Node
	for _, opt := range options {
		if HasAttr(opt, "selected") {
			selected = append(selected, opt)
		}
	}

	multiple := HasAttr(sel, "multiple")
	if !multiple && len(selected) > 1 {
		// the last selected option wins in a single-choice select
		return selected[len(selected)-1:]
	}
	if len(selected) > 0 || multiple || displaySize(sel) > 1 {
		return selected
	}

	for _, opt := range options {
		if !HasAttr(opt, "disabled") {
			return []*html.Node{opt}
		}
	}
	return nil
}

// SetSelected marks an option selected or not
func SetSelected(opt *html.Node, selected bool) {
	if selected {
		SetAttr(opt, "selected", "selected")
		return
	}
	RemoveAttr(opt, "selected")
}

func displaySize(sel *html.Node) int {
	size := 0
	for _, r := range strings.TrimSpace(Attr(sel, "size")) {
		if r < '0' || r > '9' {
			return 0
		}
		size = size*10 + int(r-'0')
	}
	return size
}

// TextContent returns the concatenated text of a node (the value of a textarea)
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	return htmlquery.InnerText(n)
}

// SetTextContent replaces every child of n with a single text node
func SetTextContent(n *html.Node, text string) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}
