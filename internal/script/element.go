package script

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/thesavant42/formkeeper/internal/dom"
)

// wrapElement exposes a control to handler code. Property writes go straight
// to the node so the restored page reflects whatever the handler changed.
func wrapElement(vm *goja.Runtime, n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}

	obj := vm.NewObject()
	accessor := func(name string, get func() any, set func(goja.Value)) {
		getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(get())
		})
		setter := goja.Undefined()
		if set != nil {
			setter = vm.ToValue(func(call goja.FunctionCall) goja.Value {
				set(call.Argument(0))
				return goja.Undefined()
			})
		}
		if err := obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
			panic(vm.NewGoError(err))
		}
	}

	accessor("tagName", func() any { return strings.ToUpper(dom.Tag(n)) }, nil)
	accessor("type", func() any { return controlType(n) }, nil)
	accessor("name", func() any { return dom.Attr(n, "name") }, func(v goja.Value) {
		dom.SetAttr(n, "name", v.String())
	})
	accessor("id", func() any { return dom.ID(n) }, func(v goja.Value) {
		dom.SetAttr(n, "id", v.String())
	})
	accessor("value", func() any { return controlValue(n) }, func(v goja.Value) {
		setControlValue(n, v.String())
	})
	accessor("checked", func() any { return dom.Checked(n) }, func(v goja.Value) {
		dom.SetChecked(n, v.ToBoolean())
	})

	_ = obj.Set("getAttribute", func(name string) goja.Value {
		if !dom.HasAttr(n, name) {
			return goja.Null()
		}
		return vm.ToValue(dom.Attr(n, name))
	})
	_ = obj.Set("setAttribute", func(name, value string) {
		dom.SetAttr(n, strings.ToLower(name), value)
	})
	_ = obj.Set("removeAttribute", func(name string) {
		dom.RemoveAttr(n, strings.ToLower(name))
	})
	return obj
}

// wrapDocument exposes lookups over the document that owns n
func wrapDocument(vm *goja.Runtime, n *html.Node) goja.Value {
	root := n
	for root != nil && root.Parent != nil {
		root = root.Parent
	}

	doc := vm.NewObject()
	_ = doc.Set("getElementById", func(id string) goja.Value {
		if root == nil {
			return goja.Null()
		}
		for _, el := range htmlquery.Find(root, "//*[@id]") {
			if dom.ID(el) == id {
				return wrapElement(vm, el)
			}
		}
		return goja.Null()
	})
	_ = doc.Set("getElementsByName", func(name string) goja.Value {
		var wrapped []any
		if root != nil {
			for _, el := range htmlquery.Find(root, "//*[@name]") {
				if dom.Attr(el, "name") == name {
					wrapped = append(wrapped, wrapElement(vm, el))
				}
			}
		}
		return vm.NewArray(wrapped...)
	})
	return doc
}

func controlType(n *html.Node) string {
	switch dom.Tag(n) {
	case "input":
		return dom.InputType(n)
	case "select":
		if dom.HasAttr(n, "multiple") {
			return "select-multiple"
		}
		return "select-one"
	}
	return dom.Tag(n)
}

func controlValue(n *html.Node) string {
	switch dom.Tag(n) {
	case "textarea":
		return dom.TextContent(n)
	case "select":
		if selected := dom.SelectedOptions(n); len(selected) > 0 {
			return dom.OptionValue(selected[0])
		}
		return ""
	}
	return dom.Value(n)
}

func setControlValue(n *html.Node, v string) {
	switch dom.Tag(n) {
	case "textarea":
		dom.SetTextContent(n, v)
	case "select":
		matched := false
		for _, opt := range dom.Options(n) {
			hit := !matched && dom.OptionValue(opt) == v
			dom.SetSelected(opt, hit)
			matched = matched || hit
		}
	default:
		dom.SetValue(n, v)
	}
}
