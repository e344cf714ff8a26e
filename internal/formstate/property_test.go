package formstate

import (
	"fmt"
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/thesavant42/formkeeper/internal/dom"
)

// control is the structure of one generated form control; state is drawn separately
type control struct {
	kind     Kind
	name     string
	id       string
	value    string // checkbox and radio value, unique per form
	options  int    // select option count
	multiple bool
}

var controlNames = []string{"", "a", "b", "a.0", "#x", "user"}

func drawControls(rt *rapid.T) []control {
	count := rapid.IntRange(1, 12).Draw(rt, "count")
	controls := make([]control, count)
	for i := range controls {
		c := control{
			kind:  rapid.SampledFrom([]Kind{KindText, KindCheckbox, KindRadio, KindSelect, KindTextarea}).Draw(rt, fmt.Sprintf("kind_%d", i)),
			name:  rapid.SampledFrom(controlNames).Draw(rt, fmt.Sprintf("name_%d", i)),
			value: fmt.Sprintf("v%d", i),
		}
		if c.name == "" || rapid.Bool().Draw(rt, fmt.Sprintf("hasID_%d", i)) {
			c.id = fmt.Sprintf("id%d", i)
		}
		if c.kind == KindSelect {
			c.options = rapid.IntRange(1, 4).Draw(rt, fmt.Sprintf("options_%d", i))
			c.multiple = rapid.Bool().Draw(rt, fmt.Sprintf("multiple_%d", i))
		}
		controls[i] = c
	}
	return controls
}

// renderForm draws a fresh state for every control and renders the markup
func renderForm(rt *rapid.T, controls []control, label string) string {
	var b strings.Builder
	radioChecked := make(map[string]bool)

	for i, c := range controls {
		key := fmt.Sprintf("%s_%d", label, i)
		attrs := ""
		if c.name != "" {
			attrs += fmt.Sprintf(` name="%s"`, html.EscapeString(c.name))
		}
		if c.id != "" {
			attrs += fmt.Sprintf(` id="%s"`, c.id)
		}

		switch c.kind {
		case KindText:
			v := rapid.StringMatching(`[a-z0-9 ]{0,8}`).Draw(rt, key)
			fmt.Fprintf(&b, `<input%s value="%s">`, attrs, html.EscapeString(v))
		case KindTextarea:
			v := rapid.StringMatching(`[a-z0-9]{0,8}`).Draw(rt, key)
			fmt.Fprintf(&b, `<textarea%s>%s</textarea>`, attrs, v)
		case KindCheckbox, KindRadio:
			typ := "checkbox"
			checked := rapid.Bool().Draw(rt, key)
			if c.kind == KindRadio {
				typ = "radio"
				group := strings.ToLower(c.name)
				if radioChecked[group] {
					checked = false
				}
				if checked && group != "" {
					radioChecked[group] = true
				}
			}
			flag := ""
			if checked {
				flag = " checked"
			}
			fmt.Fprintf(&b, `<input type="%s"%s value="%s"%s>`, typ, attrs, c.value, flag)
		case KindSelect:
			multiple := ""
			if c.multiple {
				multiple = " multiple"
			}
			fmt.Fprintf(&b, `<select%s%s>`, attrs, multiple)
			for o := 0; o < c.options; o++ {
				selected := ""
				if rapid.Bool().Draw(rt, fmt.Sprintf("%s_opt_%d", key, o)) {
					selected = " selected"
				}
				fmt.Fprintf(&b, `<option value="o%d"%s>o%d</option>`, o, selected, o)
			}
			b.WriteString(`</select>`)
		}
	}
	return b.String()
}

func parseForm(rt *rapid.T, markup string) *dom.Document {
	doc, err := dom.ParseString(markup, nil)
	require.NoError(rt, err)
	return doc
}

func TestSaveLoadRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		controls := drawControls(rt)
		source := parseForm(rt, renderForm(rt, controls, "source"))
		target := parseForm(rt, renderForm(rt, controls, "target"))

		engine := New()
		saved := engine.Save(source).Snapshot()
		result := engine.Load(target, saved)

		assert.Zero(rt, result.Untouched, "every control has a stored value")
		assert.Equal(rt, saved, engine.Save(target).Snapshot())
	})
}

func TestSaveIsIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		controls := drawControls(rt)
		doc := parseForm(rt, renderForm(rt, controls, "page"))

		engine := New()
		first := engine.Save(doc).Snapshot()
		engine.Load(doc, first)
		assert.Equal(rt, first, engine.Save(doc).Snapshot())
	})
}

func TestCensusIgnoresControlOrderProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		controls := drawControls(rt)
		shuffled := rapid.Permutation(controls).Draw(rt, "shuffled")

		a := BuildCensus(parseForm(rt, renderForm(rt, controls, "a")), DefaultOptions())
		b := BuildCensus(parseForm(rt, renderForm(rt, shuffled, "b")), DefaultOptions())

		require.Equal(rt, a.Names(), b.Names())
		for _, name := range a.Names() {
			ca, _ := a.Count(name)
			cb, _ := b.Count(name)
			assert.Equal(rt, ca, cb, "count for %q", name)
		}
	})
}

func TestKeysAreDistinctAcrossSlotsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		controls := drawControls(rt)
		_, reports := New().Inspect(parseForm(rt, renderForm(rt, controls, "page")))

		owner := make(map[string]string)
		for i, r := range reports {
			slot := fmt.Sprintf("%d", i)
			if r.Kind.grouped() {
				slot = r.Kind.String() + ":" + r.Name
			}
			if prev, ok := owner[r.WriteKey]; ok {
				assert.Equal(rt, prev, slot, "write key %q shared by two slots", r.WriteKey)
				continue
			}
			owner[r.WriteKey] = slot
		}
	})
}
