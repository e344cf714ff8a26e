package formstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keysInPassOrder resolves every control of markup in pass order
func keysInPassOrder(t *testing.T, markup string) [][]string {
	t.Helper()
	doc := parsePage(t, markup, nil)
	resolver := NewResolver(BuildCensus(doc, DefaultOptions()))

	var all [][]string
	walkControls(doc, DefaultOptions(), func(d Descriptor) {
		all = append(all, resolver.Keys(d))
	})
	return all
}

func TestResolverKeys(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   [][]string
	}{
		{
			name:   "unique name with id",
			markup: `<input id="e" name="Email">`,
			want:   [][]string{{"#e", "email", "email.0"}},
		},
		{
			name:   "duplicate names are qualified only",
			markup: `<input name="x"><input name="x">`,
			want:   [][]string{{"x.0"}, {"x.1"}},
		},
		{
			name:   "checkbox group shares one key",
			markup: `<input type="checkbox" name="opt" value="a"><input type="checkbox" name="opt" value="b"><input type="checkbox" name="opt" value="c">`,
			want:   [][]string{{"opt", "opt.0"}, {"opt", "opt.0"}, {"opt", "opt.0"}},
		},
		{
			name:   "radio group shares one key",
			markup: `<input type="radio" name="r" value="1"><input type="radio" name="r" value="2">`,
			want:   [][]string{{"r", "r.0"}, {"r", "r.0"}},
		},
		{
			name:   "group takes one slot among ordinary fields",
			markup: `<input name="a"><input type="checkbox" name="a"><input type="checkbox" name="a"><input name="a">`,
			want:   [][]string{{"a.0"}, {"a.1"}, {"a.1"}, {"a.2"}},
		},
		{
			name:   "checkbox and radio groups with one name get separate slots",
			markup: `<input type="checkbox" name="g"><input type="radio" name="g"><input type="checkbox" name="g">`,
			want:   [][]string{{"g.0"}, {"g.1"}, {"g.0"}},
		},
		{
			name:   "inputs before selects before textareas",
			markup: `<textarea name="n"></textarea><select name="n"></select><input name="n">`,
			want:   [][]string{{"n.0"}, {"n.1"}, {"n.2"}},
		},
		{
			name:   "id only",
			markup: `<textarea id="Notes"></textarea>`,
			want:   [][]string{{"#Notes"}},
		},
		{
			name:   "marker grows past names starting with it",
			markup: `<input name="#x"><input name="##y"><input id="x" name="z">`,
			want:   [][]string{{"#x", "#x.0"}, {"##y", "##y.0"}, {"###x", "z", "z.0"}},
		},
		{
			name:   "qualified key padded away from a literal name",
			markup: `<input name="x"><input name="x.0"><input name="x.00">`,
			want:   [][]string{{"x", "x.000"}, {"x.0", "x.0.0"}, {"x.00", "x.00.0"}},
		},
		{
			name:   "frame fields share the pass counters",
			markup: `<input name="q"><iframe srcdoc="<input name='q'>"></iframe>`,
			want:   [][]string{{"q.0"}, {"q.1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keysInPassOrder(t, tt.markup))
		})
	}
}

func TestResolverUnknownNameIsAlwaysQualified(t *testing.T) {
	doc := parsePage(t, `<p>no controls</p>`, nil)
	resolver := NewResolver(BuildCensus(doc, DefaultOptions()))

	keys := resolver.Keys(Descriptor{Kind: KindText, Name: "ghost"})
	assert.Equal(t, []string{"ghost.0"}, keys)
}

func TestResolverReset(t *testing.T) {
	doc := parsePage(t, `<input name="x"><input name="x">`, nil)
	resolver := NewResolver(BuildCensus(doc, DefaultOptions()))
	d := Descriptor{Kind: KindText, Name: "x"}

	assert.Equal(t, []string{"x.0"}, resolver.Keys(d))
	assert.Equal(t, []string{"x.1"}, resolver.Keys(d))

	resolver.Reset()
	assert.Equal(t, []string{"x.0"}, resolver.Keys(d))
}

func TestResolverEmptyDescriptor(t *testing.T) {
	resolver := NewResolver(nil)
	assert.Empty(t, resolver.Keys(Descriptor{Kind: KindText}))
	assert.Equal(t, "#", resolver.IDMarker())
}

func TestWriteKey(t *testing.T) {
	assert.Equal(t, "", WriteKey(nil))
	assert.Equal(t, "a.0", WriteKey([]string{"#id", "a", "a.0"}))
	assert.Equal(t, "#id", WriteKey([]string{"#id"}))
}

func TestDescribe(t *testing.T) {
	doc := parsePage(t, `
		<input type="file" name="f"><input type="submit" name="s"><input type="reset" name="r">
		<input type="image" name="i"><input type="button" name="b">
		<input name=""><input type="hidden" name="h"><input type="date" name="d">`, nil)

	var kinds []Kind
	for _, el := range doc.Elements("input") {
		if d, ok := Describe(el, DefaultOptions()); ok {
			kinds = append(kinds, d.Kind)
		}
	}
	require.Equal(t, []Kind{KindText}, kinds)

	hidden := doc.Elements("input")[6]
	d, ok := Describe(hidden, Options{ExcludeHidden: false})
	require.True(t, ok)
	assert.Equal(t, KindHidden, d.Kind)
	assert.Equal(t, "hidden", d.Kind.String())
}
