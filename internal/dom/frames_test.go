package dom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveFramesFromFiles(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.html", `
		<input name="top">
		<iframe src="frames/inner.html"></iframe>
		<iframe src="https://elsewhere.example/form"></iframe>`)
	writeFile(t, dir, "frames/inner.html", `<input name="inner"><iframe src="deep.html"></iframe>`)
	writeFile(t, dir, "frames/deep.html", `<textarea name="deep"></textarea>`)

	doc, err := ParseFile(index)
	require.NoError(t, err)
	require.NoError(t, ResolveFrames(context.Background(), doc, FileLoader{}, ResolveOptions{}))

	require.Len(t, doc.Frames, 2)
	assert.True(t, doc.Frames[0].Accessible())
	assert.False(t, doc.Frames[1].Accessible())
	assert.True(t, errors.Is(doc.Frames[1].Err, ErrInaccessible))

	var names []string
	require.NoError(t, doc.Walk(func(d *Document) error {
		for _, tag := range []string{"input", "textarea"} {
			for _, el := range d.Elements(tag) {
				names = append(names, Name(el))
			}
		}
		return nil
	}))
	assert.Equal(t, []string{"top", "inner", "deep"}, names)
}

func TestResolveFramesMissingFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.html", `<iframe src="missing.html"></iframe><input name="a">`)

	doc, err := ParseFile(index)
	require.NoError(t, err)
	require.NoError(t, ResolveFrames(context.Background(), doc, FileLoader{}, ResolveOptions{}))

	require.Len(t, doc.Frames, 1)
	assert.False(t, doc.Frames[0].Accessible())
	assert.Error(t, doc.Frames[0].Err)
}

func TestResolveFramesSrcdocAndBlank(t *testing.T) {
	doc := mustParse(t, `<iframe srcdoc="<input name='inline' value='x'>"></iframe><iframe></iframe><iframe src="about:blank"></iframe>`)
	require.NoError(t, ResolveFrames(context.Background(), doc, nil, ResolveOptions{}))

	require.Len(t, doc.Frames, 3)
	for _, f := range doc.Frames {
		assert.True(t, f.Accessible())
	}
	assert.True(t, doc.Frames[0].Inline)

	inputs := doc.Frames[0].Doc.Elements("input")
	require.Len(t, inputs, 1)
	assert.Equal(t, "x", Value(inputs[0]))
}

type selfLoader struct {
	markup string
	calls  int
}

func (l *selfLoader) LoadFrame(_ context.Context, _ *Document, _ string) (*Document, error) {
	l.calls++
	return ParseString(l.markup, nil)
}

func TestResolveFramesDepthLimit(t *testing.T) {
	loader := &selfLoader{markup: `<iframe src="self.html"></iframe>`}
	doc := mustParse(t, loader.markup)

	require.NoError(t, ResolveFrames(context.Background(), doc, loader, ResolveOptions{MaxDepth: 3}))
	assert.Equal(t, 3, loader.calls)

	depth := 0
	for d := doc; len(d.Frames) > 0 && d.Frames[0].Accessible(); d = d.Frames[0].Doc {
		depth++
	}
	assert.Equal(t, 3, depth)
}

func TestResolveFramesCancelled(t *testing.T) {
	loader := &selfLoader{markup: `<input>`}
	doc := mustParse(t, `<iframe src="a.html"></iframe>`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ResolveFrames(ctx, doc, loader, ResolveOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, loader.calls)
}

func TestSyncInlineFrames(t *testing.T) {
	doc := mustParse(t, `<iframe srcdoc="<input name='a' value='old'>"></iframe>`)
	require.NoError(t, ResolveFrames(context.Background(), doc, nil, ResolveOptions{}))

	SetValue(doc.Frames[0].Doc.Elements("input")[0], "new")
	require.NoError(t, doc.SyncInlineFrames())

	srcdoc := Attr(doc.Frames[0].Element, "srcdoc")
	assert.Contains(t, srcdoc, `value="new"`)

	out, err := RenderString(doc)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "srcdoc="))
}

func TestWriteFrames(t *testing.T) {
	dir := t.TempDir()
	index := writeFile(t, dir, "index.html", `<iframe src="sub/frame.html"></iframe>`)
	writeFile(t, dir, "sub/frame.html", `<input name="a" value="before">`)

	doc, err := ParseFile(index)
	require.NoError(t, err)
	require.NoError(t, ResolveFrames(context.Background(), doc, FileLoader{}, ResolveOptions{}))
	SetValue(doc.Frames[0].Doc.Elements("input")[0], "after")

	outDir := t.TempDir()
	written, err := WriteFrames(outDir, doc)
	require.NoError(t, err)
	require.Len(t, written, 1)

	data, err := os.ReadFile(filepath.Join(outDir, "sub", "frame.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `value="after"`)
}
