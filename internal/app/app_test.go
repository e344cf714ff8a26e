package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesavant42/formkeeper/internal/config"
	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/models"
	"github.com/thesavant42/formkeeper/internal/script"
)

const signupPage = `<html><body>
<form>
  <input name="user" value="ada">
  <input type="checkbox" name="tos" value="yes" onclick="this.setAttribute('data-clicked', '1')">
  <select name="plan"><option>free</option><option>pro</option></select>
</form>
<iframe srcdoc="&lt;textarea id=&quot;notes&quot;&gt;hello&lt;/textarea&gt;"></iframe>
</body></html>`

func writePage(t *testing.T, dir, name, markup string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(markup), 0644))
	return path
}

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "history.db")
	return New(cfg, nil)
}

func TestSaveReadsFramesAndControls(t *testing.T) {
	a := testApp(t)
	page := writePage(t, t.TempDir(), "signup.html", signupPage)

	doc, snap, err := a.Save(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, doc.Frames, 1)

	assert.Equal(t, models.StringValue("ada"), snap["user.0"])
	assert.Equal(t, models.StringValue(""), snap["tos.0"])
	assert.Equal(t, models.StringValue("free"), snap["plan.0"])
	assert.Equal(t, models.StringValue("hello"), snap["#notes"])
}

func TestRestoreRecordsEventsAndRunsScripts(t *testing.T) {
	a := testApp(t)
	page := writePage(t, t.TempDir(), "signup.html", signupPage)

	snap := models.Snapshot{
		"user.0": models.StringValue("grace"),
		"tos.0":  models.StringValue("yes"),
		"#notes": models.StringValue("restored"),
	}
	rec := &script.Recorder{}
	doc, result, err := a.Restore(context.Background(), page, snap, RestoreOptions{RunScripts: true, Recorder: rec})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Restored)
	assert.Equal(t, 1, result.Untouched)
	assert.Empty(t, result.EventErrors)
	assert.Equal(t, []string{"user.0", "tos.0", "#notes"}, rec.Keys())

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, doc))
	out := buf.String()
	assert.Contains(t, out, `value="grace"`)
	assert.Contains(t, out, `data-clicked="1"`)
	assert.Contains(t, out, "restored")
}

func TestRestoreWithoutScriptsLeavesHandlersIdle(t *testing.T) {
	a := testApp(t)
	page := writePage(t, t.TempDir(), "signup.html", signupPage)

	doc, _, err := a.Restore(context.Background(), page, models.Snapshot{"tos": models.StringValue("yes")}, RestoreOptions{})
	require.NoError(t, err)

	out, err := dom.RenderString(doc)
	require.NoError(t, err)
	assert.NotContains(t, out, `data-clicked="1"`)
	assert.Contains(t, out, `checked="checked"`)
}

func TestOpenMissingPage(t *testing.T) {
	a := testApp(t)
	_, _, err := a.Save(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	snap := models.Snapshot{
		"a":  models.StringValue("1"),
		"#b": models.ListValue("x", "y"),
	}
	require.NoError(t, WriteSnapshotFile(path, snap))

	got, err := ReadSnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0644))
	_, err = ReadSnapshotFile(path)
	assert.ErrorIs(t, err, models.ErrInvalidSnapshot)
}

func TestHistoryUsesConfiguredPath(t *testing.T) {
	a := testApp(t)
	history, err := a.OpenHistory()
	require.NoError(t, err)
	defer history.Close()

	rec, err := history.SaveSnapshot(PageKey("form.html"), "", models.Snapshot{"a": models.StringValue("1")})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rec.Page))
	assert.FileExists(t, a.Config().DBPath)
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, "https://example.com/form", PageKey("https://example.com/form"))
	abs, err := filepath.Abs("form.html")
	require.NoError(t, err)
	assert.Equal(t, abs, PageKey("form.html"))
}
