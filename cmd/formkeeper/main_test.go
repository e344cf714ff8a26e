package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesavant42/formkeeper/internal/models"
)

const loginPage = `<html><body><form>
<input name="user" value="ada">
<input type="password" name="pass">
<input type="radio" name="mode" value="light" checked>
<input type="radio" name="mode" value="dark">
</form></body></html>`

type fixture struct {
	dir    string
	page   string
	config string
	db     string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		page:   filepath.Join(dir, "login.html"),
		config: filepath.Join(dir, "formkeeper.yaml"),
		db:     filepath.Join(dir, "history.db"),
	}
	require.NoError(t, os.WriteFile(f.page, []byte(loginPage), 0644))
	require.NoError(t, os.WriteFile(f.config, []byte("db_path: "+f.db+"\nlog_level: error\n"), 0644))
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-config", f.config}, args...), &out)
	return out.String(), err
}

func TestSaveWritesSnapshotToStdout(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "save", "-out", "-", f.page)
	require.NoError(t, err)

	snap, err := models.ParseSnapshot([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, models.StringValue("ada"), snap["user.0"])
	assert.Equal(t, models.StringValue(""), snap["pass.0"])
	assert.Equal(t, models.StringValue("light"), snap["mode.0"])
}

func TestSaveThenLoadFromHistory(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "save", "-label", "first", "-out", filepath.Join(f.dir, "login.json"), f.page)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.dir, "login.json"))

	edited := strings.Replace(loginPage, `value="ada"`, `value=""`, 1)
	edited = strings.Replace(edited, `value="light" checked`, `value="light"`, 1)
	require.NoError(t, os.WriteFile(f.page, []byte(edited), 0644))

	out, err := f.run(t, "load", f.page)
	require.NoError(t, err)
	assert.Contains(t, out, `value="ada"`)
	assert.Equal(t, 1, strings.Count(out, `checked="checked"`))
	assert.Contains(t, out, `value="light" checked="checked"`)

	listing, err := f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, listing, "first")
	assert.Contains(t, listing, "login.html")
}

func TestLoadFromFileDryRun(t *testing.T) {
	f := newFixture(t)
	snapPath := filepath.Join(f.dir, "snap.json")
	require.NoError(t, os.WriteFile(snapPath, []byte(`{"user": "grace", "mode": "dark"}`), 0644))

	out, err := f.run(t, "load", "-snapshot", snapPath, "-dry-run", f.page)
	require.NoError(t, err)
	assert.Equal(t, "user\nmode\n", out)
}

func TestLoadWritesOutputFile(t *testing.T) {
	f := newFixture(t)
	snapPath := filepath.Join(f.dir, "snap.json")
	outPath := filepath.Join(f.dir, "restored.html")
	require.NoError(t, os.WriteFile(snapPath, []byte(`{"pass.0": "secret"}`), 0644))

	out, err := f.run(t, "load", "-snapshot", snapPath, "-out", outPath, f.page)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `value="secret"`)
}

func TestLoadWithoutStoredSnapshot(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "load", f.page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored snapshot")
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "frobnicate")
	assert.ErrorContains(t, err, "unknown command")

	_, err = f.run(t, "save", "-out", "-")
	assert.ErrorContains(t, err, "expected exactly one page")

	_, err = f.run(t, "load", "-snapshot", "a.json", "-id", "x", f.page)
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = f.run(t, "history", "-delete", "nope")
	assert.Error(t, err)
}
