package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesavant42/formkeeper/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSaveAndGetSnapshot(t *testing.T) {
	database := openTestDB(t)
	snap := models.Snapshot{
		"email.0": models.StringValue("a@example.com"),
		"opt.0":   models.ListValue("a", "c"),
	}

	saved, err := database.SaveSnapshot("form.html", "first", snap)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 2, saved.FieldCount)

	got, err := database.GetSnapshot(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "form.html", got.Page)
	assert.Equal(t, "first", got.Label)
	assert.Equal(t, snap, got.Data)
	assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, 0)
}

func TestGetSnapshotNotFound(t *testing.T) {
	database := openTestDB(t)

	_, err := database.GetSnapshot("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = database.GetLatestSnapshot("page.html")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(database.DeleteSnapshot("missing"), ErrNotFound))
}

func TestGetLatestSnapshot(t *testing.T) {
	database := openTestDB(t)

	_, err := database.SaveSnapshot("a.html", "old", models.Snapshot{"x.0": models.StringValue("1")})
	require.NoError(t, err)
	newest, err := database.SaveSnapshot("a.html", "new", models.Snapshot{"x.0": models.StringValue("2")})
	require.NoError(t, err)
	_, err = database.SaveSnapshot("b.html", "other page", models.Snapshot{})
	require.NoError(t, err)

	got, err := database.GetLatestSnapshot("a.html")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, got.ID)
	assert.Equal(t, models.StringValue("2"), got.Data["x.0"])
}

func TestListSnapshots(t *testing.T) {
	database := openTestDB(t)

	for _, s := range []struct{ page, label string }{
		{"a.html", "monday"},
		{"a.html", "tuesday"},
		{"a.html", "wednesday"},
		{"b.html", "monday"},
	} {
		_, err := database.SaveSnapshot(s.page, s.label, models.Snapshot{"k": models.StringValue(s.label)})
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		filter     models.SnapshotFilter
		wantLabels []string
		wantTotal  int
	}{
		{"all", models.SnapshotFilter{}, []string{"monday", "wednesday", "tuesday", "monday"}, 4},
		{"by page", models.SnapshotFilter{Page: "a.html"}, []string{"wednesday", "tuesday", "monday"}, 3},
		{"by label", models.SnapshotFilter{Label: "day"}, []string{"monday", "wednesday", "tuesday", "monday"}, 4},
		{"label substring", models.SnapshotFilter{Page: "a.html", Label: "tue"}, []string{"tuesday"}, 1},
		{"label across pages", models.SnapshotFilter{Label: "mon"}, []string{"monday", "monday"}, 2},
		{"label paged", models.SnapshotFilter{Label: "mon", Limit: 1}, []string{"monday"}, 2},
		{"paged", models.SnapshotFilter{Page: "a.html", Limit: 1, Offset: 1}, []string{"tuesday"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total, err := database.ListSnapshots(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			var labels []string
			for _, r := range records {
				labels = append(labels, r.Label)
			}
			assert.Equal(t, tt.wantLabels, labels)
		})
	}
}

func TestCorruptTimestampIsReported(t *testing.T) {
	database := openTestDB(t)
	_, err := database.conn.Exec(insertSnapshot, "bad-ts", "a.html", "", 0, "{}", "yesterday")
	require.NoError(t, err)

	_, err = database.GetSnapshot("bad-ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-ts")

	_, _, err = database.ListSnapshots(models.SnapshotFilter{})
	assert.Error(t, err)
}

func TestDeleteSnapshot(t *testing.T) {
	database := openTestDB(t)
	saved, err := database.SaveSnapshot("a.html", "", models.Snapshot{})
	require.NoError(t, err)

	require.NoError(t, database.DeleteSnapshot(saved.ID))

	count, err := database.CountSnapshots("")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHistoryPersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := New(path)
	require.NoError(t, err)
	saved, err := first.SaveSnapshot("a.html", "kept", models.Snapshot{"q": models.StringValue("v")})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetSnapshot(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Label)

	files, err := ListDatabaseFiles(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, []string{"history.db"}, files)
}
