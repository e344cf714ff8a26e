package db

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    page TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    field_count INTEGER NOT NULL DEFAULT 0,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_page ON snapshots(page, created_at);
`

const insertSnapshot = `
INSERT INTO snapshots (id, page, label, field_count, data, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const selectSnapshotByID = `
SELECT id, page, label, field_count, data, created_at
FROM snapshots
WHERE id = ?
`

// created_at ties are broken by rowid so the newest insert wins
const selectLatestSnapshot = `
SELECT id, page, label, field_count, data, created_at
FROM snapshots
WHERE page = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1
`

const selectSnapshotsByFilter = `
SELECT id, page, label, field_count, data, created_at
FROM snapshots
WHERE (? = '' OR page = ?)
  AND (? = '' OR label LIKE ?)
ORDER BY created_at DESC, rowid DESC
LIMIT ? OFFSET ?
`

const selectSnapshotCount = `
SELECT COUNT(*)
FROM snapshots
WHERE (? = '' OR page = ?)
  AND (? = '' OR label LIKE ?)
`

const deleteSnapshot = `
DELETE FROM snapshots WHERE id = ?
`
