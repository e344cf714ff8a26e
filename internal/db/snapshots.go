package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thesavant42/formkeeper/internal/models"
)

// ErrNotFound is returned when no stored snapshot matches
var ErrNotFound = errors.New("snapshot not found")

const defaultListLimit = 50

// SaveSnapshot stores a snapshot for a page and returns the record with its
// assigned id and timestamp.
func (db *DB) SaveSnapshot(page, label string, snap models.Snapshot) (*models.SnapshotRecord, error) {
	data, err := snap.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	record := &models.SnapshotRecord{
		ID:         uuid.NewString(),
		Page:       page,
		Label:      label,
		FieldCount: len(snap),
		Data:       snap,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = db.conn.Exec(insertSnapshot,
		record.ID,
		record.Page,
		record.Label,
		record.FieldCount,
		string(data),
		record.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return record, nil
}

// GetSnapshot returns the snapshot with the given id
func (db *DB) GetSnapshot(id string) (*models.SnapshotRecord, error) {
	record, err := scanSnapshot(db.conn.QueryRow(selectSnapshotByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record, err
}

// GetLatestSnapshot returns the newest snapshot taken of page
func (db *DB) GetLatestSnapshot(page string) (*models.SnapshotRecord, error) {
	record, err := scanSnapshot(db.conn.QueryRow(selectLatestSnapshot, page))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no snapshot for %s", ErrNotFound, page)
	}
	return record, err
}

// ListSnapshots returns stored snapshots newest first, with the total number
// of snapshots matching the filter before paging.
func (db *DB) ListSnapshots(filter models.SnapshotFilter) ([]models.SnapshotRecord, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	labelPattern := ""
	if filter.Label != "" {
		labelPattern = "%" + filter.Label + "%"
	}

	total, err := db.countSnapshots(filter.Page, filter.Label, labelPattern)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.conn.Query(selectSnapshotsByFilter,
		filter.Page, filter.Page, filter.Label, labelPattern, limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []models.SnapshotRecord
	for rows.Next() {
		record, err := scanSnapshot(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshots: %w", err)
	}

	return records, total, nil
}

// CountSnapshots returns how many snapshots are stored for page ("" for all)
func (db *DB) CountSnapshots(page string) (int, error) {
	return db.countSnapshots(page, "", "")
}

func (db *DB) countSnapshots(page, label, labelPattern string) (int, error) {
	var count int
	if err := db.conn.QueryRow(selectSnapshotCount, page, page, label, labelPattern).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// DeleteSnapshot removes a stored snapshot
func (db *DB) DeleteSnapshot(id string) error {
	result, err := db.conn.Exec(deleteSnapshot, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.SnapshotRecord, error) {
	var r models.SnapshotRecord
	var data, createdAt string
	if err := row.Scan(&r.ID, &r.Page, &r.Label, &r.FieldCount, &data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snap, err := models.ParseSnapshot([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("stored snapshot %s: %w", r.ID, err)
	}
	r.Data = snap
	if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("stored snapshot %s: %w", r.ID, err)
	}
	return &r, nil
}
