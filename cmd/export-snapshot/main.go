package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/thesavant42/formkeeper/internal/models"
	"github.com/thesavant42/formkeeper/internal/ui"
)

func main() {
	dbPath := flag.String("db", "formkeeper.db", "Path to SQLite database")
	id := flag.String("id", "", "Snapshot id (default: latest snapshot)")
	page := flag.String("page", "", "Restrict the latest snapshot to this page")
	outputPath := flag.String("output", "snapshot.csv", "Output CSV file")
	flag.Parse()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	var snapshotID, data string
	if *id != "" {
		err = db.QueryRow(`SELECT id, data FROM snapshots WHERE id = ?`, *id).Scan(&snapshotID, &data)
	} else {
		err = db.QueryRow(`
			SELECT id, data
			FROM snapshots
			WHERE ? = '' OR page = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT 1
		`, *page, *page).Scan(&snapshotID, &data)
	}
	if err == sql.ErrNoRows {
		fmt.Fprintln(os.Stderr, "No matching snapshot")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query database: %v\n", err)
		os.Exit(1)
	}

	snap, err := models.ParseSnapshot([]byte(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Snapshot %s is corrupt: %v\n", snapshotID, err)
		os.Exit(1)
	}

	f, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"key", "value"}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write header: %v\n", err)
		os.Exit(1)
	}

	count := 0
	for _, row := range ui.SnapshotRows(snap) {
		if err := w.Write([]string{row[0], row[1]}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write row: %v\n", err)
			continue
		}
		count++
	}

	fmt.Printf("Exported %d values of snapshot %s to %s\n", count, snapshotID, *outputPath)
}
