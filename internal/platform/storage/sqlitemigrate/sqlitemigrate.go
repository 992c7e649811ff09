// Package sqlitemigrate applies embedded SQL migrations to a SQLite
// database, recording each applied file in a ledger table so replays are
// no-ops.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const ledgerTable = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// ApplyMigrations runs the pending *.sql files under root in lexical order.
// Every file runs inside its own transaction together with its ledger row,
// so a failed migration stays unrecorded and is retried on the next start.
func ApplyMigrations(db *sql.DB, migrations fs.FS, root string) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}
	if err := ensureLedger(db); err != nil {
		return err
	}
	files, err := migrationFiles(migrations, root)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := applyFile(db, migrations, file); err != nil {
			return err
		}
	}
	return nil
}

// migrationFile pairs a file's location in the FS with its ledger key. The
// key carries the root prefix so two roots sharing a filename never collide.
type migrationFile struct {
	path string
	key  string
}

func migrationFiles(migrations fs.FS, root string) ([]migrationFile, error) {
	dir := strings.TrimSpace(root)
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		file := migrationFile{path: entry.Name(), key: entry.Name()}
		if dir != "." {
			file.path = path.Join(dir, entry.Name())
			file.key = file.path
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].key < files[j].key })
	return files, nil
}

func ensureLedger(db *sql.DB) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`, ledgerTable)
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("ensure migration ledger: %w", err)
	}
	return nil
}

func applyFile(db *sql.DB, migrations fs.FS, file migrationFile) error {
	done, err := inLedger(db, file.key)
	if err != nil {
		return fmt.Errorf("check migration %s: %w", file.key, err)
	}
	if done {
		return nil
	}

	content, err := fs.ReadFile(migrations, file.path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file.key, err)
	}
	up := upSection(string(content))
	if strings.TrimSpace(up) == "" {
		return nil
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", file.key, err)
	}
	if _, err := tx.Exec(up); err != nil && !objectExists(err) {
		_ = tx.Rollback()
		return fmt.Errorf("exec migration %s: %w", file.key, err)
	}
	if _, err := tx.Exec(
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", ledgerTable),
		file.key, time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file.key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file.key, err)
	}
	return nil
}

// upSection cuts the statements between the up and down markers. A file
// without markers is treated as all-up.
func upSection(content string) string {
	start := strings.Index(content, upMarker)
	if start == -1 {
		return content
	}
	rest := content[start+len(upMarker):]
	if end := strings.Index(rest, downMarker); end != -1 {
		return rest[:end]
	}
	return rest
}

// objectExists reports whether the DDL failed only because its target is
// already in place, which counts as applied.
func objectExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func inLedger(db *sql.DB, key string) (bool, error) {
	var one int
	err := db.QueryRow("SELECT 1 FROM "+ledgerTable+" WHERE name = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
