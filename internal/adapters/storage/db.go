// Package storage holds the SQLite schema, its migrations and the timing
// wrapper shared by every entity store.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by stores when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DateLayout is the timestamp format stored in TEXT columns.
const DateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, "baseline", migrateBaseline},
	{2, "lookup_indexes", migrateLookupIndexes},
	{3, "outbox_subject", migrateOutboxSubject},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Open connects to the SQLite file at path with WAL, a busy timeout and
// foreign keys set on every pooled connection, then pings it.
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// InitDB sets connection pragmas.
// PRE: db is a valid database connection
// POST: WAL mode and foreign keys enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// SchemaVersion reports the highest applied migration, or 0 for a database
// that has never been migrated.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// When dbPath names an existing file that already holds data, a copy is
// written next to it before the first pending migration runs.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if err := InitDB(db); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 {
		if err := backupBeforeMigrate(db, dbPath, current); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		slog.Info("schema_event", "event", "migration_applied", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, time.Now().UTC().Format(DateLayout)); err != nil {
		return fmt.Errorf("migration %d: record version: %w", m.version, err)
	}
	return tx.Commit()
}

// backupBeforeMigrate copies a file database with VACUUM INTO.
// In-memory databases are skipped.
func backupBeforeMigrate(db *sql.DB, dbPath string, version int) error {
	if dbPath == "" || dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:") {
		return nil
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil
	}
	dest := fmt.Sprintf("%s.v%d-%s.bak", dbPath, version, time.Now().UTC().Format("20060102T150405"))
	if _, err := db.Exec(`VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("failed to back up database before migration: %w", err)
	}
	slog.Info("schema_event", "event", "backup_written", "path", dest, "version", version)
	return nil
}

func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS registration (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		team_name TEXT NOT NULL,
		leader_name TEXT NOT NULL,
		leader_email TEXT NOT NULL,
		leader_phone TEXT NOT NULL DEFAULT '',
		leader_student_id TEXT NOT NULL DEFAULT '',
		members TEXT NOT NULL DEFAULT '[]',
		domain TEXT NOT NULL,
		slot TEXT NOT NULL,
		problem TEXT NOT NULL DEFAULT '',
		present INTEGER NOT NULL DEFAULT 0,
		archived INTEGER NOT NULL DEFAULT 0,
		rating INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS registration_draft (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		cursor INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS submission (
		id TEXT PRIMARY KEY,
		registration_id TEXT NOT NULL,
		team_name TEXT NOT NULL,
		leader_name TEXT NOT NULL,
		title TEXT NOT NULL,
		idea TEXT NOT NULL,
		link TEXT NOT NULL DEFAULT '',
		word_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS judging_score (
		id TEXT PRIMARY KEY,
		submission_id TEXT NOT NULL,
		team_name TEXT NOT NULL,
		judge_id TEXT NOT NULL,
		innovation INTEGER NOT NULL,
		feasibility INTEGER NOT NULL,
		impact INTEGER NOT NULL,
		technical INTEGER NOT NULL,
		presentation INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leaderboard_entry (
		id TEXT PRIMARY KEY,
		team_name TEXT NOT NULL,
		round1 INTEGER,
		round2 INTEGER,
		round3 INTEGER,
		total INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`)
	return err
}

func migrateLookupIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS idx_registration_leader_email ON registration(leader_email);
	CREATE INDEX IF NOT EXISTS idx_submission_registration ON submission(registration_id);
	CREATE INDEX IF NOT EXISTS idx_judging_score_submission ON judging_score(submission_id);
	CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at);
	`)
	return err
}

func migrateOutboxSubject(tx *sql.Tx) error {
	var n int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('outbox') WHERE name = 'subject'`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := tx.Exec(`ALTER TABLE outbox ADD COLUMN subject TEXT NOT NULL DEFAULT ''`)
	return err
}
