package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	_ "modernc.org/sqlite"
)

func memDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// each pooled connection to :memory: is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatal(err)
		}
		names = append(names, n)
	}
	return names
}

// migrateTo applies the chain up to and including version, as an older
// release would have left the database.
func migrateTo(t *testing.T, db *sql.DB, version int) {
	t.Helper()
	if err := InitDB(db); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE schema_version (version INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TEXT NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	for _, m := range migrations {
		if m.version > version {
			break
		}
		if err := applyMigration(db, m); err != nil {
			t.Fatalf("apply %d: %v", m.version, err)
		}
	}
}

func mustVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	return v
}

func TestMigrateDB_FreshAndRerun(t *testing.T) {
	db := memDB(t)
	if v := mustVersion(t, db); v != 0 {
		t.Fatalf("untouched database at version %d", v)
	}
	for run := 1; run <= 2; run++ {
		if err := MigrateDB(db, ":memory:"); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if v := mustVersion(t, db); v != LatestSchemaVersion() {
			t.Fatalf("run %d: version %d, want %d", run, v, LatestSchemaVersion())
		}
	}

	want := []string{"account", "judging_score", "leaderboard_entry", "outbox", "registration", "registration_draft", "schema_version", "submission"}
	if got := tableNames(t, db); !slices.Equal(got, want) {
		t.Errorf("tables = %v\nwant     %v", got, want)
	}
	var applied int
	db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&applied)
	if applied != len(migrations) {
		t.Errorf("schema_version rows = %d, want one per migration", applied)
	}
}

// TestMigrateDB_UpgradesEveryRelease starts from each older version with a
// team on file and checks the upgrade keeps it.
func TestMigrateDB_UpgradesEveryRelease(t *testing.T) {
	for v := 1; v < LatestSchemaVersion(); v++ {
		t.Run(fmt.Sprintf("from v%d", v), func(t *testing.T) {
			db := memDB(t)
			migrateTo(t, db, v)
			if _, err := db.Exec(`INSERT INTO registration (id, code, team_name, leader_name, leader_email, domain, slot, created_at)
				VALUES ('r1', 'HX7KD', 'Null Pointers', 'Ana', 'ana@uni.edu', 'health', 'morning', '2026-03-01T09:00:00Z')`); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if _, err := db.Exec(`INSERT INTO outbox (id, action_type, payload, status, created_at)
				VALUES ('o1', 'confirmation_email', '{}', 'pending', '2026-03-01T09:00:00Z')`); err != nil {
				t.Fatalf("seed outbox: %v", err)
			}

			if err := MigrateDB(db, ":memory:"); err != nil {
				t.Fatalf("MigrateDB: %v", err)
			}
			if got := mustVersion(t, db); got != LatestSchemaVersion() {
				t.Errorf("version %d", got)
			}
			var team, subject string
			if err := db.QueryRow(`SELECT team_name FROM registration WHERE id = 'r1'`).Scan(&team); err != nil || team != "Null Pointers" {
				t.Errorf("registration after upgrade = %q, %v", team, err)
			}
			if err := db.QueryRow(`SELECT subject FROM outbox WHERE id = 'o1'`).Scan(&subject); err != nil || subject != "" {
				t.Errorf("outbox subject after upgrade = %q, %v", subject, err)
			}
		})
	}
}

// TestMigrateDB_UntrackedDatabase covers a file whose tables predate the
// schema_version table.
func TestMigrateDB_UntrackedDatabase(t *testing.T) {
	db := memDB(t)
	if _, err := db.Exec(`CREATE TABLE account (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, display_name TEXT NOT NULL DEFAULT '', password_hash TEXT NOT NULL DEFAULT '', role TEXT NOT NULL, created_at TEXT NOT NULL, failed_logins INTEGER NOT NULL DEFAULT 0, locked_until TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO account (id, email, role, created_at) VALUES ('a1', 'admin@hack.test', 'admin', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatal(err)
	}

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	var email string
	if err := db.QueryRow(`SELECT email FROM account WHERE id = 'a1'`).Scan(&email); err != nil || email != "admin@hack.test" {
		t.Errorf("account after migrate = %q, %v", email, err)
	}
}

func TestMigrateDB_BacksUpBeforeUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hackathon.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	migrateTo(t, db, 1)

	for run := 1; run <= 2; run++ {
		if err := MigrateDB(db, path); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		backups, _ := filepath.Glob(path + ".v1-*.bak")
		if len(backups) != 1 {
			t.Errorf("run %d: backups = %v, want exactly one", run, backups)
		}
	}
}

func TestOpen_SetsPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil || fk != 1 {
		t.Errorf("foreign_keys = %d, %v", fk, err)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil || mode != "wal" {
		t.Errorf("journal_mode = %q, %v", mode, err)
	}
}
