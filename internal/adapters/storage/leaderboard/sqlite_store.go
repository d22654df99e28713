package leaderboard

import (
	"context"
	"database/sql"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/leaderboard"
)

const selectColumns = `SELECT id, team_name, round1, round2, round3, total, updated_at FROM leaderboard_entry`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new leaderboard store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save upserts an entry. Unscored rounds are stored as NULL.
// PRE: e has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard_entry (id, team_name, round1, round2, round3, total, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   team_name=excluded.team_name, round1=excluded.round1, round2=excluded.round2,
		   round3=excluded.round3, total=excluded.total, updated_at=excluded.updated_at`,
		e.ID, e.TeamName,
		storage.NullableInt(e.Rounds[0]), storage.NullableInt(e.Rounds[1]), storage.NullableInt(e.Rounds[2]),
		e.Total, storage.FormatTime(e.UpdatedAt))
	return err
}

// Delete removes an entry.
// POST: row removed, or storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leaderboard_entry WHERE id = ?`, id)
	return storage.Affected(res, err, "leaderboard entry", id)
}

// GetByID retrieves an entry by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan)
	return e, storage.RowFound(err, "leaderboard entry", id)
}

// List returns every entry, highest total first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY total DESC, team_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var e domain.Entry
	var r1, r2, r3 sql.NullInt64
	var updatedAt string
	if err := scan(&e.ID, &e.TeamName, &r1, &r2, &r3, &e.Total, &updatedAt); err != nil {
		return domain.Entry{}, err
	}
	e.Rounds = [domain.Rounds]*int{storage.IntPtr(r1), storage.IntPtr(r2), storage.IntPtr(r3)}
	e.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return e, nil
}
