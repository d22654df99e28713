package outbox

import (
	"context"
	"database/sql"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/outbox"
)

const selectColumns = `SELECT id, action_type, subject, payload, status, attempts, max_attempts,
	last_attempted_at, created_at, external_id, error_message FROM outbox`

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan)
	return e, storage.RowFound(err, "outbox entry", id)
}

// Save persists an outbox entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, action_type, subject, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, external_id=excluded.external_id,
		   error_message=excluded.error_message`,
		e.ID, e.ActionType, e.Subject, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.FormatTime(e.LastAttemptedAt), storage.FormatTime(e.CreatedAt), e.ExternalID, e.ErrorMessage)
	return err
}

// ListPending returns entries that need to be processed (pending or retrying).
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.list(ctx, ` WHERE status IN (?, ?) ORDER BY created_at ASC LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, limit)
}

// ListFailed returns entries that have permanently failed, most recent first.
func (s *SQLiteStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.list(ctx, ` WHERE status = ? AND attempts >= max_attempts ORDER BY last_attempted_at DESC LIMIT ?`,
		domain.StatusFailed, limit)
}

// ListBySubject returns every entry about one record.
func (s *SQLiteStore) ListBySubject(ctx context.Context, subject string) ([]domain.Entry, error) {
	return s.list(ctx, ` WHERE subject = ? ORDER BY created_at ASC`, subject)
}

// Delete removes an outbox entry.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) list(ctx context.Context, tail string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// scanEntry scans a single row into an Entry.
func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var e domain.Entry
	var createdAt, lastAttemptedAt string
	err := scan(&e.ID, &e.ActionType, &e.Subject, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&lastAttemptedAt, &createdAt, &e.ExternalID, &e.ErrorMessage)
	if err != nil {
		return domain.Entry{}, err
	}
	e.CreatedAt, _ = storage.ParseTime(createdAt)
	e.LastAttemptedAt, _ = storage.ParseTime(lastAttemptedAt)
	return e, nil
}

// scanEntries scans multiple rows into a slice of Entries.
func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
