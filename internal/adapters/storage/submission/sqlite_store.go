package submission

import (
	"context"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/submission"
)

const selectColumns = `SELECT id, registration_id, team_name, leader_name, title, idea, link, word_count, created_at FROM submission`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new submission store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert writes one submission row. Resubmitting creates a second row.
// PRE: s has been validated
func (st *SQLiteStore) Insert(ctx context.Context, s domain.Submission) error {
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO submission (id, registration_id, team_name, leader_name, title, idea, link, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.RegistrationID, s.TeamName, s.LeaderName, s.Title, s.Idea, s.Link, s.WordCount,
		storage.FormatTime(s.CreatedAt))
	return err
}

// Delete removes a submission.
// POST: row removed, or storage.ErrNotFound
func (st *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM submission WHERE id = ?`, id)
	return storage.Affected(res, err, "submission", id)
}

// GetByID retrieves a submission by ID.
func (st *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Submission, error) {
	s, err := scanSubmission(st.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan)
	return s, storage.RowFound(err, "submission", id)
}

// List returns submissions in creation order.
func (st *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Submission, error) {
	query := selectColumns
	var args []any
	if filter.RegistrationID != "" {
		query += ` WHERE registration_id = ?`
		args = append(args, filter.RegistrationID)
	}
	query += ` ORDER BY created_at ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func scanSubmission(scan func(dest ...any) error) (domain.Submission, error) {
	var s domain.Submission
	var createdAt string
	if err := scan(&s.ID, &s.RegistrationID, &s.TeamName, &s.LeaderName, &s.Title, &s.Idea, &s.Link,
		&s.WordCount, &createdAt); err != nil {
		return domain.Submission{}, err
	}
	s.CreatedAt, _ = storage.ParseTime(createdAt)
	return s, nil
}
