package judging

import (
	"context"
	"strings"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/judging"
)

const selectColumns = `SELECT id, submission_id, team_name, judge_id,
	innovation, feasibility, impact, technical, presentation, comment, created_at FROM judging_score`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new judging score store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert writes one score row. The total is derived on read, never stored.
// PRE: s has been validated
func (st *SQLiteStore) Insert(ctx context.Context, s domain.Score) error {
	sc := s.Scores
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO judging_score (id, submission_id, team_name, judge_id,
		   innovation, feasibility, impact, technical, presentation, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.SubmissionID, s.TeamName, s.JudgeID,
		sc.Innovation, sc.Feasibility, sc.Impact, sc.Technical, sc.Presentation,
		s.Comment, storage.FormatTime(s.CreatedAt))
	return err
}

// Delete removes a score.
// POST: row removed, or storage.ErrNotFound
func (st *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM judging_score WHERE id = ?`, id)
	return storage.Affected(res, err, "score", id)
}

// GetByID retrieves a score by ID.
func (st *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Score, error) {
	s, err := scanScore(st.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan)
	return s, storage.RowFound(err, "score", id)
}

// List returns scores in creation order.
func (st *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Score, error) {
	var clauses []string
	var args []any
	if filter.SubmissionID != "" {
		clauses = append(clauses, "submission_id = ?")
		args = append(args, filter.SubmissionID)
	}
	if filter.JudgeID != "" {
		clauses = append(clauses, "judge_id = ?")
		args = append(args, filter.JudgeID)
	}
	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Score{}
	for rows.Next() {
		s, err := scanScore(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func scanScore(scan func(dest ...any) error) (domain.Score, error) {
	var s domain.Score
	var createdAt string
	sc := &s.Scores
	if err := scan(&s.ID, &s.SubmissionID, &s.TeamName, &s.JudgeID,
		&sc.Innovation, &sc.Feasibility, &sc.Impact, &sc.Technical, &sc.Presentation,
		&s.Comment, &createdAt); err != nil {
		return domain.Score{}, err
	}
	s.CreatedAt, _ = storage.ParseTime(createdAt)
	return s, nil
}
