package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/registration"
)

const selectColumns = `SELECT id, code, team_name, leader_name, leader_email, leader_phone, leader_student_id,
	members, domain, slot, problem, present, archived, rating, created_at FROM registration`

// SQLiteStore implements Store and DraftStore using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert writes a new registration row.
// PRE: r has been validated
// POST: exactly one row inserted, or an error naming the failure
func (s *SQLiteStore) Insert(ctx context.Context, r domain.Registration) error {
	members, err := json.Marshal(nonNil(r.Members))
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO registration (id, code, team_name, leader_name, leader_email, leader_phone, leader_student_id,
		   members, domain, slot, problem, present, archived, rating, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Code, r.TeamName, r.LeaderName, r.LeaderEmail, r.LeaderPhone, r.LeaderStudentID,
		string(members), r.Domain, r.Slot, r.Problem, r.Present, r.Archived,
		storage.NullableInt(r.Rating), storage.FormatTime(r.CreatedAt))
	return err
}

// Update overwrites the mutable columns of an existing registration.
// PRE: r.ID names an existing row
// POST: row updated, or storage.ErrNotFound
func (s *SQLiteStore) Update(ctx context.Context, r domain.Registration) error {
	members, err := json.Marshal(nonNil(r.Members))
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE registration SET team_name=?, leader_name=?, leader_email=?, leader_phone=?, leader_student_id=?,
		   members=?, domain=?, slot=?, problem=?, present=?, archived=?, rating=?
		 WHERE id=?`,
		r.TeamName, r.LeaderName, r.LeaderEmail, r.LeaderPhone, r.LeaderStudentID,
		string(members), r.Domain, r.Slot, r.Problem, r.Present, r.Archived,
		storage.NullableInt(r.Rating), r.ID)
	return storage.Affected(res, err, "registration", r.ID)
}

// Delete removes a registration.
// POST: row removed, or storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registration WHERE id = ?`, id)
	return storage.Affected(res, err, "registration", id)
}

// GetByID retrieves a registration by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	r, err := scanRegistration(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan)
	return r, storage.RowFound(err, "registration", id)
}

// GetByCode retrieves a registration by its reference code, ignoring case.
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (domain.Registration, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	r, err := scanRegistration(s.db.QueryRowContext(ctx, selectColumns+` WHERE code = ?`, code).Scan)
	return r, storage.RowFound(err, "registration", code)
}

// List returns registrations in creation order.
// POST: archived rows are excluded unless filter.IncludeArchived
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Registration, error) {
	where, args := filter.where()
	query := selectColumns + where + ` ORDER BY created_at ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Registration{}
	for rows.Next() {
		r, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of rows matching filter, ignoring Limit and Offset.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registration`+where, args...).Scan(&n)
	return n, err
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if !f.IncludeArchived {
		clauses = append(clauses, "archived = 0")
	}
	if f.Domain != "" {
		clauses = append(clauses, "domain = ?")
		args = append(args, f.Domain)
	}
	if f.Slot != "" {
		clauses = append(clauses, "slot = ?")
		args = append(args, f.Slot)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanRegistration(scan func(dest ...any) error) (domain.Registration, error) {
	var r domain.Registration
	var members, createdAt string
	var rating sql.NullInt64
	err := scan(&r.ID, &r.Code, &r.TeamName, &r.LeaderName, &r.LeaderEmail, &r.LeaderPhone, &r.LeaderStudentID,
		&members, &r.Domain, &r.Slot, &r.Problem, &r.Present, &r.Archived, &rating, &createdAt)
	if err != nil {
		return domain.Registration{}, err
	}
	if err := json.Unmarshal([]byte(members), &r.Members); err != nil {
		return domain.Registration{}, fmt.Errorf("decode members of %s: %w", r.ID, err)
	}
	r.Rating = storage.IntPtr(rating)
	r.CreatedAt, _ = storage.ParseTime(createdAt)
	return r, nil
}

func nonNil(m []domain.Member) []domain.Member {
	if m == nil {
		return []domain.Member{}
	}
	return m
}
