package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/account"
)

var columns = []string{"id", "email", "display_name", "password_hash", "role", "created_at", "failed_logins", "locked_until"}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+strings.Join(columns, ", ")+" FROM account WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	return entity, storage.RowFound(err, "account", id)
}

// GetByEmail retrieves an Account by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+strings.Join(columns, ", ")+" FROM account WHERE email = ? COLLATE NOCASE", email)
	entity, err := scanAccount(row.Scan)
	return entity, storage.RowFound(err, "account", email)
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	updates := []string{
		"email=excluded.email",
		"display_name=excluded.display_name",
		"password_hash=excluded.password_hash",
		"role=excluded.role",
		"failed_logins=excluded.failed_logins",
		"locked_until=excluded.locked_until",
	}
	query := fmt.Sprintf(
		"INSERT INTO account (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(columns, ", "), placeholders, strings.Join(updates, ", "),
	)

	var lockedUntil any
	if !entity.LockedUntil.IsZero() {
		lockedUntil = storage.FormatTime(entity.LockedUntil)
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Email,
		entity.DisplayName,
		entity.PasswordHash,
		entity.Role,
		storage.FormatTime(entity.CreatedAt),
		entity.FailedLogins,
		lockedUntil,
	)
	return err
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves Accounts based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + strings.Join(columns, ", ") + " FROM account")
	if filter.Role != "" {
		b.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}
	b.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.DisplayName,
		&entity.PasswordHash,
		&entity.Role,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	if lockedUntil.Valid {
		entity.LockedUntil, _ = storage.ParseTime(lockedUntil.String)
	}
	return entity, nil
}
