package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FormatTime renders t in DateLayout; the zero time becomes "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseTime reads a TEXT timestamp. Empty input yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// NullableInt converts an optional int into a driver value.
func NullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// IntPtr converts a scanned nullable integer back into an optional int.
func IntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// RowFound maps sql.ErrNoRows to ErrNotFound, naming the entity and key.
func RowFound(err error, entity, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, ErrNotFound)
	}
	return err
}

// Affected returns ErrNotFound when an UPDATE or DELETE touched no row.
func Affected(res sql.Result, err error, entity, key string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, key, ErrNotFound)
	}
	return nil
}
