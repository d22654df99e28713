package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is the threshold above which a statement is logged at WARN.
const DefaultSlowQuery = 50 * time.Millisecond

// QueryObserver receives the duration of every database call, labelled by
// statement kind and table. *metrics.Metrics satisfies it.
type QueryObserver interface {
	ObserveQuery(op string, d time.Duration)
}

var slowQuery = sync.OnceValue(func() time.Duration {
	if v := os.Getenv("HACKATHON_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultSlowQuery
})

// TimedDB wraps a *sql.DB to log slow statements and feed a QueryObserver.
type TimedDB struct {
	db       *sql.DB
	observer QueryObserver
	slow     time.Duration
}

// NewTimedDB wraps db. observer may be nil.
// The slow threshold comes from HACKATHON_SLOW_QUERY_MS, read once per process.
func NewTimedDB(db *sql.DB, observer QueryObserver) *TimedDB {
	return &TimedDB{db: db, observer: observer, slow: slowQuery()}
}

// Op names a statement for metrics: its verb and the table it touches,
// such as "select registration" or "insert outbox".
func Op(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return "unknown"
	}
	verb := fields[0]
	var marker string
	switch verb {
	case "select", "delete":
		marker = "from"
	case "insert", "replace":
		marker = "into"
	case "update":
		if len(fields) > 1 {
			return "update " + table(fields[1])
		}
		return verb
	default:
		return verb
	}
	for i := 1; i+1 < len(fields); i++ {
		if fields[i] == marker {
			return verb + " " + table(fields[i+1])
		}
	}
	return verb
}

func table(tok string) string {
	if i := strings.IndexAny(tok, "(,;"); i >= 0 {
		tok = tok[:i]
	}
	return strings.Trim(tok, `"`+"`")
}

func (t *TimedDB) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	switch {
	case elapsed >= t.slow:
		slog.Warn("slow_query", "op", op, "duration_ms", ms, "threshold_ms", t.slow.Milliseconds())
	case err != nil:
		slog.Debug("query_failed", "op", op, "duration_ms", ms, "error", err)
	default:
		slog.Debug("query", "op", op, "duration_ms", ms)
	}
	if t.observer != nil {
		t.observer.ObserveQuery(op, elapsed)
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.db.ExecContext(ctx, query, args...)
	t.observe(Op(query), start, err)
	return res, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(Op(query), start, err)
	return rows, err
}

// QueryRowContext errors are reported by Scan, so they never reach observe.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(Op(query), start, nil)
	return row
}

// BeginTx is timed as "begin"; statements inside the transaction are not.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("begin", start, err)
	return tx, err
}
