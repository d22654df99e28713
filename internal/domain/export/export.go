package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format constants for export file format.
const (
	FormatCSV  = "csv"
	FormatTXT  = "txt"
	FormatJSON = "json"
)

// Domain errors.
var (
	ErrUnknownFormat = errors.New("format must be one of: csv, txt, json")
	ErrNoColumns     = errors.New("export needs at least one column")
)

// Column describes one exported field.
type Column[T any] struct {
	Key    string // JSON property name
	Header string // CSV header and TXT label
	Value  func(T) any
}

// Schema describes how one record type is exported.
type Schema[T any] struct {
	Name     string // base of the download filename
	Columns  []Column[T]
	Identity func(T) string // used by Dedupe; nil disables deduplication
}

// Options selects the output.
type Options struct {
	Format string
	Dedupe bool
	Now    time.Time
}

// Document is a fully rendered export.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	Records     int
}

// ParseFormat normalises a requested format, defaulting to CSV.
// PRE: none
// POST: Returns one of the Format constants or ErrUnknownFormat
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatTXT, "text":
		return FormatTXT, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Dedupe keeps the first record for each identity, preserving order.
// INVARIANT: items is not mutated
func Dedupe[T any](items []T, identity func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := identity(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Export renders items in the requested format.
// PRE: s has at least one column
// POST: Returns the whole document in memory; items is not mutated
func (s Schema[T]) Export(items []T, opts Options) (Document, error) {
	if len(s.Columns) == 0 {
		return Document{}, ErrNoColumns
	}
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return Document{}, err
	}
	if opts.Dedupe && s.Identity != nil {
		items = Dedupe(items, s.Identity)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var data []byte
	switch format {
	case FormatCSV:
		data, err = s.csv(items)
	case FormatTXT:
		data = s.txt(items)
	case FormatJSON:
		data, err = s.json(items)
	}
	if err != nil {
		return Document{}, fmt.Errorf("render %s: %w", format, err)
	}

	return Document{
		Filename:    Filename(s.Name, format, now),
		ContentType: ContentType(format),
		Data:        data,
		Records:     len(items),
	}, nil
}

// Filename builds "<base>-YYYYMMDD-HHMMSS.<ext>" in UTC.
func Filename(base, format string, now time.Time) string {
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s-%s.%s", base, now.UTC().Format("20060102-150405"), format)
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatTXT:
		return "text/plain; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

func (s Schema[T]) csv(items []T) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Header
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	row := make([]string, len(s.Columns))
	for _, item := range items {
		for i, c := range s.Columns {
			row[i] = Text(c.Value(item))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s Schema[T]) txt(items []T) []byte {
	width := 0
	for _, c := range s.Columns {
		if n := len(c.Header) + 1; n > width {
			width = n
		}
	}
	var b strings.Builder
	for n, item := range items {
		if n > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d\n", n+1)
		for _, c := range s.Columns {
			fmt.Fprintf(&b, "%-*s  %s\n", width, c.Header+":", Text(c.Value(item)))
		}
	}
	return []byte(b.String())
}

func (s Schema[T]) json(items []T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for n, item := range items {
		if n > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for i, c := range s.Columns {
			if i > 0 {
				buf.WriteString(", ")
			}
			key, err := json.Marshal(c.Key)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(c.Value(item))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Key, err)
			}
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(val)
		}
		buf.WriteString("}")
	}
	if len(items) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// Text renders a column value as plain text. Nil pointers become "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(x, "; ")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
