package storage

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestParseTime_RoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 123, time.FixedZone("NZDT", 13*3600))
	got, err := ParseTime(FormatTime(at))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("got %v, want %v", got, at)
	}
	if z, err := ParseTime(""); err != nil || !z.IsZero() {
		t.Errorf("empty input = %v, %v", z, err)
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNullableInt(t *testing.T) {
	if NullableInt(nil) != nil {
		t.Error("nil pointer should map to nil")
	}
	v := 7
	if NullableInt(&v) != int64(7) {
		t.Error("value should map to int64")
	}
	if IntPtr(sql.NullInt64{}) != nil {
		t.Error("invalid NullInt64 should map to nil")
	}
	if p := IntPtr(sql.NullInt64{Int64: 3, Valid: true}); p == nil || *p != 3 {
		t.Errorf("IntPtr = %v", p)
	}
}

func TestRowFound(t *testing.T) {
	if err := RowFound(sql.ErrNoRows, "registration", "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	other := errors.New("disk full")
	if err := RowFound(other, "registration", "r1"); err != other {
		t.Errorf("err = %v, want passthrough", err)
	}
	if RowFound(nil, "x", "y") != nil {
		t.Error("nil should stay nil")
	}
}
