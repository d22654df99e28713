package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type row struct {
	ID     string
	Team   string
	Rating *int
}

func intp(v int) *int { return &v }

var rowSchema = Schema[row]{
	Name: "teams",
	Columns: []Column[row]{
		{Key: "id", Header: "ID", Value: func(r row) any { return r.ID }},
		{Key: "team", Header: "Team", Value: func(r row) any { return r.Team }},
		{Key: "rating", Header: "Rating", Value: func(r row) any { return r.Rating }},
	},
	Identity: func(r row) string { return r.ID },
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// TestExport_CSVRoundTrip verifies delimiters and quotes survive a standard parser.
func TestExport_CSVRoundTrip(t *testing.T) {
	tricky := `Bits, Bytes & "Nibbles"`
	doc, err := rowSchema.Export([]row{{ID: "1", Team: tricky, Rating: intp(7)}, {ID: "2", Team: "line\nbreak"}}, Options{Format: FormatCSV, Now: fixedNow})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[1][1] != tricky {
		t.Errorf("team = %q, want %q", records[1][1], tricky)
	}
	if records[1][2] != "7" || records[2][2] != "" {
		t.Errorf("ratings = %q, %q", records[1][2], records[2][2])
	}
	if records[2][1] != "line\nbreak" {
		t.Errorf("newline field = %q", records[2][1])
	}
	if !strings.Contains(string(doc.Data), `"Bits, Bytes & ""Nibbles"""`) {
		t.Errorf("expected doubled quotes in %s", doc.Data)
	}
	if doc.Filename != "teams-20260301-093000.csv" {
		t.Errorf("Filename = %q", doc.Filename)
	}
}

// TestExport_JSON verifies valid JSON with nulls and column order.
func TestExport_JSON(t *testing.T) {
	doc, err := rowSchema.Export([]row{{ID: "1", Team: "A", Rating: intp(3)}, {ID: "2", Team: "B"}}, Options{Format: "JSON", Now: fixedNow})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(doc.Data, &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, doc.Data)
	}
	if len(got) != 2 || got[0]["team"] != "A" || got[0]["rating"] != float64(3) || got[1]["rating"] != nil {
		t.Errorf("unexpected json: %v", got)
	}
	if strings.Index(string(doc.Data), `"id"`) > strings.Index(string(doc.Data), `"team"`) {
		t.Error("columns out of order")
	}
	if doc.ContentType != "application/json" {
		t.Errorf("ContentType = %q", doc.ContentType)
	}
}

// TestExport_JSONEmpty verifies an empty collection is an empty array.
func TestExport_JSONEmpty(t *testing.T) {
	doc, err := rowSchema.Export(nil, Options{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var got []any
	if err := json.Unmarshal(doc.Data, &got); err != nil || len(got) != 0 {
		t.Errorf("empty export = %s (%v)", doc.Data, err)
	}
}

// TestExport_TXT verifies the plain-text layout.
func TestExport_TXT(t *testing.T) {
	doc, err := rowSchema.Export([]row{{ID: "1", Team: "A"}}, Options{Format: FormatTXT, Now: fixedNow})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "#1\nID:      1\nTeam:    A\nRating:  \n"
	if string(doc.Data) != want {
		t.Errorf("txt = %q, want %q", doc.Data, want)
	}
}

// TestDedupe_FirstSeenWins verifies [A, B, A'] becomes [A, B].
func TestDedupe_FirstSeenWins(t *testing.T) {
	items := []row{{ID: "a", Team: "first"}, {ID: "b", Team: "B"}, {ID: "a", Team: "second"}}
	got := Dedupe(items, rowSchema.Identity)
	if len(got) != 2 || got[0].Team != "first" || got[1].ID != "b" {
		t.Errorf("Dedupe = %+v", got)
	}
	if len(items) != 3 {
		t.Error("Dedupe mutated its input")
	}

	doc, err := rowSchema.Export(items, Options{Format: FormatCSV, Dedupe: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Records != 2 {
		t.Errorf("Records = %d, want 2", doc.Records)
	}
}

// TestParseFormat verifies accepted format names.
func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"text", FormatTXT, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

// TestText verifies value rendering.
func TestText(t *testing.T) {
	var nilInt *int
	stamp := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("NZDT", 13*3600))
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{nilInt, ""},
		{intp(4), "4"},
		{true, "yes"},
		{2.5, "2.5"},
		{stamp, "2026-02-28T20:00:00Z"},
		{[]string{"a", "b"}, "a; b"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestExport_NoColumns verifies an empty schema is rejected.
func TestExport_NoColumns(t *testing.T) {
	if _, err := (Schema[row]{}).Export(nil, Options{}); !errors.Is(err, ErrNoColumns) {
		t.Errorf("Export err = %v", err)
	}
}
