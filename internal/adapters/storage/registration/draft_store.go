package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hackathon/internal/adapters/storage"
	domain "hackathon/internal/domain/registration"
)

// draftRecord is the JSON shape of a draft's collected fields.
type draftRecord struct {
	TeamName        string          `json:"team_name"`
	LeaderName      string          `json:"leader_name"`
	LeaderEmail     string          `json:"leader_email"`
	LeaderPhone     string          `json:"leader_phone"`
	LeaderStudentID string          `json:"leader_student_id"`
	Members         []domain.Member `json:"members"`
	Domain          string          `json:"domain"`
	Slot            string          `json:"slot"`
	Problem         string          `json:"problem"`
}

// SaveDraft upserts a draft with its wizard cursor.
// PRE: d.ID is non-empty
// POST: draft persisted (insert or update)
func (s *SQLiteStore) SaveDraft(ctx context.Context, d *domain.Draft) error {
	r := d.Registration
	data, err := json.Marshal(draftRecord{
		TeamName:        r.TeamName,
		LeaderName:      r.LeaderName,
		LeaderEmail:     r.LeaderEmail,
		LeaderPhone:     r.LeaderPhone,
		LeaderStudentID: r.LeaderStudentID,
		Members:         nonNil(r.Members),
		Domain:          r.Domain,
		Slot:            r.Slot,
		Problem:         r.Problem,
	})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO registration_draft (id, data, cursor, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data=excluded.data, cursor=excluded.cursor, updated_at=excluded.updated_at`,
		d.ID, string(data), d.Wizard.Cursor(), storage.FormatTime(d.UpdatedAt.UTC()))
	return err
}

// GetDraft loads a draft and rebuilds its wizard under rules.
// POST: returns storage.ErrNotFound when no such draft exists
func (s *SQLiteStore) GetDraft(ctx context.Context, id string, rules domain.Rules) (*domain.Draft, error) {
	var data, updatedAt string
	var cursor int
	err := s.db.QueryRowContext(ctx,
		`SELECT data, cursor, updated_at FROM registration_draft WHERE id = ?`, id).Scan(&data, &cursor, &updatedAt)
	if err != nil {
		return nil, storage.RowFound(err, "draft", id)
	}
	var rec draftRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	at, _ := storage.ParseTime(updatedAt)
	reg := domain.Registration{
		TeamName:        rec.TeamName,
		LeaderName:      rec.LeaderName,
		LeaderEmail:     rec.LeaderEmail,
		LeaderPhone:     rec.LeaderPhone,
		LeaderStudentID: rec.LeaderStudentID,
		Members:         nonNil(rec.Members),
		Domain:          rec.Domain,
		Slot:            rec.Slot,
		Problem:         rec.Problem,
	}
	return domain.RestoreDraft(id, reg, cursor, rules, at)
}

// DeleteDraft removes a draft. Missing drafts are not an error.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM registration_draft WHERE id = ?`, id)
	return err
}

// PurgeDrafts deletes drafts last touched before olderThan.
// POST: returns the number of drafts removed
func (s *SQLiteStore) PurgeDrafts(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registration_draft WHERE updated_at < ?`, storage.FormatTime(olderThan.UTC()))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
