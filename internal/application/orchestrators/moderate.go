package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	judgingStore "hackathon/internal/adapters/storage/judging"
	leaderboardStore "hackathon/internal/adapters/storage/leaderboard"
	registrationStore "hackathon/internal/adapters/storage/registration"
	submissionStore "hackathon/internal/adapters/storage/submission"
	"hackathon/internal/application/moderation"
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/leaderboard"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

// Board names, also used as metric labels.
const (
	BoardRegistrations = "registrations"
	BoardSubmissions   = "submissions"
	BoardScores        = "scores"
	BoardLeaderboard   = "leaderboard"
)

// Moderation actions.
const (
	ActionArchive     = "archive"
	ActionRestore     = "restore"
	ActionPresent     = "present"
	ActionRate        = "rate"
	ActionDelete      = "delete"
	ActionSaveEntry   = "save"
	ActionCreateEntry = "create"
)

// ErrReadOnly is returned by boards whose records are never edited in place.
var ErrReadOnly = errors.New("records on this board cannot be edited")

// ModerationCounter records moderation outcomes.
type ModerationCounter interface {
	CountModeration(board, action, result string)
}

// ModerationStores are the stores behind the moderation boards.
type ModerationStores struct {
	Registrations registrationStore.Store
	Submissions   submissionStore.Store
	Scores        judgingStore.Store
	Leaderboard   leaderboardStore.Store
}

// Moderator applies admin actions through optimistic boards.
type Moderator struct {
	Registrations *moderation.Board[registration.Registration]
	Submissions   *moderation.Board[submission.Submission]
	Scores        *moderation.Board[judging.Score]
	Leaderboard   *moderation.Board[leaderboard.Entry]

	leaderboard leaderboardStore.Store
	rules       registration.Rules
	metrics     ModerationCounter
	clock       func() time.Time
}

// NewModerator wires one board per collection. Boards start empty; call
// Refresh or EnsureFresh before reading.
func NewModerator(stores ModerationStores, rules registration.Rules, metrics ModerationCounter, clock func() time.Time) *Moderator {
	return &Moderator{
		Registrations: moderation.NewBoard[registration.Registration](BoardRegistrations,
			moderation.Funcs[registration.Registration]{
				ListFn: func(ctx context.Context) ([]registration.Registration, error) {
					return stores.Registrations.List(ctx, registrationStore.ListFilter{IncludeArchived: true})
				},
				SaveFn:   stores.Registrations.Update,
				DeleteFn: stores.Registrations.Delete,
			},
			func(r registration.Registration) string { return r.ID }),
		Submissions: moderation.NewBoard[submission.Submission](BoardSubmissions,
			moderation.Funcs[submission.Submission]{
				ListFn: func(ctx context.Context) ([]submission.Submission, error) {
					return stores.Submissions.List(ctx, submissionStore.ListFilter{})
				},
				SaveFn:   func(context.Context, submission.Submission) error { return ErrReadOnly },
				DeleteFn: stores.Submissions.Delete,
			},
			func(s submission.Submission) string { return s.ID }),
		Scores: moderation.NewBoard[judging.Score](BoardScores,
			moderation.Funcs[judging.Score]{
				ListFn: func(ctx context.Context) ([]judging.Score, error) {
					return stores.Scores.List(ctx, judgingStore.ListFilter{})
				},
				SaveFn:   func(context.Context, judging.Score) error { return ErrReadOnly },
				DeleteFn: stores.Scores.Delete,
			},
			func(s judging.Score) string { return s.ID }),
		Leaderboard: moderation.NewBoard[leaderboard.Entry](BoardLeaderboard,
			moderation.Funcs[leaderboard.Entry]{
				ListFn:   stores.Leaderboard.List,
				SaveFn:   stores.Leaderboard.Save,
				DeleteFn: stores.Leaderboard.Delete,
			},
			func(e leaderboard.Entry) string { return e.ID }),
		leaderboard: stores.Leaderboard,
		rules:       rules,
		metrics:     metrics,
		clock:       clock,
	}
}

// EnsureFresh reloads any board older than maxAge. Load failures leave the
// board degraded and are logged by the board itself.
func (m *Moderator) EnsureFresh(ctx context.Context, maxAge time.Duration) {
	_ = m.Registrations.EnsureFresh(ctx, maxAge)
	_ = m.Submissions.EnsureFresh(ctx, maxAge)
	_ = m.Scores.EnsureFresh(ctx, maxAge)
	_ = m.Leaderboard.EnsureFresh(ctx, maxAge)
}

// ArchiveRegistration hides a registration from the default view.
func (m *Moderator) ArchiveRegistration(ctx context.Context, id string) (registration.Registration, error) {
	return m.mutateRegistration(ctx, id, ActionArchive, func(r *registration.Registration) error {
		return r.Archive()
	})
}

// RestoreRegistration reverses ArchiveRegistration.
func (m *Moderator) RestoreRegistration(ctx context.Context, id string) (registration.Registration, error) {
	return m.mutateRegistration(ctx, id, ActionRestore, func(r *registration.Registration) error {
		return r.Restore()
	})
}

// MarkPresent records whether a team turned up.
func (m *Moderator) MarkPresent(ctx context.Context, id string, present bool) (registration.Registration, error) {
	return m.mutateRegistration(ctx, id, ActionPresent, func(r *registration.Registration) error {
		return r.MarkPresent(present)
	})
}

// RateRegistration sets a rating, or clears it when rating is nil.
func (m *Moderator) RateRegistration(ctx context.Context, id string, rating *int) (registration.Registration, error) {
	return m.mutateRegistration(ctx, id, ActionRate, func(r *registration.Registration) error {
		if rating == nil {
			r.ClearRating()
			return nil
		}
		return r.SetRating(*rating, m.rules)
	})
}

// DeleteRegistration removes a registration.
func (m *Moderator) DeleteRegistration(ctx context.Context, id string) error {
	err := m.Registrations.Remove(ctx, id)
	m.record(BoardRegistrations, ActionDelete, id, err)
	return err
}

// DeleteSubmission removes an ideation submission.
func (m *Moderator) DeleteSubmission(ctx context.Context, id string) error {
	err := m.Submissions.Remove(ctx, id)
	m.record(BoardSubmissions, ActionDelete, id, err)
	return err
}

// DeleteScore removes one judge's score.
func (m *Moderator) DeleteScore(ctx context.Context, id string) error {
	err := m.Scores.Remove(ctx, id)
	m.record(BoardScores, ActionDelete, id, err)
	return err
}

// LeaderboardInput carries an admin's edit of one leaderboard row.
// A nil Total recomputes it from the rounds; a set Total is kept as entered.
type LeaderboardInput struct {
	ID       string // empty creates a new row
	TeamName string
	Rounds   [leaderboard.Rounds]*int
	Total    *int
}

// SaveLeaderboardEntry creates or updates a leaderboard row.
// POST: the returned entry is stored; Drift is left as entered, never corrected
func (m *Moderator) SaveLeaderboardEntry(ctx context.Context, input LeaderboardInput) (leaderboard.Entry, error) {
	apply := func(e *leaderboard.Entry) error {
		e.TeamName = strings.TrimSpace(input.TeamName)
		for i, pts := range input.Rounds {
			if err := e.SetRound(i, pts); err != nil {
				return &ValidationError{Field: "rounds", Err: err}
			}
		}
		if input.Total != nil {
			e.Total = *input.Total
		} else {
			e.SyncTotal()
		}
		e.UpdatedAt = nowOr(m.clock)
		if err := e.Validate(); err != nil {
			return &ValidationError{Field: leaderboardField(err), Err: err}
		}
		return nil
	}

	if input.ID != "" {
		entry, err := m.Leaderboard.Mutate(ctx, input.ID, apply)
		m.record(BoardLeaderboard, ActionSaveEntry, input.ID, err)
		return entry, err
	}

	entry := leaderboard.Entry{ID: newID(nil)}
	if err := apply(&entry); err != nil {
		m.record(BoardLeaderboard, ActionCreateEntry, entry.ID, err)
		return leaderboard.Entry{}, err
	}
	if err := m.leaderboard.Save(ctx, entry); err != nil {
		werr := &WriteError{Entity: "leaderboard entry", Err: err}
		m.record(BoardLeaderboard, ActionCreateEntry, entry.ID, werr)
		return leaderboard.Entry{}, werr
	}
	m.Leaderboard.Insert(entry)
	m.record(BoardLeaderboard, ActionCreateEntry, entry.ID, nil)
	return entry, nil
}

// DeleteLeaderboardEntry removes a leaderboard row.
func (m *Moderator) DeleteLeaderboardEntry(ctx context.Context, id string) error {
	err := m.Leaderboard.Remove(ctx, id)
	m.record(BoardLeaderboard, ActionDelete, id, err)
	return err
}

func (m *Moderator) mutateRegistration(ctx context.Context, id, action string, fn func(*registration.Registration) error) (registration.Registration, error) {
	reg, err := m.Registrations.Mutate(ctx, id, func(r *registration.Registration) error {
		if err := fn(r); err != nil {
			return &ValidationError{Err: err}
		}
		return nil
	})
	m.record(BoardRegistrations, action, id, err)
	return reg, err
}

// record logs and counts one moderation outcome.
func (m *Moderator) record(board, action, id string, err error) {
	result := moderationResult(err)
	if m.metrics != nil {
		m.metrics.CountModeration(board, action, result)
	}
	if err != nil {
		slog.Warn("moderation_event", "event", "action_failed", "board", board, "action", action, "id", id, "result", result, "error", err)
		return
	}
	slog.Info("moderation_event", "event", "action_applied", "board", board, "action", action, "id", id)
}

func moderationResult(err error) string {
	var verr *ValidationError
	var werr *moderation.WriteError
	switch {
	case err == nil:
		return resultOK
	case errors.As(err, &verr):
		return resultInvalid
	case errors.Is(err, moderation.ErrNotFound):
		return "missing"
	case errors.As(err, &werr):
		return string(werr.Outcome)
	default:
		return resultError
	}
}

func leaderboardField(err error) string {
	if errors.Is(err, leaderboard.ErrEmptyTeamName) {
		return "team_name"
	}
	return "rounds"
}
