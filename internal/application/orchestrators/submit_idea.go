package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hackathon/internal/adapters/storage"
	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

var (
	ErrUnknownTeam  = errors.New("no registration matches that code and email")
	ErrTeamArchived = errors.New("this registration has been withdrawn")
)

// RegistrationByCode looks a team up by its reference code.
type RegistrationByCode interface {
	GetByCode(ctx context.Context, code string) (registration.Registration, error)
}

// SubmissionInserter is the store slice the idea writer needs.
type SubmissionInserter interface {
	Insert(ctx context.Context, s submission.Submission) error
}

// SubmitIdeaInput carries an ideation-round entry. The team proves who it
// is with its reference code and the leader's email.
type SubmitIdeaInput struct {
	Code        string
	LeaderEmail string
	Title       string
	Idea        string
	Link        string
}

// SubmitIdeaDeps holds dependencies for SubmitIdea.
type SubmitIdeaDeps struct {
	Registrations RegistrationByCode
	Store         SubmissionInserter
	Outbox        OutboxWriter // optional
	Schedule      clockgate.Schedule
	MaxWords      int
	Event         string
	Metrics       WriteCounter // optional
	Clock         func() time.Time
	NewID         func() string
}

// ExecuteSubmitIdea validates and inserts one submission.
// Resubmitting stores another row; moderators delete the stale one.
// PRE: the ideation window is open
// POST: exactly one row inserted and returned, or a single error
func ExecuteSubmitIdea(ctx context.Context, input SubmitIdeaInput, deps SubmitIdeaDeps) (submission.Submission, error) {
	now := nowOr(deps.Clock)
	if err := requireOpen(deps.Schedule, "ideation", now); err != nil {
		countWrite(deps.Metrics, "submission", resultClosed)
		return submission.Submission{}, err
	}

	reg, err := deps.Registrations.GetByCode(ctx, input.Code)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		countWrite(deps.Metrics, "submission", resultInvalid)
		return submission.Submission{}, &ValidationError{Field: "code", Err: ErrUnknownTeam}
	case err != nil:
		countWrite(deps.Metrics, "submission", resultError)
		return submission.Submission{}, fmt.Errorf("look up registration: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(input.LeaderEmail), strings.TrimSpace(reg.LeaderEmail)) {
		countWrite(deps.Metrics, "submission", resultInvalid)
		slog.Info("submission_event", "event", "rejected", "reason", "email_mismatch", "code", reg.Code)
		return submission.Submission{}, &ValidationError{Field: "code", Err: ErrUnknownTeam}
	}
	if reg.Archived {
		countWrite(deps.Metrics, "submission", resultInvalid)
		return submission.Submission{}, &ValidationError{Field: "code", Err: ErrTeamArchived}
	}

	s := submission.New(newID(deps.NewID), reg.ID, reg.TeamName, reg.LeaderName,
		strings.TrimSpace(input.Title), input.Idea, strings.TrimSpace(input.Link))
	s.CreatedAt = now
	if err := s.Validate(deps.MaxWords); err != nil {
		countWrite(deps.Metrics, "submission", resultInvalid)
		return submission.Submission{}, &ValidationError{Field: submissionField(err), Err: err}
	}

	if err := deps.Store.Insert(ctx, s); err != nil {
		countWrite(deps.Metrics, "submission", resultError)
		slog.Error("submission_event", "event", "insert_failed", "team", s.TeamName, "error", err)
		return submission.Submission{}, &WriteError{Entity: "submission", Err: err}
	}
	countWrite(deps.Metrics, "submission", resultOK)
	slog.Info("submission_event", "event", "created", "id", s.ID, "team", s.TeamName, "words", s.WordCount)

	enqueueConfirmation(ctx, deps.Outbox, s.ID, ConfirmationPayload{
		Kind:     ConfirmIdea,
		To:       reg.LeaderEmail,
		Event:    deps.Event,
		TeamName: s.TeamName,
		Leader:   s.LeaderName,
		Code:     reg.Code,
		Title:    s.Title,
		Body:     s.Idea,
	}, now, newID(deps.NewID))

	return s, nil
}

func submissionField(err error) string {
	switch {
	case errors.Is(err, submission.ErrEmptyTitle), errors.Is(err, submission.ErrTitleTooLong):
		return "title"
	case errors.Is(err, submission.ErrEmptyIdea), errors.Is(err, submission.ErrWordLimit):
		return "idea"
	case errors.Is(err, submission.ErrInvalidLink):
		return "link"
	}
	return ""
}
