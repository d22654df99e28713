package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/registration"
)

// RegistrationInserter is the store slice the registration writer needs.
type RegistrationInserter interface {
	Insert(ctx context.Context, r registration.Registration) error
}

// SubmitRegistrationInput carries a complete registration, as collected by
// the wizard. ID, Code and CreatedAt are assigned here.
type SubmitRegistrationInput struct {
	Registration registration.Registration
}

// SubmitRegistrationDeps holds dependencies for SubmitRegistration.
type SubmitRegistrationDeps struct {
	Store    RegistrationInserter
	Outbox   OutboxWriter // optional
	Schedule clockgate.Schedule
	Rules    registration.Rules
	Event    string
	Metrics  WriteCounter // optional
	Clock    func() time.Time
	NewID    func() string
	NewCode  func() (string, error)
}

// ExecuteSubmitRegistration validates and inserts one registration.
// There is no idempotency key: submitting the same team twice stores two rows.
// PRE: the registration window is open
// POST: exactly one row inserted and the created record returned, or a single error:
// *WindowError, *ValidationError or *WriteError
func ExecuteSubmitRegistration(ctx context.Context, input SubmitRegistrationInput, deps SubmitRegistrationDeps) (registration.Registration, error) {
	now := nowOr(deps.Clock)
	if err := requireOpen(deps.Schedule, "registration", now); err != nil {
		countWrite(deps.Metrics, "registration", resultClosed)
		slog.Info("registration_event", "event", "rejected", "reason", "window_closed")
		return registration.Registration{}, err
	}

	r := input.Registration
	r.TeamName = strings.TrimSpace(r.TeamName)
	r.LeaderEmail = strings.TrimSpace(r.LeaderEmail)
	r.TrimBlankMembers()
	r.Present, r.Archived, r.Rating = false, false, nil
	if err := r.Validate(deps.Rules); err != nil {
		countWrite(deps.Metrics, "registration", resultInvalid)
		return registration.Registration{}, &ValidationError{Field: registrationField(err), Err: err}
	}

	genCode := deps.NewCode
	if genCode == nil {
		genCode = NewTeamCode
	}
	code, err := genCode()
	if err != nil {
		countWrite(deps.Metrics, "registration", resultError)
		return registration.Registration{}, &WriteError{Entity: "registration", Err: err}
	}
	r.ID = newID(deps.NewID)
	r.Code = code
	r.CreatedAt = now

	if err := deps.Store.Insert(ctx, r); err != nil {
		countWrite(deps.Metrics, "registration", resultError)
		slog.Error("registration_event", "event", "insert_failed", "team", r.TeamName, "error", err)
		return registration.Registration{}, &WriteError{Entity: "registration", Err: err}
	}
	countWrite(deps.Metrics, "registration", resultOK)
	slog.Info("registration_event", "event", "created", "id", r.ID, "code", r.Code, "team", r.TeamName, "size", r.TeamSize())

	enqueueConfirmation(ctx, deps.Outbox, r.ID, ConfirmationPayload{
		Kind:     ConfirmRegistration,
		To:       r.LeaderEmail,
		Event:    deps.Event,
		TeamName: r.TeamName,
		Leader:   r.LeaderName,
		Code:     r.Code,
		Body:     r.Problem,
	}, now, newID(deps.NewID))

	return r, nil
}

// registrationField names the form field a validation error belongs to.
func registrationField(err error) string {
	switch {
	case errors.Is(err, registration.ErrRatingOutOfRange):
		return "rating"
	case errors.Is(err, registration.ErrEmptyTeamName), errors.Is(err, registration.ErrTeamNameTooLong):
		return "team_name"
	case errors.Is(err, registration.ErrEmptyLeaderName):
		return "leader_name"
	case errors.Is(err, registration.ErrEmptyLeaderEmail), errors.Is(err, registration.ErrInvalidEmail):
		return "leader_email"
	case errors.Is(err, registration.ErrEmptyLeaderID):
		return "leader_student_id"
	case errors.Is(err, registration.ErrUnknownDomain), errors.Is(err, registration.ErrEmptyDomain):
		return "domain"
	case errors.Is(err, registration.ErrUnknownSlot), errors.Is(err, registration.ErrEmptySlot):
		return "slot"
	case errors.Is(err, registration.ErrEmptyProblem), errors.Is(err, registration.ErrProblemTooLong):
		return "problem"
	case errors.Is(err, registration.ErrTooManyMembers), errors.Is(err, registration.ErrMemberGap), errors.Is(err, registration.ErrEmptyMemberName), errors.Is(err, registration.ErrEmptyMemberID):
		return "members"
	}
	return ""
}
