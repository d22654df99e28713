package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hackathon/internal/domain/registration"
)

// Draft actions.
const (
	DraftActionNone         = ""
	DraftActionAdvance      = "advance"
	DraftActionRetreat      = "retreat"
	DraftActionJump         = "jump"
	DraftActionAddMember    = "add_member"
	DraftActionRemoveMember = "remove_member"
)

var (
	ErrDraftExpired  = errors.New("draft has expired; start again")
	ErrUnknownAction = errors.New("unknown draft action")
)

// DraftRepository is the store slice draft orchestrators need.
type DraftRepository interface {
	SaveDraft(ctx context.Context, d *registration.Draft) error
	GetDraft(ctx context.Context, id string, rules registration.Rules) (*registration.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// DraftDeps holds dependencies for the draft orchestrators. Submit carries
// the window, rules, clock and ID sources shared with the final write.
type DraftDeps struct {
	Drafts DraftRepository
	Submit SubmitRegistrationDeps
}

// MemberPatch overwrites one member slot.
type MemberPatch struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

// DraftPatch sets any non-nil field on the draft.
type DraftPatch struct {
	TeamName        *string      `json:"team_name,omitempty"`
	LeaderName      *string      `json:"leader_name,omitempty"`
	LeaderEmail     *string      `json:"leader_email,omitempty"`
	LeaderPhone     *string      `json:"leader_phone,omitempty"`
	LeaderStudentID *string      `json:"leader_student_id,omitempty"`
	Member          *MemberPatch `json:"member,omitempty"`
	Domain          *string      `json:"domain,omitempty"`
	Slot            *string      `json:"slot,omitempty"`
	Problem         *string      `json:"problem,omitempty"`
}

// DraftCommand is one client step: apply Patch, then run Action.
// Index is the member for remove_member or the step for jump.
type DraftCommand struct {
	Patch  DraftPatch `json:"patch"`
	Action string     `json:"action"`
	Index  int        `json:"index"`
}

// ExecuteStartDraft opens an empty draft on the first step.
// PRE: the registration window is open
// POST: draft persisted
func ExecuteStartDraft(ctx context.Context, deps DraftDeps) (*registration.Draft, error) {
	now := nowOr(deps.Submit.Clock)
	if err := requireOpen(deps.Submit.Schedule, "registration", now); err != nil {
		return nil, err
	}
	d := registration.NewDraft(newID(deps.Submit.NewID), deps.Submit.Rules)
	d.UpdatedAt = now
	if err := deps.Drafts.SaveDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	slog.Info("registration_event", "event", "draft_started", "draft_id", d.ID)
	return d, nil
}

// ExecuteGetDraft loads a live draft.
func ExecuteGetDraft(ctx context.Context, id string, deps DraftDeps) (*registration.Draft, error) {
	d, err := deps.Drafts.GetDraft(ctx, id, deps.Submit.Rules)
	if err != nil {
		return nil, err
	}
	if d.IsExpired(nowOr(deps.Submit.Clock)) {
		if err := deps.Drafts.DeleteDraft(ctx, id); err != nil {
			slog.Warn("registration_event", "event", "draft_purge_failed", "draft_id", id, "error", err)
		}
		return nil, ErrDraftExpired
	}
	return d, nil
}

// ExecuteUpdateDraft applies cmd and saves the draft.
// A failed advance still saves the patch; the returned draft carries the
// wizard's error message and the error is a *ValidationError.
// PRE: the registration window is open
func ExecuteUpdateDraft(ctx context.Context, id string, cmd DraftCommand, deps DraftDeps) (*registration.Draft, error) {
	now := nowOr(deps.Submit.Clock)
	if err := requireOpen(deps.Submit.Schedule, "registration", now); err != nil {
		return nil, err
	}
	d, err := ExecuteGetDraft(ctx, id, deps)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(d, cmd.Patch); err != nil {
		return nil, &ValidationError{Field: "member", Err: err}
	}

	var stepErr error
	switch cmd.Action {
	case DraftActionNone:
	case DraftActionAdvance:
		if _, err := d.Advance(); err != nil {
			stepErr = &ValidationError{Field: d.Wizard.Current().Name, Err: err}
		}
	case DraftActionRetreat:
		d.Retreat()
	case DraftActionJump:
		if !d.Wizard.JumpBack(cmd.Index) {
			stepErr = &ValidationError{Field: "step", Err: fmt.Errorf("cannot jump to step %d", cmd.Index)}
		}
	case DraftActionAddMember:
		if _, err := d.AddMember(); err != nil {
			stepErr = &ValidationError{Field: "members", Err: err}
		}
	case DraftActionRemoveMember:
		if err := d.RemoveMember(cmd.Index); err != nil {
			stepErr = &ValidationError{Field: "members", Err: err}
		}
	default:
		return nil, &ValidationError{Field: "action", Err: fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)}
	}

	d.UpdatedAt = now
	if err := deps.Drafts.SaveDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return d, stepErr
}

// ExecuteSubmitDraft turns a draft on its review step into a registration.
// POST: on success the draft is deleted; on failure it is kept for another try
func ExecuteSubmitDraft(ctx context.Context, id string, deps DraftDeps) (registration.Registration, error) {
	d, err := ExecuteGetDraft(ctx, id, deps)
	if err != nil {
		return registration.Registration{}, err
	}
	reg, err := d.Complete()
	if err != nil {
		return registration.Registration{}, &ValidationError{Field: registrationField(err), Err: err}
	}
	created, err := ExecuteSubmitRegistration(ctx, SubmitRegistrationInput{Registration: reg}, deps.Submit)
	if err != nil {
		return registration.Registration{}, err
	}
	if err := deps.Drafts.DeleteDraft(ctx, id); err != nil {
		slog.Warn("registration_event", "event", "draft_delete_failed", "draft_id", id, "error", err)
	}
	return created, nil
}

// DraftPurger removes drafts last touched before a cutoff.
type DraftPurger interface {
	PurgeDrafts(ctx context.Context, olderThan time.Time) (int, error)
}

// ExecutePurgeDrafts deletes expired drafts and logs how many went.
func ExecutePurgeDrafts(ctx context.Context, p DraftPurger, now time.Time) (int, error) {
	n, err := p.PurgeDrafts(ctx, now.Add(-registration.DraftTTL))
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	if n > 0 {
		slog.Info("registration_event", "event", "drafts_purged", "count", n)
	}
	return n, nil
}

func applyPatch(d *registration.Draft, p DraftPatch) error {
	r := &d.Registration
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&r.TeamName, p.TeamName)
	set(&r.LeaderName, p.LeaderName)
	set(&r.LeaderEmail, p.LeaderEmail)
	set(&r.LeaderPhone, p.LeaderPhone)
	set(&r.LeaderStudentID, p.LeaderStudentID)
	set(&r.Domain, p.Domain)
	set(&r.Slot, p.Slot)
	set(&r.Problem, p.Problem)
	if p.Member != nil {
		return d.SetMember(p.Member.Index, registration.Member{Name: p.Member.Name, StudentID: p.Member.StudentID})
	}
	return nil
}
