package registration

import (
	"errors"
	"fmt"
	"time"

	"hackathon/internal/domain/wizard"
)

// Step names, in wizard order.
const (
	StepTeam    = "team"
	StepLeader  = "leader"
	StepMember  = "member"
	StepDomain  = "domain"
	StepSlot    = "slot"
	StepProblem = "problem"
	StepReview  = "review"
)

// DraftTTL is how long an untouched draft is kept.
const DraftTTL = 24 * time.Hour

// ErrDraftIncomplete is returned when a draft is submitted before review.
var ErrDraftIncomplete = errors.New("draft has not reached the review step")

var (
	headPanels = []wizard.Panel{
		{Name: StepTeam, Title: "Team"},
		{Name: StepLeader, Title: "Team leader"},
	}
	memberPanel = wizard.Panel{Name: StepMember, Title: "Member"}
	tailPanels  = []wizard.Panel{
		{Name: StepDomain, Title: "Domain"},
		{Name: StepSlot, Title: "Time slot"},
		{Name: StepProblem, Title: "Problem statement"},
		{Name: StepReview, Title: "Review"},
	}
)

// Draft is a registration being filled in through the step wizard.
// INVARIANT: len(Registration.Members) == Wizard.Members()
type Draft struct {
	ID           string
	Registration Registration
	Wizard       *wizard.Wizard
	Rules        Rules
	UpdatedAt    time.Time
}

// NewDraft starts an empty draft on the first step.
// PRE: id is non-empty
// POST: Wizard has no member steps and the cursor is on "team"
func NewDraft(id string, rules Rules) *Draft {
	w, _ := wizard.New(headPanels, memberPanel, tailPanels, maxMembers(rules))
	return &Draft{
		ID:        id,
		Wizard:    w,
		Rules:     rules,
		UpdatedAt: time.Now(),
	}
}

// RestoreDraft rebuilds a draft from persisted state.
// PRE: reg.Members has at most rules.MaxMembers entries
// POST: The cursor is clamped into range
func RestoreDraft(id string, reg Registration, cursor int, rules Rules, updatedAt time.Time) (*Draft, error) {
	d := NewDraft(id, rules)
	if err := d.Wizard.SetMembers(len(reg.Members)); err != nil {
		return nil, fmt.Errorf("restore draft %s: %w", id, ErrTooManyMembers)
	}
	d.Registration = reg
	d.Wizard.SetCursor(cursor)
	d.UpdatedAt = updatedAt
	return d, nil
}

// ValidateStep checks the inputs collected by step s.
func (d *Draft) ValidateStep(s wizard.Step) error {
	r := &d.Registration
	switch s.Name {
	case StepTeam:
		return r.ValidateTeam()
	case StepLeader:
		return r.ValidateLeader()
	case StepMember:
		if s.Member >= len(r.Members) {
			return ErrEmptyMemberName
		}
		return r.ValidateMember(s.Member)
	case StepDomain:
		return r.ValidateDomain(d.Rules)
	case StepSlot:
		return r.ValidateSlot(d.Rules)
	case StepProblem:
		return r.ValidateProblem(d.Rules)
	case StepReview:
		return r.Validate(d.Rules)
	}
	return nil
}

// Advance moves to the next step if the current one validates.
// It reports false with a nil error on the review step.
func (d *Draft) Advance() (bool, error) {
	d.touch()
	return d.Wizard.Advance(d.ValidateStep)
}

// Retreat moves to the previous step.
func (d *Draft) Retreat() {
	d.touch()
	d.Wizard.Retreat()
}

// AddMember appends an empty member slot and its step.
// POST: Returns the new member's index
func (d *Draft) AddMember() (int, error) {
	i, err := d.Wizard.AddMember()
	if err != nil {
		return 0, ErrTooManyMembers
	}
	d.Registration.Members = append(d.Registration.Members, Member{})
	d.touch()
	return i, nil
}

// RemoveMember deletes member i and shifts later members down.
func (d *Draft) RemoveMember(i int) error {
	if err := d.Wizard.RemoveMember(i); err != nil {
		return err
	}
	m := d.Registration.Members
	d.Registration.Members = append(m[:i:i], m[i+1:]...)
	d.touch()
	return nil
}

// SetMember overwrites the data for member i.
func (d *Draft) SetMember(i int, m Member) error {
	if i < 0 || i >= len(d.Registration.Members) {
		return wizard.ErrNoSuchMember
	}
	d.Registration.Members[i] = m
	d.touch()
	return nil
}

// Complete returns the finished registration once the draft sits on the
// review step and the whole record validates.
func (d *Draft) Complete() (Registration, error) {
	if d.Wizard.Current().Name != StepReview {
		return Registration{}, ErrDraftIncomplete
	}
	reg := d.Registration
	reg.Members = append([]Member(nil), d.Registration.Members...)
	if err := reg.Validate(d.Rules); err != nil {
		return Registration{}, err
	}
	return reg, nil
}

// IsExpired reports whether the draft has been idle longer than DraftTTL.
func (d *Draft) IsExpired(now time.Time) bool {
	return now.Sub(d.UpdatedAt) > DraftTTL
}

func (d *Draft) touch() {
	d.UpdatedAt = time.Now()
}
