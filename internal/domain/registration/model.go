package registration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hackathon/internal/domain/words"
)

// Default limits, overridable through Rules.
const (
	DefaultMaxMembers      = 4
	DefaultMaxProblemWords = 300
	DefaultMaxRating       = 10
	MaxTeamNameLength      = 80
	MaxEmailLength         = 254
	CodeLength             = 5
)

// CodeAlphabet excludes look-alike characters so codes can be read aloud.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Domain errors
var (
	ErrEmptyTeamName    = errors.New("team name is required")
	ErrTeamNameTooLong  = errors.New("team name cannot exceed 80 characters")
	ErrEmptyLeaderName  = errors.New("leader name is required")
	ErrEmptyLeaderEmail = errors.New("leader email is required")
	ErrInvalidEmail     = errors.New("leader email must contain '@'")
	ErrEmptyLeaderID    = errors.New("leader student ID is required")
	ErrTooManyMembers   = errors.New("too many team members")
	ErrMemberGap        = errors.New("member slots must be filled in order")
	ErrEmptyMemberName  = errors.New("member name is required")
	ErrEmptyMemberID    = errors.New("member student ID is required")
	ErrEmptyDomain      = errors.New("domain is required")
	ErrUnknownDomain    = errors.New("domain is not one of the offered categories")
	ErrEmptySlot        = errors.New("time slot is required")
	ErrUnknownSlot      = errors.New("time slot is not one of the offered slots")
	ErrEmptyProblem     = errors.New("problem statement is required")
	ErrProblemTooLong   = errors.New("problem statement exceeds the word limit")
	ErrRatingOutOfRange = errors.New("rating is out of range")
	ErrAlreadyArchived  = errors.New("registration is already archived")
	ErrNotArchived      = errors.New("registration is not archived")
	ErrArchivedMutation = errors.New("archived registrations cannot be changed")
)

// Rules carries the per-event limits a registration is checked against.
type Rules struct {
	MaxMembers      int
	MaxProblemWords int
	MaxRating       int
	Domains         []string
	Slots           []string
}

// DefaultRules returns the limits used when the event file sets none.
func DefaultRules() Rules {
	return Rules{
		MaxMembers:      DefaultMaxMembers,
		MaxProblemWords: DefaultMaxProblemWords,
		MaxRating:       DefaultMaxRating,
	}
}

// Member is one non-leader team member.
type Member struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

// IsBlank reports whether both fields are empty.
func (m Member) IsBlank() bool {
	return strings.TrimSpace(m.Name) == "" && strings.TrimSpace(m.StudentID) == ""
}

// Registration holds state for a team signing up.
type Registration struct {
	ID              string
	Code            string // short reference code quoted in emails and in ideation
	TeamName        string
	LeaderName      string
	LeaderEmail     string
	LeaderPhone     string
	LeaderStudentID string
	Members         []Member
	Domain          string
	Slot            string
	Problem         string
	Present         bool
	Archived        bool
	Rating          *int
	CreatedAt       time.Time
}

// Validate checks every field against rules.
// PRE: Registration struct is populated
// POST: Returns nil if valid, the first failing rule otherwise
func (r *Registration) Validate(rules Rules) error {
	if err := r.ValidateTeam(); err != nil {
		return err
	}
	if err := r.ValidateLeader(); err != nil {
		return err
	}
	if err := r.ValidateMembers(rules); err != nil {
		return err
	}
	if err := r.ValidateDomain(rules); err != nil {
		return err
	}
	if err := r.ValidateSlot(rules); err != nil {
		return err
	}
	if err := r.ValidateProblem(rules); err != nil {
		return err
	}
	if r.Rating != nil {
		if err := checkRating(*r.Rating, rules); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTeam checks the team name.
func (r *Registration) ValidateTeam() error {
	name := strings.TrimSpace(r.TeamName)
	if name == "" {
		return ErrEmptyTeamName
	}
	if len(name) > MaxTeamNameLength {
		return ErrTeamNameTooLong
	}
	return nil
}

// ValidateLeader checks the leader's contact details.
func (r *Registration) ValidateLeader() error {
	if strings.TrimSpace(r.LeaderName) == "" {
		return ErrEmptyLeaderName
	}
	email := strings.TrimSpace(r.LeaderEmail)
	if email == "" {
		return ErrEmptyLeaderEmail
	}
	if len(email) > MaxEmailLength || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(r.LeaderStudentID) == "" {
		return ErrEmptyLeaderID
	}
	return nil
}

// ValidateMembers checks the member count and that no slot is left blank
// ahead of a filled one.
func (r *Registration) ValidateMembers(rules Rules) error {
	if len(r.Members) > maxMembers(rules) {
		return ErrTooManyMembers
	}
	for i := range r.Members {
		if err := r.ValidateMember(i); err != nil {
			if r.Members[i].IsBlank() {
				return fmt.Errorf("member %d: %w", i+1, ErrMemberGap)
			}
			return fmt.Errorf("member %d: %w", i+1, err)
		}
	}
	return nil
}

// ValidateMember checks member i.
// PRE: 0 <= i < len(Members)
func (r *Registration) ValidateMember(i int) error {
	m := r.Members[i]
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyMemberName
	}
	if strings.TrimSpace(m.StudentID) == "" {
		return ErrEmptyMemberID
	}
	return nil
}

// ValidateDomain checks the chosen category.
func (r *Registration) ValidateDomain(rules Rules) error {
	if strings.TrimSpace(r.Domain) == "" {
		return ErrEmptyDomain
	}
	if len(rules.Domains) > 0 && !contains(rules.Domains, r.Domain) {
		return ErrUnknownDomain
	}
	return nil
}

// ValidateSlot checks the chosen time slot.
func (r *Registration) ValidateSlot(rules Rules) error {
	if strings.TrimSpace(r.Slot) == "" {
		return ErrEmptySlot
	}
	if len(rules.Slots) > 0 && !contains(rules.Slots, r.Slot) {
		return ErrUnknownSlot
	}
	return nil
}

// ValidateProblem checks the problem statement and its word ceiling.
func (r *Registration) ValidateProblem(rules Rules) error {
	if words.Count(r.Problem) == 0 {
		return ErrEmptyProblem
	}
	limit := rules.MaxProblemWords
	if limit <= 0 {
		limit = DefaultMaxProblemWords
	}
	if words.Exceeds(r.Problem, limit) {
		return fmt.Errorf("%w (%d/%d)", ErrProblemTooLong, words.Count(r.Problem), limit)
	}
	return nil
}

// TeamSize returns the leader plus members.
func (r *Registration) TeamSize() int {
	return 1 + len(r.Members)
}

// Archive hides the registration from the default moderation view.
// PRE: Registration is not archived
// POST: Archived is true
func (r *Registration) Archive() error {
	if r.Archived {
		return ErrAlreadyArchived
	}
	r.Archived = true
	return nil
}

// Restore reverses Archive.
// PRE: Registration is archived
// POST: Archived is false
func (r *Registration) Restore() error {
	if !r.Archived {
		return ErrNotArchived
	}
	r.Archived = false
	return nil
}

// MarkPresent sets the attendance flag.
// PRE: Registration is not archived
func (r *Registration) MarkPresent(present bool) error {
	if r.Archived {
		return ErrArchivedMutation
	}
	r.Present = present
	return nil
}

// SetRating assigns a moderator rating.
// PRE: 0 <= v <= rules.MaxRating
// POST: Rating points at a copy of v
func (r *Registration) SetRating(v int, rules Rules) error {
	if err := checkRating(v, rules); err != nil {
		return err
	}
	r.Rating = &v
	return nil
}

// ClearRating removes any rating.
func (r *Registration) ClearRating() {
	r.Rating = nil
}

// TrimBlankMembers drops trailing members with no data, so a half-added
// slot at the end does not count as a gap.
func (r *Registration) TrimBlankMembers() {
	n := len(r.Members)
	for n > 0 && r.Members[n-1].IsBlank() {
		n--
	}
	r.Members = r.Members[:n]
}

func checkRating(v int, rules Rules) error {
	max := rules.MaxRating
	if max <= 0 {
		max = DefaultMaxRating
	}
	if v < 0 || v > max {
		return fmt.Errorf("%w: %d not in 0-%d", ErrRatingOutOfRange, v, max)
	}
	return nil
}

func maxMembers(rules Rules) int {
	if rules.MaxMembers <= 0 {
		return DefaultMaxMembers
	}
	return rules.MaxMembers
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
