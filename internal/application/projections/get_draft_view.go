package projections

import (
	"time"

	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/words"
)

// DraftStep describes one wizard step for a client.
type DraftStep struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// DraftView is what a client needs to render the current wizard step.
type DraftView struct {
	ID           string                `json:"id"`
	Cursor       int                   `json:"cursor"`
	Step         string                `json:"step"`
	Label        string                `json:"label"`
	Progress     string                `json:"progress"`
	Error        string                `json:"error,omitempty"`
	IsFirst      bool                  `json:"is_first"`
	IsLast       bool                  `json:"is_last"`
	Steps        []DraftStep           `json:"steps"`
	MaxMembers   int                   `json:"max_members"`
	Registration DraftRegistrationView `json:"registration"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// DraftRegistrationView is the data entered so far.
type DraftRegistrationView struct {
	TeamName        string                `json:"team_name"`
	LeaderName      string                `json:"leader_name"`
	LeaderEmail     string                `json:"leader_email"`
	LeaderPhone     string                `json:"leader_phone"`
	LeaderStudentID string                `json:"leader_student_id"`
	Members         []registration.Member `json:"members"`
	Domain          string                `json:"domain"`
	Slot            string                `json:"slot"`
	Problem         string                `json:"problem"`
	ProblemWords    int                   `json:"problem_words"`
}

// BuildDraftView flattens a draft for display.
// PRE: d is non-nil
func BuildDraftView(d *registration.Draft) DraftView {
	w := d.Wizard
	steps := make([]DraftStep, w.Len())
	for i := range steps {
		steps[i] = DraftStep{Name: w.At(i).Name, Label: w.LabelAt(i)}
	}
	r := d.Registration
	members := r.Members
	if members == nil {
		members = []registration.Member{}
	}
	return DraftView{
		ID:         d.ID,
		Cursor:     w.Cursor(),
		Step:       w.Current().Name,
		Label:      w.Label(),
		Progress:   w.Progress(),
		Error:      w.Error(),
		IsFirst:    w.IsFirst(),
		IsLast:     w.IsLast(),
		Steps:      steps,
		MaxMembers: w.MaxMembers(),
		Registration: DraftRegistrationView{
			TeamName:        r.TeamName,
			LeaderName:      r.LeaderName,
			LeaderEmail:     r.LeaderEmail,
			LeaderPhone:     r.LeaderPhone,
			LeaderStudentID: r.LeaderStudentID,
			Members:         members,
			Domain:          r.Domain,
			Slot:            r.Slot,
			Problem:         r.Problem,
			ProblemWords:    words.Count(r.Problem),
		},
		UpdatedAt: d.UpdatedAt,
	}
}
