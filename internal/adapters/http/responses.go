package web

import (
	"time"

	"hackathon/internal/adapters/markdown"
	"hackathon/internal/application/listutil"
	"hackathon/internal/domain/account"
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/leaderboard"
	"hackathon/internal/domain/outbox"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

type registrationJSON struct {
	ID              string                `json:"id"`
	Code            string                `json:"code"`
	TeamName        string                `json:"team_name"`
	LeaderName      string                `json:"leader_name"`
	LeaderEmail     string                `json:"leader_email,omitempty"`
	LeaderPhone     string                `json:"leader_phone,omitempty"`
	LeaderStudentID string                `json:"leader_student_id,omitempty"`
	Members         []registration.Member `json:"members"`
	TeamSize        int                   `json:"team_size"`
	Domain          string                `json:"domain"`
	Slot            string                `json:"slot"`
	Problem         string                `json:"problem"`
	ProblemHTML     string                `json:"problem_html,omitempty"`
	Present         bool                  `json:"present"`
	Archived        bool                  `json:"archived"`
	Rating          *int                  `json:"rating"`
	CreatedAt       time.Time             `json:"created_at"`
}

func toRegistrationJSON(r registration.Registration) registrationJSON {
	members := r.Members
	if members == nil {
		members = []registration.Member{}
	}
	return registrationJSON{
		ID:              r.ID,
		Code:            r.Code,
		TeamName:        r.TeamName,
		LeaderName:      r.LeaderName,
		LeaderEmail:     r.LeaderEmail,
		LeaderPhone:     r.LeaderPhone,
		LeaderStudentID: r.LeaderStudentID,
		Members:         members,
		TeamSize:        r.TeamSize(),
		Domain:          r.Domain,
		Slot:            r.Slot,
		Problem:         r.Problem,
		Present:         r.Present,
		Archived:        r.Archived,
		Rating:          r.Rating,
		CreatedAt:       r.CreatedAt,
	}
}

// registrationReceipt is what a team sees after registering.
type registrationReceipt struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	TeamName string `json:"team_name"`
	TeamSize int    `json:"team_size"`
}

func toReceipt(r registration.Registration) registrationReceipt {
	return registrationReceipt{ID: r.ID, Code: r.Code, TeamName: r.TeamName, TeamSize: r.TeamSize()}
}

type submissionJSON struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	TeamName       string    `json:"team_name"`
	LeaderName     string    `json:"leader_name"`
	Title          string    `json:"title"`
	Idea           string    `json:"idea"`
	IdeaHTML       string    `json:"idea_html,omitempty"`
	Link           string    `json:"link,omitempty"`
	WordCount      int       `json:"word_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func toSubmissionJSON(s submission.Submission) submissionJSON {
	return submissionJSON{
		ID:             s.ID,
		RegistrationID: s.RegistrationID,
		TeamName:       s.TeamName,
		LeaderName:     s.LeaderName,
		Title:          s.Title,
		Idea:           s.Idea,
		Link:           s.Link,
		WordCount:      s.WordCount,
		CreatedAt:      s.CreatedAt,
	}
}

// withHTML renders the markdown fields for a detail view.
func (s submissionJSON) withHTML() submissionJSON {
	s.IdeaHTML = markdown.ToHTML(s.Idea)
	return s
}

func (r registrationJSON) withHTML() registrationJSON {
	r.ProblemHTML = markdown.ToHTML(r.Problem)
	return r
}

type scoresJSON struct {
	Innovation   int `json:"innovation"`
	Feasibility  int `json:"feasibility"`
	Impact       int `json:"impact"`
	Technical    int `json:"technical"`
	Presentation int `json:"presentation"`
}

func (s scoresJSON) domain() judging.Scores {
	return judging.Scores{
		Innovation:   s.Innovation,
		Feasibility:  s.Feasibility,
		Impact:       s.Impact,
		Technical:    s.Technical,
		Presentation: s.Presentation,
	}
}

type scoreJSON struct {
	ID           string     `json:"id"`
	SubmissionID string     `json:"submission_id"`
	TeamName     string     `json:"team_name"`
	JudgeID      string     `json:"judge_id"`
	Scores       scoresJSON `json:"scores"`
	Total        int        `json:"total"`
	Comment      string     `json:"comment,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toScoreJSON(s judging.Score) scoreJSON {
	return scoreJSON{
		ID:           s.ID,
		SubmissionID: s.SubmissionID,
		TeamName:     s.TeamName,
		JudgeID:      s.JudgeID,
		Scores: scoresJSON{
			Innovation:   s.Scores.Innovation,
			Feasibility:  s.Scores.Feasibility,
			Impact:       s.Scores.Impact,
			Technical:    s.Scores.Technical,
			Presentation: s.Scores.Presentation,
		},
		Total:     s.Total(),
		Comment:   s.Comment,
		CreatedAt: s.CreatedAt,
	}
}

type summaryJSON struct {
	SubmissionID string  `json:"submission_id"`
	TeamName     string  `json:"team_name"`
	Judges       int     `json:"judges"`
	Average      float64 `json:"average"`
	Best         int     `json:"best"`
	Worst        int     `json:"worst"`
}

func toSummaryJSON(s judging.Summary) summaryJSON {
	return summaryJSON(s)
}

type leaderboardEntryJSON struct {
	ID        string                   `json:"id"`
	TeamName  string                   `json:"team_name"`
	Rounds    [leaderboard.Rounds]*int `json:"rounds"`
	RoundSum  int                      `json:"round_sum"`
	Total     int                      `json:"total"`
	Drift     int                      `json:"drift"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func toLeaderboardEntryJSON(e leaderboard.Entry) leaderboardEntryJSON {
	return leaderboardEntryJSON{
		ID:        e.ID,
		TeamName:  e.TeamName,
		Rounds:    e.Rounds,
		RoundSum:  e.RoundSum(),
		Total:     e.Total,
		Drift:     e.Drift(),
		UpdatedAt: e.UpdatedAt,
	}
}

type accountJSON struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Locked      bool      `json:"locked"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAccountJSON(a account.Account, now time.Time) accountJSON {
	return accountJSON{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		Locked:      a.LockedAt(now),
		CreatedAt:   a.CreatedAt,
	}
}

type outboxEntryJSON struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"action_type"`
	Subject         string     `json:"subject"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ExternalID      string     `json:"external_id,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}

func toOutboxEntryJSON(e outbox.Entry) outboxEntryJSON {
	out := outboxEntryJSON{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Subject:      e.Subject,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ExternalID:   e.ExternalID,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		t := e.LastAttemptedAt
		out.LastAttemptedAt = &t
	}
	return out
}

// listJSON is one page of a moderation list.
type listJSON[T any] struct {
	Items    []T               `json:"items"`
	Page     listutil.PageInfo `json:"page"`
	Matched  int               `json:"matched"`
	Total    int               `json:"total"`
	Degraded bool              `json:"degraded"`
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
