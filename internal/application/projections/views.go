package projections

import (
	"strconv"
	"time"

	"hackathon/internal/application/listutil"
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/leaderboard"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

// RegistrationView declares the searchable, filterable and sortable
// fields of the registration moderation list.
var RegistrationView = listutil.View[registration.Registration]{
	Search: []func(registration.Registration) string{
		func(r registration.Registration) string { return r.TeamName },
		func(r registration.Registration) string { return r.LeaderName },
		func(r registration.Registration) string { return r.LeaderEmail },
		func(r registration.Registration) string { return r.Code },
		func(r registration.Registration) string { return r.Problem },
	},
	Filters: map[string]func(registration.Registration) string{
		"domain":   func(r registration.Registration) string { return r.Domain },
		"slot":     func(r registration.Registration) string { return r.Slot },
		"present":  func(r registration.Registration) string { return strconv.FormatBool(r.Present) },
		"archived": func(r registration.Registration) string { return strconv.FormatBool(r.Archived) },
	},
	Sorts: map[string]func(registration.Registration) any{
		"team_name":  func(r registration.Registration) any { return r.TeamName },
		"leader":     func(r registration.Registration) any { return r.LeaderName },
		"domain":     func(r registration.Registration) any { return r.Domain },
		"slot":       func(r registration.Registration) any { return r.Slot },
		"size":       func(r registration.Registration) any { return r.TeamSize() },
		"rating":     func(r registration.Registration) any { return r.Rating },
		"present":    func(r registration.Registration) any { return r.Present },
		"created_at": func(r registration.Registration) any { return r.CreatedAt },
	},
}

// SubmissionView is the ideation moderation list.
var SubmissionView = listutil.View[submission.Submission]{
	Search: []func(submission.Submission) string{
		func(s submission.Submission) string { return s.TeamName },
		func(s submission.Submission) string { return s.LeaderName },
		func(s submission.Submission) string { return s.Title },
		func(s submission.Submission) string { return s.Idea },
	},
	Filters: map[string]func(submission.Submission) string{
		"registration_id": func(s submission.Submission) string { return s.RegistrationID },
	},
	Sorts: map[string]func(submission.Submission) any{
		"team_name":  func(s submission.Submission) any { return s.TeamName },
		"title":      func(s submission.Submission) any { return s.Title },
		"words":      func(s submission.Submission) any { return s.WordCount },
		"created_at": func(s submission.Submission) any { return s.CreatedAt },
	},
}

// ScoreView is the judging moderation list.
var ScoreView = listutil.View[judging.Score]{
	Search: []func(judging.Score) string{
		func(s judging.Score) string { return s.TeamName },
		func(s judging.Score) string { return s.Comment },
	},
	Filters: map[string]func(judging.Score) string{
		"submission_id": func(s judging.Score) string { return s.SubmissionID },
		"judge_id":      func(s judging.Score) string { return s.JudgeID },
	},
	Sorts: map[string]func(judging.Score) any{
		"team_name":    func(s judging.Score) any { return s.TeamName },
		"total":        func(s judging.Score) any { return s.Total() },
		"innovation":   func(s judging.Score) any { return s.Scores.Innovation },
		"feasibility":  func(s judging.Score) any { return s.Scores.Feasibility },
		"impact":       func(s judging.Score) any { return s.Scores.Impact },
		"technical":    func(s judging.Score) any { return s.Scores.Technical },
		"presentation": func(s judging.Score) any { return s.Scores.Presentation },
		"created_at":   func(s judging.Score) any { return s.CreatedAt },
	},
}

// LeaderboardView is the leaderboard list. Unscored rounds sort last.
var LeaderboardView = listutil.View[leaderboard.Entry]{
	Search: []func(leaderboard.Entry) string{
		func(e leaderboard.Entry) string { return e.TeamName },
	},
	Sorts: map[string]func(leaderboard.Entry) any{
		"team_name":  func(e leaderboard.Entry) any { return e.TeamName },
		"round1":     func(e leaderboard.Entry) any { return e.Round(0) },
		"round2":     func(e leaderboard.Entry) any { return e.Round(1) },
		"round3":     func(e leaderboard.Entry) any { return e.Round(2) },
		"total":      func(e leaderboard.Entry) any { return e.Total },
		"drift":      func(e leaderboard.Entry) any { return e.Drift() },
		"updated_at": func(e leaderboard.Entry) any { return timeOrNil(e.UpdatedAt) },
	},
}

// timeOrNil lets unset timestamps sort last.
func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
