package projections

import (
	"strings"

	"hackathon/internal/domain/export"
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/leaderboard"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

// RegistrationExport exports registrations; email identifies a team lead.
var RegistrationExport = export.Schema[registration.Registration]{
	Name: "registrations",
	Columns: []export.Column[registration.Registration]{
		{Key: "code", Header: "Code", Value: func(r registration.Registration) any { return r.Code }},
		{Key: "team_name", Header: "Team", Value: func(r registration.Registration) any { return r.TeamName }},
		{Key: "leader_name", Header: "Leader", Value: func(r registration.Registration) any { return r.LeaderName }},
		{Key: "leader_email", Header: "Email", Value: func(r registration.Registration) any { return r.LeaderEmail }},
		{Key: "leader_phone", Header: "Phone", Value: func(r registration.Registration) any { return r.LeaderPhone }},
		{Key: "leader_student_id", Header: "Student ID", Value: func(r registration.Registration) any { return r.LeaderStudentID }},
		{Key: "members", Header: "Members", Value: func(r registration.Registration) any { return memberList(r.Members) }},
		{Key: "team_size", Header: "Size", Value: func(r registration.Registration) any { return r.TeamSize() }},
		{Key: "domain", Header: "Domain", Value: func(r registration.Registration) any { return r.Domain }},
		{Key: "slot", Header: "Slot", Value: func(r registration.Registration) any { return r.Slot }},
		{Key: "problem", Header: "Problem", Value: func(r registration.Registration) any { return r.Problem }},
		{Key: "present", Header: "Present", Value: func(r registration.Registration) any { return r.Present }},
		{Key: "archived", Header: "Archived", Value: func(r registration.Registration) any { return r.Archived }},
		{Key: "rating", Header: "Rating", Value: func(r registration.Registration) any { return r.Rating }},
		{Key: "created_at", Header: "Registered", Value: func(r registration.Registration) any { return r.CreatedAt }},
	},
	Identity: func(r registration.Registration) string { return strings.ToLower(strings.TrimSpace(r.LeaderEmail)) },
}

// SubmissionExport exports ideas; a team's first submission wins on dedupe.
var SubmissionExport = export.Schema[submission.Submission]{
	Name: "ideas",
	Columns: []export.Column[submission.Submission]{
		{Key: "team_name", Header: "Team", Value: func(s submission.Submission) any { return s.TeamName }},
		{Key: "leader_name", Header: "Leader", Value: func(s submission.Submission) any { return s.LeaderName }},
		{Key: "title", Header: "Title", Value: func(s submission.Submission) any { return s.Title }},
		{Key: "idea", Header: "Idea", Value: func(s submission.Submission) any { return s.Idea }},
		{Key: "link", Header: "Link", Value: func(s submission.Submission) any { return s.Link }},
		{Key: "word_count", Header: "Words", Value: func(s submission.Submission) any { return s.WordCount }},
		{Key: "created_at", Header: "Submitted", Value: func(s submission.Submission) any { return s.CreatedAt }},
	},
	Identity: func(s submission.Submission) string { return s.RegistrationID },
}

// ScoreExport exports judges' scores; one per judge and submission on dedupe.
var ScoreExport = export.Schema[judging.Score]{
	Name: "scores",
	Columns: []export.Column[judging.Score]{
		{Key: "team_name", Header: "Team", Value: func(s judging.Score) any { return s.TeamName }},
		{Key: "judge_id", Header: "Judge", Value: func(s judging.Score) any { return s.JudgeID }},
		{Key: "innovation", Header: "Innovation", Value: func(s judging.Score) any { return s.Scores.Innovation }},
		{Key: "feasibility", Header: "Feasibility", Value: func(s judging.Score) any { return s.Scores.Feasibility }},
		{Key: "impact", Header: "Impact", Value: func(s judging.Score) any { return s.Scores.Impact }},
		{Key: "technical", Header: "Technical", Value: func(s judging.Score) any { return s.Scores.Technical }},
		{Key: "presentation", Header: "Presentation", Value: func(s judging.Score) any { return s.Scores.Presentation }},
		{Key: "total", Header: "Total", Value: func(s judging.Score) any { return s.Total() }},
		{Key: "comment", Header: "Comment", Value: func(s judging.Score) any { return s.Comment }},
	},
	Identity: func(s judging.Score) string { return s.SubmissionID + "/" + s.JudgeID },
}

// LeaderboardExport exports the leaderboard with its drift column.
var LeaderboardExport = export.Schema[leaderboard.Entry]{
	Name: "leaderboard",
	Columns: []export.Column[leaderboard.Entry]{
		{Key: "team_name", Header: "Team", Value: func(e leaderboard.Entry) any { return e.TeamName }},
		{Key: "round1", Header: "Round 1", Value: func(e leaderboard.Entry) any { return e.Round(0) }},
		{Key: "round2", Header: "Round 2", Value: func(e leaderboard.Entry) any { return e.Round(1) }},
		{Key: "round3", Header: "Round 3", Value: func(e leaderboard.Entry) any { return e.Round(2) }},
		{Key: "total", Header: "Total", Value: func(e leaderboard.Entry) any { return e.Total }},
		{Key: "drift", Header: "Drift", Value: func(e leaderboard.Entry) any { return e.Drift() }},
	},
	Identity: func(e leaderboard.Entry) string { return strings.ToLower(e.TeamName) },
}

func memberList(members []registration.Member) string {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		parts = append(parts, m.Name+" ("+m.StudentID+")")
	}
	return strings.Join(parts, "; ")
}
