package web

import (
	"net/http"

	"hackathon/internal/adapters/http/middleware"
	judgingStore "hackathon/internal/adapters/storage/judging"
	submissionStore "hackathon/internal/adapters/storage/submission"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/application/projections"
)

type judgingSubmissionJSON struct {
	submissionJSON
	Scored bool `json:"scored"` // by the requesting judge
}

// handleJudgingSubmissions handles GET /api/judging/submissions: every idea
// with its rendered markdown, flagged when the judge has already scored it.
func handleJudgingSubmissions(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	subs, err := stores.SubmissionStore.List(r.Context(), submissionStore.ListFilter{})
	if err != nil {
		internalError(w, err)
		return
	}
	mine, err := stores.ScoreStore.List(r.Context(), judgingStore.ListFilter{JudgeID: sess.AccountID})
	if err != nil {
		internalError(w, err)
		return
	}
	scored := make(map[string]bool, len(mine))
	for _, s := range mine {
		scored[s.SubmissionID] = true
	}

	out := make([]judgingSubmissionJSON, 0, len(subs))
	for _, s := range subs {
		out = append(out, judgingSubmissionJSON{
			submissionJSON: toSubmissionJSON(s).withHTML(),
			Scored:         scored[s.ID],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type scoreRequest struct {
	SubmissionID string     `json:"submission_id"`
	Scores       scoresJSON `json:"scores"`
	Comment      string     `json:"comment"`
}

// handleSubmitScore handles POST /api/judging/scores.
// The judge is always the session account; the total is derived.
func handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	var req scoreRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	score, err := orchestrators.ExecuteSubmitScore(r.Context(), orchestrators.SubmitScoreInput{
		SubmissionID: req.SubmissionID,
		JudgeID:      sess.AccountID,
		Scores:       req.Scores.domain(),
		Comment:      req.Comment,
	}, orchestrators.SubmitScoreDeps{
		Submissions:     stores.SubmissionStore,
		Store:           stores.ScoreStore,
		Schedule:        services.Event.Schedules().Judging,
		MaxPerCriterion: services.Event.Limits.MaxScorePerCriterion,
		Metrics:         services.Metrics,
		Clock:           timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScoreJSON(score))
}

// handleMyScores handles GET /api/judging/scores/mine.
func handleMyScores(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	scores, err := projections.QueryJudgeScores(r.Context(), sess.AccountID, projections.JudgingSummaryDeps{Scores: stores.ScoreStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(scores, toScoreJSON))
}

// handleJudgingSummary handles GET /api/judging/summary.
func handleJudgingSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := projections.QueryJudgingSummary(r.Context(), projections.JudgingSummaryDeps{Scores: stores.ScoreStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(summaries, toSummaryJSON))
}
