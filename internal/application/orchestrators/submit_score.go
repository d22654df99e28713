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
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/submission"
)

// ErrUnknownSubmission is returned when a score names no stored submission.
var ErrUnknownSubmission = errors.New("no such submission")

// MaxCommentLength bounds a judge's comment.
const MaxCommentLength = 2000

// SubmissionByID looks a submission up.
type SubmissionByID interface {
	GetByID(ctx context.Context, id string) (submission.Submission, error)
}

// ScoreInserter is the store slice the score writer needs.
type ScoreInserter interface {
	Insert(ctx context.Context, s judging.Score) error
}

// SubmitScoreInput carries one judge's marks.
type SubmitScoreInput struct {
	SubmissionID string
	JudgeID      string
	Scores       judging.Scores
	Comment      string
}

// SubmitScoreDeps holds dependencies for SubmitScore.
type SubmitScoreDeps struct {
	Submissions     SubmissionByID
	Store           ScoreInserter
	Schedule        clockgate.Schedule
	MaxPerCriterion int
	Metrics         WriteCounter // optional
	Clock           func() time.Time
	NewID           func() string
}

// ExecuteSubmitScore validates and inserts one score.
// The total is never supplied by the caller; it is derived from the sub-scores.
// PRE: the judging window is open
// POST: exactly one row inserted and returned, or a single error
func ExecuteSubmitScore(ctx context.Context, input SubmitScoreInput, deps SubmitScoreDeps) (judging.Score, error) {
	now := nowOr(deps.Clock)
	if err := requireOpen(deps.Schedule, "judging", now); err != nil {
		countWrite(deps.Metrics, "score", resultClosed)
		return judging.Score{}, err
	}

	sub, err := deps.Submissions.GetByID(ctx, input.SubmissionID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		countWrite(deps.Metrics, "score", resultInvalid)
		return judging.Score{}, &ValidationError{Field: "submission_id", Err: ErrUnknownSubmission}
	case err != nil:
		countWrite(deps.Metrics, "score", resultError)
		return judging.Score{}, fmt.Errorf("look up submission: %w", err)
	}

	comment := strings.TrimSpace(input.Comment)
	if len(comment) > MaxCommentLength {
		countWrite(deps.Metrics, "score", resultInvalid)
		return judging.Score{}, &ValidationError{Field: "comment", Err: fmt.Errorf("comment cannot exceed %d characters", MaxCommentLength)}
	}

	sc := judging.Score{
		ID:           newID(deps.NewID),
		SubmissionID: sub.ID,
		TeamName:     sub.TeamName,
		JudgeID:      input.JudgeID,
		Scores:       input.Scores,
		Comment:      comment,
		CreatedAt:    now,
	}
	if err := sc.Validate(deps.MaxPerCriterion); err != nil {
		countWrite(deps.Metrics, "score", resultInvalid)
		return judging.Score{}, &ValidationError{Field: "scores", Err: err}
	}

	if err := deps.Store.Insert(ctx, sc); err != nil {
		countWrite(deps.Metrics, "score", resultError)
		slog.Error("judging_event", "event", "insert_failed", "submission_id", sc.SubmissionID, "judge_id", sc.JudgeID, "error", err)
		return judging.Score{}, &WriteError{Entity: "score", Err: err}
	}
	countWrite(deps.Metrics, "score", resultOK)
	slog.Info("judging_event", "event", "scored", "id", sc.ID, "submission_id", sc.SubmissionID, "judge_id", sc.JudgeID, "total", sc.Total())
	return sc, nil
}
