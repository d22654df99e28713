package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/submission"
)

type memScores struct {
	rows      []judging.Score
	insertErr error
}

func (m *memScores) Insert(_ context.Context, s judging.Score) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, s)
	return nil
}

func scoreDeps(scores *memScores) SubmitScoreDeps {
	sub := submission.New("sub-1", "reg-1", "Null Pointers", "Ana Lima", "Bot", "an idea", "")
	return SubmitScoreDeps{
		Submissions:     newMemSubmissions(sub),
		Store:           scores,
		Schedule:        openWindow(),
		MaxPerCriterion: 20,
		Clock:           testClock,
		NewID:           seqIDs("score"),
	}
}

func TestExecuteSubmitScore_Valid(t *testing.T) {
	scores := &memScores{}
	got, err := ExecuteSubmitScore(context.Background(), SubmitScoreInput{
		SubmissionID: "sub-1",
		JudgeID:      "judge-1",
		Scores:       judging.Scores{Innovation: 18, Feasibility: 12, Impact: 15, Technical: 10, Presentation: 20},
		Comment:      "  strong pitch ",
	}, scoreDeps(scores))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TeamName != "Null Pointers" {
		t.Errorf("TeamName = %q, want copied from submission", got.TeamName)
	}
	if got.Total() != 75 {
		t.Errorf("Total = %d, want 75", got.Total())
	}
	if got.Comment != "strong pitch" {
		t.Errorf("Comment = %q", got.Comment)
	}
	if len(scores.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(scores.rows))
	}
}

func TestExecuteSubmitScore_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		input     SubmitScoreInput
		wantField string
		wantErr   error
	}{
		{"unknown submission", SubmitScoreInput{SubmissionID: "sub-9", JudgeID: "j"}, "submission_id", ErrUnknownSubmission},
		{"criterion above max", SubmitScoreInput{SubmissionID: "sub-1", JudgeID: "j", Scores: judging.Scores{Impact: 21}}, "scores", judging.ErrScoreOutOfRange},
		{"negative criterion", SubmitScoreInput{SubmissionID: "sub-1", JudgeID: "j", Scores: judging.Scores{Technical: -1}}, "scores", judging.ErrScoreOutOfRange},
		{"no judge", SubmitScoreInput{SubmissionID: "sub-1"}, "scores", judging.ErrEmptyJudge},
		{"long comment", SubmitScoreInput{SubmissionID: "sub-1", JudgeID: "j", Comment: strings.Repeat("x", MaxCommentLength+1)}, "comment", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := &memScores{}
			_, err := ExecuteSubmitScore(context.Background(), tt.input, scoreDeps(scores))
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.wantField {
				t.Fatalf("expected ValidationError on %q, got %v", tt.wantField, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(scores.rows) != 0 {
				t.Error("rejected score must not be stored")
			}
		})
	}
}

func TestExecuteSubmitScore_WindowAndWriteErrors(t *testing.T) {
	deps := scoreDeps(&memScores{})
	deps.Schedule = closedWindow()
	if _, err := ExecuteSubmitScore(context.Background(), SubmitScoreInput{SubmissionID: "sub-1", JudgeID: "j"}, deps); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("expected ErrWindowClosed, got %v", err)
	}

	scores := &memScores{insertErr: errors.New("FOREIGN KEY constraint failed")}
	_, err := ExecuteSubmitScore(context.Background(), SubmitScoreInput{SubmissionID: "sub-1", JudgeID: "j"}, scoreDeps(scores))
	var werr *WriteError
	if !errors.As(err, &werr) || !strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		t.Errorf("expected WriteError carrying store text, got %v", err)
	}
}
