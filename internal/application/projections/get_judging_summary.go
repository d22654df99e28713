package projections

import (
	"context"
	"sort"

	judgingStore "hackathon/internal/adapters/storage/judging"
	"hackathon/internal/domain/judging"
)

// JudgingSummaryDeps holds dependencies for QueryJudgingSummary.
type JudgingSummaryDeps struct {
	Scores ScoreStore
}

// QueryJudgingSummary averages every judge's total per submission,
// highest average first.
func QueryJudgingSummary(ctx context.Context, deps JudgingSummaryDeps) ([]judging.Summary, error) {
	scores, err := deps.Scores.List(ctx, judgingStore.ListFilter{})
	if err != nil {
		return nil, err
	}
	summaries := judging.Summarize(scores)
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Average > summaries[j].Average
	})
	if summaries == nil {
		summaries = []judging.Summary{}
	}
	return summaries, nil
}

// QueryJudgeScores lists the scores one judge has entered.
func QueryJudgeScores(ctx context.Context, judgeID string, deps JudgingSummaryDeps) ([]judging.Score, error) {
	scores, err := deps.Scores.List(ctx, judgingStore.ListFilter{JudgeID: judgeID})
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []judging.Score{}
	}
	return scores, nil
}
