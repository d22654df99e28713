package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/leaderboard"
)

// LeaderboardRow is one ranked team.
type LeaderboardRow struct {
	Rank     int                      `json:"rank"`
	ID       string                   `json:"id"`
	TeamName string                   `json:"team_name"`
	Rounds   [leaderboard.Rounds]*int `json:"rounds"`
	RoundSum int                      `json:"round_sum"`
	Total    int                      `json:"total"`
	Drift    int                      `json:"drift"`
}

// LeaderboardResult carries the public leaderboard.
type LeaderboardResult struct {
	Published   bool             `json:"published"`
	PublishesAt time.Time        `json:"publishes_at"`
	Rows        []LeaderboardRow `json:"rows"`
}

// LeaderboardDeps holds dependencies for QueryLeaderboard.
type LeaderboardDeps struct {
	Store   LeaderboardStore
	Results clockgate.Schedule // hidden until the publish boundary
	Clock   func() time.Time
}

// QueryLeaderboard ranks teams by total, highest first.
// Before the publish time rows are withheld unless includeHidden is set.
// INVARIANT: equal totals share a rank and the next rank skips (1, 1, 3)
func QueryLeaderboard(ctx context.Context, includeHidden bool, deps LeaderboardDeps) (LeaderboardResult, error) {
	now := time.Now()
	if deps.Clock != nil {
		now = deps.Clock()
	}
	res := LeaderboardResult{Published: deps.Results.Resolve(now) == clockgate.PhasePublished}
	if next, ok := deps.Results.Next(now); ok {
		res.PublishesAt = next.At
	}
	if !res.Published && !includeHidden {
		res.Rows = []LeaderboardRow{}
		return res, nil
	}

	entries, err := deps.Store.List(ctx)
	if err != nil {
		return LeaderboardResult{}, err
	}
	res.Rows = RankLeaderboard(entries)
	return res, nil
}

// RankLeaderboard orders entries by total descending then team name.
func RankLeaderboard(entries []leaderboard.Entry) []LeaderboardRow {
	sorted := append([]leaderboard.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return strings.ToLower(sorted[i].TeamName) < strings.ToLower(sorted[j].TeamName)
	})

	rows := make([]LeaderboardRow, len(sorted))
	for i, e := range sorted {
		rank := i + 1
		if i > 0 && e.Total == sorted[i-1].Total {
			rank = rows[i-1].Rank
		}
		rows[i] = LeaderboardRow{
			Rank:     rank,
			ID:       e.ID,
			TeamName: e.TeamName,
			Rounds:   e.Rounds,
			RoundSum: e.RoundSum(),
			Total:    e.Total,
			Drift:    e.Drift(),
		}
	}
	return rows
}
