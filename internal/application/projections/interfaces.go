package projections

import (
	"context"

	judgingStore "hackathon/internal/adapters/storage/judging"
	domainJudging "hackathon/internal/domain/judging"
	domainLeaderboard "hackathon/internal/domain/leaderboard"
)

// LeaderboardStore interface for leaderboard queries.
type LeaderboardStore interface {
	List(ctx context.Context) ([]domainLeaderboard.Entry, error)
}

// ScoreStore interface for judging queries.
type ScoreStore interface {
	List(ctx context.Context, filter judgingStore.ListFilter) ([]domainJudging.Score, error)
}
