package leaderboard

import (
	"context"

	domain "hackathon/internal/domain/leaderboard"
)

// Store persists leaderboard entries.
type Store interface {
	Save(ctx context.Context, e domain.Entry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	List(ctx context.Context) ([]domain.Entry, error)
}
