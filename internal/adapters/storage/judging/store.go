package judging

import (
	"context"

	domain "hackathon/internal/domain/judging"
)

// Store persists judges' scores.
type Store interface {
	Insert(ctx context.Context, s domain.Score) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Score, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Score, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	SubmissionID string
	JudgeID      string
}
