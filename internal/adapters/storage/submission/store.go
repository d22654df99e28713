package submission

import (
	"context"

	domain "hackathon/internal/domain/submission"
)

// Store persists ideation submissions.
type Store interface {
	Insert(ctx context.Context, s domain.Submission) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Submission, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Submission, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit          int
	Offset         int
	RegistrationID string
}
