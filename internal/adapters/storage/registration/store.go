package registration

import (
	"context"
	"time"

	domain "hackathon/internal/domain/registration"
)

// Store persists registrations.
type Store interface {
	Insert(ctx context.Context, r domain.Registration) error
	Update(ctx context.Context, r domain.Registration) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Registration, error)
	GetByCode(ctx context.Context, code string) (domain.Registration, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Registration, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// A zero Limit means no limit.
type ListFilter struct {
	Limit           int
	Offset          int
	Domain          string
	Slot            string
	IncludeArchived bool
}

// DraftStore persists in-progress wizard drafts.
type DraftStore interface {
	SaveDraft(ctx context.Context, d *domain.Draft) error
	GetDraft(ctx context.Context, id string, rules domain.Rules) (*domain.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	PurgeDrafts(ctx context.Context, olderThan time.Time) (int, error)
}
