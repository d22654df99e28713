package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"hackathon/internal/adapters/storage"
	"hackathon/internal/adapters/storage/storagetest"
	domain "hackathon/internal/domain/outbox"
)

func TestSQLiteStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(storagetest.Open(t))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	e := domain.NewEntry("o1", domain.ActionTypeConfirmationEmail, "r1", `{"to":"ana@uni.edu"}`, now)
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	other := domain.NewEntry("o2", domain.ActionTypeConfirmationEmail, "r2", `{}`, now.Add(time.Second))
	if err := s.Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	pending, err := s.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "o1" {
		t.Fatalf("pending = %+v", pending)
	}
	if !pending[0].LastAttemptedAt.IsZero() {
		t.Errorf("LastAttemptedAt should be zero before any attempt")
	}

	// Exhaust o1.
	got, _ := s.GetByID(ctx, "o1")
	for got.CanRetry() {
		got.Begin(time.Now())
		got.Failed(errors.New("smtp down"))
	}
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save failed entry: %v", err)
	}

	failed, _ := s.ListFailed(ctx, 10)
	if len(failed) != 1 || failed[0].ErrorMessage != "smtp down" || failed[0].Attempts != domain.DefaultMaxAttempts {
		t.Errorf("failed = %+v", failed)
	}
	pending, _ = s.ListPending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != "o2" {
		t.Errorf("pending after failure = %+v", pending)
	}

	bySubject, _ := s.ListBySubject(ctx, "r1")
	if len(bySubject) != 1 || bySubject[0].Subject != "r1" {
		t.Errorf("bySubject = %+v", bySubject)
	}

	if err := s.Delete(ctx, "o1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "o1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID after delete err = %v", err)
	}
}
