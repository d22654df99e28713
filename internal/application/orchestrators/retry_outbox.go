package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domain "hackathon/internal/domain/outbox"
)

// ErrTerminalEntry is returned when an admin retries a finished entry.
var ErrTerminalEntry = errors.New("outbox entry is in a terminal state")

// OutboxStore is the slice of the outbox store the processor needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes one kind of deferred action.
type ActionExecutor interface {
	// Execute runs the action with the given payload.
	// Returns the provider's ID for the delivered action and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxCounter records delivery outcomes.
type OutboxCounter interface {
	CountOutbox(action, result string)
}

// OutboxProcessor delivers pending outbox entries with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	metrics   OutboxCounter
	clock     func() time.Time
	backoff   domain.Backoff
	batchSize int
}

// NewOutboxProcessor creates a processor with a 30s base delay capped at one hour.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		clock:     time.Now,
		backoff:   domain.DefaultBackoff,
		batchSize: 10,
	}
}

// WithMetrics sets the delivery counter.
func (p *OutboxProcessor) WithMetrics(m OutboxCounter) *OutboxProcessor {
	p.metrics = m
	return p
}

// WithClock overrides the processor's time source.
func (p *OutboxProcessor) WithClock(clock func() time.Time) *OutboxProcessor {
	if clock != nil {
		p.clock = clock
	}
	return p
}

// ProcessPending attempts every pending entry whose backoff has elapsed.
// PRE: Context is valid
// POST: Due entries attempted once; returns the count attempted
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}

	attempted := 0
	for _, entry := range entries {
		if !entry.Due(p.clock(), p.backoff) {
			continue
		}
		attempted++
		if err := p.attempt(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return attempted, nil
}

// ProcessSingle attempts one entry now, ignoring its backoff.
// PRE: entryID is non-empty
// POST: Entry attempted, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.Finished() {
		return fmt.Errorf("%w: %s", ErrTerminalEntry, entryID)
	}
	return p.attempt(ctx, entry)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.Abandon()
	if err := p.store.Save(ctx, entry); err != nil {
		return err
	}
	p.count(entry.ActionType, "abandoned")
	slog.Info("outbox_action_abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
	return nil
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.Attempts = entry.MaxAttempts
		entry.Failed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		p.count(entry.ActionType, "error")
		return p.store.Save(ctx, entry)
	}

	entry.Begin(p.clock())
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.Failed(err)
		p.count(entry.ActionType, "error")
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.Delivered(externalID)
		p.count(entry.ActionType, "ok")
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

func (p *OutboxProcessor) count(action, result string) {
	if p.metrics != nil {
		p.metrics.CountOutbox(action, result)
	}
}

// StartBackgroundWorker periodically processes pending outbox entries.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
