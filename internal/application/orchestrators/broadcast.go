package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hackathon/internal/adapters/email"
	"hackathon/internal/adapters/markdown"
	registrationStore "hackathon/internal/adapters/storage/registration"
	"hackathon/internal/domain/outbox"
	"hackathon/internal/domain/registration"
)

// ErrNoRecipients is returned when a broadcast matches no team.
var ErrNoRecipients = errors.New("no teams match the broadcast filter")

// RegistrationLister lists registrations.
type RegistrationLister interface {
	List(ctx context.Context, filter registrationStore.ListFilter) ([]registration.Registration, error)
}

// BroadcastInput is an announcement to team leaders.
type BroadcastInput struct {
	Subject     string
	Body        string // markdown
	Domain      string // optional filter
	Slot        string // optional filter
	PresentOnly bool
}

// BroadcastDeps holds dependencies for Broadcast.
type BroadcastDeps struct {
	Registrations RegistrationLister
	Outbox        OutboxWriter
	Event         string
	Clock         func() time.Time
	NewID         func() string
}

// BroadcastResult reports how many leader emails were queued.
type BroadcastResult struct {
	Recipients int
	EntryIDs   []string
}

// BroadcastPayload is the outbox payload of one broadcast email.
type BroadcastPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"` // markdown
}

// ExecuteBroadcast queues one email per matching, non-archived team leader.
// PRE: Subject and Body are non-empty
// POST: one outbox entry per distinct leader address, subject is the registration ID
// INVARIANT: a failed save stops the broadcast; entries already queued stay queued
func ExecuteBroadcast(ctx context.Context, input BroadcastInput, deps BroadcastDeps) (BroadcastResult, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return BroadcastResult{}, &ValidationError{Field: "subject", Err: errors.New("subject is required")}
	}
	if strings.TrimSpace(input.Body) == "" {
		return BroadcastResult{}, &ValidationError{Field: "body", Err: errors.New("body is required")}
	}

	regs, err := deps.Registrations.List(ctx, registrationStore.ListFilter{Domain: input.Domain, Slot: input.Slot})
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("list registrations: %w", err)
	}

	if deps.Event != "" {
		subject = deps.Event + ": " + subject
	}
	now := nowOr(deps.Clock)
	seen := make(map[string]bool)
	var res BroadcastResult
	for _, r := range regs {
		if input.PresentOnly && !r.Present {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(r.LeaderEmail))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		data, err := json.Marshal(BroadcastPayload{To: r.LeaderEmail, Subject: subject, Body: input.Body})
		if err != nil {
			return res, fmt.Errorf("encode broadcast: %w", err)
		}
		entry := outbox.NewEntry(newID(deps.NewID), outbox.ActionTypeBroadcastEmail, r.ID, string(data), now)
		if err := deps.Outbox.Save(ctx, entry); err != nil {
			slog.Error("broadcast_event", "event", "enqueue_failed", "queued", res.Recipients, "error", err)
			return res, &WriteError{Entity: "outbox", Err: err}
		}
		res.Recipients++
		res.EntryIDs = append(res.EntryIDs, entry.ID)
	}
	if res.Recipients == 0 {
		return BroadcastResult{}, ErrNoRecipients
	}
	slog.Info("broadcast_event", "event", "queued", "recipients", res.Recipients, "subject", subject)
	return res, nil
}

// BroadcastEmailExecutor delivers broadcast_email outbox entries.
type BroadcastEmailExecutor struct {
	Sender email.Sender
}

// Execute renders the markdown body and sends it.
// PRE: payload is valid JSON matching BroadcastPayload
// POST: email sent via Sender, returns its message ID
func (e *BroadcastEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p BroadcastPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:      []string{p.To},
		Subject: p.Subject,
		HTML:    markdown.ToHTML(p.Body),
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}
