package outbox

import (
	"errors"
	"time"
)

// Delivery states. An entry moves pending -> retrying -> done | failed, and
// an admin can move any unfinished entry to abandoned.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Action types.
const (
	// ActionTypeConfirmationEmail sends the team code to a registration's leader.
	ActionTypeConfirmationEmail = "confirmation_email"
	// ActionTypeBroadcastEmail sends an organiser announcement to one leader.
	ActionTypeBroadcastEmail = "broadcast_email"
)

// DefaultMaxAttempts applies when an entry does not set MaxAttempts.
const DefaultMaxAttempts = 5

var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrNoCreatedAt     = errors.New("created_at must be set")
)

// Backoff doubles the wait after every attempt, starting at Base and never
// exceeding Cap.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// DefaultBackoff waits 30s after the first attempt and at most an hour.
var DefaultBackoff = Backoff{Base: 30 * time.Second, Cap: time.Hour}

// After returns the wait following the given number of attempts.
func (b Backoff) After(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	wait := b.Base
	for range attempts {
		wait *= 2
		if wait >= b.Cap {
			return b.Cap
		}
	}
	return min(wait, b.Cap)
}

// Entry is a deferred side effect, such as a confirmation email, recorded
// after the primary write so delivery failures never fail the write.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON handed to the executor
	Subject         string // record the action is about, e.g. a registration ID
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message ID once delivered
	ErrorMessage    string
}

// NewEntry builds a pending entry.
// POST: Status is pending with DefaultMaxAttempts
func NewEntry(id, actionType, subject, payload string, now time.Time) Entry {
	return Entry{
		ID:          id,
		ActionType:  actionType,
		Subject:     subject,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
	}
}

// Validate checks required fields and fills in MaxAttempts.
func (e *Entry) Validate() error {
	switch {
	case e.ActionType == "":
		return ErrEmptyActionType
	case e.Payload == "":
		return ErrEmptyPayload
	case e.CreatedAt.IsZero():
		return ErrNoCreatedAt
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// Exhausted reports whether every allowed attempt has been used.
func (e *Entry) Exhausted() bool {
	return e.Attempts >= e.MaxAttempts
}

// Finished reports whether no further attempt will be made.
// INVARIANT: done and abandoned are final; failed is final once exhausted.
func (e *Entry) Finished() bool {
	switch e.Status {
	case StatusDone, StatusAbandoned:
		return true
	case StatusFailed:
		return e.Exhausted()
	}
	return false
}

// Due reports whether the backoff since the last attempt has elapsed.
// Entries never attempted are due from creation.
func (e *Entry) Due(now time.Time, b Backoff) bool {
	if e.Finished() {
		return false
	}
	if e.LastAttemptedAt.IsZero() {
		return !now.Before(e.CreatedAt)
	}
	return !now.Before(e.LastAttemptedAt.Add(b.After(e.Attempts)))
}

// Begin records an attempt starting at now.
func (e *Entry) Begin(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// Delivered records success with the provider's message ID.
func (e *Entry) Delivered(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// Failed records err. The entry stays retrying until its attempts run out.
func (e *Entry) Failed(err error) {
	e.ErrorMessage = err.Error()
	if e.Exhausted() {
		e.Status = StatusFailed
	}
}

// Abandon stops any further delivery.
func (e *Entry) Abandon() {
	e.Status = StatusAbandoned
}
