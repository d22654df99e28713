package clockgate

import (
	"context"
	"errors"
	"time"
)

// Phase names shared by the submission windows.
const (
	PhaseBeforeOpen = "before_open"
	PhaseOpen       = "open"
	PhaseClosed     = "closed"
)

// Phase names for the results schedule.
const (
	PhaseHidden    = "hidden"
	PhasePublished = "published"
)

// DefaultInterval is the polling interval used by Watch when none is given.
const DefaultInterval = time.Second

// Domain errors
var (
	ErrNoInitialPhase    = errors.New("schedule initial phase cannot be empty")
	ErrEmptyPhase        = errors.New("boundary phase cannot be empty")
	ErrZeroBoundary      = errors.New("boundary time cannot be zero")
	ErrUnorderedBoundary = errors.New("boundaries must be strictly ascending")
)

// Boundary marks the instant at which Phase begins.
type Boundary struct {
	Phase string
	At    time.Time
}

// Schedule is an ordered list of boundaries. Initial names the phase that
// holds before the first boundary.
type Schedule struct {
	Initial    string
	Boundaries []Boundary
}

// Window builds the common before_open / open / closed schedule.
func Window(opensAt, closesAt time.Time) Schedule {
	return Schedule{
		Initial: PhaseBeforeOpen,
		Boundaries: []Boundary{
			{Phase: PhaseOpen, At: opensAt},
			{Phase: PhaseClosed, At: closesAt},
		},
	}
}

// Validate checks the schedule is well formed.
// PRE: none
// POST: Returns nil if Initial is set and boundaries are strictly ascending
func (s Schedule) Validate() error {
	if s.Initial == "" {
		return ErrNoInitialPhase
	}
	for i, b := range s.Boundaries {
		if b.Phase == "" {
			return ErrEmptyPhase
		}
		if b.At.IsZero() {
			return ErrZeroBoundary
		}
		if i > 0 && !s.Boundaries[i-1].At.Before(b.At) {
			return ErrUnorderedBoundary
		}
	}
	return nil
}

// Resolve returns the phase containing now.
// A boundary is compared with strict less-than, so now == At resolves to
// the boundary's own (later) phase.
// PRE: s is valid
// POST: Returns the same phase for the same inputs
func (s Schedule) Resolve(now time.Time) string {
	phase := s.Initial
	for _, b := range s.Boundaries {
		if now.Before(b.At) {
			return phase
		}
		phase = b.Phase
	}
	return phase
}

// Terminal returns the phase after the last boundary.
func (s Schedule) Terminal() string {
	if len(s.Boundaries) == 0 {
		return s.Initial
	}
	return s.Boundaries[len(s.Boundaries)-1].Phase
}

// IsTerminal reports whether now falls in the terminal phase.
func (s Schedule) IsTerminal(now time.Time) bool {
	return s.Resolve(now) == s.Terminal()
}

// Next returns the upcoming boundary after now, if any.
// INVARIANT: s is not mutated
func (s Schedule) Next(now time.Time) (Boundary, bool) {
	for _, b := range s.Boundaries {
		if now.Before(b.At) {
			return b, true
		}
	}
	return Boundary{}, false
}

// Watch polls the schedule every interval and calls onChange with the
// initial phase and every later change. It returns nil once the terminal
// phase has been reported, or ctx.Err() if ctx is cancelled first.
// PRE: clock and onChange are non-nil
// POST: The ticker is stopped before returning
func Watch(ctx context.Context, s Schedule, clock func() time.Time, interval time.Duration, onChange func(string)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	current := s.Resolve(clock())
	onChange(current)
	if current == s.Terminal() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			phase := s.Resolve(clock())
			if phase == current {
				continue
			}
			current = phase
			onChange(current)
			if current == s.Terminal() {
				return nil
			}
		}
	}
}
