package countdown

import (
	"context"
	"fmt"
	"time"
)

// Divisors used for decomposition.
const (
	msPerSecond   = 1000
	secsPerMinute = 60
	minsPerHour   = 60
	hoursPerDay   = 24
)

// DefaultInterval is the tick interval used when none is given.
const DefaultInterval = time.Second

// Remaining is a floor-divided decomposition of a duration.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Decompose splits d into days, hours, minutes and seconds.
// PRE: none
// POST: Returns the zero value for d <= 0; sub-second remainders are dropped
func Decompose(d time.Duration) Remaining {
	ms := d.Milliseconds()
	if ms <= 0 {
		return Remaining{}
	}
	totalSecs := ms / msPerSecond
	return Remaining{
		Days:    totalSecs / (secsPerMinute * minsPerHour * hoursPerDay),
		Hours:   (totalSecs / (secsPerMinute * minsPerHour)) % hoursPerDay,
		Minutes: (totalSecs / secsPerMinute) % minsPerHour,
		Seconds: totalSecs % secsPerMinute,
	}
}

// Until decomposes the time remaining from now until target.
func Until(target, now time.Time) Remaining {
	return Decompose(target.Sub(now))
}

// IsZero reports whether nothing remains.
func (r Remaining) IsZero() bool {
	return r == Remaining{}
}

// String renders the decomposition as "1d 02h 03m 04s".
func (r Remaining) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// Presenter recomputes a countdown on a fixed interval.
type Presenter struct {
	Clock    func() time.Time
	Interval time.Duration
}

// NewPresenter returns a Presenter driven by the wall clock.
func NewPresenter() *Presenter {
	return &Presenter{Clock: time.Now, Interval: DefaultInterval}
}

// Run calls onTick with the remaining time on every tick until the target
// passes. It then calls onExpire exactly once and returns nil. If ctx is
// cancelled first, Run returns ctx.Err() without calling onExpire.
// PRE: onTick and onExpire are non-nil
// POST: onTick is never called after onExpire
func (p *Presenter) Run(ctx context.Context, target time.Time, onTick func(Remaining), onExpire func()) error {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	expired := func() bool {
		left := target.Sub(clock())
		if left <= 0 {
			onExpire()
			return true
		}
		onTick(Decompose(left))
		return false
	}

	if expired() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if expired() {
				return nil
			}
		}
	}
}
