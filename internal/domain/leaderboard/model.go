package leaderboard

import (
	"errors"
	"strings"
	"time"
)

// Rounds is the number of scored rounds tracked per team.
const Rounds = 3

// Domain errors
var (
	ErrEmptyTeamName   = errors.New("team name is required")
	ErrNegativePoints  = errors.New("round points cannot be negative")
	ErrRoundOutOfRange = errors.New("round index out of range")
)

// Entry is one team's row on the public leaderboard.
// Total is entered independently of the rounds so organisers can apply
// penalties or manual overrides; Drift reports any difference.
type Entry struct {
	ID        string
	TeamName  string
	Rounds    [Rounds]*int // nil means the round has not been scored
	Total     int
	UpdatedAt time.Time
}

// Validate checks the entry.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.TeamName) == "" {
		return ErrEmptyTeamName
	}
	for _, r := range e.Rounds {
		if r != nil && *r < 0 {
			return ErrNegativePoints
		}
	}
	return nil
}

// SetRound records points for round i (0-based); nil clears the round.
func (e *Entry) SetRound(i int, points *int) error {
	if i < 0 || i >= Rounds {
		return ErrRoundOutOfRange
	}
	if points != nil {
		if *points < 0 {
			return ErrNegativePoints
		}
		v := *points
		points = &v
	}
	e.Rounds[i] = points
	return nil
}

// RoundSum adds up the rounds that have been scored.
func (e *Entry) RoundSum() int {
	sum := 0
	for _, r := range e.Rounds {
		if r != nil {
			sum += *r
		}
	}
	return sum
}

// Scored counts the rounds with points.
func (e *Entry) Scored() int {
	n := 0
	for _, r := range e.Rounds {
		if r != nil {
			n++
		}
	}
	return n
}

// Drift is Total minus RoundSum; non-zero means a manual adjustment.
func (e *Entry) Drift() int {
	return e.Total - e.RoundSum()
}

// SyncTotal sets Total to RoundSum, dropping any manual adjustment.
// POST: Drift() == 0
func (e *Entry) SyncTotal() {
	e.Total = e.RoundSum()
}

// Round returns round i's points, or nil when unscored or out of range.
func (e *Entry) Round(i int) *int {
	if i < 0 || i >= Rounds {
		return nil
	}
	return e.Rounds[i]
}
