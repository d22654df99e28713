package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

// Event validation errors.
var (
	ErrUnzonedTimestamp = errors.New("timestamp must carry an explicit UTC offset")
	ErrMissingName      = errors.New("event name is required")
	ErrMissingTime      = errors.New("window times are required")
	ErrWindowOrder      = errors.New("window must open before it closes")
	ErrScheduleOrder    = errors.New("windows must open in order: registration, ideation, judging, results")
	ErrNoDomains        = errors.New("at least one domain is required")
	ErrNoSlots          = errors.New("at least one time slot is required")
)

// Timestamp is an instant that must be written in RFC 3339 with an offset.
// "2026-03-01T09:00:00" is rejected; "2026-03-01T09:00:00+13:00" is not.
type Timestamp struct {
	time.Time
}

// UnmarshalYAML parses the raw scalar so yaml's own timestamp resolution
// cannot guess a zone.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if _, local := time.Parse("2006-01-02T15:04:05", raw); local == nil {
			return fmt.Errorf("line %d: %q: %w", node.Line, raw, ErrUnzonedTimestamp)
		}
		return fmt.Errorf("line %d: %q is not an RFC 3339 timestamp", node.Line, raw)
	}
	t.Time = parsed
	return nil
}

// Window is an open/close pair.
type Window struct {
	Opens  Timestamp `yaml:"opens"`
	Closes Timestamp `yaml:"closes"`
}

// Schedule converts the window to a clock gate schedule.
func (w Window) Schedule() clockgate.Schedule {
	return clockgate.Window(w.Opens.Time, w.Closes.Time)
}

func (w Window) validate(name string) error {
	if w.Opens.IsZero() || w.Closes.IsZero() {
		return fmt.Errorf("%s: %w", name, ErrMissingTime)
	}
	if !w.Opens.Before(w.Closes.Time) {
		return fmt.Errorf("%s: %w", name, ErrWindowOrder)
	}
	return nil
}

// Limits overrides the per-event ceilings. Zero keeps the default.
type Limits struct {
	MaxMembers           int `yaml:"max_members"`
	ProblemMaxWords      int `yaml:"problem_max_words"`
	IdeaMaxWords         int `yaml:"idea_max_words"`
	MaxRating            int `yaml:"max_rating"`
	MaxScorePerCriterion int `yaml:"max_score_per_criterion"`
}

// Event is the contents of event.yaml.
type Event struct {
	Name         string    `yaml:"name"`
	Registration Window    `yaml:"registration"`
	Ideation     Window    `yaml:"ideation"`
	Judging      Window    `yaml:"judging"`
	ResultsAt    Timestamp `yaml:"results_at"`
	Domains      []string  `yaml:"domains"`
	Slots        []string  `yaml:"slots"`
	Limits       Limits    `yaml:"limits"`
}

// Schedules groups the clock gates derived from an event.
type Schedules struct {
	Registration clockgate.Schedule
	Ideation     clockgate.Schedule
	Judging      clockgate.Schedule
	Results      clockgate.Schedule
}

// LoadEvent reads and validates an event file.
func LoadEvent(path string) (Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{}, fmt.Errorf("read event file: %w", err)
	}
	return ParseEvent(data)
}

// ParseEvent decodes YAML, rejecting unknown keys, then validates.
func ParseEvent(data []byte) (Event, error) {
	var e Event
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&e); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	e.applyDefaults()
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (e *Event) applyDefaults() {
	l := &e.Limits
	if l.MaxMembers <= 0 {
		l.MaxMembers = registration.DefaultMaxMembers
	}
	if l.ProblemMaxWords <= 0 {
		l.ProblemMaxWords = registration.DefaultMaxProblemWords
	}
	if l.IdeaMaxWords <= 0 {
		l.IdeaMaxWords = submission.DefaultMaxWords
	}
	if l.MaxRating <= 0 {
		l.MaxRating = registration.DefaultMaxRating
	}
	if l.MaxScorePerCriterion <= 0 {
		l.MaxScorePerCriterion = judging.DefaultMaxPerCriterion
	}
}

// Validate checks names, windows and option lists.
// POST: every derived schedule passes clockgate validation
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrMissingName
	}
	for _, w := range []struct {
		name string
		w    Window
	}{{"registration", e.Registration}, {"ideation", e.Ideation}, {"judging", e.Judging}} {
		if err := w.w.validate(w.name); err != nil {
			return err
		}
	}
	if e.ResultsAt.IsZero() {
		return fmt.Errorf("results_at: %w", ErrMissingTime)
	}
	if e.Ideation.Opens.Before(e.Registration.Opens.Time) ||
		e.Judging.Opens.Before(e.Ideation.Opens.Time) ||
		e.ResultsAt.Before(e.Judging.Opens.Time) {
		return ErrScheduleOrder
	}
	if len(nonBlank(e.Domains)) == 0 {
		return ErrNoDomains
	}
	if len(nonBlank(e.Slots)) == 0 {
		return ErrNoSlots
	}
	return nil
}

// Schedules derives every clock gate.
func (e Event) Schedules() Schedules {
	return Schedules{
		Registration: e.Registration.Schedule(),
		Ideation:     e.Ideation.Schedule(),
		Judging:      e.Judging.Schedule(),
		Results: clockgate.Schedule{
			Initial:    clockgate.PhaseHidden,
			Boundaries: []clockgate.Boundary{{Phase: clockgate.PhasePublished, At: e.ResultsAt.Time}},
		},
	}
}

// Rules derives the registration rules.
func (e Event) Rules() registration.Rules {
	return registration.Rules{
		MaxMembers:      e.Limits.MaxMembers,
		MaxProblemWords: e.Limits.ProblemMaxWords,
		MaxRating:       e.Limits.MaxRating,
		Domains:         nonBlank(e.Domains),
		Slots:           nonBlank(e.Slots),
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
