package submission

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hackathon/internal/domain/words"
)

// DefaultMaxWords is the idea word ceiling.
const DefaultMaxWords = 300

// MaxTitleLength bounds the idea title.
const MaxTitleLength = 120

// Domain errors
var (
	ErrEmptyRegistration = errors.New("submission must reference a registration")
	ErrEmptyTeamName     = errors.New("team name is required")
	ErrEmptyLeader       = errors.New("leader name is required")
	ErrEmptyTitle        = errors.New("idea title is required")
	ErrTitleTooLong      = errors.New("idea title cannot exceed 120 characters")
	ErrEmptyIdea         = errors.New("idea text is required")
	ErrWordLimit         = errors.New("idea exceeds the word limit")
	ErrWordCountMismatch = errors.New("cached word count does not match the idea text")
	ErrInvalidLink       = errors.New("link must be an absolute http or https URL")
)

// Submission holds an ideation-round entry for a registered team.
// INVARIANT: WordCount == words.Count(Idea) whenever the record is written
type Submission struct {
	ID             string
	RegistrationID string
	TeamName       string
	LeaderName     string
	Title          string
	Idea           string
	Link           string
	WordCount      int
	CreatedAt      time.Time
}

// New builds a submission with WordCount computed from idea.
// POST: WordCount matches idea
func New(id, registrationID, teamName, leaderName, title, idea, link string) Submission {
	return Submission{
		ID:             id,
		RegistrationID: registrationID,
		TeamName:       strings.TrimSpace(teamName),
		LeaderName:     strings.TrimSpace(leaderName),
		Title:          strings.TrimSpace(title),
		Idea:           idea,
		Link:           strings.TrimSpace(link),
		WordCount:      words.Count(idea),
	}
}

// Validate checks the submission against maxWords.
// A maxWords <= 0 falls back to DefaultMaxWords.
// PRE: Submission struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Submission) Validate(maxWords int) error {
	if s.RegistrationID == "" {
		return ErrEmptyRegistration
	}
	if strings.TrimSpace(s.TeamName) == "" {
		return ErrEmptyTeamName
	}
	if strings.TrimSpace(s.LeaderName) == "" {
		return ErrEmptyLeader
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	n := words.Count(s.Idea)
	if n == 0 {
		return ErrEmptyIdea
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if n > maxWords {
		return fmt.Errorf("%w (%d/%d)", ErrWordLimit, n, maxWords)
	}
	if s.WordCount != n {
		return ErrWordCountMismatch
	}
	if s.Link != "" {
		if err := validateLink(s.Link); err != nil {
			return err
		}
	}
	return nil
}

// Recount refreshes the cached word count.
// POST: WordCount == words.Count(Idea)
func (s *Submission) Recount() {
	s.WordCount = words.Count(s.Idea)
}

func validateLink(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidLink
	}
	return nil
}
