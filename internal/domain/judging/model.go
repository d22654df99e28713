package judging

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMaxPerCriterion is the ceiling for each sub-score.
const DefaultMaxPerCriterion = 20

// Criterion names, in display order.
const (
	CriterionInnovation   = "innovation"
	CriterionFeasibility  = "feasibility"
	CriterionImpact       = "impact"
	CriterionTechnical    = "technical"
	CriterionPresentation = "presentation"
)

// Criteria lists every criterion in display order.
var Criteria = []string{
	CriterionInnovation,
	CriterionFeasibility,
	CriterionImpact,
	CriterionTechnical,
	CriterionPresentation,
}

// Domain errors
var (
	ErrEmptySubmission = errors.New("score must reference a submission")
	ErrEmptyJudge      = errors.New("score must name a judge")
	ErrScoreOutOfRange = errors.New("sub-score is out of range")
	ErrUnknownCriteria = errors.New("unknown criterion")
)

// Scores holds the five sub-scores.
type Scores struct {
	Innovation   int
	Feasibility  int
	Impact       int
	Technical    int
	Presentation int
}

// Total returns the sum of all sub-scores.
// INVARIANT: Always derived, never stored
func (s Scores) Total() int {
	return s.Innovation + s.Feasibility + s.Impact + s.Technical + s.Presentation
}

// Get returns the sub-score for criterion.
func (s Scores) Get(criterion string) (int, error) {
	switch criterion {
	case CriterionInnovation:
		return s.Innovation, nil
	case CriterionFeasibility:
		return s.Feasibility, nil
	case CriterionImpact:
		return s.Impact, nil
	case CriterionTechnical:
		return s.Technical, nil
	case CriterionPresentation:
		return s.Presentation, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownCriteria, criterion)
}

// Set overwrites the sub-score for criterion.
func (s *Scores) Set(criterion string, v int) error {
	switch criterion {
	case CriterionInnovation:
		s.Innovation = v
	case CriterionFeasibility:
		s.Feasibility = v
	case CriterionImpact:
		s.Impact = v
	case CriterionTechnical:
		s.Technical = v
	case CriterionPresentation:
		s.Presentation = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCriteria, criterion)
	}
	return nil
}

// Validate checks every sub-score is within 0..max.
// A max <= 0 falls back to DefaultMaxPerCriterion.
func (s Scores) Validate(max int) error {
	if max <= 0 {
		max = DefaultMaxPerCriterion
	}
	for _, c := range Criteria {
		v, _ := s.Get(c)
		if v < 0 || v > max {
			return fmt.Errorf("%w: %s=%d not in 0-%d", ErrScoreOutOfRange, c, v, max)
		}
	}
	return nil
}

// Score is one judge's marks for one submission.
type Score struct {
	ID           string
	SubmissionID string
	TeamName     string
	JudgeID      string
	Scores       Scores
	Comment      string
	CreatedAt    time.Time
}

// Total returns the derived sum of the sub-scores.
func (s *Score) Total() int {
	return s.Scores.Total()
}

// Validate checks the score.
// PRE: Score struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Score) Validate(max int) error {
	if s.SubmissionID == "" {
		return ErrEmptySubmission
	}
	if s.JudgeID == "" {
		return ErrEmptyJudge
	}
	return s.Scores.Validate(max)
}

// Summary aggregates every score for one submission.
type Summary struct {
	SubmissionID string
	TeamName     string
	Judges       int
	Average      float64
	Best         int
	Worst        int
}

// Summarize groups scores by submission and averages their totals.
// Submissions keep the order in which they first appear.
func Summarize(scores []Score) []Summary {
	index := make(map[string]int)
	var out []Summary
	var sums []int
	for _, sc := range scores {
		total := sc.Total()
		i, ok := index[sc.SubmissionID]
		if !ok {
			i = len(out)
			index[sc.SubmissionID] = i
			out = append(out, Summary{SubmissionID: sc.SubmissionID, TeamName: sc.TeamName, Best: total, Worst: total})
			sums = append(sums, 0)
		}
		out[i].Judges++
		sums[i] += total
		if total > out[i].Best {
			out[i].Best = total
		}
		if total < out[i].Worst {
			out[i].Worst = total
		}
	}
	for i := range out {
		out[i].Average = float64(sums[i]) / float64(out[i].Judges)
	}
	return out
}
