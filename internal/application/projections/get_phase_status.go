package projections

import (
	"time"

	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/countdown"
)

// NamedSchedule labels a clock gate.
type NamedSchedule struct {
	Name     string
	Schedule clockgate.Schedule
}

// PhaseStatus is the current phase of one schedule and the time left
// until its next boundary.
type PhaseStatus struct {
	Name      string              `json:"name"`
	Phase     string              `json:"phase"`
	NextPhase string              `json:"next_phase,omitempty"`
	NextAt    *time.Time          `json:"next_at,omitempty"`
	Remaining countdown.Remaining `json:"remaining"`
	Terminal  bool                `json:"terminal"`
}

// QueryPhaseStatus resolves every schedule at now.
// POST: one status per schedule, in input order
func QueryPhaseStatus(now time.Time, schedules []NamedSchedule) []PhaseStatus {
	out := make([]PhaseStatus, 0, len(schedules))
	for _, ns := range schedules {
		st := PhaseStatus{
			Name:     ns.Name,
			Phase:    ns.Schedule.Resolve(now),
			Terminal: ns.Schedule.IsTerminal(now),
		}
		if next, ok := ns.Schedule.Next(now); ok {
			at := next.At
			st.NextPhase = next.Phase
			st.NextAt = &at
			st.Remaining = countdown.Until(at, now)
		}
		out = append(out, st)
	}
	return out
}
