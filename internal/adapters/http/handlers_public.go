package web

import (
	"net/http"
	"strings"
	"time"

	"hackathon/internal/adapters/http/middleware"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/application/projections"
	"hackathon/internal/config"
	"hackathon/internal/domain/registration"
)

type eventJSON struct {
	Name         string     `json:"name"`
	Domains      []string   `json:"domains"`
	Slots        []string   `json:"slots"`
	Limits       limitsJSON `json:"limits"`
	Registration windowJSON `json:"registration"`
	Ideation     windowJSON `json:"ideation"`
	Judging      windowJSON `json:"judging"`
	ResultsAt    time.Time  `json:"results_at"`
}

type limitsJSON struct {
	MaxMembers           int `json:"max_members"`
	ProblemMaxWords      int `json:"problem_max_words"`
	IdeaMaxWords         int `json:"idea_max_words"`
	MaxRating            int `json:"max_rating"`
	MaxScorePerCriterion int `json:"max_score_per_criterion"`
}

type windowJSON struct {
	Opens  time.Time `json:"opens"`
	Closes time.Time `json:"closes"`
}

func toWindowJSON(w config.Window) windowJSON {
	return windowJSON{Opens: w.Opens.Time, Closes: w.Closes.Time}
}

// handleEvent handles GET /api/event: what the wizard needs to render.
func handleEvent(w http.ResponseWriter, r *http.Request) {
	ev := services.Event
	writeJSON(w, http.StatusOK, eventJSON{
		Name:         ev.Name,
		Domains:      ev.Domains,
		Slots:        ev.Slots,
		Limits:       limitsJSON(ev.Limits),
		Registration: toWindowJSON(ev.Registration),
		Ideation:     toWindowJSON(ev.Ideation),
		Judging:      toWindowJSON(ev.Judging),
		ResultsAt:    ev.ResultsAt.Time,
	})
}

func namedSchedules() []projections.NamedSchedule {
	s := services.Event.Schedules()
	return []projections.NamedSchedule{
		{Name: "registration", Schedule: s.Registration},
		{Name: "ideation", Schedule: s.Ideation},
		{Name: "judging", Schedule: s.Judging},
		{Name: "results", Schedule: s.Results},
	}
}

// handlePhase handles GET /api/phase: every clock gate and its countdown.
func handlePhase(w http.ResponseWriter, r *http.Request) {
	now := timeNow()
	writeJSON(w, http.StatusOK, map[string]any{
		"event":  services.Event.Name,
		"now":    now,
		"phases": projections.QueryPhaseStatus(now, namedSchedules()),
	})
}

// handleLeaderboard handles GET /api/leaderboard.
// Admins may pass preview=1 to see rows before they are published.
func handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	preview := false
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.IsAdmin() {
		preview = r.URL.Query().Get("preview") == "1"
	}
	result, err := projections.QueryLeaderboard(r.Context(), preview, projections.LeaderboardDeps{
		Store:   stores.LeaderboardStore,
		Results: services.Event.Schedules().Results,
		Clock:   timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func submitRegistrationDeps() orchestrators.SubmitRegistrationDeps {
	return orchestrators.SubmitRegistrationDeps{
		Store:    stores.RegistrationStore,
		Outbox:   stores.OutboxStore,
		Schedule: services.Event.Schedules().Registration,
		Rules:    services.Event.Rules(),
		Event:    services.Event.Name,
		Metrics:  services.Metrics,
		Clock:    timeNow,
	}
}

func draftDeps() orchestrators.DraftDeps {
	return orchestrators.DraftDeps{
		Drafts: stores.DraftStore,
		Submit: submitRegistrationDeps(),
	}
}

// handleStartDraft handles POST /api/register/draft.
func handleStartDraft(w http.ResponseWriter, r *http.Request) {
	d, err := orchestrators.ExecuteStartDraft(r.Context(), draftDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projections.BuildDraftView(d))
}

// handleGetDraft handles GET /api/register/draft/{id}.
func handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := orchestrators.ExecuteGetDraft(r.Context(), r.PathValue("id"), draftDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projections.BuildDraftView(d))
}

// handleUpdateDraft handles PATCH /api/register/draft/{id}.
// A step that fails validation answers 422 with the draft, so the client can
// show the wizard's message next to the fields it kept.
func handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var cmd orchestrators.DraftCommand
	if !decodeOrReject(w, r, &cmd) {
		return
	}
	d, err := orchestrators.ExecuteUpdateDraft(r.Context(), r.PathValue("id"), cmd, draftDeps())
	if d == nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, projections.BuildDraftView(d))
}

// handleSubmitDraft handles POST /api/register/draft/{id}/submit.
func handleSubmitDraft(w http.ResponseWriter, r *http.Request) {
	reg, err := orchestrators.ExecuteSubmitDraft(r.Context(), r.PathValue("id"), draftDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(reg))
}

type registrationRequest struct {
	TeamName        string                `json:"team_name"`
	LeaderName      string                `json:"leader_name"`
	LeaderEmail     string                `json:"leader_email"`
	LeaderPhone     string                `json:"leader_phone"`
	LeaderStudentID string                `json:"leader_student_id"`
	Members         []registration.Member `json:"members"`
	Domain          string                `json:"domain"`
	Slot            string                `json:"slot"`
	Problem         string                `json:"problem"`
}

// handleSubmitRegistration handles POST /api/registrations, a one-shot
// registration for clients that run the wizard themselves.
func handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	reg, err := orchestrators.ExecuteSubmitRegistration(r.Context(), orchestrators.SubmitRegistrationInput{
		Registration: registration.Registration{
			TeamName:        req.TeamName,
			LeaderName:      strings.TrimSpace(req.LeaderName),
			LeaderEmail:     req.LeaderEmail,
			LeaderPhone:     strings.TrimSpace(req.LeaderPhone),
			LeaderStudentID: strings.TrimSpace(req.LeaderStudentID),
			Members:         req.Members,
			Domain:          req.Domain,
			Slot:            req.Slot,
			Problem:         req.Problem,
		},
	}, submitRegistrationDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceipt(reg))
}

type ideaRequest struct {
	Code        string `json:"code"`
	LeaderEmail string `json:"leader_email"`
	Title       string `json:"title"`
	Idea        string `json:"idea"`
	Link        string `json:"link"`
}

// handleSubmitIdea handles POST /api/ideas.
func handleSubmitIdea(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	sub, err := orchestrators.ExecuteSubmitIdea(r.Context(), orchestrators.SubmitIdeaInput{
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		LeaderEmail: req.LeaderEmail,
		Title:       req.Title,
		Idea:        req.Idea,
		Link:        req.Link,
	}, orchestrators.SubmitIdeaDeps{
		Registrations: stores.RegistrationStore,
		Store:         stores.SubmissionStore,
		Outbox:        stores.OutboxStore,
		Schedule:      services.Event.Schedules().Ideation,
		MaxWords:      services.Event.Limits.IdeaMaxWords,
		Event:         services.Event.Name,
		Metrics:       services.Metrics,
		Clock:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         sub.ID,
		"team_name":  sub.TeamName,
		"title":      sub.Title,
		"word_count": sub.WordCount,
	})
}
