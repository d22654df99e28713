package web

import (
	"context"
	"net/http"

	accountStore "hackathon/internal/adapters/storage/account"
	"hackathon/internal/application/listutil"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/application/projections"
	"hackathon/internal/domain/account"
	"hackathon/internal/domain/leaderboard"
)

// freshBoards reloads moderation boards older than BoardMaxAge.
func freshBoards(ctx context.Context) {
	services.Moderator.EnsureFresh(ctx, BoardMaxAge)
}

// listBoard answers a moderation list request: search (q), filters,
// sort/dir, page/per_page, and all=1 for the whole board on one page.
func listBoard[T, U any](w http.ResponseWriter, r *http.Request, src projections.ItemSource[T], view listutil.View[T], adjust func(listutil.ListParams) listutil.ListParams, toJSON func(T) U) {
	freshBoards(r.Context())
	params := view.Parse(r.URL.Query())
	if adjust != nil {
		params = adjust(params)
	}
	res := projections.QueryModerationList(src, view, params)
	writeJSON(w, http.StatusOK, listJSON[U]{
		Items:    mapSlice(res.Items, toJSON),
		Page:     res.Page,
		Matched:  res.Matched,
		Total:    res.Total,
		Degraded: res.Degraded,
	})
}

// handleListRegistrations handles GET /api/admin/registrations.
// Archived teams are hidden unless archived= or all= is given.
func handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	listBoard(w, r, services.Moderator.Registrations, projections.RegistrationView,
		projections.ActiveRegistrationsByDefault, toRegistrationJSON)
}

// handleGetRegistration handles GET /api/admin/registrations/{id}.
func handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	freshBoards(r.Context())
	reg, ok := services.Moderator.Registrations.Get(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationJSON(reg).withHTML())
}

type presentRequest struct {
	Present bool `json:"present"`
}

type ratingRequest struct {
	Rating *int `json:"rating"` // null clears
}

// handleModerateRegistration handles POST /api/admin/registrations/{id}/{action}
// for archive, restore, present and rate.
func handleModerateRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	m := services.Moderator
	freshBoards(ctx)

	var err error
	var out any
	switch r.PathValue("action") {
	case orchestrators.ActionArchive:
		reg, e := m.ArchiveRegistration(ctx, id)
		out, err = toRegistrationJSON(reg), e
	case orchestrators.ActionRestore:
		reg, e := m.RestoreRegistration(ctx, id)
		out, err = toRegistrationJSON(reg), e
	case orchestrators.ActionPresent:
		var req presentRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		reg, e := m.MarkPresent(ctx, id, req.Present)
		out, err = toRegistrationJSON(reg), e
	case orchestrators.ActionRate:
		var req ratingRequest
		if !decodeOrReject(w, r, &req) {
			return
		}
		reg, e := m.RateRegistration(ctx, id, req.Rating)
		out, err = toRegistrationJSON(reg), e
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown action"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// deleteFrom runs a moderator delete and answers 204.
func deleteFrom(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error) {
	freshBoards(r.Context())
	if err := del(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRegistration handles DELETE /api/admin/registrations/{id}.
func handleDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	deleteFrom(w, r, services.Moderator.DeleteRegistration)
}

// handleListSubmissions handles GET /api/admin/submissions.
func handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	listBoard(w, r, services.Moderator.Submissions, projections.SubmissionView, nil, toSubmissionJSON)
}

// handleGetSubmission handles GET /api/admin/submissions/{id}.
func handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	freshBoards(r.Context())
	sub, ok := services.Moderator.Submissions.Get(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionJSON(sub).withHTML())
}

// handleDeleteSubmission handles DELETE /api/admin/submissions/{id}.
func handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	deleteFrom(w, r, services.Moderator.DeleteSubmission)
}

// handleListScores handles GET /api/admin/scores.
func handleListScores(w http.ResponseWriter, r *http.Request) {
	listBoard(w, r, services.Moderator.Scores, projections.ScoreView, nil, toScoreJSON)
}

// handleDeleteScore handles DELETE /api/admin/scores/{id}.
func handleDeleteScore(w http.ResponseWriter, r *http.Request) {
	deleteFrom(w, r, services.Moderator.DeleteScore)
}

// handleListLeaderboard handles GET /api/admin/leaderboard.
func handleListLeaderboard(w http.ResponseWriter, r *http.Request) {
	listBoard(w, r, services.Moderator.Leaderboard, projections.LeaderboardView, nil, toLeaderboardEntryJSON)
}

type leaderboardRequest struct {
	TeamName string                   `json:"team_name"`
	Rounds   [leaderboard.Rounds]*int `json:"rounds"`
	Total    *int                     `json:"total"` // null derives it from the rounds
}

// handleSaveLeaderboardEntry handles POST /api/admin/leaderboard (create)
// and PUT /api/admin/leaderboard/{id} (update).
func handleSaveLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	var req leaderboardRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	freshBoards(r.Context())
	id := r.PathValue("id")
	entry, err := services.Moderator.SaveLeaderboardEntry(r.Context(), orchestrators.LeaderboardInput{
		ID:       id,
		TeamName: req.TeamName,
		Rounds:   req.Rounds,
		Total:    req.Total,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toLeaderboardEntryJSON(entry))
}

// handleDeleteLeaderboardEntry handles DELETE /api/admin/leaderboard/{id}.
func handleDeleteLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	deleteFrom(w, r, services.Moderator.DeleteLeaderboardEntry)
}

// handleRefreshBoards handles POST /api/admin/refresh: reload every board now.
func handleRefreshBoards(w http.ResponseWriter, r *http.Request) {
	m := services.Moderator
	m.EnsureFresh(r.Context(), 0)
	writeJSON(w, http.StatusOK, map[string]bool{
		"registrations": !m.Registrations.Degraded(),
		"submissions":   !m.Submissions.Degraded(),
		"scores":        !m.Scores.Degraded(),
		"leaderboard":   !m.Leaderboard.Degraded(),
	})
}

type accountRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// handleListAccounts handles GET /api/admin/accounts.
func handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := stores.AccountStore.List(r.Context(), accountStore.ListFilter{Role: r.URL.Query().Get("role")})
	if err != nil {
		internalError(w, err)
		return
	}
	now := timeNow()
	writeJSON(w, http.StatusOK, mapSlice(accounts, func(a account.Account) accountJSON { return toAccountJSON(a, now) }))
}

// handleCreateAccount handles POST /api/admin/accounts: add a judge or admin.
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore, Clock: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountJSON(acct, timeNow()))
}
