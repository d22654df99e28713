package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"hackathon/internal/application/listutil"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/application/projections"
	"hackathon/internal/domain/export"
)

// exportBoard renders what the equivalent list request would show, unpaged,
// and sends it as a download.
func exportBoard[T any](w http.ResponseWriter, r *http.Request, src projections.ItemSource[T], view listutil.View[T], schema export.Schema[T], adjust func(listutil.ListParams) listutil.ListParams) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	dedupe, _ := strconv.ParseBool(q.Get("dedupe"))

	params := view.Parse(q)
	if adjust != nil {
		params = adjust(params)
	}
	doc, err := projections.QueryExport(src, view, schema, projections.ExportQuery{
		List:    params,
		Options: export.Options{Format: format, Dedupe: dedupe, Now: timeNow()},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Export-Records", strconv.Itoa(doc.Records))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		slog.Warn("export_event", "event", "write_failed", "schema", schema.Name, "error", err)
	}
}

// handleExport handles GET /api/admin/export/{board}. It accepts the same
// search, filter and sort parameters as the list, plus format (csv, txt,
// json), dedupe=1 and all=1.
func handleExport(w http.ResponseWriter, r *http.Request) {
	freshBoards(r.Context())
	m := services.Moderator
	switch r.PathValue("board") {
	case orchestrators.BoardRegistrations:
		exportBoard(w, r, m.Registrations, projections.RegistrationView, projections.RegistrationExport, projections.ActiveRegistrationsByDefault)
	case orchestrators.BoardSubmissions:
		exportBoard(w, r, m.Submissions, projections.SubmissionView, projections.SubmissionExport, nil)
	case orchestrators.BoardScores:
		exportBoard(w, r, m.Scores, projections.ScoreView, projections.ScoreExport, nil)
	case orchestrators.BoardLeaderboard:
		exportBoard(w, r, m.Leaderboard, projections.LeaderboardView, projections.LeaderboardExport, nil)
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown board"})
	}
}

type broadcastRequest struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Domain      string `json:"domain"`
	Slot        string `json:"slot"`
	PresentOnly bool   `json:"present_only"`
}

// handleBroadcast handles POST /api/admin/broadcast: queue one email per
// matching team leader. The outbox worker delivers them.
func handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	res, err := orchestrators.ExecuteBroadcast(r.Context(), orchestrators.BroadcastInput{
		Subject:     req.Subject,
		Body:        req.Body,
		Domain:      req.Domain,
		Slot:        req.Slot,
		PresentOnly: req.PresentOnly,
	}, orchestrators.BroadcastDeps{
		Registrations: stores.RegistrationStore,
		Outbox:        stores.OutboxStore,
		Event:         services.Event.Name,
		Clock:         timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"recipients": res.Recipients,
		"entry_ids":  res.EntryIDs,
	})
}
