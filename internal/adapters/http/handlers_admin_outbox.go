package web

import (
	"net/http"
	"strconv"

	"hackathon/internal/domain/outbox"
)

const (
	outboxDefaultLimit = 50
	outboxMaxLimit     = 100
)

// handleListOutbox handles GET /api/admin/outbox.
// status=failed (default) or pending; subject= lists every entry about one
// registration regardless of status.
func handleListOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit := outboxDefaultLimit
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= outboxMaxLimit {
		limit = n
	}

	var entries []outbox.Entry
	var err error
	switch status := q.Get("status"); {
	case q.Get("subject") != "":
		entries, err = stores.OutboxStore.ListBySubject(ctx, q.Get("subject"))
	case status == "" || status == outbox.StatusFailed:
		entries, err = stores.OutboxStore.ListFailed(ctx, limit)
	case status == outbox.StatusPending:
		entries, err = stores.OutboxStore.ListPending(ctx, limit)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "status must be failed or pending", Field: "status"})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(entries, toOutboxEntryJSON))
}

// handleOutboxAction handles POST /api/admin/outbox/{id}/{action}:
// retry attempts delivery now, abandon stops further attempts.
func handleOutboxAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var err error
	switch r.PathValue("action") {
	case "retry":
		err = services.Outbox.ProcessSingle(ctx, id)
	case "abandon":
		err = services.Outbox.AbandonEntry(ctx, id)
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown action"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := stores.OutboxStore.GetByID(ctx, id)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutboxEntryJSON(entry))
}
