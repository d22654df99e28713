package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hackathon/internal/adapters/storage"
	"hackathon/internal/application/moderation"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/domain/export"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// internalError logs the full error server-side and returns a generic 500 to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// writeError maps an application error to its status:
// validation 400, closed window 403, missing 404, storage failure 502.
// Storage failures keep the store's message so moderators see it as-is.
func writeError(w http.ResponseWriter, err error) {
	var (
		verr  *orchestrators.ValidationError
		werr  *orchestrators.WindowError
		wrerr *orchestrators.WriteError
		mwerr *moderation.WriteError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Err.Error(), Field: verr.Field})
	case errors.As(err, &werr):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error(), Phase: werr.Phase})
	case errors.Is(err, orchestrators.ErrWindowClosed):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrDraftExpired):
		writeJSON(w, http.StatusGone, errorBody{Error: err.Error()})
	case errors.As(err, &wrerr):
		slog.Error("write_failed", "entity", wrerr.Entity, "error", wrerr.Err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	case errors.As(err, &mwerr):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), Outcome: string(mwerr.Outcome)})
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, moderation.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrAccountLocked):
		writeJSON(w, http.StatusLocked, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrTerminalEntry), errors.Is(err, orchestrators.ErrReadOnly):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, orchestrators.ErrNoRecipients):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, export.ErrUnknownFormat):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: "format"})
	default:
		internalError(w, err)
	}
}

// strictDecode decodes a JSON body into v, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeOrReject decodes the body and writes a 400 on failure.
func decodeOrReject(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return false
	}
	return true
}
