package web

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"hackathon/internal/adapters/http/middleware"
	"hackathon/internal/application/orchestrators"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionJSON struct {
	AccountID   string `json:"account_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// handleLoginForm handles GET /api/login: hands out the CSRF token a
// form-encoded login must echo back.
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set("X-CSRF-Token", token)
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

// handleLogin handles POST /api/login with a JSON or form body.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if !decodeOrReject(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form submission"})
			return
		}
		req = loginRequest{Email: r.FormValue("email"), Password: r.FormValue("password")}
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore, Clock: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}

	token := sessions.Create(middleware.Session{
		AccountID:   result.AccountID,
		Email:       result.Email,
		DisplayName: result.DisplayName,
		Role:        result.Role,
	})
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionJSON{
		AccountID:   result.AccountID,
		Email:       result.Email,
		DisplayName: result.DisplayName,
		Role:        result.Role,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, sessionJSON{
		AccountID:   sess.AccountID,
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		Role:        sess.Role,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleChangePassword handles POST /api/me/password for the signed-in
// account. Other sessions of the same account stay valid.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
		return
	}
	var req changePasswordRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeError(w, err)
		return
	}
	var current string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		current = cookie.Value
	}
	sessions.RevokeAccount(sess.AccountID, current)
	w.WriteHeader(http.StatusNoContent)
}
