package middleware

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainAccount "hackathon/internal/domain/account"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL is how long a login stays valid.
const SessionTTL = 12 * time.Hour

// SecureCookies marks the session cookie Secure. Set in production.
var SecureCookies = false

// Session is an authenticated organiser.
type Session struct {
	AccountID   string
	Email       string
	DisplayName string
	Role        string
	ExpiresAt   time.Time
}

// IsAdmin reports whether the session may moderate.
func (s Session) IsAdmin() bool {
	return s.Role == domainAccount.RoleAdmin
}

// CanJudge reports whether the session may score submissions.
// Admins can judge too.
func (s Session) CanJudge() bool {
	return s.Role == domainAccount.RoleJudge || s.IsAdmin()
}

// SessionStore keeps logins in memory, keyed by an opaque random token.
// Sessions do not survive a restart; organisers log in again.
type SessionStore struct {
	mu      sync.RWMutex
	byToken map[string]Session
	clock   func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{byToken: make(map[string]Session), clock: time.Now}
}

// WithClock replaces the store's time source. Used by tests.
func (ss *SessionStore) WithClock(clock func() time.Time) *SessionStore {
	ss.clock = clock
	return ss
}

// Create stores sess for SessionTTL and returns its token.
// PRE: sess.AccountID and sess.Role are non-empty
// POST: ExpiresAt is set; the token is 26 base32 characters
func (ss *SessionStore) Create(sess Session) string {
	token := rand.Text()
	sess.ExpiresAt = ss.clock().Add(SessionTTL)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.byToken[token] = sess
	return token
}

// Get returns the live session for token. Expired sessions are dropped.
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	sess, ok := ss.byToken[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !ss.clock().Before(sess.ExpiresAt) {
		ss.Delete(token)
		return Session{}, false
	}
	return sess, true
}

// Delete ends one session.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.byToken, token)
}

// RevokeAccount ends every session of accountID except keep, and returns
// how many were ended.
func (ss *SessionStore) RevokeAccount(accountID, keep string) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	n := 0
	for token, sess := range ss.byToken {
		if sess.AccountID == accountID && token != keep {
			delete(ss.byToken, token)
			n++
		}
	}
	return n
}

// SessionCookieName is the name of the login cookie.
const SessionCookieName = "hackathon_session"

// Auth extracts the session from the cookie into the request context.
// It does not block anonymous requests; RequireRole does that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole blocks requests whose session lacks one of roles.
// Anonymous requests get 401, wrong roles 403. Admins pass every check.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles)+1)
	for _, r := range roles {
		allowed[r] = true
	}
	allowed[domainAccount.RoleAdmin] = true
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
				deny(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !allowed[session.Role] {
				slog.Warn("auth_denied", "path", r.URL.Path, "account_id", session.AccountID, "role", session.Role, "required", roles)
				deny(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
