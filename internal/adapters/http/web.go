// Package web serves the hackathon site's JSON API, the static landing page
// and the Prometheus endpoint.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hackathon/internal/adapters/email"
	"hackathon/internal/adapters/http/middleware"
	"hackathon/internal/adapters/metrics"
	accountStore "hackathon/internal/adapters/storage/account"
	judgingStore "hackathon/internal/adapters/storage/judging"
	leaderboardStore "hackathon/internal/adapters/storage/leaderboard"
	outboxStore "hackathon/internal/adapters/storage/outbox"
	registrationStore "hackathon/internal/adapters/storage/registration"
	submissionStore "hackathon/internal/adapters/storage/submission"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/config"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	RegistrationStore registrationStore.Store
	DraftStore        registrationStore.DraftStore
	SubmissionStore   submissionStore.Store
	ScoreStore        judgingStore.Store
	LeaderboardStore  leaderboardStore.Store
	OutboxStore       outboxStore.Store
}

// Services holds everything else the handlers call.
type Services struct {
	Event     config.Event
	Env       config.Env
	Moderator *orchestrators.Moderator
	Outbox    *orchestrators.OutboxProcessor
	Sender    email.Sender
	Metrics   *metrics.Metrics
	Clock     func() time.Time // nil means time.Now
}

// BoardMaxAge is how stale a moderation board may be before a list
// request reloads it.
const BoardMaxAge = 15 * time.Second

// loadCSRFKey reads the CSRF secret from HACKATHON_CSRF_KEY.
// A 64-character hex value is decoded; anything else of at least 32 bytes is
// used as-is. In development a random key is generated per start.
func loadCSRFKey(env config.Env) ([]byte, error) {
	if env.CSRFKey != "" {
		if key, err := hex.DecodeString(env.CSRFKey); err == nil && len(key) == 32 {
			return key, nil
		}
		if len(env.CSRFKey) < 32 {
			return nil, errors.New("HACKATHON_CSRF_KEY must be at least 32 bytes")
		}
		return []byte(env.CSRFKey[:32]), nil
	}
	if env.IsProduction() {
		return nil, errors.New("HACKATHON_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_generated", "detail", "using a random CSRF key; set HACKATHON_CSRF_KEY to keep form tokens valid across restarts")
	return key, nil
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global services (set by NewMux)
var services Services

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// timeNow returns the services clock.
func timeNow() time.Time {
	if services.Clock != nil {
		return services.Clock()
	}
	return time.Now()
}

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; svc.Moderator and svc.Outbox are built on them
func NewMux(staticDir string, s *Stores, svc Services) (http.Handler, error) {
	stores = s
	services = svc
	sessions = middleware.NewSessionStore()
	if svc.Clock != nil {
		sessions.WithClock(svc.Clock)
	}
	middleware.SecureCookies = svc.Env.IsProduction()

	csrfKey, err := loadCSRFKey(svc.Env)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	var observer middleware.RequestObserver
	if svc.Metrics != nil {
		observer = svc.Metrics
	}

	// Outermost last: Timing -> CORS -> Recover -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, svc.Env.IsProduction(), trustedOrigins(svc.Env)),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Recover,
		middleware.PublicCORS(splitList(svc.Env.AllowOrigins), "/api/phase", "/api/event", "/api/leaderboard"),
		middleware.Timing(observer),
	), nil
}

func trustedOrigins(env config.Env) []string {
	origins := []string{"localhost" + env.Addr, "127.0.0.1" + env.Addr}
	for _, o := range splitList(env.AllowOrigins) {
		origins = append(origins, strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://"))
	}
	return origins
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// handle registers h under pattern and labels its metrics with pattern.
func handle(mux *http.ServeMux, pattern string, h http.HandlerFunc, guards ...func(http.Handler) http.Handler) {
	var inner http.Handler = h
	for _, g := range guards {
		inner = g(inner)
	}
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.SetRoute(r.Context(), pattern)
		inner.ServeHTTP(w, r)
	}))
}

func registerRoutes(mux *http.ServeMux) {
	judge := middleware.RequireRole("judge")
	admin := middleware.RequireRole()

	// Public
	handle(mux, "GET /api/event", handleEvent)
	handle(mux, "GET /api/phase", handlePhase)
	handle(mux, "GET /api/leaderboard", handleLeaderboard)
	handle(mux, "POST /api/register/draft", handleStartDraft)
	handle(mux, "GET /api/register/draft/{id}", handleGetDraft)
	handle(mux, "PATCH /api/register/draft/{id}", handleUpdateDraft)
	handle(mux, "POST /api/register/draft/{id}/submit", handleSubmitDraft)
	handle(mux, "POST /api/registrations", handleSubmitRegistration)
	handle(mux, "POST /api/ideas", handleSubmitIdea)

	// Sessions
	handle(mux, "GET /api/login", handleLoginForm)
	handle(mux, "POST /api/login", handleLogin)
	handle(mux, "POST /api/logout", handleLogout)
	handle(mux, "GET /api/me", handleMe)
	handle(mux, "POST /api/me/password", handleChangePassword, judge)

	// Judging
	handle(mux, "GET /api/judging/submissions", handleJudgingSubmissions, judge)
	handle(mux, "POST /api/judging/scores", handleSubmitScore, judge)
	handle(mux, "GET /api/judging/scores/mine", handleMyScores, judge)
	handle(mux, "GET /api/judging/summary", handleJudgingSummary, judge)

	// Moderation
	handle(mux, "GET /api/admin/registrations", handleListRegistrations, admin)
	handle(mux, "GET /api/admin/registrations/{id}", handleGetRegistration, admin)
	handle(mux, "POST /api/admin/registrations/{id}/{action}", handleModerateRegistration, admin)
	handle(mux, "DELETE /api/admin/registrations/{id}", handleDeleteRegistration, admin)
	handle(mux, "GET /api/admin/submissions", handleListSubmissions, admin)
	handle(mux, "GET /api/admin/submissions/{id}", handleGetSubmission, admin)
	handle(mux, "DELETE /api/admin/submissions/{id}", handleDeleteSubmission, admin)
	handle(mux, "GET /api/admin/scores", handleListScores, admin)
	handle(mux, "DELETE /api/admin/scores/{id}", handleDeleteScore, admin)
	handle(mux, "GET /api/admin/leaderboard", handleListLeaderboard, admin)
	handle(mux, "POST /api/admin/leaderboard", handleSaveLeaderboardEntry, admin)
	handle(mux, "PUT /api/admin/leaderboard/{id}", handleSaveLeaderboardEntry, admin)
	handle(mux, "DELETE /api/admin/leaderboard/{id}", handleDeleteLeaderboardEntry, admin)
	handle(mux, "POST /api/admin/refresh", handleRefreshBoards, admin)
	handle(mux, "GET /api/admin/export/{board}", handleExport, admin)
	handle(mux, "POST /api/admin/broadcast", handleBroadcast, admin)
	handle(mux, "GET /api/admin/outbox", handleListOutbox, admin)
	handle(mux, "POST /api/admin/outbox/{id}/{action}", handleOutboxAction, admin)
	handle(mux, "GET /api/admin/accounts", handleListAccounts, admin)
	handle(mux, "POST /api/admin/accounts", handleCreateAccount, admin)

	if services.Metrics != nil {
		handle(mux, "GET /metrics", services.Metrics.Handler().ServeHTTP)
	}
}
