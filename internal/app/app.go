// Package app wires configuration, storage, email and orchestrators into the
// pieces the server and hackctl both run.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"hackathon/internal/adapters/email"
	web "hackathon/internal/adapters/http"
	"hackathon/internal/adapters/metrics"
	"hackathon/internal/adapters/storage"
	accountStore "hackathon/internal/adapters/storage/account"
	judgingStore "hackathon/internal/adapters/storage/judging"
	leaderboardStore "hackathon/internal/adapters/storage/leaderboard"
	outboxStore "hackathon/internal/adapters/storage/outbox"
	registrationStore "hackathon/internal/adapters/storage/registration"
	submissionStore "hackathon/internal/adapters/storage/submission"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/config"
	"hackathon/internal/domain/outbox"
)

// App is a fully wired process.
type App struct {
	Env       config.Env
	Event     config.Event
	DB        *sql.DB
	Metrics   *metrics.Metrics
	Stores    *web.Stores
	Sender    email.Sender
	Moderator *orchestrators.Moderator
	Outbox    *orchestrators.OutboxProcessor
}

// SetupLogging installs the default slog handler: JSON in production, text
// otherwise. HACKATHON_LOG_LEVEL=debug lowers the level.
func SetupLogging(env config.Env) {
	level := slog.LevelInfo
	if os.Getenv("HACKATHON_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if env.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// New loads the event file, opens and migrates the database and builds
// every store and service.
// POST: the caller owns a.DB and closes it via Close
func New(env config.Env) (*App, error) {
	ev, err := config.LoadEvent(env.EventFile)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(env.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateDB(db, env.DBPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	m := metrics.New()
	timed := storage.NewTimedDB(db, m)
	regs := registrationStore.NewSQLiteStore(timed)
	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(timed),
		RegistrationStore: regs,
		DraftStore:        regs,
		SubmissionStore:   submissionStore.NewSQLiteStore(timed),
		ScoreStore:        judgingStore.NewSQLiteStore(timed),
		LeaderboardStore:  leaderboardStore.NewSQLiteStore(timed),
		OutboxStore:       outboxStore.NewSQLiteStore(timed),
	}

	sender := newSender(env)
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeConfirmationEmail: &orchestrators.ConfirmationEmailExecutor{Sender: sender},
		outbox.ActionTypeBroadcastEmail:    &orchestrators.BroadcastEmailExecutor{Sender: sender},
	}).WithMetrics(m)
	moderator := orchestrators.NewModerator(orchestrators.ModerationStores{
		Registrations: stores.RegistrationStore,
		Submissions:   stores.SubmissionStore,
		Scores:        stores.ScoreStore,
		Leaderboard:   stores.LeaderboardStore,
	}, ev.Rules(), m, nil)

	slog.Info("app_ready", "event", ev.Name, "db", env.DBPath, "schema", storage.LatestSchemaVersion(), "env", env.Env)
	return &App{
		Env:       env,
		Event:     ev,
		DB:        db,
		Metrics:   m,
		Stores:    stores,
		Sender:    sender,
		Moderator: moderator,
		Outbox:    processor,
	}, nil
}

func newSender(env config.Env) email.Sender {
	if env.ResendKey != "" {
		slog.Info("email_sender", "provider", "resend", "from", env.ResendFrom)
		return email.NewResendSender(env.ResendKey, env.ResendFrom, env.ReplyTo)
	}
	if env.IsProduction() {
		slog.Warn("email_sender", "provider", "noop", "detail", "HACKATHON_RESEND_KEY is not set; confirmation emails are not delivered")
	} else {
		slog.Info("email_sender", "provider", "noop")
	}
	return email.NewNoopSender()
}

// Services returns what the HTTP layer needs.
func (a *App) Services() web.Services {
	return web.Services{
		Event:     a.Event,
		Env:       a.Env,
		Moderator: a.Moderator,
		Outbox:    a.Outbox,
		Sender:    a.Sender,
		Metrics:   a.Metrics,
	}
}

// SeedAdmin creates the first admin when HACKATHON_ADMIN_PASSWORD is set and
// no account exists yet.
func (a *App) SeedAdmin(ctx context.Context) error {
	if a.Env.AdminPassword == "" {
		return nil
	}
	_, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{AccountStore: a.Stores.AccountStore},
		a.Env.AdminEmail, a.Env.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// StartWorkers runs the outbox sweep and the draft purge until stop is closed.
func (a *App) StartWorkers(stop <-chan struct{}) {
	orchestrators.StartBackgroundWorker(a.Outbox, time.Duration(a.Env.OutboxEvery)*time.Second, stop)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := orchestrators.ExecutePurgeDrafts(context.Background(), a.Stores.DraftStore, time.Now()); err != nil {
					slog.Error("draft_purge_failed", "error", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
