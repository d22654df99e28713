package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hackathon/internal/adapters/email"
	"hackathon/internal/config"
)

const event = `name: App Hack
registration: {opens: 2026-03-01T00:00:00Z, closes: 2026-03-10T00:00:00Z}
ideation: {opens: 2026-03-05T00:00:00Z, closes: 2026-03-15T00:00:00Z}
judging: {opens: 2026-03-16T00:00:00Z, closes: 2026-03-20T00:00:00Z}
results_at: 2026-03-21T12:00:00Z
domains: [health]
slots: [morning]
`

func testEnv(t *testing.T) config.Env {
	t.Helper()
	dir := t.TempDir()
	eventFile := filepath.Join(dir, "event.yaml")
	if err := os.WriteFile(eventFile, []byte(event), 0o644); err != nil {
		t.Fatal(err)
	}
	return config.Env{
		Env:           config.EnvDevelopment,
		DBPath:        filepath.Join(dir, "hackathon.db"),
		EventFile:     eventFile,
		AdminEmail:    "admin@app.test",
		AdminPassword: "a long enough password",
		OutboxEvery:   60,
	}
}

func TestNew_WiresEverything(t *testing.T) {
	a, err := New(testEnv(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Event.Name != "App Hack" {
		t.Errorf("event = %q", a.Event.Name)
	}
	if _, ok := a.Sender.(*email.NoopSender); !ok {
		t.Errorf("sender = %T, want noop without a Resend key", a.Sender)
	}
	svc := a.Services()
	if svc.Moderator == nil || svc.Outbox == nil || svc.Metrics == nil {
		t.Errorf("services incomplete: %+v", svc)
	}
}

func TestNew_MissingEventFile(t *testing.T) {
	env := testEnv(t)
	env.EventFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(env); err == nil {
		t.Fatal("expected error for a missing event file")
	}
}

func TestSeedAdmin_OnlyOnce(t *testing.T) {
	a, err := New(testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	ctx := context.Background()

	for range 2 {
		if err := a.SeedAdmin(ctx); err != nil {
			t.Fatalf("SeedAdmin: %v", err)
		}
	}
	n, err := a.Stores.AccountStore.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("accounts = %d, %v; want 1", n, err)
	}
}

func TestSeedAdmin_SkippedWithoutPassword(t *testing.T) {
	env := testEnv(t)
	env.AdminPassword = ""
	a, err := New(env)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if err := a.SeedAdmin(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n, _ := a.Stores.AccountStore.Count(context.Background()); n != 0 {
		t.Errorf("accounts = %d, want 0", n)
	}
}
