// Package config loads process settings from the environment and the event
// definition from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Env holds process settings read from HACKATHON_* variables.
type Env struct {
	Addr          string
	DBPath        string
	Env           string
	EventFile     string
	StaticDir     string
	CSRFKey       string
	ResendKey     string
	ResendFrom    string
	ReplyTo       string
	AdminEmail    string
	AdminPassword string
	AllowOrigins  string
	OutboxEvery   int // seconds between outbox sweeps
}

// LoadEnv reads dotenv files into the process environment, then builds Env.
// Missing files are skipped; variables already set are never overwritten.
// POST: every field has a value, falling back to development defaults
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	e := Env{
		Addr:          envOrDefault("HACKATHON_ADDR", ":8080"),
		DBPath:        envOrDefault("HACKATHON_DB", "hackathon.db"),
		Env:           envOrDefault("HACKATHON_ENV", EnvDevelopment),
		EventFile:     envOrDefault("HACKATHON_EVENT_FILE", "event.yaml"),
		StaticDir:     envOrDefault("HACKATHON_STATIC_DIR", "static"),
		CSRFKey:       os.Getenv("HACKATHON_CSRF_KEY"),
		ResendKey:     os.Getenv("HACKATHON_RESEND_KEY"),
		ResendFrom:    envOrDefault("HACKATHON_RESEND_FROM", "Hackathon <noreply@hackathon.local>"),
		ReplyTo:       os.Getenv("HACKATHON_REPLY_TO"),
		AdminEmail:    envOrDefault("HACKATHON_ADMIN_EMAIL", "admin@hackathon.local"),
		AdminPassword: os.Getenv("HACKATHON_ADMIN_PASSWORD"),
		AllowOrigins:  os.Getenv("HACKATHON_ALLOW_ORIGINS"),
		OutboxEvery:   60,
	}
	if v := os.Getenv("HACKATHON_OUTBOX_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Env{}, fmt.Errorf("HACKATHON_OUTBOX_SECONDS must be a positive integer, got %q", v)
		}
		e.OutboxEvery = n
	}
	if e.IsProduction() && len(e.CSRFKey) < 32 {
		return Env{}, errors.New("HACKATHON_CSRF_KEY must be at least 32 bytes in production")
	}
	return e, nil
}

// IsProduction reports whether HACKATHON_ENV is production.
func (e Env) IsProduction() bool {
	return e.Env == EnvProduction
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
