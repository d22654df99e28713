package browser_test

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "hackathon/internal/adapters/http"
	"hackathon/internal/app"
	"hackathon/internal/config"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	App     *app.App
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// eventYAML keeps registration open at now and publishes results at resultsAt.
func eventYAML(now, resultsAt time.Time) string {
	ts := func(t time.Time) string { return t.UTC().Format(time.RFC3339) }
	judgingOpens := now.Add(-30 * time.Minute)
	if early := resultsAt.Add(-2 * time.Hour); early.Before(judgingOpens) {
		judgingOpens = early
	}
	return fmt.Sprintf(`name: Browser Hack
registration: {opens: %s, closes: %s}
ideation: {opens: %s, closes: %s}
judging: {opens: %s, closes: %s}
results_at: %s
domains: [health, fintech]
slots: [morning, afternoon]
limits: {max_members: 2, problem_max_words: 40}
`,
		ts(judgingOpens.Add(-2*time.Hour)), ts(now.Add(48*time.Hour)),
		ts(judgingOpens.Add(-time.Hour)), ts(now.Add(72*time.Hour)),
		ts(judgingOpens), ts(resultsAt.Add(-time.Minute)),
		ts(resultsAt))
}

// newTestApp wires the real app on a temp database and starts an HTTP server.
func newTestApp(t *testing.T, resultsAt time.Time) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	eventFile := filepath.Join(tmpDir, "event.yaml")
	if err := os.WriteFile(eventFile, []byte(eventYAML(time.Now(), resultsAt)), 0o644); err != nil {
		t.Fatalf("write event: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	env := config.Env{
		Addr:        fmt.Sprintf(":%d", port),
		DBPath:      filepath.Join(tmpDir, "test.db"),
		Env:         config.EnvDevelopment,
		EventFile:   eventFile,
		StaticDir:   filepath.Join(findProjectRoot(t), "static"),
		OutboxEvery: 60,
	}
	a, err := app.New(env)
	if err != nil {
		t.Fatalf("app: %v", err)
	}

	handler, err := web.NewMux(env.StaticDir, a.Stores, a.Services())
	if err != nil {
		t.Fatalf("mux: %v", err)
	}
	srv := &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/api/phase")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	ta := &testApp{BaseURL: baseURL, App: a, Server: srv, PW: pw, Browser: browser}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		a.Close()
	})
	return ta
}

// newPage creates a new browser page (tab) and fails the test on any script
// error. Failed requests are expected and left to the test.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	page.On("console", func(msg playwright.ConsoleMessage) {
		if msg.Type() == "error" && !strings.Contains(msg.Text(), "Failed to load resource") {
			t.Errorf("console error: %s", msg.Text())
		}
	})
	t.Cleanup(func() { page.Close() })
	return page
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
