package orchestrators

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hackathon/internal/adapters/storage"
	registrationStore "hackathon/internal/adapters/storage/registration"
	"hackathon/internal/domain/account"
	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/outbox"
	"hackathon/internal/domain/registration"
	"hackathon/internal/domain/submission"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// openWindow is open for an hour either side of testNow.
func openWindow() clockgate.Schedule {
	return clockgate.Window(testNow.Add(-time.Hour), testNow.Add(time.Hour))
}

func openWindowAt(t time.Time) clockgate.Schedule {
	return clockgate.Window(t.Add(-time.Hour), t.Add(time.Hour))
}

func closedWindow() clockgate.Schedule {
	return clockgate.Window(testNow.Add(-2*time.Hour), testNow.Add(-time.Hour))
}

// seqIDs returns a generator yielding prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func testRules() registration.Rules {
	return registration.Rules{
		MaxMembers:      4,
		MaxProblemWords: 50,
		MaxRating:       10,
		Domains:         []string{"health", "fintech"},
		Slots:           []string{"morning", "afternoon"},
	}
}

func validRegistration() registration.Registration {
	return registration.Registration{
		TeamName:        "Null Pointers",
		LeaderName:      "Ana Lima",
		LeaderEmail:     "ana@uni.example",
		LeaderStudentID: "S100",
		Members:         []registration.Member{{Name: "Ben", StudentID: "S101"}},
		Domain:          "health",
		Slot:            "morning",
		Problem:         "Clinics lose track of follow-up appointments.",
	}
}

// --- registrations ---

type memRegistrations struct {
	mu        sync.Mutex
	rows      map[string]registration.Registration
	insertErr error
	updateErr error
	deleteErr error
	listErr   error
	inserts   int
}

func newMemRegistrations(rows ...registration.Registration) *memRegistrations {
	m := &memRegistrations{rows: make(map[string]registration.Registration)}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

func (m *memRegistrations) Insert(_ context.Context, r registration.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserts++
	m.rows[r.ID] = r
	return nil
}

func (m *memRegistrations) Update(_ context.Context, r registration.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.rows[r.ID]; !ok {
		return storage.ErrNotFound
	}
	m.rows[r.ID] = r
	return nil
}

func (m *memRegistrations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, id)
	return nil
}

func (m *memRegistrations) GetByID(_ context.Context, id string) (registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return registration.Registration{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memRegistrations) GetByCode(_ context.Context, code string) (registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if strings.EqualFold(r.Code, strings.TrimSpace(code)) {
			return r, nil
		}
	}
	return registration.Registration{}, storage.ErrNotFound
}

func (m *memRegistrations) List(_ context.Context, f registrationStore.ListFilter) ([]registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []registration.Registration
	for _, r := range m.rows {
		if r.Archived && !f.IncludeArchived {
			continue
		}
		if f.Domain != "" && r.Domain != f.Domain {
			continue
		}
		if f.Slot != "" && r.Slot != f.Slot {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRegistrations) Count(ctx context.Context, f registrationStore.ListFilter) (int, error) {
	rows, err := m.List(ctx, f)
	return len(rows), err
}

// --- submissions ---

type memSubmissions struct {
	rows      map[string]submission.Submission
	insertErr error
}

func newMemSubmissions(rows ...submission.Submission) *memSubmissions {
	m := &memSubmissions{rows: make(map[string]submission.Submission)}
	for _, s := range rows {
		m.rows[s.ID] = s
	}
	return m
}

func (m *memSubmissions) Insert(_ context.Context, s submission.Submission) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows[s.ID] = s
	return nil
}

func (m *memSubmissions) GetByID(_ context.Context, id string) (submission.Submission, error) {
	s, ok := m.rows[id]
	if !ok {
		return submission.Submission{}, storage.ErrNotFound
	}
	return s, nil
}

// --- outbox ---

type memOutbox struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	order   []string
	saveErr error
}

func newMemOutbox() *memOutbox {
	return &memOutbox{entries: make(map[string]outbox.Entry)}
}

func (m *memOutbox) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, storage.ErrNotFound
	}
	return e, nil
}

func (m *memOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memOutbox) all() []outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]outbox.Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}

// --- drafts ---

type storedDraft struct {
	reg       registration.Registration
	cursor    int
	updatedAt time.Time
}

type memDrafts struct {
	drafts map[string]storedDraft
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: make(map[string]storedDraft)}
}

func (m *memDrafts) SaveDraft(_ context.Context, d *registration.Draft) error {
	reg := d.Registration
	reg.Members = append([]registration.Member(nil), d.Registration.Members...)
	m.drafts[d.ID] = storedDraft{reg: reg, cursor: d.Wizard.Cursor(), updatedAt: d.UpdatedAt}
	return nil
}

func (m *memDrafts) GetDraft(_ context.Context, id string, rules registration.Rules) (*registration.Draft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return registration.RestoreDraft(id, d.reg, d.cursor, rules, d.updatedAt)
}

func (m *memDrafts) DeleteDraft(_ context.Context, id string) error {
	delete(m.drafts, id)
	return nil
}

// --- accounts ---

type memAccounts struct {
	byEmail map[string]account.Account
	saves   int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: make(map[string]account.Account)}
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.byEmail[strings.ToLower(a.Email)] = a
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range m.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

func (m *memAccounts) Count(context.Context) (int, error) {
	return len(m.byEmail), nil
}

// --- metrics ---

type recordingCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingCounter() *recordingCounter {
	return &recordingCounter{counts: make(map[string]int)}
}

func (c *recordingCounter) add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
}

func (c *recordingCounter) CountWrite(entity, result string) { c.add(entity + "/" + result) }

func (c *recordingCounter) CountModeration(board, action, result string) {
	c.add(board + "/" + action + "/" + result)
}

func (c *recordingCounter) CountOutbox(action, result string) { c.add(action + "/" + result) }

func (c *recordingCounter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}
