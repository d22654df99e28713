package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"hackathon/internal/adapters/email"
	"hackathon/internal/domain/outbox"
)

type scriptedExecutor struct {
	errs  []error
	calls int
}

func (e *scriptedExecutor) Execute(context.Context, string) (string, error) {
	e.calls++
	if len(e.errs) > 0 {
		err := e.errs[0]
		e.errs = e.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "msg-1", nil
}

func pendingEntry(id string) outbox.Entry {
	return outbox.NewEntry(id, outbox.ActionTypeConfirmationEmail, "reg-1", `{"kind":"registration"}`, testNow)
}

func TestOutboxProcessor_DeliversPending(t *testing.T) {
	store := newMemOutbox()
	_ = store.Save(context.Background(), pendingEntry("e1"))
	exec := &scriptedExecutor{}
	metrics := newRecordingCounter()
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeConfirmationEmail: exec}).
		WithClock(testClock).WithMetrics(metrics)

	n, err := p.ProcessPending(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("ProcessPending = %d, %v", n, err)
	}
	got, _ := store.GetByID(context.Background(), "e1")
	if got.Status != outbox.StatusDone || got.ExternalID != "msg-1" || got.Attempts != 1 {
		t.Errorf("unexpected entry %+v", got)
	}
	if metrics.get("confirmation_email/ok") != 1 {
		t.Errorf("expected ok delivery counted, got %v", metrics.counts)
	}
}

func TestOutboxProcessor_BackoffThenGiveUp(t *testing.T) {
	store := newMemOutbox()
	_ = store.Save(context.Background(), pendingEntry("e1"))
	fail := errors.New("provider down")
	exec := &scriptedExecutor{errs: []error{fail, fail, fail, fail, fail}}
	now := testNow
	p := NewOutboxProcessor(store, map[string]ActionExecutor{outbox.ActionTypeConfirmationEmail: exec}).
		WithClock(func() time.Time { return now })
	ctx := context.Background()

	if n, _ := p.ProcessPending(ctx); n != 1 {
		t.Fatalf("first pass attempted %d", n)
	}
	if n, _ := p.ProcessPending(ctx); n != 0 {
		t.Fatalf("entry retried before its backoff elapsed")
	}
	e, _ := store.GetByID(ctx, "e1")
	if e.Status != outbox.StatusRetrying || e.ErrorMessage != "provider down" {
		t.Fatalf("unexpected entry after one failure %+v", e)
	}

	for i := 0; i < 10 && exec.calls < outbox.DefaultMaxAttempts; i++ {
		now = now.Add(time.Hour)
		if _, err := p.ProcessPending(ctx); err != nil {
			t.Fatal(err)
		}
	}
	e, _ = store.GetByID(ctx, "e1")
	if e.Status != outbox.StatusFailed || e.Attempts != outbox.DefaultMaxAttempts {
		t.Fatalf("expected failed after %d attempts, got %+v", outbox.DefaultMaxAttempts, e)
	}
	if !e.Finished() {
		t.Error("failed entry should be finished")
	}
	if err := p.ProcessSingle(ctx, "e1"); !errors.Is(err, ErrTerminalEntry) {
		t.Errorf("expected ErrTerminalEntry, got %v", err)
	}
}

func TestOutboxProcessor_UnknownActionFailsImmediately(t *testing.T) {
	store := newMemOutbox()
	e := outbox.NewEntry("e1", "fax", "reg-1", "{}", testNow)
	_ = store.Save(context.Background(), e)
	p := NewOutboxProcessor(store, nil).WithClock(testClock)

	if _, err := p.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(context.Background(), "e1")
	if got.Status != outbox.StatusFailed || !strings.Contains(got.ErrorMessage, "fax") {
		t.Errorf("unexpected entry %+v", got)
	}
}

func TestOutboxProcessor_Abandon(t *testing.T) {
	store := newMemOutbox()
	_ = store.Save(context.Background(), pendingEntry("e1"))
	p := NewOutboxProcessor(store, nil)
	if err := p.AbandonEntry(context.Background(), "e1"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetByID(context.Background(), "e1")
	if got.Status != outbox.StatusAbandoned {
		t.Errorf("Status = %s, want abandoned", got.Status)
	}
}

func TestConfirmationEmailExecutor(t *testing.T) {
	sender := email.NewNoopSender()
	exec := &ConfirmationEmailExecutor{Sender: sender}
	payload, _ := json.Marshal(ConfirmationPayload{
		Kind: ConfirmRegistration, To: "ana@uni.example", Event: "HackWeek",
		TeamName: "Null Pointers", Leader: "Ana", Code: "HX7KD", Body: "Clinics *lose* track",
	})

	id, err := exec.Execute(context.Background(), string(payload))
	if err != nil || id == "" {
		t.Fatalf("Execute = %q, %v", id, err)
	}
	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails", len(sent))
	}
	if sent[0].Subject != "HackWeek: Null Pointers is registered" {
		t.Errorf("Subject = %q", sent[0].Subject)
	}
	for _, want := range []string{"HX7KD", "<em>lose</em>", "<blockquote>"} {
		if !strings.Contains(sent[0].HTML, want) {
			t.Errorf("HTML missing %q:\n%s", want, sent[0].HTML)
		}
	}

	if _, err := exec.Execute(context.Background(), "not json"); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestRenderConfirmation_Idea(t *testing.T) {
	req := RenderConfirmation(ConfirmationPayload{Kind: ConfirmIdea, To: "a@b.c", Event: "HackWeek", TeamName: "T1", Leader: "Ana", Title: "Bot"})
	if req.Subject != "HackWeek: idea received from T1" {
		t.Errorf("Subject = %q", req.Subject)
	}
	if len(req.To) != 1 || req.To[0] != "a@b.c" {
		t.Errorf("To = %v", req.To)
	}
}
