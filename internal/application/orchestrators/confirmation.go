package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hackathon/internal/adapters/email"
	"hackathon/internal/adapters/markdown"
	"hackathon/internal/domain/outbox"
)

// Confirmation kinds.
const (
	ConfirmRegistration = "registration"
	ConfirmIdea         = "idea"
)

// OutboxWriter is the slice of the outbox store writers need.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ConfirmationPayload is the outbox payload of a confirmation email.
type ConfirmationPayload struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Event    string `json:"event"`
	TeamName string `json:"team_name"`
	Leader   string `json:"leader"`
	Code     string `json:"code"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body"` // markdown
}

// enqueueConfirmation records a confirmation email for later delivery.
// Failures are logged and swallowed: the primary write already succeeded.
func enqueueConfirmation(ctx context.Context, w OutboxWriter, subject string, p ConfirmationPayload, now time.Time, id string) {
	if w == nil || p.To == "" {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "subject", subject, "kind", p.Kind, "error", err)
		return
	}
	entry := outbox.NewEntry(id, outbox.ActionTypeConfirmationEmail, subject, string(data), now)
	if err := w.Save(ctx, entry); err != nil {
		slog.Error("outbox_enqueue_failed", "subject", subject, "kind", p.Kind, "error", err)
		return
	}
	slog.Info("outbox_enqueued", "entry_id", entry.ID, "subject", subject, "kind", p.Kind)
}

// ConfirmationEmailExecutor delivers confirmation_email outbox entries.
type ConfirmationEmailExecutor struct {
	Sender email.Sender
}

// Execute renders the payload and sends it.
// PRE: payload is valid JSON matching ConfirmationPayload
// POST: email sent via Sender, returns its message ID
// INVARIANT: outbox entry status managed by caller
func (e *ConfirmationEmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p ConfirmationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	req := RenderConfirmation(p)
	res, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// RenderConfirmation builds the email for p.
func RenderConfirmation(p ConfirmationPayload) email.SendRequest {
	var subject string
	var md strings.Builder
	fmt.Fprintf(&md, "Hi %s,\n\n", p.Leader)
	switch p.Kind {
	case ConfirmIdea:
		subject = fmt.Sprintf("%s: idea received from %s", p.Event, p.TeamName)
		fmt.Fprintf(&md, "We have received **%s** from team **%s**.\n\n", p.Title, p.TeamName)
	default:
		subject = fmt.Sprintf("%s: %s is registered", p.Event, p.TeamName)
		fmt.Fprintf(&md, "Team **%s** is registered. Your reference code is **%s**; "+
			"you will need it together with this email address to submit your idea.\n\n", p.TeamName, p.Code)
	}
	if p.Body != "" {
		md.WriteString("> ")
		md.WriteString(strings.ReplaceAll(strings.TrimSpace(p.Body), "\n", "\n> "))
		md.WriteString("\n\n")
	}
	md.WriteString("See you there.\n")

	return email.SendRequest{
		To:      []string{p.To},
		Subject: subject,
		HTML:    markdown.ToHTML(md.String()),
	}
}
