package orchestrators

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/registration"
)

// ErrWindowClosed is returned when a write arrives outside its open phase.
var ErrWindowClosed = errors.New("submissions are not open")

// ValidationError wraps a domain rule failure. It never reaches storage.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// WriteError wraps a storage failure during a submission write. Its message
// keeps the store's error text so callers can show it as-is.
type WriteError struct {
	Entity string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("could not save %s: %v", e.Entity, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WindowError reports which window refused a write and its current phase.
type WindowError struct {
	Window string
	Phase  string
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s is %s", e.Window, e.Phase)
}

func (e *WindowError) Unwrap() error { return ErrWindowClosed }

// WriteCounter is the slice of the metrics adapter submission writers use.
type WriteCounter interface {
	CountWrite(entity, result string)
}

// Result labels for WriteCounter.
const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultClosed  = "closed"
	resultError   = "error"
)

func countWrite(c WriteCounter, entity, result string) {
	if c != nil {
		c.CountWrite(entity, result)
	}
}

// requireOpen gates a write on schedule s.
func requireOpen(s clockgate.Schedule, window string, now time.Time) error {
	if phase := s.Resolve(now); phase != clockgate.PhaseOpen {
		return &WindowError{Window: window, Phase: phase}
	}
	return nil
}

func nowOr(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now()
	}
	return clock()
}

func newID(gen func() string) string {
	if gen == nil {
		return uuid.New().String()
	}
	return gen()
}

// NewTeamCode returns a short reference code without look-alike characters.
func NewTeamCode() (string, error) {
	return gonanoid.Generate(registration.CodeAlphabet, registration.CodeLength)
}
