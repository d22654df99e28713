// Package wizard models a multi-step form as an ordered list of fixed head
// panels, a resizable run of member panels, and fixed tail panels.
package wizard

import (
	"errors"
	"fmt"
)

// Kind tags a step as fixed or member.
type Kind int

const (
	KindFixed Kind = iota
	KindMember
)

// Domain errors
var (
	ErrTooManyMembers = errors.New("member limit reached")
	ErrNoSuchMember   = errors.New("member index out of range")
	ErrNoSteps        = errors.New("wizard must have at least one step")
)

// Panel names a fixed step.
type Panel struct {
	Name  string
	Title string
}

// Step is one resolved position in the wizard.
type Step struct {
	Kind     Kind
	Name     string
	Title    string
	Member   int // 0-based member index, only meaningful for KindMember
	Position int // 0-based position in the full step list
}

// Validator checks the data collected for a single step.
type Validator func(Step) error

// Wizard tracks the cursor over head, member and tail steps.
// INVARIANT: 0 <= cursor < Len()
// INVARIANT: 0 <= members <= maxMembers
type Wizard struct {
	head       []Panel
	member     Panel
	tail       []Panel
	members    int
	maxMembers int
	cursor     int
	errMsg     string
}

// New builds a wizard with no member steps.
// PRE: len(head)+len(tail) > 0; maxMembers >= 0
// POST: cursor is at step 0
func New(head []Panel, member Panel, tail []Panel, maxMembers int) (*Wizard, error) {
	if len(head)+len(tail) == 0 {
		return nil, ErrNoSteps
	}
	if maxMembers < 0 {
		maxMembers = 0
	}
	return &Wizard{
		head:       append([]Panel(nil), head...),
		member:     member,
		tail:       append([]Panel(nil), tail...),
		maxMembers: maxMembers,
	}, nil
}

// Len returns the total number of steps.
func (w *Wizard) Len() int {
	return len(w.head) + w.members + len(w.tail)
}

// Members returns the current number of member steps.
func (w *Wizard) Members() int {
	return w.members
}

// MaxMembers returns the member ceiling.
func (w *Wizard) MaxMembers() int {
	return w.maxMembers
}

// Cursor returns the 0-based index of the current step.
func (w *Wizard) Cursor() int {
	return w.cursor
}

// At resolves the step at position i.
// PRE: 0 <= i < Len()
func (w *Wizard) At(i int) Step {
	switch {
	case i < len(w.head):
		p := w.head[i]
		return Step{Kind: KindFixed, Name: p.Name, Title: p.Title, Position: i}
	case i < len(w.head)+w.members:
		m := i - len(w.head)
		return Step{Kind: KindMember, Name: w.member.Name, Title: w.member.Title, Member: m, Position: i}
	default:
		p := w.tail[i-len(w.head)-w.members]
		return Step{Kind: KindFixed, Name: p.Name, Title: p.Title, Position: i}
	}
}

// Current returns the step under the cursor.
func (w *Wizard) Current() Step {
	return w.At(w.cursor)
}

// Steps lists every step in order.
func (w *Wizard) Steps() []Step {
	out := make([]Step, w.Len())
	for i := range out {
		out[i] = w.At(i)
	}
	return out
}

// IsFirst reports whether the cursor is on the first step.
func (w *Wizard) IsFirst() bool {
	return w.cursor == 0
}

// IsLast reports whether the cursor is on the final step.
func (w *Wizard) IsLast() bool {
	return w.cursor == w.Len()-1
}

// Error returns the message recorded by the last failed Advance.
func (w *Wizard) Error() string {
	return w.errMsg
}

// Advance moves forward one step if the current step validates and reports
// whether the cursor moved.
// PRE: validate is non-nil
// POST: On failure the cursor is unchanged and Error() holds the message
// POST: On the last step a passing validation returns false with a nil error
func (w *Wizard) Advance(validate Validator) (moved bool, err error) {
	if err := validate(w.Current()); err != nil {
		w.errMsg = err.Error()
		return false, err
	}
	w.errMsg = ""
	if w.IsLast() {
		return false, nil
	}
	w.cursor++
	return true, nil
}

// Retreat moves back one step without validating.
// POST: Error() is cleared; a no-op on step 0
func (w *Wizard) Retreat() {
	w.errMsg = ""
	if w.cursor > 0 {
		w.cursor--
	}
}

// JumpBack moves the cursor to an earlier step without validating.
// Forward jumps are refused so every step before the cursor has passed
// validation at least once.
func (w *Wizard) JumpBack(i int) bool {
	if i < 0 || i > w.cursor {
		return false
	}
	w.errMsg = ""
	w.cursor = i
	return true
}

// AddMember appends a member step and returns its member index.
// POST: The cursor stays on the same logical step
func (w *Wizard) AddMember() (int, error) {
	if w.members >= w.maxMembers {
		return 0, ErrTooManyMembers
	}
	pos := len(w.head) + w.members
	w.members++
	if w.cursor >= pos {
		w.cursor++
	}
	w.clamp()
	return w.members - 1, nil
}

// RemoveMember drops member step i; later members shift down by one.
// POST: The cursor stays on the same logical step, or on the step that
// took the removed step's place
func (w *Wizard) RemoveMember(i int) error {
	if i < 0 || i >= w.members {
		return ErrNoSuchMember
	}
	pos := len(w.head) + i
	w.members--
	if w.cursor > pos {
		w.cursor--
	}
	w.clamp()
	return nil
}

// SetMembers resizes the member run to n, used when restoring a draft.
func (w *Wizard) SetMembers(n int) error {
	if n < 0 || n > w.maxMembers {
		return ErrTooManyMembers
	}
	w.members = n
	w.clamp()
	return nil
}

// SetCursor restores a saved cursor, clamped into range.
func (w *Wizard) SetCursor(i int) {
	w.cursor = i
	w.clamp()
}

// Label describes the current step for display, e.g. "Member 2 of 3".
func (w *Wizard) Label() string {
	return w.LabelAt(w.cursor)
}

// LabelAt describes the step at position i.
func (w *Wizard) LabelAt(i int) string {
	s := w.At(i)
	if s.Kind == KindMember {
		return fmt.Sprintf("%s %d of %d", s.Title, s.Member+1, w.members)
	}
	return s.Title
}

// Progress returns "Step n of m" for the current position.
func (w *Wizard) Progress() string {
	return fmt.Sprintf("Step %d of %d", w.cursor+1, w.Len())
}

func (w *Wizard) clamp() {
	if w.cursor >= w.Len() {
		w.cursor = w.Len() - 1
	}
	if w.cursor < 0 {
		w.cursor = 0
	}
}
