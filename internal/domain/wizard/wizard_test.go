package wizard_test

import (
	"errors"
	"testing"

	"hackathon/internal/domain/wizard"
)

var (
	head   = []wizard.Panel{{Name: "team", Title: "Team"}, {Name: "leader", Title: "Leader"}}
	member = wizard.Panel{Name: "member", Title: "Member"}
	tail   = []wizard.Panel{{Name: "problem", Title: "Problem"}, {Name: "review", Title: "Review"}}
)

func newWizard(t *testing.T) *wizard.Wizard {
	t.Helper()
	w, err := wizard.New(head, member, tail, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func pass(wizard.Step) error { return nil }

// TestAdvance_BlockedByValidation verifies a failing step never advances.
func TestAdvance_BlockedByValidation(t *testing.T) {
	w := newWizard(t)
	errMissing := errors.New("team name is required")

	_, err := w.Advance(func(s wizard.Step) error {
		if s.Name == "team" {
			return errMissing
		}
		return nil
	})
	if !errors.Is(err, errMissing) {
		t.Fatalf("Advance error = %v, want %v", err, errMissing)
	}
	if w.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", w.Cursor())
	}
	if w.Error() != errMissing.Error() {
		t.Errorf("Error() = %q, want %q", w.Error(), errMissing.Error())
	}

	if _, _, err := w.Advance(pass); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if w.Cursor() != 1 || w.Error() != "" {
		t.Errorf("after pass: cursor=%d err=%q", w.Cursor(), w.Error())
	}
}

// TestRetreat_AlwaysAllowed verifies retreat ignores validation and clears errors.
func TestRetreat_AlwaysAllowed(t *testing.T) {
	w := newWizard(t)
	w.Retreat()
	if w.Cursor() != 0 {
		t.Errorf("retreat at 0 moved cursor to %d", w.Cursor())
	}

	_, _ = w.Advance(pass)
	_, _ = w.Advance(func(wizard.Step) error { return errors.New("bad") })
	if w.Error() == "" {
		t.Fatal("expected an error message")
	}
	w.Retreat()
	if w.Cursor() != 0 || w.Error() != "" {
		t.Errorf("after retreat: cursor=%d err=%q", w.Cursor(), w.Error())
	}
}

// TestAdvance_StopsAtLast verifies the cursor does not run off the end.
func TestAdvance_StopsAtLast(t *testing.T) {
	w := newWizard(t)
	for i := 0; i < 10; i++ {
		_, _ = w.Advance(pass)
	}
	if !w.IsLast() || w.Current().Name != "review" {
		t.Errorf("cursor = %d (%s), want last step", w.Cursor(), w.Current().Name)
	}
}

// TestAdvance_ReportsMovement separates a step forward from a pass on the last step.
func TestAdvance_ReportsMovement(t *testing.T) {
	w := newWizard(t)
	moved, err := w.Advance(pass)
	if err != nil || !moved {
		t.Fatalf("first Advance = %v, %v, want moved", moved, err)
	}
	if moved, _ := w.Advance(func(wizard.Step) error { return errors.New("bad") }); moved {
		t.Error("a failed Advance must not report movement")
	}
	for !w.IsLast() {
		if _, err := w.Advance(pass); err != nil {
			t.Fatal(err)
		}
	}
	moved, err = w.Advance(pass)
	if err != nil || moved {
		t.Errorf("Advance on the last step = %v, %v, want validated without moving", moved, err)
	}
	if w.Error() != "" {
		t.Errorf("Error() = %q after a passing Advance", w.Error())
	}
}

// TestAddMember_InsertsBeforeTail verifies member steps sit between head and tail.
func TestAddMember_InsertsBeforeTail(t *testing.T) {
	w := newWizard(t)
	for i := 0; i < 3; i++ {
		if _, err := w.AddMember(); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}
	want := []string{"team", "leader", "member", "member", "member", "problem", "review"}
	steps := w.Steps()
	if len(steps) != len(want) {
		t.Fatalf("len = %d, want %d", len(steps), len(want))
	}
	for i, s := range steps {
		if s.Name != want[i] {
			t.Errorf("step %d = %q, want %q", i, s.Name, want[i])
		}
		if s.Position != i {
			t.Errorf("step %d position = %d", i, s.Position)
		}
	}
	if got := w.LabelAt(3); got != "Member 2 of 3" {
		t.Errorf("LabelAt(3) = %q, want %q", got, "Member 2 of 3")
	}
	if got := w.LabelAt(0); got != "Team" {
		t.Errorf("LabelAt(0) = %q", got)
	}
}

// TestAddMember_Limit verifies the member ceiling.
func TestAddMember_Limit(t *testing.T) {
	w := newWizard(t)
	for i := 0; i < 4; i++ {
		if _, err := w.AddMember(); err != nil {
			t.Fatalf("AddMember %d: %v", i, err)
		}
	}
	if _, err := w.AddMember(); !errors.Is(err, wizard.ErrTooManyMembers) {
		t.Errorf("fifth AddMember error = %v, want ErrTooManyMembers", err)
	}
	if w.Len() != 8 {
		t.Errorf("Len = %d, want 8", w.Len())
	}
}

// TestResize_KeepsCursorOnLogicalStep verifies cursor renumbering on add and remove.
func TestResize_KeepsCursorOnLogicalStep(t *testing.T) {
	w := newWizard(t)
	_, _ = w.AddMember()
	_, _ = w.AddMember()
	for !w.IsLast() {
		_, _ = w.Advance(pass)
	}
	if w.Current().Name != "review" {
		t.Fatalf("expected review, got %s", w.Current().Name)
	}

	_, _ = w.AddMember()
	if w.Current().Name != "review" {
		t.Errorf("after add: on %q, want review", w.Current().Name)
	}

	if err := w.RemoveMember(0); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if w.Current().Name != "review" || w.Cursor() != w.Len()-1 {
		t.Errorf("after remove: cursor=%d on %q", w.Cursor(), w.Current().Name)
	}
}

// TestRemoveMember_OnRemovedStep verifies the cursor lands on the step that
// took the removed step's place.
func TestRemoveMember_OnRemovedStep(t *testing.T) {
	w := newWizard(t)
	_, _ = w.AddMember()
	_, _ = w.AddMember()
	w.SetCursor(3) // second member
	if err := w.RemoveMember(1); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if w.Cursor() != 3 || w.Current().Name != "problem" {
		t.Errorf("cursor=%d on %q, want 3 on problem", w.Cursor(), w.Current().Name)
	}

	if err := w.RemoveMember(5); !errors.Is(err, wizard.ErrNoSuchMember) {
		t.Errorf("RemoveMember(5) = %v, want ErrNoSuchMember", err)
	}
}

// TestSetCursor_Clamped verifies restored cursors stay in range.
func TestSetCursor_Clamped(t *testing.T) {
	w := newWizard(t)
	w.SetCursor(99)
	if w.Cursor() != w.Len()-1 {
		t.Errorf("cursor = %d, want %d", w.Cursor(), w.Len()-1)
	}
	w.SetCursor(-3)
	if w.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", w.Cursor())
	}
}

// TestJumpBack verifies only backward jumps are allowed.
func TestJumpBack(t *testing.T) {
	w := newWizard(t)
	_, _ = w.Advance(pass)
	_, _ = w.Advance(pass)
	if w.JumpBack(3) {
		t.Error("forward jump should be refused")
	}
	if !w.JumpBack(0) || w.Cursor() != 0 {
		t.Errorf("JumpBack(0) failed, cursor = %d", w.Cursor())
	}
}

// TestNew_RequiresSteps verifies an empty wizard is rejected.
func TestNew_RequiresSteps(t *testing.T) {
	if _, err := wizard.New(nil, member, nil, 4); !errors.Is(err, wizard.ErrNoSteps) {
		t.Errorf("New error = %v, want ErrNoSteps", err)
	}
}

// TestProgress verifies the textual progress indicator.
func TestProgress(t *testing.T) {
	w := newWizard(t)
	if got := w.Progress(); got != "Step 1 of 4" {
		t.Errorf("Progress() = %q", got)
	}
}
