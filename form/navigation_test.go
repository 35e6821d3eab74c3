package form

import (
	"testing"
	"time"
)

func TestNextRejectedOnIncompleteStep(t *testing.T) {
	complete := false
	n := NewNavigator(3, false, func(int) bool { return complete })

	if n.Next() {
		t.Fatal("moved past an incomplete step")
	}
	if n.Current() != 0 {
		t.Fatalf("Current() = %d, want 0", n.Current())
	}

	complete = true
	if !n.Next() {
		t.Fatal("refused to leave a complete step")
	}
	if n.Current() != 1 || n.Direction() != Forward {
		t.Errorf("at %d going %s, want 1 forward", n.Current(), n.Direction())
	}
}

func TestSkippingAllowed(t *testing.T) {
	n := NewNavigator(3, true, func(int) bool { return false })

	if !n.GoTo(2) {
		t.Fatal("skip refused while skipping is allowed")
	}
	if !n.CanSubmit() {
		t.Error("CanSubmit() = false on the last step")
	}
}

func TestBackwardNeverGated(t *testing.T) {
	n := NewNavigator(3, true, func(int) bool { return false })
	n.GoTo(2)
	n.allowSkip = false

	if !n.Prev() {
		t.Fatal("going back refused")
	}
	if n.Direction() != Backward {
		t.Errorf("Direction() = %s, want backward", n.Direction())
	}
	if !n.GoTo(0) {
		t.Error("jumping back refused")
	}
}

func TestNavigationBounds(t *testing.T) {
	n := NewNavigator(2, true, func(int) bool { return true })

	if n.Prev() {
		t.Error("Prev() moved before the first step")
	}
	if n.GoTo(0) {
		t.Error("GoTo(current) reported a move")
	}
	if n.GoTo(-1) || n.GoTo(2) {
		t.Error("GoTo() accepted an out of range step")
	}

	n.Next()
	if n.Next() {
		t.Error("Next() moved past the last step")
	}
	if !n.CanSubmit() {
		t.Error("CanSubmit() = false on the last step")
	}
}

func TestTransitionBlocksNavigation(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	n := NewNavigator(3, true, func(int) bool { return true },
		WithTransition(300*time.Millisecond), WithClock(clock))

	if n.State() != Idle {
		t.Fatalf("State() = %s, want idle", n.State())
	}
	if !n.Next() {
		t.Fatal("Next() refused")
	}
	if n.State() != Animating {
		t.Fatalf("State() = %s, want animating", n.State())
	}
	if n.Next() {
		t.Fatal("Next() accepted during a transition")
	}

	now = now.Add(300 * time.Millisecond)
	if n.State() != Idle {
		t.Fatalf("State() = %s after the transition, want idle", n.State())
	}
	if !n.Next() {
		t.Error("Next() refused after the transition")
	}
	if n.Current() != 2 {
		t.Errorf("Current() = %d, want 2", n.Current())
	}
}
