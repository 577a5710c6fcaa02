package action

import (
	"testing"
	"time"
)

func newTestRegistry(capacity int) *Registry {
	return New(capacity, nil)
}

func TestAddReusesNullBeforeCompleted(t *testing.T) {
	r := newTestRegistry(2)

	h1, ok := r.Add(TypeHumidity)
	if !ok {
		t.Fatalf("expected slot available")
	}
	r.Complete(h1)

	h2, ok := r.Add(TypePressure)
	if !ok {
		t.Fatalf("expected second slot available")
	}

	// Both slots are now occupied (one completed, one requested); a
	// third Add must reuse the completed slot rather than fail.
	h3, ok := r.Add(TypeTemperature)
	if !ok {
		t.Fatalf("expected reuse of completed slot")
	}
	if h3 != h1 {
		t.Fatalf("expected reuse of completed slot %d, got %d", h1, h3)
	}

	a, ok := r.Get(h2)
	if !ok || a.Type != TypePressure {
		t.Fatalf("unexpected state for h2: %+v", a)
	}
}

func TestAddFailsWhenFull(t *testing.T) {
	r := newTestRegistry(1)

	if _, ok := r.Add(TypeHumidity); !ok {
		t.Fatalf("expected first add to succeed")
	}
	if _, ok := r.Add(TypePressure); ok {
		t.Fatalf("expected second add to fail with no free slots")
	}
}

func TestCompleteSetsTimestamp(t *testing.T) {
	r := newTestRegistry(1)
	fixed := int64(1700000000)
	r.now = func() time.Time { return time.Unix(fixed, 0) }

	h, _ := r.Add(TypeHumidity)
	r.Complete(h)

	a, _ := r.Get(h)
	if a.State != StateCompleted {
		t.Fatalf("expected completed state, got %v", a.State)
	}
	if a.TimeCompletedUTC != fixed {
		t.Fatalf("expected TimeCompletedUTC=%d, got %d", fixed, a.TimeCompletedUTC)
	}
}

func TestRankOrdersByAgeWhenTiedOtherwise(t *testing.T) {
	r := newTestRegistry(4)
	for _, ty := range AllTypes() {
		r.SetDesirability(ty, 1)
	}

	r.now = func() time.Time { return time.Unix(1000, 0) }
	h1, _ := r.Add(TypeHumidity)
	r.Complete(h1)

	r.now = func() time.Time { return time.Unix(2000, 0) }
	h2, _ := r.Add(TypePressure)
	r.Complete(h2)

	head, ok := r.Rank(nil)
	if !ok {
		t.Fatalf("expected a ranked head")
	}
	if head != TypeHumidity {
		t.Fatalf("expected the older completion (TypeHumidity) ranked first, got %v", head)
	}

	next, ok := r.Next()
	if !ok || next != TypePressure {
		t.Fatalf("expected TypePressure ranked second, got %v ok=%v", next, ok)
	}
}

func TestRankDropsZeroDesirability(t *testing.T) {
	r := newTestRegistry(2)
	r.SetDesirability(TypeHumidity, 0)
	r.SetDesirability(TypePressure, 1)

	h1, _ := r.Add(TypeHumidity)
	r.Complete(h1)
	h2, _ := r.Add(TypePressure)
	r.Complete(h2)

	head, ok := r.Rank(nil)
	if !ok {
		t.Fatalf("expected a ranked head")
	}
	if head != TypePressure {
		t.Fatalf("expected TypePressure as sole ranked type, got %v", head)
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("expected zero-desirability type to be excluded from rank")
	}
}

func TestSetVariabilityDamperRejectsZero(t *testing.T) {
	r := newTestRegistry(1)
	if r.SetVariabilityDamper(TypeHumidity, 0) {
		t.Fatalf("expected zero damper to be rejected")
	}
	if !r.SetVariabilityDamper(TypeHumidity, 5) {
		t.Fatalf("expected non-zero damper to be accepted")
	}
}

func TestAbortThenRemove(t *testing.T) {
	r := newTestRegistry(1)
	h, _ := r.Add(TypeHumidity)
	r.Abort(h)

	a, _ := r.Get(h)
	if a.State != StateAborted {
		t.Fatalf("expected aborted state, got %v", a.State)
	}

	r.Remove(h)
	a, _ = r.Get(h)
	if a.State != StateNull {
		t.Fatalf("expected null state after remove, got %v", a.State)
	}
}
