package bench

import (
	"context"
	"testing"

	"github.com/u-blox/infinite-iot-sub000/internal/drivers"
)

func TestScalarRequiresInitBeforeRead(t *testing.T) {
	s := NewScalar("humidity", 0, 100, 1)

	status, _, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != drivers.StatusNotInitialised {
		t.Fatalf("expected StatusNotInitialised before Init, got %v", status)
	}

	if _, err := s.Init(context.Background(), 0); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}

	status, v, err := s.Read(context.Background())
	if err != nil || status != drivers.StatusOK {
		t.Fatalf("expected StatusOK after init, got status=%v err=%v", status, err)
	}
	n, ok := v.(int)
	if !ok || n < 0 || n > 100 {
		t.Fatalf("expected a reading within [0,100], got %v", v)
	}
}

func TestScalarDeterministicFromSeed(t *testing.T) {
	a := NewScalar("humidity", 0, 100, 42)
	b := NewScalar("humidity", 0, 100, 42)
	a.Init(context.Background(), 0)
	b.Init(context.Background(), 0)

	_, va, _ := a.Read(context.Background())
	_, vb, _ := b.Read(context.Background())
	if va != vb {
		t.Fatalf("expected identical seeds to produce identical readings, got %v vs %v", va, vb)
	}
}

func TestWatchdogCountsFeeds(t *testing.T) {
	w := &Watchdog{}
	w.Init(30, nil)
	w.Feed()
	w.Feed()
	if w.FedCount() != 2 {
		t.Fatalf("expected 2 feeds, got %d", w.FedCount())
	}
}

func TestPowerSourceReportsSetTier(t *testing.T) {
	p := NewPowerSource(drivers.TierGood)
	if p.VoltageTier() != drivers.TierGood {
		t.Fatalf("expected initial tier TierGood")
	}
	p.SetTier(drivers.TierBad)
	if p.VoltageTier() != drivers.TierBad {
		t.Fatalf("expected updated tier TierBad")
	}
}
