package stats

import (
	"testing"
	"time"

	"github.com/u-blox/infinite-iot-sub000/internal/action"
)

func TestWakeUpAccumulatesSleepTimeWithinSameDay(t *testing.T) {
	s := New()
	base := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.Sleep()

	s.now = func() time.Time { return base.Add(5 * time.Second) }
	s.WakeUp()

	got := s.Get()
	if got.SleepTimePerDaySeconds != 5 {
		t.Fatalf("expected 5s accumulated sleep time, got %d", got.SleepTimePerDaySeconds)
	}
}

func TestWakeUpRolloverAtMidnightZeroesDailies(t *testing.T) {
	s := New()
	beforeMidnight := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)
	s.now = func() time.Time { return beforeMidnight }
	s.Sleep()
	s.AddEnergy(100)

	afterMidnight := time.Date(2026, 8, 1, 0, 0, 5, 0, time.UTC)
	s.now = func() time.Time { return afterMidnight }
	s.WakeUp()

	got := s.Get()
	if got.EnergyPerDayNWH != 0 {
		t.Fatalf("expected dailies zeroed across midnight rollover, got energy=%d", got.EnergyPerDayNWH)
	}
	if got.SleepTimePerDaySeconds != 5 {
		t.Fatalf("expected sleep time reset to seconds-since-midnight (5), got %d", got.SleepTimePerDaySeconds)
	}
}

func TestAddActionIncrementsPerDayCount(t *testing.T) {
	s := New()
	s.AddAction(action.TypeHumidity)
	s.AddAction(action.TypeHumidity)

	got := s.Get()
	if got.ActionsPerDay[action.TypeHumidity] != 2 {
		t.Fatalf("expected 2 humidity actions, got %d", got.ActionsPerDay[action.TypeHumidity])
	}
}

func TestAdjustForClockChangeShiftsStoredTimestamps(t *testing.T) {
	s := New()
	base := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.WakeUp()

	shifted := base.Add(1 * time.Hour)
	s.AdjustForClockChange(shifted.Add(1 * time.Hour))

	if s.lastWakeUpTime.Sub(base) != 2*time.Hour {
		t.Fatalf("expected stored wake time shifted by the clock delta, got %v", s.lastWakeUpTime)
	}
}

func TestConnectionCountersAccumulate(t *testing.T) {
	s := New()
	s.IncConnectionAttempts()
	s.IncConnectionAttempts()
	s.IncConnectionSuccess()
	s.AddTransmitted(100)
	s.AddReceived(50)

	got := s.Get()
	if got.ConnectionAttempts != 2 || got.ConnectionSuccess != 1 {
		t.Fatalf("unexpected connection counters: %+v", got)
	}
	if got.BytesTransmitted != 100 || got.BytesReceived != 50 {
		t.Fatalf("unexpected byte counters: %+v", got)
	}
}
