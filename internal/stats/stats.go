// Package stats implements the per-reset and per-day counters of
// spec.md §4.5, ported directly from eh_statistics.cpp.
package stats

import (
	"sync"
	"time"

	"github.com/u-blox/infinite-iot-sub000/internal/action"
)

const numActionsPerDay = 8

// Statistics holds both accumulation regimes: "dailies" reset at UTC
// midnight rollover, "since-reset" counters reset only explicitly.
type Statistics struct {
	mu sync.Mutex

	sleepTimePerDaySeconds uint
	wakeTimePerDaySeconds  uint
	actionsPerDay          [numActionsPerDay]uint
	energyPerDayNWH        uint64

	cellularConnectionAttemptsSinceReset uint
	cellularConnectionSuccessSinceReset  uint
	cellularBytesTransmittedSinceReset   uint
	cellularBytesReceivedSinceReset      uint
	positionAttemptsSinceReset           uint
	positionSuccessSinceReset            uint
	positionLastNumSvVisible             uint

	lastWakeUpTime time.Time
	lastSleepTime  time.Time
	now            func() time.Time
}

// New creates a zeroed Statistics.
func New() *Statistics {
	return &Statistics{now: time.Now}
}

// Snapshot is a read-only copy of the current counters, shaped for the
// codec's "stt" variant.
type Snapshot struct {
	SleepTimePerDaySeconds uint
	WakeTimePerDaySeconds  uint
	ActionsPerDay          [numActionsPerDay]uint
	EnergyPerDayNWH        uint64
	ConnectionAttempts     uint
	ConnectionSuccess      uint
	BytesTransmitted       uint
	BytesReceived          uint
	PositionAttempts       uint
	PositionSuccess        uint
	LastSVs                uint
}

func secondsSinceMidnight(t time.Time) int {
	u := t.UTC()
	return u.Hour()*3600 + u.Minute()*60 + u.Second()
}

func (s *Statistics) zeroDailies() {
	s.energyPerDayNWH = 0
	for i := range s.actionsPerDay {
		s.actionsPerDay[i] = 0
	}
}

// Init resets all counters and timestamps.
func (s *Statistics) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	*s = Statistics{now: s.now}
}

// AdjustForClockChange shifts the stored wake/sleep timestamps by the
// same delta the system clock is about to be set by. Per SPEC_FULL.md,
// the caller MUST invoke this strictly before applying newTime to any
// clock-derived state — mirrors eh_statistics.cpp's statisticsTimeUpdate(),
// which always runs before the real clock changes.
func (s *Statistics) AdjustForClockChange(newTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldNow := s.now()
	delta := newTime.Sub(oldNow)
	if !s.lastWakeUpTime.IsZero() {
		s.lastWakeUpTime = s.lastWakeUpTime.Add(delta)
	}
	if !s.lastSleepTime.IsZero() {
		s.lastSleepTime = s.lastSleepTime.Add(delta)
	}
}

// WakeUp records a wake transition and rolls dailies over at midnight.
func (s *Statistics) WakeUp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastWakeUpTime = s.now()
	sinceMidnight := secondsSinceMidnight(s.lastWakeUpTime)

	if !s.lastSleepTime.IsZero() {
		sleepTime := uint(s.lastWakeUpTime.Sub(s.lastSleepTime).Seconds())

		if sinceMidnight < secondsSinceMidnight(s.lastSleepTime) {
			s.sleepTimePerDaySeconds = uint(sinceMidnight)
			s.wakeTimePerDaySeconds = 0
			s.zeroDailies()
		} else {
			s.sleepTimePerDaySeconds += sleepTime
		}
	}
}

// Sleep records a sleep transition and rolls dailies over at midnight.
//
// The original firmware's statisticsSleep() lacks the
// "gLastWakeUpTime > 0" guard that statisticsWakeUp() has for
// gLastSleepTime; that asymmetry is reproduced faithfully here rather
// than silently hardened, per DESIGN.md.
func (s *Statistics) Sleep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSleepTime = s.now()
	sinceMidnight := secondsSinceMidnight(s.lastSleepTime)

	wakeTime := uint(s.lastSleepTime.Sub(s.lastWakeUpTime).Seconds())

	if sinceMidnight < secondsSinceMidnight(s.lastWakeUpTime) {
		s.wakeTimePerDaySeconds = uint(sinceMidnight)
		s.sleepTimePerDaySeconds = 0
		s.zeroDailies()
	} else {
		s.wakeTimePerDaySeconds += wakeTime
	}
}

// AddAction increments the per-day count for an action type. Only the
// first numActionsPerDay type values are counted; higher types are
// ignored.
func (s *Statistics) AddAction(t action.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(t) < numActionsPerDay {
		s.actionsPerDay[t]++
	}
}

// AddEnergy accumulates energy spent today.
func (s *Statistics) AddEnergy(nwh uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.energyPerDayNWH += nwh
}

// IncConnectionAttempts increments the since-reset connection attempt count.
func (s *Statistics) IncConnectionAttempts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellularConnectionAttemptsSinceReset++
}

// IncConnectionSuccess increments the since-reset connection success count.
func (s *Statistics) IncConnectionSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellularConnectionSuccessSinceReset++
}

// AddTransmitted accumulates since-reset transmitted bytes.
func (s *Statistics) AddTransmitted(n uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellularBytesTransmittedSinceReset += n
}

// AddReceived accumulates since-reset received bytes.
func (s *Statistics) AddReceived(n uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cellularBytesReceivedSinceReset += n
}

// IncPositionAttempts increments the since-reset position attempt count.
func (s *Statistics) IncPositionAttempts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionAttemptsSinceReset++
}

// IncPositionSuccess increments the since-reset position success count.
func (s *Statistics) IncPositionSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionSuccessSinceReset++
}

// LastSVs records the space-vehicle count visible on the last position fix.
func (s *Statistics) LastSVs(svs uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionLastNumSvVisible = svs
}

// Get returns a snapshot of the current counters.
func (s *Statistics) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SleepTimePerDaySeconds: s.sleepTimePerDaySeconds,
		WakeTimePerDaySeconds:  s.wakeTimePerDaySeconds,
		ActionsPerDay:          s.actionsPerDay,
		EnergyPerDayNWH:        s.energyPerDayNWH,
		ConnectionAttempts:     s.cellularConnectionAttemptsSinceReset,
		ConnectionSuccess:      s.cellularConnectionSuccessSinceReset,
		BytesTransmitted:       s.cellularBytesTransmittedSinceReset,
		BytesReceived:          s.cellularBytesReceivedSinceReset,
		PositionAttempts:       s.positionAttemptsSinceReset,
		PositionSuccess:        s.positionSuccessSinceReset,
		LastSVs:                s.positionLastNumSvVisible,
	}
}
