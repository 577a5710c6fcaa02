// Package bench provides deterministic stand-ins for the external
// collaborators (spec.md §6), for running wake cycles on a workstation
// instead of real sensor silicon. Grounded on the teacher's dry-run vs
// real command pattern (throttler/throttler.go's dryRunCommander /
// shellCommander split): every bench type here plays the role the real
// hardware driver would without touching any device.
package bench

import (
	"context"
	"math/rand"
	"time"

	"github.com/u-blox/infinite-iot-sub000/internal/drivers"
)

// Scalar is a bench sensor driver that produces a pseudo-random scalar
// reading of the given kind on every Read call.
type Scalar struct {
	rnd  *rand.Rand
	kind string
	min  int
	max  int

	initialised bool
}

// NewScalar creates a bench driver seeded deterministically from seed.
func NewScalar(kind string, min, max int, seed int64) *Scalar {
	return &Scalar{rnd: rand.New(rand.NewSource(seed)), kind: kind, min: min, max: max}
}

func (s *Scalar) Init(_ context.Context, _ int) (drivers.Status, error) {
	s.initialised = true
	return drivers.StatusOK, nil
}

func (s *Scalar) Read(_ context.Context) (drivers.Status, interface{}, error) {
	if !s.initialised {
		return drivers.StatusNotInitialised, nil, nil
	}
	v := s.min + s.rnd.Intn(s.max-s.min+1)
	return drivers.StatusOK, v, nil
}

func (s *Scalar) Deinit(_ context.Context) error {
	s.initialised = false
	return nil
}

// Kind names the physical quantity this bench driver stands in for
// (e.g. "humidity", "pressure"). The processor does not consult it: the
// data.Tag to allocate comes from its Dispatcher.
func (s *Scalar) Kind() string { return s.kind }

// Watchdog is a bench watchdog that just counts feeds.
type Watchdog struct {
	fed int
}

func (w *Watchdog) Init(_ int, _ func()) (bool, error) { return true, nil }

func (w *Watchdog) Feed() error {
	w.fed++
	return nil
}

// FedCount reports how many times Feed has been called.
func (w *Watchdog) FedCount() int { return w.fed }

// PowerSource is a bench voltage supervisor whose tier is set directly
// by the caller, for exercising the processor's power-gated loop.
type PowerSource struct {
	tier drivers.VoltageTier
}

// NewPowerSource creates a bench power source starting at tier.
func NewPowerSource(tier drivers.VoltageTier) *PowerSource {
	return &PowerSource{tier: tier}
}

func (p *PowerSource) VoltageTier() drivers.VoltageTier { return p.tier }

// SetTier updates the reported tier, simulating supercap drain/recharge.
func (p *PowerSource) SetTier(tier drivers.VoltageTier) { p.tier = tier }

// Clock is a bench time source, grounded on the cellular collaborator's
// get_time() NTP contract (spec.md §6) without a real network round trip.
type Clock struct {
	now func() time.Time
}

// NewClock creates a bench clock.
func NewClock() *Clock { return &Clock{now: time.Now} }

func (c *Clock) GetTime(_ context.Context) (time.Time, error) { return c.now().UTC(), nil }

func (c *Clock) GetIMEI(_ context.Context) (string, error) { return "000000000000000", nil }
