// Package processor drives one wake cycle end-to-end: ranking actions,
// dispatching a bounded pool of worker tasks, and updating statistics
// before returning to sleep (spec.md §4.4).
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/u-blox/infinite-iot-sub000/internal/action"
	"github.com/u-blox/infinite-iot-sub000/internal/config"
	"github.com/u-blox/infinite-iot-sub000/internal/data"
	"github.com/u-blox/infinite-iot-sub000/internal/drivers"
	"github.com/u-blox/infinite-iot-sub000/internal/logging"
	"github.com/u-blox/infinite-iot-sub000/internal/metrics"
	"github.com/u-blox/infinite-iot-sub000/internal/stats"
)

// Dispatcher maps an action type to the sensor driver that services it.
type Dispatcher func(t action.Type) (drivers.Sensor, data.Tag, bool)

// Processor owns the registry, queue, and statistics for one node and
// drives wake cycles against them.
type Processor struct {
	registry   *action.Registry
	queue      *data.Queue
	statistics *stats.Statistics
	power      drivers.PowerSource
	watchdog   drivers.Watchdog
	dispatch   Dispatcher
	log        *logging.Logger
	cfg        config.ProcessorConfig
	metrics    *metrics.Registry

	damper map[data.Tag]uint64
}

// SetMetrics attaches a metrics registry the processor reports arena
// occupancy, queue depth, and ranking counts to. Nil is a valid no-op
// default, matching a node run without a scrape target.
func (p *Processor) SetMetrics(m *metrics.Registry) { p.metrics = m }

// New creates a processor and seeds the registry with one completed
// action per known type, matching eh_processor.cpp's processorInit() —
// the ranker's first age-pass needs a baseline instead of an empty
// registry.
func New(registry *action.Registry, queue *data.Queue, statistics *stats.Statistics,
	power drivers.PowerSource, watchdog drivers.Watchdog, dispatch Dispatcher,
	log *logging.Logger, cfg config.ProcessorConfig) *Processor {

	p := &Processor{
		registry:   registry,
		queue:      queue,
		statistics: statistics,
		power:      power,
		watchdog:   watchdog,
		dispatch:   dispatch,
		log:        log,
		cfg:        cfg,
		damper:     make(map[data.Tag]uint64),
	}

	for _, t := range action.AllTypes() {
		if h, ok := registry.Add(t); ok {
			registry.Complete(h)
		}
	}

	return p
}

// HandleWake drives a complete wake cycle: records the wake reason,
// ranks actions, spawns a bounded worker per ranked type while power
// remains good, waits for stragglers on power degradation, and updates
// statistics before returning.
func (p *Processor) HandleWake(ctx context.Context, reason data.WakeReason) error {
	cycleID := uuid.NewString()
	log := p.log.WithField("cycle", cycleID)

	if p.power.VoltageTier() < drivers.TierBearable {
		return nil
	}

	wakeStart := time.Now()
	p.statistics.WakeUp()

	p.queue.Alloc(0, false, data.TagWakeReason, 0, data.WakeReasonRecord{Reason: reason}, time.Now().UTC().Unix(), 0)

	variability := p.liveVariability()

	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(cycleCtx)
	group.SetLimit(p.cfg.MaxSimultaneousActions)

	t, ok := p.registry.Rank(variability)
	for ok && p.power.VoltageTier() == drivers.TierGood {
		typ := t
		if err := p.watchdog.Feed(); err != nil {
			log.Warn("watchdog feed failed", "error", err.Error())
		}
		if p.metrics != nil {
			p.metrics.ActionsRanked.Inc()
		}
		group.Go(func() error {
			return p.runWorker(gctx, typ, log)
		})
		t, ok = p.registry.Next()
	}

	ticker := time.NewTicker(p.cfg.IdlePoll)
	defer ticker.Stop()

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()

pollLoop:
	for {
		select {
		case err := <-done:
			if err != nil {
				log.Warn("worker reported error", "error", err.Error())
			}
			break pollLoop
		case <-ticker.C:
			if err := p.watchdog.Feed(); err != nil {
				log.Warn("watchdog feed failed", "error", err.Error())
			}
			if p.power.VoltageTier() < drivers.TierBearable {
				cancel()
			}
		case <-ctx.Done():
			cancel()
		}
	}

	p.statistics.Sleep()
	if p.metrics != nil {
		p.metrics.WakeSeconds.Add(time.Since(wakeStart).Seconds())
		p.metrics.ArenaBytesUsed.Set(float64(p.queue.BytesUsed()))
		p.metrics.QueueDepth.Set(float64(p.queue.Count()))
	}
	return nil
}

// liveVariability walks the registry's live actions in slot order,
// tracking one last-seen data record per type, and scores each type by
// the peak |difference| between consecutive readings attached to a live
// action (spec.md §4.1 step 2). Data whose owning action has already
// completed and been recycled out of the registry never contributes —
// unlike grouping raw queue records by tag, this only ever compares
// readings the ranker could plausibly still act on.
func (p *Processor) liveVariability() map[action.Type]uint64 {
	peak := make(map[action.Type]uint64)
	last := make(map[action.Type]data.Record)

	for _, a := range p.registry.LiveActions() {
		if !a.DataRef.Valid {
			continue
		}
		rec, ok := p.queue.Get(data.Handle(a.DataRef.ID))
		if !ok {
			continue
		}

		if prev, seen := last[a.Type]; seen {
			damper := p.damper[rec.Tag]
			if damper == 0 {
				damper = 1
			}
			d := data.AbsDifference(prev, rec) / damper
			if d > peak[a.Type] {
				peak[a.Type] = d
			}
		}
		last[a.Type] = rec
	}

	return peak
}

// runWorker is one short-lived action task: it transitions the action
// to in-progress, invokes the dispatched driver, allocates a Data
// record on success, records the energy cost, and completes the
// action. It observes ctx at every driver boundary and exits promptly
// on cancellation (spec.md §4.4, §5).
func (p *Processor) runWorker(ctx context.Context, t action.Type, log *logging.Logger) (err error) {
	h, ok := p.registry.Add(t)
	if !ok {
		return fmt.Errorf("processor: registry full, cannot start %v", t)
	}
	defer func() {
		if r := recover(); r != nil {
			p.registry.Abort(h)
			err = fmt.Errorf("processor: worker for %v panicked: %v", t, r)
		}
	}()
	p.registry.SetInProgress(h)

	sensor, tag, ok := p.dispatch(t)
	if !ok {
		p.registry.Complete(h)
		return nil
	}

	if ctx.Err() != nil {
		p.registry.Abort(h)
		return ctx.Err()
	}

	initStatus, err := sensor.Init(ctx, 0)
	if err != nil {
		log.Warn("sensor init failed", "type", t.String(), "error", err.Error())
	}
	if initStatus == drivers.StatusDeviceNotPresent {
		// Best-effort power-on self test failed to find the device at
		// all: mark the type undesirable rather than keep re-dispatching
		// it against hardware that isn't there (spec.md §7).
		log.Warn("sensor device not present, marking type undesirable", "type", t.String())
		p.registry.SetDesirability(t, 0)
		p.registry.Complete(h)
		return nil
	}
	defer sensor.Deinit(ctx)

	if ctx.Err() != nil {
		p.registry.Abort(h)
		return ctx.Err()
	}

	status, contents, err := sensor.Read(ctx)
	if err != nil {
		log.Warn("sensor read failed", "type", t.String(), "error", err.Error())
	}

	const energyCostNWH = 10 // bench estimate per action; real boards measure this from the voltage divider

	p.registry.SetEnergyCost(h, energyCostNWH)
	p.statistics.AddEnergy(energyCostNWH)
	p.statistics.AddAction(t)

	if status.Ok() {
		dh, allocated := p.queue.Alloc(int(h), true, tag, 0, contents, time.Now().UTC().Unix(), energyCostNWH)
		if allocated {
			p.registry.SetDataRef(h, action.DataRef{Valid: true, ID: uint64(dh)})
		}
	}

	p.registry.Complete(h)
	return nil
}
