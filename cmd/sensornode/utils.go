package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/u-blox/infinite-iot-sub000/internal/action"
	"github.com/u-blox/infinite-iot-sub000/internal/config"
	"github.com/u-blox/infinite-iot-sub000/internal/data"
	"github.com/u-blox/infinite-iot-sub000/internal/drivers"
	"github.com/u-blox/infinite-iot-sub000/internal/drivers/bench"
	"github.com/u-blox/infinite-iot-sub000/internal/logging"
	"github.com/u-blox/infinite-iot-sub000/internal/metrics"
	"github.com/u-blox/infinite-iot-sub000/internal/processor"
	"github.com/u-blox/infinite-iot-sub000/internal/stats"
)

// loadConfig loads the configuration from file, auto-generating a default
// one if needed.
func loadConfig() (*config.Config, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", configPath)

		cfg := config.DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.Level(cfg.Logging.Level)
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(cfg.Logging.Format),
		Output: os.Stdout,
	})
}

// benchNode bundles a fully-wired node against bench drivers, for the
// run and simulate subcommands.
type benchNode struct {
	registry   *action.Registry
	queue      *data.Queue
	statistics *stats.Statistics
	power      *bench.PowerSource
	watchdog   *bench.Watchdog
	proc       *processor.Processor
	metrics    *metrics.Registry
}

func newBenchNode(cfg *config.Config, log *logging.Logger) *benchNode {
	registry := action.New(cfg.Registry.MaxActions, log.WithField("component", "action"))
	for _, t := range action.AllTypes() {
		registry.SetDesirability(t, 1)
	}

	sortGuard := time.Duration(cfg.Arena.SortGuardMS) * time.Millisecond
	queue := data.New(cfg.Arena.MaxSizeBytes, sortGuard)
	statistics := stats.New()
	power := bench.NewPowerSource(drivers.TierGood)
	watchdog := &bench.Watchdog{}

	sensors := map[action.Type]*bench.Scalar{
		action.TypeHumidity:    bench.NewScalar("humidity", 0, 100, 1),
		action.TypePressure:    bench.NewScalar("pressure", 95000, 105000, 2),
		action.TypeTemperature: bench.NewScalar("temperature", -2000, 4000, 3),
		action.TypeMagnetic:    bench.NewScalar("magnetic", 0, 2000, 4),
	}

	dispatch := func(t action.Type) (drivers.Sensor, data.Tag, bool) {
		s, ok := sensors[t]
		if !ok {
			return nil, 0, false
		}
		return scalarSensor{s: s, tag: tagFor(t)}, tagFor(t), true
	}

	proc := processor.New(registry, queue, statistics, power, watchdog, dispatch,
		log.WithField("component", "processor"), cfg.Processor)

	m := metrics.New()
	proc.SetMetrics(m)

	return &benchNode{
		registry:   registry,
		queue:      queue,
		statistics: statistics,
		power:      power,
		watchdog:   watchdog,
		proc:       proc,
		metrics:    m,
	}
}

func tagFor(t action.Type) data.Tag {
	switch t {
	case action.TypeHumidity:
		return data.TagHumidity
	case action.TypePressure:
		return data.TagPressure
	case action.TypeTemperature:
		return data.TagTemperature
	case action.TypeMagnetic:
		return data.TagMagnetic
	default:
		return data.TagLog
	}
}

// scalarSensor adapts a bench.Scalar (which returns a bare int reading)
// to the drivers.Sensor contract by wrapping the reading in the variant
// contents struct its tag expects.
type scalarSensor struct {
	s   *bench.Scalar
	tag data.Tag
}

func (ss scalarSensor) Init(ctx context.Context, i2cAddr int) (drivers.Status, error) {
	return ss.s.Init(ctx, i2cAddr)
}

func (ss scalarSensor) Read(ctx context.Context) (drivers.Status, interface{}, error) {
	status, v, err := ss.s.Read(ctx)
	if err != nil || !status.Ok() {
		return status, nil, err
	}
	n, _ := v.(int)

	switch ss.tag {
	case data.TagHumidity:
		return status, data.Humidity{Percent: uint(n)}, nil
	case data.TagPressure:
		return status, data.Pressure{PascalX100: uint(n)}, nil
	case data.TagTemperature:
		return status, data.Temperature{CX100: n}, nil
	case data.TagMagnetic:
		return status, data.Magnetic{TeslaX1000: uint(n)}, nil
	default:
		return drivers.StatusNoData, nil, nil
	}
}

func (ss scalarSensor) Deinit(ctx context.Context) error {
	return ss.s.Deinit(ctx)
}
