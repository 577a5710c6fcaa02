package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/u-blox/infinite-iot-sub000/internal/action"
	"github.com/u-blox/infinite-iot-sub000/internal/cellular"
	"github.com/u-blox/infinite-iot-sub000/internal/codec"
	"github.com/u-blox/infinite-iot-sub000/internal/data"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run repeated wake cycles against bench drivers until interrupted",
	Long: `run drives the node through repeated RTC wake cycles — rank,
dispatch, sleep — against simulated sensors and a simulated cellular
collaborator, until interrupted with Ctrl-C.`,
	RunE: runNode,
}

func init() {
	runCmd.Flags().Duration("wake-interval", 10*time.Second, "time between RTC wake cycles")
	runCmd.Flags().Int("cycles", 0, "number of wake cycles to run (0 = until interrupted)")
}

func runNode(cmd *cobra.Command, args []string) error {
	wakeInterval, _ := cmd.Flags().GetDuration("wake-interval")
	cycles, _ := cmd.Flags().GetInt("cycles")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := newLogger(cfg)
	log.Info("sensornode starting", "version", version)

	node := newBenchNode(cfg, log)

	transport := newLoopbackTransport(cfg.Node.Name, cfg.Codec.MaxNameStrlen)
	collaborator := cellular.NewSimulated(transport, cfg.Cellular.RetryRatePerS, log.WithField("component", "cellular"))
	collaborator.SetMetrics(node.metrics)
	encoder := codec.NewEncoder(node.queue, cfg.Codec.ProtocolVersion, cfg.Codec.MaxNameStrlen)
	collaborator.Bind(encoder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(wakeInterval)
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down", "cycles_run", count)
			return nil
		case <-ticker.C:
			count++
			node.metrics.SleepSeconds.Add(wakeInterval.Seconds())
			log.Info("wake cycle starting", "cycle", count)

			if err := node.proc.HandleWake(ctx, data.WakeReasonRTC); err != nil {
				log.Warn("wake cycle failed", "error", err.Error())
			}

			encoder.Prepare()
			onAck := func(refs []data.ActionRef) {
				for _, ref := range refs {
					if ref.Valid {
						node.registry.ClearDataRef(action.Handle(ref.Handle))
					}
				}
			}
			if err := collaborator.SendReports(ctx, cfg.Cellular.ServerAddr, cfg.Cellular.ServerPort,
				cfg.Node.Name, cfg.Cellular.AckTimeout, func() bool { return ctx.Err() == nil }, onAck); err != nil {
				log.Warn("report send failed", "error", err.Error())
			}

			if cycles > 0 && count >= cycles {
				log.Info("reached requested cycle count", "cycles", cycles)
				return nil
			}
		}
	}
}
