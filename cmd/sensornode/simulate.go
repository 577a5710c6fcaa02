package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/u-blox/infinite-iot-sub000/internal/codec"
	"github.com/u-blox/infinite-iot-sub000/internal/data"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Args:  cobra.NoArgs,
	Short: "Run a single wake cycle and print the resulting queue and report",
	Long: `simulate drives exactly one wake cycle against bench drivers,
then prints the data queue's record count and bytes used, the metrics,
and the report datagrams an encoder produces from the queue, for
protocol debugging.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("wake-reason", "RTC", "wake reason to simulate (PWR, PIN, WDG, SOF, RTC, ACC, MAG)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	reasonFlag, _ := cmd.Flags().GetString("wake-reason")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := newLogger(cfg)
	node := newBenchNode(cfg, log)

	ctx := context.Background()
	if err := node.proc.HandleWake(ctx, data.WakeReason(reasonFlag)); err != nil {
		return fmt.Errorf("wake cycle failed: %w", err)
	}

	fmt.Printf("queue: %d records, %d bytes used\n", node.queue.Count(), node.queue.BytesUsed())

	if err := node.metrics.WriteText(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	encoder := codec.NewEncoder(node.queue, cfg.Codec.ProtocolVersion, cfg.Codec.MaxNameStrlen)
	encoder.Prepare()

	buf := make([]byte, cfg.Codec.EncodeBufferMinSize)
	for {
		flags, n := encoder.Encode(cfg.Node.Name, buf)
		if n == 0 {
			break
		}
		fmt.Printf("datagram (%d bytes, needs_ack=%v): %s\n", n, flags.NeedsAck(), string(buf[:n]))
		if flags.NeedsAck() {
			encoder.Ack()
		}
	}

	return nil
}
