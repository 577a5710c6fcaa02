package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/u-blox/infinite-iot-sub000/internal/codec"
)

var decodeAckCmd = &cobra.Command{
	Use:   "decode-ack [file]",
	Args:  cobra.ExactArgs(1),
	Short: "Decode a captured ack datagram",
	Long: `decode-ack parses a captured ack datagram against the expected
node name, for debugging captured cellular traffic offline.`,
	RunE: runDecodeAck,
}

func init() {
	decodeAckCmd.Flags().String("name", "", "expected node name (default: from config)")
}

func runDecodeAck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = cfg.Node.Name
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	index, err := codec.DecodeAck(buf, name, cfg.Codec.MaxNameStrlen)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	fmt.Printf("ack: name=%s index=%d\n", name, index)
	return nil
}
