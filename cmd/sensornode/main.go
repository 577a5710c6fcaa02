package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "sensornode",
	Short: "Core firmware simulator for an energy-harvesting sensor node",
	Long: `sensornode drives the action ranker, data queue, report codec, and
wake/sleep processor that make up the core of an energy-harvesting
sensor node, against simulated drivers and power source for bench
testing and protocol debugging.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(decodeAckCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - simulateCmd in simulate.go
// - decodeAckCmd in decode_ack.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
