// Package config loads and validates the sensor node's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a sensor node process.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Registry  RegistryConfig  `yaml:"registry"`
	Arena     ArenaConfig     `yaml:"arena"`
	Codec     CodecConfig     `yaml:"codec"`
	Processor ProcessorConfig `yaml:"processor"`
	Cellular  CellularConfig  `yaml:"cellular"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig contains identity settings for this device.
type NodeConfig struct {
	// Name is the device identifier used as the codec's "n" field
	// (typically the modem IMEI). Overridable via env for bench testing.
	Name string `yaml:"name"`
}

// RegistryConfig bounds the action registry.
type RegistryConfig struct {
	MaxActions int `yaml:"max_actions"`
}

// ArenaConfig bounds the data queue's backing storage.
type ArenaConfig struct {
	MaxSizeBytes int `yaml:"max_size_bytes"`
	// SortGuardMS bounds sort()'s worst-case wall-clock time (spec.md
	// leaves this caller-configured with no firmware-derived default).
	SortGuardMS int `yaml:"sort_guard_ms"`
}

// CodecConfig bounds the report encoder.
type CodecConfig struct {
	EncodeBufferMinSize int `yaml:"encode_buffer_min_size"`
	MaxNameStrlen        int `yaml:"max_name_strlen"`
	ProtocolVersion      int `yaml:"protocol_version"`
}

// ProcessorConfig bounds the wake-loop worker pool.
type ProcessorConfig struct {
	MaxSimultaneousActions int           `yaml:"max_simultaneous_actions"`
	IdlePoll               time.Duration `yaml:"idle_poll"`
}

// CellularConfig configures the simulated cellular collaborator.
type CellularConfig struct {
	ServerAddr    string        `yaml:"server_addr"`
	ServerPort    int           `yaml:"server_port"`
	AckTimeout    time.Duration `yaml:"ack_timeout"`
	RetryRatePerS float64       `yaml:"retry_rate_per_s"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns configuration suitable for bench testing.
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			Name: "000000000000000",
		},
		Registry: RegistryConfig{
			MaxActions: 20,
		},
		Arena: ArenaConfig{
			MaxSizeBytes: 8192,
			SortGuardMS:  50,
		},
		Codec: CodecConfig{
			EncodeBufferMinSize: 128,
			MaxNameStrlen:       32,
			ProtocolVersion:     1,
		},
		Processor: ProcessorConfig{
			MaxSimultaneousActions: 7,
			IdlePoll:               250 * time.Millisecond,
		},
		Cellular: CellularConfig{
			ServerAddr:    "127.0.0.1",
			ServerPort:    5683,
			AckTimeout:    10 * time.Second,
			RetryRatePerS: 1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults
// when path does not exist. NODE_NAME overrides node.name when set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	nodeNameEnv, nodeNameEnvSet := os.LookupEnv("NODE_NAME")

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if nodeNameEnvSet {
		cfg.Node.Name = nodeNameEnv
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Node.Name == "" {
		return fmt.Errorf("node.name is required")
	}
	if len(c.Node.Name) > c.Codec.MaxNameStrlen {
		return fmt.Errorf("node.name exceeds codec.max_name_strlen (%d)", c.Codec.MaxNameStrlen)
	}
	if c.Registry.MaxActions < 1 {
		return fmt.Errorf("registry.max_actions must be at least 1")
	}
	if c.Arena.MaxSizeBytes < 1 {
		return fmt.Errorf("arena.max_size_bytes must be at least 1")
	}
	if c.Arena.SortGuardMS < 1 {
		return fmt.Errorf("arena.sort_guard_ms must be at least 1")
	}
	if c.Codec.EncodeBufferMinSize < 1 {
		return fmt.Errorf("codec.encode_buffer_min_size must be at least 1")
	}
	if c.Processor.MaxSimultaneousActions < 1 {
		return fmt.Errorf("processor.max_simultaneous_actions must be at least 1")
	}
	if c.Cellular.AckTimeout <= 0 {
		return fmt.Errorf("cellular.ack_timeout must be positive")
	}
	return nil
}
