package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestValidateRejectsEmptyName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Node.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for empty node name")
	}
}

func TestValidateRejectsNameLongerThanCodecLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Codec.MaxNameStrlen = 2
	cfg.Node.Name = "too-long"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for oversized node name")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Node.Name = "round-trip-node"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Node.Name != "round-trip-node" {
		t.Fatalf("expected round-tripped node name, got %q", loaded.Node.Name)
	}
}

func TestLoadAppliesNodeNameEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	DefaultConfig().Save(path)

	t.Setenv("NODE_NAME", "env-override-node")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Node.Name != "env-override-node" {
		t.Fatalf("expected NODE_NAME env override, got %q", loaded.Node.Name)
	}
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Node.Name != DefaultConfig().Node.Name {
		t.Fatalf("expected default node name when file is missing")
	}
}
