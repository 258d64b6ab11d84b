package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelnetAddr != ":4000" {
		t.Fatalf("TelnetAddr = %q, want %q", cfg.TelnetAddr, ":4000")
	}
	if cfg.ImportMaxBytes != 4<<20 {
		t.Fatalf("ImportMaxBytes = %d, want %d", cfg.ImportMaxBytes, 4<<20)
	}
	if cfg.ObserverName != "ghost" {
		t.Fatalf("ObserverName = %q, want %q", cfg.ObserverName, "ghost")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("KILN_STORE_PATH", MemoryStore)
	t.Setenv("KILN_MESSAGE_LIMIT", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != MemoryStore || cfg.MessageLimit != 1024 {
		t.Fatalf("cfg = %+v, want overrides applied", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("KILN_IMPORT_MAX_BYTES", "lots")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("Load error = %v, want parse env error", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{TelnetAddr: ":1", MessageLimit: 1, ImportMaxBytes: 1, StorePath: "x"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.ImportMaxBytes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for a zero import limit")
	}
}
