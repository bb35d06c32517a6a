package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("CF_API_TOKEN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ThresholdDays != DefaultThresholdDays {
		t.Fatalf("ThresholdDays: got %d, want %d", cfg.ThresholdDays, DefaultThresholdDays)
	}
	if cfg.PoolSize != DefaultPoolSize() {
		t.Fatalf("PoolSize: got %d, want %d", cfg.PoolSize, DefaultPoolSize())
	}
	if cfg.Verbosity != 0 || cfg.Wait != 0 || cfg.Threads {
		t.Fatalf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestLoadReadsYAMLAndEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("CF_API_TOKEN", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "thresholdDays: 30\nverbosity: 2\nthreads: true\nwait: 1\ncacheFile: cache.txt\nlookupTimeout: 15s\n" +
		"telegram:\n  botToken: from-yaml\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ThresholdDays != 30 || cfg.Verbosity != 2 || !cfg.Threads || cfg.Wait != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CacheFile != "cache.txt" {
		t.Fatalf("CacheFile: got %q", cfg.CacheFile)
	}
	if cfg.LookupTimeout != 15*time.Second {
		t.Fatalf("LookupTimeout: got %v", cfg.LookupTimeout)
	}
	if cfg.Telegram.BotToken != "from-env" || cfg.Telegram.ChatID != 42 {
		t.Fatalf("env override not applied: %+v", cfg.Telegram)
	}
	if cfg.Delay() != time.Second {
		t.Fatalf("Delay: got %v", cfg.Delay())
	}
}

func TestLoadRejectsBadVerbosity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("verbosity: 7\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	cfg := Default()
	cfg.ThresholdDays = 90
	cfg.CacheFile = "from-yaml.txt"

	opts, err := ParseArgs([]string{"-i", "domains.txt", "-vv", "-x", "-w", "2", "-o", "out.txt", "-y"})
	if err != nil {
		t.Fatalf("ParseArgs returned error: %v", err)
	}
	if err := opts.Apply(&cfg); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if opts.Input != "domains.txt" || opts.Output != "out.txt" || !opts.AutoYes {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if cfg.ThresholdDays != 90 {
		t.Fatalf("unset -t must keep config value, got %d", cfg.ThresholdDays)
	}
	if cfg.CacheFile != "from-yaml.txt" {
		t.Fatalf("unset -c must keep config value, got %q", cfg.CacheFile)
	}
	if cfg.Verbosity != 2 || !cfg.Threads || cfg.Wait != 2 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestParseArgsRequiresInput(t *testing.T) {
	if _, err := ParseArgs([]string{"-t", "30"}); err == nil {
		t.Fatalf("expected error without -i")
	}
}
