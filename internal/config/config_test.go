package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("REPOSITORY_DRIVER", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("BATCH_WORKERS", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg := Load()
	if cfg.RepositoryDriver != "postgres" {
		t.Fatalf("expected default repository driver postgres, got %q", cfg.RepositoryDriver)
	}
	if cfg.NATSSubject != "files.uploaded" {
		t.Fatalf("expected default nats subject files.uploaded, got %q", cfg.NATSSubject)
	}
	if cfg.BatchWorkers != 4 {
		t.Fatalf("expected default batch workers 4, got %d", cfg.BatchWorkers)
	}
	if cfg.APIRateLimitRPS != 50 {
		t.Fatalf("expected default rate limit 50 rps, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("REPOSITORY_DRIVER", "memory")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")
	t.Setenv("MAX_UPLOAD_MIB", "not-a-number")

	cfg := Load()
	if cfg.RepositoryDriver != "memory" {
		t.Fatalf("expected repository driver override, got %q", cfg.RepositoryDriver)
	}
	if cfg.BatchWorkers != 8 {
		t.Fatalf("expected batch workers 8, got %d", cfg.BatchWorkers)
	}
	if cfg.APIRateLimitRPS != 12.5 {
		t.Fatalf("expected rate limit 12.5 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.MaxUploadMiB != 32 {
		t.Fatalf("expected invalid int to fall back to 32, got %d", cfg.MaxUploadMiB)
	}
}

func TestLoadAppliesYAMLOverlayUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "nats_subject: files.scanned\nbatch_workers: 6\napi_port: \"9999\"\n"
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("BATCH_WORKERS", "")
	t.Setenv("API_PORT", "7777")

	cfg := Load()
	if cfg.NATSSubject != "files.scanned" {
		t.Fatalf("expected overlay nats subject, got %q", cfg.NATSSubject)
	}
	if cfg.BatchWorkers != 6 {
		t.Fatalf("expected overlay batch workers 6, got %d", cfg.BatchWorkers)
	}
	if cfg.APIPort != "7777" {
		t.Fatalf("environment must win over overlay, got %q", cfg.APIPort)
	}
}
