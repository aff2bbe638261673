package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("TAILORBOOKS_APP_ENV", "dev")
	t.Setenv("TAILORBOOKS_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DSN is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAILORBOOKS_APP_ENV", "dev")
	t.Setenv("TAILORBOOKS_DB_DSN", "postgres://localhost:5432/tailorbooks")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("unexpected default port %q", cfg.App.Port)
	}
	if !cfg.App.IsDev() {
		t.Fatal("expected dev env")
	}
	if cfg.Outbox.BatchSize != 50 {
		t.Fatalf("unexpected outbox batch size %d", cfg.Outbox.BatchSize)
	}
	if cfg.Reports.RankingCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected ranking cache TTL %s", cfg.Reports.RankingCacheTTL)
	}
}
