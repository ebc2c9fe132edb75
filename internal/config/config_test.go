package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  cors_origins: ["http://localhost:5173"]
log:
  level: debug
  format: json
rankings:
  top_k: 5
leaderboard:
  lesson_points: 12
  participation_divisor: 5
ping:
  window: 45s
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
	if cfg.Rankings.TopK != 5 || cfg.Leaderboard.LessonPoints != 12 || cfg.Leaderboard.ParticipationDivisor != 5 {
		t.Fatalf("unexpected scoring sections %+v %+v", cfg.Rankings, cfg.Leaderboard)
	}
	if got := TTLDuration(cfg.Ping.Window, time.Minute); got != 45*time.Second {
		t.Fatalf("expected 45s window, got %s", got)
	}
	if cfg.Postgres.URL != "postgres://env/db" {
		t.Fatalf("expected env override, got %q", cfg.Postgres.URL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "" || cfg.Rankings.TopK != 0 {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("empty should fall back, got %s", got)
	}
	if got := TTLDuration("nonsense", time.Second); got != time.Second {
		t.Fatalf("invalid should fall back, got %s", got)
	}
}
