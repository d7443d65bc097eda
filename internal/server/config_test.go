package server

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/Tyrowin/werewolf/internal/game"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "werewolf.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	if cfg.Port != ":8080" || cfg.TCPPort != ":5000" {
		t.Errorf("unexpected ports %q %q", cfg.Port, cfg.TCPPort)
	}
	if cfg.Game.MinPlayers != 6 || cfg.Game.MaxPlayers != 16 {
		t.Errorf("unexpected table limits %d-%d", cfg.Game.MinPlayers, cfg.Game.MaxPlayers)
	}
	if cfg.Game.Phases.Werewolf != 45*time.Second || cfg.Game.Phases.Lovers != 20*time.Second {
		t.Errorf("unexpected phase defaults %+v", cfg.Game.Phases)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
port: ":9090"
tcp_port: ":6000"
allowed_origins:
  - https://village.example
max_message_size: 2048
rate_limit:
  burst: 3
  refill_interval: 2s
game:
  min_players: 8
  max_players: 12
  include_thief: true
  phases:
    werewolf: 1m
    discussion: 90s
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != ":9090" || cfg.TCPPort != ":6000" || cfg.MaxMessageSize != 2048 {
		t.Errorf("unexpected server section %+v", cfg)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"https://village.example"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimit.Burst != 3 || cfg.RateLimit.RefillInterval != 2*time.Second {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Game.MinPlayers != 8 || cfg.Game.MaxPlayers != 12 || !cfg.Game.IncludeThief {
		t.Errorf("unexpected game section %+v", cfg.Game)
	}
	if cfg.Game.Phases.Werewolf != time.Minute || cfg.Game.Phases.Discussion != 90*time.Second {
		t.Errorf("unexpected phases %+v", cfg.Game.Phases)
	}
	if cfg.Game.Phases.Seer != 30*time.Second {
		t.Errorf("unset phase lost its default: %v", cfg.Game.Phases.Seer)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfigFile(t, "port: \":9090\"\ngame:\n  max_players: 12\n")
	t.Setenv("SERVER_PORT", ":7070")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GAME_MAX_PLAYERS", "10")
	t.Setenv("PHASE_VOTE", "15s")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != ":7070" {
		t.Errorf("expected env port, got %q", cfg.Port)
	}
	if cfg.Game.MaxPlayers != 10 {
		t.Errorf("expected env max players, got %d", cfg.Game.MaxPlayers)
	}
	if cfg.Game.Phases.Vote != 15*time.Second {
		t.Errorf("expected env vote duration, got %v", cfg.Game.Phases.Vote)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("expected two origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := LoadConfig(writeConfigFile(t, "port: [")); err == nil {
		t.Error("expected an error for invalid YAML")
	}

	t.Setenv("GAME_MIN_PLAYERS", "many")
	if _, err := NewConfigFromEnv(); err == nil {
		t.Error("expected an error for a non-numeric env value")
	}
}

func TestSetConfigSanitizes(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	SetConfig(&Config{
		MaxMessageSize: -1,
		Game: GameConfig{
			MinPlayers: 10,
			MaxPlayers: 8,
			Phases:     PhaseDurations{Werewolf: time.Second},
		},
	})

	cfg := CurrentConfig()
	if cfg.Port != ":8080" || cfg.MaxMessageSize != 4096 {
		t.Errorf("expected defaults restored, got %q %d", cfg.Port, cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 10 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("expected default rate limit, got %+v", cfg.RateLimit)
	}
	if cfg.Game.MaxPlayers != 10 {
		t.Errorf("expected max raised to min, got %d", cfg.Game.MaxPlayers)
	}
	if cfg.Game.Phases.Werewolf != time.Second || cfg.Game.Phases.Vote != 45*time.Second {
		t.Errorf("unexpected phases %+v", cfg.Game.Phases)
	}
}

func TestGameSettings(t *testing.T) {
	g := NewConfig().Game
	g.IncludeThief = true
	g.Phases.Witch = 5 * time.Second

	st := g.Settings()
	if st.MinPlayers != 6 || st.MaxPlayers != 16 || !st.IncludeThief {
		t.Errorf("unexpected settings %+v", st)
	}
	if st.Durations[game.PhaseNightWitch] != 5*time.Second {
		t.Errorf("expected witch duration carried, got %v", st.Durations[game.PhaseNightWitch])
	}
	if len(st.Durations) != 8 {
		t.Errorf("expected every timed phase, got %d", len(st.Durations))
	}
	if st.Shuffle == nil {
		t.Error("expected a shuffle function")
	}
}
