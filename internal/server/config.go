package server

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Tyrowin/werewolf/internal/game"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `yaml:"burst" env:"RATE_LIMIT_BURST"`
	RefillInterval time.Duration `yaml:"refill_interval" env:"RATE_LIMIT_REFILL_INTERVAL"`
}

// PhaseDurations sets how long each timed phase may last before the
// scheduler forces the next one.
type PhaseDurations struct {
	Thief      time.Duration `yaml:"thief" env:"PHASE_THIEF"`
	Cupid      time.Duration `yaml:"cupid" env:"PHASE_CUPID"`
	Lovers     time.Duration `yaml:"lovers" env:"PHASE_LOVERS"`
	Werewolf   time.Duration `yaml:"werewolf" env:"PHASE_WEREWOLF"`
	Seer       time.Duration `yaml:"seer" env:"PHASE_SEER"`
	Witch      time.Duration `yaml:"witch" env:"PHASE_WITCH"`
	Discussion time.Duration `yaml:"discussion" env:"PHASE_DISCUSSION"`
	Vote       time.Duration `yaml:"vote" env:"PHASE_VOTE"`
}

// GameConfig holds the table rules applied to every new room.
type GameConfig struct {
	MinPlayers   int            `yaml:"min_players" env:"GAME_MIN_PLAYERS"`
	MaxPlayers   int            `yaml:"max_players" env:"GAME_MAX_PLAYERS"`
	IncludeThief bool           `yaml:"include_thief" env:"GAME_INCLUDE_THIEF"`
	Phases       PhaseDurations `yaml:"phases"`
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port           string          `yaml:"port" env:"SERVER_PORT"`
	TCPPort        string          `yaml:"tcp_port" env:"TCP_PORT"`
	AllowedOrigins []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	MaxMessageSize int64           `yaml:"max_message_size" env:"MAX_MESSAGE_SIZE"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	Game           GameConfig      `yaml:"game"`
}

var (
	configMu      sync.RWMutex
	activeConfig  Config
	activeOrigins originPolicy
)

func init() {
	SetConfig(nil)
}

func defaultPhaseDurations() PhaseDurations {
	d := game.DefaultPhaseDurations()
	return PhaseDurations{
		Thief:      d[game.PhaseNightThief],
		Cupid:      d[game.PhaseNightCupid],
		Lovers:     d[game.PhaseNightLovers],
		Werewolf:   d[game.PhaseNightWerewolf],
		Seer:       d[game.PhaseNightSeer],
		Witch:      d[game.PhaseNightWitch],
		Discussion: d[game.PhaseDayDiscussion],
		Vote:       d[game.PhaseDayVote],
	}
}

func defaultConfig() Config {
	return Config{
		Port:    ":8080",
		TCPPort: ":5000",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 4096,
		RateLimit: RateLimitConfig{
			Burst:          10,
			RefillInterval: time.Second,
		},
		Game: GameConfig{
			MinPlayers: 6,
			MaxPlayers: 16,
			Phases:     defaultPhaseDurations(),
		},
	}
}

func sanitizePhases(p PhaseDurations) PhaseDurations {
	def := defaultPhaseDurations()
	fix := func(v *time.Duration, fallback time.Duration) {
		if *v <= 0 {
			*v = fallback
		}
	}
	fix(&p.Thief, def.Thief)
	fix(&p.Cupid, def.Cupid)
	fix(&p.Lovers, def.Lovers)
	fix(&p.Werewolf, def.Werewolf)
	fix(&p.Seer, def.Seer)
	fix(&p.Witch, def.Witch)
	fix(&p.Discussion, def.Discussion)
	fix(&p.Vote, def.Vote)
	return p
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 10
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = time.Second
	}

	if cfg.Game.MinPlayers <= 0 {
		cfg.Game.MinPlayers = 6
	}
	if cfg.Game.MaxPlayers <= 0 {
		cfg.Game.MaxPlayers = 16
	}
	if cfg.Game.MaxPlayers < cfg.Game.MinPlayers {
		log.Printf("max_players %d below min_players %d; raising it", cfg.Game.MaxPlayers, cfg.Game.MinPlayers)
		cfg.Game.MaxPlayers = cfg.Game.MinPlayers
	}
	cfg.Game.Phases = sanitizePhases(cfg.Game.Phases)

	policy, origins := newOriginPolicy(cfg.AllowedOrigins)
	cfg.AllowedOrigins = origins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	activeOrigins = policy

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		sanitizeConfig(defaultConfig())
		return
	}

	sanitized := *cfg
	sanitized.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// CurrentConfig returns a copy of the configuration in effect.
func CurrentConfig() Config {
	return currentConfig()
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, falling
// back to defaults for anything unset.
func NewConfigFromEnv() (*Config, error) {
	cfg := defaultConfig()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig builds a Config from defaults, then the YAML file at path when
// path is not empty, then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Settings converts the game section into the rules a new Session uses.
func (g GameConfig) Settings() game.Settings {
	st := game.DefaultSettings()
	st.MinPlayers = g.MinPlayers
	st.MaxPlayers = g.MaxPlayers
	st.IncludeThief = g.IncludeThief
	st.Durations = map[game.Phase]time.Duration{
		game.PhaseNightThief:    g.Phases.Thief,
		game.PhaseNightCupid:    g.Phases.Cupid,
		game.PhaseNightLovers:   g.Phases.Lovers,
		game.PhaseNightWerewolf: g.Phases.Werewolf,
		game.PhaseNightSeer:     g.Phases.Seer,
		game.PhaseNightWitch:    g.Phases.Witch,
		game.PhaseDayDiscussion: g.Phases.Discussion,
		game.PhaseDayVote:       g.Phases.Vote,
	}
	return st
}
