package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime tunable. Values come from the environment,
// optionally seeded from a .env file next to the binary.
type Config struct {
	BotToken  string `env:"BOT_TOKEN"`
	ChannelID string `env:"CHANNEL_ID"`

	PersonalCooldown time.Duration `env:"PERSONAL_COOLDOWN" envDefault:"5m"`
	GlobalCooldown   time.Duration `env:"GLOBAL_COOLDOWN" envDefault:"1m"`
	GatherCooldown   time.Duration `env:"GATHER_COOLDOWN" envDefault:"10m"`
	RoundTimeout     time.Duration `env:"ROUND_TIMEOUT" envDefault:"30s"`
	DispatchDelay    time.Duration `env:"DISPATCH_DELAY" envDefault:"2s"`
	DedupeWindow     time.Duration `env:"DEDUPE_WINDOW" envDefault:"2s"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	StorePath    string `env:"STORE_PATH" envDefault:"players.json"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisKey     string `env:"REDIS_KEY" envDefault:"fgb:document"`

	AwardURL    string `env:"AWARD_URL"`
	AwardSecret string `env:"AWARD_SECRET"`
}

// LoadConfig reads .env if present, then parses the environment.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
