package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes everything the process needs at startup. Values come
// from an optional YAML file; environment variables override the file so
// deployments can keep secrets out of it.
type Config struct {
	BotToken   string  `yaml:"bot_token"`
	AdminID    int64   `yaml:"admin_id"`
	DBPath     string  `yaml:"db_path"`
	ListenAddr string  `yaml:"listen_addr"`
	Backend    Backend `yaml:"backend"`

	// Timezone used for button labels and offer times shown to users.
	Timezone string `yaml:"timezone"`
	// Directory with celebratory GIFs sent after a finalized request.
	MediaDir string `yaml:"media_dir"`
	// Phone numbers without this prefix are treated as foreign during
	// onboarding.
	LocalPhonePrefix string `yaml:"local_phone_prefix"`
}

type Backend struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads the YAML file at path when it exists, applies env overrides,
// fills defaults and validates. An absent file is fine, env-only setups are
// supported.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required (BOT_TOKEN or bot_token in %s)", path)
	}
	if cfg.AdminID == 0 {
		return nil, fmt.Errorf("admin id is required (ADMIN_ID or admin_id in %s)", path)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// Location resolves the configured timezone. Load validated it already.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("ADMIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AdminID = id
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("BACKEND_USERNAME"); v != "" {
		cfg.Backend.Username = v
	}
	if v := os.Getenv("BACKEND_PASSWORD"); v != "" {
		cfg.Backend.Password = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("MEDIA_DIR"); v != "" {
		cfg.MediaDir = v
	}
	if v := os.Getenv("LOCAL_PHONE_PREFIX"); v != "" {
		cfg.LocalPhonePrefix = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DBPath == "" {
		cfg.DBPath = "volunteer.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":5001"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Chisinau"
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "res/gifs"
	}
	if cfg.LocalPhonePrefix == "" {
		cfg.LocalPhonePrefix = "+373"
	}
}
