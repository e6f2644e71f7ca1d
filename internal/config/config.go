// Package config loads the Habit League settings from a YAML file, a .env
// file and HABIT_LEAGUE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix   = "HABIT_LEAGUE"
	DefaultPath = "~/.habitleague/config.yaml"

	SourceAPI      = "api"
	SourcePostgres = "postgres"
	SourceMemory   = "memory"
)

type APIConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token" mapstructure:"token"`
	UserID  string `yaml:"user_id" mapstructure:"user_id"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
}

type DatabaseConfig struct {
	URL    string `yaml:"url" mapstructure:"url"`
	Driver string `yaml:"driver" mapstructure:"driver"`
	Schema string `yaml:"schema" mapstructure:"schema"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	HabitTTL string `yaml:"habit_ttl" mapstructure:"habit_ttl"`
}

type RateLimitConfig struct {
	Requests int `yaml:"requests" mapstructure:"requests"`
	// Writes caps status advances per window, separately from Requests.
	Writes int    `yaml:"writes" mapstructure:"writes"`
	Window string `yaml:"window" mapstructure:"window"`
}

type Config struct {
	// Source selects where habits come from: api, postgres or memory.
	Source string    `yaml:"source" mapstructure:"source"`
	API    APIConfig `yaml:"api" mapstructure:"api"`

	Listen string `yaml:"listen" mapstructure:"listen"`

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start" mapstructure:"week_start"`

	// Timezone is the IANA zone that decides what "today" is.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// RefreshCron is a standard 5-field cron schedule for background
	// refreshes of live sessions. Empty disables them.
	RefreshCron string `yaml:"refresh" mapstructure:"refresh"`
	SessionTTL  string `yaml:"session_ttl" mapstructure:"session_ttl"`

	MaxPerDay int `yaml:"max_per_day" mapstructure:"max_per_day"`

	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Redis     RedisConfig     `yaml:"redis" mapstructure:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

func Default() *Config {
	return &Config{
		Source: SourceAPI,
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "10s",
		},
		Listen:      "127.0.0.1:8090",
		WeekStart:   "sunday",
		Timezone:    "UTC",
		RefreshCron: "*/5 * * * *",
		SessionTTL:  "30m",
		MaxPerDay:   3,
		Database: DatabaseConfig{
			Driver: "pgx",
			Schema: "public",
		},
		Redis: RedisConfig{
			HabitTTL: "30s",
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Writes:   30,
			Window:   "1m",
		},
	}
}

// Normalize fills zero values with defaults and folds enumerations to their
// canonical spelling, so partially written files still behave.
func (c *Config) Normalize() {
	def := Default()

	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	switch c.Source {
	case SourceAPI, SourcePostgres, SourceMemory:
	default:
		c.Source = def.Source
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = def.API.Timeout
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}

	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = def.WeekStart
	}

	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.SessionTTL == "" {
		c.SessionTTL = def.SessionTTL
	}
	if c.MaxPerDay < 0 {
		c.MaxPerDay = 0
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.Schema == "" {
		c.Database.Schema = def.Database.Schema
	}
	if c.Redis.HabitTTL == "" {
		c.Redis.HabitTTL = def.Redis.HabitTTL
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = def.RateLimit.Requests
	}
	if c.RateLimit.Writes <= 0 {
		c.RateLimit.Writes = def.RateLimit.Writes
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = def.RateLimit.Window
	}
}

// Validate reports settings that cannot be repaired by Normalize.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", c.RefreshCron, err)
		}
	}
	for name, v := range map[string]string{
		"api.timeout":       c.API.Timeout,
		"session_ttl":       c.SessionTTL,
		"redis.habit_ttl":   c.Redis.HabitTTL,
		"rate_limit.window": c.RateLimit.Window,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	if c.Source == SourcePostgres && c.Database.URL == "" {
		return errors.New("database.url is required when source is postgres")
	}
	return nil
}

func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) APITimeout() time.Duration {
	return duration(c.API.Timeout, 10*time.Second)
}

func (c *Config) SessionTTLDuration() time.Duration {
	return duration(c.SessionTTL, 30*time.Minute)
}

func (c *Config) HabitTTL() time.Duration {
	return duration(c.Redis.HabitTTL, 30*time.Second)
}

func (c *Config) RateWindow() time.Duration {
	return duration(c.RateLimit.Window, time.Minute)
}

func duration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ResolvePath expands ~ in path, defaulting to HABIT_LEAGUE_CONFIG and then
// DefaultPath.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}
	return homedir.Expand(path)
}

// Load reads the configuration at path. On first run the file does not exist
// yet, so the defaults are written there first. A .env file in the working
// directory and HABIT_LEAGUE_* variables override the file, with nested keys
// joined by underscores (HABIT_LEAGUE_REDIS_ADDR).
func Load(path string) (*Config, error) {
	path, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Save(path, Default()); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// setDefaults registers every key, which is what lets AutomaticEnv reach
// keys the file leaves out.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source", d.Source)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.user_id", d.API.UserID)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("week_start", d.WeekStart)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("refresh", d.RefreshCron)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("max_per_day", d.MaxPerDay)
	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.schema", d.Database.Schema)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.habit_ttl", d.Redis.HabitTTL)
	v.SetDefault("rate_limit.requests", d.RateLimit.Requests)
	v.SetDefault("rate_limit.writes", d.RateLimit.Writes)
	v.SetDefault("rate_limit.window", d.RateLimit.Window)
}

// Save writes cfg as YAML through a temp file and rename, with 0600
// permissions since the file may hold a token.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".habitleague-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
