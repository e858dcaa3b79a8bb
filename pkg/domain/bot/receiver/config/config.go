package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

var DefaultPath = filepath.Join("cmd/bot/etc", "app.yml")

type Config struct {
	BusinessName string `yaml:"business_name" validate:"required"`
	LogLevel     string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	HTTPPort     int    `yaml:"http_port" validate:"required,min=1,max=65535"`

	PostgreAddr    string `yaml:"postgre_addr" validate:"required_without=UseMockCatalog"`
	RedisAddr      string `yaml:"redis_addr" validate:"omitempty,hostname_port"`
	UseMockCatalog bool   `yaml:"use_mock_catalog"`

	Timezone            string        `yaml:"timezone" validate:"omitempty,timezone"`
	SessionTTL          time.Duration `yaml:"session_ttl" validate:"min=0"`
	JanitorSpec         string        `yaml:"janitor_spec"`
	CollaboratorTimeout time.Duration `yaml:"collaborator_timeout" validate:"min=0"`
	MaxSlotsShown       int           `yaml:"max_slots_shown" validate:"min=0,max=50"`

	// Secrets, from the environment.
	BotToken  string `yaml:"-"`
	ChannelID string `yaml:"-"`
}

// Location resolves Timezone; empty means the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errs.New("unknown timezone").Arg("timezone", c.Timezone).Wrap(err)
	}
	return loc, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New("failed to read config file").Arg("path", path).Wrap(err)
	}

	cfg := Config{
		BusinessName: "Delane Nails",
		LogLevel:     "info",
		SessionTTL:   30 * time.Minute,
		JanitorSpec:  "@every 1m",
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.New("failed to unmarshal YAML").Wrap(err)
	}

	// .env is optional: secrets may already be in the environment
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.New("failed to load .env").Wrap(err)
	}
	cfg.BotToken = os.Getenv("TG_TOKEN")
	cfg.ChannelID = os.Getenv("TG_CHANNEL_ID")
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.PostgreAddr = dsn
	}

	// Validate
	if err = validator.New().Struct(cfg); err != nil {
		return nil, errs.New("config validation failed").Wrap(err)
	}
	if _, err = cron.ParseStandard(cfg.JanitorSpec); err != nil {
		return nil, errs.New("config validation failed").Arg("janitor_spec", cfg.JanitorSpec).Wrap(err)
	}

	return &cfg, nil
}
