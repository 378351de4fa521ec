package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string          `yaml:"env" env:"ENV" env-default:"local"`
	Storage       StorageConfig   `yaml:"storage"`
	HTTP          HTTPConfig      `yaml:"http"`
	PublicBaseURL string          `yaml:"public_base_url" env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	AdminKey      string          `yaml:"admin_key" env:"ADMIN_KEY" env-required:"true"`
	Challenge     ChallengeConfig `yaml:"challenge"`
	Notifier      NotifierConfig  `yaml:"notifier"`
	Log           LogConfig       `yaml:"log"`
	Scheduler     SchedulerConfig `yaml:"scheduler"`
}

type StorageConfig struct {
	// Driver is "postgres" or "sqlite3".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite3"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env-default:"10s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

type ChallengeConfig struct {
	Secret string        `yaml:"secret" env:"CHALLENGE_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env-default:"10m"`
}

type NotifierConfig struct {
	// Kind is "log" or "smtp".
	Kind    string        `yaml:"kind" env:"NOTIFIER_KIND" env-default:"log"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	SMTP    SMTPConfig    `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

type LogConfig struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"30"`
}

type SchedulerConfig struct {
	PhaseWatchInterval time.Duration `yaml:"phase_watch_interval" env-default:"1m"`
}

// MustLoad reads the config or stops the process.
func MustLoad(path string) *Config {
	cfg, err := Read(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Read loads path and applies environment overrides.
func Read(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("storage.driver must be postgres or sqlite3, got %q", c.Storage.Driver)
	}

	switch c.Notifier.Kind {
	case "log":
	case "smtp":
		if c.Notifier.SMTP.Host == "" || c.Notifier.SMTP.From == "" {
			return fmt.Errorf("notifier.smtp.host and notifier.smtp.from are required for smtp")
		}
	default:
		return fmt.Errorf("notifier.kind must be log or smtp, got %q", c.Notifier.Kind)
	}

	if c.Scheduler.PhaseWatchInterval <= 0 {
		return fmt.Errorf("scheduler.phase_watch_interval must be positive")
	}

	return nil
}

// FetchPath returns the config path from the --config flag, falling back to
// the CONFIG_PATH environment variable.
func FetchPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}
