package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	MinDashboardPoll = 30 * time.Second
	MaxDashboardPoll = 60 * time.Second
)

// Config keys mirror the environment variable names, lower-cased.
type Config struct {
	Port        string `koanf:"port"`
	StoreDriver string `koanf:"store_driver"`

	DatabaseURL string `koanf:"database_url"`
	DBHost      string `koanf:"db_host"`
	DBUser      string `koanf:"db_user"`
	DBPassword  string `koanf:"db_password"`
	DBName      string `koanf:"db_name"`
	DBPort      string `koanf:"db_port"`

	JWTSecret string `koanf:"jwt_secret"`

	MediaBucketURL     string `koanf:"media_bucket_url"`
	MediaPublicBaseURL string `koanf:"media_public_base_url"`
	LocalStorePath     string `koanf:"local_store_path"`

	DashboardPollInterval time.Duration `koanf:"dashboard_poll_interval"`
	Timezone              string        `koanf:"timezone"`

	LogLevel  string `koanf:"log_level"`
	LogPretty bool   `koanf:"log_pretty"`

	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

func defaults() map[string]any {
	return map[string]any{
		"port":                    "3000",
		"store_driver":            DriverPostgres,
		"db_port":                 "5432",
		"media_bucket_url":        "./media",
		"media_public_base_url":   "/media",
		"local_store_path":        "protonshop_local.db",
		"dashboard_poll_interval": "60s",
		"timezone":                "America/Bogota",
		"log_level":               "info",
		"log_pretty":              false,
	}
}

// Load reads .env (if any), then config.yaml (if any), then the process
// environment. Later sources win.
func Load(configPaths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	k := koanf.New(".")
	for key, v := range defaults() {
		if err := k.Set(key, v); err != nil {
			return nil, errors.Wrapf(err, "default %s", key)
		}
	}

	if len(configPaths) == 0 {
		configPaths = []string{"config.yaml"}
	}
	for _, p := range configPaths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s", p)
		}
		break
	}

	known := defaults()
	for _, key := range configKeys() {
		known[key] = nil
	}
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, v string) (string, any) {
			key = strings.ToLower(key)
			if _, ok := known[key]; !ok {
				return "", nil
			}
			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	cfg := new(Config)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

func configKeys() []string {
	return []string{
		"database_url", "db_host", "db_user", "db_password", "db_name",
		"jwt_secret", "admin_email", "admin_password",
	}
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.DashboardPollInterval = ClampPollInterval(c.DashboardPollInterval)
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" && c.DBHost == "" {
			return errors.New("DATABASE_URL or DB_HOST is required for the postgres store")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return errors.Wrapf(err, "invalid TIMEZONE %q", c.Timezone)
	}
	return nil
}

// Location resolves Timezone; Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ClampPollInterval keeps the dashboard refresh between 30 and 60 seconds.
func ClampPollInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return MaxDashboardPoll
	case d < MinDashboardPoll:
		return MinDashboardPoll
	case d > MaxDashboardPoll:
		return MaxDashboardPoll
	}
	return d
}
