package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
	LogLevel string `yaml:"log_level"`

	// Store selects the datastore: "mysql" or "memory".
	Store    string `yaml:"store"`
	MySQLDSN string `yaml:"mysql_dsn"`
	// RedisAddr enables idempotency keys and the restock lock when set.
	RedisAddr string `yaml:"redis_addr"`

	Validation Validation `yaml:"validation"`
	Restock    Restock    `yaml:"restock"`
	Bulk       Bulk       `yaml:"bulk"`
	Jobs       Jobs       `yaml:"jobs"`
}

type Validation struct {
	PhoneMinDigits int `yaml:"phone_min_digits"`
}

type Restock struct {
	Threshold int `yaml:"threshold"`
	Increment int `yaml:"increment"`
}

type Bulk struct {
	Mode string `yaml:"mode"`
}

type Jobs struct {
	GraphQLURL string        `yaml:"graphql_url"`
	Timeout    time.Duration `yaml:"timeout"`

	HeartbeatSchedule string `yaml:"heartbeat_schedule"`
	RestockSchedule   string `yaml:"restock_schedule"`
	ReminderSchedule  string `yaml:"reminder_schedule"`
	ReportSchedule    string `yaml:"report_schedule"`

	HeartbeatLog string `yaml:"heartbeat_log"`
	RestockLog   string `yaml:"restock_log"`
	ReminderLog  string `yaml:"reminder_log"`
	ReportLog    string `yaml:"report_log"`

	ReminderWindow time.Duration `yaml:"reminder_window"`
}

func Default() Config {
	return Config{
		HTTPAddr: ":8000",
		GRPCAddr: ":50051",
		LogLevel: "info",
		Store:    "mysql",
		MySQLDSN: "root:root@tcp(localhost:3306)/crm?parseTime=true&loc=UTC",
		Validation: Validation{
			PhoneMinDigits: 7,
		},
		Restock: Restock{
			Threshold: 10,
			Increment: 10,
		},
		Bulk: Bulk{
			Mode: "skip",
		},
		Jobs: Jobs{
			GraphQLURL:        "http://localhost:8000/graphql",
			Timeout:           5 * time.Second,
			HeartbeatSchedule: "*/5 * * * *",
			RestockSchedule:   "0 */12 * * *",
			ReminderSchedule:  "0 8 * * *",
			ReportSchedule:    "0 6 * * 1",
			HeartbeatLog:      "/tmp/crm_heartbeat_log.txt",
			RestockLog:        "/tmp/low_stock_updates_log.txt",
			ReminderLog:       "/tmp/order_reminders_log.txt",
			ReportLog:         "/tmp/crm_report_log.txt",
			ReminderWindow:    7 * 24 * time.Hour,
		},
	}
}

// Load reads defaults, then the YAML file at path (if any), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = env("CRM_HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = env("CRM_GRPC_ADDR", c.GRPCAddr)
	c.LogLevel = env("CRM_LOG_LEVEL", c.LogLevel)
	c.Store = env("CRM_STORE", c.Store)
	c.MySQLDSN = env("MYSQL_DSN", c.MySQLDSN)
	c.RedisAddr = env("REDIS_ADDR", c.RedisAddr)
	c.Bulk.Mode = env("CRM_BULK_MODE", c.Bulk.Mode)
	c.Jobs.GraphQLURL = env("CRM_GRAPHQL_URL", c.Jobs.GraphQLURL)

	for name, dst := range map[string]*int{
		"CRM_RESTOCK_THRESHOLD": &c.Restock.Threshold,
		"CRM_RESTOCK_INCREMENT": &c.Restock.Increment,
		"CRM_PHONE_MIN_DIGITS":  &c.Validation.PhoneMinDigits,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Store != "mysql" && c.Store != "memory" {
		errs = append(errs, fmt.Errorf("store must be mysql or memory, got %q", c.Store))
	}
	if c.Store == "mysql" && c.MySQLDSN == "" {
		errs = append(errs, errors.New("mysql_dsn is required for the mysql store"))
	}
	if c.Restock.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("restock.threshold must be positive, got %d", c.Restock.Threshold))
	}
	if c.Restock.Increment <= 0 {
		errs = append(errs, fmt.Errorf("restock.increment must be positive, got %d", c.Restock.Increment))
	}
	if c.Validation.PhoneMinDigits < 1 || c.Validation.PhoneMinDigits > 15 {
		errs = append(errs, fmt.Errorf("validation.phone_min_digits must be within 1..15, got %d", c.Validation.PhoneMinDigits))
	}
	if c.Bulk.Mode != "skip" && c.Bulk.Mode != "abort" {
		errs = append(errs, fmt.Errorf("bulk.mode must be skip or abort, got %q", c.Bulk.Mode))
	}
	if c.Jobs.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("jobs.timeout must be positive, got %s", c.Jobs.Timeout))
	}
	return errors.Join(errs...)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
