// Package config loads service settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Event sinks.
const (
	SinkLog   = "log"
	SinkKafka = "kafka"
)

// Sale number sources.
const (
	NumbersStore = "store"
	NumbersRedis = "redis"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Sales    SalesConfig    `yaml:"sales"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type EventsConfig struct {
	Sink           string        `yaml:"sink"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	Kafka          KafkaConfig   `yaml:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type SalesConfig struct {
	NumberSource   string `yaml:"number_source"`
	NumberAttempts int    `yaml:"number_attempts"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the settings used when nothing is configured: in-memory
// storage, log sink and store-derived sale numbers.
func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Database: DatabaseConfig{Driver: DriverMemory},
		Events: EventsConfig{
			Sink:           SinkLog,
			PublishTimeout: 5 * time.Second,
			Kafka:          KafkaConfig{Topic: "sales.events"},
		},
		Sales: SalesConfig{NumberSource: NumbersStore, NumberAttempts: 5},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads the file named by SALES_CONFIG, if any, over the defaults and
// then applies environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("SALES_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return c.parse(data)
}

func (c *Config) parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set("SALES_HTTP_ADDR", &c.HTTP.Addr)
	set("SALES_DB_DRIVER", &c.Database.Driver)
	set("SALES_DB_DSN", &c.Database.DSN)
	set("SALES_REDIS_ADDR", &c.Redis.Addr)
	set("SALES_LOG_LEVEL", &c.Log.Level)

	if v := strings.TrimSpace(getenv("SALES_KAFKA_BROKERS")); v != "" {
		c.Events.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Events.Kafka.Brokers = append(c.Events.Kafka.Brokers, b)
			}
		}
	}
}

// Validate rejects unknown drivers, sinks and number sources, and settings
// those choices require.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite, DriverMySQL:
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.Events.Sink {
	case SinkLog:
	case SinkKafka:
		if len(c.Events.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("events.kafka.brokers is required for the kafka sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.sink %q", c.Events.Sink))
	}

	switch c.Sales.NumberSource {
	case NumbersStore:
	case NumbersRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis number source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sales.number_source %q", c.Sales.NumberSource))
	}

	if c.Sales.NumberAttempts < 1 {
		errs = append(errs, errors.New("sales.number_attempts must be at least 1"))
	}
	return errors.Join(errs...)
}
