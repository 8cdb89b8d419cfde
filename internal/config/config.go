package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "ATTENDANCE_"

type Config struct {
	Env string `toml:"env" env:"ENV"` // "dev" | "prod"

	HTTP      HTTPConfig      `toml:"http"`
	GRPC      GRPCConfig      `toml:"grpc"`
	DB        DBConfig        `toml:"db"`
	NATS      NATSConfig      `toml:"nats"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

type HTTPConfig struct {
	Addr string `toml:"addr" env:"HTTP_ADDR"`
}

type GRPCConfig struct {
	// Addr of the health service; empty disables it.
	Addr string `toml:"addr" env:"GRPC_ADDR"`
}

type DBConfig struct {
	Driver         string        `toml:"driver" env:"DB_DRIVER"` // "sqlite" | "postgres"
	Path           string        `toml:"path" env:"DB_PATH"`
	URL            string        `toml:"url" env:"DATABASE_URL"`
	MaxOpenConns   int           `toml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnectTimeout time.Duration `toml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
}

type NATSConfig struct {
	URL             string        `toml:"url" env:"NATS_URL"`
	ScanSubject     string        `toml:"scan_subject" env:"SCAN_SUBJECT"`
	FeedbackSubject string        `toml:"feedback_subject" env:"FEEDBACK_SUBJECT"`
	Queue           string        `toml:"queue" env:"NATS_QUEUE"`
	ReconnectWait   time.Duration `toml:"reconnect_wait" env:"NATS_RECONNECT_WAIT"`
}

type PipelineConfig struct {
	Workers            int           `toml:"workers" env:"WORKERS"`
	StoreTimeout       time.Duration `toml:"store_timeout" env:"STORE_TIMEOUT"`
	UnknownStatePolicy string        `toml:"unknown_state_policy" env:"UNKNOWN_STATE_POLICY"`
	ProbeInterval      time.Duration `toml:"probe_interval" env:"PROBE_INTERVAL"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"` // "text" | "json"
}

type TelemetryConfig struct {
	// OTLPEndpoint enables tracing when set, e.g. "localhost:4318".
	OTLPEndpoint string `toml:"otlp_endpoint" env:"OTEL_ENDPOINT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env:  "dev",
		HTTP: HTTPConfig{Addr: ":8080"},
		DB: DBConfig{
			Driver:         "sqlite",
			Path:           "./data/attendance.db",
			MaxOpenConns:   25,
			ConnectTimeout: 10 * time.Second,
		},
		NATS: NATSConfig{
			URL:             "nats://127.0.0.1:4222",
			ScanSubject:     "attendance.scan",
			FeedbackSubject: "attendance.feedback",
			ReconnectWait:   2 * time.Second,
		},
		Pipeline: PipelineConfig{
			Workers:            8,
			StoreTimeout:       5 * time.Second,
			UnknownStatePolicy: "permissive",
			ProbeInterval:      15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the optional TOML file at
// path, then ATTENDANCE_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if c.Env != "dev" && c.Env != "prod" {
		errs = append(errs, fmt.Errorf("env must be dev or prod, got %q", c.Env))
	}

	switch c.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(c.DB.Path) == "" {
			errs = append(errs, errors.New("db path is required for sqlite"))
		}
	case "postgres":
		if strings.TrimSpace(c.DB.URL) == "" {
			errs = append(errs, errors.New("database url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q", c.DB.Driver))
	}
	if c.DB.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("db connect timeout must be positive"))
	}

	if strings.TrimSpace(c.NATS.URL) == "" {
		errs = append(errs, errors.New("nats url is required"))
	}
	if strings.TrimSpace(c.NATS.ScanSubject) == "" {
		errs = append(errs, errors.New("scan subject is required"))
	}
	if strings.TrimSpace(c.NATS.FeedbackSubject) == "" {
		errs = append(errs, errors.New("feedback subject is required"))
	}
	if c.NATS.ScanSubject == c.NATS.FeedbackSubject {
		errs = append(errs, errors.New("scan and feedback subjects must differ"))
	}

	if c.Pipeline.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Pipeline.StoreTimeout <= 0 {
		errs = append(errs, errors.New("store timeout must be positive"))
	}
	if c.Pipeline.ProbeInterval <= 0 {
		errs = append(errs, errors.New("probe interval must be positive"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Pipeline.UnknownStatePolicy)) {
	case "", "permissive", "strict":
	default:
		errs = append(errs, fmt.Errorf("unknown state policy %q", c.Pipeline.UnknownStatePolicy))
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
