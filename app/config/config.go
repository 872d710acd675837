package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Base url of the admin REST API, all endpoint paths are resolved against it
	BaseURL string `yaml:"base_url" env:"BASE_URL" example:"http://127.0.0.1:8000/api/v1/" validate:"required,url"`
	// Directory holding the persisted session, sync timestamp and exports
	StateDir  string    `yaml:"state_dir" env:"STATE_DIR" example:"~/.config/adminctl" validate:"required"`
	HTTP      HTTP      `yaml:"http" envPrefix:"HTTP_"`
	Session   Session   `yaml:"session" envPrefix:"SESSION_"`
	Sync      Sync      `yaml:"sync" envPrefix:"SYNC_"`
	Query     Query     `yaml:"query" envPrefix:"QUERY_"`
	Log       Log       `yaml:"log" envPrefix:"LOG_"`
	Sentry    Sentry    `yaml:"sentry" envPrefix:"SENTRY_"`
	Telemetry Telemetry `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	DevServer DevServer `yaml:"devserver" envPrefix:"DEVSERVER_"`
}

type HTTP struct {
	// Request timeout in seconds
	Timeout int `yaml:"timeout" env:"TIMEOUT" example:"50" validate:"gte=1"`
	// Total attempts for idempotent GET requests, 1 disables retries
	RetryAttempts int `yaml:"retry_attempts" env:"RETRY_ATTEMPTS" example:"3" validate:"gte=1,lte=10"`
	// Base retry delay in milliseconds, grows exponentially with jitter
	RetryDelay int `yaml:"retry_delay" env:"RETRY_DELAY" example:"200" validate:"gte=0"`
}

type Session struct {
	// Lifetime of the persisted token in hours
	TokenTTL int `yaml:"token_ttl" env:"TOKEN_TTL" example:"168" validate:"gte=1"`
}

type Sync struct {
	// Permission sync interval in seconds
	Interval int `yaml:"interval" env:"INTERVAL" example:"60" validate:"gte=1"`
	// Seconds after which an un-synced permission snapshot evaluates as unknown, 0 disables
	MaxStaleness int `yaml:"max_staleness" env:"MAX_STALENESS" example:"0" validate:"gte=0"`
}

type Query struct {
	// How long fetched lists stay cached, in seconds
	StaleTime int `yaml:"stale_time" env:"STALE_TIME" example:"30" validate:"gte=0"`
}

type Log struct {
	// Minimum log level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL" example:"info" validate:"oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram" envPrefix:"TELEGRAM_"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" env:"TOKEN" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" env:"CHAT_ID" example:"1001234567890"`
}

type Sentry struct {
	DSN string `yaml:"dsn" env:"DSN" example:"https://a1b2c3d4e5f6g7h8a1b2c3d4e5f6g7h8@o123456.ingest.sentry.io/1234567"`
}

type Telemetry struct {
	// Whether to enable opentelemetry logs/metrics/traces export
	Enabled bool `yaml:"enabled" env:"ENABLED" example:"false"`
	// Service name for telemetry and logs
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" example:"adminctl" validate:"required"`
}

type DevServer struct {
	// Port of the development backend stub
	HttpPort int `yaml:"http_port" env:"HTTP_PORT" example:"8000" validate:"gte=1,lte=65535"`
	// JWT secret of the stub, generate it with `openssl rand -base64 32`
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET" validate:"required"`
	// Password of the seeded stub accounts
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD" example:"password" validate:"required,min=8"`
}

const envPrefix = "ADMINCTL_"

// Load reads the config file (missing file is fine), applies ADMINCTL_* env
// overrides, fills defaults and validates the result.
func Load(configPath string) (*Config, error) {
	return load(configPath, nil)
}

// LoadDevServer is Load for the backend stub, which may run before any
// base url is configured: it defaults base_url to its own address.
func LoadDevServer(configPath string) (*Config, error) {
	return load(configPath, func(cfg *Config) {
		if cfg.BaseURL == "" {
			cfg.BaseURL = fmt.Sprintf("http://127.0.0.1:%d/api/v1/", cfg.DevServer.HttpPort)
		}
	})
}

func load(configPath string, fill func(cfg *Config)) (*Config, error) {
	var result Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, oops.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &result); err != nil {
				return nil, oops.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(&result, env.Options{ //nolint:exhaustruct
		Prefix: envPrefix,
	}); err != nil {
		return nil, oops.Errorf("failed to parse environment variables: %w", err)
	}

	applyDefaults(&result)
	if fill != nil {
		fill(&result)
	}

	if err := Validate(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func applyDefaults(result *Config) {
	if result.StateDir == "" {
		result.StateDir = defaultStateDir()
	}
	if result.HTTP.Timeout == 0 {
		result.HTTP.Timeout = 50
	}
	if result.HTTP.RetryAttempts == 0 {
		result.HTTP.RetryAttempts = 3
	}
	if result.HTTP.RetryDelay == 0 {
		result.HTTP.RetryDelay = 200
	}
	if result.Session.TokenTTL == 0 {
		result.Session.TokenTTL = 7 * 24
	}
	if result.Sync.Interval == 0 {
		result.Sync.Interval = 60
	}
	if result.Query.StaleTime == 0 {
		result.Query.StaleTime = 30
	}
	if result.Log.Level == "" {
		result.Log.Level = "info"
	}
	if result.Telemetry.ServiceName == "" {
		result.Telemetry.ServiceName = "adminctl"
	}
	if result.DevServer.HttpPort == 0 {
		result.DevServer.HttpPort = 8000
	}
	if result.DevServer.JWTSecret == "" {
		result.DevServer.JWTSecret = "adminctl-devserver-secret"
	}
	if result.DevServer.AdminPassword == "" {
		result.DevServer.AdminPassword = "password"
	}
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".adminctl"
	}

	return filepath.Join(dir, "adminctl")
}

// Validate checks cfg and reports every invalid field in one error.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(yamlTagName)

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return oops.Errorf("failed to validate config: %w", err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		problems = append(problems, "  - "+describeField(fieldErr))
	}

	return oops.
		With("fields", problems).
		Errorf("invalid configuration:\n%s", strings.Join(problems, "\n"))
}

func yamlTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}

	return name
}

func describeField(fieldErr validator.FieldError) string {
	path := strings.TrimPrefix(fieldErr.Namespace(), "Config.")

	switch fieldErr.Tag() {
	case "required":
		return path + ": is required"
	case "url":
		return path + ": must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", path, fieldErr.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", path, fieldErr.Param())
	case "lte":
		return fmt.Sprintf("%s: must be at most %s", path, fieldErr.Param())
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", path, fieldErr.Param())
	default:
		return fmt.Sprintf("%s: failed on %s", path, fieldErr.Tag())
	}
}
