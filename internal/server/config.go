// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat service.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	defaultPort           = ":8080"
	defaultOrigin         = "http://localhost:8080"
	defaultMaxMessageSize = 512
	defaultBurst          = 5
	defaultRefillInterval = time.Second
	defaultSendBuffer     = 256
	defaultShutdown       = 10 * time.Second
)

var validate = validator.New()

// Config holds the server configuration settings including security controls.
type Config struct {
	Port                    string        `env:"SERVER_PORT,default=:8080" validate:"required"`
	RawAllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	AllowedOrigins          []string      `validate:"-"`
	MaxMessageSize          int64         `env:"MAX_MESSAGE_SIZE,default=512" validate:"gt=0"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST,default=5" validate:"gt=0"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s" validate:"gt=0"`
	SendBufferSize          int           `env:"SEND_BUFFER_SIZE,default=256" validate:"gt=0"`
	EnforceRoomMembership   bool          `env:"ENFORCE_ROOM_MEMBERSHIP,default=false"`
	JWTSecret               string        `env:"JWT_SECRET,required=true" validate:"required,min=16"`
	JWTIssuer               string        `env:"JWT_ISSUER,default=roomchat" validate:"required"`
	LogLevel                string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
}

// NewConfig creates a Config instance populated with default values for all
// settings. JWTSecret has no default and must be set by the caller.
func NewConfig() Config {
	return Config{
		Port:                    defaultPort,
		RawAllowedOrigins:       defaultOrigin,
		AllowedOrigins:          []string{defaultOrigin},
		MaxMessageSize:          defaultMaxMessageSize,
		RateLimitBurst:          defaultBurst,
		RateLimitRefillInterval: defaultRefillInterval,
		SendBufferSize:          defaultSendBuffer,
		JWTIssuer:               "roomchat",
		LogLevel:                "INFO",
		ShutdownTimeout:         defaultShutdown,
	}
}

// LoadConfig reads the optional dotenv files (".env" when none is given), then
// the process environment, and returns a sanitized, validated Config.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading dotenv: %w", err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding environment: %w", err)
	}
	cfg.AllowedOrigins = parseOrigins(cfg.RawAllowedOrigins)

	cfg = sanitizeConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultBurst
	}

	if cfg.RateLimitRefillInterval <= 0 {
		cfg.RateLimitRefillInterval = defaultRefillInterval
	}

	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBuffer
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdown
	}

	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}

	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

func parseOrigins(origins string) []string {
	if strings.TrimSpace(origins) == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
