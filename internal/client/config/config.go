package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the grocery CLI.
type Config struct {
	APIURL      string `default:"http://127.0.0.1:5000" validate:"required,url"`
	DBPath      string `default:"grocery.db" validate:"required"`
	RedisAddr   string
	MetricsAddr string

	OnlineCheckInterval time.Duration `default:"3s" validate:"gt=0"`
	RequestTimeout      time.Duration `default:"30s" validate:"gt=0"`

	SuggestDelay     time.Duration `default:"300ms" validate:"gte=0"`
	SuggestMinLength int           `default:"2" validate:"min=1"`
	SuggestCacheTTL  time.Duration `default:"30s" validate:"gte=0"`

	LogLevel   string `default:"info" validate:"oneof=debug info warn error"`
	LogBackend string `default:"slog" validate:"oneof=slog zerolog"`
	LogFormat  string `default:"text" validate:"oneof=text json"`
}

// LoadDefaults resets c to the built-in defaults.
func (c *Config) LoadDefaults() error {
	*c = Config{}
	return defaults.Set(c)
}

// Validate reports the first invalid field, if any.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the optional config file,
// the environment and args (usually os.Args[1:]), then validates it.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.LoadDefaults(); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
