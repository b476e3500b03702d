package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/grocerycompare/internal/flagx"
	"github.com/dmitrijs2005/grocerycompare/internal/timex"
)

// fileConfig is the on-disk shape of Config. Zero values mean "not set"
// and leave the corresponding Config field untouched.
type fileConfig struct {
	APIURL      string `json:"api_url" yaml:"api_url"`
	DBPath      string `json:"db_path" yaml:"db_path"`
	RedisAddr   string `json:"redis_addr" yaml:"redis_addr"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`

	SuggestDelay     timex.Duration `json:"suggest_delay" yaml:"suggest_delay"`
	SuggestMinLength int            `json:"suggest_min_length" yaml:"suggest_min_length"`
	SuggestCacheTTL  timex.Duration `json:"suggest_cache_ttl" yaml:"suggest_cache_ttl"`

	LogLevel   string `json:"log_level" yaml:"log_level"`
	LogBackend string `json:"log_backend" yaml:"log_backend"`
	LogFormat  string `json:"log_format" yaml:"log_format"`
}

func decodeFile(path string, fc *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// parseFile overlays cfg with the file named by -c/-config in args.
// Without such a flag it is a no-op.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	var fc fileConfig
	if err := decodeFile(path, &fc); err != nil {
		return err
	}

	setString(&cfg.APIURL, fc.APIURL)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SuggestDelay.Duration > 0 {
		cfg.SuggestDelay = fc.SuggestDelay.Duration
	}
	if fc.SuggestCacheTTL.Duration > 0 {
		cfg.SuggestCacheTTL = fc.SuggestCacheTTL.Duration
	}
	if fc.SuggestMinLength > 0 {
		cfg.SuggestMinLength = fc.SuggestMinLength
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
