package config

import "os"

const (
	EnvAPIURL    = "GROCERY_API_URL"
	EnvDBPath    = "GROCERY_DB_PATH"
	EnvRedisAddr = "GROCERY_REDIS_ADDR"
)

// parseEnv overlays cfg with non-empty environment variables.
func parseEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		EnvAPIURL:    &cfg.APIURL,
		EnvDBPath:    &cfg.DBPath,
		EnvRedisAddr: &cfg.RedisAddr,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
}
