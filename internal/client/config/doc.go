// Package config loads runtime configuration for the grocery CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Defaults declared in struct tags (creasty/defaults).
//  2. Optional config file given with -c or -config. Files ending in
//     .yaml or .yml are decoded as YAML, everything else as JSON.
//  3. Environment: GROCERY_API_URL, GROCERY_DB_PATH, GROCERY_REDIS_ADDR.
//  4. Command-line flags:
//
//	-a string   base URL of the price backend
//	-d string   path to the local SQLite database
//	-i int      online status check interval (seconds)
//	-l string   log level (debug, info, warn, error)
//	-m string   address to expose Prometheus metrics on
//
// Intervals in files use timex.Duration, so both "300ms" and integer
// nanoseconds are accepted:
//
//	api_url: http://127.0.0.1:5000
//	suggest_delay: 300ms
//	log_backend: zerolog
package config
