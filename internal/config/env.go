package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvHome         = "WISHBOARD_HOME"
	EnvEndpointURL  = "WISHBOARD_ENDPOINT_URL"
	EnvTransport    = "WISHBOARD_TRANSPORT"
	EnvTimeout      = "WISHBOARD_TIMEOUT"
	EnvRefresh      = "WISHBOARD_REFRESH_INTERVAL"
	EnvLocale       = "WISHBOARD_LOCALE"
	EnvAddr         = "WISHBOARD_ADDR"
	EnvPort         = "PORT"
	EnvLogLevel     = "WISHBOARD_LOG_LEVEL"
	EnvLogFormat    = "WISHBOARD_LOG_FORMAT"
	EnvLogFile      = "WISHBOARD_LOG_FILE"
	EnvMetrics      = "WISHBOARD_METRICS"
	EnvAllowOrigins = "WISHBOARD_ALLOWED_ORIGINS"
)

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment without overriding variables already set. A missing
// file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := godotenv.Read(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides cfg with values from the environment. Values that do not
// parse are ignored.
func ApplyEnv(cfg *Config, lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv(EnvEndpointURL); ok && v != "" {
		cfg.Endpoint.URL = v
	}
	if v, ok := lookupEnv(EnvTransport); ok && v != "" {
		cfg.Endpoint.Transport = strings.ToLower(v)
	}
	if d, ok := lookupDuration(lookupEnv, EnvTimeout); ok {
		cfg.Endpoint.Timeout = d
	}
	if d, ok := lookupDuration(lookupEnv, EnvRefresh); ok {
		cfg.Widget.RefreshInterval = d
	}
	if v, ok := lookupEnv(EnvLocale); ok && v != "" {
		cfg.Widget.Locale = v
	}
	if v, ok := lookupEnv(EnvPort); ok && v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v, ok := lookupEnv(EnvAddr); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookupEnv(EnvMetrics); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.Metrics = b
		}
	}
	if v, ok := lookupEnv(EnvAllowOrigins); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvLogFile); ok {
		cfg.Logging.File = v
	}
}

func lookupDuration(lookupEnv func(string) (string, bool), key string) (time.Duration, bool) {
	v, ok := lookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	// Bare integers are seconds.
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
