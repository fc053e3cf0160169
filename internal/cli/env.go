package cli

import (
	"os"
	"strings"
)

// Environment variables that provide flag defaults.
const (
	EnvSettings = "LORAMGR_SETTINGS"
	EnvAddr     = "LORAMGR_ADDR"
	EnvAssets   = "LORAMGR_ASSETS"
	EnvLogLevel = "LORAMGR_LOG_LEVEL"
	EnvLogFile  = "LORAMGR_LOG_FILE"
	EnvWatch    = "LORAMGR_WATCH"
)

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}
