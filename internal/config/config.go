package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Preference backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:7878"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ConfigDir            string        // preferences.json and plugins/ live here
	PluginDir            string        // defaults to <ConfigDir>/plugins
	BookmarkDB           string        // sqlite file, ":memory:" for an ephemeral store
	Debounce             time.Duration // bookmark search debounce (default: 300ms)
	PluginReloadInterval time.Duration // periodic plugin reload (default: 1h)
	WatchPlugins         bool          // reload on plugin directory changes
	FuzzyThreshold       float64       // fuzzy error ratio, 0 = exact substrings only
	AllowList            []string      // optional, overrides the runner's command allow-list

	// Preferences
	PrefsBackend string // "file" | "redis"

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 1s, grows exponentially)

	AllowedHosts []string // Host headers the API answers to
	AllowedCIDRS []string // restrict the API to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // webview origins allowed to call the API
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("MRUNNER_LISTEN_ADDR", "127.0.0.1:7878"),
		ShutdownTimeout: mustDuration("MRUNNER_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MRUNNER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MRUNNER_PRETTY_LOG", true),

		// Launcher
		ConfigDir:            mustPath("MRUNNER_CONFIG_DIR", "~/.config/mrunner"),
		BookmarkDB:           getenv("MRUNNER_BOOKMARK_DB", "~/.local/share/mrunner/bookmarks.db"),
		Debounce:             mustDuration("MRUNNER_DEBOUNCE", 300*time.Millisecond),
		PluginReloadInterval: mustDuration("MRUNNER_PLUGIN_RELOAD_INTERVAL", time.Hour),
		WatchPlugins:         mustBool("MRUNNER_WATCH_PLUGINS", true),
		FuzzyThreshold:       getenvFloat("MRUNNER_FUZZY_THRESHOLD", 0.3),
		AllowList:            splitAndTrim(getenv("MRUNNER_ALLOWED_COMMANDS", "")),

		PrefsBackend: strings.ToLower(getenv("MRUNNER_PREFS_BACKEND", BackendFile)),

		// Redis settings
		RedisAddr:           getenv("MRUNNER_REDIS_ADDR", ""),
		RedisUser:           getenv("MRUNNER_REDIS_USERNAME", ""),
		RedisPassword:       getenv("MRUNNER_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("MRUNNER_REDIS_DB", 0),
		RedisDT:             mustDuration("MRUNNER_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("MRUNNER_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("MRUNNER_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("MRUNNER_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("MRUNNER_REDIS_PING_TIMEOUT", 2*time.Second),
		RedisPoolSize:       getenvInt("MRUNNER_REDIS_POOL_SIZE", 4),
		RedisConnectTimeout: mustDuration("MRUNNER_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("MRUNNER_REDIS_RETRY_INTERVAL", time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("MRUNNER_ALLOWED_HOSTS", "127.0.0.1,localhost,[::1]")),
		AllowedCIDRS: parseAllowedIPs(getenv("MRUNNER_ALLOWED_CIDRS", "127.0.0.1/32,::1/128")),
		TrustProxy:   mustBool("MRUNNER_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("MRUNNER_CORS_ORIGINS", "tauri://localhost,http://localhost:1420")),
	}
	cfg.PluginDir = mustPath("MRUNNER_PLUGIN_DIR", filepath.Join(cfg.ConfigDir, "plugins"))

	switch cfg.PrefsBackend {
	case BackendFile:
	case BackendRedis:
		if cfg.RedisAddr == "" {
			panic("❌ FATAL: MRUNNER_REDIS_ADDR is required when MRUNNER_PREFS_BACKEND=redis")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown MRUNNER_PREFS_BACKEND %q (want file or redis)", cfg.PrefsBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// mustPath expands a leading ~ and panics when the home directory cannot
// be resolved.
func mustPath(key, def string) string {
	p, err := homedir.Expand(getenv(key, def))
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Cannot expand %s: %v", key, err))
	}
	return p
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
