package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
// Embed or extend it in your app's own AppConfig.
type Config struct {
	App    AppConfig
	Server ServerConfig
	Docs   DocsConfig
}

type AppConfig struct {
	Name   string
	Env    string // local | production | testing
	Debug  bool
	Port   string
	Prefix string // global route prefix, e.g. "/api/v1"
}

type ServerConfig struct {
	BodyLimit int64 // max request body in bytes, 0 disables the cap
}

type DocsConfig struct {
	Enabled bool
	Path    string // where the generated OpenAPI document is served
	Title   string
	Version string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:   env("APP_NAME", "GoNest"),
			Env:    env("APP_ENV", "local"),
			Debug:  envBool("APP_DEBUG", true),
			Port:   env("APP_PORT", "8000"),
			Prefix: env("APP_PREFIX", ""),
		},
		Server: ServerConfig{
			BodyLimit: envInt64("SERVER_BODY_LIMIT", 1<<20),
		},
		Docs: DocsConfig{
			Enabled: envBool("DOCS_ENABLED", true),
			Path:    env("DOCS_PATH", "/docs/openapi.json"),
			Title:   env("DOCS_TITLE", env("APP_NAME", "GoNest")),
			Version: env("DOCS_VERSION", "0.1.0"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
