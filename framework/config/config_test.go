package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-nest/framework/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "GoNest", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Env)
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "", cfg.App.Prefix)
	assert.Equal(t, int64(1<<20), cfg.Server.BodyLimit)
	assert.True(t, cfg.Docs.Enabled)
	assert.Equal(t, "/docs/openapi.json", cfg.Docs.Path)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_PREFIX", "/api/v1")
	t.Setenv("SERVER_BODY_LIMIT", "2048")
	t.Setenv("DOCS_ENABLED", "false")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "/api/v1", cfg.App.Prefix)
	assert.Equal(t, int64(2048), cfg.Server.BodyLimit)
	assert.False(t, cfg.Docs.Enabled)
}

func TestLoad_DotEnvFile(t *testing.T) {
	cfg := config.Load("testdata/sample.env")

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "testing", cfg.App.Env)
}

func TestGet_Helpers(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	t.Setenv("SOME_BOOL", "true")
	t.Setenv("BAD_INT", "not-a-number")

	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))
	assert.Equal(t, 7, config.GetInt("MISSING_INT", 7))
	assert.Equal(t, 7, config.GetInt("BAD_INT", 7))
	assert.True(t, config.GetBool("SOME_BOOL", false))
	assert.Equal(t, "fallback", config.Get("MISSING_KEY", "fallback"))
}
