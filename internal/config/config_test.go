package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("", envLookup(map[string]string{"STORE_BACKEND": "memory"}))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout.Duration)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.HierarchyCacheTTL.Duration)
	assert.Equal(t, 4, cfg.Catalog.FanOut)
	assert.Equal(t, []string{"iphone"}, cfg.Catalog.GenerationSubcategories)
	assert.Equal(t, "admin", cfg.Auth.AdminRole)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	cfg, err := LoadFrom("", envLookup(map[string]string{
		"PORT":                     "9090",
		"STORE_BACKEND":            "Postgres",
		"DATABASE_URL":             "postgres://localhost/storefront",
		"REDIS_ADDR":               "redis://cache:6379",
		"REDIS_DB":                 "2",
		"MINIO_USE_SSL":            "true",
		"REQUEST_TIMEOUT":          "5s",
		"HIERARCHY_CACHE_TTL":      "1m",
		"GENERATION_SUBCATEGORIES": "iphone, ipad ,",
		"GENERATION_TOKENS":        "18,17",
		"CORS_ALLOW_ORIGINS":       "https://shop.example.com",
	}))

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "redis://cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.Minio.UseSSL)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout.Duration)
	assert.Equal(t, time.Minute, cfg.Catalog.HierarchyCacheTTL.Duration)
	assert.Equal(t, []string{"iphone", "ipad"}, cfg.Catalog.GenerationSubcategories)
	assert.Equal(t, []string{"18", "17"}, cfg.Catalog.GenerationTokens)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowOrigins)
}

func TestLoadFrom_InvalidValuesKeepDefaults(t *testing.T) {
	cfg, err := LoadFrom("", envLookup(map[string]string{
		"STORE_BACKEND":       "memory",
		"PORT":                "eighty",
		"REQUEST_TIMEOUT":     "soon",
		"HIERARCHY_CACHE_TTL": "-5m",
		"MINIO_USE_SSL":       "maybe",
	}))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout.Duration)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.HierarchyCacheTTL.Duration)
	assert.False(t, cfg.Minio.UseSSL)
}

func TestLoadFrom_TOMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.toml")
	contents := `
[server]
port = 7000
request_timeout = "2s"

[store]
backend = "memory"

[catalog]
hierarchy_refresh_interval = "10m"
generation_subcategories = ["iphone", "galaxy"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadFrom(path, envLookup(map[string]string{"PORT": "7001"}))

	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout.Duration)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.HierarchyRefresh.Duration)
	assert.Equal(t, []string{"iphone", "galaxy"}, cfg.Catalog.GenerationSubcategories)
	assert.Equal(t, 15*time.Minute, cfg.Catalog.ProductCacheTTL.Duration)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{"postgres without url", "", map[string]string{}},
		{"unknown backend", "", map[string]string{"STORE_BACKEND": "mongo"}},
		{"port out of range", "", map[string]string{"STORE_BACKEND": "memory", "PORT": "70000"}},
		{"missing config file", filepath.Join(os.TempDir(), "does-not-exist.toml"), map[string]string{"STORE_BACKEND": "memory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.path, envLookup(tt.env))
			assert.Error(t, err)
		})
	}
}
