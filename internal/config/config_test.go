package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.True(t, cfg.MigrateOnStart)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_host: db.internal
db_name: ledger
server_port: "8080"
environment: development
db_conn_max_lifetime: 90s
cors_allowed_origins:
  - http://localhost:5173
`), 0o600))

	cfg, err := LoadFrom(path, envMap(map[string]string{
		"SERVER_PORT":          "9090",
		"DB_MAX_OPEN_CONNS":    "10",
		"MIGRATE_ON_START":     "false",
		"CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test",
	}))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "ledger", cfg.DBName)
	assert.Equal(t, "9090", cfg.ServerPort, "environment overrides file")
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.DBConnMaxLifetime)
	assert.False(t, cfg.MigrateOnStart)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"store driver":   {"STORE_DRIVER": "sqlite"},
		"environment":    {"APP_ENV": "staging"},
		"pool size":      {"DB_MAX_IDLE_CONNS": "many"},
		"lifetime":       {"DB_CONN_MAX_LIFETIME": "forever"},
		"migrate toggle": {"MIGRATE_ON_START": "sometimes"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom("", envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"), envMap(nil))
	assert.Error(t, err)
}

func TestGetDBConnectionString(t *testing.T) {
	cfg := Default()
	cfg.DBHost = "pg"
	cfg.DBPort = "6543"

	assert.Equal(t,
		"host=pg port=6543 user=postgres password=postgres dbname=paysync sslmode=disable",
		cfg.GetDBConnectionString())
}
