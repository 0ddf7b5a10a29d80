package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults filled", func(t *testing.T) {
		path := writeConfig(t, `
database:
  host: localhost
  user: rentalhub
  database: rentalhub
jwt:
  secret: `+testSecret+`
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
		assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
		assert.Equal(t, "0 0 3 * * *", cfg.Scheduler.ReconcileInventory)
		assert.Equal(t, "", cfg.GetGRPCAddress())
		assert.Equal(t, "postgres://rentalhub:@localhost:5432/rentalhub?sslmode=disable", cfg.GetDatabaseConnectionString())
	})

	t.Run("Environment overrides", func(t *testing.T) {
		path := writeConfig(t, `
database:
  driver: postgres
  host: localhost
  user: rentalhub
  database: rentalhub
jwt:
  secret: short
`)
		t.Setenv("DB_DRIVER", "memory")
		t.Setenv("JWT_SECRET", testSecret)
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("GRPC_PORT", "9091")
		t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://app.example.com")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, DriverMemory, cfg.Database.Driver)
		assert.Equal(t, ":9090", cfg.GetServerAddress())
		assert.Equal(t, ":9091", cfg.GetGRPCAddress())
		assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  string
	}{
		{"Short secret", Config{Database: DatabaseConfig{Driver: DriverMemory}, JWT: JWTConfig{Secret: "x"}}, "at least 32"},
		{"Unknown driver", Config{Database: DatabaseConfig{Driver: "mysql"}, JWT: JWTConfig{Secret: testSecret}}, "unsupported database driver"},
		{"Postgres needs host", Config{Database: DatabaseConfig{Driver: DriverPostgres}, JWT: JWTConfig{Secret: testSecret}}, "database host is required"},
		{"Bad port", Config{Server: ServerConfig{Port: 70000}, Database: DatabaseConfig{Driver: DriverMemory}, JWT: JWTConfig{Secret: testSecret}}, "invalid server port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("GET", "/api/products"))
	assert.Equal(t, SecurityManager, GetSecurityLevel("PUT", "/api/rentals/{id}/status"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("POST", "/api/rentals"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("PATCH", "/api/unknown"))
}
