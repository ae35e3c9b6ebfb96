package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")
	_, err := Load(nil)
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoadDebugFallsBackToDevSecret(t *testing.T) {
	t.Setenv("ADMIN_LOG_LEVEL", "debug")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.True(t, cfg.UsingInsecureSecret())
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_DATABASE_DRIVER", "sqlite")
	t.Setenv("ADMIN_DATABASE_DSN", "file::memory:")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, "jwt", cfg.CookieName)
	assert.Equal(t, "s3cret", cfg.JwtSecret)
	assert.False(t, cfg.UsingInsecureSecret())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.RateLimit.LoginPerMinute)
}

func TestLoadFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: 9000
grpc_port: 9001
jwt_secret: from-file
seed:
  admin_email: admin@example.com
  admin_password: changeme
`), 0o600))

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--http-port", "9100"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTPPort, "flags override the file")
	assert.Equal(t, 9001, cfg.GRPCPort)
	assert.Equal(t, "from-file", cfg.JwtSecret)
	assert.Equal(t, "admin@example.com", cfg.Seed.AdminEmail)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Config{JwtSecret: "x", Database: DatabaseConfig{Driver: "postgres"}}
	assert.ErrorContains(t, cfg.Validate(), "postgres")
}
