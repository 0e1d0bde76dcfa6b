package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "from-env")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "coachhub", cfg.Database.Name)
	assert.Equal(t, ProviderLocal, cfg.Auth.Provider)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiration)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, 5, cfg.Feedback.SendBurst)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  address: ":9090"
database:
  driver: memory
auth:
  provider: local
  jwt_secret: from-file
  jwt_expiration: 30m
  admin_emails:
    - root@example.com
s3:
  region: eu-west-1
  bucket_name: avatars
log:
  format: json
`)
	t.Setenv("SERVER_ADDRESS", ":7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address, "environment wins over the file")
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.JWTExpiration)
	assert.Equal(t, []string{"root@example.com"}, cfg.Auth.AdminEmails)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "AUTH_JWT_SECRET=from-dotenv\nDATABASE_NAME=dotenv_db\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("AUTH_JWT_SECRET")
		_ = os.Unsetenv("DATABASE_NAME")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
	assert.Equal(t, "dotenv_db", cfg.Database.Name)
}

func TestLoadConfig_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server: [unclosed")

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Driver: DriverMemory, Name: "coachhub"},
		Auth:     AuthConfig{Provider: ProviderLocal, JWTSecret: "s", JWTExpiration: time.Hour},
		Session:  SessionConfig{TTL: time.Hour},
		Feedback: FeedbackConfig{SendRate: 1, SendBurst: 5},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, `unknown database.driver "sqlite"`},
		{"mongo without uri", func(c *Config) { c.Database.Driver = DriverMongo }, "database.uri is required"},
		{"local without secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret is required"},
		{"firebase without credentials", func(c *Config) { c.Auth.Provider = ProviderFirebase }, "auth.firebase_credentials_path is required"},
		{"unknown provider", func(c *Config) { c.Auth.Provider = "saml" }, `unknown auth.provider "saml"`},
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true }, "redis.addr is required"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl must be positive"},
		{"zero send burst", func(c *Config) { c.Feedback.SendBurst = 0 }, "feedback.send_rate and feedback.send_burst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
