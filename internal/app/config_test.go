package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "127.0.0.1:9090", cfg.ListenAddr())

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "ecollect-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, "dispatch", cfg.Auth.Bootstrap.Username)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "30 2 * * *", cfg.Maintenance.Schedule)
	require.Equal(t, 240*time.Hour, cfg.Maintenance.NotificationRetention)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/ecollect.sqlite", cfg.Database.Path)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "0 3 * * *", cfg.Maintenance.Schedule)
	require.Equal(t, 720*time.Hour, cfg.Maintenance.NotificationRetention)
}

func TestConfigAdapters(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{
			Driver: "postgres",
			Postgres: DBAuthConfig{
				Host:     "db.internal",
				Port:     5432,
				Database: "ecollect",
				Username: "collect",
				Password: "secret",
			},
		},
		Auth: AuthConfig{
			Bootstrap: BootstrapSettings{Username: "dispatch", Password: "pw"},
		},
		Email: EmailConfig{
			SMTP: SMTPConfig{Enabled: true, Host: "mail.internal", Port: 587, From: "noreply@internal"},
		},
	}

	dbCfg := cfg.DatabaseSettings()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, "ecollect", dbCfg.Name)
	require.Equal(t, "collect", dbCfg.User)

	smtp := cfg.SMTPSettings()
	require.True(t, smtp.Enabled)
	require.Equal(t, "mail.internal", smtp.Host)
	require.Equal(t, "noreply@internal", smtp.From)

	account := cfg.BootstrapAccount()
	require.Equal(t, "dispatch", account.Username)
	require.Equal(t, "pw", account.Password)
}
