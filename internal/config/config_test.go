package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "portfolio_test")
	t.Setenv("PORT", "9001")
	t.Setenv("DATABASE_TIMEOUT", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MEDIA_MAX_UPLOAD_MB", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017", cfg.Database.URL)
	require.Equal(t, "portfolio_test", cfg.Database.Name)
	require.Equal(t, 3*time.Second, cfg.Database.Timeout)
	require.Equal(t, "9001", cfg.Server.Port)
	require.True(t, cfg.MinIO.UseSSL)
	require.Equal(t, int64(2<<20), cfg.Media.MaxUploadBytes)
}

func TestLoadConfig_DefaultsWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_CONNECT_ATTEMPTS", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Empty(t, cfg.Database.URL)
	require.Equal(t, "portfolio", cfg.Database.Name)
	require.Equal(t, 1, cfg.Database.ConnectAttempts)
	require.Equal(t, "Portfolio API", cfg.App.Name)
	require.Equal(t, "portfolio-media", cfg.MinIO.Bucket)
	require.Equal(t, time.Hour, cfg.Media.PresignExpiry)
	require.False(t, cfg.Server.Production())
}
