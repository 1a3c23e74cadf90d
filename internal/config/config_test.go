package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(10485760), cfg.Upload.MaxArchiveBytes)
	assert.Equal(t, 10*time.Minute, cfg.Upload.SessionTTL)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 30, cfg.RateLimit.ListMax)
	assert.Equal(t, 60, cfg.RateLimit.GenerateMax)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.CleanupInterval)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_ARCHIVE_BYTES", "1024")
	t.Setenv("UPLOAD_SESSION_TTL", "30s")
	t.Setenv("RATE_LIMIT_LIST_MAX", "5")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Upload.MaxArchiveBytes)
	assert.Equal(t, 30*time.Second, cfg.Upload.SessionTTL)
	assert.Equal(t, 5, cfg.RateLimit.ListMax)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		cfg, err := config.Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*config.Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *config.Config) { c.Server.Port = 0 },
			wantErr: "server port",
		},
		{
			name:    "non-positive archive size",
			mutate:  func(c *config.Config) { c.Upload.MaxArchiveBytes = 0 },
			wantErr: "maximum archive size",
		},
		{
			name:    "too short session TTL",
			mutate:  func(c *config.Config) { c.Upload.SessionTTL = 100 * time.Millisecond },
			wantErr: "session TTL",
		},
		{
			name:    "too short window",
			mutate:  func(c *config.Config) { c.RateLimit.Window = 10 * time.Millisecond },
			wantErr: "rate limit window",
		},
		{
			name:    "zero quota",
			mutate:  func(c *config.Config) { c.RateLimit.ListMax = 0 },
			wantErr: "rate limit quotas",
		},
		{
			name: "cleanup interval shorter than window",
			mutate: func(c *config.Config) {
				c.RateLimit.Window = time.Minute
				c.RateLimit.CleanupInterval = time.Second
			},
			wantErr: "cleanup interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

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

func TestServerAddr(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
}
