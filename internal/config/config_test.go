package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "contact-secure-data", cfg.EncryptionDomain)
	assert.Equal(t, "aes-gcm", cfg.EncryptionAlgorithm)
	assert.Equal(t, 5*time.Minute, cfg.KeyCacheTTL)
	assert.Equal(t, 100, cfg.BackfillBatchSize)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENCRYPTION_DOMAIN", "project-secure-data")
	t.Setenv("ENCRYPTION_ALGORITHM", "chacha20-poly1305")
	t.Setenv("KEY_CACHE_TTL_SECONDS", "60")
	t.Setenv("DB_DRIVER", "mysql")

	cfg := Load()

	assert.Equal(t, "project-secure-data", cfg.EncryptionDomain)
	assert.Equal(t, "chacha20-poly1305", cfg.EncryptionAlgorithm)
	assert.Equal(t, time.Minute, cfg.KeyCacheTTL)
	assert.Equal(t, "mysql", cfg.DBDriver)
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.logLevel}
		assert.Equal(t, tt.want, cfg.GetGinMode())
	}
}
