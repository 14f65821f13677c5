package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReaderDefaults(t *testing.T) {
	t.Setenv("ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", StorageDriverMemory)
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.AutoMigrate)
	assert.Equal(t, "secret", cfg.JWT.SigningKey)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "hexlet@example.com", cfg.Seed.AdminEmail)
	assert.Equal(t, "qwerty", cfg.Seed.AdminPassword)
	assert.Empty(t, cfg.Seed.File)
}

func TestEnvReaderRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown env": {
			"ENV": "staging", "STORAGE_DRIVER": StorageDriverMemory, "JWT_SIGNING_KEY": "secret",
		},
		"unknown driver": {
			"ENV": EnvDev, "STORAGE_DRIVER": "mongo", "JWT_SIGNING_KEY": "secret",
		},
		"postgres without credentials": {
			"ENV": EnvDev, "STORAGE_DRIVER": StorageDriverPostgres, "JWT_SIGNING_KEY": "secret",
		},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := NewEnvReader().Read()
			assert.Error(t, err)
		})
	}
}
