package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "json", cfg.Store.Codec)
	assert.Equal(t, 1, cfg.Store.Version)
	assert.Equal(t, WriteModeSync, cfg.Store.WriteMode)
	assert.Equal(t, int64(5*1024*1024), cfg.Store.MaxBytes)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.Duration)
	assert.Equal(t, time.Minute, cfg.Sessions.SweepInterval)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_BACKEND", "REDIS")
	v.Set("STORE_CODEC", "yaml")
	v.Set("SESSION_DURATION", "90m")
	v.Set("SESSION_SWEEP_INTERVAL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "https://admin.example.com, ,http://localhost:3000")

	cfg := fromViper(v)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "yaml", cfg.Store.Codec)
	assert.Equal(t, 90*time.Minute, cfg.Sessions.Duration)
	assert.Equal(t, time.Minute, cfg.Sessions.SweepInterval)
	assert.Equal(t, []string{"https://admin.example.com", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}
