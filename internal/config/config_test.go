package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKING_SERVICE_URL", "https://api.example.com/")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.example.com", cfg.BookingService.URL)
	assert.Equal(t, 30*time.Second, cfg.BookingService.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "*/5 * * * *", cfg.Session.SweepSchedule)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Validation.StrictPhone)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_SERVICE_URL", "http://booking:9000")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BOOKING_SERVICE_TIMEOUT", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://pos.example.com , ,https://admin.example.com")
	t.Setenv("STRICT_PHONE_VALIDATION", "true")
	t.Setenv("SESSION_IDLE_TIMEOUT_MINUTES", "not-a-number")
	t.Setenv("DATABASE_URL", "postgres://localhost/pos")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.BookingService.Timeout)
	assert.Equal(t, []string{"https://pos.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Validation.StrictPhone)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.True(t, cfg.Database.Enabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BookingService: BookingServiceConfig{URL: "https://api.example.com", Timeout: time.Second},
			JWT:            JWTConfig{Secret: "secret"},
			Session:        SessionConfig{IdleTimeout: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"Missing booking URL", func(c *Config) { c.BookingService.URL = "" }, "BOOKING_SERVICE_URL is required"},
		{"Relative booking URL", func(c *Config) { c.BookingService.URL = "api.example.com" }, "BOOKING_SERVICE_URL must be an absolute http(s) URL"},
		{"Zero timeout", func(c *Config) { c.BookingService.Timeout = 0 }, "BOOKING_SERVICE_TIMEOUT must be positive"},
		{"Missing JWT secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET is required"},
		{"Zero idle timeout", func(c *Config) { c.Session.IdleTimeout = 0 }, "SESSION_IDLE_TIMEOUT_MINUTES must be positive"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
