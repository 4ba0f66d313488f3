package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("bitforex")

	assert.Equal(t, "bitforex", config.Exchange)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 600, config.RateLimitRequests)
	assert.Equal(t, time.Minute, config.RateLimitPeriod)
	assert.True(t, config.CircuitBreakerEnabled)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"missing exchange", func(c *Config) { c.Exchange = "" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"zero rate limit", func(c *Config) { c.RateLimitRequests = 0 }, true},
		{"invalid base url", func(c *Config) { c.BaseURL = "not a url" }, true},
		{"valid base url", func(c *Config) { c.BaseURL = "http://127.0.0.1:8080" }, false},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"breaker enabled without thresholds", func(c *Config) {
			c.CircuitBreakerFailThreshold = 0
		}, true},
		{"breaker disabled ignores thresholds", func(c *Config) {
			c.CircuitBreakerEnabled = false
			c.CircuitBreakerFailThreshold = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig("bitforex")
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Chaining(t *testing.T) {
	config := DefaultConfig("bitforex").
		WithCredentials(&Credentials{APIKey: "key", SecretKey: "secret"}).
		WithBaseURL("http://127.0.0.1:9000").
		WithTimeout(2 * time.Second).
		WithRateLimit(100, time.Second)

	require.NotNil(t, config.Credentials)
	assert.Equal(t, "key", config.Credentials.APIKey)
	assert.Equal(t, "http://127.0.0.1:9000", config.BaseURL)
	assert.Equal(t, 2*time.Second, config.Timeout)
	assert.Equal(t, 100, config.RateLimitRequests)
	assert.NoError(t, config.Validate())
}

func TestCredentials_Valid(t *testing.T) {
	tests := []struct {
		name     string
		creds    *Credentials
		expected bool
	}{
		{"both present", &Credentials{APIKey: "k", SecretKey: "s"}, true},
		{"missing secret", &Credentials{APIKey: "k"}, false},
		{"missing key", &Credentials{SecretKey: "s"}, false},
		{"empty", &Credentials{}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.creds.Valid())
		})
	}
}
