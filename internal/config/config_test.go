package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOptions(t *testing.T) {
	tests := []struct {
		name            string
		bag             map[string]any
		expectedTimeout time.Duration
		expectedUA      string
	}{
		{"nil bag", nil, DefaultTimeout, DefaultUserAgent},
		{"int millis", map[string]any{"timeoutMs": 5000}, 5 * time.Second, DefaultUserAgent},
		{"float millis", map[string]any{"timeoutMs": 1500.0}, 1500 * time.Millisecond, DefaultUserAgent},
		{"string millis", map[string]any{"TimeoutMs": "250"}, 250 * time.Millisecond, DefaultUserAgent},
		{"duration", map[string]any{"timeoutms": 2 * time.Second}, 2 * time.Second, DefaultUserAgent},
		{"negative timeout ignored", map[string]any{"timeoutMs": -1}, DefaultTimeout, DefaultUserAgent},
		{"garbage timeout ignored", map[string]any{"timeoutMs": "soon"}, DefaultTimeout, DefaultUserAgent},
		{"user agent", map[string]any{"userAgent": "KamiBot/1.0"}, DefaultTimeout, "KamiBot/1.0"},
		{"blank user agent ignored", map[string]any{"userAgent": "  "}, DefaultTimeout, DefaultUserAgent},
		{"non-string user agent ignored", map[string]any{"userAgent": 42}, DefaultTimeout, DefaultUserAgent},
		{"unknown keys ignored", map[string]any{"proxy": "socks5://x", "retries": 3}, DefaultTimeout, DefaultUserAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := FromOptions(tt.bag)
			assert.Equal(t, tt.expectedTimeout, opts.Timeout)
			assert.Equal(t, tt.expectedUA, opts.UserAgent)
			assert.True(t, opts.Headless)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("CRAWLER_TIMEOUT", "45s")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Agent.Timeout)
	assert.False(t, cfg.Agent.Headless)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	t.Setenv("RATE_LIMIT_MIN", "5s")
	t.Setenv("RATE_LIMIT_MAX", "1s")

	_, err := Load()
	assert.Error(t, err)
}
