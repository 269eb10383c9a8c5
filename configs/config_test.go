package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveDefaults(t *testing.T) {
	cfg := Resolve(Configuration{}, envMap(nil))

	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, defaultServerPort, cfg.ServerPort)
	assert.Equal(t, defaultFrontendBaseURL, cfg.FrontendBaseURL)
	assert.Equal(t, defaultSQLitePath, cfg.SQLitePath)
	assert.Equal(t, 10, cfg.FingerprintPrefixLength)
	assert.Equal(t, 30*time.Second, cfg.FraudPollInterval)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.InactiveQROverride())
}

func TestResolveEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_port: "9000"
frontend_base_url: https://file.example.com
fingerprint_prefix_length: 12
session_ttl: 1h
`), 0o600))

	fileCfg, err := loadFile(path)
	require.NoError(t, err)

	cfg := Resolve(fileCfg, envMap(map[string]string{
		"SERVER_PORT":         "9100",
		"FRAUD_POLL_INTERVAL": "5s",
	}))

	assert.Equal(t, "9100", cfg.ServerPort)
	assert.Equal(t, "https://file.example.com", cfg.FrontendBaseURL)
	assert.Equal(t, 12, cfg.FingerprintPrefixLength)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.FraudPollInterval)
}

func TestInactiveOverrideRequiresDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "flag only", env: map[string]string{"ALLOW_INACTIVE_QR_IN_DEV": "true"}, want: false},
		{name: "dev only", env: map[string]string{"APP_ENV": "development"}, want: false},
		{name: "both", env: map[string]string{"APP_ENV": "development", "ALLOW_INACTIVE_QR_IN_DEV": "true"}, want: true},
		{name: "bad bool", env: map[string]string{"APP_ENV": "development", "ALLOW_INACTIVE_QR_IN_DEV": "yes please"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Resolve(Configuration{}, envMap(tt.env))
			assert.Equal(t, tt.want, cfg.InactiveQROverride())
		})
	}
}

func TestResolveIgnoresInvalidNumbers(t *testing.T) {
	cfg := Resolve(Configuration{}, envMap(map[string]string{
		"FINGERPRINT_PREFIX_LENGTH": "-3",
		"SESSION_TTL":               "forever",
	}))
	assert.Equal(t, defaultPrefixLength, cfg.FingerprintPrefixLength)
	assert.Equal(t, defaultSessionTTL, cfg.SessionTTL)
}
