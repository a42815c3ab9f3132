package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: otpbite
  cors:
    origins: [ "https://a.example", " ", "https://b.example" ]
  maintenance:
    endpoints: "/api/send-email, /api/request-otp"
modules:
  otp:
    ttl_seconds: 300
    max_attempts: 3
    send_timeout_ms: 1500
instrument:
  tracer_ratio: 0.25
  enabled: true
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithDefaults(map[string]any{
		"modules.otp.rate_limit_max": 5,
		"modules.otp.ttl_seconds":    60,
	}))
	require.NoError(t, err)

	assert.Equal(t, "otpbite", cfg.GetString("app.name"))
	assert.Equal(t, 300*time.Second, cfg.GetSecond("modules.otp.ttl_seconds"))
	assert.Equal(t, 1500*time.Millisecond, cfg.GetMillisecond("modules.otp.send_timeout_ms"))
	assert.Equal(t, 3, cfg.GetInt("modules.otp.max_attempts"))
	assert.Equal(t, int64(5), cfg.GetInt64("modules.otp.rate_limit_max"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.tracer_ratio"), 0.0001)
	assert.True(t, cfg.GetBool("instrument.enabled"))

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("app.cors.origins"))
	assert.Equal(t, []string{"/api/send-email", "/api/request-otp"}, cfg.GetArray("app.maintenance.endpoints"))
	assert.Nil(t, cfg.GetArray("app.missing"))

	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("MAIL_RESEND_API_KEY", "re_from_env")
	t.Setenv("APP_NAME", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "re_from_env", cfg.GetString("mail.resend.api_key"))
	assert.Equal(t, "from-env", cfg.GetString("app.name"))
}

func TestNewViperFromBytes_Errors(t *testing.T) {
	_, err := NewViperFromBytes("", []byte(sampleYAML))
	assert.Error(t, err)

	_, err = NewViperFromBytes("yaml", []byte("app: [unclosed"))
	assert.Error(t, err)
}

func TestNewViper(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	cfg, err := NewViper(file)
	require.NoError(t, err)
	assert.Equal(t, "otpbite", cfg.GetString("app.name"))

	_, err = NewViper(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
