package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5, cfg.Security.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Security.LockoutWindow)
	assert.Equal(t, 15*time.Minute, cfg.Security.CodeTTL)
	assert.Equal(t, 60*time.Second, cfg.Security.ResendCooldown)
	assert.Equal(t, "sf_session", cfg.Security.SessionCookie)
	assert.Equal(t, "sf_remember", cfg.Security.RememberCookie)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STAYFINDER_SECURITY_LOCKOUTTHRESHOLD", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Security.LockoutThreshold)
}

func TestLoad_ProductionRequiresCaptchaSecret(t *testing.T) {
	t.Setenv("STAYFINDER_ENVIRONMENT", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "captcha.secret")

	t.Setenv("STAYFINDER_CAPTCHA_SECRET", "prod-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod-secret", cfg.Captcha.Secret)
}
