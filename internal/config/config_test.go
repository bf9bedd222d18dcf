package config

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/go-verification-mailer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "mailer")
	t.Setenv("DB_NAME", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("EMAIL_FROM", "noreply@example.com")
	t.Setenv("SENDGRID_API_KEY", "SG.key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, ProviderSendGrid, cfg.Email.Provider)
	assert.Equal(t, "Verify your email address", cfg.Email.Subject)
	assert.Equal(t, "https://api.sendgrid.com", cfg.Email.SendGridHost)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, DBFailurePolicyFail, cfg.DBFailurePolicy)
	assert.False(t, cfg.SwallowDBFailures())
	assert.True(t, cfg.SNSVerifySigs)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_PASSWORD_SECRET_ID", "")
	t.Setenv("EMAIL_FROM", "")
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("SENDGRID_API_KEY_SECRET_ID", "")
	t.Setenv("EMAIL_PROVIDER", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigurationMissing))
	for _, key := range []string{"DB_HOST", "DB_USER", "DB_NAME", "EMAIL_FROM", "DB_PASSWORD|DB_PASSWORD_SECRET_ID", "SENDGRID_API_KEY|SENDGRID_API_KEY_SECRET_ID"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_SecretReferencesSatisfyCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("DB_PASSWORD_SECRET_ID", "prod/db#password")
	t.Setenv("SENDGRID_API_KEY_SECRET_ID", "prod/sendgrid")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod/db#password", cfg.DB.PasswordSecretID)
	assert.Equal(t, "prod/sendgrid", cfg.Email.APIKeySecretID)
}

func TestLoad_SMTPProviderNeedsNoAPIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("EMAIL_PROVIDER", "SMTP")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderSMTP, cfg.Email.Provider)
	assert.Equal(t, "localhost", cfg.SMTP.Host)
	assert.Equal(t, 1025, cfg.SMTP.Port)
}

func TestLoad_UnknownProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("EMAIL_PROVIDER", "carrier-pigeon")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestLoad_DBFailurePolicy(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_FAILURE_POLICY", "log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SwallowDBFailures())

	t.Setenv("DB_FAILURE_POLICY", "ignore")
	_, err = Load()
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	assert.Equal(t, 7, getEnvInt("X_INT", 7))
	assert.True(t, getEnvBool("X_BOOL", true))
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestRead_SkipsValidation(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("EMAIL_FROM", "")
	t.Setenv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:user-registered")

	cfg := Read()
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:user-registered", cfg.SNSTopicARN)
	assert.ErrorIs(t, cfg.Validate(), domain.ErrConfigurationMissing)
}
