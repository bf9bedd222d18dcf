package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-verification-mailer/internal/domain"
)

// Email providers selectable with EMAIL_PROVIDER.
const (
	ProviderSendGrid = "sendgrid"
	ProviderSMTP     = "smtp"
)

// DB failure policies selectable with DB_FAILURE_POLICY.
const (
	DBFailurePolicyFail = "fail"
	DBFailurePolicyLog  = "log"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel slog.Level

	AWSRegion       string
	AWSEndpointURL  string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID  string
	AWSSecretKey    string
	AWSSessionToken string

	DB            DB
	Email         Email
	SMTP          SMTP
	SNSTopicARN   string
	SNSVerifySigs bool

	MetricsEnabled   bool
	MetricsNamespace string
	DBFailurePolicy  string
}

// DB holds connection settings for the user database.
type DB struct {
	Host             string
	Port             int
	User             string
	Name             string
	Password         string
	PasswordSecretID string
}

// Email holds delivery settings for the verification email.
type Email struct {
	Provider       string
	From           string
	Subject        string
	APIKey         string
	APIKeySecretID string
	SendGridHost   string
}

// SMTP holds settings for the local-development SMTP provider.
type SMTP struct {
	Host     string
	Port     int
	Username string
	TLS      string // "none" | "starttls" | "ssl_tls"
}

// Load reads all configuration from environment variables. It fails with
// domain.ErrConfigurationMissing listing every required variable that is unset.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads configuration without validating it. Commands that only talk to
// AWS use it directly.
func Read() *Config {
	return &Config{
		AppPort:         getEnv("APP_PORT", "3000"),
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        parseLevel(getEnv("LOG_LEVEL", "info")),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:  getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSSessionToken: getEnv("AWS_SESSION_TOKEN", ""),
		DB: DB{
			Host:             getEnv("DB_HOST", ""),
			Port:             getEnvInt("DB_PORT", 3306),
			User:             getEnv("DB_USER", ""),
			Name:             getEnv("DB_NAME", ""),
			Password:         getEnv("DB_PASSWORD", ""),
			PasswordSecretID: getEnv("DB_PASSWORD_SECRET_ID", ""),
		},
		Email: Email{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", ProviderSendGrid)),
			From:           getEnv("EMAIL_FROM", ""),
			Subject:        getEnv("EMAIL_SUBJECT", "Verify your email address"),
			APIKey:         getEnv("SENDGRID_API_KEY", ""),
			APIKeySecretID: getEnv("SENDGRID_API_KEY_SECRET_ID", ""),
			SendGridHost:   getEnv("SENDGRID_API_HOST", "https://api.sendgrid.com"),
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 1025),
			Username: getEnv("SMTP_USERNAME", ""),
			TLS:      getEnv("SMTP_TLS", "none"),
		},
		SNSTopicARN:      getEnv("SNS_TOPIC_ARN", ""),
		SNSVerifySigs:    getEnvBool("SNS_VERIFY_SIGNATURES", true),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "VerificationMailer"),
		DBFailurePolicy:  strings.ToLower(getEnv("DB_FAILURE_POLICY", DBFailurePolicyFail)),
	}
}

// Validate checks that every setting needed before the first external call is present.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, v string) {
		if v == "" {
			missing = append(missing, key)
		}
	}
	require("DB_HOST", c.DB.Host)
	require("DB_USER", c.DB.User)
	require("DB_NAME", c.DB.Name)
	require("EMAIL_FROM", c.Email.From)
	if c.DB.Password == "" && c.DB.PasswordSecretID == "" {
		missing = append(missing, "DB_PASSWORD|DB_PASSWORD_SECRET_ID")
	}
	if c.Email.Provider == ProviderSendGrid && c.Email.APIKey == "" && c.Email.APIKeySecretID == "" {
		missing = append(missing, "SENDGRID_API_KEY|SENDGRID_API_KEY_SECRET_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v: %w", missing, domain.ErrConfigurationMissing)
	}

	switch c.Email.Provider {
	case ProviderSendGrid, ProviderSMTP:
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q: %w", c.Email.Provider, domain.ErrConfigurationMissing)
	}
	switch c.DBFailurePolicy {
	case DBFailurePolicyFail, DBFailurePolicyLog:
	default:
		return fmt.Errorf("unknown DB_FAILURE_POLICY %q: %w", c.DBFailurePolicy, domain.ErrConfigurationMissing)
	}
	return nil
}

// SwallowDBFailures reports whether DB update failures are logged instead of returned.
func (c *Config) SwallowDBFailures() bool {
	return c.DBFailurePolicy == DBFailurePolicyLog
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
