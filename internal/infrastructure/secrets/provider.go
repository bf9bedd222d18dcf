package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/infrastructure/awsclient"
)

// secretsAPI is the subset of the Secrets Manager client the provider uses.
type secretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Source describes where one credential comes from: a direct value from
// configuration, or a reference into Secrets Manager. Value wins when both are set.
// A reference of the form "name#key" selects key from a JSON secret.
type Source struct {
	Name  string
	Value string
	Ref   string
}

// Provider resolves the email API key and DB password for one invocation.
// Nothing is cached between calls to Resolve.
type Provider struct {
	client      secretsAPI
	emailAPIKey Source
	dbPassword  Source
}

// NewClient creates a Secrets Manager client, honouring the LocalStack endpoint override.
func NewClient(awsCfg aws.Config, cfg *config.Config) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if ep := awsclient.BaseEndpoint(cfg); ep != nil {
			o.BaseEndpoint = ep
		}
	})
}

// NewProvider builds a Provider. client may be nil when both sources carry direct values.
func NewProvider(client secretsAPI, emailAPIKey, dbPassword Source) *Provider {
	return &Provider{client: client, emailAPIKey: emailAPIKey, dbPassword: dbPassword}
}

// FromConfig maps the configuration surface onto a Provider.
func FromConfig(client secretsAPI, cfg *config.Config) *Provider {
	return NewProvider(client,
		Source{Name: "email API key", Value: cfg.Email.APIKey, Ref: cfg.Email.APIKeySecretID},
		Source{Name: "DB password", Value: cfg.DB.Password, Ref: cfg.DB.PasswordSecretID},
	)
}

// Resolve returns both credentials or the first failure.
// The email API key is optional when its source is empty (SMTP without auth).
func (p *Provider) Resolve(ctx context.Context) (domain.Credentials, error) {
	var creds domain.Credentials
	var err error
	if p.emailAPIKey.Value != "" || p.emailAPIKey.Ref != "" {
		if creds.EmailAPIKey, err = p.resolve(ctx, p.emailAPIKey); err != nil {
			return domain.Credentials{}, err
		}
	}
	if creds.DBPassword, err = p.resolve(ctx, p.dbPassword); err != nil {
		return domain.Credentials{}, err
	}
	return creds, nil
}

func (p *Provider) resolve(ctx context.Context, src Source) (string, error) {
	if src.Value != "" {
		return src.Value, nil
	}
	if src.Ref == "" {
		return "", fmt.Errorf("%s: no value or secret reference: %w", src.Name, domain.ErrConfigurationMissing)
	}
	if p.client == nil {
		return "", fmt.Errorf("%s: secret %q referenced but no secrets client: %w", src.Name, src.Ref, domain.ErrConfigurationMissing)
	}

	id, key, hasKey := strings.Cut(src.Ref, "#")
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("%s: get secret %q: %w: %w", src.Name, id, domain.ErrSecretRetrieval, err)
	}
	secret := aws.ToString(out.SecretString)
	if secret == "" {
		return "", fmt.Errorf("%s: secret %q has no string value: %w", src.Name, id, domain.ErrSecretRetrieval)
	}
	if !hasKey {
		return secret, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(secret), &fields); err != nil {
		return "", fmt.Errorf("%s: secret %q is not a JSON object: %w", src.Name, id, domain.ErrSecretRetrieval)
	}
	v, ok := fields[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s: secret %q has no string field %q: %w", src.Name, id, key, domain.ErrSecretRetrieval)
	}
	return v, nil
}
