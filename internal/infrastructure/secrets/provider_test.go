package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSecrets struct{ mock.Mock }

func (m *mockSecrets) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, aws.ToString(in.SecretId))
	if out, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func secretString(s string) *secretsmanager.GetSecretValueOutput {
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(s)}
}

func TestResolve_DirectValuesSkipStore(t *testing.T) {
	sm := &mockSecrets{}
	p := NewProvider(sm, Source{Name: "key", Value: "SG.direct"}, Source{Name: "pw", Value: "hunter2"})

	creds, err := p.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Credentials{EmailAPIKey: "SG.direct", DBPassword: "hunter2"}, creds)
	sm.AssertNotCalled(t, "GetSecretValue", mock.Anything, mock.Anything)
}

func TestResolve_DirectValueWinsOverReference(t *testing.T) {
	sm := &mockSecrets{}
	p := NewProvider(sm, Source{Value: "SG.direct", Ref: "prod/sendgrid"}, Source{Value: "pw", Ref: "prod/db"})

	_, err := p.Resolve(context.Background())
	require.NoError(t, err)
	sm.AssertExpectations(t)
}

func TestResolve_PlainAndJSONReferences(t *testing.T) {
	sm := &mockSecrets{}
	sm.On("GetSecretValue", mock.Anything, "prod/sendgrid").Return(secretString("SG.fromstore"), nil)
	sm.On("GetSecretValue", mock.Anything, "prod/db").Return(secretString(`{"username":"mailer","password":"s3cret"}`), nil)

	p := FromConfig(sm, &config.Config{
		Email: config.Email{APIKeySecretID: "prod/sendgrid"},
		DB:    config.DB{PasswordSecretID: "prod/db#password"},
	})

	creds, err := p.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SG.fromstore", creds.EmailAPIKey)
	assert.Equal(t, "s3cret", creds.DBPassword)
	sm.AssertExpectations(t)
}

func TestResolve_StoreFailure(t *testing.T) {
	sm := &mockSecrets{}
	sm.On("GetSecretValue", mock.Anything, "prod/sendgrid").Return(nil, errors.New("AccessDeniedException"))

	p := NewProvider(sm, Source{Name: "email API key", Ref: "prod/sendgrid"}, Source{Value: "pw"})

	_, err := p.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSecretRetrieval))
	assert.Contains(t, err.Error(), "AccessDeniedException")
}

func TestResolve_MissingJSONField(t *testing.T) {
	sm := &mockSecrets{}
	sm.On("GetSecretValue", mock.Anything, "prod/db").Return(secretString(`{"username":"mailer"}`), nil)

	p := NewProvider(sm, Source{}, Source{Name: "DB password", Ref: "prod/db#password"})

	_, err := p.Resolve(context.Background())
	assert.ErrorIs(t, err, domain.ErrSecretRetrieval)
}

func TestResolve_NonJSONSecretWithKey(t *testing.T) {
	sm := &mockSecrets{}
	sm.On("GetSecretValue", mock.Anything, "prod/db").Return(secretString("plain"), nil)

	p := NewProvider(sm, Source{}, Source{Ref: "prod/db#password"})

	_, err := p.Resolve(context.Background())
	assert.ErrorIs(t, err, domain.ErrSecretRetrieval)
}

func TestResolve_NothingConfigured(t *testing.T) {
	p := NewProvider(&mockSecrets{}, Source{}, Source{Name: "DB password"})

	_, err := p.Resolve(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestResolve_EmptyAPIKeySourceIsOptional(t *testing.T) {
	p := NewProvider(nil, Source{}, Source{Value: "pw"})

	creds, err := p.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creds.EmailAPIKey)
}
