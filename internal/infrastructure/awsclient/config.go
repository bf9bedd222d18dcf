package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-verification-mailer/internal/config"
)

// Load builds the shared AWS configuration. Static credentials are only
// installed when an endpoint override is set (LocalStack). Everywhere else the
// default chain applies; its env provider picks up the Lambda execution role's
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN together.
func Load(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSEndpointURL != "" && cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, cfg.AWSSessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// BaseEndpoint returns the endpoint override for service clients, or nil when
// traffic should go to the real AWS endpoints.
func BaseEndpoint(cfg *config.Config) *string {
	if cfg.AWSEndpointURL == "" {
		return nil
	}
	return aws.String(cfg.AWSEndpointURL)
}
