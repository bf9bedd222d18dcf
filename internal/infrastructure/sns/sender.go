package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/infrastructure/awsclient"
)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	ConfirmSubscription(ctx context.Context, in *sns.ConfirmSubscriptionInput, optFns ...func(*sns.Options)) (*sns.ConfirmSubscriptionOutput, error)
}

// Client publishes verification events and confirms HTTP subscriptions.
type Client struct {
	api snsAPI
}

// NewClient creates an SNS client, honouring the LocalStack endpoint override.
func NewClient(awsCfg aws.Config, cfg *config.Config) *Client {
	return &Client{api: sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if ep := awsclient.BaseEndpoint(cfg); ep != nil {
			o.BaseEndpoint = ep
		}
	})}
}

// Publish sends ev to topicARN and returns the SNS message ID.
func (c *Client) Publish(ctx context.Context, topicARN string, ev domain.VerificationEvent) (string, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	out, err := c.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", topicARN, err)
	}
	return aws.ToString(out.MessageId), nil
}

// ConfirmSubscription completes the handshake SNS starts when an HTTP
// endpoint is subscribed to a topic.
func (c *Client) ConfirmSubscription(ctx context.Context, topicARN, token string) (string, error) {
	out, err := c.api.ConfirmSubscription(ctx, &sns.ConfirmSubscriptionInput{
		TopicArn: aws.String(topicARN),
		Token:    aws.String(token),
	})
	if err != nil {
		return "", fmt.Errorf("confirm subscription to %s: %w", topicARN, err)
	}
	return aws.ToString(out.SubscriptionArn), nil
}
