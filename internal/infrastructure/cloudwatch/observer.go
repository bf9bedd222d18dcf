package cloudwatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/infrastructure/awsclient"
)

type metricsAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Observer pushes counters to CloudWatch. Emission is bounded by a short
// timeout and its errors are logged, never returned.
type Observer struct {
	client    metricsAPI
	namespace string
	timeout   time.Duration
	log       *slog.Logger
}

func NewClient(awsCfg aws.Config, cfg *config.Config) *cloudwatch.Client {
	return cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if ep := awsclient.BaseEndpoint(cfg); ep != nil {
			o.BaseEndpoint = ep
		}
	})
}

func NewObserver(client metricsAPI, namespace string, log *slog.Logger) *Observer {
	return &Observer{client: client, namespace: namespace, timeout: 2 * time.Second, log: log}
}

func (o *Observer) EmailSent(ctx context.Context) {
	o.put(ctx, domain.MetricEmailsSent)
}

func (o *Observer) Failure(ctx context.Context, kind string) {
	o.put(ctx, kind)
}

func (o *Observer) put(ctx context.Context, name string) {
	// The invocation context may already be cancelled on failure paths.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	_, err := o.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(o.namespace),
		MetricData: []types.MetricDatum{{
			MetricName: aws.String(name),
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(1),
			Timestamp:  aws.Time(time.Now().UTC()),
		}},
	})
	if err != nil {
		o.log.WarnContext(ctx, "metric emission failed", "metric", name, "error", err)
	}
}
