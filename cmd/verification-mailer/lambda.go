package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/go-verification-mailer/internal/application/notification"
	"github.com/go-verification-mailer/internal/infrastructure/awsclient"
	"github.com/go-verification-mailer/internal/infrastructure/cloudwatch"
	"github.com/go-verification-mailer/internal/transport/lambda"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an SNS-triggered AWS Lambda function",
	RunE:  runLambda,
}

func runLambda(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	awsCfg, err := awsclient.Load(context.Background(), cfg)
	if err != nil {
		return err
	}

	var observer notification.Observer = notification.NopObserver{}
	if cfg.MetricsEnabled {
		observer = cloudwatch.NewObserver(cloudwatch.NewClient(awsCfg, cfg), cfg.MetricsNamespace, log)
	}
	svc, err := newService(cfg, awsCfg, observer, log)
	if err != nil {
		return err
	}

	awslambda.Start(lambda.NewHandler(svc, log).Handle)
	return nil
}
