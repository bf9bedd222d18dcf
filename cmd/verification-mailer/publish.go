package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/infrastructure/awsclient"
	snsinfra "github.com/go-verification-mailer/internal/infrastructure/sns"
	"github.com/go-verification-mailer/internal/logger"
	"github.com/go-verification-mailer/internal/pkg/validate"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a user-registered event to SNS_TOPIC_ARN",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().String("email", "", "recipient address")
	publishCmd.Flags().String("user-id", "", "user identifier")
	publishCmd.Flags().String("link", "", "activation link")
	_ = publishCmd.MarkFlagRequired("email")
	_ = publishCmd.MarkFlagRequired("user-id")
	_ = publishCmd.MarkFlagRequired("link")
}

func runPublish(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg := config.Read()
	log := logger.SetupDefault(os.Stderr, cfg.LogLevel)
	if cfg.SNSTopicARN == "" {
		return fmt.Errorf("SNS_TOPIC_ARN: %w", domain.ErrConfigurationMissing)
	}

	emailAddr, _ := cmd.Flags().GetString("email")
	userID, _ := cmd.Flags().GetString("user-id")
	link, _ := cmd.Flags().GetString("link")
	ev := domain.VerificationEvent{Email: emailAddr, UserID: domain.UserID(userID), ActivationLink: link}
	if err := validate.Struct(ev); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrMalformedPayload)
	}

	awsCfg, err := awsclient.Load(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	id, err := snsinfra.NewClient(awsCfg, cfg).Publish(cmd.Context(), cfg.SNSTopicARN, ev)
	if err != nil {
		return err
	}
	log.Info("event published", "message_id", id, "topic_arn", cfg.SNSTopicARN)
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
