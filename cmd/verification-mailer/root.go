package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/logger"
)

// The Lambda runtime starts the binary without arguments, so the root
// command runs the Lambda handler.
var rootCmd = &cobra.Command{
	Use:           "verification-mailer",
	Short:         "Sends verification emails for newly registered users",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLambda,
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(publishCmd)
}

// loadEnv reads .env when present and returns the validated configuration
// together with the process logger.
func loadEnv() (*config.Config, *slog.Logger, error) {
	envErr := godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
	if envErr != nil {
		log.Debug("no .env file found, reading from environment")
	}
	return cfg, log, nil
}
