package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/go-verification-mailer/internal/application/notification"
	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/email"
	"github.com/go-verification-mailer/internal/infrastructure/mysql"
	"github.com/go-verification-mailer/internal/infrastructure/secrets"
	"github.com/go-verification-mailer/internal/infrastructure/sendgrid"
	"github.com/go-verification-mailer/internal/infrastructure/smtp"
)

func newSender(cfg *config.Config) (email.Sender, error) {
	switch cfg.Email.Provider {
	case config.ProviderSendGrid:
		return sendgrid.NewSender(cfg.Email.SendGridHost), nil
	case config.ProviderSMTP:
		return smtp.NewMailer(cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}

func newStoreOpener(cfg *config.Config) notification.StoreOpener {
	connector := mysql.NewConnector(cfg.DB)
	return func(ctx context.Context, password string) (notification.UserStore, error) {
		repo, err := connector.Open(ctx, password)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

func newService(cfg *config.Config, awsCfg aws.Config, observer notification.Observer, log *slog.Logger) (notification.Service, error) {
	sender, err := newSender(cfg)
	if err != nil {
		return nil, err
	}
	return notification.NewService(notification.ServiceDeps{
		Credentials:       secrets.FromConfig(secrets.NewClient(awsCfg, cfg), cfg),
		Sender:            sender,
		OpenStore:         newStoreOpener(cfg),
		Observer:          observer,
		Logger:            log,
		From:              cfg.Email.From,
		Subject:           cfg.Email.Subject,
		SwallowDBFailures: cfg.SwallowDBFailures(),
	})
}
