// Package lambda adapts SNS-triggered Lambda invocations to the notification service.
package lambda

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/go-verification-mailer/internal/application/notification"
	"github.com/go-verification-mailer/internal/domain"
)

// Result is returned to the Lambda runtime on success.
type Result struct {
	Status domain.Status `json:"status"`
}

// Handler processes SNS events. SNS delivers one record per invocation; any
// extra records are processed in order and the first failure is returned so
// the platform redelivers.
type Handler struct {
	svc notification.Service
	log *slog.Logger
}

func NewHandler(svc notification.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Handle(ctx context.Context, ev events.SNSEvent) (Result, error) {
	if len(ev.Records) == 0 {
		return Result{}, fmt.Errorf("SNS event has no records: %w", domain.ErrMalformedPayload)
	}
	log := h.log
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With("request_id", lc.AwsRequestID)
	}

	for _, rec := range ev.Records {
		log.InfoContext(ctx, "processing notification", "message_id", rec.SNS.MessageID, "topic_arn", rec.SNS.TopicArn)
		if _, err := h.svc.Handle(ctx, rec.SNS.Message); err != nil {
			return Result{}, fmt.Errorf("message %s: %w", rec.SNS.MessageID, err)
		}
	}
	return Result{Status: domain.StatusSuccess}, nil
}
