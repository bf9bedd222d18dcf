package http

import (
	"context"
	"log/slog"

	"github.com/go-verification-mailer/internal/application/notification"
	snsinfra "github.com/go-verification-mailer/internal/infrastructure/sns"
	"github.com/prometheus/client_golang/prometheus"
)

// SubscriptionConfirmer confirms an SNS HTTP(S) subscription with its token.
type SubscriptionConfirmer interface {
	ConfirmSubscription(ctx context.Context, topicARN, token string) (string, error)
}

// SignatureVerifier checks the signature on an SNS HTTP delivery.
type SignatureVerifier interface {
	Verify(ctx context.Context, m *snsinfra.HTTPMessage) error
}

// MessageCounter counts SNS deliveries by message type.
type MessageCounter interface {
	RecordSNSMessage(msgType string)
}

// Deps holds everything the router wires into its handlers. Confirmer,
// Verifier, Counter and Gatherer are optional.
type Deps struct {
	Service   notification.Service
	Confirmer SubscriptionConfirmer
	Verifier  SignatureVerifier
	Counter   MessageCounter
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}
