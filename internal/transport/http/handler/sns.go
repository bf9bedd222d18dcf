package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-verification-mailer/internal/domain"
	snsinfra "github.com/go-verification-mailer/internal/infrastructure/sns"
	"github.com/go-verification-mailer/internal/pkg/id"
)

// SNS caps message bodies at 256 KiB; the envelope adds a little on top.
const maxBodyBytes = 512 << 10

type notificationService interface {
	Handle(ctx context.Context, payload string) (domain.Status, error)
}

type subscriptionConfirmer interface {
	ConfirmSubscription(ctx context.Context, topicARN, token string) (string, error)
}

type signatureVerifier interface {
	Verify(ctx context.Context, m *snsinfra.HTTPMessage) error
}

type messageCounter interface {
	RecordSNSMessage(msgType string)
}

// SNSHandlerDeps configures an SNSHandler. Verifier nil disables signature
// checks; TopicARN empty accepts every topic.
type SNSHandlerDeps struct {
	Service   notificationService
	Confirmer subscriptionConfirmer
	Verifier  signatureVerifier
	Counter   messageCounter
	TopicARN  string
	Logger    *slog.Logger
}

// SNSHandler receives deliveries from an SNS HTTP(S) subscription.
type SNSHandler struct {
	svc       notificationService
	confirmer subscriptionConfirmer
	verifier  signatureVerifier
	counter   messageCounter
	topicARN  string
	log       *slog.Logger
}

func NewSNSHandler(deps SNSHandlerDeps) *SNSHandler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &SNSHandler{
		svc:       deps.Service,
		confirmer: deps.Confirmer,
		verifier:  deps.Verifier,
		counter:   deps.Counter,
		topicARN:  deps.TopicARN,
		log:       log,
	}
}

// Receive handles POST /v1/sns. Status codes follow SNS retry semantics:
// 2xx acknowledges, 4xx drops the delivery, 5xx asks SNS to redeliver.
func (h *SNSHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	var msg snsinfra.HTTPMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid SNS message")
		return
	}
	if msg.MessageID == "" {
		msg.MessageID = id.New()
	}
	log := h.log.With("message_id", msg.MessageID, "sns_type", msg.Type)
	if h.counter != nil {
		h.counter.RecordSNSMessage(msg.Type)
	}

	if h.verifier != nil {
		if err := h.verifier.Verify(r.Context(), &msg); err != nil {
			log.WarnContext(r.Context(), "rejected SNS delivery", "error", err)
			writeError(w, http.StatusForbidden, "signature verification failed")
			return
		}
	}
	if h.topicARN != "" && msg.TopicArn != h.topicARN {
		log.WarnContext(r.Context(), "rejected SNS delivery from unexpected topic", "topic_arn", msg.TopicArn)
		writeError(w, http.StatusForbidden, "unexpected topic")
		return
	}

	switch msg.Type {
	case snsinfra.TypeSubscriptionConfirmation:
		h.confirm(w, r, log, &msg)
	case snsinfra.TypeUnsubscribeConfirmation:
		log.InfoContext(r.Context(), "unsubscribed from topic", "topic_arn", msg.TopicArn)
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "unsubscribed"})
	case snsinfra.TypeNotification:
		h.notify(w, r, log, &msg)
	default:
		writeError(w, http.StatusBadRequest, "unknown SNS message type")
	}
}

func (h *SNSHandler) confirm(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg *snsinfra.HTTPMessage) {
	if h.confirmer == nil {
		writeError(w, http.StatusNotImplemented, "subscription confirmation disabled")
		return
	}
	arn, err := h.confirmer.ConfirmSubscription(r.Context(), msg.TopicArn, msg.Token)
	if err != nil {
		log.ErrorContext(r.Context(), "subscription confirmation failed", "error", err)
		writeError(w, http.StatusBadGateway, "subscription confirmation failed")
		return
	}
	log.InfoContext(r.Context(), "subscription confirmed", "subscription_arn", arn)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "subscribed"})
}

func (h *SNSHandler) notify(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg *snsinfra.HTTPMessage) {
	status, err := h.svc.Handle(r.Context(), msg.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, StatusEnvelope{Status: status, MessageID: msg.MessageID})
	case errors.Is(err, domain.ErrMalformedPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.ErrorContext(r.Context(), "notification failed, SNS will redeliver", "error", err)
		writeError(w, http.StatusInternalServerError, domain.FailureKind(err))
	}
}
