package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/email"
	"github.com/go-verification-mailer/internal/pkg/validate"
)

// Service sends the verification email for one event and records the outcome.
type Service interface {
	Handle(ctx context.Context, payload string) (domain.Status, error)
}

// CredentialProvider resolves the secrets needed for one invocation.
type CredentialProvider interface {
	Resolve(ctx context.Context) (domain.Credentials, error)
}

// UserStore records the send on the user row. Close must release the
// underlying connection.
type UserStore interface {
	MarkEmailSent(ctx context.Context, userID string) error
	Close() error
}

// StoreOpener acquires a UserStore with the resolved DB password.
type StoreOpener func(ctx context.Context, password string) (UserStore, error)

// Observer receives operational counters. Implementations must not block for
// long and never report errors back.
type Observer interface {
	EmailSent(ctx context.Context)
	Failure(ctx context.Context, kind string)
}

// NopObserver discards all counters.
type NopObserver struct{}

func (NopObserver) EmailSent(context.Context) {}
func (NopObserver) Failure(context.Context, string) {}

type ServiceDeps struct {
	Credentials CredentialProvider
	Sender      email.Sender
	OpenStore   StoreOpener
	Observer    Observer
	Logger      *slog.Logger

	From    string
	Subject string
	// SwallowDBFailures logs and counts DB update failures instead of returning them.
	SwallowDBFailures bool
}

type service struct {
	creds             CredentialProvider
	sender            email.Sender
	openStore         StoreOpener
	observer          Observer
	log               *slog.Logger
	from              string
	subject           string
	swallowDBFailures bool
}

// NewService checks that every dependency and setting is present so that a
// misconfigured worker fails before its first external call.
func NewService(deps ServiceDeps) (Service, error) {
	var missing []string
	if deps.Credentials == nil {
		missing = append(missing, "credential provider")
	}
	if deps.Sender == nil {
		missing = append(missing, "email sender")
	}
	if deps.OpenStore == nil {
		missing = append(missing, "user store")
	}
	if deps.From == "" {
		missing = append(missing, "from address")
	}
	if deps.Subject == "" {
		missing = append(missing, "subject")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("notification service: missing %s: %w", strings.Join(missing, ", "), domain.ErrConfigurationMissing)
	}
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &service{
		creds:             deps.Credentials,
		sender:            deps.Sender,
		openStore:         deps.OpenStore,
		observer:          deps.Observer,
		log:               deps.Logger,
		from:              deps.From,
		subject:           deps.Subject,
		swallowDBFailures: deps.SwallowDBFailures,
	}, nil
}

// ParseEvent decodes and validates a VerificationEvent payload.
func ParseEvent(payload string) (*domain.VerificationEvent, error) {
	var ev domain.VerificationEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, fmt.Errorf("decode payload: %w: %w", domain.ErrMalformedPayload, err)
	}
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrMalformedPayload)
	}
	return &ev, nil
}

// Handle processes one payload. Any failure stops the remaining steps, and the
// email is always sent before the user row is touched.
func (s *service) Handle(ctx context.Context, payload string) (domain.Status, error) {
	ev, err := ParseEvent(payload)
	if err != nil {
		return "", s.fail(ctx, err)
	}
	log := s.log.With("user_id", ev.UserID.String())

	creds, err := s.creds.Resolve(ctx)
	if err != nil {
		return "", s.fail(ctx, err)
	}

	msg := email.NewVerificationMessage(s.from, s.subject, ev.Email, ev.ActivationLink)
	if err := s.sender.Send(ctx, creds.EmailAPIKey, msg); err != nil {
		if !errors.Is(err, domain.ErrEmailSend) && !errors.Is(err, domain.ErrConfigurationMissing) {
			err = fmt.Errorf("%w: %w", domain.ErrEmailSend, err)
		}
		return "", s.fail(ctx, err)
	}
	log.InfoContext(ctx, "verification email sent")

	if err := s.record(ctx, creds.DBPassword, ev.UserID.String()); err != nil {
		if !s.swallowDBFailures {
			return "", s.fail(ctx, err)
		}
		s.observer.Failure(ctx, domain.FailureKind(err))
		log.ErrorContext(ctx, "email sent but user record not updated", "error", err, "policy", "log")
	}

	s.observer.EmailSent(ctx)
	return domain.StatusSuccess, nil
}

// record opens one connection, runs the update and releases the connection
// whatever the outcome.
func (s *service) record(ctx context.Context, password, userID string) error {
	store, err := s.openStore(ctx, password)
	if err != nil {
		if !errors.Is(err, domain.ErrDatabaseUpdate) {
			err = fmt.Errorf("%w: %w", domain.ErrDatabaseUpdate, err)
		}
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			s.log.WarnContext(ctx, "closing user store", "error", cerr)
		}
	}()

	if err := store.MarkEmailSent(ctx, userID); err != nil {
		if !errors.Is(err, domain.ErrDatabaseUpdate) {
			err = fmt.Errorf("%w: %w", domain.ErrDatabaseUpdate, err)
		}
		return err
	}
	return nil
}

func (s *service) fail(ctx context.Context, err error) error {
	kind := domain.FailureKind(err)
	s.observer.Failure(ctx, kind)
	s.log.ErrorContext(ctx, "verification run failed", "kind", kind, "error", err)
	return err
}
