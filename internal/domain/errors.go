package domain

import "errors"

// Sentinel errors for the failure kinds of a verification run.
// Infrastructure wraps these so callers can tell them apart with errors.Is.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrSecretRetrieval      = errors.New("secret retrieval failed")
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrEmailSend            = errors.New("email send failed")
	ErrDatabaseUpdate       = errors.New("database update failed")
	// ErrUserNotFound is always joined with ErrDatabaseUpdate.
	ErrUserNotFound = errors.New("user not found")
)

// Counter names reported to the metrics sink.
const (
	MetricEmailsSent           = "EmailsSent"
	KindConfigurationMissing   = "ConfigurationMissing"
	KindSecretRetrievalFailure = "SecretRetrievalFailure"
	KindMalformedPayload       = "MalformedPayload"
	KindEmailSendFailure       = "EmailSendFailure"
	KindDatabaseUpdateFailure  = "DatabaseUpdateFailure"
	KindUnknown                = "UnknownFailure"
)

// FailureKind maps err to the counter name used for it.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.Is(err, ErrSecretRetrieval):
		return KindSecretRetrievalFailure
	case errors.Is(err, ErrMalformedPayload):
		return KindMalformedPayload
	case errors.Is(err, ErrEmailSend):
		return KindEmailSendFailure
	case errors.Is(err, ErrDatabaseUpdate), errors.Is(err, ErrUserNotFound):
		return KindDatabaseUpdateFailure
	default:
		return KindUnknown
	}
}
