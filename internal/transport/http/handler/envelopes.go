package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-verification-mailer/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusEnvelope wraps the result of a processed notification.
type StatusEnvelope struct {
	Status    domain.Status `json:"status"`
	MessageID string        `json:"message_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
