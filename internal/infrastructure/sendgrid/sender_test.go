package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sgBody struct {
	From struct {
		Email string `json:"email"`
	} `json:"from"`
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func testMessage() email.Message {
	return email.NewVerificationMessage("noreply@example.com", "Verify your email address", "a@b.com", "https://x/verify/42")
}

func TestSend_PostsMailSendRequest(t *testing.T) {
	var got sgBody
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := NewSender(srv.URL).Send(context.Background(), "SG.key", testMessage())
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.key", auth)
	assert.Equal(t, "/v3/mail/send", path)
	assert.Equal(t, "noreply@example.com", got.From.Email)
	assert.Equal(t, "Verify your email address", got.Subject)
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "a@b.com", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Contains(t, got.Content[0].Value, "https://x/verify/42")
	assert.Equal(t, "text/html", got.Content[1].Type)
	assert.Contains(t, got.Content[1].Value, "https://x/verify/42")
}

func TestSend_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	err := NewSender(srv.URL).Send(context.Background(), "SG.bad", testMessage())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailSend))
	assert.Contains(t, err.Error(), "401")
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := NewSender(srv.URL).Send(context.Background(), "SG.key", testMessage())
	assert.ErrorIs(t, err, domain.ErrEmailSend)
}

func TestSend_EmptyKey(t *testing.T) {
	err := NewSender("http://unused").Send(context.Background(), "", testMessage())
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestSend_StalledServerTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	s := NewSender(srv.URL)
	s.timeout = 50 * time.Millisecond

	start := time.Now()
	err := s.Send(context.Background(), "SG.key", testMessage())
	assert.ErrorIs(t, err, domain.ErrEmailSend)
	assert.Less(t, time.Since(start), 5*time.Second)
}
