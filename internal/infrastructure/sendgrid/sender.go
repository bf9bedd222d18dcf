package sendgrid

import (
	"context"
	"fmt"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/email"
)

const (
	sendEndpoint = "/v3/mail/send"
	sendTimeout  = 10 * time.Second
)

// Sender delivers email through the SendGrid v3 mail send API. Each call is
// bounded by timeout; the SDK's default HTTP client has none.
type Sender struct {
	host    string
	timeout time.Duration
}

// NewSender creates a Sender targeting host (normally https://api.sendgrid.com).
func NewSender(host string) *Sender {
	return &Sender{host: host, timeout: sendTimeout}
}

func (s *Sender) Send(ctx context.Context, apiKey string, msg email.Message) error {
	if apiKey == "" {
		return fmt.Errorf("sendgrid: empty API key: %w", domain.ErrConfigurationMissing)
	}
	m := mail.NewSingleEmail(
		mail.NewEmail("", msg.From),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)

	req := sg.GetRequest(apiKey, sendEndpoint, s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(m)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := sg.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w: %w", domain.ErrEmailSend, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s: %w", resp.StatusCode, resp.Body, domain.ErrEmailSend)
	}
	return nil
}
