package smtp

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
	"github.com/go-verification-mailer/internal/email"
)

// Mailer sends email over SMTP. It backs EMAIL_PROVIDER=smtp for local
// development against Mailpit or MailHog.
type Mailer struct {
	host     string
	port     int
	username string
	tls      mail.TLSPolicy
}

func NewMailer(cfg config.SMTP) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		tls:      tlsPolicy(cfg.TLS),
	}
}

// Send delivers msg. The resolved API key doubles as the SMTP password when
// SMTP_USERNAME is set.
func (m *Mailer) Send(ctx context.Context, apiKey string, msg email.Message) error {
	mm, err := buildMsg(msg)
	if err != nil {
		return fmt.Errorf("smtp: %w: %w", domain.ErrEmailSend, err)
	}

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(m.tls),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(apiKey),
		)
	}
	c, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp: create client: %w: %w", domain.ErrEmailSend, err)
	}
	if err := c.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("smtp: %w: %w", domain.ErrEmailSend, err)
	}
	return nil
}

func buildMsg(msg email.Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Text)
	mm.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return mm, nil
}

func tlsPolicy(s string) mail.TLSPolicy {
	switch s {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
