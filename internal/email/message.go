// Package email composes the verification message and defines the delivery
// contract implemented by the providers under internal/infrastructure.
package email

import (
	"context"
	"fmt"
)

// Message is a provider-neutral email.
type Message struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message. apiKey is the credential resolved for the current
// invocation; providers that do not authenticate ignore an empty key.
type Sender interface {
	Send(ctx context.Context, apiKey string, msg Message) error
}

const textTemplate = `Welcome!

Please confirm your email address by opening the link below:

%s

If you did not create an account, you can ignore this email.
`

const htmlTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Welcome!</h2>
  <p>Please confirm your email address by clicking the link below:</p>
  <p><a href="%[1]s">Verify my email</a></p>
  <p>Or paste this URL into your browser:<br>%[1]s</p>
  <p style="color: #888; font-size: 12px;">If you did not create an account, you can ignore this email.</p>
</body>
</html>
`

// NewVerificationMessage builds the verification email. The link is embedded
// verbatim in both bodies; callers validate it before it gets here.
func NewVerificationMessage(from, subject, to, link string) Message {
	return Message{
		To:      to,
		From:    from,
		Subject: subject,
		Text:    fmt.Sprintf(textTemplate, link),
		HTML:    fmt.Sprintf(htmlTemplate, link),
	}
}
