package notify

import (
	"context"
	"fmt"

	"github.com/keighl/postmark"
)

// Mailer sends transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// PostmarkMailer sends email through Postmark.
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer returns nil when no server token is configured, which
// disables email.
func NewPostmarkMailer(serverToken, from string) *PostmarkMailer {
	if serverToken == "" || from == "" {
		return nil
	}
	return &PostmarkMailer{client: postmark.NewClient(serverToken, ""), from: from}
}

func (m *PostmarkMailer) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	if m == nil {
		return ErrNotConfigured
	}
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		Tag:      "order-confirmation",
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
