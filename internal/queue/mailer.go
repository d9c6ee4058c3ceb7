package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailjet/mailjet-apiv3-go"
)

// Message is one outgoing plain text email.
type Message struct {
	FromEmail string
	FromName  string
	To        string
	Subject   string
	Text      string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailjetMailer sends through the Mailjet v3.1 send API.
type MailjetMailer struct {
	client *mailjet.Client
}

// NewMailjetMailer builds a mailer from API credentials.
func NewMailjetMailer(apiKey, secretKey string) (*MailjetMailer, error) {
	if apiKey == "" || secretKey == "" {
		return nil, errors.New("mailjet: api key and secret are required")
	}
	return &MailjetMailer{client: mailjet.NewMailjetClient(apiKey, secretKey)}, nil
}

func (m *MailjetMailer) Send(_ context.Context, msg Message) error {
	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: msg.FromEmail, Name: msg.FromName},
		To:       &mailjet.RecipientsV31{{Email: msg.To}},
		Subject:  msg.Subject,
		TextPart: msg.Text,
	}}}
	if _, err := m.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("mailjet send to %s: %w", msg.To, err)
	}
	return nil
}
