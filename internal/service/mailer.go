package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrInvalidRecipient = errors.New("invalid email address")

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	From   string
	Dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		From:   from,
		Dialer: gomail.NewDialer(host, port, username, password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" || to == m.From {
		return ErrInvalidRecipient
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// gomail has no context support, so only refuse to start late
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.Dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed, %w", err)
	}

	return nil
}

// PostmarkMailer sends mail through Postmark's transactional API.
type PostmarkMailer struct {
	From   string
	Client *postmark.Client
}

func NewPostmarkMailer(serverToken, accountToken, from string) *PostmarkMailer {
	return &PostmarkMailer{
		From:   from,
		Client: postmark.NewClient(serverToken, accountToken),
	}
}

func (m *PostmarkMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return ErrInvalidRecipient
	}

	resp, err := m.Client.SendEmail(ctx, postmark.Email{
		From:     m.From,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		Tag:      "lumo",
	})
	if err != nil {
		return fmt.Errorf("postmark send failed, %w", err)
	}

	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
	}

	return nil
}

// LogMailer writes messages to the log instead of sending them. Useful in
// development where no relay is configured. The body, which carries any
// reset link, is logged at debug level.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	zap.L().Info("Mail not sent, log transport in use",
		zap.String("to", to),
		zap.String("subject", subject))

	zap.L().Debug("Mail body", zap.String("to", to), zap.String("body", htmlBody))

	return nil
}
