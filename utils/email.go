// utils/email.go
package utils

import (
	"fmt"
	"log"

	"ecommerce-backend/config"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a plain text email.
type Mailer interface {
	SendEmail(toEmail, subject, body string) error
}

// NewMailer builds the transport named in cfg.Transport.
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Transport {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is not set")
		}
		return &SMTPMailer{
			dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
			from:   cfg.Sender,
		}, nil
	case "postmark":
		if cfg.PostmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		return &PostmarkMailer{client: postmark.NewClient(cfg.PostmarkToken, ""), from: cfg.Sender}, nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		return &SendGridMailer{client: sendgrid.NewSendClient(cfg.SendGridAPIKey), from: cfg.Sender}, nil
	case "log", "":
		return LogMailer{}, nil
	default:
		return nil, fmt.Errorf("unknown EMAIL_TRANSPORT %q", cfg.Transport)
	}
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) SendEmail(toEmail, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// PostmarkMailer sends through the Postmark API.
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

func (m *PostmarkMailer) SendEmail(toEmail, subject, body string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		TextBody: body,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   string
}

func (m *SendGridMailer) SendEmail(toEmail, subject, body string) error {
	message := mail.NewSingleEmail(mail.NewEmail("", m.from), subject, mail.NewEmail("", toEmail), body, "")
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid returned %d", resp.StatusCode)
	}
	return nil
}

// LogMailer only logs the message. Used when no transport is configured.
type LogMailer struct{}

func (LogMailer) SendEmail(toEmail, subject, body string) error {
	log.Printf("email to %s (%s):\n%s", toEmail, subject, body)
	return nil
}

// PasswordRecoveryEmail renders the subject and body of a reset link email.
func PasswordRecoveryEmail(email, resetURL string) (subject, body string) {
	subject = "Ecommerce - Password Recovery"
	body = fmt.Sprintf("Hello,\n\nWe have received a request to reset the password for the account associated with %s. "+
		"You can reset your password by clicking the link below:\n\n%s\n\n"+
		"This link expires in 15 minutes. If you did not request a password reset, you can safely ignore this email.\n\nRegards,\nTeam Ecommerce",
		email, resetURL)
	return subject, body
}
