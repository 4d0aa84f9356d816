package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/vedanttapdiya/vt-portfolio/internal/models"
	"github.com/vedanttapdiya/vt-portfolio/internal/utils"
)

// EmailService dispatches exactly one outbound email per accepted contact
// submission. No retry on transient provider failure: the error is surfaced
// to the caller for manual resubmission.
type EmailService interface {
	SendContactEmail(ctx context.Context, msg *models.ContactEmail) (id string, err error)
}

// contactEmailBody interpolates already-sanitized fields only.
func contactEmailBody(msg *models.ContactEmail) string {
	return fmt.Sprintf(`
                <h2>New Contact Form Submission</h2>
                <p><strong>Name:</strong> %s %s</p>
                <p><strong>Email:</strong> %s</p>
                <p><strong>Message:</strong></p>
                <p>%s</p>
                <hr>
                <p><small>This message was sent from the contact form on your portfolio website.</small></p>
        `, msg.FirstName, msg.LastName, msg.Email, msg.Message)
}

func contactEmailSubject(msg *models.ContactEmail) string {
	return fmt.Sprintf("Contact Form: %s %s", msg.FirstName, msg.LastName)
}

// --- Resend (HTTP API, default provider) ---

type resendEmailService struct {
	client *utils.ResendClient
	from   string
	to     string
}

func NewResendEmailService(client *utils.ResendClient, from, to string) EmailService {
	return &resendEmailService{client: client, from: from, to: to}
}

func (s *resendEmailService) SendContactEmail(ctx context.Context, msg *models.ContactEmail) (string, error) {
	id, err := s.client.Send(ctx, &utils.ResendMessage{
		From:    s.from,
		To:      []string{s.to},
		Subject: contactEmailSubject(msg),
		HTML:    contactEmailBody(msg),
		ReplyTo: msg.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send contact email: %w", err)
	}
	return id, nil
}

// --- SMTP (gomail) ---

type smtpEmailService struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTPEmailService(host string, port int, user, password, from, to string) EmailService {
	return &smtpEmailService{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		to:     to,
	}
}

func (s *smtpEmailService) SendContactEmail(ctx context.Context, msg *models.ContactEmail) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Reply-To", msg.Email)
	m.SetHeader("Subject", contactEmailSubject(msg))
	m.SetBody("text/html", contactEmailBody(msg))

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send contact email: %w", err)
	}
	// SMTP has no provider-issued message id.
	return uuid.NewString(), nil
}
