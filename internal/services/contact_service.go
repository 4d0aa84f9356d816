package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/vedanttapdiya/vt-portfolio/internal/models"
	"github.com/vedanttapdiya/vt-portfolio/internal/utils"
)

// ContactActionType scopes challenge tokens consumed by the contact form.
const ContactActionType = "email-contact"

const (
	minMessageLen = 10
	maxMessageLen = 1000
)

var (
	nameRE  = regexp.MustCompile(`^[a-zA-Z0-9 ]{2,30}$`)
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError carries field-level detail for inline display.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input data: %d field(s)", len(e.Fields))
}

// ChallengeFailedError is an upstream rejection of the challenge token.
type ChallengeFailedError struct {
	ErrorCodes []string
}

func (e *ChallengeFailedError) Error() string {
	return "turnstile verification failed"
}

// ContactService runs an already-present submission through challenge
// verification, field validation, sanitization, and email dispatch, in that
// order. Presence checks and rate limiting happen earlier, at the handler.
type ContactService struct {
	Verifier *VerificationService
	CSRF     *CSRFService
	Emails   EmailService
	Notifier *TelegramNotifier
}

func NewContactService(verifier *VerificationService, csrf *CSRFService, emails EmailService, notifier *TelegramNotifier) *ContactService {
	return &ContactService{
		Verifier: verifier,
		CSRF:     csrf,
		Emails:   emails,
		Notifier: notifier,
	}
}

// Submit returns the provider message id of the dispatched email.
func (s *ContactService) Submit(ctx context.Context, req *models.ContactRequest, clientIP string) (string, error) {
	result, err := s.Verifier.Verify(ctx, req.TurnstileToken, ContactActionType, "", clientIP)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", &ChallengeFailedError{ErrorCodes: result.ErrorCodes}
	}

	if verr := s.validate(req); verr != nil {
		return "", verr
	}

	msg := &models.ContactEmail{
		FirstName: utils.SanitizeInput(req.FirstName),
		LastName:  utils.SanitizeInput(req.LastName),
		Email:     utils.SanitizeInput(req.Email),
		Message:   utils.SanitizeMessage(req.Message),
	}

	id, err := s.Emails.SendContactEmail(ctx, msg)
	if err != nil {
		log.Printf("[contact][submit] email send failed: %v", err)
		return "", err
	}

	if s.Notifier != nil {
		// Best-effort; delivery failures are logged inside the notifier.
		_ = s.Notifier.NotifyContact(msg)
	}

	log.Printf("[contact][submit] accepted: id=%s from=%q", id, msg.Email)
	return id, nil
}

func (s *ContactService) validate(req *models.ContactRequest) error {
	fields := map[string]string{}

	if s.CSRF != nil {
		if err := s.CSRF.Validate(req.CSRFToken); errors.Is(err, ErrInvalidCSRFToken) {
			fields["csrfToken"] = "invalid or expired token"
		}
	}
	if !nameRE.MatchString(strings.TrimSpace(req.FirstName)) {
		fields["firstName"] = "must be 2-30 alphanumeric characters"
	}
	if !nameRE.MatchString(strings.TrimSpace(req.LastName)) {
		fields["lastName"] = "must be 2-30 alphanumeric characters"
	}
	if !emailRE.MatchString(strings.TrimSpace(req.Email)) {
		fields["email"] = "must be a valid email address"
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Message)); n < minMessageLen || n > maxMessageLen {
		fields["message"] = fmt.Sprintf("must be %d-%d characters", minMessageLen, maxMessageLen)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
