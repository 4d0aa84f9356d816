package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vedanttapdiya/vt-portfolio/internal/models"
)

type captureEmailService struct {
	calls int
	last  *models.ContactEmail
	id    string
	err   error
}

func (c *captureEmailService) SendContactEmail(_ context.Context, msg *models.ContactEmail) (string, error) {
	c.calls++
	c.last = msg
	if c.err != nil {
		return "", c.err
	}
	return c.id, nil
}

func newTestContactService(t *testing.T, verdict string, emails *captureEmailService) (*ContactService, *CSRFService) {
	t.Helper()
	srv := newSiteverifyStub(t, verdict, nil)
	t.Cleanup(srv.Close)
	csrf := NewCSRFService("test-secret", time.Hour)
	return NewContactService(newTestVerifier(t, srv.URL), csrf, emails, nil), csrf
}

func validRequest(t *testing.T, csrf *CSRFService) *models.ContactRequest {
	t.Helper()
	tok, err := csrf.Issue()
	if err != nil {
		t.Fatalf("issue csrf token: %v", err)
	}
	return &models.ContactRequest{
		FirstName:      "Jane",
		LastName:       "Doe",
		Email:          "jane@example.com",
		Message:        "Hello, I would like to talk about a project.",
		CSRFToken:      tok,
		TurnstileToken: "tok-valid",
	}
}

func TestContactSubmitHappyPath(t *testing.T) {
	emails := &captureEmailService{id: "msg-123"}
	svc, csrf := newTestContactService(t, `{"success":true}`, emails)

	id, err := svc.Submit(context.Background(), validRequest(t, csrf), "203.0.113.7")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "msg-123" {
		t.Errorf("id = %q, want msg-123", id)
	}
	if emails.calls != 1 {
		t.Fatalf("email sends = %d, want exactly 1", emails.calls)
	}
	if got := contactEmailSubject(emails.last); got != "Contact Form: Jane Doe" {
		t.Errorf("subject = %q", got)
	}
}

func TestContactSubmitChallengeFailed(t *testing.T) {
	emails := &captureEmailService{id: "msg-123"}
	svc, csrf := newTestContactService(t, `{"success":false,"error-codes":["invalid-input-response"]}`, emails)

	_, err := svc.Submit(context.Background(), validRequest(t, csrf), "")
	var cerr *ChallengeFailedError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ChallengeFailedError", err)
	}
	if len(cerr.ErrorCodes) != 1 || cerr.ErrorCodes[0] != "invalid-input-response" {
		t.Errorf("error codes = %v", cerr.ErrorCodes)
	}
	if emails.calls != 0 {
		t.Error("a failed challenge must never reach the email provider")
	}
}

func TestContactSubmitValidation(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(r *models.ContactRequest)
		wantField string
	}{
		{"first name too short", func(r *models.ContactRequest) { r.FirstName = "J" }, "firstName"},
		{"first name has markup", func(r *models.ContactRequest) { r.FirstName = "Jo<script>" }, "firstName"},
		{"last name too long", func(r *models.ContactRequest) { r.LastName = strings.Repeat("a", 31) }, "lastName"},
		{"email missing domain", func(r *models.ContactRequest) { r.Email = "jane@" }, "email"},
		{"email missing tld", func(r *models.ContactRequest) { r.Email = "jane@example" }, "email"},
		{"message 9 runes", func(r *models.ContactRequest) { r.Message = strings.Repeat("x", 9) }, "message"},
		{"message 1001 runes", func(r *models.ContactRequest) { r.Message = strings.Repeat("x", 1001) }, "message"},
		{"bad csrf token", func(r *models.ContactRequest) { r.CSRFToken = "forged" }, "csrfToken"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emails := &captureEmailService{id: "msg-123"}
			svc, csrf := newTestContactService(t, `{"success":true}`, emails)

			req := validRequest(t, csrf)
			tc.mutate(req)

			_, err := svc.Submit(context.Background(), req, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := verr.Fields[tc.wantField]; !ok {
				t.Errorf("fields = %v, want %q flagged", verr.Fields, tc.wantField)
			}
			if emails.calls != 0 {
				t.Error("invalid input must never reach the email provider")
			}
		})
	}
}

func TestContactSubmitMessageBoundaries(t *testing.T) {
	for _, n := range []int{10, 1000} {
		emails := &captureEmailService{id: "msg-123"}
		svc, csrf := newTestContactService(t, `{"success":true}`, emails)

		req := validRequest(t, csrf)
		req.Message = strings.Repeat("x", n)
		if _, err := svc.Submit(context.Background(), req, ""); err != nil {
			t.Errorf("message of %d runes should be accepted: %v", n, err)
		}
	}
}

func TestContactSubmitSanitizesBeforeDispatch(t *testing.T) {
	emails := &captureEmailService{id: "msg-123"}
	svc, csrf := newTestContactService(t, `{"success":true}`, emails)

	req := validRequest(t, csrf)
	req.Message = "Hi there <script>alert(1)</script>\nsecond line"

	if _, err := svc.Submit(context.Background(), req, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got := emails.last.Message
	if strings.Contains(got, "<script>") {
		t.Errorf("message reached provider unescaped: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("message not entity-escaped: %q", got)
	}
	if !strings.Contains(got, "<br>") {
		t.Errorf("newline not converted to <br>: %q", got)
	}
}

func TestContactSubmitEmailFailureSurfaces(t *testing.T) {
	emails := &captureEmailService{err: errors.New("provider down")}
	svc, csrf := newTestContactService(t, `{"success":true}`, emails)

	if _, err := svc.Submit(context.Background(), validRequest(t, csrf), ""); err == nil {
		t.Fatal("expected provider failure to surface")
	}
	if emails.calls != 1 {
		t.Errorf("email sends = %d, want exactly 1 (no retry)", emails.calls)
	}
}
