package models

// ContactRequest is the raw contact-form submission body. Presence and shape
// are validated by the contact service, not by binding tags, so that missing
// fields and malformed fields produce distinct responses.
type ContactRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	CSRFToken      string `json:"csrfToken"`
	TurnstileToken string `json:"turnstileToken"`
}

// ContactEmail carries sanitized submission fields to the email and
// notification collaborators. Never persisted.
type ContactEmail struct {
	FirstName string
	LastName  string
	Email     string
	Message   string
}
