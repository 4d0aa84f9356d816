package models

// VerifyRequest is the body of POST /api/verify-turnstile. ContactID and
// ContactType are optional context used for dedup scoping and logging.
type VerifyRequest struct {
	Token       string `json:"token"`
	ContactID   string `json:"contactId"`
	ContactType string `json:"contactType"`
}
