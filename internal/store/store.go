package store

import "time"

// VerificationRecord marks a challenge token as consumed for one action.
// Records are keyed by a digest of the token, never by the raw token.
type VerificationRecord struct {
	ActionType string
	ActionID   string
	VerifiedAt time.Time
}

// ActionKey scopes token reuse: the same token may be re-confirmed for the
// same action, but never replayed against a different one.
func (r VerificationRecord) ActionKey() string {
	return r.ActionType + "\x00" + r.ActionID
}

// RecordStore is the injected, explicitly-owned store for verification
// records. Entries expire after the configured TTL; implementations must
// keep read-modify-write sequences race-free.
type RecordStore interface {
	// Get returns the live (non-expired) record for key.
	Get(key string) (VerificationRecord, bool, error)
	// PutIfAbsent inserts rec unless a live record already exists, in which
	// case the existing record is returned and inserted is false.
	PutIfAbsent(key string, rec VerificationRecord) (existing VerificationRecord, inserted bool, err error)
	Len() (int, error)
	Close() error
}
