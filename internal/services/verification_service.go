package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vedanttapdiya/vt-portfolio/internal/store"
	"github.com/vedanttapdiya/vt-portfolio/internal/utils"
)

var (
	ErrTokenRequired         = errors.New("token is required")
	ErrTokenReused           = errors.New("token has already been used")
	ErrVerifierNotConfigured = errors.New("turnstile secret key is not configured")
	ErrUpstreamUnavailable   = errors.New("verification service unavailable")
)

// VerificationResult is the verdict for one token/action pair.
type VerificationResult struct {
	Success    bool
	Cached     bool
	ErrorCodes []string
}

// VerificationService validates client-asserted challenge tokens against
// Cloudflare Turnstile and enforces single use per (token, action) pair.
type VerificationService struct {
	Client  *utils.TurnstileClient
	Records store.RecordStore
}

func NewVerificationService(client *utils.TurnstileClient, records store.RecordStore) *VerificationService {
	return &VerificationService{Client: client, Records: records}
}

// Verify walks the per-request state machine:
//
//	missing token            -> ErrTokenRequired
//	recorded, other action   -> ErrTokenReused
//	recorded, same action    -> accepted (cached)
//	unseen                   -> upstream siteverify -> accept+record or reject
//
// Upstream network failure is ErrUpstreamUnavailable: never accepted.
func (s *VerificationService) Verify(ctx context.Context, token, actionType, actionID, remoteIP string) (*VerificationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	if s.Client == nil || s.Client.Secret == "" {
		log.Printf("[verify] rejected: secret key not configured")
		return nil, ErrVerifierNotConfigured
	}

	rec := store.VerificationRecord{
		ActionType: actionType,
		ActionID:   actionID,
		VerifiedAt: time.Now(),
	}
	digest := utils.TokenDigest(token)

	if existing, ok, err := s.Records.Get(digest); err != nil {
		return nil, fmt.Errorf("record lookup: %w", err)
	} else if ok {
		if existing.ActionKey() != rec.ActionKey() {
			log.Printf("[verify] token reuse across actions: recorded=%q attempted=%q", existing.ActionType, actionType)
			return nil, ErrTokenReused
		}
		// Idempotent re-confirmation: a client retry after a dropped
		// response must not double-fail.
		return &VerificationResult{Success: true, Cached: true}, nil
	}

	out, err := s.Client.Verify(ctx, token, remoteIP)
	if err != nil {
		log.Printf("[verify] upstream error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if !out.Success {
		log.Printf("[verify] upstream rejected: codes=%v hostname=%s challenge_ts=%s", out.ErrorCodes, out.Hostname, out.ChallengeTS)
		return &VerificationResult{Success: false, ErrorCodes: out.ErrorCodes}, nil
	}

	existing, inserted, err := s.Records.PutIfAbsent(digest, rec)
	if err != nil {
		return nil, fmt.Errorf("record insert: %w", err)
	}
	if !inserted && existing.ActionKey() != rec.ActionKey() {
		// Lost a race to a concurrent request for a different action.
		return nil, ErrTokenReused
	}

	log.Printf("[verify] accepted: action_type=%q action_id=%q hostname=%s", actionType, actionID, out.Hostname)
	return &VerificationResult{Success: true}, nil
}
