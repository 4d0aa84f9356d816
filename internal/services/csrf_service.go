package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vedanttapdiya/vt-portfolio/internal/utils"
)

var ErrInvalidCSRFToken = errors.New("invalid csrf token")

// CSRFService issues and validates the short-lived form tokens the contact
// form carries alongside the challenge token.
type CSRFService struct {
	key []byte
	ttl time.Duration
}

func NewCSRFService(secret string, ttl time.Duration) *CSRFService {
	return &CSRFService{key: []byte(secret), ttl: ttl}
}

// TTL reports the configured token lifetime.
func (s *CSRFService) TTL() time.Duration { return s.ttl }

func (s *CSRFService) Issue() (string, error) {
	jti, err := utils.NewOpaqueToken(16)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

func (s *CSRFService) Validate(tokenStr string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// HMAC only; reject alg confusion.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCSRFToken
	}
	return nil
}
