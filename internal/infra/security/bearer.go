package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidBearerToken indicates the token is malformed or its signature failed validation.
	ErrInvalidBearerToken = errors.New("invalid bearer token")
	// ErrExpiredBearerToken indicates the token has expired.
	ErrExpiredBearerToken = errors.New("bearer token expired")
)

// SessionClaims augments registered claims with the session grant context.
type SessionClaims struct {
	SessionID string `json:"sid"`
	SubjectID string `json:"uid"`
	Level     string `json:"lvl"`
	jwt.RegisteredClaims
}

// BearerIssuer signs and validates the HS256 tokens handed out alongside
// each session.
type BearerIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewBearerIssuer constructs an issuer. The secret must be non-empty.
func NewBearerIssuer(secret, issuer string, ttl time.Duration) (*BearerIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("bearer token secret is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &BearerIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token binding the session, subject, and level.
func (b *BearerIssuer) Issue(sessionID, subjectID, level string, now time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		SubjectID: subjectID,
		Level:     level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    b.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse validates the token and returns its claims.
func (b *BearerIssuer) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidBearerToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return b.secret, nil
	}, jwt.WithIssuer(b.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredBearerToken
		}
		return nil, ErrInvalidBearerToken
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrInvalidBearerToken
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return nil, ErrInvalidBearerToken
	}

	return claims, nil
}
