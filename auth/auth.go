/*
Package auth provides the Authentication collaborator: HS256 bearer tokens
bound to a user ID.

PURPOSE:
  The engine assumes the acting user is already authenticated. The HTTP
  layer calls Authenticate with the claimed user ID and the bearer token
  before any engine operation runs.

TOKENS:
  Subject  decimal user ID
  ID       random UUID (jti), so two tokens issued in the same second differ
  Issuer   "tablenest"
  Expiry   IssuedAt + TTL
*/
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tablenest/dining-engine/dining"
)

const issuer = "tablenest"

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

var ErrNoSecret = errors.New("auth: signing secret is empty")

// Authenticator issues and verifies user tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration

	// Now is the clock used for issuing and expiry checks. Tests pin it.
	Now func() time.Time
}

func New(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, Now: time.Now}, nil
}

// Issue returns a signed token for the user.
func (a *Authenticator) Issue(userID dining.UserID) (string, error) {
	now := a.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(int64(userID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate reports whether token is a valid, unexpired token issued to
// userID. A malformed, expired or foreign token is not an error; it is
// simply not valid.
func (a *Authenticator) Authenticate(userID dining.UserID, token string) (bool, error) {
	if len(a.secret) == 0 {
		return false, ErrNoSecret
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.Now),
	)
	if err != nil || !parsed.Valid {
		return false, nil
	}

	return claims.Subject == strconv.FormatInt(int64(userID), 10), nil
}
