// Package auth hashes passwords and issues the signed session tokens carried in the
// session cookie.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 24 * time.Hour

// ContextKey is the request-scoped key under which the verified *Identity is stored.
const ContextKey = "user"

// Identity is the authenticated user decoded from a session token.
type Identity struct {
	UserID   int64
	Username string
}

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID   int64  `json:"userid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens with a process-wide secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. A zero ttl falls back to SessionTTL.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// TTL is the lifetime given to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given user, valid for the service TTL.
func (s *TokenService) Issue(userID int64, username string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("token secret is empty")
	}

	issuedAt := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString. Every failure, including an
// empty string, reports false.
func (s *TokenService) Verify(tokenString string) (Identity, bool) {
	if tokenString == "" || len(s.secret) == 0 {
		return Identity{}, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, false
	}
	if claims.UserID <= 0 || claims.Username == "" {
		return Identity{}, false
	}

	return Identity{UserID: claims.UserID, Username: claims.Username}, true
}
