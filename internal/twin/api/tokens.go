package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
)

const tokenIssuer = "weddingcheck-twin"

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// audience checks.
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims are carried by every session_id the twin issues.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens. The simulated clock
// drives issue and expiry times so admin time travel expires sessions.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  *store.Clock
}

// NewTokenManager creates a manager. An empty secret generates a random one,
// which invalidates tokens across restarts.
func NewTokenManager(secret string, ttl time.Duration, clock *store.Clock) (*TokenManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: key, ttl: ttl, clock: clock}, nil
}

// TTL returns how long issued tokens stay valid.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for sess.
func (m *TokenManager) Issue(sess store.Session) (string, error) {
	claims := sessionClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			NotBefore: jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns the session id and user id it carries.
func (m *TokenManager) Verify(token string) (sessionID, userID string, err error) {
	var claims sessionClaims
	_, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing sid or sub", ErrInvalidToken)
	}
	return claims.SessionID, claims.Subject, nil
}
