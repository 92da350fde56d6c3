package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/village-rental/internal/domain"
)

const clientIDTTL = 30 * 24 * time.Hour

// ClientIDs issues and verifies the signed cookie value that identifies a
// browser. The id is the client's storage namespace.
type ClientIDs struct {
	secret []byte
	ttl    time.Duration
}

// NewClientIDs creates a ClientIDs signing with secret.
func NewClientIDs(secret string) *ClientIDs {
	return &ClientIDs{secret: []byte(secret), ttl: clientIDTTL}
}

// TTL is how long an issued id stays valid.
func (c *ClientIDs) TTL() time.Duration { return c.ttl }

// Issue generates a new client id and its signed token.
func (c *ClientIDs) Issue() (id, token string, err error) {
	id = uuid.NewString()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign client id: %w", err)
	}
	return id, token, nil
}

// Parse validates a signed token and returns the client id.
func (c *ClientIDs) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrUnauthorized
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
