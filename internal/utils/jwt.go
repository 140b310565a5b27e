package utils // package utils provides helpers for session tokens, seller ids and geo math

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed HS256 JWT identifying an authenticated user.
// The same token is set as an HTTP-only cookie and echoed in the JSON
// body, so browser and non-browser clients share one credential shape.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs a session JWT for a user. The claims
// carry the subject (user id), the role and the standard exp/iat pair.
// ttlDays controls the fixed session window (30 days in production).
func NewSessionToken(secret string, userID uint64, role string, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// HashToken returns the SHA-256 hex digest of a token string. Logout
// stores only the digest on the revocation denylist, never the token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
