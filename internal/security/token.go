package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed companion of an opaque session token. The
// embedded expiry is validated by policy on every use, independently of
// whatever the session store currently holds.
type SessionClaims struct {
	SubjectID string `json:"sub_id"`
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func SignSessionClaims(secret string, subjectID string, sessionID string, role string, expiresAt time.Time, now time.Time) (string, error) {
	claims := SessionClaims{
		SubjectID: subjectID,
		SessionID: sessionID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   subjectID,
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign claims: %w", err)
	}
	return signed, nil
}

// ParseSessionClaims verifies the signature but not expiry: expiry is
// the policy package's call, so an expired claim still parses and the
// caller can distinguish "expired" from "garbage".
func ParseSessionClaims(tokenStr string, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// GenerateSessionToken mints the opaque token handed to the client and
// the sha256 hash stored at rest. The raw token never touches the
// database.
func GenerateSessionToken() (string, []byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	hash := HashToken(token)
	return token, hash, nil
}

func HashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
