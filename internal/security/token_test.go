package security

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestSessionClaimsRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := now.Add(30 * time.Minute)

	signed, err := SignSessionClaims("test-secret", "user-1", "sess-1", "admin", expiresAt, now)
	require.NoError(t, err)

	claims, err := ParseSessionClaims(signed, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.ExpiresAt.Time.Equal(expiresAt))
}

func TestParseSessionClaimsRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	signed, err := SignSessionClaims("secret-a", "user-1", "sess-1", "user", now.Add(time.Hour), now)
	require.NoError(t, err)

	_, err = ParseSessionClaims(signed, "secret-b")
	assert.Error(t, err)
}

func TestParseSessionClaimsAllowsExpired(t *testing.T) {
	// Expiry is policy's decision, not the parser's: an expired but
	// correctly signed claim must still parse.
	now := time.Now()
	signed, err := SignSessionClaims("secret", "user-1", "sess-1", "admin", now.Add(-time.Hour), now.Add(-2*time.Hour))
	require.NoError(t, err)

	claims, err := ParseSessionClaims(signed, "secret")
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Before(now))
}

func TestGenerateSessionToken(t *testing.T) {
	token, hash, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, HashToken(token), hash)

	other, _, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Builds the encoded form by hand instead of via HashPassword, so the
// parser is exercised against the format itself: both base64 segments
// must come back out as separate fields.
func TestVerifyPasswordParsesEncodedForm(t *testing.T) {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("hunter2-hunter2"), salt, 3, 64*1024, 2, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$t=3,m=65536,p=2$%s$%s",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key))

	ok, err := VerifyPassword("hunter2-hunter2", []byte(encoded))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordRejectsMalformedEncoding(t *testing.T) {
	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$t=3,m=65536,p=2$missing-hash-segment",
		"$bcrypt$v=19$t=3,m=65536,p=2$c2FsdA==$aGFzaA==",
	} {
		_, err := VerifyPassword("whatever", []byte(bad))
		assert.Error(t, err, "encoded=%q", bad)
	}
}
