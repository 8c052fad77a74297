package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
)

func TestTTLForDefaults(t *testing.T) {
	var l Lifetimes

	assert.Equal(t, 30*time.Minute, l.TTLFor(authz.RoleAdmin))
	assert.Equal(t, 30*time.Minute, l.TTLFor(authz.RoleSuperAdmin))
	assert.Equal(t, 7*24*time.Hour, l.TTLFor(authz.RoleUser))
}

func TestTTLForConfigured(t *testing.T) {
	l := Lifetimes{Elevated: 15 * time.Minute, Standard: 48 * time.Hour}

	assert.Equal(t, 15*time.Minute, l.TTLFor(authz.RoleAdmin))
	assert.Equal(t, 48*time.Hour, l.TTLFor(authz.RoleUser))

	// A partially configured value only overrides its own class.
	l = Lifetimes{Elevated: 10 * time.Minute}
	assert.Equal(t, 10*time.Minute, l.TTLFor(authz.RoleSuperAdmin))
	assert.Equal(t, 7*24*time.Hour, l.TTLFor(authz.RoleUser))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(now.Add(time.Minute), now))
	assert.True(t, IsExpired(now.Add(-time.Second), now))
	// Boundary: a claim expiring exactly now is expired.
	assert.True(t, IsExpired(now, now))
}

func TestAdminSessionExpiresRegardlessOfActivity(t *testing.T) {
	var l Lifetimes
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	expiresAt := start.Add(l.TTLFor(authz.RoleAdmin))

	// Simulated touches at minute 10 and 25 do not move expiry.
	for _, elapsed := range []time.Duration{10 * time.Minute, 25 * time.Minute} {
		assert.False(t, IsExpired(expiresAt, start.Add(elapsed)))
	}
	assert.True(t, IsExpired(expiresAt, start.Add(31*time.Minute)))
}

func TestNextExpiryOnlyShortens(t *testing.T) {
	var l Lifetimes
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Promotion: 6 days left as a user, recomputed as admin -> 30m.
	current := now.Add(6 * 24 * time.Hour)
	assert.Equal(t, now.Add(30*time.Minute), l.NextExpiry(authz.RoleAdmin, current, now))

	// Demotion with 10 minutes left: recomputing as user would extend
	// to 7 days, so the original expiry stands.
	current = now.Add(10 * time.Minute)
	assert.Equal(t, current, l.NextExpiry(authz.RoleUser, current, now))
}
