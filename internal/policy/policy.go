// Package policy holds the pure session-lifetime rules. Nothing here
// touches storage: expiry is judged from the signed claim alone, so a
// stale or forged client-side claim cannot outlive its server-computed
// TTL even if the store row says otherwise.
package policy

import (
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
)

const (
	// DefaultElevatedTTL is deliberately short: admin sessions expire
	// after 30 minutes of wall-clock time regardless of activity.
	DefaultElevatedTTL = 30 * time.Minute
	DefaultStandardTTL = 7 * 24 * time.Hour
)

// Lifetimes carries the configured session TTL per role class. The
// zero value falls back to the defaults, so callers without config can
// use Lifetimes{} directly.
type Lifetimes struct {
	Elevated time.Duration
	Standard time.Duration
}

func (l Lifetimes) TTLFor(role authz.Role) time.Duration {
	elevated, standard := l.Elevated, l.Standard
	if elevated <= 0 {
		elevated = DefaultElevatedTTL
	}
	if standard <= 0 {
		standard = DefaultStandardTTL
	}
	if authz.IsElevated(role) {
		return elevated
	}
	return standard
}

// IsExpired judges a claim's expiry against now. Touching a session
// never moves its expiry; an expired claim always forces
// re-authentication.
func IsExpired(expiresAt time.Time, now time.Time) bool {
	return !expiresAt.After(now)
}

// NextExpiry computes the expiry to use when a token is refreshed. A
// role change recomputes the TTL under the new role, but the result may
// only shorten the remaining lifetime, never extend it: a standard user
// promoted to admin mid-session drops to the short window, while a
// demotion keeps whatever time was already left if that is shorter.
func (l Lifetimes) NextExpiry(role authz.Role, currentExpiry time.Time, now time.Time) time.Time {
	recomputed := now.Add(l.TTLFor(role))
	if recomputed.Before(currentExpiry) {
		return recomputed
	}
	return currentExpiry
}
