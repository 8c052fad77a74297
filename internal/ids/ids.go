package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique id. KSUIDs sort lexicographically by
// creation time, which keeps append-only tables (events, audit records)
// naturally ordered.
func New() string {
	return ksuid.New().String()
}
