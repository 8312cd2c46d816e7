package trace

import "github.com/stripe/apm/internal/fastrand"

// MaxID is the largest identifier NextID can return.
const MaxID uint64 = 1<<64 - 1

// NextID returns a random span identifier drawn uniformly from
// [0, MaxID]. Identifiers are not coordinated between processes; the
// birthday bound is the only uniqueness guarantee.
func NextID() uint64 {
	return fastrand.Uint64()
}
