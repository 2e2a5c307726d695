package guard

// Outcome is what a guarded write did.
type Outcome int

const (
	// Written means the underlying write succeeded on the first attempt.
	Written Outcome = iota
	// RejectedOversized means the value was too large for the cache key
	// and the underlying store was never touched.
	RejectedOversized
	// RecoveredAfterEvict means the first write hit the quota, the
	// recognized keys were evicted and the retry succeeded.
	RecoveredAfterEvict
	// FailedAfterRetry means the retry failed too. The value was not stored.
	FailedAfterRetry
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case RejectedOversized:
		return "rejected_oversized"
	case RecoveredAfterEvict:
		return "recovered_after_evict"
	case FailedAfterRetry:
		return "failed_after_retry"
	default:
		return "unknown"
	}
}

// Stored reports whether the value ended up in the store.
func (o Outcome) Stored() bool {
	return o == Written || o == RecoveredAfterEvict
}

type Stats struct {
	Written             uint64
	RejectedOversized   uint64
	RecoveredAfterEvict uint64
	FailedAfterRetry    uint64
	EvictedKeys         uint64
}
