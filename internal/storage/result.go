package storage

// Result describes the outcome of a single storage operation: which tier
// served it and which tiers were tried and failed along the way.
type Result struct {
	Success            bool
	Value              string
	Found              bool
	Used               Tier
	FallbacksAttempted []Tier
}
