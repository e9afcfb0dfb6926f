package model

import "time"

// MerchantMemory is a learned merchant → category mapping built up from
// repeated sightings. Once locked it is treated as authoritative for
// auto-classification.
type MerchantMemory struct {
	FirstSeen       time.Time
	LastSeen        time.Time
	NormalizedName  string
	Type            TransactionType
	CategoryID      int
	OccurrenceCount int
	Locked          bool
	UserConfirmed   bool
}
