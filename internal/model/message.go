package model

import "time"

// CounterpartyType describes who is on the other side of a payment.
type CounterpartyType string

// Counterparty type constants.
const (
	CounterpartyPerson   CounterpartyType = "PERSON"
	CounterpartyBusiness CounterpartyType = "BUSINESS"
	CounterpartyUnknown  CounterpartyType = "UNKNOWN"
)

// ParsedMessage is the normalized bundle handed to the classification
// core by the SMS parser. Text extraction happens upstream; this core
// only ever sees clean fields. Optional fields are pointers or zero
// values; a nil IsDebit means no direction context is available (for
// example a manually entered transaction).
type ParsedMessage struct {
	Date             time.Time
	IsDebit          *bool
	Hash             string
	ReferenceNo      string
	MerchantName     string
	UPIID            string
	AccountLast4     string
	RawText          string
	CounterpartyType CounterpartyType
	AmountPaisa      int64
	IsUntrustedP2P   bool
	IsSelfTransfer   bool
}
