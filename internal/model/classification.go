package model

import "time"

// ClassificationSource indicates which subsystem decided a transaction's
// category and type.
type ClassificationSource string

// Classification source constants.
const (
	SourceRule       ClassificationSource = "RULE"
	SourceMemory     ClassificationSource = "MEMORY"
	SourceClassifier ClassificationSource = "CLASSIFIER"
	SourceManual     ClassificationSource = "MANUAL"
)

// ClassificationRecord is an audit-trail entry written every time a
// transaction is classified or reclassified.
type ClassificationRecord struct {
	ClassifiedAt  time.Time
	Source        ClassificationSource
	Type          TransactionType
	TransactionID int64
	CategoryID    int
	Confidence    int
}
