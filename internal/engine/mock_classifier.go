package engine

import (
	"context"
	"sync"

	"github.com/niharm/paisatrail/internal/model"
)

// MockClassifier is a test implementation of the Classifier interface.
// It returns a fixed suggestion and records every call.
type MockClassifier struct {
	Err        error
	Category   string
	Confidence float64
	calls      []model.ParsedMessage
	mu         sync.Mutex
}

// NewMockClassifier creates a mock classifier with a fixed answer.
func NewMockClassifier(category string, confidence float64) *MockClassifier {
	return &MockClassifier{Category: category, Confidence: confidence}
}

// SuggestCategory returns the configured suggestion.
func (m *MockClassifier) SuggestCategory(_ context.Context, msg model.ParsedMessage, _ []model.Category) (string, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, msg)
	if m.Err != nil {
		return "", 0, m.Err
	}
	return m.Category, m.Confidence, nil
}

// CallCount reports how many suggestions were requested.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
