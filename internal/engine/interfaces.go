package engine

import (
	"context"

	"github.com/niharm/paisatrail/internal/model"
)

// Classifier defines the contract for the fallback category suggester.
// The shipped implementation matches merchant keywords; a trained
// merchant model can be substituted without touching the engine.
// An empty category with a nil error means "no suggestion".
type Classifier interface {
	SuggestCategory(ctx context.Context, msg model.ParsedMessage, categories []model.Category) (category string, confidence float64, err error)
}
