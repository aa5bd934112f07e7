package output

import (
	"context"

	"github.com/crimson-sun/spamcheck/internal/model"
)

// Output defines the interface for prediction destinations.
type Output interface {
	Write(ctx context.Context, p model.Prediction) error
	Close() error
}
