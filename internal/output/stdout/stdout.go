package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/crimson-sun/spamcheck/internal/model"
)

// Output writes each prediction's label as a JSON integer on its own line.
type Output struct {
	enc *json.Encoder
}

// New creates an Output writing to w (normally os.Stdout).
func New(w io.Writer) *Output {
	return &Output{enc: json.NewEncoder(w)}
}

func (o *Output) Write(_ context.Context, p model.Prediction) error {
	if err := o.enc.Encode(p.Label); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
