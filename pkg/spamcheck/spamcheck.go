package spamcheck

import (
	"fmt"

	"github.com/crimson-sun/spamcheck/internal/runner"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrArtifactLoad = runner.ErrArtifactLoad
	ErrInference    = runner.ErrInference
)

// Checker predicts class labels for email text.
// Safe for concurrent use.
type Checker struct {
	runner *runner.Runner
}

// New creates a Checker, loading and validating both artifacts.
func New(opts ...Option) (*Checker, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	vecPath, clsPath := resolvePaths(o)
	r, err := runner.Load(runner.Paths{
		Vectorizer:       vecPath,
		Classifier:       clsPath,
		VectorizerSHA256: o.vectorizerSHA256,
		ClassifierSHA256: o.classifierSHA256,
		ONNXRuntimeLib:   o.onnxRuntimeLib,
	})
	if err != nil {
		return nil, fmt.Errorf("spamcheck: %w", err)
	}
	return &Checker{runner: r}, nil
}

// Predict returns the predicted label for a single text, for example 1 for
// spam and 0 for not spam with a binary model.
func (c *Checker) Predict(text string) (int64, error) {
	p, err := c.runner.Predict(text)
	if err != nil {
		return 0, err
	}
	return p.Label, nil
}

// PredictBatch predicts each text in order and stops at the first failure.
func (c *Checker) PredictBatch(texts []string) ([]int64, error) {
	preds, err := c.runner.PredictBatch(texts)
	if err != nil {
		return nil, err
	}
	labels := make([]int64, len(preds))
	for i, p := range preds {
		labels[i] = p.Label
	}
	return labels, nil
}

// Fingerprint identifies the loaded artifact pair.
func (c *Checker) Fingerprint() string {
	return c.runner.Fingerprint()
}

// Close releases model resources. Must be called when the Checker is no
// longer needed.
func (c *Checker) Close() error {
	return c.runner.Close()
}
