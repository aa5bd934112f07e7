package runner

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/spamcheck/internal/artifact"
	"github.com/crimson-sun/spamcheck/internal/classifier"
	"github.com/crimson-sun/spamcheck/internal/model"
	"github.com/crimson-sun/spamcheck/internal/vectorizer"
)

var (
	// ErrArtifactLoad marks failures to read, verify or decode an artifact.
	ErrArtifactLoad = errors.New("artifact load failed")
	// ErrInference marks failures while transforming or predicting.
	ErrInference = errors.New("inference failed")
)

// Paths locates the two artifacts and their optional checksums.
type Paths struct {
	Vectorizer       string
	Classifier       string
	VectorizerSHA256 string
	ClassifierSHA256 string
	ONNXRuntimeLib   string
}

// Runner orchestrates the transform → predict pipeline over a loaded
// vectorizer and classifier. Both are read-only after construction, so a
// Runner is safe for concurrent use.
type Runner struct {
	vectorizer  vectorizer.Vectorizer
	classifier  classifier.Classifier
	fingerprint string
}

// New creates a Runner from already-loaded components.
func New(vec vectorizer.Vectorizer, cls classifier.Classifier) *Runner {
	return &Runner{vectorizer: vec, classifier: cls}
}

// Load reads both artifacts from disk. Any failure is wrapped with
// ErrArtifactLoad.
func Load(p Paths) (*Runner, error) {
	cls, clsFile, err := classifier.Load(p.Classifier, p.ClassifierSHA256, classifier.Options{
		ONNXRuntimeLib: p.ONNXRuntimeLib,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactLoad, err)
	}

	vec, vecFile, err := vectorizer.Load(p.Vectorizer, p.VectorizerSHA256)
	if err != nil {
		cls.Close()
		return nil, fmt.Errorf("%w: %w", ErrArtifactLoad, err)
	}

	r := New(vec, cls)
	r.fingerprint = artifact.Fingerprint(vecFile, clsFile)

	slog.Debug("artifacts loaded",
		"vectorizer", p.Vectorizer,
		"vectorizer_kind", vec.Kind(),
		"vectorizer_dim", vec.Dim(),
		"classifier", p.Classifier,
		"classifier_format", clsFile.Format.String(),
		"classifier_features", cls.NumFeatures(),
		"fingerprint", r.fingerprint,
	)
	return r, nil
}

// Fingerprint identifies the loaded artifact pair. It is empty for Runners
// built with New.
func (r *Runner) Fingerprint() string {
	return r.fingerprint
}

// Predict transforms a single text and returns the predicted label.
func (r *Runner) Predict(text string) (model.Prediction, error) {
	x, err := r.vectorizer.Transform(text)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("%w: %w", ErrInference, err)
	}

	label, err := r.classifier.Predict(x)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	return model.Prediction{Label: label}, nil
}

// PredictBatch predicts each text in order. It stops at the first failure.
func (r *Runner) PredictBatch(texts []string) ([]model.Prediction, error) {
	preds := make([]model.Prediction, 0, len(texts))
	for _, text := range texts {
		p, err := r.Predict(text)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// Close releases classifier resources.
func (r *Runner) Close() error {
	if r.classifier != nil {
		return r.classifier.Close()
	}
	return nil
}
