package vectorizer

import (
	"fmt"

	"github.com/crimson-sun/spamcheck/internal/artifact"
	"github.com/crimson-sun/spamcheck/internal/model"
)

// Vectorizer maps raw text to a numeric feature vector.
type Vectorizer interface {
	Transform(text string) (model.FeatureVector, error)
	Dim() int
}

// Load reads a vectorizer artifact. wantSHA256 may be empty to skip
// checksum verification.
func Load(path, wantSHA256 string) (*TextVectorizer, *artifact.File, error) {
	f, err := artifact.Read(path, wantSHA256)
	if err != nil {
		return nil, nil, fmt.Errorf("vectorizer: %w", err)
	}
	if f.Format != artifact.FormatJSON && f.Format != artifact.FormatYAML {
		return nil, nil, fmt.Errorf("vectorizer: unsupported artifact format %q for %s", f.Format, path)
	}

	var d document
	if err := f.Decode(&d); err != nil {
		return nil, nil, fmt.Errorf("vectorizer: %w", err)
	}

	v, err := newTextVectorizer(d)
	if err != nil {
		return nil, nil, err
	}
	return v, f, nil
}
