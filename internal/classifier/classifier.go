package classifier

import (
	"errors"
	"fmt"

	"github.com/crimson-sun/spamcheck/internal/artifact"
	"github.com/crimson-sun/spamcheck/internal/model"
)

// ErrDimensionMismatch is returned by Predict when the feature vector's
// dimension differs from what the model was trained on.
var ErrDimensionMismatch = errors.New("feature dimension mismatch")

// Classifier maps a feature vector to a discrete label.
type Classifier interface {
	Predict(x model.FeatureVector) (int64, error)
	NumFeatures() int
	Close() error
}

// Options tunes backend-specific loading.
type Options struct {
	// ONNXRuntimeLib is the path of the ONNX Runtime shared library. Empty
	// means libonnxruntime.so next to the model file.
	ONNXRuntimeLib string
}

// Load reads a classifier artifact and picks the backend from its format.
func Load(path, wantSHA256 string, opts Options) (Classifier, *artifact.File, error) {
	f, err := artifact.Read(path, wantSHA256)
	if err != nil {
		return nil, nil, fmt.Errorf("classifier: %w", err)
	}

	var cls Classifier
	switch f.Format {
	case artifact.FormatJSON, artifact.FormatYAML:
		cls, err = loadLinearDocument(f)
	case artifact.FormatSafetensors:
		cls, err = loadSafetensors(f.Data)
	case artifact.FormatONNX:
		cls, err = loadONNX(f, opts.ONNXRuntimeLib)
	default:
		err = fmt.Errorf("classifier: unsupported artifact format %q for %s", f.Format, path)
	}
	if err != nil {
		return nil, nil, err
	}
	return cls, f, nil
}

func checkDim(x model.FeatureVector, want int) error {
	if x.Dim != want {
		return fmt.Errorf("classifier: %w: vector has %d features, model expects %d",
			ErrDimensionMismatch, x.Dim, want)
	}
	return nil
}
