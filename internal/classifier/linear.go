package classifier

import (
	"fmt"
	"math"

	"github.com/crimson-sun/spamcheck/internal/artifact"
	"github.com/crimson-sun/spamcheck/internal/model"
)

// document is the on-disk form of a linear model. Multinomial naive Bayes
// is stored with its own field names and is evaluated as a linear model.
type document struct {
	Kind      string      `json:"kind" yaml:"kind"`
	ModelID   string      `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	Version   string      `json:"version,omitempty" yaml:"version,omitempty"`
	Classes   []int64     `json:"classes" yaml:"classes"`
	Coef      [][]float64 `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`

	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty" yaml:"feature_log_prob,omitempty"`
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty" yaml:"class_log_prior,omitempty"`
}

// Linear is a linear decision function over a sparse feature vector. One
// coefficient row with two classes is a binary model; otherwise each row
// scores one class and the highest score wins.
type Linear struct {
	ModelID   string
	Version   string
	classes   []int64
	coef      [][]float64
	intercept []float64
	nFeatures int
}

func loadLinearDocument(f *artifact.File) (*Linear, error) {
	var d document
	if err := f.Decode(&d); err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	var (
		coef      [][]float64
		intercept []float64
	)
	switch d.Kind {
	case "linear":
		if len(d.FeatureLogProb) != 0 || len(d.ClassLogPrior) != 0 {
			return nil, fmt.Errorf("classifier: naive Bayes fields set on a linear model")
		}
		coef, intercept = d.Coef, d.Intercept
	case "multinomial_nb":
		if len(d.Coef) != 0 || len(d.Intercept) != 0 {
			return nil, fmt.Errorf("classifier: coef/intercept set on a multinomial_nb model")
		}
		if len(d.ClassLogPrior) != len(d.Classes) {
			return nil, fmt.Errorf("classifier: class_log_prior has %d entries, want %d",
				len(d.ClassLogPrior), len(d.Classes))
		}
		if len(d.FeatureLogProb) != len(d.Classes) {
			return nil, fmt.Errorf("classifier: feature_log_prob has %d rows, want %d",
				len(d.FeatureLogProb), len(d.Classes))
		}
		coef, intercept = d.FeatureLogProb, d.ClassLogPrior
	case "":
		return nil, fmt.Errorf("classifier: kind must not be empty")
	default:
		return nil, fmt.Errorf("classifier: unknown kind %q", d.Kind)
	}

	lin, err := NewLinear(d.Classes, coef, intercept)
	if err != nil {
		return nil, err
	}
	lin.ModelID = d.ModelID
	lin.Version = d.Version
	return lin, nil
}

// NewLinear validates the parameters and builds a Linear model. A nil
// intercept means all zeros.
func NewLinear(classes []int64, coef [][]float64, intercept []float64) (*Linear, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("classifier: need at least 2 classes, got %d", len(classes))
	}
	seen := make(map[int64]struct{}, len(classes))
	for _, c := range classes {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("classifier: duplicate class %d", c)
		}
		seen[c] = struct{}{}
	}

	if len(coef) == 0 {
		return nil, fmt.Errorf("classifier: coef must not be empty")
	}
	binary := len(coef) == 1 && len(classes) == 2
	if !binary && len(coef) != len(classes) {
		return nil, fmt.Errorf("classifier: coef has %d rows for %d classes", len(coef), len(classes))
	}

	n := len(coef[0])
	if n == 0 {
		return nil, fmt.Errorf("classifier: coef rows must not be empty")
	}
	for i, row := range coef {
		if len(row) != n {
			return nil, fmt.Errorf("classifier: coef row %d has %d columns, want %d", i, len(row), n)
		}
		for j, w := range row {
			// -Inf is allowed: naive Bayes stores log(0) for unseen features.
			if math.IsNaN(w) || math.IsInf(w, 1) {
				return nil, fmt.Errorf("classifier: coef[%d][%d] is not a number: %v", i, j, w)
			}
		}
	}

	if intercept == nil {
		intercept = make([]float64, len(coef))
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("classifier: intercept has %d entries, want %d", len(intercept), len(coef))
	}
	for i, b := range intercept {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("classifier: intercept[%d] is not a finite number: %v", i, b)
		}
	}

	return &Linear{
		classes:   classes,
		coef:      coef,
		intercept: intercept,
		nFeatures: n,
	}, nil
}

// NumFeatures returns the number of input columns the model expects.
func (l *Linear) NumFeatures() int {
	return l.nFeatures
}

// decision returns one score per coefficient row.
func (l *Linear) decision(x model.FeatureVector) ([]float64, error) {
	if err := checkDim(x, l.nFeatures); err != nil {
		return nil, err
	}
	scores := make([]float64, len(l.coef))
	for r, row := range l.coef {
		s := l.intercept[r]
		for i, idx := range x.Indices {
			if idx < 0 || idx >= l.nFeatures {
				return nil, fmt.Errorf("classifier: feature index %d out of range [0,%d)", idx, l.nFeatures)
			}
			s += row[idx] * x.Values[i]
		}
		scores[r] = s
	}
	return scores, nil
}

// Predict returns the label with the highest decision score.
func (l *Linear) Predict(x model.FeatureVector) (int64, error) {
	scores, err := l.decision(x)
	if err != nil {
		return 0, err
	}
	for _, s := range scores {
		if math.IsNaN(s) {
			return 0, fmt.Errorf("classifier: decision function is not a number")
		}
	}
	if len(scores) == 1 {
		if scores[0] > 0 {
			return l.classes[1], nil
		}
		return l.classes[0], nil
	}

	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return l.classes[best], nil
}

// Close is a no-op; Linear holds no external resources.
func (l *Linear) Close() error {
	return nil
}
