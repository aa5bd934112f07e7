package runner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/spamcheck/internal/classifier"
	"github.com/crimson-sun/spamcheck/internal/model"
)

const testModelDir = "../../models"

func demoPaths() Paths {
	return Paths{
		Vectorizer: filepath.Join(testModelDir, "vectorizer.json"),
		Classifier: filepath.Join(testModelDir, "classifier.json"),
	}
}

func loadDemo(t *testing.T) *Runner {
	t.Helper()
	r, err := Load(demoPaths())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestPredictDemoModel(t *testing.T) {
	r := loadDemo(t)

	tests := []struct {
		text string
		want int64
	}{
		{"you have won free money", 1},
		{"let's meet for lunch", 0},
		{"Claim your FREE MONEY prize now!!!", 1},
		{"", 0},
		{"completely unrelated words", 0},
	}
	for _, tt := range tests {
		got, err := r.Predict(tt.text)
		if err != nil {
			t.Fatalf("Predict(%q): %v", tt.text, err)
		}
		if got.Label != tt.want {
			t.Errorf("Predict(%q) = %d, want %d", tt.text, got.Label, tt.want)
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	a := loadDemo(t)
	b := loadDemo(t)
	text := "you have won free money, meet me for lunch"
	pa, _ := a.Predict(text)
	pb, _ := b.Predict(text)
	if pa != pb {
		t.Fatalf("separate loads disagree: %d vs %d", pa.Label, pb.Label)
	}
	if a.Fingerprint() != b.Fingerprint() || a.Fingerprint() == "" {
		t.Fatalf("fingerprints differ or empty: %q %q", a.Fingerprint(), b.Fingerprint())
	}
}

func TestPredictBatch(t *testing.T) {
	r := loadDemo(t)
	preds, err := r.PredictBatch([]string{"you have won free money", "let's meet for lunch"})
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	if len(preds) != 2 || preds[0].Label != 1 || preds[1].Label != 0 {
		t.Fatalf("PredictBatch = %v, want [1 0]", preds)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	p := demoPaths()
	p.Classifier = filepath.Join(t.TempDir(), "missing.json")
	_, err := Load(p)
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}

	p = demoPaths()
	p.Vectorizer = filepath.Join(t.TempDir(), "missing.json")
	_, err = Load(p)
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectorizer.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	p := demoPaths()
	p.Vectorizer = path
	_, err := Load(p)
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestLoadNonFiniteIntercept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.yaml")
	doc := `kind: linear
classes: [0, 1]
coef: [[0.8, 0.9, 3.5, -1.6, -1.4, 1.2, 0.3, -1.5, 1.5, 1.7]]
intercept: [.nan]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	p := demoPaths()
	p.Classifier = path
	_, err := Load(p)
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestLoadChecksumMismatch(t *testing.T) {
	p := demoPaths()
	p.ClassifierSHA256 = "0000000000000000000000000000000000000000000000000000000000000000"
	_, err := Load(p)
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classifier.json")
	content := `{"kind":"linear","classes":[0,1],"coef":[[1,2,3]]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	p := demoPaths()
	p.Classifier = path

	r, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer r.Close()

	_, err = r.Predict("free money")
	if !errors.Is(err, ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
	if !errors.Is(err, classifier.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch in chain, got %v", err)
	}
}

type stubVectorizer struct{ err error }

func (s stubVectorizer) Transform(string) (model.FeatureVector, error) {
	return model.FeatureVector{Dim: 1}, s.err
}

func (s stubVectorizer) Dim() int { return 1 }

type stubClassifier struct {
	label  int64
	closed bool
}

func (s *stubClassifier) Predict(model.FeatureVector) (int64, error) { return s.label, nil }
func (s *stubClassifier) NumFeatures() int                           { return 1 }
func (s *stubClassifier) Close() error                               { s.closed = true; return nil }

func TestNewWithStubs(t *testing.T) {
	cls := &stubClassifier{label: 7}
	r := New(stubVectorizer{}, cls)

	got, err := r.Predict("anything")
	if err != nil || got.Label != 7 {
		t.Fatalf("Predict = %v, %v; want 7", got, err)
	}
	if r.Fingerprint() != "" {
		t.Errorf("expected empty fingerprint, got %q", r.Fingerprint())
	}

	r.Close()
	if !cls.closed {
		t.Error("Close did not reach the classifier")
	}
}

func TestVectorizerErrorIsInference(t *testing.T) {
	r := New(stubVectorizer{err: errors.New("boom")}, &stubClassifier{})
	_, err := r.Predict("x")
	if !errors.Is(err, ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
}
