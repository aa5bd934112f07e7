package spamcheck

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const testModelDir = "../../models"

func newTestChecker(t *testing.T, opts ...Option) *Checker {
	t.Helper()
	if len(opts) == 0 {
		opts = []Option{WithModelDir(testModelDir)}
	}
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func fileSHA256(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestNewBadPathReturnsError(t *testing.T) {
	_, err := New(WithModelDir("/nonexistent/path"))
	if err == nil {
		t.Fatal("expected error for bad model dir, got nil")
	}
	if !errors.Is(err, ErrArtifactLoad) {
		t.Errorf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestPredictDemoModels(t *testing.T) {
	c := newTestChecker(t)

	tests := []struct {
		text string
		want int64
	}{
		{"you have won free money", 1},
		{"let's meet for lunch", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := c.Predict(tt.text)
		if err != nil {
			t.Fatalf("Predict(%q) error: %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("Predict(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestPredictBatch(t *testing.T) {
	c := newTestChecker(t)

	got, err := c.PredictBatch([]string{"claim your prize", "meeting moved", "free money"})
	if err != nil {
		t.Fatalf("PredictBatch() error: %v", err)
	}
	want := []int64{1, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("got %d labels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestWithArtifactPaths(t *testing.T) {
	c := newTestChecker(t, WithArtifactPaths(
		filepath.Join(testModelDir, "vectorizer.json"),
		filepath.Join(testModelDir, "classifier.json"),
	))
	if c.Fingerprint() == "" {
		t.Error("expected non-empty fingerprint")
	}
}

func TestWithChecksums(t *testing.T) {
	vecSum := fileSHA256(t, filepath.Join(testModelDir, "vectorizer.json"))
	clsSum := fileSHA256(t, filepath.Join(testModelDir, "classifier.json"))

	newTestChecker(t, WithModelDir(testModelDir), WithChecksums(vecSum, clsSum))

	_, err := New(WithModelDir(testModelDir), WithChecksums(vecSum, vecSum))
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("expected ErrArtifactLoad for wrong checksum, got %v", err)
	}
}

func TestResolvePaths(t *testing.T) {
	v, c := resolvePaths(options{})
	if v != filepath.Join("models", "vectorizer.json") || c != filepath.Join("models", "classifier.json") {
		t.Errorf("default paths = %q, %q", v, c)
	}

	v, c = resolvePaths(options{modelDir: "m", vectorizerPath: "a.yaml", classifierPath: "b.onnx"})
	if v != "a.yaml" || c != "b.onnx" {
		t.Errorf("explicit paths = %q, %q", v, c)
	}
}

func TestConcurrentPredict(t *testing.T) {
	c := newTestChecker(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			label, err := c.Predict("you have won free money")
			if err != nil {
				errs <- err
				return
			}
			if label != 1 {
				errs <- errors.New("unexpected label")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
