package spamcheck

import "path/filepath"

type options struct {
	modelDir         string
	vectorizerPath   string
	classifierPath   string
	vectorizerSHA256 string
	classifierSHA256 string
	onnxRuntimeLib   string
}

// Option configures a Checker.
type Option func(*options)

// WithModelDir sets the directory containing the artifacts.
// Expects: vectorizer.json, classifier.json.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithArtifactPaths sets explicit paths for the vectorizer and classifier.
// Use this for YAML, safetensors or ONNX classifiers, or any layout other
// than the default directory.
func WithArtifactPaths(vectorizer, classifier string) Option {
	return func(o *options) {
		o.vectorizerPath = vectorizer
		o.classifierPath = classifier
	}
}

// WithChecksums sets the expected hex SHA-256 of each artifact. An empty
// string skips verification for that artifact.
func WithChecksums(vectorizer, classifier string) Option {
	return func(o *options) {
		o.vectorizerSHA256 = vectorizer
		o.classifierSHA256 = classifier
	}
}

// WithONNXRuntime sets the ONNX Runtime shared library used by .onnx
// classifiers. Default: a library found beside the model file.
func WithONNXRuntime(lib string) Option {
	return func(o *options) {
		o.onnxRuntimeLib = lib
	}
}

// resolvePaths determines the artifact paths. Explicit paths take precedence
// over modelDir.
func resolvePaths(o options) (vectorizer, classifier string) {
	if o.vectorizerPath != "" || o.classifierPath != "" {
		return o.vectorizerPath, o.classifierPath
	}
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	return filepath.Join(dir, "vectorizer.json"),
		filepath.Join(dir, "classifier.json")
}
