package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"SPAMCHECK_CONFIG",
	"SPAMCHECK_VECTORIZER_PATH", "SPAMCHECK_CLASSIFIER_PATH",
	"SPAMCHECK_VECTORIZER_SHA256", "SPAMCHECK_CLASSIFIER_SHA256",
	"SPAMCHECK_ONNXRUNTIME_LIB",
	"SPAMCHECK_LOG_LEVEL", "SPAMCHECK_LOG_FORMAT",
	"SPAMCHECK_ADDR", "SPAMCHECK_ALLOW_ORIGINS",
	"SPAMCHECK_REDIS_URL", "SPAMCHECK_CACHE_TTL",
}

func clearEnv() {
	for _, key := range allKeys {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Artifacts.VectorizerPath != "models/vectorizer.json" {
		t.Fatalf("expected default vectorizer path, got %q", cfg.Artifacts.VectorizerPath)
	}
	if cfg.Artifacts.ClassifierPath != "models/classifier.json" {
		t.Fatalf("expected default classifier path, got %q", cfg.Artifacts.ClassifierPath)
	}
	if cfg.Server.Addr != ":8000" {
		t.Fatalf("expected default addr :8000, got %q", cfg.Server.Addr)
	}
	if cfg.Server.CacheTTL != time.Hour {
		t.Fatalf("expected default CacheTTL=1h, got %v", cfg.Server.CacheTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv()
	os.Setenv("SPAMCHECK_VECTORIZER_PATH", "/srv/v.yaml")
	os.Setenv("SPAMCHECK_CLASSIFIER_PATH", "/srv/c.onnx")
	os.Setenv("SPAMCHECK_CLASSIFIER_SHA256", "abc123")
	os.Setenv("SPAMCHECK_LOG_LEVEL", "debug")
	os.Setenv("SPAMCHECK_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	os.Setenv("SPAMCHECK_CACHE_TTL", "90s")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Artifacts.VectorizerPath != "/srv/v.yaml" || cfg.Artifacts.ClassifierPath != "/srv/c.onnx" {
		t.Fatalf("paths not overridden: %+v", cfg.Artifacts)
	}
	if cfg.Artifacts.ClassifierSHA256 != "abc123" {
		t.Fatalf("expected classifier sha256 'abc123', got %q", cfg.Artifacts.ClassifierSHA256)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level 'debug', got %q", cfg.Log.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.AllowOrigins, want) {
		t.Fatalf("AllowOrigins = %v, want %v", cfg.Server.AllowOrigins, want)
	}
	if cfg.Server.CacheTTL != 90*time.Second {
		t.Fatalf("expected CacheTTL=90s, got %v", cfg.Server.CacheTTL)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	clearEnv()
	os.Setenv("SPAMCHECK_CACHE_TTL", "forever")
	defer clearEnv()

	cfg, _ := Load()
	if cfg.Server.CacheTTL != time.Hour {
		t.Fatalf("expected fallback CacheTTL=1h, got %v", cfg.Server.CacheTTL)
	}
}

func TestLoad_EmptyOriginsFallsBack(t *testing.T) {
	clearEnv()
	os.Setenv("SPAMCHECK_ALLOW_ORIGINS", " , ")
	defer clearEnv()

	cfg, _ := Load()
	if !reflect.DeepEqual(cfg.Server.AllowOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("expected default origins, got %v", cfg.Server.AllowOrigins)
	}
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	clearEnv()
	path := filepath.Join(t.TempDir(), "spamcheck.yml")
	content := `
artifacts:
  vectorizer_path: /models/v.json
  classifier_path: /models/c.safetensors
log:
  level: info
  format: json
server:
  addr: ":9090"
  cache_ttl: 10m
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	os.Setenv("SPAMCHECK_CONFIG", path)
	os.Setenv("SPAMCHECK_ADDR", ":7070")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Artifacts.ClassifierPath != "/models/c.safetensors" {
		t.Fatalf("expected classifier path from file, got %q", cfg.Artifacts.ClassifierPath)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("expected log format from file, got %q", cfg.Log.Format)
	}
	if cfg.Server.CacheTTL != 10*time.Minute {
		t.Fatalf("expected CacheTTL=10m from file, got %v", cfg.Server.CacheTTL)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("expected env to win over file, got %q", cfg.Server.Addr)
	}
	// Untouched keys keep their defaults.
	if !reflect.DeepEqual(cfg.Server.AllowOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("expected default origins, got %v", cfg.Server.AllowOrigins)
	}
}

func TestLoad_YAMLFileErrors(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("SPAMCHECK_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "bad.yml")
	os.WriteFile(path, []byte("artifacts:\n  model_path: x\n"), 0644)
	os.Setenv("SPAMCHECK_CONFIG", path)
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "model_path") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
