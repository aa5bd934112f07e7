package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all spamcheck configuration.
type Config struct {
	Artifacts ArtifactConfig `yaml:"artifacts"`
	Log       LogConfig      `yaml:"log"`
	Server    ServerConfig   `yaml:"server"`
}

// ArtifactConfig locates the vectorizer and classifier on disk.
type ArtifactConfig struct {
	VectorizerPath   string `yaml:"vectorizer_path"`
	ClassifierPath   string `yaml:"classifier_path"`
	VectorizerSHA256 string `yaml:"vectorizer_sha256"`
	ClassifierSHA256 string `yaml:"classifier_sha256"`
	ONNXRuntimeLib   string `yaml:"onnxruntime_lib"`
}

// LogConfig holds diagnostic logging settings. Logs always go to stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"; empty selects the command's default
	Format string `yaml:"format"` // "json" or "text"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	AllowOrigins []string      `yaml:"allow_origins"`
	RedisURL     string        `yaml:"redis_url"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Artifacts: ArtifactConfig{
			VectorizerPath: "models/vectorizer.json",
			ClassifierPath: "models/classifier.json",
		},
		Log: LogConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Addr:         ":8000",
			AllowOrigins: []string{"http://localhost:3000"},
			CacheTTL:     time.Hour,
		},
	}
}

// Load builds the configuration from defaults, a .env file in the working
// directory, the YAML file named by SPAMCHECK_CONFIG, and finally
// environment variables.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("SPAMCHECK_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	a := &cfg.Artifacts
	a.VectorizerPath = getenv("SPAMCHECK_VECTORIZER_PATH", a.VectorizerPath)
	a.ClassifierPath = getenv("SPAMCHECK_CLASSIFIER_PATH", a.ClassifierPath)
	a.VectorizerSHA256 = getenv("SPAMCHECK_VECTORIZER_SHA256", a.VectorizerSHA256)
	a.ClassifierSHA256 = getenv("SPAMCHECK_CLASSIFIER_SHA256", a.ClassifierSHA256)
	a.ONNXRuntimeLib = getenv("SPAMCHECK_ONNXRUNTIME_LIB", a.ONNXRuntimeLib)

	cfg.Log.Level = getenv("SPAMCHECK_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("SPAMCHECK_LOG_FORMAT", cfg.Log.Format)

	s := &cfg.Server
	s.Addr = getenv("SPAMCHECK_ADDR", s.Addr)
	s.AllowOrigins = getenvList("SPAMCHECK_ALLOW_ORIGINS", s.AllowOrigins)
	s.RedisURL = getenv("SPAMCHECK_REDIS_URL", s.RedisURL)
	s.CacheTTL = getenvDuration("SPAMCHECK_CACHE_TTL", s.CacheTTL)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvList splits a comma-separated variable, dropping empty entries.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
