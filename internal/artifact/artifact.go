package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies how an artifact file is encoded on disk.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatSafetensors
	FormatONNX
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatSafetensors:
		return "safetensors"
	case FormatONNX:
		return "onnx"
	default:
		return "unknown"
	}
}

// DetectFormat picks the encoding from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".safetensors":
		return FormatSafetensors
	case ".onnx":
		return FormatONNX
	default:
		return FormatUnknown
	}
}

// File is an artifact read into memory.
type File struct {
	Path   string
	Format Format
	Data   []byte
	SHA256 string // hex digest of Data
}

// Read loads an artifact from disk. When wantSHA256 is non-empty the file's
// digest must match it (case-insensitive hex).
func Read(path, wantSHA256 string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artifact: file is empty: %s", path)
	}

	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if wantSHA256 != "" && !strings.EqualFold(got, wantSHA256) {
		return nil, fmt.Errorf(
			"artifact: checksum mismatch for %s: got %s want %s",
			path,
			got,
			strings.ToLower(wantSHA256),
		)
	}

	return &File{
		Path:   path,
		Format: DetectFormat(path),
		Data:   data,
		SHA256: got,
	}, nil
}

// Decode unmarshals a JSON or YAML document into v. Unknown JSON fields are
// rejected so that a misspelled key fails loudly instead of loading defaults.
func (f *File) Decode(v any) error {
	switch f.Format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(f.Data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("artifact: decode %s: %w", f.Path, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(f.Data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("artifact: decode %s: %w", f.Path, err)
		}
	default:
		return fmt.Errorf("artifact: %s is not a document format (%s)", f.Path, f.Format)
	}
	return nil
}

// Fingerprint combines the digests of several artifacts into one stable
// identifier.
func Fingerprint(files ...*File) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.SHA256))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
