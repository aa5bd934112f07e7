package vectorizer

import (
	"fmt"
	"math"
)

const defaultTokenPattern = `(?u)\b\w\w+\b`

// document is the on-disk vectorizer artifact. Optional fields are pointers
// so that defaults can depend on kind.
type document struct {
	Kind         string         `json:"kind" yaml:"kind"`
	Vocabulary   map[string]int `json:"vocabulary" yaml:"vocabulary"`
	IDF          []float64      `json:"idf,omitempty" yaml:"idf,omitempty"`
	Lowercase    *bool          `json:"lowercase,omitempty" yaml:"lowercase,omitempty"`
	StripAccents string         `json:"strip_accents,omitempty" yaml:"strip_accents,omitempty"`
	Analyzer     string         `json:"analyzer,omitempty" yaml:"analyzer,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty" yaml:"token_pattern,omitempty"`
	NgramRange   []int          `json:"ngram_range,omitempty" yaml:"ngram_range,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty" yaml:"stop_words,omitempty"`
	Binary       bool           `json:"binary,omitempty" yaml:"binary,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty" yaml:"sublinear_tf,omitempty"`
	Norm         *string        `json:"norm,omitempty" yaml:"norm,omitempty"`
	UseIDF       *bool          `json:"use_idf,omitempty" yaml:"use_idf,omitempty"`
	SmoothIDF    *bool          `json:"smooth_idf,omitempty" yaml:"smooth_idf,omitempty"` // training-time only
}

// settings is a validated document with defaults applied.
type settings struct {
	kind         string
	vocabulary   map[string]int
	idf          []float64
	lowercase    bool
	stripAccents string
	analyzer     string
	tokenPattern string
	minN, maxN   int
	stopWords    map[string]struct{}
	binary       bool
	sublinearTF  bool
	norm         string
	useIDF       bool
}

func resolve(d document) (settings, error) {
	s := settings{
		kind:         d.Kind,
		vocabulary:   d.Vocabulary,
		idf:          d.IDF,
		lowercase:    true,
		stripAccents: d.StripAccents,
		analyzer:     d.Analyzer,
		tokenPattern: d.TokenPattern,
		minN:         1,
		maxN:         1,
		binary:       d.Binary,
		sublinearTF:  d.SublinearTF,
	}

	switch d.Kind {
	case "tfidf":
		s.norm = "l2"
		s.useIDF = true
	case "count":
	case "":
		return settings{}, fmt.Errorf("vectorizer: kind must not be empty")
	default:
		return settings{}, fmt.Errorf("vectorizer: unknown kind %q", d.Kind)
	}

	if d.Lowercase != nil {
		s.lowercase = *d.Lowercase
	}
	if d.Norm != nil {
		s.norm = *d.Norm
	}
	if d.UseIDF != nil {
		s.useIDF = *d.UseIDF
	}
	if s.kind == "count" && s.useIDF {
		return settings{}, fmt.Errorf("vectorizer: use_idf is not valid for kind %q", s.kind)
	}
	if s.kind == "count" && s.sublinearTF {
		return settings{}, fmt.Errorf("vectorizer: sublinear_tf is not valid for kind %q", s.kind)
	}
	if s.analyzer == "" {
		s.analyzer = "word"
	}
	if s.tokenPattern == "" {
		s.tokenPattern = defaultTokenPattern
	}

	switch s.stripAccents {
	case "", "unicode", "ascii":
	default:
		return settings{}, fmt.Errorf("vectorizer: unknown strip_accents %q", s.stripAccents)
	}
	switch s.analyzer {
	case "word", "char":
	default:
		return settings{}, fmt.Errorf("vectorizer: unknown analyzer %q", s.analyzer)
	}
	switch s.norm {
	case "", "l1", "l2":
	default:
		return settings{}, fmt.Errorf("vectorizer: unknown norm %q", s.norm)
	}

	if len(d.NgramRange) != 0 {
		if len(d.NgramRange) != 2 {
			return settings{}, fmt.Errorf("vectorizer: ngram_range must have 2 entries, got %d", len(d.NgramRange))
		}
		s.minN, s.maxN = d.NgramRange[0], d.NgramRange[1]
		if s.minN < 1 || s.minN > s.maxN {
			return settings{}, fmt.Errorf("vectorizer: invalid ngram_range %v", d.NgramRange)
		}
	}

	if len(d.StopWords) > 0 {
		s.stopWords = make(map[string]struct{}, len(d.StopWords))
		for _, w := range d.StopWords {
			s.stopWords[w] = struct{}{}
		}
	}

	if err := validateVocabulary(s.vocabulary); err != nil {
		return settings{}, err
	}
	if s.useIDF {
		if len(s.idf) != len(s.vocabulary) {
			return settings{}, fmt.Errorf("vectorizer: idf has %d entries, vocabulary has %d",
				len(s.idf), len(s.vocabulary))
		}
		for i, w := range s.idf {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return settings{}, fmt.Errorf("vectorizer: idf[%d] is not a finite non-negative number: %v", i, w)
			}
		}
	} else if len(s.idf) != 0 {
		return settings{}, fmt.Errorf("vectorizer: idf given but use_idf is false")
	}

	return s, nil
}

// validateVocabulary checks that column indices cover exactly 0..n-1.
func validateVocabulary(vocab map[string]int) error {
	if len(vocab) == 0 {
		return fmt.Errorf("vectorizer: vocabulary must not be empty")
	}
	seen := make([]bool, len(vocab))
	for term, idx := range vocab {
		if idx < 0 || idx >= len(vocab) {
			return fmt.Errorf("vectorizer: vocabulary index %d for %q out of range [0,%d)", idx, term, len(vocab))
		}
		if seen[idx] {
			return fmt.Errorf("vectorizer: vocabulary index %d is assigned twice", idx)
		}
		seen[idx] = true
	}
	return nil
}
