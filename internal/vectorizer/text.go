package vectorizer

import (
	"math"
	"sort"

	"github.com/crimson-sun/spamcheck/internal/model"
)

// TextVectorizer is a bag-of-n-grams vectorizer with optional TF-IDF
// weighting. It is immutable after construction and safe for concurrent use.
type TextVectorizer struct {
	kind        string
	vocabulary  map[string]int
	idf         []float64
	analyzer    *analyzer
	binary      bool
	sublinearTF bool
	norm        string
}

func newTextVectorizer(d document) (*TextVectorizer, error) {
	s, err := resolve(d)
	if err != nil {
		return nil, err
	}
	a, err := newAnalyzer(s)
	if err != nil {
		return nil, err
	}

	v := &TextVectorizer{
		kind:        s.kind,
		vocabulary:  s.vocabulary,
		analyzer:    a,
		binary:      s.binary,
		sublinearTF: s.sublinearTF,
		norm:        s.norm,
	}
	if s.useIDF {
		v.idf = s.idf
	}
	return v, nil
}

// Kind returns "tfidf" or "count".
func (v *TextVectorizer) Kind() string {
	return v.kind
}

// Dim returns the number of feature columns.
func (v *TextVectorizer) Dim() int {
	return len(v.vocabulary)
}

// Transform maps one text to a sparse feature vector. Terms outside the
// vocabulary are ignored.
func (v *TextVectorizer) Transform(text string) (model.FeatureVector, error) {
	counts := make(map[int]float64)
	v.analyzer.analyze(text, func(term string) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	})

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		tf := counts[idx]
		if v.binary {
			tf = 1
		}
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		if v.idf != nil {
			tf *= v.idf[idx]
		}
		values[i] = tf
	}
	normalize(values, v.norm)

	return model.FeatureVector{Dim: v.Dim(), Indices: indices, Values: values}, nil
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case "l1":
		for _, x := range values {
			total += math.Abs(x)
		}
	case "l2":
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
