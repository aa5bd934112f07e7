package model

// FeatureVector is a sparse numeric representation of one input text.
// Indices are strictly ascending and every index is below Dim.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored (non-zero) entries.
func (v FeatureVector) NNZ() int {
	return len(v.Indices)
}

// Dense expands the vector into a float32 slice of length Dim.
func (v FeatureVector) Dense() []float32 {
	out := make([]float32, v.Dim)
	for i, idx := range v.Indices {
		out[idx] = float32(v.Values[i])
	}
	return out
}
