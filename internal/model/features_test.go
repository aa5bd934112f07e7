package model

import "testing"

func TestFeatureVectorDense(t *testing.T) {
	v := FeatureVector{Dim: 5, Indices: []int{1, 4}, Values: []float64{0.5, -2}}

	got := v.Dense()
	want := []float32{0, 0.5, 0, 0, -2}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dense()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if v.NNZ() != 2 {
		t.Errorf("NNZ() = %d, want 2", v.NNZ())
	}
}

func TestFeatureVectorEmpty(t *testing.T) {
	v := FeatureVector{Dim: 3}
	if v.NNZ() != 0 {
		t.Errorf("NNZ() = %d, want 0", v.NNZ())
	}
	for i, x := range v.Dense() {
		if x != 0 {
			t.Errorf("Dense()[%d] = %v, want 0", i, x)
		}
	}
}
