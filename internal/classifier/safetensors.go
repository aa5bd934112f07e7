package classifier

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// tensor is one entry of a safetensors file with its raw little-endian data.
type tensor struct {
	dtype string
	shape []int
	data  []byte
}

// parseSafetensors splits a safetensors file into its named tensors. The
// layout is an 8-byte LE header length, a JSON header, then the data block.
func parseSafetensors(data []byte) (map[string]tensor, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("safetensors: file too small: %d bytes", len(data))
	}

	headerLen := binary.LittleEndian.Uint64(data[:8])
	if uint64(len(data))-8 < headerLen {
		return nil, fmt.Errorf("safetensors: header length %d exceeds file size", headerLen)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("safetensors: failed to parse header: %w", err)
	}

	body := data[8+headerLen:]
	tensors := make(map[string]tensor, len(header))
	for name, raw := range header {
		if name == "__metadata__" {
			continue
		}

		var meta struct {
			Dtype       string `json:"dtype"`
			Shape       []int  `json:"shape"`
			DataOffsets [2]int `json:"data_offsets"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("safetensors: failed to parse metadata for %q: %w", name, err)
		}

		start, end := meta.DataOffsets[0], meta.DataOffsets[1]
		if start < 0 || end < start || end > len(body) {
			return nil, fmt.Errorf("safetensors: data range [%d:%d] for %q exceeds data size %d",
				start, end, name, len(body))
		}

		size, err := dtypeSize(meta.Dtype)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
		}
		count := 1
		for _, d := range meta.Shape {
			if d < 0 {
				return nil, fmt.Errorf("safetensors: tensor %q has negative dimension in %v", name, meta.Shape)
			}
			if d != 0 && count > math.MaxInt/size/d {
				return nil, fmt.Errorf("safetensors: tensor %q shape %v is too large", name, meta.Shape)
			}
			count *= d
		}
		if end-start != count*size {
			return nil, fmt.Errorf("safetensors: data size %d doesn't match shape %v of %q",
				end-start, meta.Shape, name)
		}

		tensors[name] = tensor{dtype: meta.Dtype, shape: meta.Shape, data: body[start:end]}
	}
	return tensors, nil
}

func dtypeSize(dtype string) (int, error) {
	switch dtype {
	case "F32", "I32":
		return 4, nil
	case "F64", "I64":
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %s", dtype)
	}
}

func (t tensor) floats() ([]float64, error) {
	var out []float64
	switch t.dtype {
	case "F32":
		out = make([]float64, len(t.data)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(t.data[i*4:])))
		}
	case "F64":
		out = make([]float64, len(t.data)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(t.data[i*8:]))
		}
	default:
		return nil, fmt.Errorf("expected float dtype, got %s", t.dtype)
	}
	return out, nil
}

func (t tensor) ints() ([]int64, error) {
	var out []int64
	switch t.dtype {
	case "I32":
		out = make([]int64, len(t.data)/4)
		for i := range out {
			out[i] = int64(int32(binary.LittleEndian.Uint32(t.data[i*4:])))
		}
	case "I64":
		out = make([]int64, len(t.data)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(t.data[i*8:]))
		}
	default:
		return nil, fmt.Errorf("expected integer dtype, got %s", t.dtype)
	}
	return out, nil
}

// loadSafetensors builds a Linear model from "coef" [rows, features] and the
// optional "intercept" [rows] and "classes" [k] tensors.
func loadSafetensors(data []byte) (*Linear, error) {
	tensors, err := parseSafetensors(data)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	ct, ok := tensors["coef"]
	if !ok {
		return nil, fmt.Errorf("classifier: tensor 'coef' not found in safetensors header")
	}
	if len(ct.shape) != 2 {
		return nil, fmt.Errorf("classifier: expected 2D coef tensor, got shape %v", ct.shape)
	}
	flat, err := ct.floats()
	if err != nil {
		return nil, fmt.Errorf("classifier: coef: %w", err)
	}
	rows, cols := ct.shape[0], ct.shape[1]
	if rows*cols != len(flat) {
		return nil, fmt.Errorf("classifier: coef shape %v does not match %d values", ct.shape, len(flat))
	}
	coef := make([][]float64, rows)
	for r := range coef {
		coef[r] = flat[r*cols : (r+1)*cols]
	}

	var intercept []float64
	if it, ok := tensors["intercept"]; ok {
		if len(it.shape) != 1 {
			return nil, fmt.Errorf("classifier: expected 1D intercept tensor, got shape %v", it.shape)
		}
		if intercept, err = it.floats(); err != nil {
			return nil, fmt.Errorf("classifier: intercept: %w", err)
		}
	}

	var classes []int64
	if kt, ok := tensors["classes"]; ok {
		if len(kt.shape) != 1 {
			return nil, fmt.Errorf("classifier: expected 1D classes tensor, got shape %v", kt.shape)
		}
		if classes, err = kt.ints(); err != nil {
			return nil, fmt.Errorf("classifier: classes: %w", err)
		}
	} else {
		k := rows
		if rows == 1 {
			k = 2
		}
		classes = make([]int64, k)
		for i := range classes {
			classes[i] = int64(i)
		}
	}

	return NewLinear(classes, coef, intercept)
}
