package classifier

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/spamcheck/internal/artifact"
	"github.com/crimson-sun/spamcheck/internal/model"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect; later calls return the first call's result.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNX runs an exported classifier graph (for example a skl2onnx linear
// model) with one float input [batch, n] and an int64 label output.
type ONNX struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	nFeatures  int64
}

func loadONNX(f *artifact.File, libPath string) (*ONNX, error) {
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(f.Path), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(f.Path)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	inputName, nFeatures, err := validateInputs(inputs)
	if err != nil {
		return nil, err
	}
	outputName, err := selectLabelOutput(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		f.Path,
		[]string{inputName},
		[]string{outputName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &ONNX{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		nFeatures:  nFeatures,
	}, nil
}

// validateInputs expects exactly one float tensor input of shape [batch, n]
// with a static feature count n.
func validateInputs(inputs []ort.InputOutputInfo) (string, int64, error) {
	if len(inputs) != 1 {
		return "", 0, fmt.Errorf("onnx: expected 1 model input, got %d", len(inputs))
	}
	in := inputs[0]
	if in.DataType != ort.TensorElementDataTypeFloat {
		return "", 0, fmt.Errorf("onnx: input %q must be float32, got %v", in.Name, in.DataType)
	}
	if len(in.Dimensions) != 2 {
		return "", 0, fmt.Errorf("onnx: expected 2D input tensor, got %v", in.Dimensions)
	}
	n := in.Dimensions[1]
	if n <= 0 {
		return "", 0, fmt.Errorf("onnx: input %q has dynamic feature dimension %v", in.Name, in.Dimensions)
	}
	return in.Name, n, nil
}

// selectLabelOutput prefers an int64 output named "label", then the first
// int64 output.
func selectLabelOutput(outputs []ort.InputOutputInfo) (string, error) {
	first := ""
	for _, out := range outputs {
		if out.DataType != ort.TensorElementDataTypeInt64 {
			continue
		}
		if out.Name == "label" {
			return out.Name, nil
		}
		if first == "" {
			first = out.Name
		}
	}
	if first == "" {
		return "", fmt.Errorf("onnx: model has no int64 label output")
	}
	return first, nil
}

// NumFeatures returns the model's static input width.
func (o *ONNX) NumFeatures() int {
	return int(o.nFeatures)
}

// Predict runs a single-row inference.
func (o *ONNX) Predict(x model.FeatureVector) (int64, error) {
	if err := checkDim(x, int(o.nFeatures)); err != nil {
		return 0, err
	}

	in, err := ort.NewTensor(ort.NewShape(1, o.nFeatures), x.Dense())
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := o.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return 0, fmt.Errorf("onnx: inference failed: %w", err)
	}

	labels := out.GetData()
	if len(labels) != 1 {
		return 0, fmt.Errorf("onnx: expected 1 label, got %d", len(labels))
	}
	return labels[0], nil
}

// Close releases the ONNX session resources.
func (o *ONNX) Close() error {
	return o.session.Destroy()
}
