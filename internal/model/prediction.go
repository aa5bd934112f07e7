package model

// Prediction is the runner's output for one input text.
type Prediction struct {
	Label int64
}
