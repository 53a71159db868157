package model

// Metadata describes the frozen classifier artifact. It is shipped as a JSON
// file next to the ONNX model.
type Metadata struct {
	Version          string   `json:"version"`
	InputName        string   `json:"input_name"`
	OutputName       string   `json:"output_name"`
	InputShape       []int64  `json:"input_shape"`
	OutputShape      []int64  `json:"output_shape"`
	Classes          []string `json:"classes"`
	FeatureLength    int      `json:"feature_length"`
	EdgeDensityScale float64  `json:"edge_density_scale"`
}

// PredictionRequest carries one raw feature vector.
type PredictionRequest struct {
	Features []float64 `json:"features"`
}

// ClassificationResult is the outcome for one image.
type ClassificationResult struct {
	Class         string             `json:"class"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}
