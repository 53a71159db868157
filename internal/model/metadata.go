package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	defaultInputName  = "input"
	defaultOutputName = "output"

	// DefaultEdgeDensityScale is assumed when the metadata omits the edge
	// density convention.
	DefaultEdgeDensityScale = 255
)

var (
	// ErrModelLoad is returned when the classifier artifact is missing,
	// corrupt or incompatible with the feature extractor. The process must
	// not serve requests after it.
	ErrModelLoad = errors.New("classifier load failed")

	// ErrFeatureWidth is returned when a feature row does not match the
	// width the classifier was trained on.
	ErrFeatureWidth = errors.New("feature vector width mismatch")
)

// LoadMetadata reads and validates the metadata file against the feature
// extractor's vector length and edge density scale.
func LoadMetadata(path string, featureLength int, edgeScale float64) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read metadata: %v", ErrModelLoad, err)
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("%w: parse metadata: %v", ErrModelLoad, err)
	}
	if err := metadata.Validate(featureLength, edgeScale); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// Validate fills defaults and checks that the artifact accepts vectors of
// featureLength computed with edgeScale.
func (m *Metadata) Validate(featureLength int, edgeScale float64) error {
	if m.InputName == "" {
		m.InputName = defaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = defaultOutputName
	}
	if m.EdgeDensityScale == 0 {
		m.EdgeDensityScale = DefaultEdgeDensityScale
	}
	if len(m.InputShape) == 0 {
		m.InputShape = []int64{1, int64(m.FeatureLength)}
	}
	if m.FeatureLength == 0 {
		m.FeatureLength = int(m.InputShape[len(m.InputShape)-1])
	}

	if len(m.Classes) == 0 {
		return fmt.Errorf("%w: metadata lists no classes", ErrModelLoad)
	}
	if m.FeatureLength != featureLength || m.InputShape[len(m.InputShape)-1] != int64(featureLength) {
		return fmt.Errorf("%w: model expects %d features (input shape %v), extractor produces %d",
			ErrModelLoad, m.FeatureLength, m.InputShape, featureLength)
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
	if m.OutputShape[len(m.OutputShape)-1] != int64(len(m.Classes)) {
		return fmt.Errorf("%w: output shape %v does not match %d classes",
			ErrModelLoad, m.OutputShape, len(m.Classes))
	}
	if m.EdgeDensityScale != edgeScale {
		return fmt.Errorf("%w: model trained with edge density scale %v, extractor uses %v",
			ErrModelLoad, m.EdgeDensityScale, edgeScale)
	}
	return nil
}
