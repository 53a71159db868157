package model

import (
	"fmt"

	"github.com/Brownie44l1/dermascan-api/internal/features"
)

// Predictor returns a probability distribution per input row, in the order
// of the classifier's class labels.
type Predictor interface {
	PredictProba(rows [][]float32) ([][]float64, error)
}

// Classifier turns feature rows into labelled results.
type Classifier struct {
	predictor Predictor
	classes   []string
	width     int
}

// NewClassifier wraps predictor. classes must be in the predictor's output
// order; width is the expected feature row length.
func NewClassifier(predictor Predictor, classes []string, width int) *Classifier {
	return &Classifier{
		predictor: predictor,
		classes:   append([]string(nil), classes...),
		width:     width,
	}
}

// NewSessionClassifier builds a Classifier backed by an ONNX session.
func NewSessionClassifier(s *Session) *Classifier {
	return NewClassifier(s, s.Metadata.Classes, s.Metadata.FeatureLength)
}

// Classes returns the closed label set.
func (c *Classifier) Classes() []string {
	return append([]string(nil), c.classes...)
}

// Classify returns one result per row, in input order. A row of the wrong
// width is a caller bug and fails the whole batch.
func (c *Classifier) Classify(rows [][]float64) ([]ClassificationResult, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	batch := make([][]float32, len(rows))
	for i, row := range rows {
		if len(row) != c.width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureWidth, i, len(row), c.width)
		}
		batch[i] = features.Vector(row).Float32()
	}

	probs, err := c.predictor.PredictProba(batch)
	if err != nil {
		return nil, err
	}
	if len(probs) != len(rows) {
		return nil, fmt.Errorf("predictor returned %d rows for %d inputs", len(probs), len(rows))
	}

	results := make([]ClassificationResult, len(rows))
	for i, dist := range probs {
		if len(dist) < len(c.classes) {
			return nil, fmt.Errorf("predictor returned %d probabilities, want %d", len(dist), len(c.classes))
		}

		maxIdx := 0
		maxVal := dist[0]
		predictions := make(map[string]float64, len(c.classes))
		for j, label := range c.classes {
			val := dist[j]
			predictions[label] = val
			if val > maxVal {
				maxVal = val
				maxIdx = j
			}
		}

		results[i] = ClassificationResult{
			Class:         c.classes[maxIdx],
			Confidence:    maxVal,
			Probabilities: predictions,
		}
	}
	return results, nil
}
