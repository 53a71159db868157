package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakePredictor struct {
	probs [][]float64
	err   error
	calls int
	rows  [][]float32
}

func (f *fakePredictor) PredictProba(rows [][]float32) ([][]float64, error) {
	f.calls++
	f.rows = rows
	if f.err != nil {
		return nil, f.err
	}
	return f.probs, nil
}

func row(width int, v float64) []float64 {
	r := make([]float64, width)
	for i := range r {
		r[i] = v
	}
	return r
}

func TestClassifierClassify(t *testing.T) {
	t.Parallel()

	classes := []string{"acne", "clear", "eczema"}

	t.Run("picks argmax per row in order", func(t *testing.T) {
		t.Parallel()

		p := &fakePredictor{probs: [][]float64{
			{0.1, 0.7, 0.2},
			{0.6, 0.3, 0.1},
		}}
		c := NewClassifier(p, classes, 4)

		results, err := c.Classify([][]float64{row(4, 0.25), row(4, 0.5)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Class != "clear" || results[0].Confidence != 0.7 {
			t.Errorf("unexpected first result: %+v", results[0])
		}
		if results[1].Class != "acne" || results[1].Confidence != 0.6 {
			t.Errorf("unexpected second result: %+v", results[1])
		}
		if results[0].Probabilities["eczema"] != 0.2 {
			t.Errorf("expected eczema probability 0.2, got %v", results[0].Probabilities["eczema"])
		}
		if p.rows[1][0] != 0.5 {
			t.Errorf("expected rows passed through as float32, got %v", p.rows[1])
		}
	})

	t.Run("ties keep the first class", func(t *testing.T) {
		t.Parallel()

		p := &fakePredictor{probs: [][]float64{{0.5, 0.5, 0}}}
		results, err := NewClassifier(p, classes, 1).Classify([][]float64{{1}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Class != "acne" {
			t.Errorf("expected acne, got %s", results[0].Class)
		}
	})

	t.Run("rejects wrong width before predicting", func(t *testing.T) {
		t.Parallel()

		p := &fakePredictor{}
		_, err := NewClassifier(p, classes, 4).Classify([][]float64{row(3, 0)})
		if !errors.Is(err, ErrFeatureWidth) {
			t.Errorf("expected ErrFeatureWidth, got %v", err)
		}
		if p.calls != 0 {
			t.Errorf("expected predictor not to be called, got %d calls", p.calls)
		}
	})

	t.Run("propagates predictor errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := NewClassifier(&fakePredictor{err: boom}, classes, 1).Classify([][]float64{{1}})
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("rejects short distributions", func(t *testing.T) {
		t.Parallel()

		p := &fakePredictor{probs: [][]float64{{1}}}
		if _, err := NewClassifier(p, classes, 1).Classify([][]float64{{1}}); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("rejects row count mismatch", func(t *testing.T) {
		t.Parallel()

		p := &fakePredictor{probs: [][]float64{}}
		if _, err := NewClassifier(p, classes, 1).Classify([][]float64{{1}}); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		p := &fakePredictor{}
		results, err := NewClassifier(p, classes, 1).Classify(nil)
		if err != nil || results != nil || p.calls != 0 {
			t.Errorf("expected no-op, got %v, %v, %d calls", results, err, p.calls)
		}
	})
}

func writeMetadata(t *testing.T, m any) string {
	t.Helper()

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal metadata: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}
	return path
}

func TestLoadMetadata(t *testing.T) {
	t.Parallel()

	t.Run("fills defaults", func(t *testing.T) {
		t.Parallel()

		path := writeMetadata(t, map[string]any{
			"input_shape": []int{1, 102},
			"classes":     []string{"acne", "clear"},
		})
		m, err := LoadMetadata(path, 102, 255)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.InputName != "input" || m.OutputName != "output" {
			t.Errorf("unexpected tensor names: %q, %q", m.InputName, m.OutputName)
		}
		if m.FeatureLength != 102 || m.EdgeDensityScale != 255 {
			t.Errorf("unexpected defaults: %+v", m)
		}
		if len(m.OutputShape) != 2 || m.OutputShape[1] != 2 {
			t.Errorf("unexpected output shape: %v", m.OutputShape)
		}
	})

	tests := []struct {
		name string
		meta map[string]any
	}{
		{name: "width mismatch", meta: map[string]any{"input_shape": []int{1, 100}, "classes": []string{"a"}}},
		{name: "feature length mismatch", meta: map[string]any{"input_shape": []int{1, 102}, "feature_length": 96, "classes": []string{"a"}}},
		{name: "no classes", meta: map[string]any{"input_shape": []int{1, 102}}},
		{name: "class count mismatch", meta: map[string]any{"input_shape": []int{1, 102}, "output_shape": []int{1, 3}, "classes": []string{"a"}}},
		{name: "edge scale mismatch", meta: map[string]any{"input_shape": []int{1, 102}, "edge_density_scale": 1, "classes": []string{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadMetadata(writeMetadata(t, tt.meta), 102, 255)
			if !errors.Is(err, ErrModelLoad) {
				t.Errorf("expected ErrModelLoad, got %v", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.json"), 102, 255)
		if !errors.Is(err, ErrModelLoad) {
			t.Errorf("expected ErrModelLoad, got %v", err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadMetadata(path, 102, 255)
		if !errors.Is(err, ErrModelLoad) {
			t.Errorf("expected ErrModelLoad, got %v", err)
		}
	})
}

func TestNewSessionMissingModel(t *testing.T) {
	t.Parallel()

	m := &Metadata{Classes: []string{"a"}, FeatureLength: 102}
	_, err := NewSession(filepath.Join(t.TempDir(), "missing.onnx"), m, "")
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
}
