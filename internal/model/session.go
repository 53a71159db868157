package model

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Session hosts the frozen classifier in ONNX Runtime. The tensors are
// reused across calls, so runs are serialized.
type Session struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewSession initializes ONNX Runtime and loads the model. libraryPath may be
// empty to use the runtime's default shared library lookup.
func NewSession(modelPath string, metadata *Metadata, libraryPath string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize ONNX environment: %v", ErrModelLoad, err)
	}

	inputShape := ort.NewShape(1, int64(metadata.FeatureLength))
	outputShape := ort.NewShape(1, int64(len(metadata.Classes)))

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("%w: failed to create input tensor: %v", ErrModelLoad, err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("%w: failed to create output tensor: %v", ErrModelLoad, err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("%w: failed to create ONNX session: %v", ErrModelLoad, err)
	}

	return &Session{
		session:      session,
		Metadata:     *metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Load reads the metadata, checks it against the extractor's layout and
// opens the model.
func Load(modelPath, metadataPath, libraryPath string, featureLength int, edgeScale float64) (*Session, error) {
	metadata, err := LoadMetadata(metadataPath, featureLength, edgeScale)
	if err != nil {
		return nil, err
	}
	return NewSession(modelPath, metadata, libraryPath)
}

// PredictProba runs the model once per row and returns one probability
// distribution per row.
func (s *Session) PredictProba(rows [][]float32) ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != s.Metadata.FeatureLength {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d",
				ErrFeatureWidth, i, len(row), s.Metadata.FeatureLength)
		}
		copy(s.inputTensor.GetData(), row)

		if err := s.session.Run(); err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}

		outputData := s.outputTensor.GetData()
		probs := make([]float64, len(outputData))
		for j, v := range outputData {
			probs[j] = float64(v)
		}
		out[i] = probs
	}
	return out, nil
}

// Close releases the session, its tensors and the runtime environment.
func (s *Session) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
