// Package analysis runs the skin analysis pipeline for one request:
// feature extraction, classification, condition inference, recommendation
// and report composition.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Brownie44l1/dermascan-api/internal/features"
	"github.com/Brownie44l1/dermascan-api/internal/model"
	"github.com/Brownie44l1/dermascan-api/internal/questionnaire"
	"github.com/Brownie44l1/dermascan-api/internal/recommend"
	"github.com/Brownie44l1/dermascan-api/internal/report"
)

const (
	// DefaultMaxImages is the largest accepted batch.
	DefaultMaxImages = 5

	// DefaultWorkers bounds concurrent feature extraction.
	DefaultWorkers = 2
)

var (
	// ErrImageCount is returned for an empty batch or one above the limit.
	ErrImageCount = errors.New("invalid number of images")

	// ErrNoValidImages is returned when every image in the batch failed
	// feature extraction.
	ErrNoValidImages = errors.New("no valid images")
)

// Image is one uploaded photograph.
type Image struct {
	Name string
	Data []byte
}

// Request is the input of a single analysis.
type Request struct {
	SessionID string
	Answers   questionnaire.Answers
	Images    []Image
}

// FeatureExtractor computes a feature vector from encoded image bytes.
type FeatureExtractor interface {
	Extract(data []byte) (features.Vector, error)
}

// Classifier labels feature rows.
type Classifier interface {
	Classify(rows [][]float64) ([]model.ClassificationResult, error)
}

// Analyzer runs the pipeline. It is safe for concurrent use as long as its
// extractor and classifier are.
type Analyzer struct {
	extractor  FeatureExtractor
	classifier Classifier
	logger     *slog.Logger
	workers    int
	maxImages  int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithWorkers sets the extraction concurrency. Non-positive values are ignored.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithMaxImages sets the batch limit. Non-positive values are ignored.
func WithMaxImages(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxImages = n
		}
	}
}

// New creates an Analyzer.
func New(extractor FeatureExtractor, classifier Classifier, opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor:  extractor,
		classifier: classifier,
		workers:    DefaultWorkers,
		maxImages:  DefaultMaxImages,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// MaxImages returns the batch limit.
func (a *Analyzer) MaxImages() int {
	return a.maxImages
}

// Analyze runs the whole pipeline. Images that fail extraction are logged
// and left out of the report; the request fails only when none survive.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*report.Report, error) {
	logger := a.logger.With("session", req.SessionID)

	if n := len(req.Images); n == 0 || n > a.maxImages {
		return nil, fmt.Errorf("%w: got %d, want 1 to %d", ErrImageCount, n, a.maxImages)
	}
	if err := req.Answers.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := a.extractAll(ctx, logger, req.Images)
	if err != nil {
		return nil, err
	}

	images := make([]report.ImageResult, 0, len(results))
	rows := make([][]float64, 0, len(results))
	for i, vec := range results {
		if vec == nil {
			continue
		}
		images = append(images, report.ImageResult{Name: req.Images[i].Name})
		rows = append(rows, vec)
	}
	if len(rows) == 0 {
		return nil, ErrNoValidImages
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	classified, err := a.classifier.Classify(rows)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}
	if len(classified) != len(rows) {
		return nil, fmt.Errorf("classification failed: got %d results for %d images", len(classified), len(rows))
	}
	for i := range images {
		images[i].Result = classified[i]
	}

	conditions := questionnaire.Infer(req.Answers)
	rep := report.Compose(
		images,
		questionnaire.Narrative(req.Answers),
		conditions,
		recommend.Recommend(conditions),
	)
	rep.ID = req.SessionID

	logger.Info("analysis complete",
		"images", len(req.Images),
		"classified", len(images),
		"conditions", conditions.Len(),
		"elapsed", time.Since(start),
	)
	return rep, nil
}

// extractAll returns one vector per image, nil for images that failed.
func (a *Analyzer) extractAll(ctx context.Context, logger *slog.Logger, images []Image) ([]features.Vector, error) {
	results := make([]features.Vector, len(images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, img := range images {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			vec, err := a.extractor.Extract(img.Data)
			if err != nil {
				logger.Warn("dropping image",
					"image", img.Name,
					"index", i+1,
					"error", err,
				)
				return nil
			}
			tex := vec.Texture()
			logger.Debug("features extracted",
				"image", img.Name,
				"contrast", tex.Contrast,
				"homogeneity", tex.Homogeneity,
				"edge_density", vec.EdgeDensity(),
			)
			results[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
