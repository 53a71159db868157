// Package report assembles the skin analysis report and renders it.
//
// The plain-text layout is the long-standing output format; downstream
// consumers parse it, so it omits per-image confidence. The
// Markdown rendering includes it.
package report

import (
	"math"
	"time"

	"github.com/Brownie44l1/dermascan-api/internal/condition"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

// ImageResult pairs a processed image with its classification.
type ImageResult struct {
	Name   string
	Result model.ClassificationResult
}

// ImageObservation is one line of the image section.
type ImageObservation struct {
	Index      int     `json:"index"`
	Name       string  `json:"name,omitempty"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Percent returns the confidence scaled to 0-100, rounded to two decimals.
func (o ImageObservation) Percent() float64 {
	return math.Round(o.Confidence*100*100) / 100
}

// Report is the outcome of one analysis request.
type Report struct {
	ID              string             `json:"id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Narrative       string             `json:"narrative"`
	Conditions      []condition.Tag    `json:"conditions"`
	Images          []ImageObservation `json:"images"`
	Recommendations []string           `json:"recommendations"`
}

// Compose builds a report. Images keep the order they were processed in and
// are numbered from 1.
func Compose(images []ImageResult, narrative string, conditions *condition.Set, recommendations []string) *Report {
	obs := make([]ImageObservation, len(images))
	for i, img := range images {
		obs[i] = ImageObservation{
			Index:      i + 1,
			Name:       img.Name,
			Class:      img.Result.Class,
			Confidence: img.Result.Confidence,
		}
	}

	return &Report{
		CreatedAt:       time.Now().UTC(),
		Narrative:       narrative,
		Conditions:      conditions.Tags(),
		Images:          obs,
		Recommendations: append([]string(nil), recommendations...),
	}
}
