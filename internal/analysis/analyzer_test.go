package analysis

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/Brownie44l1/dermascan-api/internal/condition"
	"github.com/Brownie44l1/dermascan-api/internal/features"
	"github.com/Brownie44l1/dermascan-api/internal/model"
	"github.com/Brownie44l1/dermascan-api/internal/questionnaire"
	"github.com/Brownie44l1/dermascan-api/internal/recommend"
	"github.com/Brownie44l1/dermascan-api/internal/report"
)

type fakeClassifier struct {
	mu    sync.Mutex
	calls int
	rows  int
	err   error
}

func (f *fakeClassifier) Classify(rows [][]float64) ([]model.ClassificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.rows += len(rows)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.ClassificationResult, len(rows))
	for i, r := range rows {
		if len(r) != features.Length {
			return nil, model.ErrFeatureWidth
		}
		out[i] = model.ClassificationResult{
			Class:         "acne",
			Confidence:    0.9,
			Probabilities: map[string]float64{"acne": 0.9, "clear": 0.1},
		}
	}
	return out, nil
}

// truncatingClassifier drops the last result.
type truncatingClassifier struct{}

func (truncatingClassifier) Classify(rows [][]float64) ([]model.ClassificationResult, error) {
	out := make([]model.ClassificationResult, len(rows)-1)
	for i := range out {
		out[i] = model.ClassificationResult{Class: "acne", Confidence: 0.9}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uniformPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func newAnalyzer(c Classifier) *Analyzer {
	return New(features.NewExtractor(), c, WithLogger(discardLogger()), WithWorkers(3))
}

func scenarioAnswers() questionnaire.Answers {
	return questionnaire.Answers{
		Age:         25,
		Gender:      questionnaire.GenderFemale,
		Acne:        true,
		DietScore:   2,
		Stress:      5,
		WaterIntake: 2,
	}
}

func TestAnalyzeScenario(t *testing.T) {
	t.Parallel()

	skin := color.RGBA{R: 210, G: 160, B: 140, A: 255}
	c := &fakeClassifier{}
	rep, err := newAnalyzer(c).Analyze(context.Background(), Request{
		SessionID: "s-1",
		Answers:   scenarioAnswers(),
		Images: []Image{
			{Name: "user_1.png", Data: uniformPNG(t, skin)},
			{Name: "user_2.png", Data: uniformPNG(t, skin)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.ID != "s-1" {
		t.Errorf("expected report id s-1, got %q", rep.ID)
	}
	if len(rep.Conditions) != 1 || rep.Conditions[0] != condition.Acne {
		t.Errorf("expected conditions [acne], got %v", rep.Conditions)
	}
	for _, want := range []string{
		"You are in an active age group",
		"Women usually have more hormonal fluctuations",
		"Your diet seems poor",
		"High stress affects hormones",
		"Your water intake is very low",
	} {
		if !strings.Contains(rep.Narrative, want) {
			t.Errorf("narrative missing %q:\n%s", want, rep.Narrative)
		}
	}
	acne, _ := recommend.Text(condition.Acne)
	if len(rep.Recommendations) != 1 || rep.Recommendations[0] != acne {
		t.Errorf("expected exactly the acne recommendation, got %d blocks", len(rep.Recommendations))
	}
	if len(rep.Images) != 2 {
		t.Fatalf("expected 2 image observations, got %d", len(rep.Images))
	}
	if rep.Images[0].Name != "user_1.png" || rep.Images[1].Index != 2 {
		t.Errorf("unexpected image order: %+v", rep.Images)
	}

	text := rep.Text()
	if strings.Count(text, "\nImage ") != 2 {
		t.Errorf("expected two image lines in:\n%s", text)
	}
	parsed, err := report.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}
	if len(parsed.Images) != 2 || len(parsed.Conditions) != 1 {
		t.Errorf("round trip lost data: %+v", parsed)
	}
}

func TestAnalyzeDropsCorruptImages(t *testing.T) {
	t.Parallel()

	c := &fakeClassifier{}
	rep, err := newAnalyzer(c).Analyze(context.Background(), Request{
		Answers: scenarioAnswers(),
		Images: []Image{
			{Name: "broken.jpg", Data: []byte("not an image")},
			{Name: "good.png", Data: uniformPNG(t, color.RGBA{R: 90, G: 60, B: 40, A: 255})},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Images) != 1 {
		t.Fatalf("expected 1 image observation, got %d", len(rep.Images))
	}
	if rep.Images[0].Name != "good.png" || rep.Images[0].Index != 1 {
		t.Errorf("unexpected observation: %+v", rep.Images[0])
	}
	if c.rows != 1 {
		t.Errorf("expected 1 row classified, got %d", c.rows)
	}
}

func TestAnalyzeRejectsBatchSize(t *testing.T) {
	t.Parallel()

	img := Image{Name: "x.png", Data: []byte("unused")}
	tests := []struct {
		name   string
		images []Image
	}{
		{name: "no images", images: nil},
		{name: "six images", images: []Image{img, img, img, img, img, img}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &fakeClassifier{}
			_, err := newAnalyzer(c).Analyze(context.Background(), Request{
				Answers: scenarioAnswers(),
				Images:  tt.images,
			})
			if !errors.Is(err, ErrImageCount) {
				t.Errorf("expected ErrImageCount, got %v", err)
			}
			if c.calls != 0 {
				t.Errorf("classifier called %d times", c.calls)
			}
		})
	}

	t.Run("custom limit", func(t *testing.T) {
		t.Parallel()

		a := New(features.NewExtractor(), &fakeClassifier{}, WithMaxImages(1), WithLogger(discardLogger()))
		_, err := a.Analyze(context.Background(), Request{Images: []Image{img, img}})
		if !errors.Is(err, ErrImageCount) {
			t.Errorf("expected ErrImageCount, got %v", err)
		}
	})
}

func TestAnalyzeFailures(t *testing.T) {
	t.Parallel()

	t.Run("all images corrupt", func(t *testing.T) {
		t.Parallel()

		c := &fakeClassifier{}
		_, err := newAnalyzer(c).Analyze(context.Background(), Request{
			Answers: scenarioAnswers(),
			Images:  []Image{{Name: "a", Data: []byte("x")}, {Name: "b"}},
		})
		if !errors.Is(err, ErrNoValidImages) {
			t.Errorf("expected ErrNoValidImages, got %v", err)
		}
		if c.calls != 0 {
			t.Errorf("classifier called %d times", c.calls)
		}
	})

	t.Run("invalid answers", func(t *testing.T) {
		t.Parallel()

		_, err := newAnalyzer(&fakeClassifier{}).Analyze(context.Background(), Request{
			Answers: questionnaire.Answers{Age: -3},
			Images:  []Image{{Name: "a", Data: uniformPNG(t, color.RGBA{A: 255})}},
		})
		if !errors.Is(err, questionnaire.ErrInvalidQuestionnaire) {
			t.Errorf("expected ErrInvalidQuestionnaire, got %v", err)
		}
	})

	t.Run("classifier error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := newAnalyzer(&fakeClassifier{err: boom}).Analyze(context.Background(), Request{
			Answers: scenarioAnswers(),
			Images:  []Image{{Name: "a", Data: uniformPNG(t, color.RGBA{R: 10, A: 255})}},
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("classifier returns too few results", func(t *testing.T) {
		t.Parallel()

		img := uniformPNG(t, color.RGBA{R: 10, A: 255})
		rep, err := newAnalyzer(truncatingClassifier{}).Analyze(context.Background(), Request{
			Answers: scenarioAnswers(),
			Images:  []Image{{Name: "a", Data: img}, {Name: "b", Data: img}},
		})
		if err == nil {
			t.Fatalf("expected an error, got report %+v", rep)
		}
		if !strings.Contains(err.Error(), "got 1 results for 2 images") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := &fakeClassifier{}
		_, err := newAnalyzer(c).Analyze(ctx, Request{
			Answers: scenarioAnswers(),
			Images:  []Image{{Name: "a", Data: uniformPNG(t, color.RGBA{R: 10, A: 255})}},
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if c.calls != 0 {
			t.Errorf("classifier called %d times", c.calls)
		}
	})
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	a := New(features.NewExtractor(), &fakeClassifier{}, WithWorkers(0), WithMaxImages(-1))
	if a.workers != DefaultWorkers || a.MaxImages() != DefaultMaxImages {
		t.Errorf("expected defaults, got workers=%d max=%d", a.workers, a.MaxImages())
	}
	if a.logger == nil {
		t.Error("expected a default logger")
	}
}
