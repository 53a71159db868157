package report

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Brownie44l1/dermascan-api/internal/condition"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

func sampleReport() *Report {
	return Compose(
		[]ImageResult{
			{Name: "user_1.jpg", Result: model.ClassificationResult{Class: "acne", Confidence: 0.8123}},
			{Name: "user_2.jpg", Result: model.ClassificationResult{Class: "clear", Confidence: 0.55}},
		},
		"- first sentence\n- second - with a dash",
		condition.NewSet(condition.Acne, condition.DarkSpots),
		[]string{"Use sunscreen.", "Drink water."},
	)
}

func TestImageObservationPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		confidence float64
		want       float64
	}{
		{confidence: 0.87654, want: 87.65},
		{confidence: 1, want: 100},
		{confidence: 0, want: 0},
		{confidence: 0.333333, want: 33.33},
	}
	for _, tt := range tests {
		got := ImageObservation{Confidence: tt.confidence}.Percent()
		if got != tt.want {
			t.Errorf("Percent(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	if len(r.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(r.Images))
	}
	if r.Images[0].Index != 1 || r.Images[1].Index != 2 {
		t.Errorf("expected 1-based indexes, got %+v", r.Images)
	}
	if r.Images[0].Class != "acne" || r.Images[0].Percent() != 81.23 {
		t.Errorf("unexpected first observation: %+v", r.Images[0])
	}
	if !slices.Equal(r.Conditions, []condition.Tag{condition.Acne, condition.DarkSpots}) {
		t.Errorf("unexpected conditions: %v", r.Conditions)
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestTextWriterLayout(t *testing.T) {
	t.Parallel()

	want := "HERE'S YOUR SKIN ANALYSIS:\n" +
		"----------------------------------\n\n" +
		"PERSONALIZED ANALYSIS:\n" +
		"-----------------------------------\n" +
		"- first sentence\n- second - with a dash\n\n" +
		"FORM-BASED OBSERVATIONS:\n" +
		"-----------------------------------\n" +
		"- You reported: acne\n" +
		"- You reported: dark spots\n" +
		"\n\n" +
		"IMAGE-BASED OBSERVATIONS:\n" +
		"------------------------------------\n" +
		"Image 1: acne\n" +
		"Image 2: clear\n" +
		"\n\n" +
		"RECOMMENDED SKINCARE:\n" +
		"-----------------------------------\n" +
		"- Use sunscreen.\n" +
		"- Drink water.\n" +
		"\n\n"

	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != want {
		t.Errorf("unexpected layout:\n%s\nwant:\n%s", got, want)
	}
	if n != len(want) {
		t.Errorf("expected %d bytes, got %d", len(want), n)
	}
	if strings.Contains(buf.String(), "81.23") {
		t.Error("text layout must not include confidence")
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rep  *Report
	}{
		{name: "full", rep: sampleReport()},
		{name: "empty sections", rep: Compose(nil, "", condition.NewSet(), nil)},
		{
			name: "single image no conditions",
			rep: Compose(
				[]ImageResult{{Result: model.ClassificationResult{Class: "rosacea", Confidence: 1}}},
				"- only line",
				condition.NewSet(),
				nil,
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := Parse(strings.NewReader(tt.rep.Text()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(parsed.Conditions, tt.rep.Conditions) {
				t.Errorf("conditions = %v, want %v", parsed.Conditions, tt.rep.Conditions)
			}
			if len(parsed.Images) != len(tt.rep.Images) {
				t.Fatalf("images = %d, want %d", len(parsed.Images), len(tt.rep.Images))
			}
			for i := range parsed.Images {
				if parsed.Images[i].Index != tt.rep.Images[i].Index || parsed.Images[i].Class != tt.rep.Images[i].Class {
					t.Errorf("image %d = %+v, want %+v", i, parsed.Images[i], tt.rep.Images[i])
				}
			}
			if !slices.Equal(parsed.Recommendations, tt.rep.Recommendations) {
				t.Errorf("recommendations = %v, want %v", parsed.Recommendations, tt.rep.Recommendations)
			}
			if parsed.Narrative != tt.rep.Narrative {
				t.Errorf("narrative = %q, want %q", parsed.Narrative, tt.rep.Narrative)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "stray text", text: "hello\n"},
		{name: "missing sections", text: "HERE'S YOUR SKIN ANALYSIS:\n---\n\nPERSONALIZED ANALYSIS:\n"},
		{name: "bad observation", text: "HERE'S YOUR SKIN ANALYSIS:\nFORM-BASED OBSERVATIONS:\nacne\n"},
		{name: "bad image line", text: "HERE'S YOUR SKIN ANALYSIS:\nIMAGE-BASED OBSERVATIONS:\nPicture 1: acne\n"},
		{name: "bad image index", text: "HERE'S YOUR SKIN ANALYSIS:\nIMAGE-BASED OBSERVATIONS:\nImage x: acne\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Parse(strings.NewReader(tt.text)); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	out, err := sampleReport().Markdown()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"# Skin Analysis",
		"## Image-Based Observations",
		"81.23%",
		"You reported: dark spots",
		"Drink water.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, ok := NewWriter(FormatMarkdown, &buf).(*MarkdownWriter); !ok {
		t.Error("expected a MarkdownWriter")
	}
	if _, ok := NewWriter(FormatText, &buf).(*TextWriter); !ok {
		t.Error("expected a TextWriter")
	}
	if _, ok := NewWriter("pdf", &buf).(*TextWriter); !ok {
		t.Error("expected unknown formats to fall back to text")
	}
}
