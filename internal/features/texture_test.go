package features

import (
	"math"
	"testing"
)

func TestEqualizeHist(t *testing.T) {
	t.Parallel()

	t.Run("two levels stretch to full range", func(t *testing.T) {
		t.Parallel()

		got := equalizeHist([]uint8{10, 10, 50, 50})
		want := []uint8{0, 0, 255, 255}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("equalizeHist = %v, want %v", got, want)
			}
		}
	})

	t.Run("constant image is unchanged", func(t *testing.T) {
		t.Parallel()

		got := equalizeHist([]uint8{77, 77, 77})
		for _, p := range got {
			if p != 77 {
				t.Fatalf("expected 77, got %v", got)
			}
		}
	})
}

func TestGrayscale(t *testing.T) {
	t.Parallel()

	got := grayscale([]uint8{0, 0, 0, 255, 255, 255, 0, 0, 255})
	want := []uint8{0, 255, 76}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestGLCMTexture(t *testing.T) {
	t.Parallel()

	// Two columns of alternating levels 0 and 1, distance 1: every pair is
	// (0,1) or (1,0), so the matrix is anti-diagonal.
	gray := []uint8{
		0, 1,
		0, 1,
	}
	tex := glcmTexture(gray, 2, 2, 1)

	if math.Abs(tex.Contrast-1) > 1e-12 {
		t.Errorf("contrast = %v, want 1", tex.Contrast)
	}
	if math.Abs(tex.Dissimilarity-1) > 1e-12 {
		t.Errorf("dissimilarity = %v, want 1", tex.Dissimilarity)
	}
	if math.Abs(tex.Homogeneity-0.5) > 1e-12 {
		t.Errorf("homogeneity = %v, want 0.5", tex.Homogeneity)
	}
	if math.Abs(tex.Energy-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("energy = %v, want sqrt(0.5)", tex.Energy)
	}
	if math.Abs(tex.Correlation+1) > 1e-12 {
		t.Errorf("correlation = %v, want -1", tex.Correlation)
	}
}

func TestCanny(t *testing.T) {
	t.Parallel()

	const w, h = 8, 4
	gray := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			gray[y*w+x] = 255
		}
	}

	edges := canny(gray, w, h, CannyLow, CannyHigh)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := uint8(0)
			if x == w/2-1 {
				want = EdgeDensityScale
			}
			if got := edges[y*w+x]; got != want {
				t.Errorf("edge(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}
