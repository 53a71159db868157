// Package features turns a skin photograph into the fixed-length numeric
// vector consumed by the condition classifier.
//
// Vector layout (Length = 102):
//
//	[0:32)    blue histogram   (32 bins over [0,256))
//	[32:64)   green histogram
//	[64:96)   red histogram    (all 96 bins L1-normalized together)
//	[96:101)  GLCM contrast, dissimilarity, homogeneity, energy, correlation
//	[101]     Canny edge density
//
// Channel order is blue, green, red because the classifier was trained on
// features computed from BGR buffers. Edge density is the sum of a {0,255}
// edge map divided by the pixel count, so it ranges over [0,255]
// (see EdgeDensityScale).
package features

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WEBP decoder
)

const (
	// Size is the working resolution; images are stretched to Size×Size.
	Size = 256

	// BinsPerChannel is the number of histogram bins per color channel.
	BinsPerChannel = 32

	// ColorLength is the number of color histogram features.
	ColorLength = 3 * BinsPerChannel

	// TextureLength is the number of GLCM statistics.
	TextureLength = 5

	// Length is the total feature vector length.
	Length = ColorLength + TextureLength + 1

	// EdgeDensityScale is the value of a single edge pixel in the edge map.
	EdgeDensityScale = 255

	// GLCMDistance is the horizontal pixel offset for co-occurrence pairs.
	GLCMDistance = 5

	// CannyLow and CannyHigh are the hysteresis thresholds.
	CannyLow  = 100
	CannyHigh = 200

	// MaxPixels bounds the decoded size of an upload.
	MaxPixels = 50_000_000
)

var (
	// ErrExtraction is returned for any image that cannot be turned into a
	// feature vector. The caller drops the image and continues.
	ErrExtraction = errors.New("feature extraction failed")

	// ErrDegenerateImage is returned when histogram normalization would
	// divide by zero.
	ErrDegenerateImage = errors.New("degenerate image")

	// ErrImageTooLarge is returned when the declared dimensions exceed
	// MaxPixels. The image is rejected before its pixels are decoded.
	ErrImageTooLarge = errors.New("image too large")
)

// Texture holds the GLCM-derived statistics.
type Texture struct {
	Contrast      float64
	Dissimilarity float64
	Homogeneity   float64
	Energy        float64
	Correlation   float64
}

// Vector is a feature vector with the layout documented on the package.
type Vector []float64

// Texture returns the GLCM statistics.
func (v Vector) Texture() Texture {
	t := v[ColorLength : ColorLength+TextureLength]
	return Texture{
		Contrast:      t[0],
		Dissimilarity: t[1],
		Homogeneity:   t[2],
		Energy:        t[3],
		Correlation:   t[4],
	}
}

// EdgeDensity returns the edge density scalar.
func (v Vector) EdgeDensity() float64 {
	return v[Length-1]
}

// Float32 converts the vector to the element type of the inference runtime.
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// Extractor computes feature vectors. It holds no mutable state and is safe
// for concurrent use.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes an encoded image (JPEG, PNG, GIF, BMP, TIFF or WEBP) and
// computes its feature vector.
func (e *Extractor) Extract(data []byte) (Vector, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrExtraction)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", ErrExtraction, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %w: %dx%d exceeds %d pixels",
			ErrExtraction, ErrImageTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrExtraction, err)
	}
	return e.ExtractImage(img)
}

// ExtractImage computes the feature vector of an already decoded image.
func (e *Extractor) ExtractImage(img image.Image) (vec Vector, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec, err = nil, fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %w: empty bounds", ErrExtraction, ErrDegenerateImage)
	}

	bgr := toBGR(resize.Resize(Size, Size, img, resize.Bilinear))

	color, err := colorHistogram(bgr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	gray := equalizeHist(grayscale(bgr))
	tex := glcmTexture(gray, Size, Size, GLCMDistance)
	edges := canny(gray, Size, Size, CannyLow, CannyHigh)

	var edgeSum float64
	for _, p := range edges {
		edgeSum += float64(p)
	}

	vec = make(Vector, 0, Length)
	vec = append(vec, color...)
	vec = append(vec, tex.Contrast, tex.Dissimilarity, tex.Homogeneity, tex.Energy, tex.Correlation)
	vec = append(vec, edgeSum/float64(Size*Size))
	return vec, nil
}

// toBGR flattens img into interleaved 8-bit blue, green, red triples.
func toBGR(img image.Image) []uint8 {
	b := img.Bounds()
	out := make([]uint8, 0, 3*b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, uint8(bl>>8), uint8(g>>8), uint8(r>>8))
		}
	}
	return out
}

func colorHistogram(bgr []uint8) ([]float64, error) {
	hist := make([]float64, ColorLength)
	const shift = 3 // 256 / BinsPerChannel = 8
	for i := 0; i+2 < len(bgr); i += 3 {
		hist[int(bgr[i]>>shift)]++
		hist[BinsPerChannel+int(bgr[i+1]>>shift)]++
		hist[2*BinsPerChannel+int(bgr[i+2]>>shift)]++
	}

	var sum float64
	for _, h := range hist {
		sum += h
	}
	if sum == 0 {
		return nil, ErrDegenerateImage
	}
	for i := range hist {
		hist[i] /= sum
	}
	return hist, nil
}

// grayscale uses the fixed-point BT.601 luma weights (14-bit) with rounding.
func grayscale(bgr []uint8) []uint8 {
	const (
		bw    = 1868
		gw    = 9617
		rw    = 4899
		shift = 14
	)
	out := make([]uint8, len(bgr)/3)
	for i := range out {
		b, g, r := uint32(bgr[3*i]), uint32(bgr[3*i+1]), uint32(bgr[3*i+2])
		out[i] = uint8((b*bw + g*gw + r*rw + 1<<(shift-1)) >> shift)
	}
	return out
}

// equalizeHist spreads the cumulative histogram over [0,255]. The first
// occupied level maps to 0; a constant image is returned unchanged.
func equalizeHist(gray []uint8) []uint8 {
	var hist [256]int
	for _, p := range gray {
		hist[p]++
	}

	first := 0
	for first < 256 && hist[first] == 0 {
		first++
	}
	out := make([]uint8, len(gray))
	if first == 256 {
		return out
	}
	if hist[first] == len(gray) {
		copy(out, gray)
		return out
	}

	var lut [256]uint8
	scale := 255.0 / float64(len(gray)-hist[first])
	sum := 0
	for i := first + 1; i < 256; i++ {
		sum += hist[i]
		lut[i] = saturate(float64(sum) * scale)
	}
	for i, p := range gray {
		out[i] = lut[p]
	}
	return out
}

func saturate(v float64) uint8 {
	r := math.RoundToEven(v)
	switch {
	case r < 0:
		return 0
	case r > 255:
		return 255
	default:
		return uint8(r)
	}
}
