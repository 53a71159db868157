package features

import "math"

const grayLevels = 256

// glcmTexture builds a symmetric, normalized gray-level co-occurrence matrix
// for horizontal neighbours dist pixels apart and derives its statistics.
// Energy is the square root of the angular second moment. Correlation is 1
// when either marginal has zero variance.
func glcmTexture(gray []uint8, w, h, dist int) Texture {
	counts := make([]uint32, grayLevels*grayLevels)
	var total float64
	for y := 0; y < h; y++ {
		row := gray[y*w : (y+1)*w]
		for x := 0; x+dist < w; x++ {
			i, j := int(row[x]), int(row[x+dist])
			counts[i*grayLevels+j]++
			counts[j*grayLevels+i]++
			total += 2
		}
	}
	if total == 0 {
		return Texture{Homogeneity: 1, Energy: 1, Correlation: 1}
	}

	var t Texture
	var asm, mean float64
	for idx, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		i, j := float64(idx/grayLevels), float64(idx%grayLevels)
		d := i - j
		t.Contrast += p * d * d
		t.Dissimilarity += p * math.Abs(d)
		t.Homogeneity += p / (1 + d*d)
		asm += p * p
		mean += p * i
	}
	t.Energy = math.Sqrt(asm)

	// The matrix is symmetric, so both marginals share mean and variance.
	var variance, cov float64
	for idx, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		di := float64(idx/grayLevels) - mean
		dj := float64(idx%grayLevels) - mean
		variance += p * di * di
		cov += p * di * dj
	}
	if math.Sqrt(variance) < 1e-15 {
		t.Correlation = 1
	} else {
		t.Correlation = math.Max(-1, math.Min(1, cov/variance))
	}

	t.Homogeneity = math.Min(t.Homogeneity, 1)
	t.Energy = math.Min(t.Energy, 1)
	return t
}
