package features

// Pixel states used during non-maximum suppression and hysteresis.
const (
	edgeCandidate uint8 = iota
	edgeNone
	edgeStrong
)

// tan(22.5°) in Q15 fixed point.
const tg22 = 13573

// canny returns a {0,255} edge map of gray using a 3×3 Sobel operator with
// replicated borders, L1 gradient magnitude, four-sector non-maximum
// suppression and 8-connected hysteresis between low and high.
func canny(gray []uint8, w, h int, low, high int) []uint8 {
	dx := make([]int, w*h)
	dy := make([]int, w*h)
	mag := make([]int, w*h)

	at := func(x, y int) int {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int(gray[y*w+x])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[i] = abs(gx) + abs(gy)
		}
	}

	m := func(x, y int) int {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := mag[i]
			state[i] = edgeNone
			if v <= low {
				continue
			}

			ax := abs(dx[i])
			ay := abs(dy[i]) << 15
			tg22x := ax * tg22
			var isMax bool
			switch {
			case ay < tg22x:
				isMax = v > m(x-1, y) && v >= m(x+1, y)
			case ay > tg22x+(ax<<16):
				isMax = v > m(x, y-1) && v >= m(x, y+1)
			default:
				s := 1
				if (dx[i] < 0) != (dy[i] < 0) {
					s = -1
				}
				isMax = v > m(x-s, y-1) && v > m(x+s, y+1)
			}
			if !isMax {
				continue
			}
			if v > high {
				state[i] = edgeStrong
				stack = append(stack, i)
			} else {
				state[i] = edgeCandidate
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == edgeCandidate {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	out := make([]uint8, w*h)
	for i, s := range state {
		if s == edgeStrong {
			out[i] = EdgeDensityScale
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
