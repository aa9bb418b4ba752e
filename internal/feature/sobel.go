package feature

import "math"

// sobelStats convolves a grayscale plane with the ksize-3 Sobel kernels
// and returns mean and population std of the horizontal then vertical
// responses. Borders use reflect-101 indexing, matching OpenCV's default.
func sobelStats(gray []float64, w, h int) (gxMean, gxStd, gyMean, gyStd float64) {
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	reflect := func(i, n int) int {
		if n == 1 {
			return 0
		}
		if i < 0 {
			return -i
		}
		if i >= n {
			return 2*n - 2 - i
		}
		return i
	}

	at := func(x, y int) float64 {
		return gray[reflect(y, h)*w+reflect(x, w)]
	}

	n := float64(w * h)
	var sx, sxx, sy, syy float64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			sx += gx
			sxx += gx * gx
			sy += gy
			syy += gy * gy
		}
	}

	gxMean = sx / n
	gyMean = sy / n

	vx := sxx/n - gxMean*gxMean
	if vx < 0 {
		vx = 0
	}
	vy := syy/n - gyMean*gyMean
	if vy < 0 {
		vy = 0
	}

	return gxMean, math.Sqrt(vx), gyMean, math.Sqrt(vy)
}
