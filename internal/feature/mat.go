package feature

import (
	"fmt"
	"image"

	"mediplant/pkg/colorutil"

	"gocv.io/x/gocv"
)

// ExtractFileMat reads and resizes an image with OpenCV and computes the
// same descriptor layout as Extract. Preferred for bulk fitting runs where
// OpenCV's decoder and resizer are considerably faster than the pure Go
// path; the pure Go path remains the default for hosts without OpenCV.
func ExtractFileMat(path string, cfg Config) ([]float64, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrImageDecode, path)
	}
	defer img.Close()

	return ExtractMat(img, cfg)
}

// ExtractMat computes the descriptor from a BGR Mat.
func ExtractMat(img gocv.Mat, cfg Config) ([]float64, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: empty mat", ErrImageDecode)
	}

	r := cfg.resolution()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(r, r), 0, 0, gocv.InterpolationArea)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	vec := make([]float64, 0, VectorLength(r))
	gray := make([]float64, r*r)

	var hsv, lab channelStats

	data := rgb.ToBytes()
	channels := rgb.Channels()
	for y := 0; y < r; y++ {
		for x := 0; x < r; x++ {
			off := (y*r + x) * channels
			fr := float64(data[off])
			fg := float64(data[off+1])
			fb := float64(data[off+2])

			vec = append(vec, fr, fg, fb)

			h, s, v := colorutil.RGBToHSV(fr, fg, fb)
			hsv.add(h, s, v)

			l, a, b := colorutil.RGBToLab(fr, fg, fb)
			lab.add(l, a, b)

			gray[y*r+x] = colorutil.RGBToGray(fr, fg, fb)
		}
	}

	vec = append(vec, hsv.mean(0), hsv.mean(1), hsv.mean(2))
	vec = append(vec, hsv.std(0), hsv.std(1), hsv.std(2))
	vec = append(vec, lab.mean(0), lab.mean(1), lab.mean(2))
	vec = append(vec, lab.std(0), lab.std(1), lab.std(2))

	gxMean, gxStd, gyMean, gyStd := sobelStats(gray, r, r)
	vec = append(vec, gxMean, gxStd, gyMean, gyStd)

	return vec, nil
}
