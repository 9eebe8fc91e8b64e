package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// Colorfulness computes the Hasler-Süsstrunk colorfulness metric of an image.
//
// With 8-bit channels R, G, B the metric is:
//
//	rg = |R - G|
//	yb = |0.5*(R + G) - B|
//	C  = sqrt(std(rg)² + std(yb)²) + 0.3*sqrt(mean(rg)² + mean(yb)²)
//
// Standard deviations are population values. Grayscale images score 0;
// saturated photographs typically score well above 15.
func Colorfulness(img image.Image) float64 {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0
	}

	rg := make([]float64, 0, n)
	yb := make([]float64, 0, n)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)
			rg = append(rg, math.Abs(rf-gf))
			yb = append(yb, math.Abs(0.5*(rf+gf)-bf))
		}
	}

	meanRG, stdRG := meanStd(rg)
	meanYB, stdYB := meanStd(yb)

	return math.Sqrt(stdRG*stdRG+stdYB*stdYB) + 0.3*math.Sqrt(meanRG*meanRG+meanYB*meanYB)
}

// meanStd is stat.PopMeanStdDev with a zero deviation for a single sample.
func meanStd(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.PopMeanStdDev(x, nil)
}

// ValueChannel returns the HSV value (brightness) of every pixel, row-major,
// in [0,1]. Fully transparent pixels count as black.
func ValueChannel(img image.Image) (values []float64, width, height int) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	values = make([]float64, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				values = append(values, 0)
				continue
			}
			_, _, v := c.Hsv()
			values = append(values, v)
		}
	}
	return values, width, height
}
