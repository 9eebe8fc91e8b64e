// Package geometry derives coarse scene-structure signals from a normalized
// depth field: how much of the view is flat, how planar the floor looks, and
// a rough room-dimension estimate.
//
// These are heuristics. Nothing here claims metric accuracy; the metric
// dimension variant is labeled approximate on the wire.
package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/depth"
)

// PlaneStats summarizes surface flatness in a depth field.
type PlaneStats struct {
	LowGradientFraction float64 `json:"low_gradient_fraction"`
	FloorPlanarityScore float64 `json:"floor_planarity_score"`
	MedianDepth         float64 `json:"median_depth"`
}

// sobel returns the gradient magnitude at (x, y) using 3x3 Sobel kernels
// with borders clamped to the nearest pixel.
func sobel(f *depth.Field, x, y int) float64 {
	at := func(px, py int) float64 {
		if px < 0 {
			px = 0
		} else if px >= f.Width {
			px = f.Width - 1
		}
		if py < 0 {
			py = 0
		} else if py >= f.Height {
			py = f.Height - 1
		}
		return f.At(px, py)
	}

	gx := -at(x-1, y-1) + at(x+1, y-1) +
		-2*at(x-1, y) + 2*at(x+1, y) +
		-at(x-1, y+1) + at(x+1, y+1)
	gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
		at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
	return math.Hypot(gx, gy)
}

// Planes computes the flatness statistics of f.
//
// LowGradientFraction is the share of pixels whose Sobel magnitude is below
// cfg.LowGradientThreshold. FloorPlanarityScore looks only at the bottom
// cfg.FloorBandFraction of rows and maps low depth variance there to a
// score near 1.
func Planes(f *depth.Field, cfg config.GeometryConfig) PlaneStats {
	n := f.Width * f.Height
	if n == 0 {
		return PlaneStats{}
	}

	low := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if sobel(f, x, y) < cfg.LowGradientThreshold {
				low++
			}
		}
	}

	start := int(float64(f.Height) * (1 - cfg.FloorBandFraction))
	if start >= f.Height {
		start = f.Height - 1
	}
	if start < 0 {
		start = 0
	}
	band := f.Norm[start*f.Width:]
	var std float64
	if len(band) > 1 {
		_, std = stat.PopMeanStdDev(band, nil)
	}
	score := 1 - clamp(cfg.FloorStdScale*std, 0, 1)

	return PlaneStats{
		LowGradientFraction: float64(low) / float64(n),
		FloorPlanarityScore: score,
		MedianDepth:         median(f.Norm),
	}
}

// median returns the median of values, averaging the two middle elements
// for an even count. stat.Quantile picks a single element, so the even case
// is handled here. The input is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
