// Package orientation guesses which side of a room faces the light.
//
// The estimate is the brightness centroid of the HSV value channel after the
// brightest highlights are clipped. A centroid in the right part of the
// frame reads as East-ish, in the left part as West-ish.
package orientation

import (
	"encoding/json"
	"image"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/imaging"
)

// Label is a coarse cardinal hint.
type Label string

const (
	EastIsh   Label = "East-ish"
	WestIsh   Label = "West-ish"
	Ambiguous Label = "ambiguous"
	Unknown   Label = "unknown"
)

// minMoment is the zeroth moment below which the field counts as blank.
const minMoment = 1e-6

// Estimate is an orientation guess. CentroidX/CentroidY and WidthPx are
// only meaningful when Label is not Unknown.
type Estimate struct {
	Label     Label
	CentroidX float64
	CentroidY float64
	WidthPx   int
}

// MarshalJSON writes only the label for Unknown estimates.
func (e Estimate) MarshalJSON() ([]byte, error) {
	if e.Label == Unknown || e.Label == "" {
		return json.Marshal(map[string]Label{"orientation": Unknown})
	}
	return json.Marshal(struct {
		Orientation Label   `json:"orientation"`
		CX          float64 `json:"brightness_cx_px"`
		CY          float64 `json:"brightness_cy_px"`
		Width       int     `json:"image_width_px"`
	}{e.Label, e.CentroidX, e.CentroidY, e.WidthPx})
}

// Estimator computes orientation estimates.
type Estimator struct {
	cfg config.OrientationConfig
}

// New creates an Estimator.
func New(cfg config.OrientationConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate returns the orientation guess for img. Blank or perfectly flat
// images, where no centroid can be told apart from the frame center, yield
// Unknown rather than an error.
func (e *Estimator) Estimate(img image.Image) Estimate {
	if img == nil {
		return Estimate{Label: Unknown}
	}
	values, w, h := imaging.ValueChannel(img)
	if w == 0 || h == 0 {
		return Estimate{Label: Unknown}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	ceiling := stat.Quantile(e.cfg.HighlightQuantile, stat.LinInterp, sorted, nil)
	if ceiling-sorted[0] <= 0 {
		return Estimate{Label: Unknown}
	}

	var m00, m10, m01 float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := values[y*w+x]
			if v > ceiling {
				v = ceiling
			}
			m00 += v
			m10 += v * float64(x)
			m01 += v * float64(y)
		}
	}
	if m00 <= minMoment {
		return Estimate{Label: Unknown}
	}

	cx, cy := m10/m00, m01/m00
	return Estimate{
		Label:     e.classify(cx, w),
		CentroidX: cx,
		CentroidY: cy,
		WidthPx:   w,
	}
}

func (e *Estimator) classify(cx float64, width int) Label {
	switch {
	case cx > e.cfg.EastFraction*float64(width):
		return EastIsh
	case cx < e.cfg.WestFraction*float64(width):
		return WestIsh
	default:
		return Ambiguous
	}
}
