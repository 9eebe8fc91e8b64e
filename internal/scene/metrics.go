package scene

import (
	"math"
	"strings"
)

// ObjectMetrics are the real-world sizes derived from a detection's box
// once the image has an approximate metric scale.
type ObjectMetrics struct {
	BBoxWHPx       [2]float64 `json:"bbox_wh_px"`
	BBoxCenterPx   [2]float64 `json:"bbox_center_px"`
	BBoxWHM        [2]float64 `json:"bbox_wh_m"`
	AreaM2         float64    `json:"area_m2"`
	WallLengthM    *float64   `json:"wall_length_m,omitempty"`
	WallThicknessM *float64   `json:"wall_thickness_m,omitempty"`
	OpeningSpanM   *float64   `json:"opening_span_m,omitempty"`
}

// measureObject converts an xyxy box to metres at pxToM metres per pixel.
// Walls report their long side as length and short side as thickness;
// doors and windows report their long side as the opening span.
func measureObject(label string, box [4]float64, pxToM float64) *ObjectMetrics {
	w := math.Max(0, box[2]-box[0])
	h := math.Max(0, box[3]-box[1])
	wm, hm := w*pxToM, h*pxToM

	m := &ObjectMetrics{
		BBoxWHPx:     [2]float64{w, h},
		BBoxCenterPx: [2]float64{(box[0] + box[2]) / 2, (box[1] + box[3]) / 2},
		BBoxWHM:      [2]float64{wm, hm},
		AreaM2:       wm * hm,
	}

	long, short := math.Max(wm, hm), math.Min(wm, hm)
	switch strings.ToLower(label) {
	case "wall":
		m.WallLengthM = &long
		m.WallThicknessM = &short
	case "door", "window":
		m.OpeningSpanM = &long
	}
	return m
}
