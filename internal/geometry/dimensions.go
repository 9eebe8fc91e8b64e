package geometry

import (
	"encoding/json"
	"math"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/depth"
)

// Scale tags a dimension estimate.
type Scale string

const (
	ScaleRelative     Scale = "relative"
	ScaleApproxMeters Scale = "approx_meters"
)

// Dimensions is a room-dimension estimate. The concrete type is either
// RelativeEstimate or MetricEstimate; callers switch on it (or on Scale)
// before reading scale-dependent fields.
type Dimensions interface {
	Scale() Scale
	ImageSize() (width, height int)
	isDimensions()
}

// RelativeEstimate is the pixel-only estimate produced without camera
// parameters.
type RelativeEstimate struct {
	WidthPx              int `json:"image_width_px"`
	HeightPx             int `json:"image_height_px"`
	CeilingHeightPxGuess int `json:"ceiling_height_px_guess"`
}

// MetricEstimate is the approximate metric estimate produced when both
// camera height and field of view are known.
type MetricEstimate struct {
	WidthPx             int     `json:"image_width_px"`
	HeightPx            int     `json:"image_height_px"`
	PxToM               float64 `json:"px_to_m"`
	FocalPx             float64 `json:"focal_px"`
	CeilingHeightMGuess float64 `json:"ceiling_height_m_guess"`
}

func (RelativeEstimate) Scale() Scale { return ScaleRelative }
func (MetricEstimate) Scale() Scale   { return ScaleApproxMeters }

func (e RelativeEstimate) ImageSize() (int, int) { return e.WidthPx, e.HeightPx }
func (e MetricEstimate) ImageSize() (int, int)   { return e.WidthPx, e.HeightPx }

func (RelativeEstimate) isDimensions() {}
func (MetricEstimate) isDimensions()   {}

// MarshalJSON adds the scale tag.
func (e RelativeEstimate) MarshalJSON() ([]byte, error) {
	type plain RelativeEstimate
	return json.Marshal(struct {
		Scale Scale `json:"scale"`
		plain
	}{ScaleRelative, plain(e)})
}

// MarshalJSON adds the scale tag.
func (e MetricEstimate) MarshalJSON() ([]byte, error) {
	type plain MetricEstimate
	return json.Marshal(struct {
		Scale Scale `json:"scale"`
		plain
	}{ScaleApproxMeters, plain(e)})
}

// Camera holds the optional capture parameters. Both must be set, finite,
// and positive for a metric estimate.
type Camera struct {
	HeightM *float64 // Camera height above the floor, meters
	FOVDeg  *float64 // Horizontal field of view, degrees
}

// Complete reports whether both parameters are usable.
func (c Camera) Complete() bool {
	return usable(c.HeightM) && usable(c.FOVDeg) && *c.FOVDeg < 180
}

// Partial reports whether exactly one parameter was supplied.
func (c Camera) Partial() bool {
	return (c.HeightM == nil) != (c.FOVDeg == nil)
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v > 0
}

// Estimate returns the dimension estimate for a field of the given image
// size. Without complete camera parameters the relative variant is
// returned; a partial pair is treated as absent.
func Estimate(f *depth.Field, cam Camera, cfg config.GeometryConfig) Dimensions {
	if cam.Complete() {
		return metric(f.Width, f.Height, *cam.HeightM, *cam.FOVDeg, cfg)
	}
	return RelativeEstimate{
		WidthPx:              f.Width,
		HeightPx:             f.Height,
		CeilingHeightPxGuess: ceilingPx(f, cfg.MinCeilingPx),
	}
}

func metric(w, h int, camHeight, fovDeg float64, cfg config.GeometryConfig) MetricEstimate {
	fov := fovDeg * math.Pi / 180
	focal := (float64(w) / 2) / math.Tan(fov/2)
	span := float64(h) * cfg.HeightRatio
	pxToM := camHeight / span
	return MetricEstimate{
		WidthPx:             w,
		HeightPx:            h,
		PxToM:               pxToM,
		FocalPx:             focal,
		CeilingHeightMGuess: span * pxToM,
	}
}

// ceilingPx guesses the visible wall height in pixels. The per-row median
// depth profile is compared to its own mean; the first row below the mean
// from the top and from the bottom bound the wall span.
func ceilingPx(f *depth.Field, minPx int) int {
	if f.Height == 0 {
		return minPx
	}
	profile := make([]float64, f.Height)
	var sum float64
	for y := 0; y < f.Height; y++ {
		profile[y] = median(f.Row(y))
		sum += profile[y]
	}
	mean := sum / float64(f.Height)

	top := 0
	for y, v := range profile {
		if v < mean {
			top = y
			break
		}
	}
	bottom := 0
	for i := len(profile) - 1; i >= 0; i-- {
		if profile[i] < mean {
			bottom = len(profile) - 1 - i
			break
		}
	}

	guess := f.Height - bottom - top
	if guess < minPx {
		guess = minPx
	}
	return guess
}
