package classify

import (
	"image"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/imaging"
)

// maxValidationSegments caps the reported line count.
const maxValidationSegments = 500

// Validation is the outcome of the structural blueprint check.
type Validation struct {
	IsBlueprint bool    `json:"is_blueprint"`
	EdgeDensity float64 `json:"edge_density"`
	LineCount   int     `json:"line_count"`
	Reason      string  `json:"reason"`
}

// Validate checks whether an image carries enough straight structural lines
// to be a floor plan. The image is blurred, run through Canny, and scanned
// for Hough segments; it passes when edge density exceeds EdgeDensityMin and
// more than MinLines segments of at least MinLineLength pixels are found.
//
// Validate complements Classify: Classify routes images cheaply, while
// Validate answers "is this upload really a blueprint" for a single image.
func Validate(img image.Image, cfg config.ValidatorConfig) Validation {
	edges := imaging.Canny(img, cfg.CannyLow, cfg.CannyHigh, cfg.BlurSigma)
	density := imaging.EdgeDensity(edges)
	lines := imaging.HoughSegments(edges, cfg.MinLineLength, maxValidationSegments)

	v := Validation{
		EdgeDensity: density,
		LineCount:   len(lines),
	}
	v.IsBlueprint = density > cfg.EdgeDensityMin && v.LineCount > cfg.MinLines
	if v.IsBlueprint {
		v.Reason = "Likely blueprint"
	} else {
		v.Reason = "No strong structural lines detected"
	}
	return v
}
