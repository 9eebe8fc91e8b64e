// Package scene defines the per-image output record and the pure fusion step
// that assembles it from the individual perception signals.
package scene

import (
	"github.com/ironsheep/tourguide/internal/classify"
	"github.com/ironsheep/tourguide/internal/depth"
	"github.com/ironsheep/tourguide/internal/detection"
	"github.com/ironsheep/tourguide/internal/geometry"
	"github.com/ironsheep/tourguide/internal/orientation"
)

// Mode sources.
const (
	SourceOverride  = "override"
	SourceHeuristic = "heuristic"
)

// Object is one detection as it appears in the record. The metric fields
// are present only when the image has an approx_meters scale.
type Object struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox_xyxy"`
	HasMask    bool       `json:"has_mask"`
	*ObjectMetrics
}

// Detector records which provider produced the objects.
type Detector struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

// Annotation is text read from a blueprint dimension callout.
type Annotation struct {
	BBox   [4]float64 `json:"bbox_xyxy"`
	Text   string     `json:"text"`
	Meters *float64   `json:"meters,omitempty"`
}

// Caption is a short scene description and a follow-up question.
type Caption struct {
	Text     string `json:"text"`
	Question string `json:"question"`
}

// ClassifierScores are the raw heuristic scores behind a detected mode.
type ClassifierScores struct {
	Colorfulness float64 `json:"colorfulness"`
	EdgeDensity  float64 `json:"edge_density"`
	Degraded     bool    `json:"degraded,omitempty"`
}

// Record is the fused result for one successfully processed image.
type Record struct {
	SourceImage    string               `json:"source_image"`
	Mode           classify.Mode        `json:"mode"`
	ModeSource     string               `json:"mode_source"`
	Classifier     *ClassifierScores    `json:"classifier,omitempty"`
	Detector       Detector             `json:"detector"`
	Objects        []Object             `json:"objects"`
	Depth          depth.Stats          `json:"depth"`
	Geometry       geometry.PlaneStats  `json:"geometry"`
	Dimensions     geometry.Dimensions  `json:"dimensions"`
	Orientation    orientation.Estimate `json:"orientation"`
	AnnotatedImage string               `json:"annotated_image"`
	Counts         map[string]int       `json:"counts"`
	CountsCSV      string               `json:"counts_csv,omitempty"`
	Annotations    []Annotation         `json:"annotations,omitempty"`
	Caption        *Caption             `json:"caption,omitempty"`
}

// Inputs carries everything Fuse merges. Optional signals are left nil.
type Inputs struct {
	SourceImage    string
	Mode           classify.Mode
	Override       bool
	Classification *classify.Result // nil when the mode was overridden
	Detection      *detection.Result
	Depth          depth.Stats
	Geometry       geometry.PlaneStats
	Dimensions     geometry.Dimensions
	Orientation    orientation.Estimate
	AnnotatedImage string
	CountsCSV      string
	Annotations    []Annotation
	Caption        *Caption
}
