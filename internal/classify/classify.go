// Package classify decides which perception regime an image belongs to.
//
// Two regimes exist: blueprint (2-D architectural line drawings) and room
// (photographs of interiors). The classifier is a conjunctive two-signal
// heuristic: an image is a blueprint only when it is both low-color and
// line-dense. Anything that cannot be decoded degrades to room.
package classify

import (
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/errs"
	"github.com/ironsheep/tourguide/internal/imaging"
)

// Mode is a perception regime.
type Mode string

const (
	// Blueprint is the regime for floor-plan drawings.
	Blueprint Mode = "blueprint"
	// Room is the regime for photographic room interiors.
	Room Mode = "room"
)

// ParseMode validates a caller-supplied mode override. Matching is
// case-insensitive after trimming; anything other than blueprint or room
// wraps errs.ErrInvalidArgument.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Blueprint:
		return Blueprint, nil
	case Room:
		return Room, nil
	}
	return "", fmt.Errorf("mode override must be 'blueprint' or 'room', got %q: %w", s, errs.ErrInvalidArgument)
}

// Scores are the raw signals behind a classification.
type Scores struct {
	Colorfulness float64 `json:"colorfulness"`
	EdgeDensity  float64 `json:"edge_density"`
}

// Result is a classification with the scores that produced it.
type Result struct {
	Mode     Mode   `json:"mode"`
	Scores   Scores `json:"scores"`
	Degraded bool   `json:"degraded,omitempty"` // Image unreadable; Mode is the room default
}

// Classifier scores images against configurable thresholds.
type Classifier struct {
	cfg config.ClassifierConfig
}

// New creates a Classifier.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify labels a decoded image. It returns Blueprint iff colorfulness is
// below ColorfulnessMax and edge density is above EdgeDensityMin. A nil or
// empty image degrades to Room.
func (c *Classifier) Classify(img image.Image) Result {
	if img == nil || img.Bounds().Empty() {
		return Result{Mode: Room, Degraded: true}
	}

	scores := Scores{
		Colorfulness: imaging.Colorfulness(img),
		EdgeDensity:  imaging.EdgeDensity(imaging.Canny(img, c.cfg.CannyLow, c.cfg.CannyHigh, 0)),
	}

	mode := Room
	if scores.Colorfulness < c.cfg.ColorfulnessMax && scores.EdgeDensity > c.cfg.EdgeDensityMin {
		mode = Blueprint
	}
	return Result{Mode: mode, Scores: scores}
}

// ClassifyFile loads path through cache and classifies it. It never fails:
// an unreadable image degrades to Room.
func (c *Classifier) ClassifyFile(cache *imaging.ImageCache, path string) Result {
	img, err := cache.Load(path)
	if err != nil {
		log.Printf("classify: %v; defaulting to %s", err, Room)
		return Result{Mode: Room, Degraded: true}
	}
	return c.Classify(img)
}
