// Package config holds the tunable parameters of the perception pipeline.
//
// All numeric thresholds are empirically tuned defaults rather than derived
// constants. DefaultConfig returns them; FromEnv overlays TOURGUIDE_*
// environment variables on top.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the complete pipeline configuration.
type Config struct {
	Classifier  ClassifierConfig
	Validator   ValidatorConfig
	Detection   DetectionConfig
	Depth       DepthConfig
	Geometry    GeometryConfig
	Orientation OrientationConfig
	Render      RenderConfig
	OCR         OCRConfig
	Caption     CaptionConfig

	Workers   int    // Parallel images per batch; 1 = sequential
	OutputDir string // Default output directory for overlays and visualizations
	LogLevel  string // "debug" enables verbose logging
}

// ClassifierConfig holds the blueprint/room heuristic thresholds.
type ClassifierConfig struct {
	ColorfulnessMax float64 // Below this an image counts as low-color
	EdgeDensityMin  float64 // Above this an image counts as line-dense
	CannyLow        int
	CannyHigh       int
}

// ValidatorConfig holds the blueprint validation heuristic parameters.
type ValidatorConfig struct {
	CannyLow       int
	CannyHigh      int
	BlurSigma      float64 // Gaussian pre-blur; 0 disables
	EdgeDensityMin float64
	MinLines       int // Line segments required to accept a blueprint
	MinLineLength  int // Shortest segment counted, in pixels
}

// DetectionConfig describes the detection providers and label policy.
type DetectionConfig struct {
	BlueprintURL    string // Specialized floor-plan detector service
	BlueprintModel  string
	GeneralURL      string // General-purpose room-object detector service
	GeneralModel    string
	OpenVocabURL    string // Optional open-vocabulary detector; empty disables
	SegmenterURL    string // Optional segmenter paired with the open-vocabulary detector
	Confidence      float64
	BoxThreshold    float64
	TextThreshold   float64
	DefaultPrompt   string
	BlueprintLabels []string
	RoomLabels      []string
	Timeout         time.Duration
}

// DepthConfig describes the depth provider and normalizer.
type DepthConfig struct {
	URL     string
	Model   string
	Epsilon float64 // Guards (max - min) for constant fields
	Timeout time.Duration
}

// GeometryConfig holds the plane and dimension heuristics.
type GeometryConfig struct {
	LowGradientThreshold float64
	FloorBandFraction    float64 // Bottom share of rows treated as floor band
	FloorStdScale        float64
	HeightRatio          float64 // Share of image height assumed to span camera height
	MinCeilingPx         int
}

// OrientationConfig holds the brightness-centroid thresholds.
type OrientationConfig struct {
	HighlightQuantile float64
	EastFraction      float64
	WestFraction      float64
}

// RenderConfig controls the annotated overlay.
type RenderConfig struct {
	InsetMaxHeight int
	InsetMargin    int
	MaskAlpha      float64
	BoxThickness   int
}

// OCRConfig controls blueprint dimension-text reading.
type OCRConfig struct {
	Enabled  bool
	Language string
}

// CaptionConfig controls the optional scene caption provider.
type CaptionConfig struct {
	APIKey string
	Model  string
}

// DefaultPrompt is the open-vocabulary class list used when no prompt is given.
const DefaultPrompt = "window, door, fan, outlet, switch, sofa, bed, chair, table, lamp, tv, sink, toilet, shower, fridge"

// DefaultConfig returns a Config with the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Classifier: ClassifierConfig{
			ColorfulnessMax: 15.0,
			EdgeDensityMin:  0.08,
			CannyLow:        100,
			CannyHigh:       200,
		},
		Validator: ValidatorConfig{
			CannyLow:       50,
			CannyHigh:      150,
			BlurSigma:      1.0,
			EdgeDensityMin: 0.02,
			MinLines:       30,
			MinLineLength:  50,
		},
		Detection: DetectionConfig{
			BlueprintURL:   "http://localhost:5000",
			BlueprintModel: "models/best.pt",
			GeneralURL:     "http://localhost:5000",
			GeneralModel:   "models/yolov8n.pt",
			Confidence:     0.25,
			BoxThreshold:   0.25,
			TextThreshold:  0.25,
			DefaultPrompt:  DefaultPrompt,

			BlueprintLabels: []string{
				"Column", "Curtain Wall", "Dimension", "Door",
				"Railing", "Sliding Door", "Stair Case", "Wall", "Window",
			},
			RoomLabels: []string{"bed", "sofa", "couch", "window", "door"},
			Timeout:    120 * time.Second,
		},
		Depth: DepthConfig{
			URL:     "http://localhost:5001",
			Model:   "DPT_Hybrid",
			Epsilon: 1e-6,
			Timeout: 120 * time.Second,
		},
		Geometry: GeometryConfig{
			LowGradientThreshold: 0.02,
			FloorBandFraction:    0.25,
			FloorStdScale:        4.0,
			HeightRatio:          0.45,
			MinCeilingPx:         50,
		},
		Orientation: OrientationConfig{
			HighlightQuantile: 0.995,
			EastFraction:      0.55,
			WestFraction:      0.45,
		},
		Render: RenderConfig{
			InsetMaxHeight: 180,
			InsetMargin:    10,
			MaskAlpha:      0.35,
			BoxThickness:   2,
		},
		OCR: OCRConfig{
			Enabled:  false,
			Language: "eng",
		},
		Caption: CaptionConfig{
			Model: "gemini-1.5-flash",
		},
		Workers:   1,
		OutputDir: "outputs",
		LogLevel:  "info",
	}
}

// FromEnv returns DefaultConfig overlaid with TOURGUIDE_* environment variables.
func FromEnv() Config {
	c := DefaultConfig()

	c.Classifier.ColorfulnessMax = getEnvFloat("TOURGUIDE_COLORFULNESS_MAX", c.Classifier.ColorfulnessMax)
	c.Classifier.EdgeDensityMin = getEnvFloat("TOURGUIDE_EDGE_DENSITY_MIN", c.Classifier.EdgeDensityMin)

	c.Detection.BlueprintURL = getEnv("TOURGUIDE_BLUEPRINT_URL", c.Detection.BlueprintURL)
	c.Detection.BlueprintModel = getEnv("TOURGUIDE_BLUEPRINT_MODEL", c.Detection.BlueprintModel)
	c.Detection.GeneralURL = getEnv("TOURGUIDE_GENERAL_URL", c.Detection.GeneralURL)
	c.Detection.GeneralModel = getEnv("TOURGUIDE_GENERAL_MODEL", c.Detection.GeneralModel)
	c.Detection.OpenVocabURL = getEnv("TOURGUIDE_OPENVOCAB_URL", c.Detection.OpenVocabURL)
	c.Detection.SegmenterURL = getEnv("TOURGUIDE_SEGMENTER_URL", c.Detection.SegmenterURL)
	c.Detection.Confidence = getEnvFloat("TOURGUIDE_CONFIDENCE", c.Detection.Confidence)
	c.Detection.RoomLabels = getEnvList("TOURGUIDE_ROOM_LABELS", c.Detection.RoomLabels)
	c.Detection.BlueprintLabels = getEnvList("TOURGUIDE_BLUEPRINT_LABELS", c.Detection.BlueprintLabels)

	c.Depth.URL = getEnv("TOURGUIDE_DEPTH_URL", c.Depth.URL)
	c.Depth.Model = getEnv("TOURGUIDE_DEPTH_MODEL", c.Depth.Model)

	c.Geometry.HeightRatio = getEnvFloat("TOURGUIDE_HEIGHT_RATIO", c.Geometry.HeightRatio)
	c.Geometry.FloorStdScale = getEnvFloat("TOURGUIDE_FLOOR_STD_SCALE", c.Geometry.FloorStdScale)

	c.OCR.Enabled = getEnv("TOURGUIDE_OCR", "") == "1"
	c.OCR.Language = getEnv("TOURGUIDE_OCR_LANG", c.OCR.Language)

	c.Caption.APIKey = getEnv("GEMINI_API_KEY", c.Caption.APIKey)
	c.Caption.Model = getEnv("TOURGUIDE_CAPTION_MODEL", c.Caption.Model)

	c.Workers = getEnvInt("TOURGUIDE_WORKERS", c.Workers)
	c.OutputDir = getEnv("TOURGUIDE_OUTPUT_DIR", c.OutputDir)
	c.LogLevel = getEnv("TOURGUIDE_LOG_LEVEL", c.LogLevel)

	return c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultVal
}

// getEnvList reads a comma-separated list, dropping empty items.
func getEnvList(key string, defaultVal []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
