package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/detection"
	"github.com/ironsheep/tourguide/internal/imaging"
)

// DimensionLabel is the blueprint detector label for dimension callouts.
const DimensionLabel = "Dimension"

// upscale enlarges crops before OCR; dimension text is small on most plans.
const upscale = 2.0

// Reading is the text recognized inside one detection box.
type Reading struct {
	Box    detection.Box
	Text   string
	Meters *float64 // Parsed length, nil when the text is not a dimension
}

// Reader runs Tesseract over image regions.
type Reader struct {
	language string
}

// New creates a Reader for the configured language.
func New(cfg config.OCRConfig) *Reader {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	return &Reader{language: lang}
}

// ReadRegion recognizes a single line of text inside r.
//
// The region is clipped to the image, upscaled, and handed to Tesseract as
// in-memory PNG bytes. Returns the trimmed text.
func (rd *Reader) ReadRegion(img image.Image, r image.Rectangle) (string, error) {
	crop, _, err := imaging.Crop(img, r)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.Scale(crop, upscale)); err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(rd.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// ReadDimensions OCRs every Dimension instance and returns the non-empty
// readings in instance order.
func (rd *Reader) ReadDimensions(img image.Image, instances []detection.Instance) []Reading {
	var out []Reading
	for _, in := range instances {
		if !strings.EqualFold(in.Label, DimensionLabel) {
			continue
		}
		text, err := rd.ReadRegion(img, in.Box.Rect())
		if err != nil {
			log.Printf("OCR of dimension box %v failed: %v", in.Box.XYXY(), err)
			continue
		}
		if text == "" {
			continue
		}
		r := Reading{Box: in.Box, Text: text}
		if m, ok := ParseDimension(text); ok {
			r.Meters = &m
		}
		out = append(out, r)
	}
	return out
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
