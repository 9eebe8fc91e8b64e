// Package render draws the annotated overlay for a processed image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"path/filepath"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/detection"
	"github.com/ironsheep/tourguide/internal/imaging"
)

var (
	boxColor   = color.RGBA{255, 99, 138, 255}
	labelColor = color.RGBA{255, 160, 180, 255}
	labelBack  = color.RGBA{0, 0, 0, 160}
)

// maskHue is the tint hue, in degrees, blended over segmented pixels.
const maskHue = 120.0

// OverlayPath returns <outDir>/<stem>_annotated.jpg for a source image.
func OverlayPath(outDir, source string) string {
	return StemOverlayPath(outDir, Stem(source))
}

// StemOverlayPath returns <outDir>/<stem>_annotated.jpg.
func StemOverlayPath(outDir, stem string) string {
	return filepath.Join(outDir, stem+"_annotated.jpg")
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Renderer composes overlays.
type Renderer struct {
	cfg  config.RenderConfig
	tint color.NRGBA
}

// New creates a Renderer.
func New(cfg config.RenderConfig) *Renderer {
	r, g, b := colorful.Hsv(maskHue, 1, 1).RGB255()
	return &Renderer{cfg: cfg, tint: color.NRGBA{R: r, G: g, B: b, A: 255}}
}

// Compose draws instances onto a copy of src and, when insetPath names an
// existing image, pastes a thumbnail of it into the bottom-right corner.
// src is never modified.
func (r *Renderer) Compose(src image.Image, instances []detection.Instance, insetPath string) *image.NRGBA {
	out := imaging.Clone(src)
	origin := src.Bounds().Min

	for _, in := range instances {
		if in.Mask != nil {
			r.tintMask(out, in.Mask, origin)
		}
	}
	for _, in := range instances {
		rect := in.Box.Rect().Sub(origin)
		imaging.DrawRect(out, rect, boxColor, r.cfg.BoxThickness)

		y := rect.Min.Y - 8
		if y < 20 {
			y = 20
		}
		imaging.DrawLabel(out, rect.Min.X, y, fmt.Sprintf("%s %.2f", in.Label, in.Confidence), labelColor, labelBack)
	}

	if insetPath != "" && imaging.Exists(insetPath) {
		if err := r.pasteInset(out, insetPath); err != nil {
			log.Printf("Skipping depth inset: %v", err)
		}
	}
	return out
}

// Render composes the overlay and writes it to outPath.
func (r *Renderer) Render(src image.Image, instances []detection.Instance, insetPath, outPath string) (string, error) {
	if err := imaging.Save(r.Compose(src, instances, insetPath), outPath); err != nil {
		return "", fmt.Errorf("render overlay: %w", err)
	}
	return outPath, nil
}

// tintMask blends the tint over masked pixels at MaskAlpha opacity.
func (r *Renderer) tintMask(dst *image.NRGBA, mask *image.Alpha, origin image.Point) {
	a := uint8(math.Round(255 * clamp01(r.cfg.MaskAlpha)))
	if a == 0 {
		return
	}
	scaled := image.NewAlpha(mask.Bounds())
	for i, v := range mask.Pix {
		if v != 0 {
			scaled.Pix[i] = a
		}
	}
	area := mask.Bounds().Sub(origin).Intersect(dst.Bounds())
	draw.DrawMask(dst, area, image.NewUniform(r.tint), image.Point{}, scaled, area.Min.Add(origin), draw.Over)
}

func (r *Renderer) pasteInset(dst *image.NRGBA, path string) error {
	vis, err := imaging.Open(path)
	if err != nil {
		return err
	}
	b := dst.Bounds()
	h := r.cfg.InsetMaxHeight
	if third := b.Dy() / 3; third < h {
		h = third
	}
	if h < 1 {
		return nil
	}

	thumb := imaging.FitHeight(vis, h)
	tb := thumb.Bounds()
	x := b.Max.X - tb.Dx() - r.cfg.InsetMargin
	y := b.Max.Y - tb.Dy() - r.cfg.InsetMargin
	if x < b.Min.X {
		x = b.Min.X
	}
	if y < b.Min.Y {
		y = b.Min.Y
	}
	draw.Draw(dst, image.Rect(x, y, x+tb.Dx(), y+tb.Dy()).Intersect(b), thumb, tb.Min, draw.Over)
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
