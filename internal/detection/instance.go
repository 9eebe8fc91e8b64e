package detection

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strings"
)

// Box is an axis-aligned bounding box in source-image pixels.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// NewBox returns a Box with its corners ordered so X1 <= X2 and Y1 <= Y2.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// XYXY returns the corners as [x1, y1, x2, y2].
func (b Box) XYXY() [4]float64 {
	return [4]float64{b.X1, b.Y1, b.X2, b.Y2}
}

// Rect returns the smallest integer rectangle containing the box.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X1)), int(math.Floor(b.Y1)),
		int(math.Ceil(b.X2)), int(math.Ceil(b.Y2)),
	)
}

// Clamp restricts the box to r.
func (b Box) Clamp(r image.Rectangle) Box {
	clamp := func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X), float64(r.Max.Y)
	return Box{
		X1: clamp(b.X1, minX, maxX),
		Y1: clamp(b.Y1, minY, maxY),
		X2: clamp(b.X2, minX, maxX),
		Y2: clamp(b.Y2, minY, maxY),
	}
}

// Width returns X2 - X1.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Instance is one detected object. Instances are not modified after a
// provider returns them.
type Instance struct {
	Label      string
	Confidence float64
	Box        Box
	// Mask covers the full source image when set; nil when the provider
	// does not segment.
	Mask *image.Alpha
}

// HasMask reports whether the instance carries a segmentation mask.
func (in Instance) HasMask() bool { return in.Mask != nil }

// PlaceMask embeds a mask computed on a crop into a mask covering full.
// Pixel (x, y) of crop lands at offset + (x, y) - crop.Bounds().Min; pixels
// falling outside full are dropped. Any non-zero crop value marks the pixel.
func PlaceMask(crop image.Image, offset image.Point, full image.Rectangle) *image.Alpha {
	out := image.NewAlpha(full)
	if crop == nil {
		return out
	}
	cb := crop.Bounds()
	for y := cb.Min.Y; y < cb.Max.Y; y++ {
		for x := cb.Min.X; x < cb.Max.X; x++ {
			if !maskSet(crop.At(x, y)) {
				continue
			}
			p := image.Pt(offset.X+x-cb.Min.X, offset.Y+y-cb.Min.Y)
			if p.In(full) {
				out.SetAlpha(p.X, p.Y, color.Alpha{A: 255})
			}
		}
	}
	return out
}

// maskSet treats a pixel as inside when its gray level is at least half
// intensity. Fully transparent pixels never count.
func maskSet(c color.Color) bool {
	_, _, _, a := c.RGBA()
	if a == 0 {
		return false
	}
	if al, ok := c.(color.Alpha); ok {
		return al.A >= 128
	}
	g := color.GrayModel.Convert(c).(color.Gray)
	return g.Y >= 128
}

// MaskArea counts the pixels inside m.
func MaskArea(m *image.Alpha) int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// LabelFilter keeps instances whose label is on an allow-list. Matching is
// case-insensitive but kept instances retain their original label text.
type LabelFilter struct {
	allowed map[string]struct{}
}

// NewLabelFilter builds a filter for labels. An empty list allows nothing.
func NewLabelFilter(labels []string) LabelFilter {
	f := LabelFilter{allowed: make(map[string]struct{}, len(labels))}
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			f.allowed[l] = struct{}{}
		}
	}
	return f
}

// Allows reports whether label is on the allow-list.
func (f LabelFilter) Allows(label string) bool {
	_, ok := f.allowed[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// Apply returns the instances the filter allows, preserving order.
func (f LabelFilter) Apply(instances []Instance) []Instance {
	out := make([]Instance, 0, len(instances))
	for _, in := range instances {
		if f.Allows(in.Label) {
			out = append(out, in)
		}
	}
	return out
}

// Counts tallies instances per label.
func Counts(instances []Instance) map[string]int {
	counts := make(map[string]int)
	for _, in := range instances {
		counts[in.Label]++
	}
	return counts
}

// SortedLabels returns the keys of counts in lexical order.
func SortedLabels(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// ParsePrompt splits a comma-separated class prompt into trimmed class
// names. A blank prompt yields the classes of def.
func ParsePrompt(prompt, def string) []string {
	if strings.TrimSpace(prompt) == "" {
		prompt = def
	}
	var classes []string
	for _, c := range strings.Split(prompt, ",") {
		if c = strings.TrimSpace(c); c != "" {
			classes = append(classes, c)
		}
	}
	return classes
}
