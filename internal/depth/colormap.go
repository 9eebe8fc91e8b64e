package depth

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// magmaStops are evenly spaced anchors of the magma colormap.
var magmaStops = mustHexes("#000004", "#3b0f70", "#8c2981", "#de4968", "#fe9f6d", "#fcfdbf")

func mustHexes(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// Magma maps t in [0, 1] onto the magma colormap, blending in Lab space
// between anchors. Values outside the range are clamped.
func Magma(t float64) color.NRGBA {
	if t <= 0 {
		return toNRGBA(magmaStops[0])
	}
	if t >= 1 {
		return toNRGBA(magmaStops[len(magmaStops)-1])
	}
	pos := t * float64(len(magmaStops)-1)
	i := int(pos)
	return toNRGBA(magmaStops[i].BlendLab(magmaStops[i+1], pos-float64(i)).Clamped())
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Visualize renders the normalized field with the magma colormap.
func Visualize(f *Field) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetNRGBA(x, y, Magma(f.At(x, y)))
		}
	}
	return img
}

// SaveVisualization writes the colormapped field to path. The format
// follows the file extension.
func SaveVisualization(f *Field, path string) error {
	if err := imaging.Save(Visualize(f), path); err != nil {
		return fmt.Errorf("save depth visualization: %w", err)
	}
	return nil
}
