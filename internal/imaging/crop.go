package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts r from img after clipping it to the image bounds.
//
// Returns the cropped image (origin at 0,0) and the clipped rectangle in the
// source coordinate space, which callers need to map results on the crop back
// onto the full image.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, image.Rectangle, error) {
	clipped := r.Canon().Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, clipped, fmt.Errorf("crop region %v outside image bounds %v", r, img.Bounds())
	}
	return imaging.Crop(img, clipped), clipped, nil
}

// Scale resizes img by factor with Lanczos resampling. A factor of 1 or less
// than or equal to zero returns a plain copy.
func Scale(img image.Image, factor float64) *image.NRGBA {
	if factor == 1.0 || factor <= 0 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// ResizeNearest resizes img to exactly w x h with nearest-neighbour
// sampling, which keeps binary masks binary.
func ResizeNearest(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, imaging.NearestNeighbor)
}

// FitHeight resizes img to height h preserving aspect ratio.
func FitHeight(img image.Image, h int) *image.NRGBA {
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, 0, h, imaging.Linear)
}
