package depth

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/tourguide/internal/errs"
)

// Field is a depth map aligned with a source image.
type Field struct {
	Width  int
	Height int
	Raw    []float64 // Resized, unnormalized values
	Norm   []float64 // (raw - min) / (max - min + eps), in [0, 1]
}

// At returns the normalized depth at (x, y).
func (f *Field) At(x, y int) float64 {
	return f.Norm[y*f.Width+x]
}

// Row returns the normalized values of row y. The slice aliases Norm.
func (f *Field) Row(y int) []float64 {
	return f.Norm[y*f.Width : (y+1)*f.Width]
}

// Stats is the summary of a Field that ends up in the scene record.
type Stats struct {
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	VisPath string  `json:"vis_path"`
}

// Normalize resizes pred to width x height with bicubic interpolation and
// rescales it to [0, 1]. eps keeps the division finite for a constant field,
// which normalizes to all zeros.
func Normalize(pred Prediction, width, height int, eps float64) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d", errs.ErrDegenerateInput, width, height)
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}
	for _, v := range pred.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: depth prediction contains non-finite values", errs.ErrDegenerateInput)
		}
	}

	raw := pred.Values
	if pred.Width != width || pred.Height != height {
		raw = resize(pred, width, height)
	} else {
		raw = append([]float64(nil), raw...)
	}

	lo, hi := floats.Min(raw), floats.Max(raw)
	norm := make([]float64, len(raw))
	scale := hi - lo + eps
	for i, v := range raw {
		norm[i] = (v - lo) / scale
	}

	return &Field{Width: width, Height: height, Raw: raw, Norm: norm}, nil
}

// resize maps the prediction onto a 16-bit gray image, scales it with
// Catmull-Rom, and maps back to the original value range. 16 bits keep
// quantization error far below the geometry thresholds.
func resize(pred Prediction, width, height int) []float64 {
	lo, hi := floats.Min(pred.Values), floats.Max(pred.Values)
	span := hi - lo

	out := make([]float64, width*height)
	if span == 0 {
		for i := range out {
			out[i] = lo
		}
		return out
	}

	src := image.NewGray16(image.Rect(0, 0, pred.Width, pred.Height))
	for i, v := range pred.Values {
		q := uint16(math.Round((v - lo) / span * 65535))
		src.Pix[2*i] = uint8(q >> 8)
		src.Pix[2*i+1] = uint8(q)
	}

	dst := image.NewGray16(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	for i := range out {
		q := uint16(dst.Pix[2*i])<<8 | uint16(dst.Pix[2*i+1])
		out[i] = lo + float64(q)/65535*span
	}
	return out
}

// Summarize computes the mean and population standard deviation of the
// normalized field. A single-pixel field has zero deviation.
func Summarize(f *Field, visPath string) Stats {
	if len(f.Norm) < 2 {
		var mean float64
		if len(f.Norm) == 1 {
			mean = f.Norm[0]
		}
		return Stats{Mean: mean, VisPath: visPath}
	}
	mean, std := stat.PopMeanStdDev(f.Norm, nil)
	return Stats{Mean: mean, Std: std, VisPath: visPath}
}
