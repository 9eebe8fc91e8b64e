package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	cropped, r, err := Crop(img, image.Rect(60, 0, 90, 20))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if cropped.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Errorf("cropped bounds = %v, want 30x20 at origin", cropped.Bounds())
	}
	if r != image.Rect(60, 0, 90, 20) {
		t.Errorf("clipped rect = %v", r)
	}
	// Top-right quadrant is green
	if c := cropped.NRGBAAt(5, 5); c.G != 255 || c.R != 0 {
		t.Errorf("expected green, got %v", c)
	}
}

func TestCrop_ClipsToBounds(t *testing.T) {
	img := createInMemoryImage(50, 40, color.White)

	cropped, r, err := Crop(img, image.Rect(40, 30, 80, 90))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if r != image.Rect(40, 30, 50, 40) {
		t.Errorf("clipped rect = %v, want (40,30)-(50,40)", r)
	}
	if cropped.Bounds().Dx() != 10 || cropped.Bounds().Dy() != 10 {
		t.Errorf("cropped size = %v", cropped.Bounds())
	}
}

func TestCrop_Outside(t *testing.T) {
	img := createInMemoryImage(50, 40, color.White)
	if _, _, err := Crop(img, image.Rect(60, 60, 70, 70)); err == nil {
		t.Error("Crop should fail for a region outside the image")
	}
}

func TestScale(t *testing.T) {
	img := createInMemoryImage(40, 20, color.White)

	tests := []struct {
		name         string
		factor       float64
		wantW, wantH int
	}{
		{"double", 2.0, 80, 40},
		{"half", 0.5, 20, 10},
		{"identity", 1.0, 40, 20},
		{"zero treated as identity", 0, 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Scale(img, tt.factor)
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitHeight(t *testing.T) {
	out := FitHeight(createInMemoryImage(200, 100, color.White), 50)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Errorf("got %v, want 100x50", out.Bounds())
	}
}

func TestResizeNearest_KeepsMaskBinary(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			m.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	out := ResizeNearest(m, 10, 6)
	if out.Bounds() != image.Rect(0, 0, 10, 6) {
		t.Fatalf("bounds = %v, want 10x6", out.Bounds())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			if v := out.NRGBAAt(x, y).R; v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
	if out.NRGBAAt(0, 0).R != 255 || out.NRGBAAt(9, 5).R != 0 {
		t.Error("left half should stay set and right half clear")
	}
}
