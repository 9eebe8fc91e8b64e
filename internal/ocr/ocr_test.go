package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/detection"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// createPlanWithCallout renders text on a white canvas, scaled up by
// drawing each pixel as a scale x scale block. Returns the image and the
// box around the text.
func createPlanWithCallout(text string, scale int) (*image.RGBA, image.Rectangle) {
	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	box := image.Rect(10*scale, 5*scale, (w-10)*scale, 35*scale)
	return img, box
}

// skipIfNoTesseract skips when the OCR engine is not usable here.
func skipIfNoTesseract(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") ||
		strings.Contains(msg, "language") || strings.Contains(msg, "tessdata") {
		t.Skip("Tesseract not available")
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{`12'6"`, 12*0.3048 + 6*0.0254, true},
		{`12' - 6"`, 12*0.3048 + 6*0.0254, true},
		{"12’6”", 12*0.3048 + 6*0.0254, true},
		{"12 ft 6 in", 12*0.3048 + 6*0.0254, true},
		{"10'", 3.048, true},
		{`30"`, 0.762, true},
		{"30''", 0.762, true},
		{"3.60 m", 3.6, true},
		{"3,6 m", 3.6, true},
		{"360 cm", 3.6, true},
		{"3600 mm", 3.6, true},
		{"3600", 0, false},
		{"LIVING", 0, false},
		{"", 0, false},
		{"0'", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDimension(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (value %v)", ok, tt.wantOK, got)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v m, want %v m", got, tt.want)
			}
		})
	}
}

func TestNew_DefaultsLanguage(t *testing.T) {
	if New(config.OCRConfig{}).language != "eng" {
		t.Error("empty language should default to eng")
	}
	if New(config.OCRConfig{Language: "deu"}).language != "deu" {
		t.Error("configured language ignored")
	}
}

func TestReadRegion_OutsideImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if _, err := New(config.DefaultConfig().OCR).ReadRegion(img, image.Rect(100, 100, 120, 120)); err == nil {
		t.Error("expected error for a region outside the image")
	}
}

func TestReadRegion_RealText(t *testing.T) {
	img, box := createPlanWithCallout("HELLO", 3)

	text, err := New(config.DefaultConfig().OCR).ReadRegion(img, box)
	skipIfNoTesseract(t, err)
	if err != nil {
		t.Fatalf("ReadRegion failed: %v", err)
	}
	if !strings.Contains(strings.ToUpper(text), "HELLO") {
		t.Logf("OCR returned %q (recognition quality varies by Tesseract version)", text)
	}
}

func TestReadDimensions_SkipsOtherLabels(t *testing.T) {
	img, box := createPlanWithCallout("12'6\"", 3)
	instances := []detection.Instance{
		{Label: "Wall", Confidence: 0.9, Box: detection.NewBox(0, 0, 5, 5)},
		{Label: "dimension", Confidence: 0.8, Box: detection.NewBox(
			float64(box.Min.X), float64(box.Min.Y), float64(box.Max.X), float64(box.Max.Y))},
	}

	rd := New(config.DefaultConfig().OCR)
	if _, err := rd.ReadRegion(img, box); err != nil {
		skipIfNoTesseract(t, err)
	}

	for _, r := range rd.ReadDimensions(img, instances) {
		if r.Box != instances[1].Box {
			t.Errorf("reading attributed to box %+v", r.Box)
		}
		if r.Text == "" {
			t.Error("empty readings should be dropped")
		}
		if r.Meters != nil && *r.Meters <= 0 {
			t.Errorf("parsed length %v should be positive", *r.Meters)
		}
	}
}
