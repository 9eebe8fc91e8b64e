package render

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/tourguide/internal/config"
	"github.com/ironsheep/tourguide/internal/detection"
	"github.com/ironsheep/tourguide/internal/imaging"
)

func createWhiteImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestOverlayPath(t *testing.T) {
	if got := OverlayPath("out", "/data/in/kitchen.photo.png"); got != filepath.Join("out", "kitchen.photo_annotated.jpg") {
		t.Errorf("OverlayPath = %s", got)
	}
	if got := StemOverlayPath("out", "room_png"); got != filepath.Join("out", "room_png_annotated.jpg") {
		t.Errorf("StemOverlayPath = %s", got)
	}
	if got := Stem("plan.JPG"); got != "plan" {
		t.Errorf("Stem = %s", got)
	}
}

func TestCompose_DrawsBoxes(t *testing.T) {
	src := createWhiteImage(120, 90)
	before := append([]uint8(nil), src.Pix...)

	r := New(config.DefaultConfig().Render)
	out := r.Compose(src, []detection.Instance{
		{Label: "door", Confidence: 0.91, Box: detection.NewBox(10, 10, 50, 60)},
	}, "")

	if !bytes.Equal(before, src.Pix) {
		t.Fatal("Compose modified the source image")
	}
	if out.Bounds() != src.Bounds() {
		t.Errorf("overlay bounds = %v", out.Bounds())
	}
	if r, g, b := rgbAt(out, 10, 40); r != 255 || g != 99 || b != 138 {
		t.Errorf("left box edge = (%d,%d,%d), want box color", r, g, b)
	}
	if r, g, b := rgbAt(out, 30, 40); r != 255 || g != 255 || b != 255 {
		t.Errorf("box interior changed to (%d,%d,%d)", r, g, b)
	}
}

func TestCompose_TintsMask(t *testing.T) {
	src := createWhiteImage(100, 100)
	mask := image.NewAlpha(src.Bounds())
	for y := 60; y < 70; y++ {
		for x := 60; x < 70; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}

	out := New(config.DefaultConfig().Render).Compose(src, []detection.Instance{
		{Label: "bed", Confidence: 0.5, Box: detection.NewBox(55, 55, 75, 75), Mask: mask},
	}, "")

	r, g, b := rgbAt(out, 65, 65)
	if g != 255 || r > 200 || b > 200 {
		t.Errorf("masked pixel = (%d,%d,%d), want green tint", r, g, b)
	}
	if r, g, b := rgbAt(out, 58, 58); r != 255 || g != 255 || b != 255 {
		t.Errorf("unmasked pixel = (%d,%d,%d), want untouched", r, g, b)
	}
}

func TestCompose_OffsetSource(t *testing.T) {
	big := createWhiteImage(200, 200)
	src := big.SubImage(image.Rect(10, 10, 110, 110))

	out := New(config.DefaultConfig().Render).Compose(src, []detection.Instance{
		{Label: "sofa", Confidence: 0.7, Box: detection.NewBox(20, 40, 60, 90)},
	}, "")

	if out.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("overlay bounds = %v", out.Bounds())
	}
	if r, g, b := rgbAt(out, 10, 60); r != 255 || g != 99 || b != 138 {
		t.Errorf("box not translated to overlay coordinates: (%d,%d,%d)", r, g, b)
	}
}

func TestCompose_DepthInset(t *testing.T) {
	dir := t.TempDir()
	vis := filepath.Join(dir, "room_depth.png")
	blue := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			blue.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	if err := imaging.Save(blue, vis); err != nil {
		t.Fatal(err)
	}

	r := New(config.DefaultConfig().Render)
	src := createWhiteImage(120, 90)

	with := r.Compose(src, nil, vis)
	if r, g, b := rgbAt(with, 95, 65); r != 0 || g != 0 || b != 255 {
		t.Errorf("inset pixel = (%d,%d,%d), want blue", r, g, b)
	}
	if r, g, b := rgbAt(with, 115, 85); r != 255 || g != 255 || b != 255 {
		t.Errorf("margin pixel = (%d,%d,%d), want white", r, g, b)
	}

	without := r.Compose(src, nil, filepath.Join(dir, "missing_depth.png"))
	if r, g, b := rgbAt(without, 95, 65); r != 255 || g != 255 || b != 255 {
		t.Error("inset drawn although the visualization file is missing")
	}
}

func TestRender_WritesOneFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "living.png")
	src := createWhiteImage(64, 48)
	if err := imaging.Save(src, srcPath); err != nil {
		t.Fatal(err)
	}
	original, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	want := OverlayPath(outDir, srcPath)
	got, err := New(config.DefaultConfig().Render).Render(src, []detection.Instance{
		{Label: "window", Confidence: 0.8, Box: detection.NewBox(5, 5, 30, 30)},
	}, "", want)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != want || !imaging.Exists(got) {
		t.Errorf("overlay path = %s, exists %v", got, imaging.Exists(got))
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir holds %d files, want 1", len(entries))
	}

	after, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(original, after) {
		t.Error("source image file was modified")
	}
}
