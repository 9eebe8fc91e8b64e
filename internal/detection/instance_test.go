package detection

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

func TestNewBox(t *testing.T) {
	b := NewBox(50, 40, 10, 20)
	if b.X1 > b.X2 || b.Y1 > b.Y2 {
		t.Errorf("corners not ordered: %+v", b)
	}
	if got := b.XYXY(); got != [4]float64{10, 20, 50, 40} {
		t.Errorf("XYXY = %v", got)
	}
	if b.Width() != 40 || b.Height() != 20 {
		t.Errorf("size = %vx%v, want 40x20", b.Width(), b.Height())
	}
}

func TestBoxRectAndClamp(t *testing.T) {
	b := NewBox(-5.5, 2.2, 120.4, 30.9)
	if got, want := b.Rect(), image.Rect(-6, 2, 121, 31); got != want {
		t.Errorf("Rect = %v, want %v", got, want)
	}
	c := b.Clamp(image.Rect(0, 0, 100, 100))
	if c.X1 != 0 || c.X2 != 100 || c.Y1 != 2.2 || c.Y2 != 30.9 {
		t.Errorf("Clamp = %+v", c)
	}
}

func TestPlaceMask(t *testing.T) {
	crop := image.NewGray(image.Rect(0, 0, 4, 3))
	crop.SetGray(0, 0, color.Gray{Y: 255})
	crop.SetGray(3, 2, color.Gray{Y: 200})
	crop.SetGray(1, 1, color.Gray{Y: 50})

	full := image.Rect(0, 0, 20, 10)
	m := PlaceMask(crop, image.Pt(10, 5), full)

	if m.Bounds() != full {
		t.Fatalf("mask bounds = %v, want %v", m.Bounds(), full)
	}
	if m.AlphaAt(10, 5).A != 255 {
		t.Error("crop origin not placed at offset")
	}
	if m.AlphaAt(13, 7).A != 255 {
		t.Error("crop corner not placed at offset")
	}
	if m.AlphaAt(11, 6).A != 0 {
		t.Error("dim pixel should be outside the mask")
	}
	if got := MaskArea(m); got != 2 {
		t.Errorf("MaskArea = %d, want 2", got)
	}
}

func TestPlaceMask_ClipsToImage(t *testing.T) {
	crop := image.NewAlpha(image.Rect(0, 0, 5, 5))
	for i := range crop.Pix {
		crop.Pix[i] = 255
	}
	m := PlaceMask(crop, image.Pt(8, 8), image.Rect(0, 0, 10, 10))
	if got := MaskArea(m); got != 4 {
		t.Errorf("MaskArea = %d, want 4", got)
	}
	if MaskArea(nil) != 0 {
		t.Error("nil mask should have zero area")
	}
}

func TestLabelFilter(t *testing.T) {
	f := NewLabelFilter([]string{"Wall", "Sliding Door", " "})
	in := []Instance{
		{Label: "wall", Confidence: 0.9},
		{Label: "WINDOW", Confidence: 0.8},
		{Label: "sliding door", Confidence: 0.7},
		{Label: "Wall", Confidence: 0.6},
	}

	got := f.Apply(in)
	if len(got) != 3 {
		t.Fatalf("kept %d, want 3", len(got))
	}
	if got[0].Label != "wall" || got[2].Label != "Wall" {
		t.Errorf("labels rewritten or reordered: %+v", got)
	}
	if f.Allows("") {
		t.Error("blank label should not be allowed")
	}
	if NewLabelFilter(nil).Allows("wall") {
		t.Error("empty allow-list should allow nothing")
	}
}

func TestCounts(t *testing.T) {
	counts := Counts([]Instance{{Label: "door"}, {Label: "bed"}, {Label: "door"}})
	if !reflect.DeepEqual(counts, map[string]int{"door": 2, "bed": 1}) {
		t.Errorf("Counts = %v", counts)
	}
	if got := SortedLabels(counts); !reflect.DeepEqual(got, []string{"bed", "door"}) {
		t.Errorf("SortedLabels = %v", got)
	}
}

func TestParsePrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		def    string
		want   []string
	}{
		{"simple", "door, window", "bed", []string{"door", "window"}},
		{"extra commas", " door,, window , ", "bed", []string{"door", "window"}},
		{"blank uses default", "   ", "bed, sofa", []string{"bed", "sofa"}},
		{"both empty", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrompt(tt.prompt, tt.def); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
