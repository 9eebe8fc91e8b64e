package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawRect outlines r on dst with the given stroke thickness. The stroke is
// drawn inward from r's edges and clipped to dst's bounds.
func DrawRect(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r = r.Canon().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	src := image.NewUniform(c)
	t := thickness
	if t > r.Dy() {
		t = r.Dy()
	}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	t = thickness
	if t > r.Dx() {
		t = r.Dx()
	}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
}

// DrawLabel writes text with its baseline at (x, y) using the 7x13 bitmap
// face, over a filled background box. Pass a nil bg to skip the box.
// Pixels falling outside dst are clipped.
func DrawLabel(dst draw.Image, x, y int, text string, fg, bg color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y),
	}

	if bg != nil {
		advance := d.MeasureString(text).Ceil()
		metrics := face.Metrics()
		box := image.Rect(x-1, y-metrics.Ascent.Ceil()-1, x+advance+1, y+metrics.Descent.Ceil())
		draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Over)
	}

	d.DrawString(text)
}
