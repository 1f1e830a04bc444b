package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box is a rectangle drawn on an overlay. Outlined boxes get a 1-pixel
// border; filled boxes tint their interior.
type Box struct {
	Rect  image.Rectangle
	Color color.Color
	Fill  bool
}

// Label is a short text drawn with its top-left corner at (X, Y).
type Label struct {
	X, Y  int
	Text  string
	Color color.Color
}

// fillOpacity is the weight of a box colour when tinting a filled box.
const fillOpacity = 0.35

// Annotate draws boxes and labels over a copy of img.
//
// Filled boxes are drawn first, then outlines, then labels, so that text is
// never hidden by a tint. Shapes are clipped to the image bounds.
func Annotate(img image.Image, boxes []Box, labels []Label) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, b := range boxes {
		if b.Fill {
			tint(result, b.Rect.Intersect(bounds), b.Color)
		}
	}
	for _, b := range boxes {
		if !b.Fill {
			outline(result, b.Rect.Intersect(bounds), b.Color)
		}
	}

	face := basicfont.Face7x13
	for _, l := range labels {
		d := &font.Drawer{
			Dst:  result,
			Src:  image.NewUniform(l.Color),
			Face: face,
			Dot:  fixed.P(l.X, l.Y+face.Ascent),
		}
		d.DrawString(l.Text)
	}

	return result
}

// ParseColor parses a "#RRGGBB" or "#RGB" colour, returning fallback when
// the string is empty or malformed.
func ParseColor(hex string, fallback color.Color) color.Color {
	if hex == "" {
		return fallback
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func tint(img *image.RGBA, r image.Rectangle, c color.Color) {
	target, ok := colorful.MakeColor(c)
	if !ok {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			under, ok := colorful.MakeColor(img.RGBAAt(x, y))
			if !ok {
				continue
			}
			cr, cg, cb := under.BlendRgb(target, fillOpacity).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
