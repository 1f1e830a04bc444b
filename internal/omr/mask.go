package omr

import (
	"image"
)

// Mask is a binary image: 1 where a mark is present, 0 for paper.
type Mask struct {
	Width  int
	Height int

	// Pix holds one byte per pixel in row-major order; every value is 0 or 1.
	Pix []uint8
}

// NewMask creates an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// Bounds returns the mask rectangle with origin (0, 0).
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] == 1
}

// Set marks or clears (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the foreground and total pixel counts inside r, clipped to
// the mask.
func (m *Mask) Count(r image.Rectangle) (foreground, total int) {
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[y*m.Width+r.Min.X : y*m.Width+r.Max.X]
		for _, v := range row {
			foreground += int(v)
		}
	}
	return foreground, r.Dx() * r.Dy()
}

// Fraction returns the share of foreground pixels in the whole mask.
func (m *Mask) Fraction() float64 {
	fg, total := m.Count(m.Bounds())
	if total == 0 {
		return 0
	}
	return float64(fg) / float64(total)
}

// Image renders the mask with marks white on black.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		img.Pix[i] = v * 0xff
	}
	return img
}
