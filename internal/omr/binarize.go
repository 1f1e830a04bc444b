package omr

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// DefaultBinarizeThreshold is the luminance at or below which a pixel
// counts as a pencil mark.
const DefaultBinarizeThreshold = 120

// Binarize separates marks from paper with a fixed global threshold.
//
// A pixel is foreground when its luminance is at or below threshold. The
// threshold is not adapted to the image, so unevenly lit photographs need
// their lighting corrected beforehand.
func Binarize(img image.Image, threshold uint8) *Mask {
	b := img.Bounds()
	mask := NewMask(b.Dx(), b.Dy())
	if threshold == 0xff {
		for i := range mask.Pix {
			mask.Pix[i] = 1
		}
		return mask
	}

	// segment.Threshold whitens pixels at or above its level; inverting
	// leaves the marks white.
	marks := effect.Invert(segment.Threshold(img, threshold+1))
	mb := marks.Bounds()
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if marks.Pix[marks.PixOffset(mb.Min.X+x, mb.Min.Y+y)] >= 0x80 {
				mask.Pix[y*mask.Width+x] = 1
			}
		}
	}
	return mask
}
