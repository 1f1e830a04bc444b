package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// GraySmooth converts img to 8-bit luminance and applies a Gaussian blur.
//
// Luminance uses the ITU-R BT.601 weights applied by imaging.Grayscale.
// A sigma of zero or less skips the blur. The returned image always has its
// origin at (0, 0).
func GraySmooth(img image.Image, sigma float64) *image.Gray {
	nrgba := imaging.Grayscale(img)
	if sigma > 0 {
		nrgba = imaging.Blur(nrgba, sigma)
	}

	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+b.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// Downscale shrinks img so that its longer side is at most maxSide pixels.
//
// Returns the (possibly unchanged) image and the factor that maps coordinates
// in the returned image back to img. A maxSide of zero or less disables scaling.
func Downscale(img image.Image, maxSide int) (image.Image, float64) {
	b := img.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if maxSide <= 0 || longest <= maxSide {
		return img, 1.0
	}

	scale := float64(longest) / float64(maxSide)
	w := int(float64(b.Dx()) / scale)
	h := int(float64(b.Dy()) / scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.Box), scale
}
