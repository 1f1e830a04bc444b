package perspective

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Warp resamples img into a width x height image.
//
// inv maps each output pixel back into img coordinates, i.e. it is the
// inverse of the forward homography. Samples are bilinearly interpolated;
// output pixels whose source lies outside img are opaque black.
func Warp(img image.Image, inv Matrix, width, height int) *image.NRGBA {
	src := imaging.Clone(img)
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := y*dst.Stride + x*4
			dst.Pix[o+3] = 0xff

			p, ok := inv.Apply(PointF{X: float64(x), Y: float64(y)})
			if !ok || p.X < 0 || p.Y < 0 || p.X > float64(sw-1) || p.Y > float64(sh-1) {
				continue
			}
			sampleBilinear(src, p.X, p.Y, dst.Pix[o:o+4])
		}
	}
	return dst
}

// sampleBilinear writes the interpolated colour at (fx, fy) into out.
// The caller guarantees the point lies inside src.
func sampleBilinear(src *image.NRGBA, fx, fy float64, out []uint8) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= w {
		x1 = w - 1
	}
	if y1 >= h {
		y1 = h - 1
	}
	ax := fx - float64(x0)
	ay := fy - float64(y0)

	p00 := src.Pix[y0*src.Stride+x0*4:]
	p10 := src.Pix[y0*src.Stride+x1*4:]
	p01 := src.Pix[y1*src.Stride+x0*4:]
	p11 := src.Pix[y1*src.Stride+x1*4:]

	for c := 0; c < 4; c++ {
		top := float64(p00[c])*(1-ax) + float64(p10[c])*ax
		bottom := float64(p01[c])*(1-ax) + float64(p11[c])*ax
		v := top*(1-ay) + bottom*ay
		out[c] = uint8(math.Round(math.Min(255, math.Max(0, v))))
	}
}
