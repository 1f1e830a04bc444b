package perspective

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
)

func TestHomography_MapsCorners(t *testing.T) {
	src := [4]PointF{{30, 20}, {170, 40}, {150, 160}, {20, 140}}
	dst := [4]PointF{{0, 0}, {199, 0}, {199, 149}, {0, 149}}

	m, err := Homography(src, dst)
	if err != nil {
		t.Fatalf("Homography: %v", err)
	}
	for i := range src {
		got, ok := m.Apply(src[i])
		if !ok {
			t.Fatalf("point %d mapped to infinity", i)
		}
		if !nearF(got, dst[i], 1e-6) {
			t.Errorf("point %d: got %+v, want %+v", i, got, dst[i])
		}
	}

	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	for i := range dst {
		got, _ := inv.Apply(dst[i])
		if !nearF(got, src[i], 1e-6) {
			t.Errorf("inverse point %d: got %+v, want %+v", i, got, src[i])
		}
	}
}

func TestHomography_Identity(t *testing.T) {
	square := [4]PointF{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	m, err := Homography(square, square)
	if err != nil {
		t.Fatalf("Homography: %v", err)
	}
	for i, v := range m {
		if d := v - Identity[i]; d > 1e-9 || d < -1e-9 {
			t.Errorf("m[%d]: got %v, want %v", i, v, Identity[i])
		}
	}
}

func TestHomography_Collinear(t *testing.T) {
	src := [4]PointF{{0, 0}, {5, 5}, {10, 10}, {15, 15}}
	dst := [4]PointF{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	if _, err := Homography(src, dst); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("collinear source: got %v, want ErrSingularTransform", err)
	}
}

func TestMatrix_InverseSingular(t *testing.T) {
	var zero Matrix
	if _, err := zero.Inverse(); !errors.Is(err, ErrSingularTransform) {
		t.Errorf("zero matrix: got %v, want ErrSingularTransform", err)
	}
}

func TestWarp_IdentityCopiesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	img.Set(3, 2, color.RGBA{0, 0, 255, 255})

	out := Warp(img, Identity, 4, 3)
	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("(1,1): got %v", got)
	}
	if got := out.NRGBAAt(3, 2); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("(3,2): got %v", got)
	}
}

func TestWarp_OutsideIsBlack(t *testing.T) {
	img := createUniform(4, 4, color.RGBA{255, 255, 255, 255})
	shift := Matrix{1, 0, 10, 0, 1, 0, 0, 0, 1}

	out := Warp(img, shift, 4, 4)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("out-of-range sample: got %v, want opaque black", got)
	}
}
