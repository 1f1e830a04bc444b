package omr

import (
	"image"
	"image/color"
	"testing"
)

// createMarkedImage returns a white image with the given rectangles painted black
func createMarkedImage(width, height int, marks ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}
	for _, m := range marks {
		for y := m.Min.Y; y < m.Max.Y; y++ {
			for x := m.Min.X; x < m.Max.X; x++ {
				img.Set(x, y, color.RGBA{30, 30, 30, 255})
			}
		}
	}
	return img
}

func TestBinarize(t *testing.T) {
	img := createMarkedImage(20, 10, image.Rect(2, 2, 6, 5))

	mask := Binarize(img, DefaultBinarizeThreshold)
	if mask.Width != 20 || mask.Height != 10 {
		t.Fatalf("size: got %dx%d, want 20x10", mask.Width, mask.Height)
	}
	for i, v := range mask.Pix {
		if v > 1 {
			t.Fatalf("pixel %d: value %d outside {0,1}", i, v)
		}
	}
	if !mask.At(3, 3) {
		t.Error("dark pixel should be foreground")
	}
	if mask.At(10, 8) {
		t.Error("paper pixel should be background")
	}
	if fg, total := mask.Count(mask.Bounds()); fg != 12 || total != 200 {
		t.Errorf("Count: got (%d, %d), want (12, 200)", fg, total)
	}
}

func TestBinarize_Threshold(t *testing.T) {
	levels := []uint8{100, 120, 140}
	want := []bool{true, true, false}

	img := image.NewGray(image.Rect(0, 0, len(levels), 1))
	for x, y := range levels {
		img.SetGray(x, 0, color.Gray{Y: y})
	}

	mask := Binarize(img, 120)
	for x, w := range want {
		if mask.At(x, 0) != w {
			t.Errorf("luminance %d: got %v, want %v", levels[x], mask.At(x, 0), w)
		}
	}
}

func TestBinarize_MaxThreshold(t *testing.T) {
	mask := Binarize(createMarkedImage(4, 4), 255)
	if mask.Fraction() != 1 {
		t.Errorf("threshold 255 should mark every pixel, got fraction %v", mask.Fraction())
	}
}

func TestBinarize_OffsetBounds(t *testing.T) {
	img := createMarkedImage(20, 20, image.Rect(10, 10, 12, 12))
	sub := img.SubImage(image.Rect(8, 8, 16, 16))

	mask := Binarize(sub, DefaultBinarizeThreshold)
	if mask.Width != 8 || mask.Height != 8 {
		t.Fatalf("size: got %dx%d, want 8x8", mask.Width, mask.Height)
	}
	if !mask.At(2, 2) || mask.At(0, 0) {
		t.Error("mask coordinates must be relative to the image origin")
	}
}

func TestMask_CountClipsAndImage(t *testing.T) {
	m := NewMask(4, 4)
	m.Set(0, 0, true)
	m.Set(3, 3, true)
	m.Set(9, 9, true) // ignored

	if fg, total := m.Count(image.Rect(-5, -5, 2, 2)); fg != 1 || total != 4 {
		t.Errorf("clipped count: got (%d, %d), want (1, 4)", fg, total)
	}
	if fg, total := m.Count(image.Rectangle{}); fg != 0 || total != 0 {
		t.Errorf("empty rect: got (%d, %d)", fg, total)
	}

	img := m.Image()
	if img.GrayAt(0, 0).Y != 255 || img.GrayAt(1, 0).Y != 0 {
		t.Error("Image should render marks white on black")
	}
	if m.At(-1, 0) {
		t.Error("out-of-range pixels are background")
	}
}
