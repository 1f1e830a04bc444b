package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestAnnotate_Outline(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	red := color.RGBA{255, 0, 0, 255}

	out := Annotate(img, []Box{{Rect: image.Rect(10, 10, 20, 20), Color: red}}, nil)

	if out.RGBAAt(10, 15) != red || out.RGBAAt(19, 15) != red {
		t.Error("outline should be drawn on the left and right borders")
	}
	if out.RGBAAt(15, 15) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("outline must not fill the interior")
	}
	if img.RGBAAt(10, 15) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("Annotate must not modify its input")
	}
}

func TestAnnotate_FillTints(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)

	out := Annotate(img, []Box{{Rect: image.Rect(0, 0, 10, 10), Color: color.RGBA{0, 0, 255, 255}, Fill: true}}, nil)

	c := out.RGBAAt(5, 5)
	if c.B != 255 || c.R == 255 || c.R == 0 {
		t.Errorf("filled box should blend towards blue, got %v", c)
	}
	if out.RGBAAt(15, 15) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("pixels outside the box must be untouched")
	}
}

func TestAnnotate_ClipsToBounds(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	// Must not panic for shapes partly or fully outside the image
	out := Annotate(img, []Box{
		{Rect: image.Rect(-5, -5, 5, 5), Color: color.Black},
		{Rect: image.Rect(20, 20, 30, 30), Color: color.Black, Fill: true},
	}, []Label{{X: 8, Y: 8, Text: "ABC", Color: color.Black}})

	if out.Bounds() != img.Bounds() {
		t.Errorf("bounds changed: got %v", out.Bounds())
	}
}

func TestAnnotate_Label(t *testing.T) {
	img := createInMemoryImage(40, 20, color.White)

	out := Annotate(img, nil, []Label{{X: 2, Y: 2, Text: "B", Color: color.Black}})

	dark := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if out.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("label should draw dark glyph pixels")
	}
}

func TestParseColor(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 255}

	tests := []struct {
		input string
		want  color.Color
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}},
		{"#00ff00", color.RGBA{0, 255, 0, 255}},
		{"#00F", color.RGBA{0, 0, 255, 255}},
		{"", fallback},
		{"not-a-color", fallback},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseColor(tt.input, fallback)
			if got != tt.want {
				t.Errorf("ParseColor(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
