package omr

import (
	"image"
	"testing"

	"github.com/pkg/errors"
)

func TestLayout_Validate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"default", DefaultLayout(), false},
		{"single question", Layout{Rows: 1, Columns: 1, Options: 1}, false},
		{"max options", Layout{Rows: 5, Columns: 1, Options: MaxOptions}, false},
		{"too many options", Layout{Rows: 5, Columns: 1, Options: MaxOptions + 1}, true},
		{"zero rows", Layout{Rows: 0, Columns: 3, Options: 4}, true},
		{"zero columns", Layout{Rows: 10, Columns: 0, Options: 4}, true},
		{"negative padding", Layout{Rows: 10, Columns: 3, Options: 4, Padding: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("got %v, want ErrInvalidLayout", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// coverage counts how many rectangles cover each pixel of bounds
func coverage(bounds image.Rectangle, rects []image.Rectangle) []int {
	counts := make([]int, bounds.Dx()*bounds.Dy())
	for _, r := range rects {
		r = r.Intersect(bounds)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				counts[(y-bounds.Min.Y)*bounds.Dx()+(x-bounds.Min.X)]++
			}
		}
	}
	return counts
}

func TestLayout_CellsPartitionMask(t *testing.T) {
	layouts := []Layout{
		DefaultLayout(),
		{Rows: 7, Columns: 2, Options: 5},
		{Rows: 1, Columns: 1, Options: 1},
		{Rows: 13, Columns: 4, Options: 3},
	}
	sizes := []image.Rectangle{
		image.Rect(0, 0, 300, 200),
		image.Rect(0, 0, 317, 211),
		image.Rect(5, 9, 128, 97),
		image.Rect(0, 0, 3, 4),
	}

	for _, l := range layouts {
		for _, b := range sizes {
			var cells []image.Rectangle
			for c := 0; c < l.Columns; c++ {
				for r := 0; r < l.Rows; r++ {
					cells = append(cells, l.CellRect(b, c, r))
				}
			}
			for i, n := range coverage(b, cells) {
				if n != 1 {
					t.Fatalf("layout %+v bounds %v: pixel %d covered %d times", l, b, i, n)
				}
			}
		}
	}
}

func TestLayout_SlotsPartitionCell(t *testing.T) {
	l := Layout{Rows: 3, Columns: 2, Options: 4}
	b := image.Rect(0, 0, 233, 61)

	for c := 0; c < l.Columns; c++ {
		for r := 0; r < l.Rows; r++ {
			cell := l.CellRect(b, c, r)
			var slots []image.Rectangle
			for k := 0; k <= l.Options; k++ {
				slots = append(slots, l.SlotRect(cell, k))
			}
			for i, n := range coverage(cell, slots) {
				if n != 1 {
					t.Fatalf("cell %v: pixel %d covered %d times", cell, i, n)
				}
			}
		}
	}
}

func TestLayout_OptionRect(t *testing.T) {
	l := DefaultLayout()
	b := image.Rect(0, 0, 300, 200)

	// Cell (1, 2) is x 100-200, y 40-60; slot 2 is x 140-160
	got := l.OptionRect(b, 1, 2, 2)
	want := image.Rect(147, 47, 153, 53)
	if got != want {
		t.Errorf("OptionRect: got %v, want %v", got, want)
	}

	// Padding wider than the slot leaves nothing to sample
	l.Padding = 15
	if r := l.OptionRect(b, 0, 0, 1); !r.Empty() {
		t.Errorf("over-padded region should be empty, got %v", r)
	}
}

func TestLayout_Locate(t *testing.T) {
	l := DefaultLayout()

	tests := []struct {
		number      int
		column, row int
		ok          bool
	}{
		{1, 0, 0, true},
		{10, 0, 9, true},
		{11, 1, 0, true},
		{30, 2, 9, true},
		{0, 0, 0, false},
		{31, 0, 0, false},
	}

	for _, tt := range tests {
		c, r, ok := l.Locate(tt.number)
		if ok != tt.ok || c != tt.column || r != tt.row {
			t.Errorf("Locate(%d): got (%d, %d, %v), want (%d, %d, %v)",
				tt.number, c, r, ok, tt.column, tt.row, tt.ok)
		}
	}
}
