package omr

import (
	"image"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrInvalidLayout means a Layout cannot describe a usable grid.
var ErrInvalidLayout = errors.New("invalid grid layout")

var validate = validator.New()

// Layout describes the bubble grid printed on the sheet.
//
// The mask is divided into Columns column-blocks side by side, each holding
// Rows questions stacked top to bottom. Every question cell is split into
// Options+1 equal slots: slot 0 is the printed question number and is never
// sampled, slot k holds the bubble for option k.
type Layout struct {
	Rows    int `json:"rows" validate:"min=1,max=500"`
	Columns int `json:"columns" validate:"min=1,max=50"`
	Options int `json:"options" validate:"min=1,max=23"`

	// Padding is trimmed from every side of a bubble slot before counting,
	// so printed bubble outlines and neighbouring slots are not sampled.
	Padding int `json:"padding" validate:"min=0"`
}

// DefaultLayout is the 30-question sheet: three blocks of ten questions
// with options A-D.
func DefaultLayout() Layout {
	return Layout{Rows: 10, Columns: 3, Options: 4, Padding: 7}
}

// Validate checks the layout bounds.
func (l Layout) Validate() error {
	if err := validate.Struct(l); err != nil {
		return errors.Wrap(ErrInvalidLayout, err.Error())
	}
	return nil
}

// Questions returns the number of questions one sheet holds.
func (l Layout) Questions() int {
	return l.Rows * l.Columns
}

// Locate returns the column block and row of a 1-based question number.
// ok is false when the number is not on the sheet.
func (l Layout) Locate(number int) (column, row int, ok bool) {
	if number < 1 || number > l.Questions() {
		return 0, 0, false
	}
	return (number - 1) / l.Rows, (number - 1) % l.Rows, true
}

// CellRect returns the pixel rectangle of the question at (column, row).
//
// Boundaries are placed proportionally (column c starts at c*W/Columns), so
// the cells tile bounds exactly even when W is not a multiple of Columns.
func (l Layout) CellRect(bounds image.Rectangle, column, row int) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	return image.Rectangle{
		Min: image.Point{
			X: bounds.Min.X + column*w/l.Columns,
			Y: bounds.Min.Y + row*h/l.Rows,
		},
		Max: image.Point{
			X: bounds.Min.X + (column+1)*w/l.Columns,
			Y: bounds.Min.Y + (row+1)*h/l.Rows,
		},
	}
}

// SlotRect returns slot k (0..Options) of a question cell before padding.
// Slot 0 is the label gutter.
func (l Layout) SlotRect(cell image.Rectangle, slot int) image.Rectangle {
	cw := cell.Dx()
	n := l.Options + 1
	return image.Rectangle{
		Min: image.Point{X: cell.Min.X + slot*cw/n, Y: cell.Min.Y},
		Max: image.Point{X: cell.Min.X + (slot+1)*cw/n, Y: cell.Max.Y},
	}
}

// OptionRect returns the sampled region for a 1-based option: its slot
// shrunk by Padding on every side. The result is empty when the padding
// consumes the whole slot.
func (l Layout) OptionRect(bounds image.Rectangle, column, row, option int) image.Rectangle {
	slot := l.SlotRect(l.CellRect(bounds, column, row), option)
	r := image.Rectangle{
		Min: slot.Min.Add(image.Pt(l.Padding, l.Padding)),
		Max: slot.Max.Sub(image.Pt(l.Padding, l.Padding)),
	}
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}
