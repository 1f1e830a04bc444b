package omr

// Cell is the sampled fill of one option bubble.
type Cell struct {
	// Option is the 1-based option index.
	Option int `json:"option"`

	// Fill is the foreground fraction of the padded bubble region, in [0, 1].
	Fill float64 `json:"fill"`

	// Degenerate is set when padding left no pixels to sample; Fill is then
	// zero and the option never counts as marked.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Question holds the sampled bubbles of one question.
type Question struct {
	// Number is the 1-based position in answer order.
	Number int `json:"number"`

	Column int    `json:"column"`
	Row    int    `json:"row"`
	Cells  []Cell `json:"cells"`
}

// Fills returns the fill ratios in option order.
func (q Question) Fills() []float64 {
	fills := make([]float64, len(q.Cells))
	for i, c := range q.Cells {
		fills[i] = c.Fill
	}
	return fills
}

// Degenerate counts the cells that could not be sampled.
func (q Question) Degenerate() int {
	n := 0
	for _, c := range q.Cells {
		if c.Degenerate {
			n++
		}
	}
	return n
}

// Sample measures every bubble of layout over mask.
//
// Questions come out block by block, left to right, and top to bottom
// within a block, which is the order answer keys are written in.
func Sample(mask *Mask, layout Layout) []Question {
	bounds := mask.Bounds()
	questions := make([]Question, 0, layout.Questions())

	for c := 0; c < layout.Columns; c++ {
		for r := 0; r < layout.Rows; r++ {
			q := Question{
				Number: len(questions) + 1,
				Column: c,
				Row:    r,
				Cells:  make([]Cell, layout.Options),
			}
			for k := 1; k <= layout.Options; k++ {
				cell := Cell{Option: k}
				fg, total := mask.Count(layout.OptionRect(bounds, c, r, k))
				if total == 0 {
					cell.Degenerate = true
				} else {
					cell.Fill = float64(fg) / float64(total)
				}
				q.Cells[k-1] = cell
			}
			questions = append(questions, q)
		}
	}
	return questions
}
