package omr

// DefaultFillThreshold is the fill ratio an option must exceed to count as
// marked.
const DefaultFillThreshold = 0.2

// ResolveFills turns one question's option fill ratios into a symbol.
//
// Options whose fill exceeds threshold are marked. Exactly one mark yields
// its letter, none yields Blank and more than one yields Ambiguous.
func ResolveFills(fills []float64, threshold float64) Symbol {
	marked := 0
	option := 0
	for i, f := range fills {
		if f > threshold {
			marked++
			option = i + 1
		}
	}

	switch marked {
	case 0:
		return Blank
	case 1:
		return Letter(option)
	default:
		return Ambiguous
	}
}

// Resolve resolves every sampled question, preserving order.
func Resolve(questions []Question, threshold float64) Answers {
	answers := make(Answers, len(questions))
	for i, q := range questions {
		answers[i] = ResolveFills(q.Fills(), threshold)
	}
	return answers
}
