package omr

// GradingResult is the score of one sheet and the answers it was computed
// from.
type GradingResult struct {
	Score   int     `json:"score"`
	Answers Answers `json:"answers"`
}

// Mismatch records differing answer and key lengths.
type Mismatch struct {
	Answers int `json:"answers"`
	Key     int `json:"key"`
}

// Grade is a GradingResult plus how it was compared.
type Grade struct {
	GradingResult

	// Compared is the number of positions checked: the shorter length.
	Compared int `json:"compared"`

	// Mismatch is set when answers and key differ in length. Grading still
	// covers the common prefix and the answers are kept in full.
	Mismatch *Mismatch `json:"mismatch,omitempty"`
}

// GradeAnswers counts positions where the answer equals the key.
//
// Only letters score: Blank and Ambiguous never match, even against a key
// that contains them.
func GradeAnswers(answers Answers, key AnswerKey) Grade {
	n := len(answers)
	if len(key) < n {
		n = len(key)
	}

	score := 0
	for i := 0; i < n; i++ {
		if answers[i].IsLetter() && answers[i] == key[i] {
			score++
		}
	}

	out := make(Answers, len(answers))
	copy(out, answers)

	g := Grade{
		GradingResult: GradingResult{Score: score, Answers: out},
		Compared:      n,
	}
	if len(answers) != len(key) {
		g.Mismatch = &Mismatch{Answers: len(answers), Key: len(key)}
	}
	return g
}
