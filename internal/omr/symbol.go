package omr

import (
	"strings"

	"github.com/pkg/errors"
)

// Symbol is the resolved answer for one question.
//
// A letter 'A'..'W' names the single marked option; Ambiguous and Blank are
// reserved symbols outside the option alphabet.
type Symbol rune

const (
	// Blank means no option was marked.
	Blank Symbol = '?'

	// Ambiguous means two or more options were marked.
	Ambiguous Symbol = 'X'
)

// MaxOptions is the largest option count whose letters stay clear of
// Ambiguous ('X' would be option 24).
const MaxOptions = 23

// Letter returns the symbol for a 1-based option index, or Blank when the
// index is outside 1..MaxOptions.
func Letter(option int) Symbol {
	if option < 1 || option > MaxOptions {
		return Blank
	}
	return Symbol('A' + option - 1)
}

// Option returns the 1-based option index of a letter symbol.
func (s Symbol) Option() (int, bool) {
	if s < 'A' || s >= 'A'+MaxOptions {
		return 0, false
	}
	return int(s-'A') + 1, true
}

// IsLetter reports whether s names an option rather than a reserved symbol.
func (s Symbol) IsLetter() bool {
	_, ok := s.Option()
	return ok
}

func (s Symbol) String() string {
	return string(rune(s))
}

// MarshalText encodes the symbol as a one-character string.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a one-character letter, "X" or "?".
func (s *Symbol) UnmarshalText(text []byte) error {
	str := strings.ToUpper(strings.TrimSpace(string(text)))
	if len(str) != 1 {
		return errors.Errorf("invalid answer symbol %q", string(text))
	}
	sym := Symbol(str[0])
	if sym != Blank && sym != Ambiguous && !sym.IsLetter() {
		return errors.Errorf("invalid answer symbol %q", string(text))
	}
	*s = sym
	return nil
}

// Answers is an ordered answer sequence, one symbol per question.
type Answers []Symbol

// String renders the sequence compactly, e.g. "AX?B".
func (a Answers) String() string {
	var b strings.Builder
	b.Grow(len(a))
	for _, s := range a {
		b.WriteRune(rune(s))
	}
	return b.String()
}
