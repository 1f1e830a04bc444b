package omr

import (
	"encoding/json"
	"testing"
)

func TestLetter(t *testing.T) {
	tests := []struct {
		option int
		want   Symbol
	}{
		{1, 'A'},
		{2, 'B'},
		{4, 'D'},
		{MaxOptions, 'W'},
		{0, Blank},
		{MaxOptions + 1, Blank},
	}

	for _, tt := range tests {
		if got := Letter(tt.option); got != tt.want {
			t.Errorf("Letter(%d): got %q, want %q", tt.option, got, tt.want)
		}
	}
}

func TestSymbol_Option(t *testing.T) {
	if opt, ok := Symbol('C').Option(); !ok || opt != 3 {
		t.Errorf("C: got (%d, %v), want (3, true)", opt, ok)
	}
	for _, s := range []Symbol{Blank, Ambiguous, 'a', 'Z'} {
		if s.IsLetter() {
			t.Errorf("%q must not be an option letter", s)
		}
	}
}

func TestAnswers_JSON(t *testing.T) {
	answers := Answers{'A', Ambiguous, Blank, 'B'}

	data, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `["A","X","?","B"]` {
		t.Errorf("JSON: got %s", data)
	}

	var back Answers
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.String() != "AX?B" {
		t.Errorf("round trip: got %q", back.String())
	}
}

func TestSymbol_UnmarshalTextRejects(t *testing.T) {
	for _, in := range []string{"", "AB", "1", "Y", "!"} {
		var s Symbol
		if err := s.UnmarshalText([]byte(in)); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}
