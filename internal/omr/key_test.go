package omr

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		options int
		want    string
		wantErr bool
	}{
		{"letters", []string{"A", "B", "C", "D"}, 4, "ABCD", false},
		{"lowercase", []string{"a", " d "}, 4, "AD", false},
		{"numbers", []string{"1", "2", "4"}, 4, "ABD", false},
		{"mixed", []string{"2", "c"}, 4, "BC", false},
		{"empty", nil, 4, "", false},
		{"out of range letter", []string{"E"}, 4, "", true},
		{"out of range number", []string{"5"}, 4, "", true},
		{"zero", []string{"0"}, 4, "", true},
		{"ambiguous symbol", []string{"X"}, 4, "", true},
		{"blank symbol", []string{"?"}, 4, "", true},
		{"word", []string{"AB"}, 4, "", true},
		{"too many options", []string{"A"}, 24, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey(tt.entries, tt.options)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("got %v, want ErrInvalidKey", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key.String() != tt.want {
				t.Errorf("key: got %q, want %q", key.String(), tt.want)
			}
		})
	}
}

func TestParseKeyString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ABCB", "ABCB"},
		{"a,b, c", "ABC"},
		{"1 2 3 4", "ABCD"},
		{"1;4", "AD"},
		{"", ""},
		{"3", "C"},
	}

	for _, tt := range tests {
		key, err := ParseKeyString(tt.in, 4)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.in, err)
			continue
		}
		if key.String() != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, key.String(), tt.want)
		}
	}

	if _, err := ParseKeyString("ABX", 4); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ABX: got %v, want ErrInvalidKey", err)
	}
}
