package omr

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrInvalidKey means an answer key entry is not a valid option.
var ErrInvalidKey = errors.New("invalid answer key")

// AnswerKey is the ordered sequence of correct options, one per question.
// Entries are always letters; Blank and Ambiguous never appear.
type AnswerKey []Symbol

// String renders the key compactly, e.g. "ABCB".
func (k AnswerKey) String() string {
	return Answers(k).String()
}

// ParseKey converts key entries to an AnswerKey.
//
// Each entry is either an option letter (case-insensitive) or a 1-based
// option number, so "b" and "2" both name the second option. Entries
// outside the first options letters are rejected with ErrInvalidKey.
func ParseKey(entries []string, options int) (AnswerKey, error) {
	if options < 1 || options > MaxOptions {
		return nil, errors.Wrapf(ErrInvalidKey, "options must be between 1 and %d, got %d", MaxOptions, options)
	}

	key := make(AnswerKey, 0, len(entries))
	for i, raw := range entries {
		entry := strings.TrimSpace(raw)

		var option int
		if n, err := strconv.Atoi(entry); err == nil {
			option = n
		} else if len(entry) == 1 && unicode.IsLetter(rune(entry[0])) {
			sym := Symbol(unicode.ToUpper(rune(entry[0])))
			opt, ok := sym.Option()
			if !ok {
				return nil, errors.Wrapf(ErrInvalidKey, "entry %d: %q is not an option letter", i+1, raw)
			}
			option = opt
		} else {
			return nil, errors.Wrapf(ErrInvalidKey, "entry %d: %q is not an option letter or number", i+1, raw)
		}

		if option < 1 || option > options {
			return nil, errors.Wrapf(ErrInvalidKey, "entry %d: %q is outside options A-%s", i+1, raw, Letter(options))
		}
		key = append(key, Letter(option))
	}
	return key, nil
}

// ParseKeyString parses a key written as one string.
//
// Separated forms ("A, B, C" or "1 2 3") are split on commas and whitespace;
// an unseparated string ("ABCB") is read one letter per question.
func ParseKeyString(s string, options int) (AnswerKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnswerKey{}, nil
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 1 && len(fields[0]) > 1 && !isDigits(fields[0]) {
		fields = strings.Split(fields[0], "")
	}
	return ParseKey(fields, options)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
