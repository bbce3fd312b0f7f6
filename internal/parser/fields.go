package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields are the trimmed, semicolon-separated values of one data line.
type Fields []string

// SplitFields splits line on semicolons and trims every field. The number of
// fields is not checked here; short rows surface through At.
func SplitFields(line string) Fields {
	parts := strings.Split(line, ";")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return Fields(parts)
}

func (f Fields) Len() int { return len(f) }

// At returns the field at index i, or ErrMissingField when the row is too short.
func (f Fields) At(i int) (string, error) {
	if i < 0 || i >= len(f) {
		return "", fmt.Errorf("%w: index %d of %d", ErrMissingField, i, len(f))
	}
	return f[i], nil
}

// Int converts the field at index i and checks it lies within [lo, hi].
func (f Fields) Int(i, lo, hi int) (int, error) {
	s, err := f.At(i)
	if err != nil {
		return 0, err
	}
	return parseBounded(s, lo, hi)
}

func parseBounded(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrConversion, s)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %d outside %d..%d", ErrConversion, n, lo, hi)
	}
	return n, nil
}
