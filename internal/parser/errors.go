package parser

import (
	"errors"
	"fmt"

	"dvw-reader/internal/textutil"
)

var (
	// ErrHeader means a section header was absent or did not match the expected marker.
	ErrHeader = errors.New("unexpected section header")
	// ErrMissingField means a data line has fewer fields than the section layout needs.
	ErrMissingField = errors.New("missing field")
	// ErrConversion means a field could not be converted to its target type.
	ErrConversion = errors.New("invalid field value")
	// ErrInvalidCode is the conversion error raised by the action code decoder.
	ErrInvalidCode = fmt.Errorf("%w: invalid action code", ErrConversion)
	// ErrTruncated means the input ended while a section still expected lines.
	ErrTruncated = errors.New("unexpected end of input")
)

// SectionError carries the section and the offending line of a decode failure.
type SectionError struct {
	Section string
	// Line is the 1-based line number, 0 when the input ended.
	Line int
	Text string
	Err  error
}

func (e *SectionError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.Section, e.Err)
	}
	return fmt.Sprintf("%s line %d: %v (%q)", e.Section, e.Line, e.Err, textutil.Truncate(e.Text, 60))
}

func (e *SectionError) Unwrap() error { return e.Err }

// sectionErr attaches the cursor position to err. Errors that already carry a
// section are returned unchanged.
func sectionErr(section string, c *Cursor, err error) error {
	var se *SectionError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, ErrTruncated) {
		return &SectionError{Section: section, Err: err}
	}
	return &SectionError{Section: section, Line: c.Line(), Text: c.Current(), Err: err}
}
