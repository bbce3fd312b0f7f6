package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cursor is a line scanner over a fully buffered scout file. It holds at most
// one unconsumed line: the one handed back by Unread.
type Cursor struct {
	lines     []string
	pos       int
	canUnread bool
}

// NewCursor reads r to the end and splits it into lines. Input that is not
// valid UTF-8 is decoded as Windows-1252, the code page DataVolley writes.
func NewCursor(r io.Reader) (*Cursor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scout file: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data, err = charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode windows-1252: %w", err)
		}
	}

	text := string(data)
	text = strings.TrimSuffix(text, "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return &Cursor{lines: lines}, nil
}

// Next consumes and returns the next line, or ErrTruncated at end of input.
func (c *Cursor) Next() (string, error) {
	if c.pos >= len(c.lines) {
		c.canUnread = false
		return "", ErrTruncated
	}
	line := c.lines[c.pos]
	c.pos++
	c.canUnread = true
	return line, nil
}

// Unread pushes back the line returned by the last Next call. Calling it twice
// in a row has no further effect.
func (c *Cursor) Unread() {
	if !c.canUnread {
		return
	}
	c.pos--
	c.canUnread = false
}

// Peek returns the next line without consuming it.
func (c *Cursor) Peek() (string, error) {
	if c.pos >= len(c.lines) {
		return "", ErrTruncated
	}
	return c.lines[c.pos], nil
}

// SkipUntil discards lines until one starts with marker. That line is left
// unconsumed for the next parser.
func (c *Cursor) SkipUntil(marker string) error {
	for {
		line, err := c.Next()
		if err != nil {
			return err
		}
		if strings.HasPrefix(strings.TrimSpace(line), marker) {
			c.Unread()
			return nil
		}
	}
}

// Line is the 1-based number of the last consumed line.
func (c *Cursor) Line() int { return c.pos }

// Current returns the last consumed line.
func (c *Cursor) Current() string {
	if c.pos == 0 {
		return ""
	}
	return c.lines[c.pos-1]
}

// Done reports whether every line has been consumed.
func (c *Cursor) Done() bool { return c.pos >= len(c.lines) }
