package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultSetCount is the number of [3SET] lines DataVolley writes, padding
// unplayed sets with empty scores.
const DefaultSetCount = 5

// Options tune how strictly a file is decoded. The zero value decodes with
// the defaults.
type Options struct {
	// SetCount is the number of lines expected in the [3SET] section.
	SetCount int
	// StrictSets requires the number of scored sets to match the sets won by
	// both teams.
	StrictSets bool
	// SkipUndecodable drops scout lines whose code is not a play code instead
	// of failing the decode.
	SkipUndecodable bool
}

func DefaultOptions() Options {
	return Options{SetCount: DefaultSetCount}
}

// Decoder turns scout files into FileRecords. A Decoder has no mutable state
// and may be shared between goroutines.
type Decoder struct {
	opts Options
}

func NewDecoder(opts Options) *Decoder {
	if opts.SetCount <= 0 {
		opts.SetCount = DefaultSetCount
	}
	return &Decoder{opts: opts}
}

// step pairs the header a section must start with and the parser that reads it.
// With skipTo set, lines up to that marker are discarded first. With prefix set,
// the header line only needs to start with header.
type step struct {
	header string
	skipTo string
	prefix bool
	parse  func(d *Decoder, c *Cursor, rec *FileRecord) error
}

// pipeline lists the sections in the order the format mandates. [3MORE],
// [3COMMENTS] and the sections between the rosters and [3SCOUT] are skipped.
var pipeline = []step{
	{
		header: HeaderMetadata,
		parse: func(_ *Decoder, c *Cursor, rec *FileRecord) (err error) {
			rec.Metadata, err = parseMetadata(c)
			return err
		},
	},
	{
		header: HeaderMatch,
		parse: func(_ *Decoder, c *Cursor, rec *FileRecord) (err error) {
			rec.Game, err = parseMatch(c)
			return err
		},
	},
	{
		header: HeaderTeams,
		parse: func(_ *Decoder, c *Cursor, rec *FileRecord) (err error) {
			rec.HomeTeam, rec.VisitingTeam, err = parseTeams(c)
			return err
		},
	},
	{
		header: HeaderSets,
		skipTo: HeaderSets,
		parse: func(d *Decoder, c *Cursor, rec *FileRecord) (err error) {
			if rec.Sets, err = parseSets(c, d.opts.SetCount); err != nil {
				return err
			}
			if d.opts.StrictSets {
				return checkSetsWon(rec)
			}
			return nil
		},
	},
	{
		header: HeaderHomeRoster,
		parse: func(_ *Decoder, c *Cursor, rec *FileRecord) (err error) {
			rec.HomePlayers, err = parsePlayers(c)
			return err
		},
	},
	{
		header: HeaderVisitRoster,
		parse: func(_ *Decoder, c *Cursor, rec *FileRecord) (err error) {
			rec.VisitingPlayers, err = parsePlayers(c)
			return err
		},
	},
	{
		header: HeaderScout,
		skipTo: HeaderScout,
		prefix: true,
		parse: func(d *Decoder, c *Cursor, rec *FileRecord) (err error) {
			rec.Actions, rec.SkippedActions, err = parseActions(c, d.opts.SkipUndecodable)
			return err
		},
	},
}

// Decode reads r to the end and decodes it. Either a complete record or an
// error is returned, never both.
func (d *Decoder) Decode(r io.Reader) (*FileRecord, error) {
	c, err := NewCursor(r)
	if err != nil {
		return nil, err
	}

	rec := &FileRecord{}
	for _, s := range pipeline {
		if s.skipTo != "" {
			from := c.Line()
			if err := c.SkipUntil(s.skipTo); err != nil {
				return nil, sectionErr(s.skipTo, c, err)
			}
			log.Debug().Int("lines", c.Line()-from).Str("until", s.skipTo).Msg("Skipped unsupported sections")
		}
		if err := expectHeader(c, s); err != nil {
			return nil, err
		}
		if err := s.parse(d, c, rec); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// expectHeader checks the next line against the step's header without
// consuming it.
func expectHeader(c *Cursor, s step) error {
	line, err := c.Peek()
	if err != nil {
		return sectionErr(s.header, c, err)
	}
	got := strings.TrimSpace(line)
	if got == s.header || (s.prefix && strings.HasPrefix(got, s.header)) {
		return nil
	}
	return &SectionError{
		Section: s.header,
		Line:    c.Line() + 1,
		Text:    line,
		Err:     fmt.Errorf("%w: want %s", ErrHeader, s.header),
	}
}

// DecodeFile opens and decodes the scout file at path.
func (d *Decoder) DecodeFile(path string) (*FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scout file: %w", err)
	}
	defer f.Close()

	return d.Decode(f)
}

// Read decodes a scout file with the default options.
func Read(r io.Reader) (*FileRecord, error) {
	return NewDecoder(DefaultOptions()).Decode(r)
}

// ReadFile decodes the scout file at path with the default options.
func ReadFile(path string) (*FileRecord, error) {
	return NewDecoder(DefaultOptions()).DecodeFile(path)
}

func checkSetsWon(rec *FileRecord) error {
	played := 0
	for _, s := range rec.Sets {
		if s.Played() {
			played++
		}
	}
	won := rec.HomeTeam.SetsWon + rec.VisitingTeam.SetsWon
	if played != won {
		return &SectionError{
			Section: HeaderSets,
			Err:     fmt.Errorf("%w: %d sets scored but teams won %d", ErrConversion, played, won),
		}
	}
	return nil
}
