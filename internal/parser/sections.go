package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Section markers, in the order a scout file lists them.
const (
	HeaderMetadata     = "[3DATAVOLLEYSCOUT]"
	HeaderMatch        = "[3MATCH]"
	HeaderTeams        = "[3TEAMS]"
	HeaderMore         = "[3MORE]"
	HeaderComments     = "[3COMMENTS]"
	HeaderSets         = "[3SET]"
	HeaderPlayers      = "[3PLAYERS"
	HeaderHomeRoster   = "[3PLAYERS-H]"
	HeaderVisitRoster  = "[3PLAYERS-V]"
	HeaderCombinations = "[3ATTACKCOMBINATION]"
	HeaderSetterCalls  = "[3SETTERCALL]"
	HeaderWinSymbols   = "[3WINNINGSYMBOLS]"
	HeaderReserve      = "[3RESERVE]"
	HeaderScout        = "[3SCOUT]"
)

// Player row layout in a [3PLAYERS-*] section.
const (
	playerTeamCol     = 0
	playerNumberCol   = 1
	playerIDCol       = 8
	playerLastNameCol = 9
	playerNameCol     = 10
)

// maxSetScore bounds a single quarter score.
const maxSetScore = 999

// readHeader consumes one line and checks it against marker. With prefix set,
// the line only needs to start with marker.
func readHeader(c *Cursor, marker string, prefix bool) error {
	line, err := c.Next()
	if err != nil {
		return err
	}
	got := strings.TrimSpace(line)
	if got == marker || (prefix && strings.HasPrefix(got, marker)) {
		return nil
	}
	return fmt.Errorf("%w: want %s", ErrHeader, marker)
}

// keyValue returns everything after the first colon of a "key: value" line.
func keyValue(line string) (string, error) {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", fmt.Errorf("%w: no \"key: value\" separator", ErrMissingField)
	}
	return strings.TrimSpace(value), nil
}

func parseMetadata(c *Cursor) (Metadata, error) {
	var md Metadata

	if err := readHeader(c, HeaderMetadata, false); err != nil {
		return md, sectionErr(HeaderMetadata, c, err)
	}

	line, err := c.Next()
	if err != nil {
		return md, sectionErr(HeaderMetadata, c, err)
	}
	if md.FileFormat, err = keyValue(line); err != nil {
		return md, sectionErr(HeaderMetadata, c, err)
	}

	if md.Creation, err = parseReleaseData(c); err != nil {
		return md, sectionErr(HeaderMetadata, c, err)
	}
	if md.Modification, err = parseReleaseData(c); err != nil {
		return md, sectionErr(HeaderMetadata, c, err)
	}

	return md, nil
}

// parseReleaseData reads the six key: value lines of a creation or
// modification block.
func parseReleaseData(c *Cursor) (ReleaseData, error) {
	var rd ReleaseData
	targets := []*string{&rd.Datetime, &rd.IDP, &rd.Program, &rd.Version, &rd.License, &rd.ScouterName}

	for _, target := range targets {
		line, err := c.Next()
		if err != nil {
			return rd, err
		}
		if *target, err = keyValue(line); err != nil {
			return rd, err
		}
	}

	return rd, nil
}

func parseMatch(c *Cursor) (Game, error) {
	var g Game

	if err := readHeader(c, HeaderMatch, false); err != nil {
		return g, sectionErr(HeaderMatch, c, err)
	}

	line, err := c.Next()
	if err != nil {
		return g, sectionErr(HeaderMatch, c, err)
	}
	f := SplitFields(line)

	cols := []struct {
		idx    int
		target *string
	}{
		{0, &g.Date},
		{2, &g.Time},
		{3, &g.Season},
		{4, &g.GameType},
	}
	for _, col := range cols {
		if *col.target, err = f.At(col.idx); err != nil {
			return g, sectionErr(HeaderMatch, c, err)
		}
	}

	// Second match line is not decoded.
	if _, err := c.Next(); err != nil {
		return g, sectionErr(HeaderMatch, c, err)
	}

	return g, nil
}

// parseTeams reads the [3TEAMS] header followed by the home and visiting lines.
func parseTeams(c *Cursor) (home, visiting Team, err error) {
	if err = readHeader(c, HeaderTeams, false); err != nil {
		return home, visiting, sectionErr(HeaderTeams, c, err)
	}
	if home, err = parseTeamLine(c); err != nil {
		return home, visiting, sectionErr(HeaderTeams, c, err)
	}
	if visiting, err = parseTeamLine(c); err != nil {
		return home, visiting, sectionErr(HeaderTeams, c, err)
	}
	return home, visiting, nil
}

func parseTeamLine(c *Cursor) (Team, error) {
	var t Team

	line, err := c.Next()
	if err != nil {
		return t, err
	}
	f := SplitFields(line)

	if t.ID, err = f.At(0); err != nil {
		return t, err
	}
	if t.Name, err = f.At(1); err != nil {
		return t, err
	}
	if t.SetsWon, err = f.Int(2, 0, 5); err != nil {
		return t, err
	}
	if t.HeadCoach, err = f.At(3); err != nil {
		return t, err
	}
	if t.AssistantCoaches, err = f.At(4); err != nil {
		return t, err
	}

	return t, nil
}

// parseSets reads exactly count set lines after the [3SET] header.
func parseSets(c *Cursor, count int) ([]Set, error) {
	if err := readHeader(c, HeaderSets, false); err != nil {
		return nil, sectionErr(HeaderSets, c, err)
	}

	sets := make([]Set, 0, count)
	for n := 1; n <= count; n++ {
		line, err := c.Next()
		if err != nil {
			return nil, sectionErr(HeaderSets, c, err)
		}
		f := SplitFields(line)

		s := Set{Number: n}
		quarters := []*SetPoints{&s.First, &s.Second, &s.Third, &s.Fourth}
		for i, q := range quarters {
			if *q, err = parseSetPoints(f, i+1); err != nil {
				return nil, sectionErr(HeaderSets, c, err)
			}
		}
		if s.Duration, err = f.At(5); err != nil {
			return nil, sectionErr(HeaderSets, c, err)
		}

		sets = append(sets, s)
	}

	return sets, nil
}

// parseSetPoints decodes a "home-visiting" score. An empty field is 0-0.
func parseSetPoints(f Fields, idx int) (SetPoints, error) {
	var sp SetPoints

	raw, err := f.At(idx)
	if err != nil || raw == "" {
		return sp, err
	}

	home, visiting, ok := strings.Cut(raw, "-")
	if !ok {
		return sp, fmt.Errorf("%w: score %q is not home-visiting", ErrConversion, raw)
	}
	if sp.Home, err = parseBounded(strings.TrimSpace(home), 0, maxSetScore); err != nil {
		return sp, err
	}
	if sp.Visiting, err = parseBounded(strings.TrimSpace(visiting), 0, maxSetScore); err != nil {
		return sp, err
	}

	return sp, nil
}

// parsePlayers reads one roster. It stops at the next bracketed header, which
// is left unconsumed, or at end of input.
func parsePlayers(c *Cursor) ([]Player, error) {
	if err := readHeader(c, HeaderPlayers, true); err != nil {
		return nil, sectionErr(HeaderPlayers, c, err)
	}
	section := strings.TrimSpace(c.Current())

	players := []Player{}
	for !c.Done() {
		line, err := c.Next()
		if err != nil {
			return nil, sectionErr(section, c, err)
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			c.Unread()
			break
		}
		if trimmed == "" {
			continue
		}

		p, err := parsePlayerLine(SplitFields(line))
		if err != nil {
			return nil, sectionErr(section, c, err)
		}
		players = append(players, p)
	}

	return players, nil
}

func parsePlayerLine(f Fields) (Player, error) {
	var (
		p   Player
		err error
	)

	if p.TeamID, err = f.At(playerTeamCol); err != nil {
		return p, err
	}
	if p.Number, err = f.Int(playerNumberCol, 0, 99); err != nil {
		return p, err
	}
	if p.PlayerID, err = f.At(playerIDCol); err != nil {
		return p, err
	}
	if p.LastName, err = f.At(playerLastNameCol); err != nil {
		return p, err
	}
	if p.Name, err = f.At(playerNameCol); err != nil {
		return p, err
	}

	return p, nil
}

// parseActions reads scout lines until a blank line or end of input. With
// skipUndecodable set, lines whose code cannot be decoded are dropped and
// counted instead of failing the section.
func parseActions(c *Cursor, skipUndecodable bool) ([]Action, int, error) {
	if err := readHeader(c, HeaderScout, true); err != nil {
		return nil, 0, sectionErr(HeaderScout, c, err)
	}

	actions := []Action{}
	skipped := 0
	for !c.Done() {
		line, err := c.Next()
		if err != nil {
			return nil, 0, sectionErr(HeaderScout, c, err)
		}
		if strings.TrimSpace(line) == "" {
			break
		}

		code, err := SplitFields(line).At(0)
		if err != nil {
			return nil, 0, sectionErr(HeaderScout, c, err)
		}

		explanation, err := DecodeCode(code)
		if err != nil {
			if skipUndecodable {
				skipped++
				log.Debug().Int("line", c.Line()).Str("code", code).Msg("Skipping undecodable action")
				continue
			}
			return nil, 0, sectionErr(HeaderScout, c, err)
		}

		actions = append(actions, Action{
			Code:        code,
			Explanation: explanation,
		})
	}

	return actions, skipped, nil
}
