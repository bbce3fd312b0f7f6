package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dvw-reader/internal/parser"

	"gopkg.in/yaml.v3"
)

// Formats lists the accepted values for Write.
var Formats = []string{"json", "yaml", "tsv"}

// Write encodes rec in the named format.
func Write(w io.Writer, format string, rec *parser.FileRecord) error {
	switch format {
	case "json":
		return JSON(w, rec)
	case "yaml":
		return YAML(w, rec)
	case "tsv":
		return ActionsTSV(w, rec)
	}
	return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// JSON writes the whole record as indented JSON.
func JSON(w io.Writer, rec *parser.FileRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(rec); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// YAML writes the whole record as YAML.
func YAML(w io.Writer, rec *parser.FileRecord) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(rec); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("flush YAML: %w", err)
	}
	return nil
}

// ActionsTSV writes one row per decoded action, with the player's name
// resolved from the matching roster when present.
func ActionsTSV(w io.Writer, rec *parser.FileRecord) error {
	names := rosterNames(rec)

	if _, err := fmt.Fprintln(w, "seq\tcode\tteam\tplayer_number\tplayer\tskill\ttempo\tevaluation"); err != nil {
		return fmt.Errorf("write TSV header: %w", err)
	}

	for i, a := range rec.Actions {
		ce := a.Explanation
		player := names[rosterKey{ce.Team, ce.PlayerNumber}]
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1,
			escapeTSV(a.Code),
			ce.Team,
			ce.PlayerNumber,
			escapeTSV(player),
			ce.Skill,
			ce.Tempo,
			ce.Evaluation.Symbol(),
		)
		if err != nil {
			return fmt.Errorf("write TSV row %d: %w", i+1, err)
		}
	}
	return nil
}

type rosterKey struct {
	side   parser.TeamSide
	number int
}

func rosterNames(rec *parser.FileRecord) map[rosterKey]string {
	names := make(map[rosterKey]string, len(rec.HomePlayers)+len(rec.VisitingPlayers))
	for _, p := range rec.HomePlayers {
		names[rosterKey{parser.TeamHome, p.Number}] = strings.TrimSpace(p.Name + " " + p.LastName)
	}
	for _, p := range rec.VisitingPlayers {
		names[rosterKey{parser.TeamVisiting, p.Number}] = strings.TrimSpace(p.Name + " " + p.LastName)
	}
	return names
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
