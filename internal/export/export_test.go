package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"dvw-reader/internal/parser"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func loadFixture(t *testing.T) *parser.FileRecord {
	t.Helper()
	rec, err := parser.ReadFile(filepath.Join("..", "parser", "testdata", "match.dvw"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return rec
}

func TestJSON(t *testing.T) {
	rec := loadFixture(t)

	var buf bytes.Buffer
	if err := Write(&buf, "json", rec); err != nil {
		t.Fatalf("Write json: %v", err)
	}

	var doc struct {
		HomeTeam struct {
			Name    string `json:"name"`
			SetsWon int    `json:"sets_won"`
		} `json:"home_team"`
		Actions []struct {
			Code        string `json:"code"`
			Explanation struct {
				Team       string `json:"team"`
				Skill      string `json:"skill"`
				Evaluation string `json:"evaluation"`
			} `json:"explanation"`
		} `json:"actions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if doc.HomeTeam.Name != "Harbor Volley Club" || doc.HomeTeam.SetsWon != 3 {
		t.Errorf("home_team = %+v", doc.HomeTeam)
	}
	if len(doc.Actions) != 6 {
		t.Fatalf("got %d actions, want 6", len(doc.Actions))
	}
	ex := doc.Actions[1].Explanation
	if ex.Team != "Visiting" || ex.Skill != "Reception" || ex.Evaluation != "Hash" {
		t.Errorf("actions[1].explanation = %+v, want enum names", ex)
	}
}

func TestYAML(t *testing.T) {
	rec := loadFixture(t)

	var buf bytes.Buffer
	if err := Write(&buf, "yaml", rec); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}

	visiting, ok := doc["visiting_team"].(map[string]any)
	if !ok {
		t.Fatalf("visiting_team missing: %v", doc)
	}
	if visiting["id"] != "NRV" || visiting["head_coach"] != "Paul Grant" {
		t.Errorf("visiting_team = %v", visiting)
	}
	if !strings.Contains(buf.String(), "tempo: Quick") {
		t.Errorf("YAML does not spell enums by name:\n%s", buf.String())
	}
}

func TestActionsTSV(t *testing.T) {
	rec := loadFixture(t)

	var buf bytes.Buffer
	if err := Write(&buf, "tsv", rec); err != nil {
		t.Fatalf("Write tsv: %v", err)
	}

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"seq\tcode\tteam\tplayer_number\tplayer\tskill\ttempo\tevaluation",
		"1\t*14SQ=\tHome\t14\tInes Pereira\tServe\tQuick\t=",
		"2\ta05RH#\tVisiting\t5\tAmy Brooks\tReception\tHigh\t#",
		"3\ta09AH!\tVisiting\t9\tLily Chen\tAttack\tHigh\t!",
		"4\t*07BT-\tHome\t7\tRita Mendes\tBlock\tTense\t-",
		"5\t*01DM+\tHome\t1\tJoana Silva\tDig\tMedium\t+",
		"6\ta05AQ/~~~~\tVisiting\t5\tAmy Brooks\tAttack\tQuick\t/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TSV mismatch (-want +got):\n%s", diff)
	}
}

func TestActionsTSV_UnknownPlayer(t *testing.T) {
	rec := &parser.FileRecord{
		Actions: []parser.Action{{
			Code:        "*22SQ=",
			Explanation: parser.CodeExplanation{Team: parser.TeamHome, PlayerNumber: 22},
		}},
	}

	var buf bytes.Buffer
	if err := ActionsTSV(&buf, rec); err != nil {
		t.Fatalf("ActionsTSV: %v", err)
	}
	if !strings.Contains(buf.String(), "1\t*22SQ=\tHome\t22\t\tServe\t") {
		t.Errorf("row for unrostered player = %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", &parser.FileRecord{})
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Errorf("Write xml error = %v, want unknown format", err)
	}
}

func TestEscapeTSV(t *testing.T) {
	if got := escapeTSV("a\tb\nc\rd"); got != `a\tb\nc\rd` {
		t.Errorf("escapeTSV = %q", got)
	}
}
