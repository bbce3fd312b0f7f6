package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dvw-reader/internal/parser"

	"github.com/google/go-cmp/cmp"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func TestPlayerParams(t *testing.T) {
	players := []parser.Player{
		{TeamID: "1", Number: 5, PlayerID: "NRV-05", LastName: "Brooks", Name: "Amy"},
		{TeamID: "1", Number: 9, PlayerID: "NRV-09", LastName: "Chen", Name: "Lily"},
	}

	want := []map[string]any{
		{"id": "NRV-05", "last_name": "Brooks", "name": "Amy", "number": 5},
		{"id": "NRV-09", "last_name": "Chen", "name": "Lily", "number": 9},
	}
	if diff := cmp.Diff(want, playerParams(players)); diff != "" {
		t.Errorf("playerParams mismatch (-want +got):\n%s", diff)
	}

	// A blank id would merge unrelated players into one node.
	withBlank := append([]parser.Player{{TeamID: "1", Number: 12, LastName: "Doe", Name: "Sam"}}, players...)
	if diff := cmp.Diff(want, playerParams(withBlank)); diff != "" {
		t.Errorf("playerParams with blank id mismatch (-want +got):\n%s", diff)
	}

	if got := playerParams(nil); got == nil || len(got) != 0 {
		t.Errorf("playerParams(nil) = %#v, want empty list", got)
	}
}

func TestRosterGraph_Integration(t *testing.T) {
	_ = godotenv.Load("../../.env")
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), ""))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		t.Skipf("neo4j unreachable: %v", err)
	}

	rec, err := parser.ReadFile(filepath.Join("..", "parser", "testdata", "match.dvw"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	rec.HomeTeam.ID = "TEST-" + rec.HomeTeam.ID
	for i := range rec.HomePlayers {
		rec.HomePlayers[i].PlayerID = "TEST-" + rec.HomePlayers[i].PlayerID
	}

	rg := NewRosterGraph(driver)
	if err := rg.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	// Upserting twice must not duplicate appearances.
	for i := 0; i < 2; i++ {
		if err := rg.UpsertMatch(ctx, "test-roster-graph", rec); err != nil {
			t.Fatalf("UpsertMatch: %v", err)
		}
	}
	defer func() {
		neo4j.ExecuteQuery(context.Background(), driver, `
			MATCH (n) WHERE n:Match AND n.hash = $hash
			   OR n:Team AND n.id = $team
			   OR n:Player AND n.id STARTS WITH 'TEST-'
			DETACH DELETE n
		`, map[string]any{"hash": "test-roster-graph", "team": rec.HomeTeam.ID}, neo4j.EagerResultTransformer)
	}()

	entries, err := rg.TeamRoster(ctx, rec.HomeTeam.ID)
	if err != nil {
		t.Fatalf("TeamRoster: %v", err)
	}

	want := []RosterEntry{
		{PlayerID: "TEST-HVC-07", LastName: "Mendes", Name: "Rita", Numbers: []int{7}, Matches: 1},
		{PlayerID: "TEST-HVC-14", LastName: "Pereira", Name: "Ines", Numbers: []int{14}, Matches: 1},
		{PlayerID: "TEST-HVC-01", LastName: "Silva", Name: "Joana", Numbers: []int{1}, Matches: 1},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}
}
