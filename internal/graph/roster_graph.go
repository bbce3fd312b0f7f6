package graph

import (
	"context"
	"fmt"

	"dvw-reader/internal/parser"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// RosterEntry is a player recorded on a team's roster in at least one match.
type RosterEntry struct {
	PlayerID string
	LastName string
	Name     string
	Numbers  []int
	Matches  int
}

// RosterGraph links teams, players and matches in Neo4j.
type RosterGraph struct {
	driver neo4j.DriverWithContext
}

// NewRosterGraph creates a new roster graph.
func NewRosterGraph(driver neo4j.DriverWithContext) *RosterGraph {
	return &RosterGraph{driver: driver}
}

// EnsureSchema creates uniqueness constraints for teams, players and matches.
func (rg *RosterGraph) EnsureSchema(ctx context.Context) error {
	session := rg.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Team) REQUIRE t.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Player) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Match) REQUIRE m.hash IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// UpsertMatch merges the match, both teams and both rosters of a decoded file.
func (rg *RosterGraph) UpsertMatch(ctx context.Context, hash string, rec *parser.FileRecord) error {
	session := rg.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (m:Match {hash: $hash})
			SET m.date = $date, m.time = $time, m.season = $season, m.game_type = $game_type
		`, map[string]any{
			"hash":      hash,
			"date":      rec.Game.Date,
			"time":      rec.Game.Time,
			"season":    rec.Game.Season,
			"game_type": rec.Game.GameType,
		}); err != nil {
			return nil, fmt.Errorf("merge match: %w", err)
		}

		sides := []struct {
			side    parser.TeamSide
			team    parser.Team
			players []parser.Player
		}{
			{parser.TeamHome, rec.HomeTeam, rec.HomePlayers},
			{parser.TeamVisiting, rec.VisitingTeam, rec.VisitingPlayers},
		}
		for _, s := range sides {
			if _, err := tx.Run(ctx, `
				MATCH (m:Match {hash: $hash})
				MERGE (t:Team {id: $id})
				SET t.name = $name
				MERGE (t)-[r:PLAYED_IN]->(m)
				SET r.side = $side, r.sets_won = $sets_won, r.head_coach = $head_coach
			`, map[string]any{
				"hash":       hash,
				"id":         s.team.ID,
				"name":       s.team.Name,
				"side":       s.side.String(),
				"sets_won":   s.team.SetsWon,
				"head_coach": s.team.HeadCoach,
			}); err != nil {
				return nil, fmt.Errorf("merge team %s: %w", s.team.ID, err)
			}

			params := playerParams(s.players)
			if len(params) == 0 {
				continue
			}
			if _, err := tx.Run(ctx, `
				MATCH (m:Match {hash: $hash})
				MATCH (t:Team {id: $team_id})
				UNWIND $players AS row
				MERGE (p:Player {id: row.id})
				SET p.last_name = row.last_name, p.name = row.name
				MERGE (p)-[:PLAYS_FOR]->(t)
				MERGE (p)-[a:APPEARED_IN]->(m)
				SET a.number = row.number
			`, map[string]any{
				"hash":    hash,
				"team_id": s.team.ID,
				"players": params,
			}); err != nil {
				return nil, fmt.Errorf("merge roster %s: %w", s.team.ID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("hash", hash).
		Str("home", rec.HomeTeam.Name).
		Str("visiting", rec.VisitingTeam.Name).
		Msg("Upserted match graph")
	return nil
}

// playerParams builds the UNWIND rows for a roster. Players without a player
// id are left out, since Player nodes are keyed on it.
func playerParams(players []parser.Player) []map[string]any {
	params := make([]map[string]any, 0, len(players))
	for _, p := range players {
		if p.PlayerID == "" {
			log.Debug().Str("team_id", p.TeamID).Int("number", p.Number).Msg("Skipping player without id")
			continue
		}
		params = append(params, map[string]any{
			"id":        p.PlayerID,
			"last_name": p.LastName,
			"name":      p.Name,
			"number":    p.Number,
		})
	}
	return params
}

// TeamRoster returns every player recorded for teamID, ordered by last name.
func (rg *RosterGraph) TeamRoster(ctx context.Context, teamID string) ([]RosterEntry, error) {
	session := rg.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Player)-[:PLAYS_FOR]->(t:Team {id: $team_id})
		OPTIONAL MATCH (p)-[a:APPEARED_IN]->(m:Match)<-[:PLAYED_IN]-(t)
		RETURN p.id AS id, p.last_name AS last_name, p.name AS name,
		       collect(DISTINCT a.number) AS numbers, count(DISTINCT m) AS matches
		ORDER BY last_name, name
	`, map[string]any{"team_id": teamID})
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}

	var entries []RosterEntry
	for result.Next(ctx) {
		record := result.Record()
		entry := RosterEntry{}

		if v, ok := record.Get("id"); ok && v != nil {
			entry.PlayerID, _ = v.(string)
		}
		if v, ok := record.Get("last_name"); ok && v != nil {
			entry.LastName, _ = v.(string)
		}
		if v, ok := record.Get("name"); ok && v != nil {
			entry.Name, _ = v.(string)
		}
		if v, ok := record.Get("numbers"); ok && v != nil {
			if nums, ok := v.([]any); ok {
				for _, n := range nums {
					if i, ok := n.(int64); ok {
						entry.Numbers = append(entry.Numbers, int(i))
					}
				}
			}
		}
		if v, ok := record.Get("matches"); ok && v != nil {
			if n, ok := v.(int64); ok {
				entry.Matches = int(n)
			}
		}

		entries = append(entries, entry)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	return entries, nil
}
