package store

import (
	"context"
	"fmt"
	"sync"

	"dvw-reader/internal/parser"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS scout_files (
		hash               TEXT PRIMARY KEY,
		path               TEXT NOT NULL,
		file_format        TEXT NOT NULL,
		game_date          TEXT NOT NULL,
		game_time          TEXT NOT NULL,
		season             TEXT NOT NULL,
		game_type          TEXT NOT NULL,
		home_team_id       TEXT NOT NULL,
		home_team_name     TEXT NOT NULL,
		home_sets_won      INT  NOT NULL,
		visiting_team_id   TEXT NOT NULL,
		visiting_team_name TEXT NOT NULL,
		visiting_sets_won  INT  NOT NULL,
		skipped_actions    INT  NOT NULL DEFAULT 0,
		ingested_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS scout_sets (
		file_hash     TEXT NOT NULL REFERENCES scout_files(hash) ON DELETE CASCADE,
		number        INT  NOT NULL,
		q1_home       INT  NOT NULL,
		q1_visiting   INT  NOT NULL,
		q2_home       INT  NOT NULL,
		q2_visiting   INT  NOT NULL,
		q3_home       INT  NOT NULL,
		q3_visiting   INT  NOT NULL,
		q4_home       INT  NOT NULL,
		q4_visiting   INT  NOT NULL,
		duration      TEXT NOT NULL,
		PRIMARY KEY (file_hash, number)
	)`,
	`CREATE TABLE IF NOT EXISTS scout_players (
		file_hash TEXT NOT NULL REFERENCES scout_files(hash) ON DELETE CASCADE,
		side      TEXT NOT NULL,
		team_id   TEXT NOT NULL,
		number    INT  NOT NULL,
		player_id TEXT NOT NULL,
		last_name TEXT NOT NULL,
		name      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scout_actions (
		file_hash     TEXT NOT NULL REFERENCES scout_files(hash) ON DELETE CASCADE,
		seq           INT  NOT NULL,
		code          TEXT NOT NULL,
		team          TEXT NOT NULL,
		player_number INT  NOT NULL,
		skill         TEXT NOT NULL,
		tempo         TEXT NOT NULL,
		evaluation    TEXT NOT NULL,
		PRIMARY KEY (file_hash, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS scout_actions_player_idx ON scout_actions (file_hash, team, player_number)`,
}

var (
	setColumns    = []string{"file_hash", "number", "q1_home", "q1_visiting", "q2_home", "q2_visiting", "q3_home", "q3_visiting", "q4_home", "q4_visiting", "duration"}
	playerColumns = []string{"file_hash", "side", "team_id", "number", "player_id", "last_name", "name"}
	actionColumns = []string{"file_hash", "seq", "code", "team", "player_number", "skill", "tempo", "evaluation"}
)

// MatchStore persists decoded scout files in PostgreSQL, keyed by content hash.
type MatchStore struct {
	pool *pgxpool.Pool

	mu     sync.RWMutex
	stored map[string]struct{}
	// filter answers "definitely not stored" without a round trip.
	filter *bloom.BloomFilter
}

// NewMatchStore creates a new store backed by PostgreSQL.
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{
		pool:   pool,
		stored: make(map[string]struct{}),
		filter: bloom.NewWithEstimates(100000, 0.001),
	}
}

// EnsureSchema creates the scout tables if they do not exist.
func (s *MatchStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	log.Info().Msg("Match store schema ensured")
	return nil
}

// Preload loads the hashes of every stored file into memory.
func (s *MatchStore) Preload(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT hash FROM scout_files`)
	if err != nil {
		return fmt.Errorf("preload hashes: %w", err)
	}
	hashes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("collect hashes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hashes {
		s.remember(h)
	}

	log.Info().Int("count", len(hashes)).Msg("Preloaded stored scout files")
	return nil
}

// remember must be called with mu held for writing.
func (s *MatchStore) remember(hash string) {
	s.stored[hash] = struct{}{}
	s.filter.AddString(hash)
}

// Exists reports whether a file with the given content hash is stored.
func (s *MatchStore) Exists(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	_, known := s.stored[hash]
	maybe := s.filter.TestString(hash)
	s.mu.RUnlock()

	if known {
		return true, nil
	}
	if !maybe {
		return false, nil
	}

	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scout_files WHERE hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check scout file: %w", err)
	}
	if exists {
		s.mu.Lock()
		s.remember(hash)
		s.mu.Unlock()
	}
	return exists, nil
}

// Save stores a decoded file in one transaction. It returns false when a file
// with the same hash was already stored.
func (s *MatchStore) Save(ctx context.Context, res *parser.ParseResult) (bool, error) {
	rec := res.Record

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO scout_files (
			hash, path, file_format, game_date, game_time, season, game_type,
			home_team_id, home_team_name, home_sets_won,
			visiting_team_id, visiting_team_name, visiting_sets_won, skipped_actions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (hash) DO NOTHING`,
		res.Hash, res.FilePath, rec.Metadata.FileFormat,
		rec.Game.Date, rec.Game.Time, rec.Game.Season, rec.Game.GameType,
		rec.HomeTeam.ID, rec.HomeTeam.Name, rec.HomeTeam.SetsWon,
		rec.VisitingTeam.ID, rec.VisitingTeam.Name, rec.VisitingTeam.SetsWon,
		rec.SkippedActions,
	)
	if err != nil {
		return false, fmt.Errorf("insert scout file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.mu.Lock()
		s.remember(res.Hash)
		s.mu.Unlock()
		return false, nil
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"scout_sets", setColumns, setRows(res.Hash, rec.Sets)},
		{"scout_players", playerColumns, playerRows(res.Hash, rec)},
		{"scout_actions", actionColumns, actionRows(res.Hash, rec.Actions)},
	}
	for _, cp := range copies {
		if len(cp.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{cp.table}, cp.columns, pgx.CopyFromRows(cp.rows)); err != nil {
			return false, fmt.Errorf("copy %s: %w", cp.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit save: %w", err)
	}

	s.mu.Lock()
	s.remember(res.Hash)
	s.mu.Unlock()

	log.Debug().
		Str("file", res.FilePath).
		Int("players", len(rec.HomePlayers)+len(rec.VisitingPlayers)).
		Int("actions", len(rec.Actions)).
		Msg("Stored scout file")
	return true, nil
}

func setRows(hash string, sets []parser.Set) [][]any {
	rows := make([][]any, 0, len(sets))
	for _, st := range sets {
		rows = append(rows, []any{
			hash, st.Number,
			st.First.Home, st.First.Visiting,
			st.Second.Home, st.Second.Visiting,
			st.Third.Home, st.Third.Visiting,
			st.Fourth.Home, st.Fourth.Visiting,
			st.Duration,
		})
	}
	return rows
}

func playerRows(hash string, rec *parser.FileRecord) [][]any {
	rows := make([][]any, 0, len(rec.HomePlayers)+len(rec.VisitingPlayers))
	rosters := []struct {
		side    parser.TeamSide
		players []parser.Player
	}{
		{parser.TeamHome, rec.HomePlayers},
		{parser.TeamVisiting, rec.VisitingPlayers},
	}
	for _, r := range rosters {
		for _, p := range r.players {
			rows = append(rows, []any{hash, r.side.String(), p.TeamID, p.Number, p.PlayerID, p.LastName, p.Name})
		}
	}
	return rows
}

func actionRows(hash string, actions []parser.Action) [][]any {
	rows := make([][]any, 0, len(actions))
	for i, a := range actions {
		ce := a.Explanation
		rows = append(rows, []any{
			hash, i + 1, a.Code,
			ce.Team.String(), ce.PlayerNumber, ce.Skill.String(), ce.Tempo.String(), ce.Evaluation.String(),
		})
	}
	return rows
}
