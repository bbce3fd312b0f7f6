package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"dvw-reader/internal/config"
	"dvw-reader/internal/export"
	"dvw-reader/internal/filewalker"
	"dvw-reader/internal/graph"
	"dvw-reader/internal/parser"
	"dvw-reader/internal/store"
	"dvw-reader/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "dvw",
		Short:        "Decode DataVolley scout files",
		Long:         "Decodes DataVolley Scout (.dvw) match files into match metadata, rosters, set scores and play-by-play actions.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(rosterCmd())

	return rootCmd
}

func decodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode one scout file and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			return runDecode(cmd.OutOrStdout(), args[0], format, output)
		},
	}

	cmd.Flags().StringP("format", "f", "json", "Output format: "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <directory>",
		Short: "Decode every scout file in a directory and report failures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Decode scout files and store them in PostgreSQL and the roster graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skipGraph, _ := cmd.Flags().GetBool("skip-graph")
			return runIngest(args[0], skipGraph)
		},
	}

	cmd.Flags().Bool("skip-graph", false, "Do not update the Neo4j roster graph")

	return cmd
}

func rosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster <team-id>",
		Short: "List the players recorded for a team in the roster graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoster(cmd.OutOrStdout(), args[0])
		},
	}
}

// loadConfig loads the configuration and applies the log level.
func loadConfig() *config.Config {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return cfg
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func runDecode(stdout io.Writer, path, format, output string) (err error) {
	if !slices.Contains(export.Formats, format) {
		return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(export.Formats, ", "))
	}

	cfg := loadConfig()

	rec, err := parser.NewDecoder(cfg.DecoderOptions()).DecodeFile(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	w := stdout
	if output != "" {
		f, cerr := os.Create(output)
		if cerr != nil {
			return fmt.Errorf("create output file: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", cerr)
			}
		}()
		w = f
	}

	if err := export.Write(w, format, rec); err != nil {
		return err
	}

	log.Info().
		Str("file", path).
		Str("home", rec.HomeTeam.Name).
		Str("visiting", rec.VisitingTeam.Name).
		Int("actions", len(rec.Actions)).
		Int("skipped_actions", rec.SkippedActions).
		Msg("File decoded")
	return nil
}

// decodeAll walks root and decodes every scout file with the worker pool.
func decodeAll(ctx context.Context, cfg *config.Config, root string) ([]worker.Task[filewalker.FileEntry, *parser.ParseResult], error) {
	w := filewalker.NewWalker(cfg.DecoderOptions())
	entries, err := w.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk input directory: %w", err)
	}

	pool := worker.NewPool[filewalker.FileEntry, *parser.ParseResult](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) (*parser.ParseResult, error) {
			return w.ParseFile(entry)
		},
	)
	return pool.Execute(ctx, entries), nil
}

func runCheck(root string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := loadConfig()

	results, err := decodeAll(ctx, cfg, root)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Decode failed")
			continue
		}
		log.Info().
			Str("file", r.Input.Path).
			Int("actions", len(r.Result.Record.Actions)).
			Int("skipped_actions", r.Result.Record.SkippedActions).
			Msg("Decoded")
	}

	log.Info().Int("files", len(results)).Int("failed", failed).Msg("Check complete")
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", failed, len(results))
	}
	return nil
}

// dependencies holds the connections an ingest run needs. Graph is nil when
// the roster graph is skipped.
type dependencies struct {
	Postgres *pgxpool.Pool
	Graph    neo4j.DriverWithContext
}

// Close releases every open connection.
func (d *dependencies) Close(ctx context.Context) {
	if d.Graph != nil {
		if err := d.Graph.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close Neo4j driver")
		}
	}
	if d.Postgres != nil {
		d.Postgres.Close()
	}
}

// initDependencies connects to PostgreSQL and, unless skipped, Neo4j.
func initDependencies(ctx context.Context, cfg *config.Config, withGraph bool) (*dependencies, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	deps := &dependencies{Postgres: pgPool}
	if !withGraph {
		return deps, nil
	}

	if deps.Graph, err = connectNeo4j(ctx, cfg); err != nil {
		pgPool.Close()
		return nil, err
	}

	return deps, nil
}

func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")

	return driver, nil
}

func runIngest(root string, skipGraph bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := loadConfig()

	deps, err := initDependencies(ctx, cfg, !skipGraph)
	if err != nil {
		return err
	}
	defer deps.Close(ctx)

	matchStore := store.NewMatchStore(deps.Postgres)
	if err := matchStore.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := matchStore.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload stored files")
	}

	var rosterGraph *graph.RosterGraph
	if deps.Graph != nil {
		rosterGraph = graph.NewRosterGraph(deps.Graph)
		if err := rosterGraph.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}
	}

	results, err := decodeAll(ctx, cfg, root)
	if err != nil {
		return err
	}

	var stored, duplicates, failed int
	for _, r := range results {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.Err != nil {
			failed++
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Decode failed")
			continue
		}

		res := r.Result
		exists, err := matchStore.Exists(ctx, res.Hash)
		if err != nil {
			return err
		}
		if exists {
			duplicates++
			log.Debug().Str("file", res.FilePath).Msg("Already stored, skipping")
			continue
		}

		inserted, err := matchStore.Save(ctx, res)
		if err != nil {
			return fmt.Errorf("store %s: %w", res.FilePath, err)
		}
		if !inserted {
			duplicates++
			continue
		}
		stored++

		if rosterGraph != nil {
			if err := rosterGraph.UpsertMatch(ctx, res.Hash, res.Record); err != nil {
				log.Warn().Err(err).Str("file", res.FilePath).Msg("Failed to update roster graph")
			}
		}

		log.Info().
			Str("file", res.FilePath).
			Str("home", res.Record.HomeTeam.Name).
			Str("visiting", res.Record.VisitingTeam.Name).
			Int("actions", len(res.Record.Actions)).
			Msg("File ingested")
	}

	log.Info().
		Int("files", len(results)).
		Int("stored", stored).
		Int("duplicates", duplicates).
		Int("failed", failed).
		Msg("Ingestion complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", failed, len(results))
	}
	return nil
}

func runRoster(stdout io.Writer, teamID string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := loadConfig()

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	entries, err := graph.NewRosterGraph(driver).TeamRoster(ctx, teamID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Warn().Str("team", teamID).Msg("No players recorded for team")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER ID\tLAST NAME\tNAME\tNUMBERS\tMATCHES")
	for _, e := range entries {
		nums := make([]string, len(e.Numbers))
		for i, n := range e.Numbers {
			nums[i] = fmt.Sprint(n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.PlayerID, e.LastName, e.Name, strings.Join(nums, ","), e.Matches)
	}
	return tw.Flush()
}
