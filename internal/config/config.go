package config

import (
	"os"
	"strconv"

	"dvw-reader/internal/parser"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL     string
	Neo4jURI        string
	Neo4jUser       string
	Neo4jPassword   string
	WorkerCount     int
	LogLevel        string
	SetCount        int
	StrictSets      bool
	SkipUndecodable bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", "postgres://localhost:5432/dvw_reader?sslmode=disable"),
		Neo4jURI:        getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", "password"),
		WorkerCount:     getEnvInt("WORKER_COUNT", 8),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SetCount:        getEnvInt("DVW_SET_COUNT", parser.DefaultSetCount),
		StrictSets:      getEnvBool("DVW_STRICT_SETS", false),
		SkipUndecodable: getEnvBool("DVW_SKIP_UNDECODABLE", false),
	}
}

// DecoderOptions returns the scout decoder settings.
func (c *Config) DecoderOptions() parser.Options {
	return parser.Options{
		SetCount:        c.SetCount,
		StrictSets:      c.StrictSets,
		SkipUndecodable: c.SkipUndecodable,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid boolean, using default")
		return fallback
	}
	return b
}
