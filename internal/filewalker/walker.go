package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dvw-reader/internal/parser"

	"github.com/rs/zerolog/log"
)

// Walker traverses directories and binds scout files to a parser.
type Walker struct {
	parsers []parser.Parser
}

// NewWalker creates a Walker that decodes scout files with opts.
func NewWalker(opts parser.Options) *Walker {
	return &Walker{
		parsers: []parser.Parser{
			parser.NewDVWParser(opts),
		},
	}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path   string
	Ext    string
	Parser parser.Parser
}

// Walk discovers all supported files under root, sorted by path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if p := w.parserFor(ext); p != nil {
			entries = append(entries, FileEntry{
				Path:   path,
				Ext:    ext,
				Parser: p,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered scout files")
	return entries, nil
}

func (w *Walker) parserFor(ext string) parser.Parser {
	for _, p := range w.parsers {
		if p.CanParse(ext) {
			return p
		}
	}
	return nil
}

// ParseFile parses a single file using the appropriate parser.
func (w *Walker) ParseFile(entry FileEntry) (*parser.ParseResult, error) {
	return entry.Parser.Parse(entry.Path)
}
