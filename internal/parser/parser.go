package parser

import (
	"bytes"
	"fmt"
	"os"

	"dvw-reader/internal/textutil"
)

// ParseResult holds the decoded form of one file on disk.
type ParseResult struct {
	// FilePath is the path the file was read from.
	FilePath string
	// Hash is the SHA-256 of the raw file content, used to deduplicate ingests.
	Hash string
	// Record is the decoded scout file.
	Record *FileRecord
}

// Parser is the interface for file format parsers used by the walker.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Parse decodes a file.
	Parse(filePath string) (*ParseResult, error)
}

// DVWParser decodes DataVolley scout files.
type DVWParser struct {
	decoder *Decoder
}

func NewDVWParser(opts Options) *DVWParser {
	return &DVWParser{decoder: NewDecoder(opts)}
}

func (p *DVWParser) CanParse(ext string) bool {
	return ext == ".dvw"
}

func (p *DVWParser) Parse(filePath string) (*ParseResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read dvw file: %w", err)
	}

	rec, err := p.decoder.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}

	return &ParseResult{
		FilePath: filePath,
		Hash:     textutil.Hash(string(data)),
		Record:   rec,
	}, nil
}
