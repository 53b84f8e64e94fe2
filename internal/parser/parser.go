package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/medintel/internal/analysis"
)

// Parser turns an uploaded file into a raw table.
type Parser interface {
	CanParse(filename string) bool
	Parse(name string, r io.Reader) (*analysis.Table, error)
}

// ParseError reports input that could not be read as a table.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("parse: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format (use .csv, .tsv or .xlsx)")

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ForFilename selects the registered parser for a file name.
func ForFilename(name string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(name) {
			return p, nil
		}
	}
	return nil, ErrUnsupported
}

// Parse reads r with the parser matching name.
func Parse(name string, r io.Reader) (*analysis.Table, error) {
	p, err := ForFilename(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(filepath.Base(name), r)
}

// ParseFile opens path and parses it by extension.
func ParseFile(path string) (*analysis.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
