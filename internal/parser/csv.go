package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/medintel/internal/analysis"
)

// ErrEmptyFile is returned for uploads without a header row.
var ErrEmptyFile = errors.New("no columns to parse from file")

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvParser) Parse(name string, r io.Reader) (*analysis.Table, error) {
	br := bufio.NewReader(r)
	delim := sniffDelimiter(name, br)

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Name: name, Err: ErrEmptyFile}
		}
		return nil, &ParseError{Name: name, Err: fmt.Errorf("read header: %w", err)}
	}
	t := &analysis.Table{Name: name, Header: append([]string(nil), header...)}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Name: name, Err: fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// sniffDelimiter picks tab for .tsv files; otherwise it counts separators in
// the header line and falls back to ','.
func sniffDelimiter(name string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	best, bestN := ',', bytes.Count(peek, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(peek, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// WriteCSV writes a table back out as comma separated values.
func WriteCSV(w io.Writer, t *analysis.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
