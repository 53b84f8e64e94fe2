package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/xuri/excelize/v2"
)

type xlsxParser struct {
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet string
}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (p xlsxParser) Parse(name string, r io.Reader) (*analysis.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("sheet %q not found; available: %s", sheet, strings.Join(f.GetSheetList(), ", "))}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}

	// leading blank rows are skipped; the first row with content is the header
	start := -1
	for i, row := range rows {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, &ParseError{Name: name, Err: ErrEmptyFile}
	}
	t := &analysis.Table{Name: name, Header: rows[start]}
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ParseXLSXSheet parses a named worksheet of a workbook.
func ParseXLSXSheet(name string, r io.Reader, sheet string) (*analysis.Table, error) {
	if sheet == "" {
		return nil, errors.New("sheet name is required")
	}
	return xlsxParser{Sheet: sheet}.Parse(name, r)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
