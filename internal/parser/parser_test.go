package parser_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/medintel/internal/analysis"
	"github.com/KaramelBytes/medintel/internal/parser"
	"github.com/xuri/excelize/v2"
)

const mediaCSV = "Date,Platform,Sentiment,Location,Engagements,Media Type,Influencer Brand,Post Type\n" +
	"2023-01-01,Instagram,Positive,Jakarta,1500,Image,BrandX,Feed Post\n" +
	"2023-01-02,TikTok,Neutral,Bandung,,Video,,Reel\n" +
	"bad-date,Twitter,Negative,Surabaya,3,Text,BrandZ,Tweet\n"

func TestParseFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "media.csv")
	if err := os.WriteFile(p, []byte(mediaCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := parser.ParseFile(p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Name != "media.csv" {
		t.Fatalf("unexpected name %q", tbl.Name)
	}
	if len(tbl.Header) != 8 || tbl.Len() != 3 {
		t.Fatalf("unexpected shape: header=%d rows=%d", len(tbl.Header), tbl.Len())
	}
	ds, err := analysis.Clean(tbl)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if ds.Len() != 2 || ds.Dropped != 1 {
		t.Fatalf("expected 2 rows and 1 dropped, got %d/%d", ds.Len(), ds.Dropped)
	}
}

func TestParseCSVSemicolonDelimiter(t *testing.T) {
	in := "Date;Platform;Engagements\n2023-01-01;Instagram;10\n"
	tbl, err := parser.Parse("export.csv", strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tbl.Header) != 3 || tbl.Rows[0][1] != "Instagram" {
		t.Fatalf("semicolon not detected: %#v", tbl)
	}
}

func TestParseCSVMalformed(t *testing.T) {
	in := "Date,Platform\n2023-01-01,\"unterminated\n"
	_, err := parser.Parse("broken.csv", strings.NewReader(in))
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Name != "broken.csv" {
		t.Fatalf("unexpected name %q", pe.Name)
	}
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := parser.Parse("empty.csv", strings.NewReader(""))
	if !errors.Is(err, parser.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestParseUnsupported(t *testing.T) {
	if _, err := parser.Parse("notes.docx", strings.NewReader("x")); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseXLSXMatchesCSV(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	lines := strings.Split(strings.TrimSpace(mediaCSV), "\n")
	for i, line := range lines {
		cells := strings.Split(line, ",")
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2) // leave row 1 blank
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	xt, err := parser.Parse("media.xlsx", &buf)
	if err != nil {
		t.Fatalf("parse xlsx: %v", err)
	}
	ct, err := parser.Parse("media.csv", strings.NewReader(mediaCSV))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	xd, err := analysis.Clean(xt)
	if err != nil {
		t.Fatalf("clean xlsx: %v", err)
	}
	cd, err := analysis.Clean(ct)
	if err != nil {
		t.Fatalf("clean csv: %v", err)
	}
	if len(xd.Records) != len(cd.Records) {
		t.Fatalf("record count differs: xlsx=%d csv=%d", len(xd.Records), len(cd.Records))
	}
	for i := range cd.Records {
		if xd.Records[i] != cd.Records[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, xd.Records[i], cd.Records[i])
		}
	}
}

func TestParseXLSXInvalid(t *testing.T) {
	_, err := parser.Parse("junk.xlsx", strings.NewReader("not a zip"))
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestManualRows(t *testing.T) {
	body := `[{"Date":"2023-02-01","Platform":"YouTube","Engagements":250,"Media Type":"Video"},
	          {"Date":"2023-02-02","Platform":null,"Engagements":"oops"}]`
	var rows []parser.ManualRow
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	tbl, err := parser.FromManualRows(rows)
	if err != nil {
		t.Fatalf("from rows: %v", err)
	}
	ds, err := analysis.Clean(tbl)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if ds.Records[0].Engagements != 250 || ds.Records[0].MediaType != "Video" {
		t.Fatalf("unexpected first record: %+v", ds.Records[0])
	}
	if ds.Records[1].Engagements != 0 || ds.Records[1].Platform != analysis.Unknown {
		t.Fatalf("unexpected second record: %+v", ds.Records[1])
	}
	if _, err := parser.FromManualRows(nil); !errors.Is(err, parser.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestSampleTable(t *testing.T) {
	var buf bytes.Buffer
	if err := parser.WriteCSV(&buf, parser.SampleTable()); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Date,Platform,Sentiment,Location,Engagements,Media Type,Influencer Brand,Post Type\n" +
		"2023-01-01,Instagram,Positive,Jakarta,1500,Image,BrandX,Feed Post\n"
	if buf.String() != want {
		t.Fatalf("unexpected sample csv:\n%s", buf.String())
	}
}
