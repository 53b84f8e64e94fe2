package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// Filename is the download name of the exported report.
const Filename = "Media_Intelligence_Report.pdf"

const (
	title          = "Media Intelligence Report"
	aiHeading      = "AI-Generated Summary and Recommendations:"
	insightHeading = "Key Insights from Charts:"
	poweredBy      = "Powered by Gemini AI"
	copyright      = "© Copyright Media Intelligence Vokasi UI @LARASDTH"
)

// ErrNoAnalysis is returned when there is no AI text to export.
var ErrNoAnalysis = errors.New("no AI analysis to export")

// Input is the report content.
type Input struct {
	AIText  string
	Bullets []string
}

// Result describes a produced document.
type Result struct {
	Replaced int // runes outside Latin-1 rendered as '?'
}

// EncodingError reports lossy text conversion. It is informational: the
// document is still produced.
type EncodingError struct {
	Replaced int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("report: %d character(s) outside Latin-1 replaced with '?'", e.Replaced)
}

// Lossy returns an *EncodingError when characters were replaced, else nil.
func (r Result) Lossy() error {
	if r.Replaced == 0 {
		return nil
	}
	return &EncodingError{Replaced: r.Replaced}
}

// latin1 maps s onto ISO-8859-1, replacing unsupported runes with '?'.
// fpdf core fonts take single-byte strings, so the result is returned as a
// string of raw Latin-1 bytes.
func latin1(s string) (string, int) {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
			n++
		}
		b.WriteByte(c)
	}
	return b.String(), n
}

// Write renders the report as PDF into w.
func Write(w io.Writer, in Input) (Result, error) {
	var res Result
	if strings.TrimSpace(in.AIText) == "" {
		return res, ErrNoAnalysis
	}
	enc := func(s string) string {
		out, n := latin1(s)
		res.Replaced += n
		return out
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, enc(title), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(0, 10, enc(aiHeading), "", "L", false)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, enc(in.AIText), "", "L", false)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(0, 10, enc(insightHeading), "", "L", false)
	pdf.SetFont("Arial", "", 10)
	for _, b := range in.Bullets {
		pdf.MultiCell(0, 5, enc("- "+b), "", "L", false)
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 10, enc(poweredBy), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, enc(copyright), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return res, fmt.Errorf("render pdf: %w", err)
	}
	return res, nil
}

// Bytes renders the report into memory.
func Bytes(in Input) ([]byte, Result, error) {
	var buf bytes.Buffer
	res, err := Write(&buf, in)
	if err != nil {
		return nil, res, err
	}
	return buf.Bytes(), res, nil
}
