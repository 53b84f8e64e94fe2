package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/KaramelBytes/medintel/internal/analysis"
)

// ErrNoRows is returned when a manual grid is submitted without rows.
var ErrNoRows = errors.New("add at least one data row before processing")

// ManualHeader is the column order of the manual entry grid.
var ManualHeader = []string{"Date", "Platform", "Sentiment", "Location", "Engagements", "Media Type", "Influencer Brand", "Post Type"}

// Cell is a grid value that accepts JSON strings, numbers or null.
type Cell string

func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cell(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*c = Cell(n.String())
	}
	return nil
}

// ManualRow is one row of the manual entry grid.
type ManualRow struct {
	Date            Cell `json:"Date"`
	Platform        Cell `json:"Platform"`
	Sentiment       Cell `json:"Sentiment"`
	Location        Cell `json:"Location"`
	Engagements     Cell `json:"Engagements"`
	MediaType       Cell `json:"Media Type"`
	InfluencerBrand Cell `json:"Influencer Brand"`
	PostType        Cell `json:"Post Type"`
}

func (r ManualRow) values() []string {
	return []string{
		string(r.Date), string(r.Platform), string(r.Sentiment), string(r.Location),
		string(r.Engagements), string(r.MediaType), string(r.InfluencerBrand), string(r.PostType),
	}
}

// SampleRow is the row the manual grid starts with.
func SampleRow() ManualRow {
	return ManualRow{
		Date:            "2023-01-01",
		Platform:        "Instagram",
		Sentiment:       "Positive",
		Location:        "Jakarta",
		Engagements:     Cell(strconv.Itoa(1500)),
		MediaType:       "Image",
		InfluencerBrand: "BrandX",
		PostType:        "Feed Post",
	}
}

// FromManualRows converts grid rows into a raw table.
func FromManualRows(rows []ManualRow) (*analysis.Table, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	t := &analysis.Table{Name: "manual", Header: append([]string(nil), ManualHeader...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.values())
	}
	return t, nil
}

// SampleTable returns the header and sample row as a table.
func SampleTable() *analysis.Table {
	t, _ := FromManualRows([]ManualRow{SampleRow()})
	t.Name = "sample.csv"
	return t
}
