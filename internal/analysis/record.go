package analysis

import "time"

// Field names a categorical column of a Record, using the normalized
// column name as it appears after cleaning.
type Field string

const (
	FieldPlatform        Field = "platform"
	FieldSentiment       Field = "sentiment"
	FieldLocation        Field = "location"
	FieldMediaType       Field = "media_type"
	FieldInfluencerBrand Field = "influencer_brand"
	FieldPostType        Field = "post_type"
)

// CategoricalFields lists the text columns that default to Unknown.
var CategoricalFields = []Field{
	FieldPlatform, FieldSentiment, FieldLocation,
	FieldMediaType, FieldInfluencerBrand, FieldPostType,
}

// Unknown is the fill value for missing categorical data.
const Unknown = "Unknown"

// Record is one cleaned media-intelligence observation.
type Record struct {
	Date            time.Time `json:"date"`
	Platform        string    `json:"platform"`
	Sentiment       string    `json:"sentiment"`
	Location        string    `json:"location"`
	Engagements     int64     `json:"engagements"`
	MediaType       string    `json:"media_type"`
	InfluencerBrand string    `json:"influencer_brand"`
	PostType        string    `json:"post_type"`
}

// Get returns the value of a categorical field.
func (r Record) Get(f Field) string {
	switch f {
	case FieldPlatform:
		return r.Platform
	case FieldSentiment:
		return r.Sentiment
	case FieldLocation:
		return r.Location
	case FieldMediaType:
		return r.MediaType
	case FieldInfluencerBrand:
		return r.InfluencerBrand
	case FieldPostType:
		return r.PostType
	}
	return ""
}

func (r *Record) set(f Field, v string) {
	switch f {
	case FieldPlatform:
		r.Platform = v
	case FieldSentiment:
		r.Sentiment = v
	case FieldLocation:
		r.Location = v
	case FieldMediaType:
		r.MediaType = v
	case FieldInfluencerBrand:
		r.InfluencerBrand = v
	case FieldPostType:
		r.PostType = v
	}
}

// Dataset is the cleaned, schema-normalized table used by every downstream
// stage. It is replaced wholesale on each ingestion.
type Dataset struct {
	Source   string   `json:"source,omitempty"`
	Records  []Record `json:"records"`
	Dropped  int      `json:"dropped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Len returns the number of cleaned records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset has no usable rows.
func (d *Dataset) Empty() bool { return d.Len() == 0 }

// Head returns up to n leading records.
func (d *Dataset) Head(n int) []Record {
	if d == nil {
		return nil
	}
	if n > len(d.Records) {
		n = len(d.Records)
	}
	return d.Records[:n]
}
