// Package article defines the raw news-article record read from input files
// and the storage tuple written to the article table, plus the transformation
// between the two.
package article

import "time"

// Record is one raw article as decoded from a JSON array element. Numbers are
// kept as json.Number so their literal text survives into the point encoding.
type Record map[string]any

// Field names of a raw record, in the order they are checked.
const (
	FieldID              = "id"
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldURL             = "url"
	FieldPublicationDate = "publication_date"
	FieldSourceName      = "source_name"
	FieldCategory        = "category"
	FieldRelevanceScore  = "relevance_score"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
)

// RequiredFields lists every key a raw record must carry.
var RequiredFields = []string{
	FieldID,
	FieldTitle,
	FieldDescription,
	FieldURL,
	FieldPublicationDate,
	FieldSourceName,
	FieldCategory,
	FieldRelevanceScore,
	FieldLatitude,
	FieldLongitude,
}

// UnknownID is reported for records that carry no usable id.
const UnknownID = "unknown"

// Tuple is a validated, storage-ready article.
type Tuple struct {
	ID              string
	Title           string
	Description     string
	URL             string
	PublicationDate time.Time
	SourceName      string
	Category        []string
	RelevanceScore  float32
	Latitude        float64
	Longitude       float64

	// Geom is the EWKT point derived from Longitude/Latitude,
	// e.g. "SRID=4326;POINT(20.0 10.0)".
	Geom string
}

// ID returns the record's id as a string, or UnknownID.
func (r Record) ID() string {
	if s, ok := r[FieldID].(string); ok && s != "" {
		return s
	}
	return UnknownID
}
