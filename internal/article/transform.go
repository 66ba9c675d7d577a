package article

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// SRID is the spatial reference of every stored point (WGS-84).
const SRID = 4326

// dateLayouts are tried in order when parsing publication_date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

// Transform validates a raw record and converts it into a storage tuple.
//
// All required keys are checked for presence first, in RequiredFields order;
// the first missing key is reported. Values are then type-checked. No range
// checks are applied to coordinates or relevance_score.
func Transform(rec Record) (Tuple, error) {
	id := rec.ID()
	for _, f := range RequiredFields {
		if _, ok := rec[f]; !ok {
			return Tuple{}, missing(id, f)
		}
	}

	if s, ok := rec[FieldID].(string); !ok || s == "" {
		return Tuple{}, invalid(id, FieldID, "must be a non-empty string")
	}

	var (
		t   = Tuple{ID: id}
		err error
	)
	if t.Title, err = text(rec, id, FieldTitle); err != nil {
		return Tuple{}, err
	}
	if t.Description, err = text(rec, id, FieldDescription); err != nil {
		return Tuple{}, err
	}
	if t.URL, err = text(rec, id, FieldURL); err != nil {
		return Tuple{}, err
	}
	if t.SourceName, err = text(rec, id, FieldSourceName); err != nil {
		return Tuple{}, err
	}
	if t.PublicationDate, err = timestamp(rec, id); err != nil {
		return Tuple{}, err
	}
	if t.Category, err = categories(rec, id); err != nil {
		return Tuple{}, err
	}

	score, _, err := number(rec, id, FieldRelevanceScore)
	if err != nil {
		return Tuple{}, err
	}
	t.RelevanceScore = float32(score)

	lat, latLit, err := number(rec, id, FieldLatitude)
	if err != nil {
		return Tuple{}, err
	}
	lon, lonLit, err := number(rec, id, FieldLongitude)
	if err != nil {
		return Tuple{}, err
	}
	t.Latitude, t.Longitude = lat, lon
	t.Geom = pointEWKT(lonLit, latLit)

	return t, nil
}

// TransformAll transforms a batch, returning the surviving tuples in input
// order together with one ValidationError per dropped record.
func TransformAll(recs []Record) ([]Tuple, []*ValidationError) {
	tuples := make([]Tuple, 0, len(recs))
	var dropped []*ValidationError
	for _, rec := range recs {
		t, err := Transform(rec)
		if err != nil {
			dropped = append(dropped, err.(*ValidationError))
			continue
		}
		tuples = append(tuples, t)
	}
	return tuples, dropped
}

// PointEWKT encodes a longitude/latitude pair as an EWKT geography point.
// Longitude comes first.
func PointEWKT(lon, lat float64) string {
	return pointEWKT(formatCoord(lon), formatCoord(lat))
}

func pointEWKT(lon, lat string) string {
	return "SRID=" + strconv.Itoa(SRID) + ";POINT(" + lon + " " + lat + ")"
}

// WKT strips the SRID prefix from an EWKT string.
func WKT(ewkt string) string {
	if i := strings.IndexByte(ewkt, ';'); i >= 0 && strings.HasPrefix(ewkt, "SRID=") {
		return ewkt[i+1:]
	}
	return ewkt
}

// Preview returns a display-width bounded title for log lines.
func Preview(rec Record, width int) string {
	s, _ := rec[FieldTitle].(string)
	return runewidth.Truncate(s, width, "…")
}

func text(rec Record, id, field string) (string, error) {
	switch v := rec[field].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", invalid(id, field, "want string, got %T", v)
	}
}

func timestamp(rec Record, id string) (time.Time, error) {
	s, ok := rec[FieldPublicationDate].(string)
	if !ok {
		return time.Time{}, invalid(id, FieldPublicationDate, "want timestamp string, got %T", rec[FieldPublicationDate])
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, invalid(id, FieldPublicationDate, "unparseable timestamp %q", s)
}

func categories(rec Record, id string) ([]string, error) {
	switch v := rec[FieldCategory].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, c := range v {
			s, ok := c.(string)
			if !ok {
				return nil, invalid(id, FieldCategory, "element %d: want string, got %T", i, c)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalid(id, FieldCategory, "want list of strings, got %T", v)
	}
}

// number returns a numeric field's value and the literal used for encoding.
func number(rec Record, id, field string) (float64, string, error) {
	switch v := rec[field].(type) {
	case json.Number:
		lit := strings.TrimSpace(v.String())
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return 0, "", invalid(id, field, "not a number: %q", lit)
		}
		return f, lit, nil
	case float64:
		return v, formatCoord(v), nil
	case float32:
		return float64(v), formatCoord(float64(v)), nil
	case int:
		return float64(v), strconv.Itoa(v), nil
	case int64:
		return float64(v), strconv.FormatInt(v, 10), nil
	default:
		return 0, "", invalid(id, field, "want number, got %T", v)
	}
}

// formatCoord renders a float in shortest round-trip form and keeps a ".0"
// on integral values so 20 encodes as "20.0".
func formatCoord(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
