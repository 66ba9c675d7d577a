package article

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func validRecord() Record {
	return Record{
		"id":               "a1",
		"title":            "T",
		"description":      "D",
		"url":              "http://x",
		"publication_date": "2024-01-01T00:00:00Z",
		"source_name":      "S",
		"category":         []any{"tech"},
		"relevance_score":  json.Number("0.5"),
		"latitude":         json.Number("10.0"),
		"longitude":        json.Number("20.0"),
	}
}

func TestTransform_ConcreteScenario(t *testing.T) {
	t.Parallel()

	got, err := Transform(validRecord())
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	want := Tuple{
		ID:              "a1",
		Title:           "T",
		Description:     "D",
		URL:             "http://x",
		PublicationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SourceName:      "S",
		Category:        []string{"tech"},
		RelevanceScore:  0.5,
		Latitude:        10,
		Longitude:       20,
		Geom:            "SRID=4326;POINT(20.0 10.0)",
	}
	if !got.PublicationDate.Equal(want.PublicationDate) {
		t.Fatalf("PublicationDate = %v, want %v", got.PublicationDate, want.PublicationDate)
	}
	got.PublicationDate = want.PublicationDate
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Transform = %#v\nwant %#v", got, want)
	}
}

func TestTransform_LongitudeBeforeLatitude(t *testing.T) {
	t.Parallel()

	cases := []struct {
		lat, lon any
		want     string
	}{
		{json.Number("37.4419"), json.Number("-122.143"), "SRID=4326;POINT(-122.143 37.4419)"},
		{json.Number("0"), json.Number("0"), "SRID=4326;POINT(0 0)"},
		{json.Number("-90.000001"), json.Number("179.999999"), "SRID=4326;POINT(179.999999 -90.000001)"},
		{10.0, 20.0, "SRID=4326;POINT(20.0 10.0)"},
		{1.25, -3.5, "SRID=4326;POINT(-3.5 1.25)"},
		// out of range values pass through untouched
		{json.Number("123.5"), json.Number("500"), "SRID=4326;POINT(500 123.5)"},
	}
	for _, tc := range cases {
		rec := validRecord()
		rec["latitude"], rec["longitude"] = tc.lat, tc.lon
		got, err := Transform(rec)
		if err != nil {
			t.Fatalf("Transform(lat=%v lon=%v) error: %v", tc.lat, tc.lon, err)
		}
		if got.Geom != tc.want {
			t.Errorf("Geom = %q, want %q", got.Geom, tc.want)
		}
	}
}

func TestTransform_MissingField(t *testing.T) {
	t.Parallel()

	for _, field := range RequiredFields {
		field := field
		t.Run(field, func(t *testing.T) {
			t.Parallel()
			rec := validRecord()
			delete(rec, field)

			_, err := Transform(rec)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Field != field {
				t.Errorf("Field = %q, want %q", verr.Field, field)
			}
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("err = %v, want ErrMissingField", err)
			}
			wantID := "a1"
			if field == FieldID {
				wantID = UnknownID
			}
			if verr.ID != wantID {
				t.Errorf("ID = %q, want %q", verr.ID, wantID)
			}
		})
	}
}

func TestTransform_InvalidField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field string
		value any
	}{
		{"null id", FieldID, nil},
		{"numeric id", FieldID, json.Number("7")},
		{"title not string", FieldTitle, json.Number("1")},
		{"bad date", FieldPublicationDate, "yesterday"},
		{"date not string", FieldPublicationDate, json.Number("1700000000")},
		{"category scalar", FieldCategory, "tech"},
		{"category element", FieldCategory, []any{"tech", json.Number("2")}},
		{"score string", FieldRelevanceScore, "high"},
		{"latitude null", FieldLatitude, nil},
		{"longitude bool", FieldLongitude, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := validRecord()
			rec[tc.field] = tc.value

			_, err := Transform(rec)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Field != tc.field || !errors.Is(err, ErrInvalidField) {
				t.Fatalf("err = %v, want invalid %q", err, tc.field)
			}
		})
	}
}

func TestTransform_NullTextAndCategory(t *testing.T) {
	t.Parallel()

	rec := validRecord()
	rec[FieldTitle] = nil
	rec[FieldDescription] = ""
	rec[FieldCategory] = nil

	got, err := Transform(rec)
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	if got.Title != "" || got.Description != "" {
		t.Errorf("text fields = %q/%q, want empty", got.Title, got.Description)
	}
	if got.Category == nil || len(got.Category) != 0 {
		t.Errorf("Category = %#v, want empty non-nil slice", got.Category)
	}
}

func TestTransform_CategoryOrderKept(t *testing.T) {
	t.Parallel()

	rec := validRecord()
	rec[FieldCategory] = []any{"world", "tech", "world"}
	got, err := Transform(rec)
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	want := []string{"world", "tech", "world"}
	if !reflect.DeepEqual(got.Category, want) {
		t.Fatalf("Category = %v, want %v", got.Category, want)
	}
}

func TestTransform_DateLayouts(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"2024-03-05T10:20:30+02:00",
		"2024-03-05T10:20:30.123456Z",
		"2024-03-05 10:20:30+02:00",
		"2024-03-05",
	} {
		rec := validRecord()
		rec[FieldPublicationDate] = s
		got, err := Transform(rec)
		if err != nil {
			t.Errorf("Transform(%q) error: %v", s, err)
			continue
		}
		if got.PublicationDate.Year() != 2024 || got.PublicationDate.Month() != time.March {
			t.Errorf("Transform(%q) date = %v", s, got.PublicationDate)
		}
	}
}

func TestTransformAll_SiblingsUnaffected(t *testing.T) {
	t.Parallel()

	good1 := validRecord()
	bad := validRecord()
	delete(bad, FieldURL)
	bad[FieldID] = "b2"
	good2 := validRecord()
	good2[FieldID] = "c3"

	tuples, dropped := TransformAll([]Record{good1, bad, good2})
	if len(tuples) != 2 || tuples[0].ID != "a1" || tuples[1].ID != "c3" {
		t.Fatalf("tuples = %+v, want a1 and c3", tuples)
	}
	if len(dropped) != 1 || dropped[0].ID != "b2" || dropped[0].Field != FieldURL {
		t.Fatalf("dropped = %+v, want b2/url", dropped)
	}
}

func TestPointEWKTAndWKT(t *testing.T) {
	t.Parallel()

	got := PointEWKT(20, 10)
	if got != "SRID=4326;POINT(20.0 10.0)" {
		t.Fatalf("PointEWKT = %q", got)
	}
	if w := WKT(got); w != "POINT(20.0 10.0)" {
		t.Fatalf("WKT = %q", w)
	}
	if w := WKT("POINT(1 2)"); w != "POINT(1 2)" {
		t.Fatalf("WKT passthrough = %q", w)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := missing(UnknownID, FieldID)
	if !strings.Contains(err.Error(), `"id"`) || !strings.Contains(err.Error(), UnknownID) {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	rec := Record{FieldTitle: strings.Repeat("x", 100)}
	got := Preview(rec, 10)
	if len([]rune(got)) > 10 {
		t.Fatalf("Preview too wide: %q", got)
	}
	if Preview(Record{}, 10) != "" {
		t.Fatalf("Preview of missing title should be empty")
	}
}
