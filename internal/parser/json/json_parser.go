// Package json decodes article input files. Each file holds one top-level
// JSON array whose elements are article objects:
//
//	[
//	  {"id":"...","title":"...","latitude":10.0,"longitude":20.0, ...},
//	  {"id":"...", ...}
//	]
//
// Numbers are decoded as json.Number so the literal text written by the
// producer is preserved.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"newsingest/internal/article"
)

// ErrNotArray is returned when the top-level value is not a JSON array.
var ErrNotArray = errors.New("json parser: top-level value is not an array")

// DecodeArticles reads one complete array of article objects from r.
//
// Any syntax error, a non-array root, a non-object element, or trailing
// content after the array fails the whole input; no partial result is
// returned. An empty array yields an empty, non-nil slice.
func DecodeArticles(r io.Reader) ([]article.Record, error) {
	d := json.NewDecoder(r)
	// UseNumber so coordinate literals survive into the point encoding.
	d.UseNumber()

	var root any
	if err := d.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("json parser: empty input: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("json parser: decode root: %w", err)
	}

	arr, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotArray, kindOf(root))
	}

	out := make([]article.Record, 0, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("json parser: element %d in array is not an object (got %s)", i, kindOf(elem))
		}
		out = append(out, article.Record(obj))
	}

	// Anything after the array is malformed input.
	var extra any
	if err := d.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("json parser: trailing content: %w", err)
		}
		return nil, fmt.Errorf("json parser: trailing content after array")
	}

	return out, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}
