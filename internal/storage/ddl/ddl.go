// Package ddl defines the article table once, in backend-neutral terms, and
// renders CREATE TABLE statements from it for each SQL dialect.
//
// Backends supply a type mapper (logical Kind -> SQL type) and a Dialect
// (identifier quoting, IF NOT EXISTS support, primary key options).
package ddl

import (
	"fmt"
	"strings"
)

// Kind is a logical column type.
type Kind string

const (
	KindUUID        Kind = "uuid"
	KindText        Kind = "text"
	KindTimestampTZ Kind = "timestamptz"
	KindTextList    Kind = "text[]"
	KindReal        Kind = "real"
	KindDouble      Kind = "double"
	KindGeoPoint    Kind = "geography(point,4326)"
)

// Column is a logical column of the article table.
type Column struct {
	Name       string
	Kind       Kind
	PrimaryKey bool
}

// Column names of the article table.
const (
	ColID              = "id"
	ColTitle           = "title"
	ColDescription     = "description"
	ColURL             = "url"
	ColPublicationDate = "publication_date"
	ColSourceName      = "source_name"
	ColCategory        = "category"
	ColRelevanceScore  = "relevance_score"
	ColLatitude        = "latitude"
	ColLongitude       = "longitude"
	ColGeom            = "geom"
)

// ArticleColumns is the article table layout, in insert order.
var ArticleColumns = []Column{
	{Name: ColID, Kind: KindUUID, PrimaryKey: true},
	{Name: ColTitle, Kind: KindText},
	{Name: ColDescription, Kind: KindText},
	{Name: ColURL, Kind: KindText},
	{Name: ColPublicationDate, Kind: KindTimestampTZ},
	{Name: ColSourceName, Kind: KindText},
	{Name: ColCategory, Kind: KindTextList},
	{Name: ColRelevanceScore, Kind: KindReal},
	{Name: ColLatitude, Kind: KindDouble},
	{Name: ColLongitude, Kind: KindDouble},
	{Name: ColGeom, Kind: KindGeoPoint},
}

// ColumnNames returns the names of ArticleColumns in order.
func ColumnNames() []string {
	out := make([]string, len(ArticleColumns))
	for i, c := range ArticleColumns {
		out[i] = c.Name
	}
	return out
}

// ColumnDef is a rendered column.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the table name and its rendered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Article resolves ArticleColumns into a TableDef using the backend's mapper.
// Only the primary key is NOT NULL; every other column accepts NULL.
func Article(fqn string, mapType func(Kind) string) TableDef {
	cols := make([]ColumnDef, 0, len(ArticleColumns))
	for _, c := range ArticleColumns {
		cols = append(cols, ColumnDef{
			Name:       c.Name,
			SQLType:    mapType(c.Kind),
			Nullable:   !c.PrimaryKey,
			PrimaryKey: c.PrimaryKey,
		})
	}
	return TableDef{FQN: fqn, Columns: cols}
}

// Dialect captures the rendering differences between backends.
type Dialect struct {
	// Quote quotes one identifier segment.
	Quote func(string) string
	// IfNotExists renders "CREATE TABLE IF NOT EXISTS". Dialects without it
	// set Guard instead.
	IfNotExists bool
	// Guard, when set, wraps the CREATE TABLE statement; it receives the
	// unquoted FQN and the statement.
	Guard func(fqn, stmt string) string
	// PrimaryKeyOptions is appended after the PRIMARY KEY column list,
	// e.g. "WITH (IGNORE_DUP_KEY = ON)".
	PrimaryKeyOptions string
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment.
// Empty segments are ignored.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, d.Quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteAll quotes each column name.
func (d Dialect) QuoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.Quote(c)
	}
	return out
}

// BuildCreateTableSQL renders a deterministic CREATE TABLE statement.
//
// Rules:
//   - t.FQN must be non-empty; each column needs a Name and SQLType.
//   - NOT NULL is rendered for non-nullable and primary key columns.
//   - The primary key is a separate clause in column order.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	if d.Quote == nil {
		return "", fmt.Errorf("ddl: dialect has no quote function")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(d.Quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		pk := fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", "))
		if d.PrimaryKeyOptions != "" {
			pk += " " + d.PrimaryKeyOptions
		}
		cols = append(cols, pk)
	}

	head := "CREATE TABLE "
	if d.IfNotExists {
		head = "CREATE TABLE IF NOT EXISTS "
	}
	stmt := fmt.Sprintf("%s%s (\n  %s\n)", head, d.QuoteFQN(fqn), strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		return d.Guard(fqn, stmt), nil
	}
	return stmt + ";", nil
}
