package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	Types       map[arrow.Type]string
	Fallback    string
}

var PostgresDialect = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Types: map[arrow.Type]string{
		arrow.INT64:     "bigint",
		arrow.INT32:     "integer",
		arrow.FLOAT64:   "double precision",
		arrow.FLOAT32:   "real",
		arrow.BOOL:      "boolean",
		arrow.STRING:    "text",
		arrow.TIMESTAMP: "timestamptz",
		arrow.DATE32:    "date",
	},
	Fallback: "text",
}

var SQLiteDialect = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Types: map[arrow.Type]string{
		arrow.INT64:     "INTEGER",
		arrow.INT32:     "INTEGER",
		arrow.FLOAT64:   "REAL",
		arrow.FLOAT32:   "REAL",
		arrow.BOOL:      "BOOLEAN",
		arrow.STRING:    "TEXT",
		arrow.TIMESTAMP: "TIMESTAMP",
		arrow.DATE32:    "DATE",
	},
	Fallback: "TEXT",
}

func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifyRelation quotes a bare relation name, adding schema when given.
// Names that are already quoted or dotted are used verbatim.
func QualifyRelation(schema, relation string) string {
	if strings.ContainsAny(relation, `."`) {
		return relation
	}
	if schema == "" {
		return QuoteIdent(relation)
	}
	return QuoteIdent(schema) + "." + QuoteIdent(relation)
}

func (d Dialect) columnType(dt arrow.DataType) string {
	if t, ok := d.Types[dt.ID()]; ok {
		return t
	}
	return d.Fallback
}

func (d Dialect) createTable(relation string, schema *arrow.Schema) string {
	cols := make([]string, len(schema.Fields()))
	for i, f := range schema.Fields() {
		cols[i] = QuoteIdent(f.Name) + " " + d.columnType(f.Type)
	}
	return fmt.Sprintf("create table %s (%s)", relation, strings.Join(cols, ", "))
}

func (d Dialect) insert(relation string, schema *arrow.Schema) string {
	cols := make([]string, len(schema.Fields()))
	params := make([]string, len(schema.Fields()))
	for i, f := range schema.Fields() {
		cols[i] = QuoteIdent(f.Name)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("insert into %s (%s) values (%s)", relation, strings.Join(cols, ", "), strings.Join(params, ", "))
}
