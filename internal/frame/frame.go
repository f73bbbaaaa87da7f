// Package frame holds relation data in memory as Arrow tables and converts it
// to and from SQL result sets and parquet files.
package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var (
	Int64     arrow.DataType = arrow.PrimitiveTypes.Int64
	Float64   arrow.DataType = arrow.PrimitiveTypes.Float64
	Boolean   arrow.DataType = arrow.FixedWidthTypes.Boolean
	String    arrow.DataType = arrow.BinaryTypes.String
	Timestamp arrow.DataType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
)

// Column declares one nullable column of a table built with New.
type Column struct {
	Name string
	Type arrow.DataType
}

func Schema(cols ...Column) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Type, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// New builds a table from row-major values. Values are converted to the
// column type; nil is stored as null.
func New(schema *arrow.Schema, rows [][]any) (arrow.Table, error) {
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()

	for r, row := range rows {
		if len(row) != len(schema.Fields()) {
			return nil, fmt.Errorf("row %d has %d values, schema has %d columns", r, len(row), len(schema.Fields()))
		}
		for c, v := range row {
			if err := appendValue(b.Field(c), v); err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r, schema.Field(c).Name, err)
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

// Rows flattens tbl into row-major Go values (int64, float64, bool, string,
// time.Time or nil).
func Rows(tbl arrow.Table) ([][]any, error) {
	out := make([][]any, 0, tbl.NumRows())
	err := EachRow(tbl, func(row []any) error {
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EachRow calls fn for every row of tbl. The slice passed to fn is not reused.
func EachRow(tbl arrow.Table, fn func(row []any) error) error {
	tr := array.NewTableReader(tbl, -1)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		cols := int(rec.NumCols())
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make([]any, cols)
			for c := 0; c < cols; c++ {
				row[c] = Value(rec.Column(c), i)
			}
			if err := fn(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func ColumnNames(tbl arrow.Table) []string {
	fields := tbl.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
