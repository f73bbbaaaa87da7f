package frame

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

var integerTypes = map[string]bool{
	"INT": true, "INTEGER": true, "INT2": true, "INT4": true, "INT8": true,
	"TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "BIGINT": true,
	"UNSIGNED BIG INT": true, "SMALLSERIAL": true, "SERIAL": true, "BIGSERIAL": true,
}

// TypeForDatabase maps a driver's DatabaseTypeName to a column type.
// Unknown names are carried as strings.
func TypeForDatabase(name string) arrow.DataType {
	name = strings.ToUpper(strings.TrimSpace(name))
	if base, _, ok := strings.Cut(name, "("); ok {
		name = strings.TrimSpace(base)
	}
	switch {
	case name == "":
		return String
	case integerTypes[name]:
		return Int64
	case strings.Contains(name, "FLOAT"), strings.Contains(name, "REAL"), strings.Contains(name, "DOUBLE"),
		strings.Contains(name, "NUMERIC"), strings.Contains(name, "DECIMAL"):
		return Float64
	case strings.Contains(name, "BOOL"):
		return Boolean
	case strings.Contains(name, "TIMESTAMP"), strings.Contains(name, "DATETIME"), name == "DATE":
		return Timestamp
	default:
		return String
	}
}

// FromSQLRows drains rows into a table. rows is not closed.
func FromSQLRows(rows *sql.Rows) (arrow.Table, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	cols := make([]Column, len(types))
	for i, ct := range types {
		cols[i] = Column{Name: ct.Name(), Type: TypeForDatabase(ct.DatabaseTypeName())}
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return New(Schema(cols...), data)
}
