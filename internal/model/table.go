package model

// Column is one entry of a ColumnSchema: a canonical column name plus the
// resolved unit annotation ("" when the source declared none).
type Column struct {
	Name string
	Unit string
}

// ColumnSchema is the ordered column layout derived from the header row.
// Names are unique within a schema; order matches the source header.
type ColumnSchema []Column

// Index returns the position of the named column, or -1.
func (s ColumnSchema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Table is the normalized output of the pipeline: an ordered sequence of rows,
// each a slice of Values parallel to Schema.
type Table struct {
	Schema ColumnSchema
	Rows   [][]Value
}

// ParseContext records what the schema-inference stages decided for one log:
// the detected delimiter, the header row index, and the units row index
// (-1 when no units row was found).
type ParseContext struct {
	Delimiter rune
	HeaderIdx int
	UnitsIdx  int
}
