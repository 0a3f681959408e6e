package extract

import (
	"fmt"

	"csvextract/internal/schema"
)

// RecordSet is the columnar, in-memory form of the rows kept from one file:
// one value slice per schema column, all of equal length, in input order.
type RecordSet struct {
	schema  schema.Schema
	columns map[string][]string
	rows    int
}

// NewRecordSet returns an empty record set for s.
func NewRecordSet(s schema.Schema) *RecordSet {
	cols := make(map[string][]string, len(s.Columns))
	for _, c := range s.Columns {
		cols[c.Name] = []string{}
	}
	return &RecordSet{schema: s, columns: cols}
}

// Schema returns the layout of the record set.
func (rs *RecordSet) Schema() schema.Schema { return rs.schema }

// Len returns the number of rows.
func (rs *RecordSet) Len() int { return rs.rows }

// Column returns the values of the named column (nil when the schema has no
// such column). The returned slice must not be modified.
func (rs *RecordSet) Column(name string) []string { return rs.columns[name] }

// Columns returns a copy of the column map keyed by column name.
func (rs *RecordSet) Columns() map[string][]string {
	out := make(map[string][]string, len(rs.columns))
	for k, v := range rs.columns {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Row returns row i projected in schema column order.
func (rs *RecordSet) Row(i int) []string {
	out := make([]string, len(rs.schema.Columns))
	for j, c := range rs.schema.Columns {
		out[j] = rs.columns[c.Name][i]
	}
	return out
}

// Append adds one row. fields are matched to schema columns by position;
// extra trailing fields are ignored.
func (rs *RecordSet) Append(fields []string) error {
	if len(fields) < len(rs.schema.Columns) {
		return fmt.Errorf("extract: row has %d fields, %v needs %d", len(fields), rs.schema.Kind, len(rs.schema.Columns))
	}
	for i, c := range rs.schema.Columns {
		rs.columns[c.Name] = append(rs.columns[c.Name], fields[i])
	}
	rs.rows++
	return nil
}

// Keys returns a KeySet over the named column, e.g. INVOICE_CODE of an
// invoice record set used to filter invoice items.
func (rs *RecordSet) Keys(column string) (*KeySet, error) {
	vals, ok := rs.columns[column]
	if !ok {
		return nil, fmt.Errorf("extract: %v has no column %q", rs.schema.Kind, column)
	}
	return NewKeySet(vals), nil
}
