package grants

import "github.com/shopspring/decimal"

// Row is one CSV data row, keyed by header.
type Row map[string]string

// Record is one row mapped onto a program table.
//
// Values are nil, string, int or decimal.Decimal.
type Record struct {
	columns []string
	values  map[string]any
}

func newRecord(size int) Record {
	return Record{
		columns: make([]string, 0, size),
		values:  make(map[string]any, size),
	}
}

func (r *Record) set(column string, value any) {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Columns returns column names in the order they were mapped.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Value returns the value of column. ok is false if the record has no such column.
func (r Record) Value(column string) (v any, ok bool) {
	v, ok = r.values[column]
	return
}

// Text returns the text value of column, or "" for null.
func (r Record) Text(column string) string {
	s, _ := r.values[column].(string)
	return s
}

// Money returns the amount in column, or 0.
func (r Record) Money(column string) decimal.Decimal {
	d, ok := r.values[column].(decimal.Decimal)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Year returns the year in column, or nil.
func (r Record) Year(column string) *int {
	y, ok := r.values[column].(int)
	if !ok {
		return nil
	}
	return &y
}

// Args returns values of columns, in the same order, as query arguments.
func (r Record) Args(columns []string) []any {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = r.values[c]
	}
	return args
}
