package frame

import (
	"fmt"

	"tableplot/domain/core"
)

// Series is a single named column of typed values
type Series struct {
	Name   string    `json:"name"`
	Type   ValueType `json:"type"`
	Values []Value   `json:"values"`
}

// NewSeries builds a series and infers its type from the values
func NewSeries(name string, values []Value) *Series {
	return &Series{Name: name, Type: dominantType(values), Values: values}
}

// Len returns the number of values in the series
func (s *Series) Len() int {
	return len(s.Values)
}

// MissingCount returns how many values in the series are missing
func (s *Series) MissingCount() int {
	count := 0
	for _, v := range s.Values {
		if v.IsMissing {
			count++
		}
	}
	return count
}

// Frame is the canonical in-process tabular representation. All library
// internals are written against this type; boundary adapters normalize
// external inputs into it. Columns are order-stable and equal length.
type Frame struct {
	columns []*Series
	index   map[string]int
}

// New creates an empty frame
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// FromColumns builds a frame from ordered series. All series must have the
// same length and unique names.
func FromColumns(columns []*Series) (*Frame, error) {
	if len(columns) == 0 {
		return nil, core.ErrEmptyInput
	}

	f := New()
	length := columns[0].Len()
	for _, col := range columns {
		if col.Len() != length {
			return nil, fmt.Errorf("%w: column %q has %d values, expected %d",
				core.ErrLengthMismatch, col.Name, col.Len(), length)
		}
		if err := f.addColumn(col); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FromRecords builds a frame from row-oriented records. Column order follows
// the given header order; missing keys become missing values.
func FromRecords(headers []string, records []map[string]Value) (*Frame, error) {
	if len(headers) == 0 {
		return nil, core.ErrEmptyInput
	}

	columns := make([]*Series, len(headers))
	for i, name := range headers {
		values := make([]Value, len(records))
		for j, record := range records {
			if v, ok := record[name]; ok {
				values[j] = v
			} else {
				values[j] = NewMissingValue()
			}
		}
		columns[i] = NewSeries(name, values)
	}
	return FromColumns(columns)
}

func (f *Frame) addColumn(col *Series) error {
	if _, exists := f.index[col.Name]; exists {
		return fmt.Errorf("%w: %q", core.ErrDuplicateColumn, col.Name)
	}
	f.index[col.Name] = len(f.columns)
	f.columns = append(f.columns, col)
	return nil
}

// Columns returns the column names in order
func (f *Frame) Columns() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

// NumRows returns the number of rows in the frame
func (f *Frame) NumRows() int {
	if len(f.columns) == 0 {
		return 0
	}
	return f.columns[0].Len()
}

// NumCols returns the number of columns in the frame
func (f *Frame) NumCols() int {
	return len(f.columns)
}

// HasColumn reports whether the frame contains the named column
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named series
func (f *Frame) Column(name string) (*Series, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return f.columns[idx], nil
}

// Row returns the values of row i keyed by column name
func (f *Frame) Row(i int) (map[string]Value, error) {
	if i < 0 || i >= f.NumRows() {
		return nil, fmt.Errorf("%w: %d of %d", core.ErrRowOutOfRange, i, f.NumRows())
	}
	row := make(map[string]Value, len(f.columns))
	for _, col := range f.columns {
		row[col.Name] = col.Values[i]
	}
	return row, nil
}

// Float64s returns the named column as a float64 slice. Missing and
// non-numeric values are skipped.
func (f *Frame) Float64s(name string) ([]float64, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, col.Len())
	for _, v := range col.Values {
		if v.IsNumeric() {
			out = append(out, v.AsFloat64())
		}
	}
	return out, nil
}

// Strings returns the named column rendered as strings, missing values
// included as empty strings.
func (f *Frame) Strings(name string) ([]string, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, col.Len())
	for i, v := range col.Values {
		if v.IsMissing {
			out[i] = ""
			continue
		}
		out[i] = v.String()
	}
	return out, nil
}

// Select returns a new frame containing only the named columns, in the
// given order. The underlying series are shared, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := New()
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.addColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AppendRow appends one row of values keyed by column name. Columns absent
// from the row get a missing value.
func (f *Frame) AppendRow(row map[string]Value) error {
	if len(f.columns) == 0 {
		return core.ErrEmptyInput
	}
	for _, col := range f.columns {
		if v, ok := row[col.Name]; ok {
			col.Values = append(col.Values, v)
		} else {
			col.Values = append(col.Values, NewMissingValue())
		}
	}
	return nil
}

// Copy returns a deep copy of the frame
func (f *Frame) Copy() *Frame {
	out := New()
	for _, col := range f.columns {
		values := make([]Value, len(col.Values))
		copy(values, col.Values)
		// addColumn cannot fail here: names were unique in the source
		_ = out.addColumn(&Series{Name: col.Name, Type: col.Type, Values: values})
	}
	return out
}

// Records flattens the frame back into row-oriented untyped records, the
// shape layer specs are serialized in.
func (f *Frame) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, f.NumRows())
	for i := range records {
		record := make(map[string]interface{}, len(f.columns))
		for _, col := range f.columns {
			record[col.Name] = col.Values[i].Interface()
		}
		records[i] = record
	}
	return records
}

// dominantType picks the most common non-missing value type in a column,
// defaulting to string when the column is entirely missing.
func dominantType(values []Value) ValueType {
	counts := make(map[ValueType]int)
	for _, v := range values {
		if !v.IsMissing {
			counts[v.Type]++
		}
	}
	best := ValueTypeString
	bestCount := 0
	for _, t := range []ValueType{ValueTypeNumeric, ValueTypeString, ValueTypeBoolean, ValueTypeTimestamp} {
		if counts[t] > bestCount {
			best = t
			bestCount = counts[t]
		}
	}
	return best
}
