package convert

import (
	"reflect"
	"sort"
	"strings"

	"tableplot/domain/coercer"
	"tableplot/domain/core"
	"tableplot/domain/frame"
)

// probeFrame is the generic multi-backend probe: a best-effort structural
// conversion for tabular shapes not covered by the canonical or legacy
// paths. Map-keyed inputs get deterministic column order (sorted names);
// header- and field-ordered inputs keep their declared order. A panicking
// backend fails the probe instead of escaping the conversion boundary.
func probeFrame(v interface{}) (f *frame.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			f = nil
			err = core.NewUnsupportedInputError(v)
		}
	}()

	tc := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())

	switch data := v.(type) {
	case TableSource:
		return fromTableSource(tc, data)
	case map[string][]interface{}:
		return fromColumnValues(tc, data)
	case []map[string]interface{}:
		return fromRecordMaps(tc, data)
	case [][]string:
		return fromStringRows(tc, data)
	}

	return reflectFrame(tc, v)
}

func fromTableSource(tc *coercer.TypeCoercer, src TableSource) (*frame.Frame, error) {
	headers := src.Headers()
	if len(headers) == 0 {
		return nil, core.ErrEmptyInput
	}

	numRows := src.NumRows()
	columns := make([]*frame.Series, len(headers))
	for colIdx, name := range headers {
		values := make([]frame.Value, numRows)
		for rowIdx := 0; rowIdx < numRows; rowIdx++ {
			values[rowIdx] = tc.CoerceValue(src.At(rowIdx, colIdx))
		}
		columns[colIdx] = frame.NewSeries(name, values)
	}
	return frame.FromColumns(columns)
}

func fromColumnValues(tc *coercer.TypeCoercer, data map[string][]interface{}) (*frame.Frame, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyInput
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]*frame.Series, len(names))
	for i, name := range names {
		raw := data[name]
		values := make([]frame.Value, len(raw))
		for j, rv := range raw {
			values[j] = tc.CoerceValue(rv)
		}
		columns[i] = frame.NewSeries(name, values)
	}
	return frame.FromColumns(columns)
}

func fromRecordMaps(tc *coercer.TypeCoercer, data []map[string]interface{}) (*frame.Frame, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyInput
	}

	// Column set is the union of all record keys, sorted for determinism
	seen := make(map[string]bool)
	var headers []string
	for _, record := range data {
		for name := range record {
			if !seen[name] {
				seen[name] = true
				headers = append(headers, name)
			}
		}
	}
	sort.Strings(headers)

	records := make([]map[string]frame.Value, len(data))
	for i, record := range data {
		row := make(map[string]frame.Value, len(record))
		for name, rv := range record {
			row[name] = tc.CoerceValue(rv)
		}
		records[i] = row
	}
	return frame.FromRecords(headers, records)
}

// fromStringRows treats the first row as headers, the teacher shape of
// csv.ReadAll output.
func fromStringRows(tc *coercer.TypeCoercer, rows [][]string) (*frame.Frame, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, core.ErrEmptyInput
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	records := make([]map[string]frame.Value, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]frame.Value, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				record[headers[j]] = tc.CoerceValue(strings.TrimSpace(cell))
			}
		}
		records = append(records, record)
	}
	return frame.FromRecords(headers, records)
}

// reflectFrame covers shapes the concrete switch cannot: slices of flat
// structs, slices of string-keyed maps, and string-keyed maps of slices,
// whatever the element types.
func reflectFrame(tc *coercer.TypeCoercer, v interface{}) (*frame.Frame, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, core.NewUnsupportedInputError(v)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		return reflectColumnMap(tc, rv)
	case reflect.Slice, reflect.Array:
		return reflectRowSlice(tc, rv)
	}
	return nil, core.NewUnsupportedInputError(v)
}

func reflectColumnMap(tc *coercer.TypeCoercer, rv reflect.Value) (*frame.Frame, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, core.NewUnsupportedInputError(rv.Interface())
	}
	if rv.Len() == 0 {
		return nil, core.ErrEmptyInput
	}

	data := make(map[string][]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		col := iter.Value()
		if col.Kind() == reflect.Interface {
			col = col.Elem()
		}
		if col.Kind() != reflect.Slice && col.Kind() != reflect.Array {
			return nil, core.NewUnsupportedInputError(rv.Interface())
		}
		values := make([]interface{}, col.Len())
		for i := 0; i < col.Len(); i++ {
			values[i] = col.Index(i).Interface()
		}
		data[iter.Key().String()] = values
	}
	return fromColumnValues(tc, data)
}

func reflectRowSlice(tc *coercer.TypeCoercer, rv reflect.Value) (*frame.Frame, error) {
	elemType := rv.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	switch elemType.Kind() {
	case reflect.Struct:
		return reflectStructSlice(tc, rv, elemType)
	case reflect.Map:
		if elemType.Key().Kind() != reflect.String {
			break
		}
		records := make([]map[string]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			record := make(map[string]interface{}, elem.Len())
			iter := elem.MapRange()
			for iter.Next() {
				record[iter.Key().String()] = iter.Value().Interface()
			}
			records[i] = record
		}
		return fromRecordMaps(tc, records)
	}
	return nil, core.NewUnsupportedInputError(rv.Interface())
}

// reflectStructSlice maps exported struct fields to columns in declaration
// order. A json tag renames the column the same way it renames the
// serialized field.
func reflectStructSlice(tc *coercer.TypeCoercer, rv reflect.Value, elemType reflect.Type) (*frame.Frame, error) {
	type fieldCol struct {
		name  string
		index int
	}
	var fields []fieldCol
	for i := 0; i < elemType.NumField(); i++ {
		sf := elemType.Field(i)
		if !sf.IsExported() {
			continue
		}
		fields = append(fields, fieldCol{name: columnName(sf), index: i})
	}
	if len(fields) == 0 {
		return nil, core.ErrEmptyInput
	}

	columns := make([]*frame.Series, len(fields))
	for colIdx, fc := range fields {
		values := make([]frame.Value, rv.Len())
		for rowIdx := 0; rowIdx < rv.Len(); rowIdx++ {
			elem := rv.Index(rowIdx)
			if elem.Kind() == reflect.Ptr {
				if elem.IsNil() {
					values[rowIdx] = frame.NewMissingValue()
					continue
				}
				elem = elem.Elem()
			}
			values[rowIdx] = tc.CoerceValue(elem.Field(fc.index).Interface())
		}
		columns[colIdx] = frame.NewSeries(fc.name, values)
	}
	return frame.FromColumns(columns)
}

func columnName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("json"); tag != "" && tag != "-" {
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name
		}
	}
	return sf.Name
}
