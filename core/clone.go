package core

import (
	"reflect"
	"time"
)

// CloneValue returns a deep copy of v. Maps and slices are copied element by
// element, times are copied by value and other scalars are returned as is.
func CloneValue(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case string, bool, int, int64, float64:
		return value
	case time.Time:
		return value
	case *time.Time:
		if value == nil {
			return value
		}
		t := *value
		return &t
	case Row:
		return value.Clone()
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[key] = CloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return cloneReflect(reflect.ValueOf(v)).Interface()
	}
}

// cloneReflect handles containers of concrete types that the fast path in
// CloneValue does not know about.
func cloneReflect(value reflect.Value) reflect.Value {
	switch value.Kind() {
	case reflect.Slice:
		if value.IsNil() {
			return value
		}
		out := reflect.MakeSlice(value.Type(), value.Len(), value.Len())
		for i := 0; i < value.Len(); i++ {
			out.Index(i).Set(cloneElement(value.Index(i)))
		}
		return out
	case reflect.Map:
		if value.IsNil() {
			return value
		}
		out := reflect.MakeMapWithSize(value.Type(), value.Len())
		iter := value.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElement(iter.Value()))
		}
		return out
	case reflect.Pointer:
		if value.IsNil() {
			return value
		}
		out := reflect.New(value.Type().Elem())
		out.Elem().Set(cloneElement(value.Elem()))
		return out
	default:
		return value
	}
}

func cloneElement(value reflect.Value) reflect.Value {
	if value.Kind() == reflect.Interface {
		if value.IsNil() {
			return value
		}
		cloned := reflect.ValueOf(CloneValue(value.Interface()))
		out := reflect.New(value.Type()).Elem()
		out.Set(cloned)
		return out
	}
	return cloneReflect(value)
}

func (row Row) Clone() Row {
	if row == nil {
		return nil
	}
	out := make(Row, len(row))
	for key, value := range row {
		out[key] = CloneValue(value)
	}
	return out
}

func (column Column) Clone() Column {
	out := column
	if column.Default != nil {
		def := *column.Default
		out.Default = &def
	}
	if column.References != nil {
		ref := *column.References
		out.References = &ref
	}
	return out
}

func (table *Table) Clone() *Table {
	if table == nil {
		return nil
	}
	out := &Table{
		Name:      table.Name,
		Rows:      table.Rows,
		Engine:    table.Engine,
		Collation: table.Collation,
		Schema:    make([]Column, len(table.Schema)),
		Data:      make([]Row, len(table.Data)),
	}
	for i, column := range table.Schema {
		out.Schema[i] = column.Clone()
	}
	for i, row := range table.Data {
		out.Data[i] = row.Clone()
	}
	return out
}

func (database Database) Clone() Database {
	if database == nil {
		return nil
	}
	out := make(Database, len(database))
	for name, table := range database {
		out[name] = table.Clone()
	}
	return out
}

func (server Server) Clone() Server {
	if server == nil {
		return nil
	}
	out := make(Server, len(server))
	for name, database := range server {
		out[name] = database.Clone()
	}
	return out
}
