package core

import "strings"

// KeyKind is the index role a column plays, using MySQL's DESCRIBE labels.
type KeyKind string

const (
	NoKey       KeyKind = ""
	PrimaryKey  KeyKind = "PRI"
	UniqueKey   KeyKind = "UNI"
	MultipleKey KeyKind = "MUL"
)

// AutoIncrement is the Extra marker of an auto-increment column.
const AutoIncrement = "AUTO_INCREMENT"

const (
	DefaultEngine    = "InnoDB"
	DefaultCollation = "utf8mb4_unicode_ci"
)

// Reference is an advisory foreign-key pointer. It is never enforced.
type Reference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type Column struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Nullable   bool       `json:"null"`
	Key        KeyKind    `json:"key"`
	Default    *string    `json:"default"`
	Extra      string     `json:"extra"`
	References *Reference `json:"references,omitempty"`
}

func (column Column) IsAutoIncrement() bool {
	return strings.EqualFold(column.Extra, AutoIncrement)
}

// Row maps column names to scalar values: string, int64, float64 or nil.
type Row map[string]any

type Table struct {
	Name      string   `json:"name"`
	Rows      int      `json:"rows"`
	Engine    string   `json:"engine"`
	Collation string   `json:"collation"`
	Schema    []Column `json:"schema"`
	Data      []Row    `json:"data"`
}

// ColumnNames returns the schema column names in declared order.
func (table *Table) ColumnNames() []string {
	names := make([]string, len(table.Schema))
	for i, column := range table.Schema {
		names[i] = column.Name
	}
	return names
}

// Column looks up a schema column by name.
func (table *Table) Column(name string) (*Column, bool) {
	for i := range table.Schema {
		if table.Schema[i].Name == name {
			return &table.Schema[i], true
		}
	}
	return nil, false
}

// Database maps table names to tables.
type Database map[string]*Table

// Server maps database names to databases.
type Server map[string]Database
