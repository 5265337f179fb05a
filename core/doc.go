// Package core provides core types used throughout DemoDB.
//
// The package defines the in-memory server model (Server, Database, Table,
// Column, Row), the Identity that authors journal entries, the error
// taxonomy surfaced in query results, and a deep-copy helper.
//
// # Server Model
//
// A Server maps database names to databases, a Database maps table names to
// tables, and a Table carries its schema and rows:
//
//	table := &core.Table{
//	    Name:      "users",
//	    Engine:    "InnoDB",
//	    Collation: "utf8mb4_unicode_ci",
//	    Schema: []core.Column{
//	        {Name: "id", Type: "int(11)", Key: core.PrimaryKey, Extra: core.AutoIncrement},
//	        {Name: "name", Type: "varchar(255)"},
//	    },
//	}
//
// Rows are maps from column name to a scalar (string, int64, float64 or nil).
// A row need not carry every declared column.
//
// # Key Kinds
//
//   - PrimaryKey ("PRI"): at most one per table
//   - UniqueKey ("UNI")
//   - MultipleKey ("MUL")
//   - NoKey ("")
//
// # Errors
//
// Errors produced while interpreting a statement are *core.Error values. Their
// Kind can be matched with errors.Is against ErrNotFound, ErrAlreadyExists,
// ErrNoDatabaseSelected and ErrUnsupported.
package core
