// Package sql classifies DemoDB statements.
//
// There is no grammar. Parse tries an ordered list of matchers, each
// accepting one statement shape by its keyword prefix, and returns the first
// match as a typed Statement. Input no matcher accepts becomes an
// UnsupportedStatement; Parse itself never fails.
//
//	statement := sql.Parse("SELECT * FROM users ORDER BY name LIMIT 2")
//	switch s := statement.(type) {
//	case sql.SelectStatement:
//	    fmt.Println(s.Table, s.OrderBy, s.Limit)
//	}
//
// Keywords and database and table names are matched on the lower-cased
// statement. Column definitions, column names and values are read from the
// original text so their case survives.
//
// # Supported Statements
//
// In matching order:
//   - SHOW DATABASES, CREATE DATABASE, DROP DATABASE, USE
//   - SHOW TABLES, CREATE TABLE, DROP TABLE, TRUNCATE TABLE, RENAME TABLE
//   - ALTER TABLE ... DROP COLUMN / ADD COLUMN
//   - SELECT ... FROM t [ORDER BY c [ASC|DESC]] [LIMIT n [OFFSET m]]
//   - INSERT INTO t [(cols)] VALUES (vals)
//   - UPDATE t SET c = v[, ...] WHERE c = v
//   - DELETE FROM t WHERE c IN (ids)
//
// # Lexer Usage
//
// The lexer tokenizes value lists and assignments, honouring quotes:
//
//	lexer := sql.NewLexer("('O''Brien', 42, NULL)")
//	for token := lexer.NextToken(); token.Type != sql.EOF; token = lexer.NextToken() {
//	    fmt.Println(token)
//	}
package sql
