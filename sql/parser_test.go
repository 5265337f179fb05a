package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nickyhof/DemoDB/core"
)

func TestParser(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected Statement
	}{
		{"show databases", "SHOW DATABASES;", ShowDatabasesStatement{}},
		{"show databases spacing", "  show   databases ", ShowDatabasesStatement{}},
		{"create database", "CREATE DATABASE Shop", CreateDatabaseStatement{Database: "shop"}},
		{"create database backticks", "create database `shop`;", CreateDatabaseStatement{Database: "shop"}},
		{"drop database", "DROP DATABASE shop", DropDatabaseStatement{Database: "shop"}},
		{"use", "USE company_db;", UseStatement{Database: "company_db"}},
		{"show tables", "SHOW TABLES", ShowTablesStatement{}},
		{"show tables suffix", "SHOW TABLES FROM x", ShowTablesStatement{}},
		{"drop table", "DROP TABLE `Users`", DropTableStatement{Table: "users"}},
		{"truncate table", "TRUNCATE TABLE logs;", TruncateTableStatement{Table: "logs"}},
		{"rename table", "RENAME TABLE users TO people", RenameTableStatement{Table: "users", NewName: "people"}},
		{
			"alter drop column",
			"ALTER TABLE users DROP COLUMN email",
			AlterTableStatement{Table: "users", Action: DropColumnAction, Column: "email"},
		},
		{
			"alter add column",
			"ALTER TABLE Users ADD COLUMN Age decimal(10, 2) NOT NULL",
			AlterTableStatement{Table: "users", Action: AddColumnAction, Column: "Age", ColumnType: "decimal(10,2)"},
		},
		{
			"alter unknown action",
			"ALTER TABLE users MODIFY name text",
			AlterTableStatement{Table: "users"},
		},
		{"select all", "SELECT * FROM users", SelectStatement{Table: "users"}},
		{
			"select ordered and limited",
			"SELECT * FROM users ORDER BY name ASC LIMIT 2",
			SelectStatement{Table: "users", OrderBy: "name", HasLimit: true, Limit: 2},
		},
		{
			"select desc with offset",
			"select id from `products` order by Price desc limit 10 offset 20;",
			SelectStatement{Table: "products", OrderBy: "Price", Desc: true, HasLimit: true, Limit: 10, Offset: 20},
		},
		{
			"select offset without limit",
			"SELECT * FROM users OFFSET 3",
			SelectStatement{Table: "users"},
		},
		{"select without from", "SELECT 1", SelectStatement{}},
		{
			"select clauses inside literals",
			"SELECT * FROM logs WHERE message = 'order by level limit 1' ORDER BY log_id DESC",
			SelectStatement{Table: "logs", OrderBy: "log_id", Desc: true},
		},
		{
			"select from inside literal",
			`SELECT 'from users', "it\'s limit 3" FROM logs LIMIT 2`,
			SelectStatement{Table: "logs", HasLimit: true, Limit: 2},
		},
		{
			"select huge limit",
			"SELECT * FROM users LIMIT 99999999999999999999 OFFSET 2",
			SelectStatement{Table: "users", HasLimit: true, Limit: int(^uint(0) >> 1), Offset: 2},
		},
		{
			"insert with columns",
			"INSERT INTO products (name, price, stock) VALUES ('Tablet', '299.99', '10')",
			InsertStatement{Table: "products", Columns: []string{"name", "price", "stock"}, Values: []any{"Tablet", "299.99", "10"}},
		},
		{
			"insert without columns",
			"insert into Departments values ('Research')",
			InsertStatement{Table: "departments", Values: []any{"Research"}},
		},
		{
			"insert bare literals",
			"INSERT INTO t (`a`, b, c, d, e) VALUES (42, -1.5, NULL, 'x, y', NOW());",
			InsertStatement{Table: "t", Columns: []string{"a", "b", "c", "d", "e"}, Values: []any{int64(42), -1.5, nil, "x, y", "NOW()"}},
		},
		{
			"update",
			"UPDATE employees SET department_id = '2' WHERE emp_id = '103'",
			UpdateStatement{
				Table:   "employees",
				Updates: []SetClause{{Column: "department_id", Value: int64(2)}},
				Where:   WhereCondition{Column: "emp_id", Value: int64(103)},
			},
		},
		{
			"update several",
			"update users set name = 'O''Brien', email=`x` where id = 3;",
			UpdateStatement{
				Table:   "users",
				Updates: []SetClause{{Column: "name", Value: "O'Brien"}, {Column: "email", Value: "x"}},
				Where:   WhereCondition{Column: "id", Value: int64(3)},
			},
		},
		{
			"update text containing where",
			"UPDATE logs SET message = 'where are we' WHERE log_id = 1",
			UpdateStatement{
				Table:   "logs",
				Updates: []SetClause{{Column: "message", Value: "where are we"}},
				Where:   WhereCondition{Column: "log_id", Value: int64(1)},
			},
		},
		{
			"delete in",
			"DELETE FROM users WHERE id IN (1, '3', x, 7abc)",
			DeleteStatement{Table: "users", Column: "id", IDs: []int64{1, 3, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.sql))
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	for _, query := range []string{
		"",
		"EXPLAIN SELECT * FROM users",
		"CREATE DATABASE IF NOT EXISTS x",
		"UPDATE users SET name = 'x'",
		"UPDATE users SET name = 'x' WHERE id = 1 AND email = 'y'",
		"UPDATE users SET name = 'x' WHERE id > 1",
		"DELETE FROM users WHERE id = 1",
		"INSERT INTO users VALUES ('a'), ('b')",
		"INSERT INTO users VALUES ('unterminated)",
		"INSERT INTO users (name, email) VALUES ('ok', 'unterminated)",
	} {
		statement := Parse(query)
		assert.Equal(t, UnsupportedStatementType, statement.Type(), query)
		assert.Equal(t, Normalize(query), statement.(UnsupportedStatement).Text)
	}
}

func TestBlankQuoted(t *testing.T) {
	assert.Equal(t, "a = '     ' b", blankQuoted("a = 'x y z' b"))
	assert.Equal(t, `"    " '    '`, blankQuoted(`"it's" 'a\'b'`))
	assert.Equal(t, "no quotes", blankQuoted("no quotes"))
	assert.Equal(t, "'     ", blankQuoted("'open "))
}

func TestParseCreateTable(t *testing.T) {
	statement := Parse("CREATE TABLE Orders (\n" +
		"  id INT NOT NULL AUTO_INCREMENT,\n" +
		"  Customer varchar(100) NOT NULL,\n" +
		"  total decimal(10,2) DEFAULT '0.00',\n" +
		"  email varchar(255) UNIQUE,\n" +
		"  PRIMARY KEY (id)\n" +
		") ENGINE=InnoDB;")

	def := "0.00"
	assert.Equal(t, CreateTableStatement{
		Table: "orders",
		Columns: []core.Column{
			{Name: "id", Type: "INT", Key: core.PrimaryKey, Extra: core.AutoIncrement},
			{Name: "Customer", Type: "varchar(100)"},
			{Name: "total", Type: "decimal(10,2)", Nullable: true, Default: &def},
			{Name: "email", Type: "varchar(255)", Nullable: true, Key: core.UniqueKey},
		},
	}, statement)
}

func TestStatementTypeClassification(t *testing.T) {
	databaseLevel := []StatementType{
		ShowDatabasesStatementType, CreateDatabaseStatementType, DropDatabaseStatementType, UseStatementType,
	}
	for _, st := range databaseLevel {
		assert.True(t, st.IsDatabaseLevel(), st.String())
	}
	for _, st := range []StatementType{ShowTablesStatementType, SelectStatementType, UnsupportedStatementType} {
		assert.False(t, st.IsDatabaseLevel(), st.String())
	}

	assert.True(t, InsertStatementType.Mutates())
	assert.True(t, AlterTableStatementType.Mutates())
	assert.False(t, SelectStatementType.Mutates())
	assert.False(t, UseStatementType.Mutates())
	assert.Equal(t, "RENAME TABLE", RenameTableStatementType.String())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "select * from users", Normalize("  SELECT * FROM users;  "))
	assert.Equal(t, "show tables;", Normalize("SHOW TABLES;;"))
}
