package sql

import (
	"regexp"
	"strings"

	"github.com/nickyhof/DemoDB/core"
)

type StatementType int

const (
	ShowDatabasesStatementType StatementType = iota
	CreateDatabaseStatementType
	DropDatabaseStatementType
	UseStatementType
	ShowTablesStatementType
	CreateTableStatementType
	DropTableStatementType
	TruncateTableStatementType
	RenameTableStatementType
	AlterTableStatementType
	SelectStatementType
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
	UnsupportedStatementType
)

var statementTypeNames = [...]string{
	ShowDatabasesStatementType:  "SHOW DATABASES",
	CreateDatabaseStatementType: "CREATE DATABASE",
	DropDatabaseStatementType:   "DROP DATABASE",
	UseStatementType:            "USE",
	ShowTablesStatementType:     "SHOW TABLES",
	CreateTableStatementType:    "CREATE TABLE",
	DropTableStatementType:      "DROP TABLE",
	TruncateTableStatementType:  "TRUNCATE TABLE",
	RenameTableStatementType:    "RENAME TABLE",
	AlterTableStatementType:     "ALTER TABLE",
	SelectStatementType:         "SELECT",
	InsertStatementType:         "INSERT",
	UpdateStatementType:         "UPDATE",
	DeleteStatementType:         "DELETE",
	UnsupportedStatementType:    "UNSUPPORTED",
}

func (statementType StatementType) String() string {
	if int(statementType) < len(statementTypeNames) {
		return statementTypeNames[statementType]
	}
	return "UNKNOWN"
}

// IsDatabaseLevel reports whether the statement runs without a current
// database.
func (statementType StatementType) IsDatabaseLevel() bool {
	return statementType <= UseStatementType
}

// Mutates reports whether the statement can change the server.
func (statementType StatementType) Mutates() bool {
	switch statementType {
	case ShowDatabasesStatementType, UseStatementType, ShowTablesStatementType,
		SelectStatementType, UnsupportedStatementType:
		return false
	default:
		return true
	}
}

type Statement interface {
	Type() StatementType
}

type ShowDatabasesStatement struct{}

type CreateDatabaseStatement struct {
	Database string
}

type DropDatabaseStatement struct {
	Database string
}

type UseStatement struct {
	Database string
}

type ShowTablesStatement struct{}

type CreateTableStatement struct {
	Table   string
	Columns []core.Column
}

type DropTableStatement struct {
	Table string
}

type TruncateTableStatement struct {
	Table string
}

type RenameTableStatement struct {
	Table   string
	NewName string
}

type AlterAction int

const (
	UnknownAlterAction AlterAction = iota
	DropColumnAction
	AddColumnAction
)

type AlterTableStatement struct {
	Table      string
	Action     AlterAction
	Column     string
	ColumnType string
}

// SelectStatement only carries what the interpreter honours: the source
// table and the ordering window. The projection is always every column.
type SelectStatement struct {
	Table    string
	OrderBy  string
	Desc     bool
	HasLimit bool
	Limit    int
	Offset   int
}

type InsertStatement struct {
	Table   string
	Columns []string // nil when the statement has no column list
	Values  []any
}

type SetClause struct {
	Column string
	Value  any
}

type WhereCondition struct {
	Column string
	Value  any
}

type UpdateStatement struct {
	Table   string
	Updates []SetClause
	Where   WhereCondition
}

type DeleteStatement struct {
	Table  string
	Column string
	IDs    []int64
}

// UnsupportedStatement is any input no matcher accepted. Text is the
// normalised input.
type UnsupportedStatement struct {
	Text string
}

func (s ShowDatabasesStatement) Type() StatementType  { return ShowDatabasesStatementType }
func (s CreateDatabaseStatement) Type() StatementType { return CreateDatabaseStatementType }
func (s DropDatabaseStatement) Type() StatementType   { return DropDatabaseStatementType }
func (s UseStatement) Type() StatementType            { return UseStatementType }
func (s ShowTablesStatement) Type() StatementType     { return ShowTablesStatementType }
func (s CreateTableStatement) Type() StatementType    { return CreateTableStatementType }
func (s DropTableStatement) Type() StatementType      { return DropTableStatementType }
func (s TruncateTableStatement) Type() StatementType  { return TruncateTableStatementType }
func (s RenameTableStatement) Type() StatementType    { return RenameTableStatementType }
func (s AlterTableStatement) Type() StatementType     { return AlterTableStatementType }
func (s SelectStatement) Type() StatementType         { return SelectStatementType }
func (s InsertStatement) Type() StatementType         { return InsertStatementType }
func (s UpdateStatement) Type() StatementType         { return UpdateStatementType }
func (s DeleteStatement) Type() StatementType         { return DeleteStatementType }
func (s UnsupportedStatement) Type() StatementType    { return UnsupportedStatementType }

// Normalize lower-cases and trims a statement and strips one trailing
// semicolon.
func Normalize(query string) string {
	return strings.ToLower(trimStatement(query))
}

func trimStatement(query string) string {
	s := strings.TrimSpace(query)
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}

// input is a statement in both forms the matchers need.
type input struct {
	normalized string
	original   string
}

// matcher returns a statement when its shape accepts the input.
type matcher func(in input) (Statement, bool)

// matchers are tried in order; the first that accepts wins. Keyword
// prefixes keep the shapes mutually exclusive.
var matchers = []matcher{
	matchShowDatabases,
	matchCreateDatabase,
	matchDropDatabase,
	matchUse,
	matchShowTables,
	matchCreateTable,
	matchDropTable,
	matchTruncateTable,
	matchRenameTable,
	matchAlterTable,
	matchSelect,
	matchInsert,
	matchUpdate,
	matchDelete,
}

// Parse classifies one statement. It never fails: input that no shape
// accepts is an UnsupportedStatement.
func Parse(query string) Statement {
	in := input{normalized: Normalize(query), original: trimStatement(query)}
	for _, match := range matchers {
		if statement, ok := match(in); ok {
			return statement
		}
	}
	return UnsupportedStatement{Text: in.normalized}
}

const ident = "`?(\\w+)`?"

var (
	showDatabasesPattern  = regexp.MustCompile(`^show\s+databases$`)
	createDatabasePattern = regexp.MustCompile(`^create\s+database\s+` + ident + `$`)
	dropDatabasePattern   = regexp.MustCompile(`^drop\s+database\s+` + ident + `$`)
	usePattern            = regexp.MustCompile(`^use\s+` + ident + `$`)
	showTablesPattern     = regexp.MustCompile(`^show\s+tables(?:\s|$)`)
	createTablePattern    = regexp.MustCompile(`(?is)^create\s+table\s+` + ident + `\s*\((.*)\)[^)]*$`)
	dropTablePattern      = regexp.MustCompile(`^drop\s+table\s+` + ident + `$`)
	truncateTablePattern  = regexp.MustCompile(`^truncate\s+table\s+` + ident + `$`)
	renameTablePattern    = regexp.MustCompile(`^rename\s+table\s+` + ident + `\s+to\s+` + ident + `$`)
	alterTablePattern     = regexp.MustCompile(`(?is)^alter\s+table\s+` + ident + `(?:\s+(.*))?$`)
	dropColumnPattern     = regexp.MustCompile(`(?is)^drop\s+column\s+` + ident + `$`)
	addColumnPattern      = regexp.MustCompile(`(?is)^add\s+column\s+` + ident + `\s+(\w+(?:\s*\([^)]*\))?)`)
	selectPattern         = regexp.MustCompile(`^select(?:\s|$)`)
	fromPattern           = regexp.MustCompile(`\bfrom\s+` + ident)
	orderByPattern        = regexp.MustCompile(`(?i)\border\s+by\s+` + ident + `(?:\s+(asc|desc))?`)
	limitPattern          = regexp.MustCompile(`\blimit\s+(\d+)`)
	offsetPattern         = regexp.MustCompile(`\boffset\s+(\d+)`)
	insertPattern         = regexp.MustCompile(`(?is)^insert\s+into\s+` + ident + `\s*(?:\(([^)]*)\))?\s*values\s*(\(.*)$`)
	updatePattern         = regexp.MustCompile(`(?is)^update\s+` + ident + `\s+set\s+(.+)$`)
	deletePattern         = regexp.MustCompile(`(?is)^delete\s+from\s+` + ident + `\s+where\s+` + ident + `\s+in\s*\(([^)]*)\)$`)
)

func matchShowDatabases(in input) (Statement, bool) {
	return ShowDatabasesStatement{}, showDatabasesPattern.MatchString(in.normalized)
}

func matchCreateDatabase(in input) (Statement, bool) {
	match := createDatabasePattern.FindStringSubmatch(in.normalized)
	if match == nil {
		return nil, false
	}
	return CreateDatabaseStatement{Database: match[1]}, true
}

func matchDropDatabase(in input) (Statement, bool) {
	match := dropDatabasePattern.FindStringSubmatch(in.normalized)
	if match == nil {
		return nil, false
	}
	return DropDatabaseStatement{Database: match[1]}, true
}

func matchUse(in input) (Statement, bool) {
	match := usePattern.FindStringSubmatch(in.normalized)
	if match == nil {
		return nil, false
	}
	return UseStatement{Database: match[1]}, true
}

func matchShowTables(in input) (Statement, bool) {
	return ShowTablesStatement{}, showTablesPattern.MatchString(in.normalized)
}

// matchCreateTable reads the column list from the original text so column
// names and types keep their case.
func matchCreateTable(in input) (Statement, bool) {
	match := createTablePattern.FindStringSubmatch(in.original)
	if match == nil {
		return nil, false
	}
	return CreateTableStatement{
		Table:   strings.ToLower(match[1]),
		Columns: ParseColumnDefinitions(match[2]),
	}, true
}

func matchDropTable(in input) (Statement, bool) {
	match := dropTablePattern.FindStringSubmatch(in.normalized)
	if match == nil {
		return nil, false
	}
	return DropTableStatement{Table: match[1]}, true
}

func matchTruncateTable(in input) (Statement, bool) {
	match := truncateTablePattern.FindStringSubmatch(in.normalized)
	if match == nil {
		return nil, false
	}
	return TruncateTableStatement{Table: match[1]}, true
}

func matchRenameTable(in input) (Statement, bool) {
	match := renameTablePattern.FindStringSubmatch(in.normalized)
	if match == nil {
		return nil, false
	}
	return RenameTableStatement{Table: match[1], NewName: match[2]}, true
}

// matchAlterTable accepts any ALTER TABLE so a missing table is reported
// before an unknown action.
func matchAlterTable(in input) (Statement, bool) {
	match := alterTablePattern.FindStringSubmatch(in.original)
	if match == nil {
		return nil, false
	}
	statement := AlterTableStatement{Table: strings.ToLower(match[1])}
	action := strings.TrimSpace(match[2])

	if m := dropColumnPattern.FindStringSubmatch(action); m != nil {
		statement.Action = DropColumnAction
		statement.Column = m[1]
	} else if m := addColumnPattern.FindStringSubmatch(action); m != nil {
		statement.Action = AddColumnAction
		statement.Column = m[1]
		statement.ColumnType = strings.Join(strings.Fields(m[2]), "")
	}
	return statement, true
}

// matchSelect accepts every SELECT; one without a FROM table has an empty
// Table.
func matchSelect(in input) (Statement, bool) {
	if !selectPattern.MatchString(in.normalized) {
		return nil, false
	}
	bare := blankQuoted(in.original)
	lowered := strings.ToLower(bare)

	statement := SelectStatement{}
	if m := fromPattern.FindStringSubmatch(lowered); m != nil {
		statement.Table = m[1]
	}
	if m := orderByPattern.FindStringSubmatch(bare); m != nil {
		statement.OrderBy = m[1]
		statement.Desc = strings.EqualFold(m[2], "desc")
	}
	if m := limitPattern.FindStringSubmatch(lowered); m != nil {
		statement.HasLimit = true
		statement.Limit = atoi(m[1])
		if o := offsetPattern.FindStringSubmatch(lowered); o != nil {
			statement.Offset = atoi(o[1])
		}
	}
	return statement, true
}

func matchInsert(in input) (Statement, bool) {
	match := insertPattern.FindStringSubmatch(in.original)
	if match == nil {
		return nil, false
	}

	statement := InsertStatement{Table: strings.ToLower(match[1])}
	if strings.TrimSpace(match[2]) != "" {
		for _, column := range strings.Split(match[2], ",") {
			statement.Columns = append(statement.Columns, strings.Trim(strings.TrimSpace(column), "`"))
		}
	}

	lexer := NewLexer(match[3])
	literals, ok := parseValueList(lexer)
	if !ok || lexer.NextToken().Type != EOF {
		return nil, false
	}
	for _, literal := range literals {
		statement.Values = append(statement.Values, literal.Value())
	}
	return statement, true
}

// matchUpdate accepts SET assignments and a single equality predicate.
// Anything richer is left to the unsupported fallback.
func matchUpdate(in input) (Statement, bool) {
	match := updatePattern.FindStringSubmatch(in.original)
	if match == nil {
		return nil, false
	}

	statement := UpdateStatement{Table: strings.ToLower(match[1])}
	lexer := NewLexer(match[2])
	for {
		column, literal, ok := parseAssignment(lexer)
		if !ok {
			return nil, false
		}
		statement.Updates = append(statement.Updates, SetClause{Column: column, Value: literal.NumericValue()})

		next := lexer.NextToken()
		if next.Type == Comma {
			continue
		}
		if next.Type == Word && strings.EqualFold(next.Value, "where") {
			break
		}
		return nil, false
	}

	column, literal, ok := parseAssignment(lexer)
	if !ok || lexer.NextToken().Type != EOF {
		return nil, false
	}
	statement.Where = WhereCondition{Column: column, Value: literal.NumericValue()}
	return statement, true
}

func matchDelete(in input) (Statement, bool) {
	match := deletePattern.FindStringSubmatch(in.original)
	if match == nil {
		return nil, false
	}
	statement := DeleteStatement{
		Table:  strings.ToLower(match[1]),
		Column: match[2],
	}
	for _, id := range strings.Split(match[3], ",") {
		if n, ok := ParseLeadingInt(id); ok {
			statement.IDs = append(statement.IDs, n)
		}
	}
	return statement, true
}

// parseValueList reads "(v1, v2, ...)". Bare function calls such as NOW()
// are kept as their text.
func parseValueList(lexer *Lexer) ([]Literal, bool) {
	if lexer.NextToken().Type != ParenOpen {
		return nil, false
	}
	if lexer.Peek().Type == ParenClose {
		lexer.NextToken()
		return []Literal{}, true
	}

	var literals []Literal
	for {
		literal, ok := parseLiteral(lexer)
		if !ok {
			return nil, false
		}
		literals = append(literals, literal)

		switch lexer.NextToken().Type {
		case Comma:
			continue
		case ParenClose:
			return literals, true
		default:
			return nil, false
		}
	}
}

func parseLiteral(lexer *Lexer) (Literal, bool) {
	switch token := lexer.Peek(); token.Type {
	case String:
		lexer.NextToken()
		return Literal{Text: token.Value, Quoted: true}, true
	case Word:
		lexer.NextToken()
		if lexer.Peek().Type != ParenOpen {
			return Literal{Text: token.Value}, true
		}
		call, ok := readCall(lexer)
		return Literal{Text: token.Value + call}, ok
	case Comma, ParenClose:
		return Literal{}, true
	default:
		return Literal{}, false
	}
}

// readCall consumes a balanced parenthesised argument list and returns it
// as text.
func readCall(lexer *Lexer) (string, bool) {
	var b strings.Builder
	depth := 0
	for {
		token := lexer.NextToken()
		switch token.Type {
		case EOF, Unknown:
			return "", false
		case ParenOpen:
			depth++
		case ParenClose:
			depth--
		}
		if token.Type == String {
			b.WriteString("'" + strings.ReplaceAll(token.Value, "'", "''") + "'")
		} else {
			b.WriteString(token.Value)
		}
		if depth == 0 {
			return b.String(), true
		}
	}
}

func parseAssignment(lexer *Lexer) (string, Literal, bool) {
	column := lexer.NextToken()
	if column.Type != Word || lexer.NextToken().Type != Equals {
		return "", Literal{}, false
	}
	next := lexer.Peek().Type
	if next != String && next != Word {
		return "", Literal{}, false
	}
	literal, ok := parseLiteral(lexer)
	return column.Value, literal, ok
}

// blankQuoted replaces the contents of quoted strings with spaces so clause
// keywords inside literals are not matched. Offsets are preserved.
func blankQuoted(s string) string {
	out := []byte(s)
	var quote byte
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case quote == 0:
			if c == '\'' || c == '"' {
				quote = c
			}
		case c == '\\' && i+1 < len(out):
			out[i], out[i+1] = ' ', ' '
			i++
		case c == quote:
			quote = 0
		default:
			out[i] = ' '
		}
	}
	return string(out)
}

func atoi(digits string) int {
	n, ok := ParseLeadingInt(digits)
	if !ok || n > int64(^uint(0)>>1) {
		return int(^uint(0) >> 1)
	}
	return int(n)
}
