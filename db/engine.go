package db

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/logger"
	"github.com/nickyhof/DemoDB/op"
	"github.com/nickyhof/DemoDB/ps"
	"github.com/nickyhof/DemoDB/sql"
)

// unsupportedEchoLength bounds the input echoed back for unrecognised
// statements.
const unsupportedEchoLength = 50

// Engine interprets one statement at a time against a Store. It holds no
// state of its own, so any number of engines and sessions may share a store.
type Engine struct {
	store    *ps.Store
	identity core.Identity
}

func NewEngine(store *ps.Store, identity core.Identity) *Engine {
	return &Engine{store: store, identity: identity}
}

func (engine *Engine) Store() *ps.Store {
	return engine.store
}

func (engine *Engine) Identity() core.Identity {
	return engine.identity
}

// WithIdentity returns an engine on the same store that authors changes as
// identity.
func (engine *Engine) WithIdentity(identity core.Identity) *Engine {
	return &Engine{store: engine.store, identity: identity}
}

// Execute runs query with database as the current database. Failures are
// reported in the result, never as a Go error.
func (engine *Engine) Execute(query string, database string) QueryResult {
	return engine.ExecuteContext(context.Background(), query, database)
}

// ExecuteContext is Execute with cancellation checked before the statement
// runs. A statement that has started always completes.
func (engine *Engine) ExecuteContext(ctx context.Context, query string, database string) QueryResult {
	startTime := time.Now()
	database = strings.ToLower(strings.TrimSpace(database))

	if err := ctx.Err(); err != nil {
		return ErrorResult(err.Error())
	}

	statement := sql.Parse(query)
	result, err := engine.execute(statement, query, database)
	if err != nil {
		result = ErrorResult(errorMessage(err))
	} else {
		elapsed := time.Since(startTime).Milliseconds()
		result.ExecutionTime = &elapsed
	}

	logger.WithFields(logrus.Fields{
		"database":   database,
		"statement":  statement.Type().String(),
		"success":    result.Success,
		"elapsed_ms": time.Since(startTime).Milliseconds(),
	}).Debug("statement executed")

	return result
}

func errorMessage(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr.Message
	}
	return err.Error()
}

func (engine *Engine) execute(statement sql.Statement, query string, database string) (QueryResult, error) {
	switch statement.Type() {
	case sql.ShowDatabasesStatementType:
		return engine.executeShowDatabasesStatement()
	case sql.CreateDatabaseStatementType:
		return engine.executeCreateDatabaseStatement(statement.(sql.CreateDatabaseStatement), query)
	case sql.DropDatabaseStatementType:
		return engine.executeDropDatabaseStatement(statement.(sql.DropDatabaseStatement), query)
	case sql.UseStatementType:
		return engine.executeUseStatement(statement.(sql.UseStatement))
	}

	var result QueryResult
	run := engine.store.Read
	if statement.Type().Mutates() {
		change := ps.Change{Identity: engine.identity, Statement: strings.TrimSpace(query)}
		run = func(fn func(server core.Server) error) error {
			return engine.store.Mutate(change, fn)
		}
	}

	err := run(func(server core.Server) error {
		dbOp, ok := op.GetDatabase(server, database)
		if !ok {
			return core.Errorf(core.NoContextSelected, "No database selected.")
		}

		var err error
		switch statement.Type() {
		case sql.ShowTablesStatementType:
			result = executeShowTablesStatement(dbOp)
		case sql.CreateTableStatementType:
			result, err = executeCreateTableStatement(dbOp, statement.(sql.CreateTableStatement))
		case sql.DropTableStatementType:
			result, err = executeDropTableStatement(dbOp, statement.(sql.DropTableStatement))
		case sql.TruncateTableStatementType:
			result, err = executeTruncateTableStatement(dbOp, statement.(sql.TruncateTableStatement))
		case sql.RenameTableStatementType:
			result, err = executeRenameTableStatement(dbOp, statement.(sql.RenameTableStatement))
		case sql.AlterTableStatementType:
			result, err = executeAlterTableStatement(dbOp, statement.(sql.AlterTableStatement), query)
		case sql.SelectStatementType:
			result, err = executeSelectStatement(dbOp, statement.(sql.SelectStatement))
		case sql.InsertStatementType:
			result, err = executeInsertStatement(dbOp, statement.(sql.InsertStatement))
		case sql.UpdateStatementType:
			result, err = executeUpdateStatement(dbOp, statement.(sql.UpdateStatement))
		case sql.DeleteStatementType:
			result, err = executeDeleteStatement(dbOp, statement.(sql.DeleteStatement))
		default:
			err = unsupported(query)
		}
		return err
	})
	return result, err
}

func unsupported(query string) error {
	text := sql.Normalize(query)
	if utf8.RuneCountInString(text) > unsupportedEchoLength {
		text = string([]rune(text)[:unsupportedEchoLength])
	}
	return core.Errorf(core.Unsupported, "Unsupported or invalid SQL query in demo mode: %s...", text)
}

func (engine *Engine) executeShowDatabasesStatement() (QueryResult, error) {
	var rows []core.Row
	err := engine.store.Read(func(server core.Server) error {
		for _, name := range op.DatabaseNames(server) {
			rows = append(rows, core.Row{"Database": name})
		}
		return nil
	})
	return queryResult([]string{"Database"}, rows, len(rows)), err
}

func (engine *Engine) executeCreateDatabaseStatement(statement sql.CreateDatabaseStatement, query string) (QueryResult, error) {
	change := ps.Change{Identity: engine.identity, Statement: strings.TrimSpace(query)}
	err := engine.store.Mutate(change, func(server core.Server) error {
		_, err := op.CreateDatabase(server, statement.Database)
		return err
	})
	if err != nil {
		return QueryResult{}, err
	}
	return commitResult(fmt.Sprintf("Database '%s' created.", statement.Database), 0), nil
}

func (engine *Engine) executeDropDatabaseStatement(statement sql.DropDatabaseStatement, query string) (QueryResult, error) {
	change := ps.Change{Identity: engine.identity, Statement: strings.TrimSpace(query)}
	err := engine.store.Mutate(change, func(server core.Server) error {
		return op.DropDatabase(server, statement.Database)
	})
	if err != nil {
		return QueryResult{}, err
	}
	return commitResult(fmt.Sprintf("Database '%s' dropped.", statement.Database), 0), nil
}

// executeUseStatement only validates the name. Sessions track the current
// database themselves.
func (engine *Engine) executeUseStatement(statement sql.UseStatement) (QueryResult, error) {
	err := engine.store.Read(func(server core.Server) error {
		if _, ok := op.GetDatabase(server, statement.Database); !ok {
			return core.Errorf(core.NotFound, "Unknown database '%s'", statement.Database)
		}
		return nil
	})
	if err != nil {
		return QueryResult{}, err
	}
	return messageResult(fmt.Sprintf("Database changed to '%s'.", statement.Database)), nil
}

func executeShowTablesStatement(dbOp *op.DatabaseOp) QueryResult {
	column := "Tables_in_" + dbOp.Name
	var rows []core.Row
	for _, name := range dbOp.TableNames() {
		rows = append(rows, core.Row{column: name})
	}
	return queryResult([]string{column}, rows, len(rows))
}

func executeCreateTableStatement(dbOp *op.DatabaseOp, statement sql.CreateTableStatement) (QueryResult, error) {
	if _, err := dbOp.CreateTable(statement.Table, statement.Columns); err != nil {
		return QueryResult{}, err
	}
	return commitResult(fmt.Sprintf("Table '%s' created.", statement.Table), 0), nil
}

func executeDropTableStatement(dbOp *op.DatabaseOp, statement sql.DropTableStatement) (QueryResult, error) {
	if err := dbOp.DropTable(statement.Table); err != nil {
		return QueryResult{}, err
	}
	return commitResult(fmt.Sprintf("Table '%s' dropped.", statement.Table), 0), nil
}

func executeTruncateTableStatement(dbOp *op.DatabaseOp, statement sql.TruncateTableStatement) (QueryResult, error) {
	tableOp, ok := dbOp.GetTable(statement.Table)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Table '%s' does not exist.", statement.Table)
	}
	tableOp.Truncate()
	return commitResult(fmt.Sprintf("Table '%s' has been truncated.", statement.Table), 0), nil
}

func executeRenameTableStatement(dbOp *op.DatabaseOp, statement sql.RenameTableStatement) (QueryResult, error) {
	if err := dbOp.RenameTable(statement.Table, statement.NewName); err != nil {
		return QueryResult{}, err
	}
	return commitResult(fmt.Sprintf("Table '%s' renamed to '%s'.", statement.Table, statement.NewName), 0), nil
}

func executeAlterTableStatement(dbOp *op.DatabaseOp, statement sql.AlterTableStatement, query string) (QueryResult, error) {
	tableOp, ok := dbOp.GetTable(statement.Table)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Table '%s' not found.", statement.Table)
	}

	switch statement.Action {
	case sql.DropColumnAction:
		column := tableOp.ResolveColumn(statement.Column)
		tableOp.DropColumn(column)
		return commitResult(fmt.Sprintf("Column '%s' dropped.", column), 0), nil
	case sql.AddColumnAction:
		if err := tableOp.AddColumn(statement.Column, statement.ColumnType); err != nil {
			return QueryResult{}, err
		}
		return commitResult(fmt.Sprintf("Column '%s' added.", statement.Column), 0), nil
	default:
		return QueryResult{}, unsupported(query)
	}
}

func executeSelectStatement(dbOp *op.DatabaseOp, statement sql.SelectStatement) (QueryResult, error) {
	tableOp, ok := dbOp.GetTable(statement.Table)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Table not found in database '%s'", dbOp.Name)
	}

	window := op.Window{
		Desc:     statement.Desc,
		HasLimit: statement.HasLimit,
		Limit:    statement.Limit,
		Offset:   statement.Offset,
	}
	if statement.OrderBy != "" {
		window.OrderBy = tableOp.ResolveColumn(statement.OrderBy)
	}

	rows, total := tableOp.Select(window)
	return queryResult(tableOp.Table.ColumnNames(), rows, total), nil
}

func executeInsertStatement(dbOp *op.DatabaseOp, statement sql.InsertStatement) (QueryResult, error) {
	tableOp, ok := dbOp.GetTable(statement.Table)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Table '%s' not found.", statement.Table)
	}

	columns := tableOp.InsertColumns()
	if statement.Columns != nil {
		columns = make([]string, len(statement.Columns))
		for i, column := range statement.Columns {
			columns[i] = tableOp.ResolveColumn(column)
		}
	}

	tableOp.Insert(columns, statement.Values)
	return commitResult("1 row inserted.", 1), nil
}

func executeUpdateStatement(dbOp *op.DatabaseOp, statement sql.UpdateStatement) (QueryResult, error) {
	tableOp, ok := dbOp.GetTable(statement.Table)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Table not found")
	}

	row, ok := tableOp.FindFirst(tableOp.ResolveColumn(statement.Where.Column), statement.Where.Value)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Row not found")
	}
	for _, update := range statement.Updates {
		row[tableOp.ResolveColumn(update.Column)] = update.Value
	}
	return commitResult("1 row updated.", 1), nil
}

func executeDeleteStatement(dbOp *op.DatabaseOp, statement sql.DeleteStatement) (QueryResult, error) {
	tableOp, ok := dbOp.GetTable(statement.Table)
	if !ok {
		return QueryResult{}, core.Errorf(core.NotFound, "Table '%s' not found.", statement.Table)
	}

	removed := tableOp.DeleteWhereIn(tableOp.ResolveColumn(statement.Column), statement.IDs)
	return commitResult(fmt.Sprintf("%d row(s) deleted.", removed), removed), nil
}
