package op

import (
	"sort"

	"github.com/nickyhof/DemoDB/core"
)

type DatabaseOp struct {
	Name     string
	Database core.Database
}

func CreateDatabase(server core.Server, name string) (*DatabaseOp, error) {
	if _, exists := server[name]; exists {
		return nil, core.Errorf(core.AlreadyExists, "Database '%s' already exists.", name)
	}
	database := core.Database{}
	server[name] = database
	return &DatabaseOp{Name: name, Database: database}, nil
}

func GetDatabase(server core.Server, name string) (*DatabaseOp, bool) {
	database, exists := server[name]
	if !exists {
		return nil, false
	}
	if database == nil {
		database = core.Database{}
		server[name] = database
	}
	return &DatabaseOp{Name: name, Database: database}, true
}

func DropDatabase(server core.Server, name string) error {
	if _, exists := server[name]; !exists {
		return core.Errorf(core.NotFound, "Database '%s' does not exist.", name)
	}
	delete(server, name)
	return nil
}

// DatabaseNames lists database names in ascending order.
func DatabaseNames(server core.Server) []string {
	names := make([]string, 0, len(server))
	for name := range server {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableNames lists table names in ascending order.
func (op *DatabaseOp) TableNames() []string {
	names := make([]string, 0, len(op.Database))
	for name := range op.Database {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (op *DatabaseOp) GetTable(name string) (*TableOp, bool) {
	table, exists := op.Database[name]
	if !exists || table == nil {
		return nil, false
	}
	return &TableOp{Table: table}, true
}

// CreateTable adds an empty table with the given schema.
func (op *DatabaseOp) CreateTable(name string, schema []core.Column) (*TableOp, error) {
	if _, exists := op.Database[name]; exists {
		return nil, core.Errorf(core.AlreadyExists, "Table '%s' already exists.", name)
	}
	if schema == nil {
		schema = []core.Column{}
	}
	table := &core.Table{
		Name:      name,
		Engine:    core.DefaultEngine,
		Collation: core.DefaultCollation,
		Schema:    schema,
		Data:      []core.Row{},
	}
	op.Database[name] = table
	return &TableOp{Table: table}, nil
}

func (op *DatabaseOp) DropTable(name string) error {
	if _, exists := op.Database[name]; !exists {
		return core.Errorf(core.NotFound, "Table '%s' does not exist.", name)
	}
	delete(op.Database, name)
	return nil
}

// RenameTable moves a table, with its schema and rows, to a new name.
func (op *DatabaseOp) RenameTable(oldName, newName string) error {
	table, exists := op.Database[oldName]
	if !exists {
		return core.Errorf(core.NotFound, "Table '%s' does not exist.", oldName)
	}
	if _, exists := op.Database[newName]; exists {
		return core.Errorf(core.AlreadyExists, "Table '%s' already exists.", newName)
	}
	table.Name = newName
	op.Database[newName] = table
	delete(op.Database, oldName)
	return nil
}
