package op

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nickyhof/DemoDB/core"
)

type TableOp struct {
	Table *core.Table
}

// Window selects and orders the rows a query returns.
type Window struct {
	OrderBy  string
	Desc     bool
	HasLimit bool
	Limit    int
	Offset   int
}

func (op *TableOp) PrimaryKey() (*core.Column, bool) {
	for i := range op.Table.Schema {
		if op.Table.Schema[i].Key == core.PrimaryKey {
			return &op.Table.Schema[i], true
		}
	}
	return nil, false
}

// ResolveColumn maps a column name as written in a statement to the schema
// spelling, matching case-insensitively. Unknown names are returned as is.
func (op *TableOp) ResolveColumn(name string) string {
	if _, ok := op.Table.Column(name); ok {
		return name
	}
	for _, column := range op.Table.Schema {
		if strings.EqualFold(column.Name, name) {
			return column.Name
		}
	}
	return name
}

// AutoIncrementKey returns the primary key column name when that column is
// auto-increment.
func (op *TableOp) AutoIncrementKey() (string, bool) {
	pk, ok := op.PrimaryKey()
	if !ok || !pk.IsAutoIncrement() {
		return "", false
	}
	return pk.Name, true
}

// NextID is one more than the largest numeric value in column, or 1 when the
// column holds no numbers.
func (op *TableOp) NextID(column string) int64 {
	var highest int64
	for _, row := range op.Table.Data {
		n, ok := Number(row[column])
		if !ok {
			continue
		}
		if id := n.Floor().IntPart(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// InsertColumns is the implicit column list of an INSERT without one: every
// column that is not auto-increment, in schema order.
func (op *TableOp) InsertColumns() []string {
	var names []string
	for _, column := range op.Table.Schema {
		if !column.IsAutoIncrement() {
			names = append(names, column.Name)
		}
	}
	return names
}

// Insert appends a row mapping columns to values by position. Missing values
// are nil and surplus values are dropped. An auto-increment primary key that
// is not listed gets NextID.
func (op *TableOp) Insert(columns []string, values []any) core.Row {
	row := core.Row{}
	if pk, ok := op.AutoIncrementKey(); ok {
		row[pk] = op.NextID(pk)
	}
	for i, column := range columns {
		if i < len(values) {
			row[column] = values[i]
		} else {
			row[column] = nil
		}
	}
	op.Table.Data = append(op.Table.Data, row)
	op.sync()
	return row
}

// FindFirst returns the first row whose column loosely equals value.
func (op *TableOp) FindFirst(column string, value any) (core.Row, bool) {
	for _, row := range op.Table.Data {
		if Equal(row[column], value) {
			return row, true
		}
	}
	return nil, false
}

// DeleteWhereIn removes every row whose column equals one of ids and returns
// how many were removed.
func (op *TableOp) DeleteWhereIn(column string, ids []int64) int {
	kept := op.Table.Data[:0]
	removed := 0
	for _, row := range op.Table.Data {
		if matchesAny(row[column], ids) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	for i := len(kept); i < len(op.Table.Data); i++ {
		op.Table.Data[i] = nil
	}
	op.Table.Data = kept
	op.sync()
	return removed
}

func matchesAny(value any, ids []int64) bool {
	n, ok := Number(value)
	if !ok {
		return false
	}
	for _, id := range ids {
		if n.Equal(decimal.NewFromInt(id)) {
			return true
		}
	}
	return false
}

// AddColumn appends a nullable column and sets it to nil on every row.
func (op *TableOp) AddColumn(name, typ string) error {
	if _, exists := op.Table.Column(op.ResolveColumn(name)); exists {
		return core.Errorf(core.AlreadyExists, "Duplicate column name '%s'", name)
	}
	op.Table.Schema = append(op.Table.Schema, core.Column{Name: name, Type: typ, Nullable: true})
	for _, row := range op.Table.Data {
		row[name] = nil
	}
	return nil
}

// DropColumn removes a column from the schema and from every row. Dropping
// an unknown column is a no-op.
func (op *TableOp) DropColumn(name string) {
	schema := op.Table.Schema[:0]
	for _, column := range op.Table.Schema {
		if column.Name != name {
			schema = append(schema, column)
		}
	}
	op.Table.Schema = schema
	for _, row := range op.Table.Data {
		delete(row, name)
	}
}

func (op *TableOp) Truncate() {
	op.Table.Data = []core.Row{}
	op.sync()
}

func (op *TableOp) Count() int {
	return len(op.Table.Data)
}

// Select returns copies of the rows in window and the row count before
// limiting. OFFSET only applies together with LIMIT.
func (op *TableOp) Select(window Window) (rows []core.Row, total int) {
	total = len(op.Table.Data)
	rows = make([]core.Row, total)
	for i, row := range op.Table.Data {
		rows[i] = row.Clone()
	}

	if window.OrderBy != "" {
		column := window.OrderBy
		sort.SliceStable(rows, func(i, j int) bool {
			c := Compare(rows[i][column], rows[j][column])
			if window.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if window.HasLimit {
		start := min(max(window.Offset, 0), len(rows))
		end := len(rows)
		if limit := max(window.Limit, 0); limit < end-start {
			end = start + limit
		}
		rows = rows[start:end]
	}
	return rows, total
}

func (op *TableOp) sync() {
	op.Table.Rows = len(op.Table.Data)
}
