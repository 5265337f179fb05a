// Package op provides the database and table operations behind each DemoDB
// statement.
//
// Operations work directly on a live core.Server and must run inside
// ps.Store.Mutate (or Read, for the read-only ones):
//
//	store.Mutate(change, func(server core.Server) error {
//	    dbOp, ok := op.GetDatabase(server, "demo_db")
//	    ...
//	    tableOp, _ := dbOp.GetTable("users")
//	    tableOp.Insert([]string{"name"}, []any{"Dana"})
//	    return nil
//	})
//
// # DatabaseOp
//
//	op.CreateDatabase(server, "shop")
//	op.DropDatabase(server, "shop")
//	dbOp.TableNames()
//	dbOp.CreateTable("items", schema)
//	dbOp.RenameTable("items", "goods")
//	dbOp.DropTable("goods")
//
// # TableOp
//
//	tableOp.NextID("id")                       // max(id)+1
//	tableOp.FindFirst("emp_id", int64(103))   // loose equality
//	tableOp.DeleteWhereIn("id", []int64{1, 2})
//	tableOp.AddColumn("age", "int(11)")
//	tableOp.DropColumn("age")
//	tableOp.Truncate()
//	rows, total := tableOp.Select(op.Window{OrderBy: "name", HasLimit: true, Limit: 2})
//
// Every operation that changes the row set keeps Table.Rows equal to
// len(Table.Data).
//
// # Architecture
//
//	Statement matchers (sql/)
//	     ↓
//	Interpreter (db/)
//	     ↓
//	Operations (op/)     ← This package
//	     ↓
//	State store (ps/)
package op
