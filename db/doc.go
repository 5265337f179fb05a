// Package db interprets statements against the in-memory server held by a
// ps.Store.
//
// # Engine Usage
//
//	store := ps.NewDemoStore()
//	engine := db.NewEngine(store, core.Identity{Name: "demo", Email: "demo@localhost"})
//	result := engine.Execute("SELECT * FROM users ORDER BY name LIMIT 2", "demo_db")
//	result.Display()
//
// Execute never returns a Go error. Failures are reported as a QueryResult
// with Success false and the message in Error.
//
// # Result Shapes
//
// A QueryResult is one of three shapes:
//   - query: Data, Columns and TotalRows (SELECT, SHOW)
//   - commit: Message and RowsAffected (DDL and DML)
//   - error: Error only
//
// Successful results also carry ExecutionTime in milliseconds.
//
// # Sessions
//
// Session splits scripts on semicolons, follows USE statements and runs
// each statement through an Executor in order.
package db
