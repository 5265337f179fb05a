package ps

import "github.com/nickyhof/DemoDB/core"

func text(s string) *string {
	return &s
}

func idColumn(name, typ string) core.Column {
	return core.Column{Name: name, Type: typ, Key: core.PrimaryKey, Extra: core.AutoIncrement}
}

func column(name, typ string) core.Column {
	return core.Column{Name: name, Type: typ}
}

func table(name string, schema []core.Column, data []core.Row) *core.Table {
	return &core.Table{
		Name:      name,
		Rows:      len(data),
		Engine:    core.DefaultEngine,
		Collation: core.DefaultCollation,
		Schema:    schema,
		Data:      data,
	}
}

// Seed returns a fresh copy of the built-in demo server: demo_db, company_db
// and system_db with their sample rows.
func Seed() core.Server {
	users := table("users", []core.Column{
		idColumn("id", "int(11)"),
		column("name", "varchar(255)"),
		{Name: "email", Type: "varchar(255)", Key: core.UniqueKey},
		{Name: "created_at", Type: "timestamp", Nullable: true, Default: text("CURRENT_TIMESTAMP")},
	}, []core.Row{
		{"id": int64(1), "name": "John Doe", "email": "john@example.com", "created_at": "2025-01-15 10:30:00"},
		{"id": int64(2), "name": "Jane Smith", "email": "jane@example.com", "created_at": "2025-01-16 14:20:00"},
		{"id": int64(3), "name": "Bob Johnson", "email": "bob@example.com", "created_at": "2025-01-17 09:15:00"},
		{"id": int64(4), "name": "Alice Brown", "email": "alice@example.com", "created_at": "2025-01-18 16:45:00"},
		{"id": int64(5), "name": "Charlie Wilson", "email": "charlie@example.com", "created_at": "2025-01-19 11:30:00"},
	})

	products := table("products", []core.Column{
		idColumn("id", "int(11)"),
		column("name", "varchar(255)"),
		column("price", "decimal(10,2)"),
		{Name: "stock", Type: "int(11)", Default: text("0")},
	}, []core.Row{
		{"id": int64(1), "name": "Laptop", "price": 999.99, "stock": int64(15)},
		{"id": int64(2), "name": "Smartphone", "price": 699.99, "stock": int64(25)},
		{"id": int64(3), "name": "Headphones", "price": 199.99, "stock": int64(50)},
	})

	employees := table("employees", []core.Column{
		idColumn("emp_id", "int(11)"),
		column("first_name", "varchar(50)"),
		column("last_name", "varchar(50)"),
		{
			Name:       "department_id",
			Type:       "int(11)",
			Nullable:   true,
			Key:        core.MultipleKey,
			References: &core.Reference{Table: "departments", Column: "dept_id"},
		},
	}, []core.Row{
		{"emp_id": int64(101), "first_name": "Sarah", "last_name": "Connor", "department_id": int64(1)},
		{"emp_id": int64(102), "first_name": "Kyle", "last_name": "Reese", "department_id": int64(2)},
		{"emp_id": int64(103), "first_name": "Miles", "last_name": "Dyson", "department_id": int64(1)},
		{"emp_id": int64(104), "first_name": "Peter", "last_name": "Silberman", "department_id": int64(3)},
	})

	departments := table("departments", []core.Column{
		idColumn("dept_id", "int(11)"),
		{Name: "dept_name", Type: "varchar(100)", Key: core.UniqueKey},
	}, []core.Row{
		{"dept_id": int64(1), "dept_name": "Engineering"},
		{"dept_id": int64(2), "dept_name": "Security"},
		{"dept_id": int64(3), "dept_name": "Psychology"},
	})

	logs := table("logs", []core.Column{
		idColumn("log_id", "bigint(20)"),
		column("level", "varchar(10)"),
		column("message", "text"),
		column("log_time", "datetime"),
	}, []core.Row{
		{"log_id": int64(1), "level": "INFO", "message": "Server started", "log_time": "2025-07-20 08:00:00"},
		{"log_id": int64(2), "level": "WARN", "message": "Disk space low", "log_time": "2025-07-20 09:30:00"},
	})
	logs.Engine = "MyISAM"
	logs.Collation = "utf8_general_ci"

	return core.Server{
		"demo_db": core.Database{
			"users":    users,
			"products": products,
		},
		"company_db": core.Database{
			"employees":   employees,
			"departments": departments,
		},
		"system_db": core.Database{
			"logs": logs,
		},
	}
}
