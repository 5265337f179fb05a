// Package DemoDB is an in-memory, MySQL-flavoured mock database for demo
// mode: it accepts SQL-like statements against a seeded server of
// databases, tables and rows and answers with the same result shape a real
// backend would.
//
// # Quick Start
//
//	instance := DemoDB.OpenDemo()
//	session := instance.Session(core.Identity{Name: "App", Email: "app@example.com"}, "demo_db")
//
//	session.Execute(ctx, "INSERT INTO products (name, price, stock) VALUES ('Tablet', '299.99', '10')")
//	result := session.Execute(ctx, "SELECT * FROM products ORDER BY price DESC LIMIT 2")
//	result.Display()
//
//	instance.Reset() // back to the seed
//
// # Supported SQL
//
// Statements are recognised by shape, not parsed by a grammar:
//   - SHOW DATABASES, CREATE/DROP DATABASE, USE
//   - SHOW TABLES, CREATE/DROP/TRUNCATE/RENAME TABLE
//   - ALTER TABLE ... ADD COLUMN / DROP COLUMN
//   - SELECT ... FROM t [ORDER BY c ASC|DESC] [LIMIT n [OFFSET m]]
//   - INSERT INTO t [(cols)] VALUES (...)
//   - UPDATE t SET c = v[, ...] WHERE c = v
//   - DELETE FROM t WHERE c IN (...)
//
// Anything else is reported as unsupported.
package DemoDB
