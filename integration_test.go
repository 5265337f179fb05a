package DemoDB

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/ps"
)

// TestFunc is the signature for test functions that work with any store
type TestFunc func(t *testing.T, instance *Instance, engine *db.Engine)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

// runWithBothStores runs a test function against a plain and a journaled store
func runWithBothStores(t *testing.T, testFunc TestFunc) {
	t.Run("Plain", func(t *testing.T) {
		instance := OpenDemo()
		testFunc(t, instance, instance.Engine(testIdentity))
	})

	t.Run("Journaled", func(t *testing.T) {
		instance, err := OpenWithOptions(context.Background(), Options{Journal: true})
		if err != nil {
			t.Fatalf("Failed to open journaled instance: %v", err)
		}
		testFunc(t, instance, instance.Engine(testIdentity))
	})
}

func mustExecute(t *testing.T, engine *db.Engine, query, database string) db.QueryResult {
	t.Helper()
	result := engine.Execute(query, database)
	if !result.Success {
		t.Fatalf("%q failed: %s", query, result.Error)
	}
	return result
}

func names(result db.QueryResult) []string {
	out := make([]string, 0, len(result.Data))
	for _, row := range result.Data {
		out = append(out, row["Database"].(string))
	}
	return out
}

func TestIntegrationCreateDropRoundTrip(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		before := names(mustExecute(t, engine, "SHOW DATABASES", ""))

		result := mustExecute(t, engine, "CREATE DATABASE shop", "")
		if result.Message != "Database 'shop' created." {
			t.Errorf("Unexpected message: %s", result.Message)
		}
		if !slices.Contains(names(mustExecute(t, engine, "SHOW DATABASES", "")), "shop") {
			t.Error("Expected shop to be listed")
		}

		mustExecute(t, engine, "DROP DATABASE shop", "")
		after := names(mustExecute(t, engine, "SHOW DATABASES", ""))
		if !reflect.DeepEqual(before, after) {
			t.Errorf("Expected %v after round trip, got %v", before, after)
		}
	})
}

func TestIntegrationResetRestoresSeed(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		fresh := mustExecute(t, engine, "SELECT * FROM users", "demo_db")

		mustExecute(t, engine, "DELETE FROM users WHERE id IN (1, 2, 3)", "demo_db")
		mustExecute(t, engine, "DROP DATABASE company_db", "")
		mustExecute(t, engine, "ALTER TABLE users ADD COLUMN age INT", "demo_db")

		instance.Reset()

		again := mustExecute(t, engine, "SELECT * FROM users", "demo_db")
		if !reflect.DeepEqual(fresh.Data, again.Data) || !reflect.DeepEqual(fresh.Columns, again.Columns) {
			t.Error("Expected reset to restore the seed users table")
		}
		if !reflect.DeepEqual(instance.Snapshot(), ps.Seed()) {
			t.Error("Expected snapshot to equal the seed after reset")
		}
	})
}

func TestIntegrationAutoIncrement(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		mustExecute(t, engine, "TRUNCATE TABLE products", "demo_db")

		for want := int64(1); want <= 3; want++ {
			mustExecute(t, engine, "INSERT INTO products (name, price, stock) VALUES ('Item', 1.5, 1)", "demo_db")
			result := mustExecute(t, engine, "SELECT * FROM products ORDER BY id DESC LIMIT 1", "demo_db")
			if got := result.Data[0]["id"]; got != want {
				t.Errorf("Expected id %d, got %v", want, got)
			}
		}
	})
}

func TestIntegrationDeleteKeepsRowCount(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		result := mustExecute(t, engine, "DELETE FROM users WHERE id IN (2, '4', 99)", "demo_db")
		if result.Affected() != 2 {
			t.Errorf("Expected 2 rows deleted, got %d", result.Affected())
		}

		users := instance.Snapshot()["demo_db"]["users"]
		if users.Rows != len(users.Data) {
			t.Errorf("Expected rows %d to match data length %d", users.Rows, len(users.Data))
		}
		for _, row := range users.Data {
			if id := row["id"]; id == int64(2) || id == int64(4) {
				t.Errorf("Row %v should have been deleted", id)
			}
		}
	})
}

func TestIntegrationAddColumn(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		mustExecute(t, engine, "ALTER TABLE departments ADD COLUMN budget DECIMAL(10,2)", "company_db")

		result := mustExecute(t, engine, "SELECT * FROM departments", "company_db")
		if !slices.Contains(result.Columns, "budget") {
			t.Fatalf("Expected budget in columns, got %v", result.Columns)
		}
		for _, row := range result.Data {
			if value, ok := row["budget"]; !ok || value != nil {
				t.Errorf("Expected null budget, got %v", value)
			}
		}
	})
}

func TestIntegrationScenarios(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		result := mustExecute(t, engine, "SELECT * FROM users ORDER BY name ASC LIMIT 2", "demo_db")
		if len(result.Data) != 2 || result.Data[0]["name"] != "Alice Brown" || result.Data[1]["name"] != "Bob Johnson" {
			t.Errorf("Unexpected ordered rows: %v", result.Data)
		}
		if result.TotalRows == nil || *result.TotalRows != 5 {
			t.Errorf("Expected totalRows 5, got %v", result.TotalRows)
		}
		if !reflect.DeepEqual(result.Columns, []string{"id", "name", "email", "created_at"}) {
			t.Errorf("Unexpected columns: %v", result.Columns)
		}

		result = mustExecute(t, engine, "INSERT INTO products (name, price, stock) VALUES ('Tablet', '299.99', '10')", "demo_db")
		if result.Affected() != 1 {
			t.Errorf("Expected 1 row affected, got %d", result.Affected())
		}
		result = mustExecute(t, engine, "SELECT * FROM products", "demo_db")
		if len(result.Data) != 4 || result.Data[3]["id"] != int64(4) {
			t.Errorf("Expected Tablet with id 4, got %v", result.Data)
		}

		result = mustExecute(t, engine, "UPDATE employees SET department_id = '2' WHERE emp_id = '103'", "company_db")
		if result.Affected() != 1 {
			t.Errorf("Expected 1 row affected, got %d", result.Affected())
		}
		for _, row := range instance.Snapshot()["company_db"]["employees"].Data {
			if row["emp_id"] == int64(103) && row["department_id"] != int64(2) {
				t.Errorf("Expected numeric department_id 2, got %#v", row["department_id"])
			}
		}

		result = engine.Execute("DROP TABLE nonexistent", "demo_db")
		if result.Success || result.Error != "Table 'nonexistent' does not exist." {
			t.Errorf("Unexpected result: %+v", result)
		}
	})
}

func TestIntegrationSessionScript(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		session := instance.Session(testIdentity, "")
		results := session.ExecuteScript(context.Background(), `
			CREATE DATABASE shop;
			USE shop;
			CREATE TABLE items (id INT AUTO_INCREMENT PRIMARY KEY, name VARCHAR(20));
			INSERT INTO nope (name) VALUES ('x');
			INSERT INTO items (name) VALUES ('Pen');
			SELECT * FROM items;
		`)
		if len(results) != 6 {
			t.Fatalf("Expected 6 results, got %d", len(results))
		}
		if results[3].Success {
			t.Error("Expected insert into missing table to fail")
		}
		if !results[5].Success || len(results[5].Data) != 1 {
			t.Errorf("Expected one item, got %+v", results[5])
		}
		if session.Database != "shop" {
			t.Errorf("Expected current database shop, got %s", session.Database)
		}
	})
}

func TestIntegrationErrorHandling(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance, engine *db.Engine) {
		before := instance.Snapshot()

		cases := []struct {
			query    string
			database string
			want     string
		}{
			{"SELECT * FROM users", "", "No database selected."},
			{"GRANT ALL ON *.* TO 'root'", "", "No database selected."},
			{"CREATE DATABASE demo_db", "", "Database 'demo_db' already exists."},
			{"DROP DATABASE missing", "", "Database 'missing' does not exist."},
			{"GRANT ALL ON *.* TO 'root'", "demo_db", "Unsupported or invalid SQL query in demo mode: grant all on *.* to 'root'..."},
			{"SELECT * FROM missing", "demo_db", "Table not found in database 'demo_db'"},
		}
		for _, tc := range cases {
			result := engine.Execute(tc.query, tc.database)
			if result.Success || result.Error != tc.want {
				t.Errorf("%q: expected %q, got %+v", tc.query, tc.want, result)
			}
		}

		if !reflect.DeepEqual(before, instance.Snapshot()) {
			t.Error("Failed statements must not change the server")
		}
	})
}

func TestIntegrationJournal(t *testing.T) {
	instance, err := OpenWithOptions(context.Background(), Options{Journal: true})
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	engine := instance.Engine(testIdentity)

	mustExecute(t, engine, "CREATE DATABASE shop", "")
	engine.Execute("CREATE DATABASE shop", "")
	mustExecute(t, engine, "SELECT * FROM users", "demo_db")

	history, err := instance.Store.Journal().History(10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 journal entries, got %d", len(history))
	}
	if history[0].Statement != "CREATE DATABASE shop" || history[0].Author != testIdentity.String() {
		t.Errorf("Unexpected entry: %+v", history[0])
	}

	snapshot, err := instance.Store.Journal().SnapshotAt(history[1].Id)
	if err != nil {
		t.Fatalf("SnapshotAt failed: %v", err)
	}
	if !reflect.DeepEqual(snapshot, ps.Seed()) {
		t.Error("Expected the first entry to hold the seed")
	}
}

func TestOpenWithSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := ps.ExportSnapshot(context.Background(), path, ps.Seed(), nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	instance, err := OpenWithOptions(context.Background(), Options{SeedSource: path})
	if err != nil {
		t.Fatalf("Failed to open seed: %v", err)
	}
	if !reflect.DeepEqual(instance.Snapshot(), ps.Seed()) {
		t.Error("Expected exported seed to load back unchanged")
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenWithOptions(context.Background(), Options{SeedSource: path}); err == nil {
		t.Error("Expected an error for an invalid seed")
	}
}
