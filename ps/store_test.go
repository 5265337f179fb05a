package ps

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/DemoDB/core"
)

var tester = core.Identity{Name: "tester", Email: "tester@example.com"}

func TestSeedShape(t *testing.T) {
	seed := Seed()

	require.Len(t, seed, 3)
	assert.Len(t, seed["demo_db"], 2)
	assert.Len(t, seed["company_db"], 2)
	assert.Len(t, seed["system_db"], 1)

	for dbName, database := range seed {
		for tableName, table := range database {
			assert.Equal(t, tableName, table.Name)
			assert.Equal(t, len(table.Data), table.Rows, "%s.%s", dbName, tableName)

			primaries := 0
			for _, column := range table.Schema {
				if column.Key == core.PrimaryKey {
					primaries++
				}
				if column.IsAutoIncrement() {
					assert.Equal(t, core.PrimaryKey, column.Key)
				}
			}
			assert.LessOrEqual(t, primaries, 1)
		}
	}

	logs := seed["system_db"]["logs"]
	assert.Equal(t, "MyISAM", logs.Engine)
	assert.Equal(t, "utf8_general_ci", logs.Collation)

	departmentID, ok := seed["company_db"]["employees"].Column("department_id")
	require.True(t, ok)
	assert.Equal(t, &core.Reference{Table: "departments", Column: "dept_id"}, departmentID.References)
}

func TestStoreSnapshotIsDetached(t *testing.T) {
	store := NewDemoStore()

	snapshot := store.Snapshot()
	snapshot["demo_db"]["users"].Data[0]["name"] = "Mallory"
	delete(snapshot, "company_db")

	again := store.Snapshot()
	assert.Equal(t, "John Doe", again["demo_db"]["users"].Data[0]["name"])
	assert.Contains(t, again, "company_db")
}

func TestStoreSeedIsDetached(t *testing.T) {
	seed := Seed()
	store := NewStore(seed)

	seed["demo_db"]["users"].Data = nil
	assert.Equal(t, 5, len(store.Snapshot()["demo_db"]["users"].Data))
}

func TestStoreMutateAndReset(t *testing.T) {
	store := NewDemoStore()
	before, err := store.Fingerprint()
	require.NoError(t, err)

	err = store.Mutate(Change{Identity: tester, Statement: "CREATE DATABASE x"}, func(server core.Server) error {
		server["x"] = core.Database{}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"company_db", "demo_db", "system_db", "x"}, store.DatabaseNames())

	after, err := store.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	store.Reset()
	assert.Equal(t, []string{"company_db", "demo_db", "system_db"}, store.DatabaseNames())
	assert.Equal(t, Seed(), store.Snapshot())

	reset, err := store.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, before, reset)
}

func TestStoreMutateErrorSkipsJournal(t *testing.T) {
	store := NewDemoStore()
	journal, err := NewJournal()
	require.NoError(t, err)
	require.NoError(t, store.AttachJournal(journal))

	boom := errors.New("boom")
	err = store.Mutate(Change{Identity: tester, Statement: "DROP DATABASE nope"}, func(server core.Server) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, store.Mutate(Change{Identity: tester, Statement: "DROP DATABASE system_db"}, func(server core.Server) error {
		delete(server, "system_db")
		return nil
	}))

	history, err := journal.History(0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "DROP DATABASE system_db", history[0].Statement)
	assert.Equal(t, "tester <tester@example.com>", history[0].Author)
	assert.Same(t, journal, store.Journal())
}

func TestStoreConcurrentMutations(t *testing.T) {
	store := NewStore(core.Server{"db": core.Database{"t": &core.Table{Name: "t"}}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Mutate(Change{Identity: tester, Statement: "INSERT"}, func(server core.Server) error {
				table := server["db"]["t"]
				table.Data = append(table.Data, core.Row{"id": int64(len(table.Data) + 1)})
				table.Rows = len(table.Data)
				return nil
			})
			_ = store.Read(func(server core.Server) error {
				_ = len(server["db"]["t"].Data)
				return nil
			})
		}()
	}
	wg.Wait()

	table := store.Snapshot()["db"]["t"]
	assert.Len(t, table.Data, 50)
	assert.Equal(t, 50, table.Rows)
	for i, row := range table.Data {
		assert.Equal(t, int64(i+1), row["id"])
	}
}
