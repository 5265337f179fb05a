// Package ps holds the server state of a DemoDB instance.
//
// A Store owns the live server and the seed it was created from. Reads take
// a shared lock and mutations an exclusive one, so statements never
// interleave:
//
//	store := ps.NewDemoStore()
//	err := store.Mutate(ps.Change{Identity: id, Statement: "CREATE DATABASE x"},
//	    func(server core.Server) error {
//	        server["x"] = core.Database{}
//	        return nil
//	    })
//	snapshot := store.Snapshot() // deep copy
//	store.Reset()                // back to the seed
//
// # Journal
//
// A Journal records every successful change as a commit in an in-memory git
// repository. Each commit stores the whole server as server.json and is
// authored by the identity that issued the statement:
//
//	journal, _ := ps.NewJournal()
//	_ = store.AttachJournal(journal)
//	history, _ := journal.History(10)
//
// Store.Restore brings the live state back to any journaled entry and
// journals the restore itself.
//
// # Seed sources
//
// LoadSeed reads a JSON server document from a local path, file://,
// http(s):// or s3:// URL. ExportSnapshot writes one back.
package ps
