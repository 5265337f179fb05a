package DemoDB

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/ps"
)

type Instance struct {
	Store *ps.Store
}

// Options selects where the seed comes from and whether changes are
// journaled.
type Options struct {
	// SeedSource is a local path or a file://, http(s):// or s3:// URL.
	// Empty means the built-in demo data.
	SeedSource string
	S3         *ps.S3Config
	Journal    bool
}

func Open(store *ps.Store) *Instance {
	return &Instance{
		Store: store,
	}
}

// OpenDemo opens an instance over the built-in demo data.
func OpenDemo() *Instance {
	return Open(ps.NewDemoStore())
}

func OpenWithOptions(ctx context.Context, options Options) (*Instance, error) {
	seed := ps.Seed()
	if options.SeedSource != "" {
		loaded, err := ps.LoadSeed(ctx, options.SeedSource, options.S3)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load seed")
		}
		seed = loaded
	}

	store := ps.NewStore(seed)
	if options.Journal {
		journal, err := ps.NewJournal()
		if err != nil {
			return nil, err
		}
		if err := store.AttachJournal(journal); err != nil {
			return nil, errors.Wrap(err, "failed to start journal")
		}
	}
	return Open(store), nil
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Store, identity)
}

// Session starts a session for identity with database as the current
// database.
func (instance *Instance) Session(identity core.Identity, database string) *db.Session {
	return db.NewSession(instance.Engine(identity), database)
}

// Reset restores the seed, discarding every change.
func (instance *Instance) Reset() {
	instance.Store.Reset()
}

// Snapshot returns a copy of the current server.
func (instance *Instance) Snapshot() core.Server {
	return instance.Store.Snapshot()
}
