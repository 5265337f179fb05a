package ps

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/logger"
)

// SystemIdentity authors journal entries that no user issued.
var SystemIdentity = core.Identity{Name: "demodb", Email: "demodb@localhost"}

// Change describes a mutation for the journal.
type Change struct {
	Identity  core.Identity
	Statement string
}

// Store owns the live server and the seed it resets to. All mutation goes
// through Mutate, which holds the write lock for the whole read-modify-write.
type Store struct {
	mu      sync.RWMutex
	seed    core.Server
	live    core.Server
	journal *Journal
}

// NewStore creates a store whose live state is a copy of seed. The caller
// keeps ownership of seed.
func NewStore(seed core.Server) *Store {
	if seed == nil {
		seed = core.Server{}
	}
	seed = seed.Clone()
	return &Store{
		seed: seed,
		live: seed.Clone(),
	}
}

// NewDemoStore creates a store seeded with the built-in demo databases.
func NewDemoStore() *Store {
	return NewStore(Seed())
}

// AttachJournal starts recording changes to journal. The current state is
// recorded as the first entry.
func (store *Store) AttachJournal(journal *Journal) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.journal = journal
	_, _, err := journal.Record(SystemIdentity, "Initial state", store.live)
	return err
}

func (store *Store) Journal() *Journal {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.journal
}

// Reset discards every change and restores a copy of the seed.
func (store *Store) Reset() {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.live = store.seed.Clone()
	store.record(Change{Identity: SystemIdentity, Statement: "RESET"})
}

// Snapshot returns a deep copy of the live state.
func (store *Store) Snapshot() core.Server {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.live.Clone()
}

// Read runs fn against the live state under the read lock. fn must not
// modify the server or retain references into it.
func (store *Store) Read(fn func(server core.Server) error) error {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return fn(store.live)
}

// Mutate runs fn against the live state under the write lock. When fn
// succeeds the change is recorded in the journal, if one is attached.
func (store *Store) Mutate(change Change, fn func(server core.Server) error) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := fn(store.live); err != nil {
		return err
	}
	store.record(change)
	return nil
}

// record must be called with the write lock held. Journal failures are
// logged and never fail the change itself.
func (store *Store) record(change Change) {
	if store.journal == nil {
		return
	}
	if _, _, err := store.journal.Record(change.Identity, change.Statement, store.live); err != nil {
		logger.WithFields(logrus.Fields{
			"statement": change.Statement,
			"error":     err,
		}).Warn("journal record failed")
	}
}

// DatabaseNames lists the live databases in ascending order.
func (store *Store) DatabaseNames() []string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	names := make([]string, 0, len(store.live))
	for name := range store.live {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint hashes the live state.
func (store *Store) Fingerprint() (Fingerprint, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return FingerprintOf(store.live)
}
