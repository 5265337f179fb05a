package ps

import (
	"sync"
	"time"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"
	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB/core"
)

// SnapshotFile is the worktree path each journal commit writes the server to.
const SnapshotFile = "server.json"

var ErrNotInitialized = errors.New("journal not initialized")

// Journal records the history of a Store in an in-memory git repository.
// Every recorded change is a commit whose tree holds the full server
// snapshot after the change.
type Journal struct {
	repo *git.Repository
	mu   sync.Mutex
	last Fingerprint
	seen bool
}

func NewJournal() (*Journal, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to init journal repository")
	}
	return &Journal{repo: repo}, nil
}

// IsInitialized returns true if the journal has a repository.
func (journal *Journal) IsInitialized() bool {
	return journal != nil && journal.repo != nil
}

// Record commits snapshot as the state after statement. A snapshot equal to
// the previous one is not committed and ok is false.
func (journal *Journal) Record(identity core.Identity, statement string, snapshot core.Server) (txn Transaction, ok bool, err error) {
	if !journal.IsInitialized() {
		return Transaction{}, false, ErrNotInitialized
	}

	data, err := encodeServer(snapshot)
	if err != nil {
		return Transaction{}, false, err
	}
	fingerprint := fingerprintBytes(data)

	journal.mu.Lock()
	defer journal.mu.Unlock()

	if journal.seen && fingerprint == journal.last {
		return Transaction{}, false, nil
	}

	wt, err := journal.repo.Worktree()
	if err != nil {
		return Transaction{}, false, errors.Wrap(err, "failed to open journal worktree")
	}
	if err := util.WriteFile(wt.Filesystem, SnapshotFile, data, 0644); err != nil {
		return Transaction{}, false, errors.Wrap(err, "failed to write snapshot")
	}
	if _, err := wt.Add(SnapshotFile); err != nil {
		return Transaction{}, false, errors.Wrap(err, "failed to stage snapshot")
	}

	when := time.Now()
	hash, err := wt.Commit(statement, &git.CommitOptions{
		Author: &object.Signature{
			Name:  identity.Name,
			Email: identity.Email,
			When:  when,
		},
	})
	if err != nil {
		return Transaction{}, false, errors.Wrapf(err, "failed to commit %q", statement)
	}

	journal.last = fingerprint
	journal.seen = true

	return Transaction{
		Id:          hash.String(),
		When:        when,
		Author:      identity.String(),
		Statement:   statement,
		Fingerprint: fingerprint,
	}, true, nil
}
