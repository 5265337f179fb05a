package ps

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB/core"
)

// Transaction is one journal entry.
type Transaction struct {
	Id          string      `json:"id"`
	When        time.Time   `json:"when"`
	Author      string      `json:"author"` // "Name <email>"
	Statement   string      `json:"statement"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s", shortId(transaction.Id), transaction.When.Format(time.RFC3339), transaction.Author, transaction.Statement)
}

func shortId(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func transactionOf(c *object.Commit) Transaction {
	author := ""
	if c.Author.Name != "" || c.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email)
	}
	return Transaction{
		Id:        c.Hash.String(),
		When:      c.Author.When,
		Author:    author,
		Statement: strings.TrimSpace(c.Message),
	}
}

// Latest returns the newest entry, or a zero Transaction when the journal is
// empty.
func (journal *Journal) Latest() Transaction {
	if !journal.IsInitialized() {
		return Transaction{}
	}
	journal.mu.Lock()
	defer journal.mu.Unlock()

	headRef, err := journal.repo.Head()
	if err != nil || headRef == nil {
		return Transaction{}
	}
	commit, err := journal.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}
	txn := transactionOf(commit)
	txn.Fingerprint = journal.last
	return txn
}

// History returns up to limit entries, newest first. A limit of zero or less
// returns the whole history.
func (journal *Journal) History(limit int) ([]Transaction, error) {
	if !journal.IsInitialized() {
		return nil, ErrNotInitialized
	}
	journal.mu.Lock()
	defer journal.mu.Unlock()

	if _, err := journal.repo.Head(); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to resolve journal head")
	}

	cIter, err := journal.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read journal log")
	}
	defer cIter.Close()

	var transactions []Transaction
	for limit <= 0 || len(transactions) < limit {
		c, err := cIter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to walk journal log")
		}
		transactions = append(transactions, transactionOf(c))
	}
	return transactions, nil
}

// SnapshotAt returns the server recorded by the given journal entry.
func (journal *Journal) SnapshotAt(id string) (core.Server, error) {
	if !journal.IsInitialized() {
		return nil, ErrNotInitialized
	}
	journal.mu.Lock()
	defer journal.mu.Unlock()

	commit, err := journal.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return nil, errors.Wrapf(err, "unknown journal entry %s", id)
	}
	file, err := commit.File(SnapshotFile)
	if err != nil {
		return nil, errors.Wrapf(err, "journal entry %s has no snapshot", id)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read snapshot")
	}
	return DecodeServer(strings.NewReader(contents))
}
