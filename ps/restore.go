package ps

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB/core"
)

// ErrJournalDisabled is returned by operations that need a journal when the
// store has none attached.
var ErrJournalDisabled = errors.New("journal disabled")

// Find returns the entry whose id starts with prefix. The prefix must match
// exactly one entry.
func (journal *Journal) Find(prefix string) (Transaction, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return Transaction{}, errors.New("empty journal id")
	}

	history, err := journal.History(0)
	if err != nil {
		return Transaction{}, err
	}

	var found []Transaction
	for _, txn := range history {
		if strings.HasPrefix(txn.Id, prefix) {
			found = append(found, txn)
		}
	}
	switch len(found) {
	case 0:
		return Transaction{}, errors.Errorf("unknown journal entry %s", prefix)
	case 1:
		return found[0], nil
	default:
		return Transaction{}, errors.Errorf("ambiguous journal id %s", prefix)
	}
}

// Restore replaces the live state with the server recorded by the journal
// entry id, which may be abbreviated. The restore is journaled as a new entry
// authored by identity, so it can itself be undone.
func (store *Store) Restore(identity core.Identity, id string) (Transaction, error) {
	journal := store.Journal()
	if journal == nil {
		return Transaction{}, ErrJournalDisabled
	}

	target, err := journal.Find(id)
	if err != nil {
		return Transaction{}, err
	}
	server, err := journal.SnapshotAt(target.Id)
	if err != nil {
		return Transaction{}, err
	}

	change := Change{Identity: identity, Statement: fmt.Sprintf("RESTORE %s", shortId(target.Id))}
	err = store.Mutate(change, func(live core.Server) error {
		for name := range live {
			delete(live, name)
		}
		for name, database := range server {
			live[name] = database
		}
		return nil
	})
	return target, err
}
