package history

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Index is a narrow badger-backed key/value store mapping a gallery URL
// to the status it last finished with, used purely to answer "have we
// already downloaded this?" in O(1) without scanning the JSON history
// file. It does not replace the task store or the history file; either
// of those remains the source of truth for everything beyond that one
// lookup.
type Index struct {
	db *badger.DB
}

// OpenIndex opens (creating if absent) a badger database rooted at dir.
func OpenIndex(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open duplicate-url index: %w", err)
	}
	return &Index{db: db}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

// Put records that url last finished with the given status.
func (i *Index) Put(url, status string) error {
	return i.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(url), []byte(status))
	})
}

// Lookup reports whether url has a recorded status, and what it was.
func (i *Index) Lookup(url string) (status string, found bool, err error) {
	err = i.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get([]byte(url))
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		found = true
		return item.Value(func(val []byte) error {
			status = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("lookup duplicate-url index: %w", err)
	}
	return status, found, nil
}

// Delete removes a URL from the index, e.g. after a history clear.
func (i *Index) Delete(url string) error {
	return i.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(url))
	})
}
