// Package storage provides the persistent key-value layer shared by the
// engine binaries, backed by BadgerDB the way the original GUI build used it
// for user preferences.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Ledger persists cumulative per-worker counters across process restarts,
// the resumable equivalent of the in-memory atomic counters
// datagen.DatagenWorker keeps for its own process lifetime.
type Ledger struct {
	db *badger.DB
}

// OpenLedger opens (creating if necessary) a BadgerDB ledger rooted at dir.
func OpenLedger(dir string) (*Ledger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Ledger{db: db}, nil
}

// Close releases the underlying database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func ledgerKey(workerID int) []byte {
	return []byte(fmt.Sprintf("worker:%d", workerID))
}

// Save stores games/positions counters for workerID, overwriting any
// previous value.
func (l *Ledger) Save(workerID int, games, positions uint64) error {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], games)
	binary.LittleEndian.PutUint64(buf[8:16], positions)

	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ledgerKey(workerID), buf)
	})
}

// Load returns the last saved games/positions counters for workerID, or
// (0, 0, nil) if nothing has been saved yet.
func (l *Ledger) Load(workerID int) (games, positions uint64, err error) {
	err = l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ledgerKey(workerID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if len(val) != 16 {
				return fmt.Errorf("storage: malformed ledger entry for worker %d", workerID)
			}
			games = binary.LittleEndian.Uint64(val[0:8])
			positions = binary.LittleEndian.Uint64(val[8:16])
			return nil
		})
	})
	return games, positions, err
}
