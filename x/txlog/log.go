package txlog

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/orm"
)

// Log stores transactions in the order they were executed. Entries are never
// changed once appended.
type Log struct {
	log orm.Log
}

// NewLog returns the transaction log.
func NewLog() *Log {
	return &Log{log: orm.NewLog("txlog")}
}

// Append stores the transaction and sets its Index to its position.
func (l *Log) Append(db vault.KVStore, tx *Transaction) (uint64, error) {
	n, err := l.log.Len(db)
	if err != nil {
		return 0, err
	}
	tx.Index = n
	return l.log.Append(db, tx)
}

// Get returns the transaction at the given position.
func (l *Log) Get(db vault.ReadOnlyKVStore, idx uint64) (*Transaction, error) {
	var tx Transaction
	if err := l.log.Get(db, idx, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns all transactions in append order.
func (l *Log) List(db vault.ReadOnlyKVStore) ([]Transaction, error) {
	var txs []Transaction
	if err := l.log.All(db, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Len returns the number of transactions.
func (l *Log) Len(db vault.ReadOnlyKVStore) (uint64, error) {
	return l.log.Len(db)
}
