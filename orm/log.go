package orm

import (
	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// Log is an append-only list of models. The index segment is a sequence
// holding the length, the payload segment stores each element under its big
// endian position. Elements can never be modified nor removed.
type Log struct {
	length  Sequence
	payload ModelBucket
}

// NewLog returns a log stored under the given name.
func NewLog(name string) Log {
	return Log{
		length:  NewSequence(name, "len"),
		payload: NewModelBucket(name),
	}
}

// Append adds the model at the end of the log and returns its position.
func (l Log) Append(db vault.KVStore, m Model) (uint64, error) {
	if err := m.Validate(); err != nil {
		return 0, errors.Wrap(err, "invalid model")
	}
	idx, err := l.length.Next(db)
	if err != nil {
		return 0, errors.Wrap(err, "log index")
	}
	key := EncodeSequence(idx)
	if ok, err := l.payload.Has(db, key); err != nil {
		return 0, err
	} else if ok {
		return 0, errors.Wrapf(errors.ErrImmutable, "log entry %d already exists", idx)
	}
	if err := l.payload.Put(db, key, m); err != nil {
		return 0, err
	}
	return idx, nil
}

// Len returns the number of elements.
func (l Log) Len(db vault.ReadOnlyKVStore) (uint64, error) {
	return l.length.Peek(db)
}

// Get loads the element at the given position.
func (l Log) Get(db vault.ReadOnlyKVStore, idx uint64, dest Model) error {
	return l.payload.One(db, EncodeSequence(idx), dest)
}

// All loads all elements in append order, see ModelBucket.All.
func (l Log) All(db vault.ReadOnlyKVStore, dest interface{}) error {
	_, err := l.payload.All(db, dest)
	return err
}
