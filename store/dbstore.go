package store

import (
	"bytes"
	"encoding/binary"

	"github.com/keygate/vault/errors"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// versionKey is where DBStore keeps its commit counter. The leading zero byte
// keeps it out of every bucket prefix.
var versionKey = []byte("\x00version")

// DBStore is a CommitKVStore over a plain tendermint database. All writes of a
// cache wrap are flushed in a single synchronous batch. No merkle hash is
// computed.
type DBStore struct {
	db      dbm.DB
	version int64
}

var _ CommitKVStore = (*DBStore)(nil)

// NewDBStore wraps the database and loads its latest version.
func NewDBStore(db dbm.DB) (*DBStore, error) {
	s := &DBStore{db: db}
	if err := s.LoadLatestVersion(); err != nil {
		return nil, err
	}
	return s, nil
}

// MemDBStore returns a DBStore over an in-memory database.
func MemDBStore() *DBStore {
	return &DBStore{db: dbm.NewMemDB()}
}

// NewGoLevelDBStore opens (or creates) a leveldb database called name in dir.
func NewGoLevelDBStore(name, dir string) (*DBStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s/%s: %s", dir, name, err)
	}
	return NewDBStore(db)
}

// Get returns the value at last committed state.
func (s *DBStore) Get(key []byte) ([]byte, error) {
	return s.db.Get(key), nil
}

// CacheWrap returns a scratch pad whose Write flushes atomically to disk.
func (s *DBStore) CacheWrap() KVCacheWrap {
	back := dbAdapter{s.db}
	return NewBTreeCacheWrap(back, &dbBatch{batch: s.db.NewBatch()}, nil)
}

// Commit bumps the version counter.
func (s *DBStore) Commit() (CommitID, error) {
	s.version++
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(s.version))
	s.db.SetSync(versionKey, raw)
	return CommitID{Version: s.version}, nil
}

// LoadLatestVersion reads the version counter.
func (s *DBStore) LoadLatestVersion() error {
	raw := s.db.Get(versionKey)
	switch len(raw) {
	case 0:
		s.version = 0
	case 8:
		s.version = int64(binary.BigEndian.Uint64(raw))
	default:
		return errors.Wrapf(errors.ErrDatabase, "corrupted version of %d bytes", len(raw))
	}
	return nil
}

// LatestVersion returns the last committed version.
func (s *DBStore) LatestVersion() (CommitID, error) {
	return CommitID{Version: s.version}, nil
}

// Close releases the database.
func (s *DBStore) Close() {
	s.db.Close()
}

// dbAdapter exposes a tendermint database as a ReadOnlyKVStore.
type dbAdapter struct {
	db dbm.DB
}

var _ ReadOnlyKVStore = dbAdapter{}

func (a dbAdapter) Get(key []byte) ([]byte, error) {
	return a.db.Get(key), nil
}

func (a dbAdapter) Has(key []byte) (bool, error) {
	return a.db.Has(key), nil
}

func (a dbAdapter) Iterator(start, end []byte) (Iterator, error) {
	return readAll(a.db.Iterator(start, end)), nil
}

func (a dbAdapter) ReverseIterator(start, end []byte) (Iterator, error) {
	return readAll(a.db.ReverseIterator(start, end)), nil
}

func readAll(it dbm.Iterator) Iterator {
	defer it.Close()
	var res []Model
	for ; it.Valid(); it.Next() {
		if bytes.Equal(it.Key(), versionKey) {
			continue
		}
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
	}
	return NewSliceIterator(res)
}

// dbBatch flushes with a synchronous write.
type dbBatch struct {
	batch dbm.Batch
}

var _ Batch = (*dbBatch)(nil)

func (b *dbBatch) Set(key, value []byte) error {
	b.batch.Set(key, value)
	return nil
}

func (b *dbBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *dbBatch) Write() error {
	b.batch.WriteSync()
	return nil
}
