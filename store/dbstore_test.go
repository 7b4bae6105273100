package store

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/keygate/vault/vaulttest/assert"
	dbm "github.com/tendermint/tendermint/libs/db"
)

func TestDBStoreSuite(t *testing.T) {
	suite := NewTestSuite(func() (CacheableKVStore, func()) {
		s, err := NewDBStore(dbm.NewMemDB())
		assert.Nil(t, err)
		return s.CacheWrap(), func() {}
	})
	suite.Run(t)
}

func TestDBStorePersistence(t *testing.T) {
	dir, err := ioutil.TempDir("", "dbstore")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	s, err := NewGoLevelDBStore("vault", dir)
	assert.Nil(t, err)

	cache := s.CacheWrap()
	assert.Nil(t, cache.Set([]byte("signer"), []byte("alice")))

	// not visible before write
	got, err := s.Get([]byte("signer"))
	assert.Nil(t, err)
	assert.Nil(t, got)

	assert.Nil(t, cache.Write())
	id, err := s.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	s.Close()

	s, err = NewGoLevelDBStore("vault", dir)
	assert.Nil(t, err)
	defer s.Close()
	id, err = s.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	got, err = s.Get([]byte("signer"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("alice"), got)

	// the version counter is not visible to iterators
	it, err := s.CacheWrap().Iterator(nil, nil)
	assert.Nil(t, err)
	key, _, err := it.Next()
	assert.Nil(t, err)
	assert.Equal(t, []byte("signer"), key)
}
