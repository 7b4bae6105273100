package orm

import (
	"reflect"

	"github.com/keygate/vault"
	"github.com/keygate/vault/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Validate() error
}

// ModelBucket stores models of a single type under a common key prefix.
type ModelBucket struct {
	name   string
	prefix []byte
}

// NewModelBucket returns a bucket storing its entities under "<name>:".
func NewModelBucket(name string) ModelBucket {
	return ModelBucket{
		name:   name,
		prefix: []byte(name + ":"),
	}
}

// Name returns the name of the bucket.
func (b ModelBucket) Name() string {
	return b.name
}

// DBKey returns the full database key of the entity with the given primary
// key.
func (b ModelBucket) DBKey(key []byte) []byte {
	res := make([]byte, 0, len(b.prefix)+len(key))
	res = append(res, b.prefix...)
	return append(res, key...)
}

// One queries the database for a single model instance. Result is loaded into
// given destination model. It returns ErrNotFound if the entity does not
// exist in the database.
func (b ModelBucket) One(db vault.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %x", b.name, key)
	}
	return Unmarshal(raw, dest)
}

// Has returns true if an entity with the given key exists.
func (b ModelBucket) Has(db vault.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put validates and saves given model in the database.
func (b ModelBucket) Put(db vault.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database. It
// returns ErrNotFound if an entity with given key does not exist.
func (b ModelBucket) Delete(db vault.KVStore, key []byte) error {
	ok, err := b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %x", b.name, key)
	}
	return db.Delete(b.DBKey(key))
}

// All loads every entity of the bucket, in key order, into dest which must be
// a pointer to a slice of models or of model pointers. Primary keys are
// returned in the same order.
func (b ModelBucket) All(db vault.ReadOnlyKVStore, dest interface{}) ([][]byte, error) {
	slice := reflect.ValueOf(dest)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a pointer to a slice", dest)
	}
	slice = slice.Elem()
	elemType := slice.Type().Elem()

	it, err := db.Iterator(b.prefix, prefixEnd(b.prefix))
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var keys [][]byte
	for {
		key, raw, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		if err != nil {
			return nil, err
		}

		var item reflect.Value
		if elemType.Kind() == reflect.Ptr {
			item = reflect.New(elemType.Elem())
		} else {
			item = reflect.New(elemType)
		}
		if err := Unmarshal(raw, item.Interface()); err != nil {
			return nil, err
		}
		if elemType.Kind() != reflect.Ptr {
			item = item.Elem()
		}
		slice.Set(reflect.Append(slice, item))
		keys = append(keys, key[len(b.prefix):])
	}
	return keys, nil
}

// prefixEnd returns the smallest key greater than all keys with the given
// prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
