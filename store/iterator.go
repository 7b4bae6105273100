package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/keygate/vault/errors"
)

// SliceIterator iterates over a preloaded slice of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

// Next returns the next key-value pair, or ErrIteratorDone.
func (s *SliceIterator) Next() (key, value []byte, err error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

// Release drops the preloaded data.
func (s *SliceIterator) Release() {
	s.data = nil
}

// collect reads all cached items within [start, end) in ascending order.
func collect(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	add := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(add)
	case start == nil:
		bt.AscendLessThan(bkey{end}, add)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, add)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, add)
	}
	return items
}

// drain reads everything the parent iterator returns.
func drain(it Iterator) ([]Model, error) {
	defer it.Release()
	var res []Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, Model{Key: key, Value: value})
	}
}

// merge combines cached items with the parent content. Both must be sorted
// in the same direction. Cached items win on equal keys and deleted items
// hide the parent value.
func merge(cached []btree.Item, parent []Model, descending bool) []Model {
	res := make([]Model, 0, len(cached)+len(parent))
	before := func(a, b []byte) bool {
		if descending {
			return bytes.Compare(a, b) > 0
		}
		return bytes.Compare(a, b) < 0
	}
	emit := func(item btree.Item) {
		if s, ok := item.(setItem); ok {
			res = append(res, Model{Key: s.key, Value: s.value})
		}
	}

	i, j := 0, 0
	for i < len(cached) && j < len(parent) {
		ck := cached[i].(keyer).Key()
		pk := parent[j].Key
		switch {
		case bytes.Equal(ck, pk):
			emit(cached[i])
			i++
			j++
		case before(ck, pk):
			emit(cached[i])
			i++
		default:
			res = append(res, parent[j])
			j++
		}
	}
	for ; i < len(cached); i++ {
		emit(cached[i])
	}
	return append(res, parent[j:]...)
}

func reverseItems(items []btree.Item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
