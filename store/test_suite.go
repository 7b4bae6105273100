package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/keygate/vault/errors"
	"github.com/keygate/vault/vaulttest/assert"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSuite provides checks that any CacheableKVStore implementation must
// pass. Each store package customizes only the constructor.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns an empty store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// Run runs every check as a subtest.
func (s *TestSuite) Run(t *testing.T) {
	t.Run("cache layers", s.CacheLayers)
	t.Run("cache conflicts", s.CacheConflicts)
	t.Run("iterator ranges", s.IteratorRanges)
	t.Run("iterator matches sorted writes", s.IteratorProperty)
}

// CacheLayers checks that writes stay in a cache wrap until it is written
// and vanish when it is discarded.
func (s *TestSuite) CacheLayers(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	signers, threshold, proposal := []byte("signers:set"), []byte("_c:threshold"), []byte("proposal:0")

	s.AssertGetHas(t, base, signers, nil, false)
	assert.Nil(t, base.Set(signers, []byte("alice")))
	s.AssertGetHas(t, base, signers, []byte("alice"), true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, signers, []byte("alice"), true)
	assert.Nil(t, cache.Set(threshold, []byte("2")))
	s.AssertGetHas(t, cache, threshold, []byte("2"), true)
	s.AssertGetHas(t, base, threshold, nil, false)

	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, threshold, []byte("2"), true)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(proposal, []byte("pending")))
	assert.Nil(t, discarded.Delete(signers))
	discarded.Discard()
	s.AssertGetHas(t, base, proposal, nil, false)
	s.AssertGetHas(t, base, signers, []byte("alice"), true)

	deleted := base.CacheWrap()
	assert.Nil(t, deleted.Delete(signers))
	s.AssertGetHas(t, deleted, signers, nil, false)
	assert.Nil(t, deleted.Write())
	s.AssertGetHas(t, base, signers, nil, false)
	s.AssertGetHas(t, base, threshold, []byte("2"), true)
}

// CacheConflicts checks that a cache wrap overrides and deletes values of
// its parent without touching it.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	cases := map[string]struct {
		parent     []Op
		child      []Op
		wantParent []Model
		wantChild  []Model
	}{
		"overwrite": {
			parent:     []Op{SetOp([]byte("a"), []byte("1"))},
			child:      []Op{SetOp([]byte("a"), []byte("2"))},
			wantParent: []Model{Pair([]byte("a"), []byte("1"))},
			wantChild:  []Model{Pair([]byte("a"), []byte("2"))},
		},
		"delete then set again": {
			parent:     []Op{SetOp([]byte("a"), []byte("1"))},
			child:      []Op{DelOp([]byte("a")), SetOp([]byte("a"), []byte("3"))},
			wantParent: []Model{Pair([]byte("a"), []byte("1"))},
			wantChild:  []Model{Pair([]byte("a"), []byte("3"))},
		},
		"overwrite one, delete another, add a third": {
			parent:     []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("b"), []byte("1"))},
			child:      []Op{SetOp([]byte("a"), []byte("2")), DelOp([]byte("b")), SetOp([]byte("c"), []byte("2"))},
			wantParent: []Model{Pair([]byte("a"), []byte("1")), Pair([]byte("b"), []byte("1")), Pair([]byte("c"), nil)},
			wantChild:  []Model{Pair([]byte("a"), []byte("2")), Pair([]byte("b"), nil), Pair([]byte("c"), []byte("2"))},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()
			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			for _, m := range tc.wantParent {
				s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
			for _, m := range tc.wantChild {
				s.AssertGetHas(t, child, m.Key, m.Value, m.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, m := range tc.wantChild {
				s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
		})
	}
}

// IteratorRanges checks range bounds on a cache wrap merging its own
// writes with the parent.
func (s *TestSuite) IteratorRanges(t *testing.T) {
	a, b, c, d := Pair([]byte("a"), []byte("1")), Pair([]byte("b"), []byte("1")), Pair([]byte("c"), []byte("1")), Pair([]byte("d"), []byte("1"))
	b2 := Pair(b.Key, []byte("2"))

	parent := []Op{SetOp(a.Key, a.Value), SetOp(b.Key, b.Value), SetOp(d.Key, d.Value)}
	child := []Op{SetOp(b2.Key, b2.Value), SetOp(c.Key, c.Value), DelOp(d.Key)}

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"all":              {want: []Model{a, b2, c}},
		"all reversed":     {reverse: true, want: []Model{c, b2, a}},
		"from b":           {start: b.Key, want: []Model{b2, c}},
		"before c":         {end: c.Key, want: []Model{a, b2}},
		"b to d reversed":  {start: b.Key, end: d.Key, reverse: true, want: []Model{c, b2}},
		"deleted key only": {start: d.Key},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			for _, op := range parent {
				assert.Nil(t, op.Apply(base))
			}
			cache := base.CacheWrap()
			for _, op := range child {
				assert.Nil(t, op.Apply(cache))
			}
			assertIterates(t, cache, tc.start, tc.end, tc.reverse, tc.want)
		})
	}
}

// IteratorProperty writes random keys to a parent and a cache wrap on top of
// it and expects the iterators of the wrap to return the surviving keys in
// order.
func (s *TestSuite) IteratorProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 25
	properties := gopter.NewProperties(params)

	properties.Property("iteration is sorted and complete", prop.ForAll(
		func(parentKeys, childKeys, deleted []uint8) bool {
			base, cleanup := s.makeBase()
			defer cleanup()

			want := make(map[string][]byte)
			for _, k := range parentKeys {
				key := []byte(fmt.Sprintf("k%03d", k))
				want[string(key)] = []byte("parent")
				assert.Nil(t, base.Set(key, []byte("parent")))
			}
			cache := base.CacheWrap()
			for _, k := range childKeys {
				key := []byte(fmt.Sprintf("k%03d", k))
				want[string(key)] = []byte("child")
				assert.Nil(t, cache.Set(key, []byte("child")))
			}
			for _, k := range deleted {
				key := []byte(fmt.Sprintf("k%03d", k))
				delete(want, string(key))
				assert.Nil(t, cache.Delete(key))
			}

			expected := make([]Model, 0, len(want))
			for k, v := range want {
				expected = append(expected, Pair([]byte(k), v))
			}
			sort.Slice(expected, func(i, j int) bool {
				return bytes.Compare(expected[i].Key, expected[j].Key) < 0
			})
			reversed := make([]Model, len(expected))
			for i, m := range expected {
				reversed[len(expected)-1-i] = m
			}

			return iterates(cache, false, expected) && iterates(cache, true, reversed)
		},
		gen.SliceOf(gen.UInt8Range(0, 63)),
		gen.SliceOf(gen.UInt8Range(0, 63)),
		gen.SliceOf(gen.UInt8Range(0, 63)),
	))
	properties.TestingRun(t)
}

func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func assertIterates(t testing.TB, kv ReadOnlyKVStore, start, end []byte, reverse bool, want []Model) {
	t.Helper()
	got, err := drain(openIterator(t, kv, start, end, reverse))
	assert.Nil(t, err)
	if len(got) != len(want) {
		t.Fatalf("want %d models, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		assert.Equal(t, want[i].Key, got[i].Key)
		assert.Equal(t, want[i].Value, got[i].Value)
	}
}

func openIterator(t testing.TB, kv ReadOnlyKVStore, start, end []byte, reverse bool) Iterator {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if reverse {
		it, err = kv.ReverseIterator(start, end)
	} else {
		it, err = kv.Iterator(start, end)
	}
	assert.Nil(t, err)
	return it
}

func iterates(kv ReadOnlyKVStore, reverse bool, want []Model) bool {
	var (
		it  Iterator
		err error
	)
	if reverse {
		it, err = kv.ReverseIterator(nil, nil)
	} else {
		it, err = kv.Iterator(nil, nil)
	}
	if err != nil {
		return false
	}
	defer it.Release()
	for _, m := range want {
		key, value, err := it.Next()
		if err != nil || !bytes.Equal(key, m.Key) || !bytes.Equal(value, m.Value) {
			return false
		}
	}
	_, _, err = it.Next()
	return errors.ErrIteratorDone.Is(err)
}
