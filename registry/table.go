// Package registry keeps arbitrary values keyed by identifier.
//
// A Table is split into shards picked by ID.Hash, each shard behind its own
// lock, so that lookups of unrelated identifiers do not contend. Ordered
// access (Keys, Range) follows ID.Compare.
package registry

import (
	"slices"
	"sync"

	"github.com/iv-menshenin/uniqid/uid"
)

const shardCount = 16

type (
	Table[V any] struct {
		shards [shardCount]tableShard[V]
	}
	tableShard[V any] struct {
		mux   sync.RWMutex
		items map[uid.ID]V
	}
	entry[V any] struct {
		id    uid.ID
		value V
	}
)

func New[V any]() *Table[V] {
	var t Table[V]
	for n := range t.shards {
		t.shards[n].items = make(map[uid.ID]V)
	}
	return &t
}

func (t *Table[V]) shard(id uid.ID) *tableShard[V] {
	return &t.shards[id.Hash()%shardCount]
}

// Put stores v and reports whether an older value was replaced.
func (t *Table[V]) Put(id uid.ID, v V) bool {
	s := t.shard(id)
	s.mux.Lock()
	_, replaced := s.items[id]
	s.items[id] = v
	s.mux.Unlock()
	return replaced
}

func (t *Table[V]) Get(id uid.ID) (V, bool) {
	s := t.shard(id)
	s.mux.RLock()
	v, ok := s.items[id]
	s.mux.RUnlock()
	return v, ok
}

// Upsert replaces the value with whatever fn returns, under the shard lock.
func (t *Table[V]) Upsert(id uid.ID, fn func(old V, ok bool) V) V {
	s := t.shard(id)
	s.mux.Lock()
	old, ok := s.items[id]
	v := fn(old, ok)
	s.items[id] = v
	s.mux.Unlock()
	return v
}

func (t *Table[V]) Delete(id uid.ID) bool {
	s := t.shard(id)
	s.mux.Lock()
	_, ok := s.items[id]
	delete(s.items, id)
	s.mux.Unlock()
	return ok
}

// DeleteFunc removes every entry fn agrees to and returns how many were removed.
func (t *Table[V]) DeleteFunc(fn func(uid.ID, V) bool) int {
	var deleted int
	for n := range t.shards {
		s := &t.shards[n]
		s.mux.Lock()
		for id, v := range s.items {
			if fn(id, v) {
				delete(s.items, id)
				deleted++
			}
		}
		s.mux.Unlock()
	}
	return deleted
}

func (t *Table[V]) Len() int {
	var cnt int
	for n := range t.shards {
		s := &t.shards[n]
		s.mux.RLock()
		cnt += len(s.items)
		s.mux.RUnlock()
	}
	return cnt
}

// Keys gives all identifiers in ascending order.
func (t *Table[V]) Keys() []uid.ID {
	var ids = make([]uid.ID, 0, t.Len())
	for n := range t.shards {
		s := &t.shards[n]
		s.mux.RLock()
		for id := range s.items {
			ids = append(ids, id)
		}
		s.mux.RUnlock()
	}
	slices.SortFunc(ids, uid.ID.Compare)
	return ids
}

// Range walks a snapshot in ascending identifier order until fn returns false.
// fn may modify the table.
func (t *Table[V]) Range(fn func(uid.ID, V) bool) {
	var entries = make([]entry[V], 0, t.Len())
	for n := range t.shards {
		s := &t.shards[n]
		s.mux.RLock()
		for id, v := range s.items {
			entries = append(entries, entry[V]{id: id, value: v})
		}
		s.mux.RUnlock()
	}
	slices.SortFunc(entries, func(a, b entry[V]) int {
		return a.id.Compare(b.id)
	})
	for _, e := range entries {
		if !fn(e.id, e.value) {
			return
		}
	}
}
