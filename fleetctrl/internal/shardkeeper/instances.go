package shardkeeper

import (
	"crypto/sha256"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/iv-menshenin/uniqid/registry"
	"github.com/iv-menshenin/uniqid/uid"
)

type (
	Keeper struct {
		ID uid.ID

		// mux serializes compound operations that look at several shards.
		mux       sync.RWMutex
		instances *registry.Table[shard]
		mineKeys  map[string]struct{}

		options Options
	}
	shard struct {
		shard Shard
		keys  map[string]struct{}
	}
	Options struct {
		PersistentKeys bool
	}
)

func New(self uid.ID, options *Options) *Keeper {
	var opts Options
	if options != nil {
		opts = *options
	}
	return &Keeper{
		ID:        self,
		instances: registry.New[shard](),
		mineKeys:  make(map[string]struct{}),
		options:   opts,
	}
}

// IDs Gives you remote shard identifiers in ascending order.
func (i *Keeper) IDs() []uid.ID {
	return i.instances.Keys()
}

// Mine Gives you all the keys associated with the current instance.
func (i *Keeper) Mine() []string {
	i.mux.RLock()
	var keys = make([]string, 0, len(i.mineKeys))
	for key := range i.mineKeys {
		keys = append(keys, key)
	}
	i.mux.RUnlock()
	slices.Sort(keys)
	return keys
}

// Hash Gives you a hash sum of sorted shard IDs that can be validated by all shards.
func (i *Keeper) Hash() [sha256.Size]byte {
	var allIDs = append(i.IDs(), i.ID)
	slices.SortFunc(allIDs, uid.ID.Compare)

	var data = make([]byte, 0, len(allIDs)*uid.Size)
	for _, idx := range allIDs {
		data = idx.AppendTo(data)
	}
	return sha256.Sum256(data)
}

// Len Gives the number of remote shards.
func (i *Keeper) Len() int {
	return i.instances.Len()
}

// Keep Remembers if the shard is not known or updates the activity date if it is a known shard.
// You need to call this function periodically for the shards to be considered active.
func (i *Keeper) Keep(id uid.ID, addr net.Addr) bool {
	if id == i.ID {
		return false
	}
	var isNew bool
	i.mux.Lock()
	i.instances.Upsert(id, func(ex shard, ok bool) shard {
		if !ok {
			isNew = true
			ex = shard{
				shard: Shard{ID: id},
				keys:  make(map[string]struct{}),
			}
		}
		ex.shard.Addr = addr
		ex.shard.Active = time.Now()
		return ex
	})
	i.mux.Unlock()
	return isNew
}

// Lookup Performs a search for a shard by the key it is associated with.
func (i *Keeper) Lookup(key string) (Shard, bool) {
	i.mux.RLock()
	instance, ok := i.searchLocked(key)
	i.mux.RUnlock()
	return instance, ok
}

// Shard Gives the data of a specific shard by identifier.
func (i *Keeper) Shard(id uid.ID) (Shard, bool) {
	instance, ok := i.instances.Get(id)
	return instance.shard, ok
}

func (i *Keeper) searchLocked(key string) (Shard, bool) {
	if _, ok := i.mineKeys[key]; ok {
		return i.Me(), ok
	}
	var (
		found Shard
		ok    bool
	)
	i.instances.Range(func(_ uid.ID, ins shard) bool {
		if _, ok = ins.keys[key]; ok {
			found = ins.shard
		}
		return !ok
	})
	return found, ok
}

func (i *Keeper) Me() Shard {
	return Shard{ID: i.ID}
}

// Own Remembers this key as belonging to himself.
func (i *Keeper) Own(key string) bool {
	var owned bool
	i.mux.Lock()
	if _, ok := i.searchLocked(key); !ok {
		i.mineKeys[key] = struct{}{}
		owned = true
	}
	i.mux.Unlock()
	return owned
}

// Forget Forgets that key, if that key belonged to himself.
func (i *Keeper) Forget(key string) {
	i.mux.Lock()
	delete(i.mineKeys, key)
	i.mux.Unlock()
}

// Save Associates this key with a specific shard.
func (i *Keeper) Save(id uid.ID, addr net.Addr, key string) error {
	i.mux.Lock()
	defer i.mux.Unlock()

	// already known
	if owner, found := i.searchLocked(key); found {
		if owner.ID != id {
			return fmt.Errorf("it's not yours, it's %s", owner.ID)
		}
		return nil
	}

	i.instances.Upsert(id, func(instance shard, ok bool) shard {
		if !ok {
			// a new shard
			instance = shard{
				shard: Shard{ID: id},
				keys:  make(map[string]struct{}),
			}
		}
		instance.shard.Addr = addr
		instance.shard.Active = time.Now()
		instance.keys[key] = struct{}{}
		return instance
	})
	return nil
}

func (i *Keeper) Reset(key string) {
	i.mux.Lock()
	delete(i.mineKeys, key)
	i.instances.Range(func(_ uid.ID, v shard) bool {
		delete(v.keys, key)
		return true
	})
	i.mux.Unlock()
}

// Cleanup forgets shards that have not been heard from for a while.
// With PersistentKeys they are only counted.
func (i *Keeper) Cleanup() int {
	i.mux.Lock()
	defer i.mux.Unlock()
	if i.options.PersistentKeys {
		var dead int
		i.instances.Range(func(_ uid.ID, v shard) bool {
			if !v.shard.Live() {
				dead++
			}
			return true
		})
		return dead
	}
	return i.instances.DeleteFunc(func(_ uid.ID, v shard) bool {
		return !v.shard.Live()
	})
}
