package shardkeeper

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-menshenin/uniqid/uid"
)

func addr(last byte) net.Addr {
	return &net.UDPAddr{IP: net.IPv4(10, 0, 0, last)}
}

func TestKeepAndLookup(t *testing.T) {
	self, a, b := uid.New(), uid.New(), uid.New()
	k := New(self, nil)

	assert.False(t, k.Keep(self, addr(1)), "self is never a remote shard")
	assert.True(t, k.Keep(a, addr(2)))
	assert.False(t, k.Keep(a, addr(2)))
	assert.True(t, k.Keep(b, addr(3)))
	assert.Equal(t, 2, k.Len())

	require.NoError(t, k.Save(a, addr(2), "alpha"))
	require.NoError(t, k.Save(a, addr(2), "alpha"))
	assert.Error(t, k.Save(b, addr(3), "alpha"))

	owner, ok := k.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, a, owner.ShardID())
	assert.False(t, owner.Me())
	assert.True(t, owner.Live())

	assert.True(t, k.Own("beta"))
	assert.False(t, k.Own("alpha"))
	me, ok := k.Lookup("beta")
	require.True(t, ok)
	assert.True(t, me.Me())
	assert.Equal(t, []string{"beta"}, k.Mine())

	k.Forget("beta")
	_, ok = k.Lookup("beta")
	assert.False(t, ok)

	k.Reset("alpha")
	_, ok = k.Lookup("alpha")
	assert.False(t, ok)
}

func TestHashIndependentOfOrder(t *testing.T) {
	a, b, c := uid.New(), uid.New(), uid.New()

	k1 := New(a, nil)
	k1.Keep(b, addr(2))
	k1.Keep(c, addr(3))

	k2 := New(c, nil)
	k2.Keep(a, addr(1))
	k2.Keep(b, addr(2))

	k3 := New(b, nil)
	k3.Keep(a, addr(1))

	assert.Equal(t, k1.Hash(), k2.Hash())
	assert.NotEqual(t, k1.Hash(), k3.Hash())
	assert.Len(t, k1.IDs(), 2)
	assert.True(t, k1.IDs()[0].Less(k1.IDs()[1]))
}

func TestCleanup(t *testing.T) {
	self, a, b := uid.New(), uid.New(), uid.New()
	for _, persistent := range []bool{false, true} {
		k := New(self, &Options{PersistentKeys: persistent})
		k.Keep(a, addr(2))
		k.Keep(b, addr(3))

		k.instances.Upsert(a, func(old shard, _ bool) shard {
			old.shard.Active = time.Now().Add(-2 * activeTime)
			return old
		})
		assert.Equal(t, 1, k.Cleanup())

		_, ok := k.Shard(a)
		assert.Equal(t, persistent, ok)
		_, ok = k.Shard(b)
		assert.True(t, ok)
	}
}

func TestShardString(t *testing.T) {
	id := uid.MustParse("00112233445566778899aabbccddeeff")
	assert.Equal(t, "00112233445566778899aabbccddeeff@self", Shard{ID: id}.String())
	assert.Equal(t, "00112233445566778899aabbccddeeff@10.0.0.7:0", Shard{ID: id, Addr: addr(7)}.String())
}
