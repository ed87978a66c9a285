package fleetctrl_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-menshenin/uniqid/fleetctrl"
	"github.com/iv-menshenin/uniqid/platform"
	"github.com/iv-menshenin/uniqid/transport"
	"github.com/iv-menshenin/uniqid/uid"
)

const discoveryInterval = 100 * time.Millisecond

type testFleet struct {
	t       *testing.T
	network *transport.DummyNetwork
	nodes   []*fleetctrl.Manager
	wg      sync.WaitGroup
}

func newTestFleet(t *testing.T, cnt int) *testFleet {
	t.Helper()
	var fleet = testFleet{
		t:       t,
		network: transport.NewDummy(),
	}
	for n := 0; n < cnt; n++ {
		m := fleetctrl.New(fleet.network.NewListener(), &fleetctrl.Options{
			DiscoveryInterval: discoveryInterval,
		})
		fleet.nodes = append(fleet.nodes, m)
		fleet.wg.Add(1)
		go func() {
			defer fleet.wg.Done()
			if err := m.Manage(); err != nil {
				t.Errorf("Manager stopped with %+v", err)
			}
		}()
	}
	t.Cleanup(fleet.Close)
	return &fleet
}

// waitArmed waits until every node knows every other one and agrees on the fleet.
func (f *testFleet) waitArmed() {
	f.t.Helper()
	require.Eventually(f.t, func() bool {
		for _, m := range f.nodes {
			if !m.Status() || len(m.Fleet()) != len(f.nodes)-1 {
				return false
			}
		}
		return true
	}, 15*time.Second, 20*time.Millisecond)
}

func (f *testFleet) Close() {
	for _, m := range f.nodes {
		m.Stop()
	}
	f.wg.Wait()
	f.network.Close()
}

func TestSingleNode(t *testing.T) {
	fleet := newTestFleet(t, 1)
	m := fleet.nodes[0]

	select {
	case <-m.NotifyArmed():
	case <-time.After(5 * time.Second):
		t.Fatal("not armed")
	}
	// already armed, must not block
	<-m.NotifyArmed()

	shard, err := m.CheckKey(context.Background(), "alone")
	require.NoError(t, err)
	assert.True(t, shard.Me())
	assert.Equal(t, m.ID(), shard.ShardID())
	assert.Equal(t, []string{"alone"}, m.Keys(context.Background()))
	assert.Empty(t, m.Fleet())

	_, err = m.CheckKey(context.Background(), strings.Repeat("k", fleetctrl.MaximumKeyLength+1))
	assert.ErrorIs(t, err, fleetctrl.ErrKeyTooLong)
	assert.ErrorIs(t, m.Manage(), fleetctrl.ErrWrongState)
}

func TestFleetAgreesOnOwner(t *testing.T) {
	const (
		nodesCount = 4
		keysCount  = 8
	)
	fleet := newTestFleet(t, nodesCount)
	fleet.waitArmed()

	for _, m := range fleet.nodes {
		var peers = m.Peers()
		require.Len(t, peers, nodesCount-1)
		for n := 1; n < len(peers); n++ {
			assert.True(t, peers[n-1].ShardID().Less(peers[n].ShardID()))
		}
		peer, ok := m.Peer(peers[0].ShardID())
		require.True(t, ok)
		assert.Equal(t, peers[0].NetAddr(), peer.NetAddr())
	}

	var owners = make(map[string]uid.ID)
	for k := 0; k < keysCount; k++ {
		key := fmt.Sprintf("%s-%d", t.Name(), k)
		m := fleet.nodes[k%nodesCount]
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		shard, err := m.CheckKey(ctx, key)
		cancel()
		require.NoError(t, err)
		owners[key] = shard.ShardID()
	}

	for key, owner := range owners {
		for _, m := range fleet.nodes {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			shard, err := m.CheckKey(ctx, key)
			cancel()
			require.NoError(t, err)
			assert.Equal(t, owner, shard.ShardID(), "key %s asked at %s", key, m.Key())
			assert.Equal(t, owner == m.ID(), shard.Me())
		}
	}

	var total int
	for _, m := range fleet.nodes {
		total += len(m.Keys(context.Background()))
	}
	assert.Equal(t, keysCount, total)
}

func TestNotReady(t *testing.T) {
	network := transport.NewDummy()
	m := fleetctrl.New(network.NewListener(), nil)
	_, err := m.CheckKey(context.Background(), "early")
	assert.ErrorIs(t, err, fleetctrl.ErrNotReady)

	m.Stop()
	assert.ErrorIs(t, m.Manage(), fleetctrl.ErrWrongState)
	_, err = m.CheckKey(context.Background(), "late")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, fleetctrl.ErrNotReady))
}

func TestIdentity(t *testing.T) {
	network := transport.NewDummy()

	fixed := uid.MustParse("0123456789abcdef0123456789abcdef")
	m := fleetctrl.New(network.NewListener(), &fleetctrl.Options{ID: fixed})
	assert.Equal(t, fixed, m.ID())
	assert.Equal(t, "0123456789abcdef0123456789abcdef", m.Key())

	seeded := fleetctrl.New(network.NewListener(), &fleetctrl.Options{
		Entropy: platform.Reader(bytes.NewReader(bytes.Repeat([]byte{0xab}, uid.Size))),
	})
	assert.Equal(t, strings.Repeat("ab", uid.Size), seeded.Key())

	random := fleetctrl.New(network.NewListener(), nil)
	assert.False(t, random.ID().IsZero())
	assert.NotEqual(t, m.ID(), random.ID())
}
