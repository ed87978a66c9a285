package fleetctrl

import (
	"net"

	"github.com/iv-menshenin/uniqid/uid"
)

// Peers gives the live remote shards ordered by identifier.
func (m *Manager) Peers() []Shard {
	var peers = make([]Shard, 0, m.keeper.Len())
	for _, id := range m.keeper.IDs() {
		shard, ok := m.keeper.Shard(id)
		if ok && shard.Live() {
			peers = append(peers, shard)
		}
	}
	return peers
}

// Fleet gives the addresses of the live remote shards.
func (m *Manager) Fleet() []net.Addr {
	var peers = m.Peers()
	var addrs = make([]net.Addr, 0, len(peers))
	for _, shard := range peers {
		addrs = append(addrs, shard.NetAddr())
	}
	return addrs
}

// Peer finds a remote shard by its identifier.
func (m *Manager) Peer(id uid.ID) (Shard, bool) {
	shard, ok := m.keeper.Shard(id)
	if !ok {
		return nil, false
	}
	return shard, true
}
