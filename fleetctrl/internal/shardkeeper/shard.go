package shardkeeper

import (
	"net"
	"time"

	"github.com/iv-menshenin/uniqid/uid"
)

const activeTime = 15 * time.Second

type Shard struct {
	ID     uid.ID
	Addr   net.Addr
	Active time.Time
}

func (s Shard) Me() bool {
	return s.Addr == nil
}

func (s Shard) Live() bool {
	if s.Me() {
		return true
	}
	return time.Since(s.Active) < activeTime
}

func (s Shard) NetAddr() net.Addr {
	return s.Addr
}

func (s Shard) ShardID() uid.ID {
	return s.ID
}

func (s Shard) String() string {
	if s.Me() {
		return s.ID.String() + "@self"
	}
	return s.ID.String() + "@" + s.Addr.String()
}
