package fleetctrl

import (
	"time"

	"github.com/iv-menshenin/uniqid/fleetctrl/internal/election/ownership"
	"github.com/iv-menshenin/uniqid/fleetctrl/internal/shardkeeper"
	"github.com/iv-menshenin/uniqid/platform"
	"github.com/iv-menshenin/uniqid/uid"
)

type Options struct {
	// ID fixes the identity of the manager, a new one is generated when it is zero.
	ID uid.ID
	// Entropy feeds the generated identity, platform.Default if nil.
	Entropy uid.EntropySource
	// PersistentKeys keeps the keys of shards that went silent.
	PersistentKeys bool

	OwnershipTimeout  time.Duration
	OwnershipWindow   time.Duration
	DiscoveryInterval time.Duration
}

func (o *Options) shardOptions() *shardkeeper.Options {
	return &shardkeeper.Options{
		PersistentKeys: o.PersistentKeys,
	}
}

func (o *Options) ownershipOptions() *ownership.Options {
	return &ownership.Options{
		Timeout: o.OwnershipTimeout,
		Window:  o.OwnershipWindow,
	}
}

func (o *Options) entropy() uid.EntropySource {
	if o.Entropy == nil {
		return platform.Default
	}
	return o.Entropy
}

func (o *Options) discoveryInterval() time.Duration {
	if o.DiscoveryInterval <= 0 {
		return defaultDiscoveryInterval
	}
	return o.DiscoveryInterval
}
