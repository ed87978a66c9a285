package fleetctrl

import (
	"math/rand/v2"
	"time"
)

// insureDurationGreaterProc gives a pause long enough for two concurrent ownership attempts
// from different shards to finish. Others may still start a new attempt meanwhile, the random
// part makes repeated collisions unlikely.
func insureDurationGreaterProc(dur time.Duration) time.Duration {
	return getRandDuration(halfDurationOf(dur)) + doubleDurationOf(dur)
}

func getRandDuration(rng time.Duration) time.Duration {
	if rng <= 0 {
		return 0
	}
	return rand.N(rng) //nolint:gosec
}

func halfDurationOf(dur time.Duration) time.Duration {
	return dur / 2 //nolint:gomnd
}

func doubleDurationOf(dur time.Duration) time.Duration {
	return dur * 2 //nolint:gomnd
}
