// Package waitfor matches incoming datagrams against the answers somebody is waiting for.
package waitfor

import (
	"bytes"
	"sync"
	"sync/atomic"
)

type (
	Awaiter struct {
		mux sync.RWMutex
		num int64
		wai map[int64]*wait
	}
	wait struct {
		trg  atomic.Bool
		data []byte
		done chan<- struct{}
	}
)

func New() *Awaiter {
	return &Awaiter{wai: make(map[int64]*wait)}
}

// Trigger closes the done channel of every waiter expecting exactly data.
// Each channel is closed at most once.
func (a *Awaiter) Trigger(data []byte) {
	a.mux.RLock()
	for _, waiter := range a.wai {
		if waiter.trg.Load() || !bytes.Equal(data, waiter.data) {
			continue
		}
		if waiter.trg.CompareAndSwap(false, true) {
			close(waiter.done)
		}
	}
	a.mux.RUnlock()
}

// Add registers a waiter and gives the number to Del it with.
func (a *Awaiter) Add(data []byte, done chan<- struct{}) int64 {
	num := atomic.AddInt64(&a.num, 1)
	a.mux.Lock()
	a.wai[num] = &wait{data: data, done: done}
	a.mux.Unlock()
	return num
}

func (a *Awaiter) Del(num int64) {
	a.mux.Lock()
	delete(a.wai, num)
	a.mux.Unlock()
}

func (a *Awaiter) Len() int {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return len(a.wai)
}
