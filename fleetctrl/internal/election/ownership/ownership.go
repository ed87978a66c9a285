// Package ownership remembers which process is currently trying to take each key.
package ownership

import (
	"sync"
	"time"

	"github.com/iv-menshenin/uniqid/uid"
)

type (
	Ownership struct {
		mux        sync.Mutex
		candidates map[string]candidate
		options    Options
		once       sync.Once
		done       chan struct{}
	}
	candidate struct {
		exp time.Time
		id  uid.ID
	}
	Options struct {
		// Timeout is how long a candidate blocks the key for others.
		Timeout time.Duration
		// Window is the garbage collection period.
		Window time.Duration
	}
)

const (
	DefaultTimeout = 100 * time.Millisecond
	DefaultWindow  = 10 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

func New(options *Options) *Ownership {
	var opts Options
	if options != nil {
		opts = *options
	}

	var ownership = &Ownership{
		candidates: make(map[string]candidate),
		options:    opts.withDefaults(),
		done:       make(chan struct{}),
	}
	go ownership.background()
	return ownership
}

func (o *Ownership) Timeout() time.Duration {
	return o.options.Timeout
}

func (o *Ownership) background() {
	ticker := time.NewTicker(o.options.Window)
	defer ticker.Stop()
	for {
		select {
		case <-o.done:
			return

		case now := <-ticker.C:
			o.mux.Lock()
			for key, v := range o.candidates {
				if now.After(v.exp) {
					delete(o.candidates, key)
				}
			}
			o.mux.Unlock()
		}
	}
}

// Add makes ownerID the candidate for key unless another live candidate holds it.
func (o *Ownership) Add(ownerID uid.ID, key string) bool {
	now := time.Now()
	o.mux.Lock()
	defer o.mux.Unlock()
	if exists, ok := o.candidates[key]; ok && exists.id != ownerID && now.Before(exists.exp) {
		return false
	}
	o.candidates[key] = candidate{
		exp: now.Add(o.options.Timeout),
		id:  ownerID,
	}
	return true
}

func (o *Ownership) Candidate(key string) (uid.ID, bool) {
	o.mux.Lock()
	defer o.mux.Unlock()
	c, ok := o.candidates[key]
	if !ok || time.Now().After(c.exp) {
		return uid.Null, false
	}
	return c.id, true
}

func (o *Ownership) Del(key string) {
	o.mux.Lock()
	delete(o.candidates, key)
	o.mux.Unlock()
}

func (o *Ownership) Close() {
	o.once.Do(func() {
		close(o.done)
	})
}
