package fleetctrl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iv-menshenin/uniqid/fleetctrl/internal/send"
	"github.com/iv-menshenin/uniqid/uid"
)

const (
	// MaximumKeyLength limits the allowed length of the key.
	MaximumKeyLength = 128
)

var (
	ErrNotReady     = errors.New("not ready")
	ErrKeyTooLong   = errors.New("key-string too long")
	ErrAwaitTimeout = errors.New("timeout")
	ErrWrongState   = errors.New("wrong state")
)

type Shard interface {
	Me() bool
	Live() bool
	NetAddr() net.Addr
	ShardID() uid.ID
}

// CheckKey gives the shard owning key. When nobody owns it yet the manager
// tries to take it by quorum and retries until ctx is done.
func (m *Manager) CheckKey(ctx context.Context, key string) (Shard, error) {
	if m.stopped() {
		return nil, errStopped
	}
	if !m.Status() {
		return nil, ErrNotReady
	}
	if len(key) > MaximumKeyLength {
		return nil, ErrKeyTooLong
	}

	for {
		if instance, ok := m.keeper.Lookup(key); ok {
			return instance, nil
		}
		owned, err := m.tryToOwn(key)
		if err != nil {
			return nil, err
		}
		if owned {
			return m.keeper.Me(), nil
		}
		if instance, ok := m.keeper.Lookup(key); ok {
			return instance, nil
		}

		repeatAfter := insureDurationGreaterProc(m.own.Timeout())
		m.debug("CANT OWN %q (RETRY AFTER %v)", key, repeatAfter)
		select {
		case <-ctx.Done():
			m.giveUpOwn(key)
			return nil, fmt.Errorf("can't get ownership: %w", ctx.Err())

		case <-m.done:
			return nil, errStopped

		case <-time.After(repeatAfter):
			// next trying
			continue
		}
	}
}

func (m *Manager) tryToOwn(key string) (bool, error) {
	if !m.own.Add(m.id, key) {
		return false, nil
	}
	chErr := m.awaitMostOf(send.CmdCandidate, m.id.Bytes(), []byte(key))
	if err := m.sr.WantKey(key); err != nil {
		return false, err
	}
	if err := <-chErr; err != nil {
		m.warning("OWNERSHIP DENIED %s: %q %+v", m.id, key, err)
		return false, nil
	}
	if !m.keeper.Own(key) {
		m.warning("OWNERSHIP FAIL %s: %q", m.id, key)
		return false, nil
	}
	chErr = m.awaitMostOf(send.CmdSaved, m.id.Bytes(), []byte(key))
	if err := m.sr.ThatIsMine(key); err != nil {
		return false, err
	}
	if err := <-chErr; err != nil {
		m.keeper.Forget(key)
		m.warning("OWNERSHIP CANCELLED %s: %q %+v", m.id, key, err)
		return false, nil
	}
	m.debug("OWNERSHIP TAKEN %s: %q", m.id, key)
	return true, nil
}

func (m *Manager) giveUpOwn(key string) {
	if owner, ok := m.own.Candidate(key); ok && owner == m.id {
		m.own.Del(key)
	}
}

type Cmder interface {
	CmdData(uid.ID, ...[]byte) []byte
}

// awaitMostOf expects every known shard to answer with cmd and data and
// resolves once the majority has answered or the await time runs out.
func (m *Manager) awaitMostOf(cmd Cmder, data ...[]byte) <-chan error {
	ctx, clear := context.WithTimeout(context.Background(), m.awaitTime)
	m.debug("AWAITING %s: %s %x", m.id, cmd, data)

	var (
		waitAll          sync.WaitGroup
		electorate       = m.keeper.IDs()
		quorumCounter    = int64(len(electorate)+1) / 2
		awaitingCancel   = make(chan struct{})
		electionComplete = make(chan struct{})
		quorumComplete   = make(chan struct{})
		result           = make(chan error, 1)
	)
	waitAll.Add(len(electorate))

	for _, v := range electorate {
		var (
			answered = make(chan struct{})
			retCmd   = cmd.CmdData(v, data...)
			awaitID  = m.awr.Add(retCmd, answered)
		)
		go func() {
			defer waitAll.Done()
			defer m.awr.Del(awaitID)
			select {
			case <-answered:
				if cnt := atomic.AddInt64(&quorumCounter, -1); cnt == 0 {
					close(quorumComplete)
				}
			case <-awaitingCancel:
			}
		}()
	}

	go func() {
		defer clear()
		waitAll.Wait()
		close(electionComplete)
	}()
	go waitFor(ctx, quorumComplete, electionComplete, result, awaitingCancel)
	return result
}

func waitFor(ctx context.Context, quo, all <-chan struct{}, result chan<- error, afterAll chan<- struct{}) {
	select {
	case <-ctx.Done():
		result <- ErrAwaitTimeout
	case <-quo:
	case <-all:
	}
	close(result)
	close(afterAll)
}

// Keys gives the keys owned by this manager.
func (m *Manager) Keys(context.Context) []string {
	return m.keeper.Mine()
}
