// Package fleetctrl lets processes on one network find each other and agree on
// who owns a key. Every process is tagged by a uid.ID generated at start, that
// identifier travels in the head of each datagram and keys all peer tables.
package fleetctrl

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iv-menshenin/uniqid/fleetctrl/internal/election/ownership"
	"github.com/iv-menshenin/uniqid/fleetctrl/internal/election/waitfor"
	"github.com/iv-menshenin/uniqid/fleetctrl/internal/send"
	"github.com/iv-menshenin/uniqid/fleetctrl/internal/shardkeeper"
	"github.com/iv-menshenin/uniqid/internal/logging"
	"github.com/iv-menshenin/uniqid/transport"
	"github.com/iv-menshenin/uniqid/uid"
)

const logSystem = "fleetctrl"

var log = logging.New(logSystem)

type (
	Manager struct {
		id uid.ID
		ls Transport

		state int64
		armed int64

		err  error
		once sync.Once
		done chan struct{}

		armMux  sync.Mutex
		armedCh []chan<- struct{}

		discovery time.Duration
		awaitTime time.Duration

		keeper *shardkeeper.Keeper
		awr    *waitfor.Awaiter
		own    *ownership.Ownership
		sr     *send.Sender
	}
	LogLevel uint8
)

const (
	LogLevelError LogLevel = iota
	LogLevelWarning
	LogLevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelWarning:
		return "warn"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

type Transport interface {
	SendAll([]byte) error
	Send([]byte, net.Addr) error
	Listen([]byte) (*transport.Received, error)
}

const (
	StateCreated int64 = iota
	StateReady
	StateDiscovery
	StateStop
	StateBroken
)

const (
	UnArmed int64 = iota
	Armed
)

const (
	stateLoopInterval        = 10 * time.Millisecond
	defaultDiscoveryInterval = time.Second
	armedCheckAttempts       = 3
)

func New(tt Transport, options *Options) *Manager {
	if options == nil {
		options = &Options{}
	}
	var self = options.ID
	if self.IsZero() {
		self = uid.Generate(options.entropy())
	}
	var m = Manager{
		id:        self,
		ls:        tt,
		state:     StateCreated,
		armed:     UnArmed,
		done:      make(chan struct{}),
		discovery: options.discoveryInterval(),
		keeper:    shardkeeper.New(self, options.shardOptions()),
		awr:       waitfor.New(),
		own:       ownership.New(options.ownershipOptions()),
		sr:        send.New(self, tt),
	}
	m.awaitTime = halfDurationOf(m.own.Timeout())
	return &m
}

// SetLogLevel changes the verbosity of every manager in the process.
func (m *Manager) SetLogLevel(l LogLevel) {
	if err := logging.SetLevel(logSystem, l.String()); err != nil {
		log.Errorf("ERROR: %+v", err)
	}
}

func (m *Manager) debug(format string, args ...any) {
	log.Debugf(format, args...)
}

func (m *Manager) warning(format string, args ...any) {
	log.Warnf(format, args...)
}

func (m *Manager) error(format string, args ...any) {
	log.Errorf(format, args...)
}

func (m *Manager) ID() uid.ID {
	return m.id
}

// Key gives the canonical string form of the manager identifier.
func (m *Manager) Key() string {
	return m.id.String()
}

// Manage runs the manager until Stop is called or the transport fails.
func (m *Manager) Manage() error {
	if !atomic.CompareAndSwapInt64(&m.state, StateCreated, StateDiscovery) {
		return ErrWrongState
	}
	go m.stateLoop()
	go m.readLoop()
	<-m.done
	return m.err
}

func (m *Manager) Stop() {
	for {
		state := atomic.LoadInt64(&m.state)
		if state == StateStop || state == StateBroken {
			return
		}
		if atomic.CompareAndSwapInt64(&m.state, state, StateStop) {
			if state == StateCreated {
				m.shutdown()
			}
			return
		}
	}
}

// Status reports whether all known shards agree on the fleet.
func (m *Manager) Status() bool {
	return atomic.LoadInt64(&m.armed) == Armed
}

// NotifyArmed gives a channel that is closed once the manager is armed.
func (m *Manager) NotifyArmed() <-chan struct{} {
	var ch = make(chan struct{})
	m.armMux.Lock()
	defer m.armMux.Unlock()
	if m.Status() {
		close(ch)
		return ch
	}
	m.subscribeNotifyArmed(ch)
	return ch
}

func (m *Manager) shutdown() {
	m.own.Close()
	close(m.done)
}

func (m *Manager) stateLoop() {
	var lastTimeDiscovered time.Time
	defer m.shutdown()
	for {
		time.Sleep(stateLoopInterval)
		switch atomic.LoadInt64(&m.state) {
		case StateReady:
			if del := m.keeper.Cleanup(); del > 0 {
				m.warning("UNLINKED: %d", del)
			}
			if time.Since(lastTimeDiscovered) >= m.discovery {
				if err := m.checkArmedStatus(); err != nil {
					m.setErr(err)
					return
				}
				atomic.CompareAndSwapInt64(&m.state, StateReady, StateDiscovery)
			}

		case StateDiscovery:
			if err := m.sr.KnockKnock(); err != nil {
				m.setErr(err)
				return
			}
			atomic.CompareAndSwapInt64(&m.state, StateDiscovery, StateReady)
			lastTimeDiscovered = time.Now()

		case StateStop, StateBroken:
			return
		}
	}
}

func (m *Manager) checkArmedStatus() (err error) {
	m.debug("CHECK STATUS %s", m.id)
	for cnt := armedCheckAttempts; cnt > 0; cnt-- {
		hash := m.keeper.Hash()
		errCh := m.awaitMostOf(send.CmdCompared, hash[:])
		if err = m.sr.CompareInstances(hash[:]); err != nil {
			return err
		}
		if err = <-errCh; err == nil {
			break
		}
	}
	if err != nil {
		if atomic.CompareAndSwapInt64(&m.armed, Armed, UnArmed) {
			m.warning("UNARMED %s: %+v", m.id, err)
		}
		return nil
	}
	m.armMux.Lock()
	if atomic.CompareAndSwapInt64(&m.armed, UnArmed, Armed) {
		m.warning("ARMED %s", m.id)
		m.publicNotifyArmed()
	}
	m.armMux.Unlock()
	return nil
}

func (m *Manager) setErr(err error) {
	m.error("ERROR: %+v", err)
	m.once.Do(func() {
		m.err = err
		atomic.StoreInt64(&m.state, StateBroken)
	})
}

func (m *Manager) stopped() bool {
	state := atomic.LoadInt64(&m.state)
	return state == StateStop || state == StateBroken
}

var errStopped = errors.New("manager stopped")
