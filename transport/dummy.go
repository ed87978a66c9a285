package transport

import (
	"crypto/rand"
	"fmt"
	mr "math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iv-menshenin/uniqid/uid"
)

type (
	DummyListener struct {
		ip  net.IP
		snd chan<- Datagram
		rcv chan Datagram
	}
	DummyNetwork struct {
		mux sync.RWMutex
		lst map[[4]byte]*DummyListener
		net chan Datagram

		started  time.Time
		bytesAll int64
		cntAll   int64
	}
	Datagram struct {
		from net.IP
		to   net.IP
		data []byte
	}
)

var DummyBroadcast net.IP = []byte{0, 0, 0, 0}

const (
	dummyHeadSize  = 4 + uid.Size
	dummyDropAfter = 10 * time.Second
)

// NewDummy makes an in-memory network that delivers every datagram with a small random delay.
func NewDummy() *DummyNetwork {
	var network = DummyNetwork{
		lst:     make(map[[4]byte]*DummyListener),
		net:     make(chan Datagram),
		started: time.Now(),
	}
	go network.processPackets()
	return &network
}

func (n *DummyNetwork) processPackets() {
	for netPacket := range n.net {
		var msg = netPacket
		atomic.AddInt64(&n.bytesAll, int64(len(msg.data)))
		atomic.AddInt64(&n.cntAll, 1)
		log.Debugf("ROUTING FROM %s TO %s DATA %s", msg.from, msg.to, describe(msg.data))
		broad := msg.to.Equal(DummyBroadcast)
		n.mux.RLock()
		for _, v := range n.lst {
			if broad || msg.to.Equal(v.ip) {
				go deliver(v.ip.String(), v.rcv, msg)
			}
		}
		n.mux.RUnlock()
	}
}

func deliver(receiverIP string, rcv chan<- Datagram, msg Datagram) {
	<-time.After(time.Duration(mr.Intn(5)+2) * time.Millisecond) //nolint:gosec // network latency
	select {
	case <-time.After(dummyDropAfter):
		// packet lost
		log.Debugf("DROPPED TO %s: %s", receiverIP, describe(msg.data))
	case rcv <- msg:
		log.Debugf("DELIVERED TO %s: %s", receiverIP, describe(msg.data))
	}
}

func (n *DummyNetwork) NewListener() *DummyListener {
	var rndIP [4]byte
	n.mux.Lock()
	defer n.mux.Unlock()
	for {
		if _, err := rand.Read(rndIP[:]); err != nil {
			panic(err)
		}
		if _, exists := n.lst[rndIP]; !exists && rndIP != [4]byte{} {
			break
		}
	}
	var l = DummyListener{
		ip:  net.IP(rndIP[:]),
		snd: n.net,
		rcv: make(chan Datagram),
	}
	n.lst[rndIP] = &l
	return &l
}

// Close reports traffic statistics. Listeners keep working.
func (n *DummyNetwork) Close() {
	since := time.Since(n.started)
	bytesAll := atomic.LoadInt64(&n.bytesAll)
	log.Infof("NETWORK STAT: %v SENT %d MESSAGES with %d KB (%0.3f kbps)",
		since, atomic.LoadInt64(&n.cntAll), bytesAll/1024, float64(bytesAll)/since.Seconds()/1024)
}

func (d *DummyListener) SendAll(data []byte) error {
	go func() {
		d.snd <- Datagram{
			from: d.ip,
			to:   DummyBroadcast,
			data: data,
		}
	}()
	return nil
}

func (d *DummyListener) Send(data []byte, addr net.Addr) error {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("can't send to %s: not an udp address", addr)
	}
	dg := Datagram{
		from: d.ip,
		to:   udpAddr.IP,
		data: data,
	}
	go func() {
		d.snd <- dg
	}()
	return nil
}

func (d *DummyListener) Listen([]byte) (*Received, error) {
	rcv := <-d.rcv
	return &Received{
		Addr: &net.UDPAddr{
			IP:   rcv.from,
			Port: 0,
		},
		Data: rcv.data,
	}, nil
}

func (d *DummyListener) GetIP() net.IP {
	return d.ip
}

func describe(data []byte) string {
	if len(data) < dummyHeadSize {
		return fmt.Sprintf("%x", data)
	}
	sender, _ := uid.FromBytes(data[4:])
	return fmt.Sprintf("%s %s %x", data[:4], sender, data[dummyHeadSize:])
}
