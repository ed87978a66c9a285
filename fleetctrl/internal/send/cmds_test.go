package send

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iv-menshenin/uniqid/transport"
	"github.com/iv-menshenin/uniqid/uid"
)

type recorder struct {
	mux  sync.Mutex
	sent []transport.Received
}

func (r *recorder) SendAll(data []byte) error {
	return r.Send(data, nil)
}

func (r *recorder) Send(data []byte, addr net.Addr) error {
	r.mux.Lock()
	r.sent = append(r.sent, transport.Received{Addr: addr, Data: data})
	r.mux.Unlock()
	return nil
}

func (r *recorder) Listen([]byte) (*transport.Received, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	rcv := r.sent[0]
	r.sent = r.sent[1:]
	return &rcv, nil
}

func TestSenderRoundTrip(t *testing.T) {
	var (
		rec   recorder
		self  = uid.New()
		owner = uid.New()
		addr  = &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1)}
		s     = New(self, &rec)
	)
	require.NoError(t, s.KnockKnock())
	require.NoError(t, s.Candidate(addr, owner, []byte("key")))

	var msg Message
	rcv, _ := rec.Listen(nil)
	require.NoError(t, msg.Parse(rcv))
	assert.Equal(t, CmdBroadKnock, msg.Cmd)
	assert.Equal(t, self, msg.Sender)
	assert.Empty(t, msg.Data)

	rcv, _ = rec.Listen(nil)
	require.NoError(t, msg.Parse(rcv))
	assert.Equal(t, CmdCandidate, msg.Cmd)
	assert.Equal(t, self, msg.Sender)
	assert.Equal(t, addr, msg.Addr)

	gotOwner, key, err := msg.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, gotOwner)
	assert.Equal(t, "key", key)

	// the answer a candidate awaits is byte-equal to what the voter sends
	assert.Equal(t, CmdCandidate.CmdData(self, owner.Bytes(), []byte("key")), rcv.Data)
}

func TestParseShort(t *testing.T) {
	var msg Message
	err := msg.Parse(&transport.Received{Data: []byte("KNCK0123")})
	assert.ErrorIs(t, err, ErrBadMessage)

	msg.Data = []byte("short")
	_, _, err = msg.Owner()
	assert.ErrorIs(t, err, ErrBadMessage)
}

func TestCmdString(t *testing.T) {
	assert.Equal(t, "WANT", CmdBroadWantKey.String())
}
