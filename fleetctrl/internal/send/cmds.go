package send

import (
	"fmt"
	"net"

	"github.com/iv-menshenin/uniqid/transport"
	"github.com/iv-menshenin/uniqid/uid"
)

type Sender struct {
	id uid.ID
	tt Transport
}

type Transport interface {
	SendAll([]byte) error
	Send([]byte, net.Addr) error
	Listen([]byte) (*transport.Received, error)
}

func New(id uid.ID, tt Transport) *Sender {
	return &Sender{
		id: id,
		tt: tt,
	}
}

const (
	cmdSize  = 4
	idSize   = uid.Size
	hashSize = 32
	headSize = cmdSize + idSize
)

// head starts a datagram: command followed by our own identifier.
func (m *Sender) head(cmd Cmd, extra int) []byte {
	var data = make([]byte, 0, headSize+extra)
	data = append(data, cmd[:]...)
	return m.id.AppendTo(data)
}

func (m *Sender) KnockKnock() error {
	data := m.head(CmdBroadKnock, 0)
	return wrapIfError("can't send KNCK", m.tt.SendAll(data))
}

func (m *Sender) Welcome(addr net.Addr) error {
	data := m.head(CmdWelcome, 0)
	return wrapIfError("can't send WLCM", m.tt.Send(data, addr))
}

func (m *Sender) WantKey(key string) error {
	data := m.head(CmdBroadWantKey, len(key))
	data = append(data, key...)
	return wrapIfError("can't send WANT", m.tt.SendAll(data))
}

func (m *Sender) ThatIsMine(key string) error {
	data := m.head(CmdBroadMine, len(key))
	data = append(data, key...)
	return wrapIfError("can't send MINE", m.tt.SendAll(data))
}

func (m *Sender) ThatIsOccupied(addr net.Addr, owner uid.ID, key []byte) error {
	data := m.head(CmdOccupied, idSize+len(key))
	data = owner.AppendTo(data)
	data = append(data, key...)
	return wrapIfError("can't send OCPD", m.tt.Send(data, addr))
}

func (m *Sender) Candidate(addr net.Addr, owner uid.ID, key []byte) error {
	data := m.head(CmdCandidate, idSize+len(key))
	data = owner.AppendTo(data)
	data = append(data, key...)
	return wrapIfError("can't send CAND", m.tt.Send(data, addr))
}

func (m *Sender) Saved(addr net.Addr, owner uid.ID, key []byte) error {
	data := m.head(CmdSaved, idSize+len(key))
	data = owner.AppendTo(data)
	data = append(data, key...)
	return wrapIfError("can't send SAVD", m.tt.Send(data, addr))
}

func (m *Sender) Registered(addr net.Addr, key []byte) error {
	data := m.head(CmdRegistered, len(key))
	data = append(data, key...)
	return wrapIfError("can't send REGD", m.tt.Send(data, addr))
}

func (m *Sender) Reset(key []byte) error {
	data := m.head(CmdBroadReset, len(key))
	data = append(data, key...)
	return wrapIfError("can't send RSET", m.tt.SendAll(data))
}

func (m *Sender) CompareInstances(hash []byte) error {
	data := m.head(CmdBroadCompare, hashSize)
	data = append(data, hash...)
	return wrapIfError("can't send CMPI", m.tt.SendAll(data))
}

func (m *Sender) Compared(addr net.Addr, hash []byte) error {
	data := m.head(CmdCompared, hashSize)
	data = append(data, hash...)
	return wrapIfError("can't send CMPO", m.tt.Send(data, addr))
}

func wrapIfError(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

//nolint:gochecknoglobals
var (
	CmdBroadKnock   = Cmd{'K', 'N', 'C', 'K'}
	CmdBroadMine    = Cmd{'M', 'I', 'N', 'E'}
	CmdBroadWantKey = Cmd{'W', 'A', 'N', 'T'}
	CmdBroadReset   = Cmd{'R', 'S', 'E', 'T'}
	CmdBroadCompare = Cmd{'C', 'M', 'P', 'I'}

	CmdWelcome    = Cmd{'W', 'L', 'C', 'M'}
	CmdCandidate  = Cmd{'C', 'A', 'N', 'D'}
	CmdRegistered = Cmd{'R', 'E', 'G', 'D'}
	CmdSaved      = Cmd{'S', 'A', 'V', 'D'}
	CmdCompared   = Cmd{'C', 'M', 'P', 'O'}
	CmdOccupied   = Cmd{'O', 'C', 'P', 'D'}
)

type Cmd [cmdSize]byte

func (c Cmd) String() string {
	return string(c[:])
}

// CmdData builds the exact datagram expected back from dest.
func (c Cmd) CmdData(dest uid.ID, blocks ...[]byte) []byte {
	var sz = headSize
	for _, data := range blocks {
		sz += len(data)
	}

	var cmdData = make([]byte, 0, sz)
	cmdData = append(cmdData, c[:]...)
	cmdData = dest.AppendTo(cmdData)

	for _, data := range blocks {
		cmdData = append(cmdData, data...)
	}

	return cmdData
}
