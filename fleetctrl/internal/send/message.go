package send

import (
	"errors"
	"net"

	"github.com/iv-menshenin/uniqid/transport"
	"github.com/iv-menshenin/uniqid/uid"
)

type Message struct {
	Cmd    Cmd
	Sender uid.ID
	Data   []byte
	Addr   net.Addr
}

var ErrBadMessage = errors.New("bad message")

func (m *Message) Parse(rcv *transport.Received) error {
	if len(rcv.Data) < headSize {
		return ErrBadMessage
	}
	sender, ok := uid.FromBytes(rcv.Data[cmdSize:headSize])
	if !ok {
		return ErrBadMessage
	}

	m.Cmd = Cmd(rcv.Data[0:cmdSize])
	m.Sender = sender
	m.Data = rcv.Data[headSize:]
	m.Addr = rcv.Addr

	return nil
}

// Owner splits the payload of OCPD, CAND and SAVD into owner and key.
func (m *Message) Owner() (uid.ID, string, error) {
	owner, ok := uid.FromBytes(m.Data)
	if !ok {
		return uid.Null, "", ErrBadMessage
	}
	return owner, string(m.Data[idSize:]), nil
}
