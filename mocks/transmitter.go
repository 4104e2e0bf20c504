package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/lumenlabs/golight/protocol/packet"
	"github.com/lumenlabs/golight/registry"
)

// Transmitter mocks the effects engine's command sink.
type Transmitter struct {
	mock.Mock
}

// Send delivers a fire-and-forget command.
func (m *Transmitter) Send(dev *registry.Device, msgType packet.Message, payload []byte) error {
	ret := m.Called(dev, msgType, payload)
	return ret.Error(0)
}

// Request delivers a command and waits for the given response type.
func (m *Transmitter) Request(dev *registry.Device, msgType packet.Message, payload []byte, resp packet.Message) (*packet.Packet, error) {
	ret := m.Called(dev, msgType, payload, resp)

	var p *packet.Packet
	if ret.Get(0) != nil {
		p = ret.Get(0).(*packet.Packet)
	}
	return p, ret.Error(1)
}

// SentPayloads extracts the payloads of every recorded Send of the given
// message type, in call order.
func (m *Transmitter) SentPayloads(msgType packet.Message) [][]byte {
	var out [][]byte
	for _, call := range m.Calls {
		if call.Method != `Send` {
			continue
		}
		if call.Arguments.Get(1).(packet.Message) != msgType {
			continue
		}
		out = append(out, call.Arguments.Get(2).([]byte))
	}
	return out
}
