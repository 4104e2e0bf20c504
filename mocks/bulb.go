// Package mocks provides test doubles: an in-process UDP bulb that speaks
// enough of the wire protocol to exercise discovery and command paths, and
// a testify mock for the effects sender.
package mocks

import (
	"net"
	"sync"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
)

// Bulb simulates one device on a loopback UDP socket.  It answers the
// discovery and state queries from its configured state, applies Set
// commands to that state, and records every packet it receives so tests can
// assert on the traffic.
type Bulb struct {
	Serial    string
	ProductID uint32

	mu       sync.Mutex
	power    uint16
	color    common.Color
	label    string
	received []*packet.Packet

	sock *net.UDPConn
	done chan struct{}
}

// NewBulb starts a simulated bulb on an ephemeral loopback port.
func NewBulb(serial string) (*Bulb, error) {
	sock, err := net.ListenUDP(`udp4`, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		return nil, err
	}
	b := &Bulb{
		Serial:    serial,
		ProductID: 27,
		color:     common.Color{Kelvin: common.DefaultKelvin},
		label:     `Mock Bulb`,
		sock:      sock,
		done:      make(chan struct{}),
	}
	go b.serve()
	return b, nil
}

// Addr reports the bulb's listening address.
func (b *Bulb) Addr() *net.UDPAddr {
	return b.sock.LocalAddr().(*net.UDPAddr)
}

// SetState seeds the bulb's reported state.
func (b *Bulb) SetState(power uint16, color common.Color, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.power = power
	b.color = color
	b.label = label
}

// State reports the bulb's current state.
func (b *Bulb) State() (power uint16, color common.Color, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.power, b.color, b.label
}

// Received returns a copy of every packet the bulb has seen, in arrival
// order.
func (b *Bulb) Received() []*packet.Packet {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*packet.Packet, len(b.received))
	copy(out, b.received)
	return out
}

// ReceivedOfType filters Received by message type.
func (b *Bulb) ReceivedOfType(msgType packet.Message) []*packet.Packet {
	var out []*packet.Packet
	for _, p := range b.Received() {
		if p.Type == msgType {
			out = append(out, p)
		}
	}
	return out
}

// Close shuts the bulb down.
func (b *Bulb) Close() error {
	close(b.done)
	return b.sock.Close()
}

func (b *Bulb) serve() {
	buf := make([]byte, 1500)
	for {
		n, addr, err := b.sock.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-b.done:
				return
			default:
				continue
			}
		}
		req, err := packet.Decode(buf[:n])
		if err != nil {
			continue
		}
		b.mu.Lock()
		b.received = append(b.received, req)
		b.mu.Unlock()
		b.handle(req, addr)
	}
}

func (b *Bulb) handle(req *packet.Packet, addr *net.UDPAddr) {
	switch req.Type {
	case packet.GetService:
		payload, _ := pack(&packet.StateServicePayload{
			Service: packet.ServiceUDP,
			Port:    uint32(b.Addr().Port),
		})
		b.reply(req, addr, packet.StateService, payload)

	case packet.GetColor:
		b.reply(req, addr, packet.LightState, b.lightState())

	case packet.GetVersion:
		payload, _ := pack(&packet.StateVersionPayload{
			Vendor:  common.VendorLifx,
			Product: b.ProductID,
		})
		b.reply(req, addr, packet.StateVersion, payload)

	case packet.GetHostFirmware:
		payload, _ := pack(&packet.StateHostFirmwarePayload{
			Build:        1530000000000000000,
			VersionMajor: 3,
			VersionMinor: 70,
		})
		b.reply(req, addr, packet.StateHostFirmware, payload)

	case packet.SetPower, packet.SetLightPower:
		if p, err := packet.DecodeStatePower(req.Payload); err == nil {
			b.mu.Lock()
			b.power = p.Level
			b.mu.Unlock()
		}
		b.ack(req, addr)

	case packet.SetColor:
		if len(req.Payload) >= 13 {
			b.mu.Lock()
			b.color = colorFrom(req.Payload[1:9])
			b.mu.Unlock()
		}
		b.ack(req, addr)

	case packet.SetLabel:
		if label, err := packet.DecodeStateLabel(req.Payload); err == nil {
			b.mu.Lock()
			b.label = label
			b.mu.Unlock()
		}
		b.ack(req, addr)

	case packet.GetWifiInfo:
		payload, _ := pack(&packet.StateWifiInfoPayload{Signal: 1e-5})
		b.reply(req, addr, packet.StateWifiInfo, payload)

	case packet.GetInfo:
		payload, _ := pack(&packet.StateInfoPayload{
			Time:   uint64(time.Now().UnixNano()),
			Uptime: uint64(90 * time.Minute),
		})
		b.reply(req, addr, packet.StateInfo, payload)

	case packet.GetLocation:
		p := &packet.StateLocationPayload{}
		copy(p.Label[:], `Home`)
		payload, _ := pack(p)
		b.reply(req, addr, packet.StateLocation, payload)

	case packet.GetGroup:
		p := &packet.StateGroupPayload{}
		copy(p.Label[:], `Downstairs`)
		payload, _ := pack(p)
		b.reply(req, addr, packet.StateGroup, payload)

	case packet.GetTileEffect:
		payload := make([]byte, 187)
		b.reply(req, addr, packet.StateTileEffect, payload)

	default:
		b.ack(req, addr)
	}
}

func (b *Bulb) lightState() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &packet.LightStatePayload{
		Color: b.color,
		Power: b.power,
	}
	copy(p.Label[:], b.label)
	payload, _ := pack(p)
	return payload
}

func (b *Bulb) reply(req *packet.Packet, addr *net.UDPAddr, msgType packet.Message, payload []byte) {
	target, err := packet.TargetFromSerial(b.Serial)
	if err != nil {
		return
	}
	resp := packet.New(msgType, req.Source, target, payload)
	resp.Sequence = req.Sequence
	b.sock.WriteToUDP(resp.Marshal(), addr)
}

func (b *Bulb) ack(req *packet.Packet, addr *net.UDPAddr) {
	if !req.AckRequired {
		return
	}
	target, err := packet.TargetFromSerial(b.Serial)
	if err != nil {
		return
	}
	resp := packet.New(packet.Acknowledgement, req.Source, target, nil)
	resp.Sequence = req.Sequence
	b.sock.WriteToUDP(resp.Marshal(), addr)
}
