// Package packet implements the binary framing of the LAN protocol: the
// 36-byte header shared by every message, and the per-type payload layouts.
//
// Encode and decode are pure functions of their inputs; the package performs
// no I/O and holds no state.
package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/lunixbochs/struc"

	"github.com/lumenlabs/golight/common"
)

const (
	// HeaderSize is the fixed length of the protocol header
	HeaderSize = 36
	// protocolNumber occupies the low 12 bits of the header's
	// protocol/flags field
	protocolNumber = 1024

	addressableBit = 1 << 12
	taggedBit      = 1 << 13

	resRequiredBit = 0x01
	ackRequiredBit = 0x02
)

// Packet represents one protocol message: the header fields plus the raw
// payload bytes.  A Packet is immutable once built; Marshal and Decode are
// the only operations.
type Packet struct {
	Size        uint16
	Protocol    uint16
	Addressable bool
	Tagged      bool
	Origin      uint8
	Source      uint32
	Target      [8]byte
	ResRequired bool
	AckRequired bool
	Sequence    uint8
	Type        Message
	Payload     []byte
}

// New returns a Packet of the given type addressed to target, carrying
// payload.  A zero target produces a broadcast-addressable packet; callers
// set Tagged for broadcast semantics.
func New(msgType Message, source uint32, target [8]byte, payload []byte) *Packet {
	return &Packet{
		Source:  source,
		Target:  target,
		Type:    msgType,
		Payload: payload,
	}
}

// Marshal encodes the packet into wire format.  The result is always
// HeaderSize + len(Payload) bytes, every multi-byte field little-endian.
func (p *Packet) Marshal() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))

	// Frame header: size, protocol/addressable/tagged/origin, source
	binary.LittleEndian.PutUint16(buf[0:2], uint16(HeaderSize+len(p.Payload)))
	flags := uint16(protocolNumber) | addressableBit
	if p.Tagged {
		flags |= taggedBit
	}
	binary.LittleEndian.PutUint16(buf[2:4], flags)
	binary.LittleEndian.PutUint32(buf[4:8], p.Source)

	// Frame address: target, 6 reserved bytes, res/ack flags, sequence
	copy(buf[8:16], p.Target[:])
	var fb byte
	if p.ResRequired {
		fb |= resRequiredBit
	}
	if p.AckRequired {
		fb |= ackRequiredBit
	}
	buf[22] = fb
	buf[23] = p.Sequence

	// Protocol header: 8 reserved bytes, type, 2 reserved bytes
	binary.LittleEndian.PutUint16(buf[32:34], uint16(p.Type))

	copy(buf[HeaderSize:], p.Payload)
	return buf
}

// Decode parses a received buffer into a Packet.  Buffers shorter than the
// header produce ErrMalformedHeader.  The payload is the declared size minus
// the header length, clamped to zero and to the bytes actually received.
func Decode(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, common.ErrMalformedHeader
	}

	flags := binary.LittleEndian.Uint16(data[2:4])
	p := &Packet{
		Size:        binary.LittleEndian.Uint16(data[0:2]),
		Protocol:    flags & 0x0FFF,
		Addressable: flags&addressableBit != 0,
		Tagged:      flags&taggedBit != 0,
		Origin:      uint8(flags >> 14),
		Source:      binary.LittleEndian.Uint32(data[4:8]),
		ResRequired: data[22]&resRequiredBit != 0,
		AckRequired: data[22]&ackRequiredBit != 0,
		Sequence:    data[23],
		Type:        Message(binary.LittleEndian.Uint16(data[32:34])),
	}
	copy(p.Target[:], data[8:16])

	end := int(p.Size)
	if end > len(data) {
		end = len(data)
	}
	if end > HeaderSize {
		p.Payload = data[HeaderSize:end]
	}

	return p, nil
}

// Serial returns the device serial encoded in the target field, as
// colon-separated lowercase hex of its first 6 bytes.  This is the device
// identity key used throughout the registry.
func (p *Packet) Serial() string {
	parts := make([]string, 6)
	for i, b := range p.Target[:6] {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

// TargetFromSerial converts a colon-separated serial string into the 8-byte
// target address (serial bytes followed by two zero bytes).
func TargetFromSerial(serial string) ([8]byte, error) {
	var target [8]byte
	parts := strings.Split(serial, ":")
	if len(parts) != 6 {
		return target, fmt.Errorf("invalid serial %q", serial)
	}
	for i, part := range parts {
		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return target, fmt.Errorf("invalid serial %q: %w", serial, err)
		}
		target[i] = byte(b)
	}
	return target, nil
}

// pack serializes a fixed-layout payload struct to bytes.
func pack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := struc.Pack(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unpack deserializes a fixed-layout payload struct, enforcing the message
// type's minimum payload length first.
func unpack(data []byte, v interface{}, min int) error {
	if len(data) < min {
		return common.ErrTruncatedPayload
	}
	return struc.Unpack(bytes.NewReader(data), v)
}
