// Package discovery finds devices on the local network.  A discovery pass
// broadcasts GetService over several rounds, merges the replies by serial,
// then refreshes each responder's state over unicast before handing the
// result to the registry.
package discovery

import (
	"context"
	"math/rand"
	"net"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
	"github.com/lumenlabs/golight/protocol/transport"
	"github.com/lumenlabs/golight/registry"
)

const (
	// DefaultRounds is the number of broadcast rounds per discovery pass.
	// Devices answer broadcasts unreliably under load, so one round is
	// rarely enough.
	DefaultRounds = 3
	// DefaultRoundTimeout is how long each round listens for replies
	DefaultRoundTimeout = 1 * time.Second
)

// Options tunes a discovery pass.  The zero value gives the defaults; the
// Destinations override exists for exercising the engine against a device
// on a known address.
type Options struct {
	Rounds       int
	RoundTimeout time.Duration
	SkipRefresh  bool

	// Subnet, in CIDR notation, pins broadcasts to that subnet's directed
	// broadcast address instead of enumerating interfaces.
	Subnet string

	Destinations []*net.UDPAddr
}

// Engine runs discovery passes and feeds results to a registry.  It owns
// the client source identifier and the message sequence counter; sockets
// are opened per pass, never shared.
type Engine struct {
	registry *registry.Registry
	source   uint32
	sequence uint8
	opts     Options
}

// NewSource returns a random client source identifier.  Zero and one are
// reserved by the protocol, so the value is always at least two.
func NewSource() uint32 {
	return uint32(rand.Int63n(0xFFFFFFFF-2) + 2)
}

// New returns an Engine feeding the given registry.
func New(reg *registry.Registry, opts Options) *Engine {
	if opts.Rounds <= 0 {
		opts.Rounds = DefaultRounds
	}
	if opts.RoundTimeout <= 0 {
		opts.RoundTimeout = DefaultRoundTimeout
	}
	if opts.Subnet != `` && len(opts.Destinations) == 0 {
		bcast, err := transport.SubnetBroadcast(opts.Subnet)
		if err != nil {
			common.Log.Warnf(`discovery: ignoring subnet %q: %v`, opts.Subnet, err)
		} else {
			opts.Destinations = []*net.UDPAddr{{IP: bcast, Port: transport.DefaultPort}}
		}
	}
	return &Engine{
		registry: reg,
		source:   NewSource(),
		opts:     opts,
	}
}

// Source reports the engine's client source identifier.
func (e *Engine) Source() uint32 {
	return e.source
}

func (e *Engine) nextSequence() uint8 {
	e.sequence++
	return e.sequence
}

// Discover runs one full discovery pass and replaces the registry contents
// with the result.  Finding no devices is not an error; the pass fails only
// when the socket layer does.  The context bounds the whole pass.
func (e *Engine) Discover(ctx context.Context) ([]*registry.Device, error) {
	found := make(map[string]*registry.Device)
	var order []string

	for round := 0; round < e.opts.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.broadcastRound(ctx, found, &order); err != nil {
			return nil, err
		}
	}

	devs := make([]*registry.Device, 0, len(order))
	for _, serial := range order {
		devs = append(devs, found[serial])
	}

	e.registry.ReplaceAll(devs)

	if !e.opts.SkipRefresh {
		for _, dev := range devs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.refresh(dev)
		}
	}

	common.Log.Infof(`discovery: found %d device(s)`, len(devs))
	return e.registry.Snapshot(), nil
}

// broadcastRound sends one GetService broadcast and collects replies until
// the round window closes.  Replies advertising anything but the UDP
// service are ignored, as are duplicate serials.
func (e *Engine) broadcastRound(ctx context.Context, found map[string]*registry.Device, order *[]string) error {
	conn, err := transport.Listen()
	if err != nil {
		return err
	}
	defer conn.Close()

	p := packet.New(packet.GetService, e.source, [8]byte{}, nil)
	p.Tagged = true
	p.Sequence = e.nextSequence()
	if err := conn.Broadcast(p.Marshal(), e.opts.Destinations...); err != nil {
		return err
	}

	deadline := time.Now().Add(e.opts.RoundTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	for {
		reply, addr, err := conn.ReadPacket(deadline)
		if err == common.ErrTimeout {
			return nil
		}
		if err != nil {
			return err
		}
		if reply.Type != packet.StateService || reply.Source != e.source {
			continue
		}

		payload, err := packet.DecodeStateService(reply.Payload)
		if err != nil {
			common.Log.Debugf(`discovery: bad StateService from %v: %v`, addr, err)
			continue
		}
		if payload.Service != packet.ServiceUDP {
			continue
		}

		serial := reply.Serial()
		if _, dup := found[serial]; dup {
			continue
		}
		found[serial] = &registry.Device{
			Serial: serial,
			Addr:   &net.UDPAddr{IP: addr.IP, Port: int(payload.Port)},
			SeenAt: time.Now(),
		}
		*order = append(*order, serial)
		common.Log.Debugf(`discovery: %s at %s:%d`, serial, addr.IP, payload.Port)
	}
}

// refresh queries one device's light state, product identity and firmware
// over unicast.  A device that stops answering after discovery is logged
// and left with whatever was learned; refresh failures never fail the pass.
func (e *Engine) refresh(dev *registry.Device) {
	target, err := packet.TargetFromSerial(dev.Serial)
	if err != nil {
		common.Log.Warnf(`discovery: refresh %s: %v`, dev.Serial, err)
		return
	}

	if state, err := e.query(dev.Addr, target, packet.GetColor, packet.LightState); err == nil {
		if payload, err := packet.DecodeLightState(state.Payload); err == nil {
			e.registry.UpdateState(dev.Serial, payload.Color, payload.Power, payload.LabelString())
		}
	} else {
		common.Log.Debugf(`discovery: %s did not answer GetColor: %v`, dev.Serial, err)
	}

	if state, err := e.query(dev.Addr, target, packet.GetVersion, packet.StateVersion); err == nil {
		if payload, err := packet.DecodeStateVersion(state.Payload); err == nil {
			e.registry.UpdateVersion(dev.Serial, payload.Vendor, payload.Product, payload.Version)
		}
	}

	if state, err := e.query(dev.Addr, target, packet.GetHostFirmware, packet.StateHostFirmware); err == nil {
		if payload, err := packet.DecodeStateHostFirmware(state.Payload); err == nil {
			e.registry.UpdateFirmware(dev.Serial, payload.VersionMajor, payload.VersionMinor)
		}
	}
}

// query performs one unicast request/response exchange.
func (e *Engine) query(addr *net.UDPAddr, target [8]byte, req, resp packet.Message) (*packet.Packet, error) {
	conn, err := transport.Listen()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	p := packet.New(req, e.source, target, nil)
	p.ResRequired = true
	p.Sequence = e.nextSequence()
	if err := conn.WriteTo(p.Marshal(), addr); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(common.DefaultTimeout)
	for {
		reply, _, err := conn.ReadPacket(deadline)
		if err != nil {
			return nil, err
		}
		if reply.Type == resp && reply.Source == e.source {
			return reply, nil
		}
	}
}
