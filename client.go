package golight

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/discovery"
	"github.com/lumenlabs/golight/effects"
	"github.com/lumenlabs/golight/protocol/packet"
	"github.com/lumenlabs/golight/protocol/transport"
	"github.com/lumenlabs/golight/registry"
)

// Client is the top-level handle on the local network of devices.  It owns
// the registry, the discovery engine and the effects engine, and implements
// the command transport the effects engine renders through.
//
// Devices are addressed by query string: a serial, an IP address or a
// label, tried in that order.
type Client struct {
	registry  *registry.Registry
	discovery *discovery.Engine
	effects   *effects.Engine

	source   uint32
	timeout  time.Duration
	seqMutex sync.Mutex
	sequence uint8
}

// ClientOption tunes a Client at construction time.
type ClientOption func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithDiscoveryOptions overrides the discovery tuning.
func WithDiscoveryOptions(opts discovery.Options) ClientOption {
	return func(c *Client) {
		c.discovery = discovery.New(c.registry, opts)
	}
}

// NewClient returns a Client ready for discovery.  No network traffic
// happens until the first operation.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		registry: registry.New(),
		source:   discovery.NewSource(),
		timeout:  common.DefaultTimeout,
	}
	c.discovery = discovery.New(c.registry, discovery.Options{})
	c.effects = effects.NewEngine(c)
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Close stops all running effects.
func (c *Client) Close() error {
	c.effects.StopAll()
	return nil
}

// Discover runs a discovery pass and returns the devices found.  An empty
// network yields an empty slice, not an error.
func (c *Client) Discover(ctx context.Context) ([]*registry.Device, error) {
	return c.discovery.Discover(ctx)
}

// Devices returns the known devices without touching the network.
func (c *Client) Devices() []*registry.Device {
	return c.registry.Snapshot()
}

// GetDevice resolves a query (serial, IP or label) to a device.
func (c *Client) GetDevice(query string) (*registry.Device, error) {
	return c.registry.Find(query)
}

// Subscribe returns a subscription delivering registry events: device
// arrivals, departures and state changes.
func (c *Client) Subscribe() (*common.Subscription, error) {
	return c.registry.NewSubscription()
}

// SetPower switches a device on or off, fading over duration.
func (c *Client) SetPower(query string, on bool, duration time.Duration) error {
	dev, err := c.GetDevice(query)
	if err != nil {
		return err
	}
	var level uint16
	if on {
		level = 0xFFFF
	}
	payload, err := packet.EncodeSetLightPower(level, uint32(duration.Milliseconds()))
	if err != nil {
		return err
	}
	if _, err := c.Request(dev, packet.SetLightPower, payload, packet.Acknowledgement); err != nil {
		return err
	}
	c.registry.UpdateState(dev.Serial, dev.Color, level, ``)
	return nil
}

// SetColor transitions a device to a color over duration.
func (c *Client) SetColor(query string, color common.Color, duration time.Duration) error {
	dev, err := c.GetDevice(query)
	if err != nil {
		return err
	}
	payload, err := packet.EncodeSetColor(color, uint32(duration.Milliseconds()))
	if err != nil {
		return err
	}
	if _, err := c.Request(dev, packet.SetColor, payload, packet.Acknowledgement); err != nil {
		return err
	}
	c.registry.UpdateState(dev.Serial, color, dev.Power, ``)
	return nil
}

// SetLabel renames a device.
func (c *Client) SetLabel(query, label string) error {
	dev, err := c.GetDevice(query)
	if err != nil {
		return err
	}
	payload, err := packet.EncodeSetLabel(label)
	if err != nil {
		return err
	}
	if _, err := c.Request(dev, packet.SetLabel, payload, packet.Acknowledgement); err != nil {
		return err
	}
	c.registry.UpdateState(dev.Serial, dev.Color, dev.Power, label)
	return nil
}

// SetWaveform starts a firmware waveform on a device directly, outside the
// effects engine.
func (c *Client) SetWaveform(query string, color common.Color, waveform packet.Waveform, period time.Duration, cycles float32) error {
	dev, err := c.GetDevice(query)
	if err != nil {
		return err
	}
	payload, err := packet.EncodeSetWaveform(color, waveform, uint32(period.Milliseconds()), cycles, true, 0)
	if err != nil {
		return err
	}
	return c.Send(dev, packet.SetWaveform, payload)
}

// DeviceReport is a point-in-time picture of one device: the registry
// record refreshed over the network, plus whatever optional detail the
// device answers for.  Optional sections the device did not answer stay at
// their zero values.
type DeviceReport struct {
	Device *registry.Device

	WifiSignalDBm float64
	Uptime        time.Duration
	Location      string
	Group         string

	// Infrared is the IR LED brightness on devices that carry one
	Infrared uint16
	// Zones holds the strip colors on multizone devices
	Zones []packet.Zone
	// MultiZoneEffect names the firmware strip effect, when one runs
	MultiZoneEffect string
}

// DeviceInfo queries a device's state over the network and returns a full
// report.  The light state query must succeed; every other section is best
// effort, so a device mid-reboot still yields a usable report.
func (c *Client) DeviceInfo(query string) (*DeviceReport, error) {
	dev, err := c.GetDevice(query)
	if err != nil {
		return nil, err
	}
	reply, err := c.Request(dev, packet.GetColor, nil, packet.LightState)
	if err != nil {
		return nil, err
	}
	state, err := packet.DecodeLightState(reply.Payload)
	if err != nil {
		return nil, err
	}
	c.registry.UpdateState(dev.Serial, state.Color, state.Power, state.LabelString())

	dev, err = c.registry.FindBySerial(dev.Serial)
	if err != nil {
		return nil, err
	}
	report := &DeviceReport{Device: dev}

	if reply, err := c.Request(dev, packet.GetWifiInfo, nil, packet.StateWifiInfo); err == nil {
		if p, err := packet.DecodeStateWifiInfo(reply.Payload); err == nil && p.Signal > 0 {
			report.WifiSignalDBm = 10 * math.Log10(float64(p.Signal))
		}
	}
	if reply, err := c.Request(dev, packet.GetInfo, nil, packet.StateInfo); err == nil {
		if p, err := packet.DecodeStateInfo(reply.Payload); err == nil {
			report.Uptime = time.Duration(p.Uptime)
		}
	}
	if reply, err := c.Request(dev, packet.GetLocation, nil, packet.StateLocation); err == nil {
		if p, err := packet.DecodeStateLocation(reply.Payload); err == nil {
			report.Location = p.LabelString()
		}
	}
	if reply, err := c.Request(dev, packet.GetGroup, nil, packet.StateGroup); err == nil {
		if p, err := packet.DecodeStateGroup(reply.Payload); err == nil {
			report.Group = p.LabelString()
		}
	}
	if dev.HasInfrared() {
		if reply, err := c.Request(dev, packet.GetInfrared, nil, packet.StateInfrared); err == nil {
			if p, err := packet.DecodeStateInfrared(reply.Payload); err == nil {
				report.Infrared = p.Brightness
			}
		}
	}
	if dev.HasMultizone() {
		report.Zones = c.queryZones(dev)
		if reply, err := c.Request(dev, packet.GetMultiZoneEffect, nil, packet.StateMultiZoneEffect); err == nil {
			if p, err := packet.DecodeStateMultiZoneEffect(reply.Payload); err == nil {
				report.MultiZoneEffect = p.TypeName()
			}
		}
	}

	return report, nil
}

// queryZones reads the strip colors, preferring the extended message and
// falling back to the legacy chunked replies.
func (c *Client) queryZones(dev *registry.Device) []packet.Zone {
	if dev.HasExtendedMultizone() {
		reply, err := c.Request(dev, packet.GetExtendedColorZones, nil, packet.StateExtendedColorZones)
		if err == nil {
			if p, err := packet.DecodeStateExtendedColorZones(reply.Payload); err == nil {
				return p.Zones
			}
		}
		return nil
	}

	payload, err := packet.EncodeGetColorZones(0, 255)
	if err != nil {
		return nil
	}
	replies, err := c.RequestAll(dev, packet.GetColorZones, payload, packet.StateMultiZone)
	if err != nil {
		return nil
	}
	var zones []packet.Zone
	for _, reply := range replies {
		if p, err := packet.DecodeStateMultiZone(reply.Payload); err == nil {
			zones = append(zones, p.Zones...)
			if len(zones) >= int(p.ZonesCount) {
				break
			}
		}
	}
	return zones
}

// BroadcastPower switches every device on the network at once, without
// waiting for acknowledgements.
func (c *Client) BroadcastPower(on bool, duration time.Duration) error {
	var level uint16
	if on {
		level = 0xFFFF
	}
	payload, err := packet.EncodeSetLightPower(level, uint32(duration.Milliseconds()))
	if err != nil {
		return err
	}
	return c.broadcast(packet.SetLightPower, payload)
}

// BroadcastColor sets every device on the network to a color at once.
func (c *Client) BroadcastColor(color common.Color, duration time.Duration) error {
	payload, err := packet.EncodeSetColor(color, uint32(duration.Milliseconds()))
	if err != nil {
		return err
	}
	return c.broadcast(packet.SetColor, payload)
}

// RunEffect starts a named effect on a device.  A running effect on the
// same device is replaced.
func (c *Client) RunEffect(query, name string, params effects.Params) error {
	dev, err := c.GetDevice(query)
	if err != nil {
		return err
	}
	return c.effects.Start(dev, name, params)
}

// StopEffect stops the effect running on a device, if any.
func (c *Client) StopEffect(query string) error {
	dev, err := c.GetDevice(query)
	if err != nil {
		return err
	}
	c.effects.Stop(dev.Serial)
	return nil
}

// StopAllEffects stops every running effect.
func (c *Client) StopAllEffects() {
	c.effects.StopAll()
}

// RunningEffect reports the effect animating a device, if any.
func (c *Client) RunningEffect(query string) (string, bool) {
	dev, err := c.GetDevice(query)
	if err != nil {
		return ``, false
	}
	return c.effects.Running(dev.Serial)
}

// ListEffects names the available effects.
func (c *Client) ListEffects() []string {
	return effects.Names()
}

// Send fires one command at a device without waiting for a reply.  It also
// serves as the effects engine's transmitter.
func (c *Client) Send(dev *registry.Device, msgType packet.Message, payload []byte) error {
	if dev.Addr == nil {
		return common.ErrNotFound
	}
	target, err := packet.TargetFromSerial(dev.Serial)
	if err != nil {
		return err
	}

	conn, err := transport.Listen()
	if err != nil {
		return err
	}
	defer conn.Close()

	p := packet.New(msgType, c.source, target, payload)
	p.Sequence = c.nextSequence()
	return conn.WriteTo(p.Marshal(), dev.Addr)
}

// Request sends one command and waits for a reply of the given type from
// the same device.  Requesting an Acknowledgement sets the ack-required
// flag; anything else sets response-required.
func (c *Client) Request(dev *registry.Device, msgType packet.Message, payload []byte, resp packet.Message) (*packet.Packet, error) {
	if dev.Addr == nil {
		return nil, common.ErrNotFound
	}
	target, err := packet.TargetFromSerial(dev.Serial)
	if err != nil {
		return nil, err
	}

	conn, err := transport.Listen()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	p := packet.New(msgType, c.source, target, payload)
	p.Sequence = c.nextSequence()
	if resp == packet.Acknowledgement {
		p.AckRequired = true
	} else {
		p.ResRequired = true
	}
	if err := conn.WriteTo(p.Marshal(), dev.Addr); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout)
	for {
		reply, _, err := conn.ReadPacket(deadline)
		if err != nil {
			return nil, err
		}
		if reply.Source != c.source || reply.Type != resp {
			continue
		}
		if reply.Serial() != dev.Serial {
			continue
		}
		return reply, nil
	}
}

// RequestAll sends one command and collects every matching reply arriving
// before the timeout.  Some queries are answered with a burst of packets;
// running out the clock with a partial set is not an error.
func (c *Client) RequestAll(dev *registry.Device, msgType packet.Message, payload []byte, resp packet.Message) ([]*packet.Packet, error) {
	if dev.Addr == nil {
		return nil, common.ErrNotFound
	}
	target, err := packet.TargetFromSerial(dev.Serial)
	if err != nil {
		return nil, err
	}

	conn, err := transport.Listen()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	p := packet.New(msgType, c.source, target, payload)
	p.Sequence = c.nextSequence()
	p.ResRequired = true
	if err := conn.WriteTo(p.Marshal(), dev.Addr); err != nil {
		return nil, err
	}

	var replies []*packet.Packet
	deadline := time.Now().Add(c.timeout)
	for {
		reply, _, err := conn.ReadPacket(deadline)
		if err == common.ErrTimeout {
			return replies, nil
		}
		if err != nil {
			return nil, err
		}
		if reply.Source == c.source && reply.Type == resp && reply.Serial() == dev.Serial {
			replies = append(replies, reply)
		}
	}
}

func (c *Client) broadcast(msgType packet.Message, payload []byte) error {
	conn, err := transport.Listen()
	if err != nil {
		return err
	}
	defer conn.Close()

	p := packet.New(msgType, c.source, [8]byte{}, payload)
	p.Tagged = true
	p.Sequence = c.nextSequence()
	return conn.Broadcast(p.Marshal())
}

func (c *Client) nextSequence() uint8 {
	c.seqMutex.Lock()
	defer c.seqMutex.Unlock()
	c.sequence++
	return c.sequence
}
