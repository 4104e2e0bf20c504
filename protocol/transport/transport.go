// Package transport provides the UDP socket layer: ephemeral sockets for
// request/response exchanges and subnet broadcast for discovery.
package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
)

const (
	// DefaultPort is the UDP port devices listen on
	DefaultPort = 56700
	// maxDatagram bounds a single read; no protocol message exceeds this
	maxDatagram = 1500
)

// Conn wraps a UDP socket bound to an ephemeral local port.  Each exchange
// (broadcast round, unicast query) opens its own Conn and closes it when
// done, so no socket state is shared between operations.
type Conn struct {
	sock *net.UDPConn
}

// Listen opens a new socket on an ephemeral local port.
func Listen() (*Conn, error) {
	sock, err := net.ListenUDP(`udp4`, &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, err
	}
	return &Conn{sock: sock}, nil
}

// WriteTo sends an encoded packet to a single device address.
func (c *Conn) WriteTo(data []byte, addr *net.UDPAddr) error {
	_, err := c.sock.WriteToUDP(data, addr)
	return err
}

// Broadcast sends an encoded packet to each destination address.  When no
// destinations are given, the directed broadcast address of every interface
// is used on the default port.
func (c *Conn) Broadcast(data []byte, dests ...*net.UDPAddr) error {
	if len(dests) == 0 {
		for _, ip := range BroadcastAddresses() {
			dests = append(dests, &net.UDPAddr{IP: ip, Port: DefaultPort})
		}
	}
	var lastErr error
	for _, dest := range dests {
		if _, err := c.sock.WriteToUDP(data, dest); err != nil {
			common.Log.Warnf(`broadcast to %v failed: %v`, dest, err)
			lastErr = err
		}
	}
	if lastErr != nil && len(dests) == 1 {
		return lastErr
	}
	return nil
}

// ReadPacket reads and decodes one datagram, honoring the given deadline.
// Datagrams that fail to decode are logged and skipped; the read loop keeps
// going until a valid packet arrives or the deadline passes.
func (c *Conn) ReadPacket(deadline time.Time) (*packet.Packet, *net.UDPAddr, error) {
	buf := make([]byte, maxDatagram)
	for {
		if err := c.sock.SetReadDeadline(deadline); err != nil {
			return nil, nil, err
		}
		n, addr, err := c.sock.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return nil, nil, common.ErrTimeout
			}
			return nil, nil, err
		}
		p, err := packet.Decode(buf[:n])
		if err != nil {
			common.Log.Debugf(`discarding malformed datagram from %v: %v`, addr, err)
			continue
		}
		return p, addr, nil
	}
}

// LocalAddr reports the socket's bound address.
func (c *Conn) LocalAddr() *net.UDPAddr {
	return c.sock.LocalAddr().(*net.UDPAddr)
}

// Close releases the underlying socket.
func (c *Conn) Close() error {
	return c.sock.Close()
}

// SubnetBroadcast computes the directed broadcast address of an IPv4
// subnet given in CIDR notation, e.g. `192.168.1.0/24` → 192.168.1.255.
func SubnetBroadcast(cidr string) (net.IP, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf(`not an IPv4 subnet: %s`, cidr)
	}
	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	bcast := make(net.IP, len(ip4))
	for i := range ip4 {
		bcast[i] = ip4[i] | ^mask[i]
	}
	return bcast, nil
}

// BroadcastAddresses derives the directed broadcast address of every
// up, non-loopback IPv4 interface.  The limited broadcast address is the
// fallback when no interface yields one.
func BroadcastAddresses() []net.IP {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		common.Log.Warnf(`enumerating interfaces: %v`, err)
		return []net.IP{net.IPv4bcast}
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil {
				continue
			}
			mask := ipnet.Mask
			if len(mask) == net.IPv6len {
				mask = mask[12:]
			}
			bcast := make(net.IP, len(ip4))
			for i := range ip4 {
				bcast[i] = ip4[i] | ^mask[i]
			}
			ips = append(ips, bcast)
		}
	}

	if len(ips) == 0 {
		ips = append(ips, net.IPv4bcast)
	}
	return ips
}
