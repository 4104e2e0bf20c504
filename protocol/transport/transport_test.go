package transport_test

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
	"github.com/lumenlabs/golight/protocol/transport"
)

var _ = Describe(`Conn`, func() {
	var (
		sender   *transport.Conn
		receiver *net.UDPConn
	)

	BeforeEach(func() {
		var err error
		sender, err = transport.Listen()
		Expect(err).NotTo(HaveOccurred())
		receiver, err = net.ListenUDP(`udp4`, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sender.Close()
		receiver.Close()
	})

	It(`delivers an encoded packet to a unicast address`, func() {
		p := packet.New(packet.GetService, 1234, [8]byte{}, nil)
		err := sender.WriteTo(p.Marshal(), receiver.LocalAddr().(*net.UDPAddr))
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, 1500)
		receiver.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := receiver.ReadFromUDP(buf)
		Expect(err).NotTo(HaveOccurred())

		got, err := packet.Decode(buf[:n])
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Type).To(Equal(packet.GetService))
		Expect(got.Source).To(Equal(uint32(1234)))
	})

	It(`skips malformed datagrams and returns the next valid packet`, func() {
		senderAddr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: sender.LocalAddr().Port}

		_, err := receiver.WriteToUDP([]byte{0x01, 0x02, 0x03}, senderAddr)
		Expect(err).NotTo(HaveOccurred())
		p := packet.New(packet.StateService, 1234, [8]byte{}, nil)
		_, err = receiver.WriteToUDP(p.Marshal(), senderAddr)
		Expect(err).NotTo(HaveOccurred())

		got, _, err := sender.ReadPacket(time.Now().Add(time.Second))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Type).To(Equal(packet.StateService))
	})

	It(`returns ErrTimeout when the deadline passes without traffic`, func() {
		_, _, err := sender.ReadPacket(time.Now().Add(50 * time.Millisecond))
		Expect(err).To(MatchError(common.ErrTimeout))
	})
})

var _ = Describe(`BroadcastAddresses`, func() {
	It(`always yields at least one address`, func() {
		addrs := transport.BroadcastAddresses()
		Expect(addrs).NotTo(BeEmpty())
	})
})

var _ = Describe(`SubnetBroadcast`, func() {
	It(`derives the directed broadcast address of a subnet`, func() {
		ip, err := transport.SubnetBroadcast(`192.168.1.0/24`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ip.String()).To(Equal(`192.168.1.255`))
	})

	It(`honors non-octet-aligned masks`, func() {
		ip, err := transport.SubnetBroadcast(`10.0.0.0/22`)
		Expect(err).NotTo(HaveOccurred())
		Expect(ip.String()).To(Equal(`10.0.3.255`))
	})

	It(`rejects malformed and non-IPv4 input`, func() {
		_, err := transport.SubnetBroadcast(`not-a-subnet`)
		Expect(err).To(HaveOccurred())

		_, err = transport.SubnetBroadcast(`fe80::/64`)
		Expect(err).To(HaveOccurred())
	})
})
