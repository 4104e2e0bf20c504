package discovery_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/discovery"
	"github.com/lumenlabs/golight/mocks"
	"github.com/lumenlabs/golight/registry"
)

var _ = Describe(`Engine`, func() {
	var (
		reg  *registry.Registry
		bulb *mocks.Bulb
	)

	BeforeEach(func() {
		reg = registry.New()
		var err error
		bulb, err = mocks.NewBulb(`d0:73:d5:aa:bb:cc`)
		Expect(err).NotTo(HaveOccurred())
		bulb.SetState(65535, common.Color{Hue: 100, Saturation: 200, Brightness: 300, Kelvin: 3500}, `Lounge`)
	})

	AfterEach(func() {
		bulb.Close()
	})

	newEngine := func(opts discovery.Options) *discovery.Engine {
		opts.Destinations = []*net.UDPAddr{bulb.Addr()}
		if opts.Rounds == 0 {
			opts.Rounds = 2
		}
		if opts.RoundTimeout == 0 {
			opts.RoundTimeout = 200 * time.Millisecond
		}
		return discovery.New(reg, opts)
	}

	It(`finds a responding device and refreshes its state`, func() {
		eng := newEngine(discovery.Options{})

		devs, err := eng.Discover(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(devs).To(HaveLen(1))

		dev := devs[0]
		Expect(dev.Serial).To(Equal(`d0:73:d5:aa:bb:cc`))
		Expect(dev.Addr.Port).To(Equal(bulb.Addr().Port))
		Expect(dev.Label).To(Equal(`Lounge`))
		Expect(dev.PoweredOn()).To(BeTrue())
		Expect(dev.Color.Hue).To(Equal(uint16(100)))
		Expect(dev.ProductID).To(Equal(uint32(27)))
		Expect(dev.FirmwareMajor).To(Equal(uint16(3)))
	})

	It(`merges duplicate replies across rounds into one record`, func() {
		eng := newEngine(discovery.Options{Rounds: 3, SkipRefresh: true})

		devs, err := eng.Discover(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(devs).To(HaveLen(1))
		Expect(reg.Len()).To(Equal(1))
	})

	It(`uses a source identifier outside the reserved range`, func() {
		eng := newEngine(discovery.Options{})
		Expect(eng.Source()).To(BeNumerically(`>=`, 2))
	})

	It(`honors context cancellation`, func() {
		eng := newEngine(discovery.Options{Rounds: 5, RoundTimeout: time.Second})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := eng.Discover(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe(`Engine without devices`, func() {
	It(`returns an empty result, not an error`, func() {
		reg := registry.New()

		// a socket nobody answers from
		silent, err := net.ListenUDP(`udp4`, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
		Expect(err).NotTo(HaveOccurred())
		defer silent.Close()

		eng := discovery.New(reg, discovery.Options{
			Rounds:       1,
			RoundTimeout: 100 * time.Millisecond,
			Destinations: []*net.UDPAddr{silent.LocalAddr().(*net.UDPAddr)},
		})

		devs, err := eng.Discover(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(devs).To(BeEmpty())
	})
})
