package effects_test

import (
	"encoding/binary"
	"sort"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/effects"
	"github.com/lumenlabs/golight/mocks"
	"github.com/lumenlabs/golight/protocol/packet"
	"github.com/lumenlabs/golight/registry"
)

func bulbDevice() *registry.Device {
	return &registry.Device{
		Serial:    `d0:73:d5:00:00:01`,
		ProductID: 27,
		Color:     common.Color{Brightness: 0xFFFF, Kelvin: 3500},
	}
}

func tileDevice() *registry.Device {
	return &registry.Device{
		Serial:    `d0:73:d5:00:00:02`,
		ProductID: 55,
		Color:     common.Color{Brightness: 0xFFFF, Kelvin: 3500},
	}
}

var _ = Describe(`Engine`, func() {
	var (
		tx  *mocks.Transmitter
		eng *effects.Engine
	)

	BeforeEach(func() {
		tx = &mocks.Transmitter{}
		tx.On(`Send`, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		eng = effects.NewEngine(tx)
	})

	AfterEach(func() {
		eng.StopAll()
	})

	It(`rejects unknown effect names`, func() {
		err := eng.Start(bulbDevice(), `lavalamp`, effects.Params{})
		Expect(err).To(MatchError(common.ErrUnknownEffect))
	})

	It(`lists the catalog in sorted order`, func() {
		names := effects.Names()
		Expect(names).To(ContainElements(`flame`, `rainbow`, `strobe`, `sunrise`))
		Expect(sort.StringsAreSorted(names)).To(BeTrue())
	})

	Describe(`worker lifecycle`, func() {
		It(`runs at most one worker per device`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `rainbow`, effects.Params{})).To(Succeed())
			Expect(eng.Start(dev, `disco`, effects.Params{})).To(Succeed())

			name, running := eng.Running(dev.Serial)
			Expect(running).To(BeTrue())
			Expect(name).To(Equal(`disco`))
		})

		It(`stops cleanly and forgets the worker`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `rainbow`, effects.Params{})).To(Succeed())

			eng.Stop(dev.Serial)
			_, running := eng.Running(dev.Serial)
			Expect(running).To(BeFalse())
		})

		It(`tolerates stopping an idle device`, func() {
			eng.Stop(`d0:73:d5:ff:ff:ff`)
		})

		It(`keeps a single worker when starts race`, func() {
			dev := bulbDevice()
			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(eng.Start(dev, `rainbow`, effects.Params{})).To(Succeed())
				}()
			}
			wg.Wait()
			eng.StopAll()

			_, running := eng.Running(dev.Serial)
			Expect(running).To(BeFalse())

			sent := len(tx.SentPayloads(packet.SetColor))
			Consistently(func() int {
				return len(tx.SentPayloads(packet.SetColor))
			}).Should(Equal(sent))
		})

		It(`stops everything on StopAll`, func() {
			a, b := bulbDevice(), tileDevice()
			Expect(eng.Start(a, `rainbow`, effects.Params{})).To(Succeed())
			Expect(eng.Start(b, `candle`, effects.Params{})).To(Succeed())

			eng.StopAll()
			_, running := eng.Running(a.Serial)
			Expect(running).To(BeFalse())
			_, running = eng.Running(b.Serial)
			Expect(running).To(BeFalse())
		})
	})

	Describe(`waveform effects`, func() {
		It(`sends a single SetWaveform and then idles`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `sine`, effects.Params{Color: common.Color{Hue: 100, Kelvin: 3500}})).To(Succeed())

			Eventually(func() int {
				return len(tx.SentPayloads(packet.SetWaveform))
			}).Should(Equal(1))
			eng.Stop(dev.Serial)

			Expect(tx.SentPayloads(packet.SetWaveform)).To(HaveLen(1))
			Expect(tx.SentPayloads(packet.SetColor)).To(BeEmpty())
		})

		It(`clamps the strobe period to 100ms`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `strobe`, effects.Params{Period: 5 * time.Second})).To(Succeed())

			Eventually(func() int {
				return len(tx.SentPayloads(packet.SetWaveform))
			}).Should(Equal(1))
			eng.Stop(dev.Serial)

			payload := tx.SentPayloads(packet.SetWaveform)[0]
			period := binary.LittleEndian.Uint32(payload[10:14])
			Expect(period).To(BeNumerically(`<=`, 100))
			Expect(payload[20]).To(Equal(byte(packet.WaveformPulse)))
		})
	})

	Describe(`software effects`, func() {
		It(`drives candle with warm randomized colors`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `candle`, effects.Params{})).To(Succeed())

			Eventually(func() int {
				return len(tx.SentPayloads(packet.SetColor))
			}).Should(BeNumerically(`>=`, 2))
			eng.Stop(dev.Serial)

			for _, payload := range tx.SentPayloads(packet.SetColor) {
				kelvin := binary.LittleEndian.Uint16(payload[7:9])
				Expect(kelvin).To(Equal(uint16(2200)))
			}
		})

		It(`drives rainbow even when the period is shorter than one tick`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `rainbow`, effects.Params{Period: 10 * time.Millisecond})).To(Succeed())

			Eventually(func() int {
				return len(tx.SentPayloads(packet.SetColor))
			}).Should(BeNumerically(`>=`, 2))
			eng.Stop(dev.Serial)
		})

		It(`counts each disco jump as one cycle`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `disco`, effects.Params{Cycles: 3, Period: 100 * time.Millisecond})).To(Succeed())

			Eventually(func() bool {
				_, running := eng.Running(dev.Serial)
				return running
			}, 3*time.Second).Should(BeFalse())

			Expect(tx.SentPayloads(packet.SetColor)).To(HaveLen(3))
		})

		It(`finishes on its own when a cycle budget is set`, func() {
			dev := bulbDevice()
			Expect(eng.Start(dev, `police`, effects.Params{Cycles: 1, Period: 100 * time.Millisecond})).To(Succeed())

			Eventually(func() bool {
				_, running := eng.Running(dev.Serial)
				return running
			}, 3*time.Second).Should(BeFalse())

			// one cycle: two red and two blue flashes, each with an off
			Expect(tx.SentPayloads(packet.SetColor)).To(HaveLen(8))
		})
	})

	Describe(`firmware tile effects`, func() {
		It(`starts the firmware effect and switches it off on stop`, func() {
			dev := tileDevice()
			ack := packet.New(packet.Acknowledgement, 1, [8]byte{}, nil)
			tx.On(`Request`, mock.Anything, packet.SetTileEffect, mock.Anything, packet.Acknowledgement).Return(ack, nil)
			tx.On(`Request`, mock.Anything, packet.GetTileEffect, mock.Anything, packet.StateTileEffect).Return(nil, common.ErrTimeout)

			Expect(eng.Start(dev, `morph`, effects.Params{})).To(Succeed())
			time.Sleep(50 * time.Millisecond)
			eng.Stop(dev.Serial)

			sent := tx.SentPayloads(packet.SetTileEffect)
			Expect(sent).To(HaveLen(1))
			Expect(sent[0][6]).To(Equal(byte(packet.TileEffectOff)))
		})

		It(`leaves the device alone when another controller takes over`, func() {
			dev := tileDevice()
			ack := packet.New(packet.Acknowledgement, 1, [8]byte{}, nil)
			state := packet.New(packet.StateTileEffect, 1, [8]byte{}, make([]byte, 187))
			tx.On(`Request`, mock.Anything, packet.SetTileEffect, mock.Anything, packet.Acknowledgement).Return(ack, nil)
			tx.On(`Request`, mock.Anything, packet.GetTileEffect, mock.Anything, packet.StateTileEffect).Return(state, nil)

			Expect(eng.Start(dev, `morph`, effects.Params{})).To(Succeed())

			// first poll reports an effect this worker did not start
			Eventually(func() bool {
				_, running := eng.Running(dev.Serial)
				return running
			}, 3*time.Second).Should(BeFalse())

			Expect(tx.SentPayloads(packet.SetTileEffect)).To(BeEmpty())
		})

		It(`falls back to software rendering when firmware delivery fails`, func() {
			dev := tileDevice()
			tx.On(`Request`, mock.Anything, packet.SetTileEffect, mock.Anything, packet.Acknowledgement).Return(nil, common.ErrTimeout)

			Expect(eng.Start(dev, `flame`, effects.Params{})).To(Succeed())

			Eventually(func() int {
				return len(tx.SentPayloads(packet.Set64))
			}, 3*time.Second).Should(BeNumerically(`>=`, 1))
			eng.Stop(dev.Serial)
		})
	})
})
