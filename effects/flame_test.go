package effects_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/effects"
	"github.com/lumenlabs/golight/mocks"
	"github.com/lumenlabs/golight/protocol/packet"
)

var _ = Describe(`FlameSim`, func() {
	It(`replays identically from the same seed`, func() {
		a := effects.NewFlameSim(8, 8, rand.New(rand.NewSource(42)))
		b := effects.NewFlameSim(8, 8, rand.New(rand.NewSource(42)))

		for i := 0; i < 50; i++ {
			a.Step()
			b.Step()
			Expect(a.Frame()).To(Equal(b.Frame()), `diverged at step %d`, i)
		}
	})

	It(`diverges across different seeds`, func() {
		a := effects.NewFlameSim(8, 8, rand.New(rand.NewSource(1)))
		b := effects.NewFlameSim(8, 8, rand.New(rand.NewSource(2)))
		a.Step()
		b.Step()
		Expect(a.Frame()).NotTo(Equal(b.Frame()))
	})

	It(`keeps the bottom row burning`, func() {
		sim := effects.NewFlameSim(8, 8, rand.New(rand.NewSource(7)))
		for i := 0; i < 20; i++ {
			sim.Step()
		}
		frame := sim.Frame()
		for x := 0; x < 8; x++ {
			Expect(frame[7*8+x].Brightness).To(BeNumerically(`>`, 0))
		}
	})
})

var _ = Describe(`flame effect determinism`, func() {
	captureFrames := func(seed int64, frames int) [][]byte {
		tx := &mocks.Transmitter{}
		tx.On(`Send`, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		tx.On(`Request`, mock.Anything, packet.SetTileEffect, mock.Anything, packet.Acknowledgement).Return(nil, common.ErrTimeout)

		eng := effects.NewEngine(tx)
		eng.SetSeed(seed)

		dev := tileDevice()
		Expect(eng.Start(dev, `flame`, effects.Params{})).To(Succeed())
		Eventually(func() int {
			return len(tx.SentPayloads(packet.Set64))
		}, 5).Should(BeNumerically(`>=`, frames))
		eng.Stop(dev.Serial)

		return tx.SentPayloads(packet.Set64)[:frames]
	}

	It(`streams identical frames for identical seeds`, func() {
		first := captureFrames(42, 4)
		second := captureFrames(42, 4)
		Expect(second).To(Equal(first))
	})
})
