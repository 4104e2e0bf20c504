package registry_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/registry"
)

func device(serial, ip, label string) *registry.Device {
	return &registry.Device{
		Serial: serial,
		Addr:   &net.UDPAddr{IP: net.ParseIP(ip), Port: 56700},
		Label:  label,
	}
}

var _ = Describe(`Registry`, func() {
	var reg *registry.Registry

	BeforeEach(func() {
		reg = registry.New()
	})

	Describe(`Upsert`, func() {
		It(`adds unknown serials`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`))
			Expect(reg.Len()).To(Equal(1))

			dev, err := reg.FindBySerial(`d0:73:d5:00:00:01`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Label).To(Equal(`Desk`))
			Expect(dev.SeenAt.IsZero()).To(BeFalse())
		})

		It(`merges into an existing record instead of replacing it`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`))
			reg.UpdateVersion(`d0:73:d5:00:00:01`, 1, 55, 0)

			// a later sighting with no label or product keeps both
			reg.Upsert(&registry.Device{
				Serial: `d0:73:d5:00:00:01`,
				Addr:   &net.UDPAddr{IP: net.ParseIP(`10.0.0.9`), Port: 56700},
			})

			dev, err := reg.FindBySerial(`d0:73:d5:00:00:01`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.IP()).To(Equal(`10.0.0.9`))
			Expect(dev.Label).To(Equal(`Desk`))
			Expect(dev.ProductID).To(Equal(uint32(55)))
		})

		It(`ignores records with no serial`, func() {
			reg.Upsert(&registry.Device{})
			Expect(reg.Len()).To(BeZero())
		})
	})

	Describe(`lookups`, func() {
		BeforeEach(func() {
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`))
			reg.Upsert(device(`d0:73:d5:00:00:02`, `10.0.0.6`, `Shelf`))
			reg.Upsert(device(`d0:73:d5:00:00:03`, `10.0.0.7`, `Shelf`))
		})

		It(`finds by IP`, func() {
			dev, err := reg.FindByIP(`10.0.0.6`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:02`))
		})

		It(`resolves a duplicated label to the earliest-registered device`, func() {
			dev, err := reg.FindByLabel(`Shelf`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:02`))
		})

		It(`matches labels regardless of case`, func() {
			dev, err := reg.FindByLabel(`desk`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:01`))

			dev, err = reg.Find(`SHELF`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:02`))
		})

		It(`falls back to substring label matches`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:04`, `10.0.0.8`, `Kitchen Bench`))

			dev, err := reg.Find(`bench`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:04`))
		})

		It(`prefers an exact label match over an earlier substring match`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:04`, `10.0.0.8`, `Desk Lamp`))
			reg.Upsert(device(`d0:73:d5:00:00:05`, `10.0.0.9`, `Lamp`))

			dev, err := reg.FindByLabel(`lamp`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:05`))
		})

		It(`tries serial, then IP, then label`, func() {
			dev, err := reg.Find(`10.0.0.7`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:03`))

			dev, err = reg.Find(`Desk`)
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Serial).To(Equal(`d0:73:d5:00:00:01`))
		})

		It(`returns ErrNotFound for unknown queries`, func() {
			_, err := reg.Find(`Attic`)
			Expect(err).To(MatchError(common.ErrNotFound))
		})

		It(`hands out copies, not the canonical records`, func() {
			dev, err := reg.FindBySerial(`d0:73:d5:00:00:01`)
			Expect(err).NotTo(HaveOccurred())
			dev.Label = `Mangled`

			again, err := reg.FindBySerial(`d0:73:d5:00:00:01`)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Label).To(Equal(`Desk`))
		})
	})

	Describe(`Snapshot`, func() {
		It(`preserves registration order`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:02`, `10.0.0.6`, `B`))
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `A`))

			devs := reg.Snapshot()
			Expect(devs).To(HaveLen(2))
			Expect(devs[0].Serial).To(Equal(`d0:73:d5:00:00:02`))
			Expect(devs[1].Serial).To(Equal(`d0:73:d5:00:00:01`))
		})
	})

	Describe(`ReplaceAll`, func() {
		It(`publishes new and expired device events`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`))

			sub, err := reg.NewSubscription()
			Expect(err).NotTo(HaveOccurred())
			defer sub.Close()

			reg.ReplaceAll([]*registry.Device{
				device(`d0:73:d5:00:00:02`, `10.0.0.6`, `Shelf`),
			})

			Expect(<-sub.Events()).To(Equal(common.EventNewDevice{Serial: `d0:73:d5:00:00:02`}))
			Expect(<-sub.Events()).To(Equal(common.EventExpiredDevice{Serial: `d0:73:d5:00:00:01`}))
			Expect(reg.Len()).To(Equal(1))
		})

		It(`keeps the record of surviving serials`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`))
			reg.ReplaceAll([]*registry.Device{
				device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`),
			})
			Expect(reg.Len()).To(Equal(1))
		})
	})

	Describe(`UpdateState`, func() {
		It(`publishes change events only for fields that changed`, func() {
			reg.Upsert(device(`d0:73:d5:00:00:01`, `10.0.0.5`, `Desk`))

			sub, err := reg.NewSubscription()
			Expect(err).NotTo(HaveOccurred())
			defer sub.Close()

			color := common.Color{Hue: 100, Saturation: 200, Brightness: 300, Kelvin: 3500}
			reg.UpdateState(`d0:73:d5:00:00:01`, color, 65535, `Desk`)

			Expect(<-sub.Events()).To(Equal(common.EventUpdatePower{Serial: `d0:73:d5:00:00:01`, Power: true}))
			Expect(<-sub.Events()).To(Equal(common.EventUpdateColor{Serial: `d0:73:d5:00:00:01`, Color: color}))
		})
	})
})

var _ = Describe(`Device`, func() {
	It(`derives capabilities from the product registry`, func() {
		dev := &registry.Device{Serial: `d0:73:d5:00:00:01`, ProductID: 55}
		Expect(dev.HasMatrix()).To(BeTrue())
		w, h := dev.MatrixSize()
		Expect(w).To(Equal(8))
		Expect(h).To(Equal(8))
	})

	It(`assumes color support for unknown products`, func() {
		dev := &registry.Device{Serial: `d0:73:d5:00:00:01`, ProductID: 60000}
		Expect(dev.HasColor()).To(BeTrue())
		Expect(dev.HasMatrix()).To(BeFalse())
	})
})
