package common_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lumenlabs/golight/common"
)

var _ = Describe(`Color`, func() {
	Describe(`ColorFromDegrees`, func() {
		It(`quantizes hue onto 65536 steps`, func() {
			Expect(common.ColorFromDegrees(0, 1, 1, 3500).Hue).To(Equal(uint16(0)))
			Expect(common.ColorFromDegrees(120, 1, 1, 3500).Hue).To(Equal(uint16(21845)))
			Expect(common.ColorFromDegrees(240, 1, 1, 3500).Hue).To(Equal(uint16(43691)))
		})

		It(`wraps a full circle back to zero`, func() {
			Expect(common.ColorFromDegrees(360, 1, 1, 3500).Hue).To(Equal(uint16(0)))
		})

		It(`round-trips through ToDegrees within quantization error`, func() {
			c := common.ColorFromDegrees(213.7, 0.5, 0.25, 3500)
			h, s, b := c.ToDegrees()
			Expect(h).To(BeNumerically(`~`, 213.7, 0.01))
			Expect(s).To(BeNumerically(`~`, 0.5, 0.001))
			Expect(b).To(BeNumerically(`~`, 0.25, 0.001))
		})
	})

	Describe(`ParseColor`, func() {
		It(`resolves named colors`, func() {
			c, err := common.ParseColor(`red`, common.DefaultKelvin)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Hue).To(Equal(uint16(0)))
			Expect(c.Saturation).To(Equal(uint16(65535)))
		})

		It(`gives the white variants their own temperatures`, func() {
			warm, err := common.ParseColor(`warm_white`, common.DefaultKelvin)
			Expect(err).NotTo(HaveOccurred())
			Expect(warm.Kelvin).To(Equal(uint16(2700)))
			Expect(warm.Saturation).To(Equal(uint16(0)))

			cool, err := common.ParseColor(`cool_white`, common.DefaultKelvin)
			Expect(err).NotTo(HaveOccurred())
			Expect(cool.Kelvin).To(Equal(uint16(6500)))
		})

		It(`parses hex colors with and without the hash`, func() {
			withHash, err := common.ParseColor(`#ff0000`, 3500)
			Expect(err).NotTo(HaveOccurred())
			bare, err := common.ParseColor(`ff0000`, 3500)
			Expect(err).NotTo(HaveOccurred())
			Expect(withHash).To(Equal(bare))
			Expect(withHash.Hue).To(Equal(uint16(0)))
			Expect(withHash.Brightness).To(Equal(uint16(65535)))
		})

		It(`parses rgb() colors`, func() {
			c, err := common.ParseColor(`rgb(0, 255, 0)`, 3500)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Hue).To(Equal(uint16(21845)))
		})

		It(`parses hsb() with degrees and percentages`, func() {
			c, err := common.ParseColor(`hsb(240, 100, 50)`, 3500)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Hue).To(Equal(uint16(43691)))
			Expect(c.Saturation).To(Equal(uint16(65535)))
			Expect(c.Brightness).To(BeNumerically(`~`, 32768, 1))
		})

		It(`parses hsbk() with an explicit temperature`, func() {
			c, err := common.ParseColor(`hsbk(0, 0, 100, 2200)`, 3500)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Kelvin).To(Equal(uint16(2200)))
		})

		It(`rejects out-of-range rgb components`, func() {
			_, err := common.ParseColor(`rgb(300, 0, 0)`, 3500)
			Expect(err).To(MatchError(common.ErrInvalidColorFormat))
		})

		It(`rejects unrecognized strings`, func() {
			_, err := common.ParseColor(`chartreuse-ish`, 3500)
			Expect(err).To(MatchError(common.ErrInvalidColorFormat))
		})
	})
})
