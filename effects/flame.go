package effects

import (
	"math/rand"

	"github.com/lumenlabs/golight/common"
)

// FlameSim is a heat-diffusion fire simulation over a zone matrix.  Heat is
// injected along the bottom row, diffuses upward with damping, and cools
// everywhere each step.  Given the same dimensions and random source, the
// frame sequence is fully reproducible.
type FlameSim struct {
	width  int
	height int
	heat   []float64
	rng    *rand.Rand
}

// NewFlameSim returns a simulation over a width x height matrix drawing
// randomness from rng.
func NewFlameSim(width, height int, rng *rand.Rand) *FlameSim {
	return &FlameSim{
		width:  width,
		height: height,
		heat:   make([]float64, width*height),
		rng:    rng,
	}
}

// Step advances the simulation by one tick: upward diffusion, cooling, then
// fresh heat along the bottom row.
func (s *FlameSim) Step() {
	next := make([]float64, len(s.heat))

	// each cell above the bottom row pulls heat from the cell below it
	// and that cell's diagonal neighbors, damped so flames taper off
	for y := 0; y < s.height-1; y++ {
		for x := 0; x < s.width; x++ {
			sum := s.at(x, y+1)
			n := 1
			if x > 0 {
				sum += s.at(x-1, y+1)
				n++
			}
			if x < s.width-1 {
				sum += s.at(x+1, y+1)
				n++
			}
			next[y*s.width+x] = sum / float64(n) * 0.7
		}
	}

	for i := range next {
		next[i] -= 0.05 + s.rng.Float64()*0.1
		if next[i] < 0 {
			next[i] = 0
		}
	}

	base := (s.height - 1) * s.width
	for x := 0; x < s.width; x++ {
		next[base+x] = 0.3 + s.rng.Float64()*0.4
	}

	s.heat = next
}

// Frame renders the current heat field as matrix colors, row-major from the
// top-left.
func (s *FlameSim) Frame() []common.Color {
	frame := make([]common.Color, len(s.heat))
	for i, h := range s.heat {
		frame[i] = fireColor(h)
	}
	return frame
}

func (s *FlameSim) at(x, y int) float64 {
	return s.heat[y*s.width+x]
}

// fireColor maps a heat intensity to a flame color: embers are deep red,
// mid intensities orange, the hottest cells a brighter desaturated yellow.
func fireColor(intensity float64) common.Color {
	switch {
	case intensity < 0.2:
		return common.Color{
			Saturation: 0xFFFF,
			Brightness: scale16(intensity),
			Kelvin:     2000,
		}
	case intensity < 0.5:
		return common.Color{
			Hue:        common.HueFromDegrees(15),
			Saturation: 0xFFFF,
			Brightness: scale16(intensity),
			Kelvin:     2000,
		}
	default:
		return common.Color{
			Hue:        common.HueFromDegrees(30),
			Saturation: scale16(0.7),
			Brightness: scale16(intensity),
			Kelvin:     2200,
		}
	}
}
