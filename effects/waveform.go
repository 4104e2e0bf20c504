package effects

import (
	"context"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
)

// maxStrobePeriod caps the strobe cycle time; firmware renders anything
// longer as a lazy blink rather than a strobe.
const maxStrobePeriod = 100 * time.Millisecond

const defaultWaveformCycles = 10

// waveformEffect renders entirely in bulb firmware: a single SetWaveform
// command starts the animation, and the worker just waits out the run so a
// replacement effect can take over cleanly.  A non-zero maxPeriod caps the
// requested cycle time.
func waveformEffect(shape packet.Waveform, defPeriod, maxPeriod time.Duration) func(context.Context, *runner) error {
	return func(ctx context.Context, r *runner) error {
		period := r.params.period(defPeriod)
		if maxPeriod > 0 && period > maxPeriod {
			period = maxPeriod
		}

		cycles := r.params.Cycles
		if cycles <= 0 {
			cycles = defaultWaveformCycles
		}

		color := r.params.Color
		if color == (common.Color{}) {
			color = waveformTarget(shape, r.dev.Color)
		}

		payload, err := packet.EncodeSetWaveform(color, shape, uint32(period.Milliseconds()), float32(cycles), !r.params.Persist, 0)
		if err != nil {
			return err
		}
		if err := r.send(packet.SetWaveform, payload); err != nil {
			return err
		}

		r.sleep(ctx, period*time.Duration(cycles))
		return nil
	}
}

// waveformTarget derives a default target color from the device's current
// color: pulse shapes swing to black, continuous shapes dim to a fifth of
// the current brightness.
func waveformTarget(shape packet.Waveform, current common.Color) common.Color {
	target := current
	if shape == packet.WaveformPulse {
		target.Brightness = 0
	} else {
		target.Brightness = current.Brightness / 5
	}
	if target.Kelvin == 0 {
		target.Kelvin = common.DefaultKelvin
	}
	return target
}
