package effects

import (
	"time"

	"github.com/lumenlabs/golight/protocol/packet"
)

// catalog maps effect names to their implementations.  Waveform entries
// render in bulb firmware; the rest are driven by the worker.
var catalog = map[string]effect{
	// firmware waveforms
	`saw`:      {name: `saw`, run: waveformEffect(packet.WaveformSaw, 2*time.Second, 0)},
	`sine`:     {name: `sine`, run: waveformEffect(packet.WaveformSine, 2*time.Second, 0)},
	`halfsine`: {name: `halfsine`, run: waveformEffect(packet.WaveformHalfSine, 2*time.Second, 0)},
	`triangle`: {name: `triangle`, run: waveformEffect(packet.WaveformTriangle, 2*time.Second, 0)},
	`pulse`:    {name: `pulse`, run: waveformEffect(packet.WaveformPulse, time.Second, 0)},
	`strobe`:   {name: `strobe`, run: waveformEffect(packet.WaveformPulse, maxStrobePeriod, maxStrobePeriod)},

	// software effects
	`rainbow`: {name: `rainbow`, run: rainbow},
	`candle`:  {name: `candle`, run: candle},
	`disco`:   {name: `disco`, run: disco},
	`party`:   {name: `party`, run: party},
	`police`:  {name: `police`, run: police},
	`relax`:   {name: `relax`, run: relax},
	`sunrise`: {name: `sunrise`, run: sunrise},
	`sunset`:  {name: `sunset`, run: sunset},

	// matrix effects; flame, morph and sky are firmware-first with a
	// software fallback
	`flame`:          {name: `flame`, run: flame},
	`morph`:          {name: `morph`, run: morph},
	`sky`:            {name: `sky`, run: sky},
	`matrix_rainbow`: {name: `matrix_rainbow`, run: matrixRainbow},
	`matrix_wave`:    {name: `matrix_wave`, run: matrixWave},
}
