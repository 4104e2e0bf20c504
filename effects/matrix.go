package effects

import (
	"context"
	"math"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
)

const (
	// flameTick is the software flame frame interval
	flameTick = 100 * time.Millisecond
	// firmwarePollInterval paces the status polls while a firmware tile
	// effect runs
	firmwarePollInterval = 500 * time.Millisecond
)

// morphPalette is the default palette for the morph effect: six fully
// saturated hues spread around the circle.
func morphPalette() []common.Color {
	palette := make([]common.Color, 6)
	for i := range palette {
		palette[i] = common.Color{
			Hue:        common.HueFromDegrees(float64(i) * 60),
			Saturation: 0xFFFF,
			Brightness: 0xFFFF,
			Kelvin:     common.DefaultKelvin,
		}
	}
	return palette
}

// flame prefers the firmware renderer on matrix devices and falls back to
// the software simulation when the device has no matrix or the firmware
// command cannot be delivered.
func flame(ctx context.Context, r *runner) error {
	if r.dev.HasMatrix() {
		err := firmwareTileEffect(ctx, r, packet.TileEffectFlame, packet.TileEffectParams{}, nil)
		if err == nil {
			return nil
		}
		common.Log.Warnf(`effects: firmware flame on %s failed (%v), using software renderer`, r.dev.Serial, err)
	}
	return softwareFlame(ctx, r)
}

// softwareFlame streams simulated fire frames.  On matrix devices each
// frame is a full Set64; on plain bulbs the frame collapses to its average
// via SetColor, so the effect degrades instead of disappearing.
func softwareFlame(ctx context.Context, r *runner) error {
	width, height := 8, 8
	if r.dev.HasMatrix() {
		width, height = r.dev.MatrixSize()
	}
	sim := NewFlameSim(width, height, r.rng)

	budget := r.params.Cycles * 10
	for tick := 0; budget == 0 || tick < budget; tick++ {
		sim.Step()
		frame := sim.Frame()

		var err error
		if r.dev.HasMatrix() {
			err = r.send(packet.Set64, packet.EncodeSet64(frame, 0, 0))
		} else {
			err = r.setColor(averageColor(frame), flameTick)
		}
		if err != nil {
			return err
		}
		if !r.sleep(ctx, flameTick) {
			return nil
		}
	}
	return nil
}

// morph runs the firmware morph with a saturated palette, falling back to
// the software matrix rainbow sweep.
func morph(ctx context.Context, r *runner) error {
	if r.dev.HasMatrix() {
		err := firmwareTileEffect(ctx, r, packet.TileEffectMorph, packet.TileEffectParams{}, morphPalette())
		if err == nil {
			return nil
		}
		common.Log.Warnf(`effects: firmware morph on %s failed (%v), using software renderer`, r.dev.Serial, err)
	}
	return matrixRainbow(ctx, r)
}

// matrixRainbow sweeps a hue gradient diagonally across the matrix, one
// step per tick.  Non-matrix devices get the plain rainbow instead.
func matrixRainbow(ctx context.Context, r *runner) error {
	if !r.dev.HasMatrix() {
		return rainbow(ctx, r)
	}
	width, height := r.dev.MatrixSize()
	tick := r.params.period(3*time.Second) / time.Duration(width)

	budget := r.params.Cycles * 10
	for step := 0; budget == 0 || step < budget; step++ {
		frame := make([]common.Color, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				// diagonal position sets the hue offset
				hue := (step*width + x + y) * 0x10000 / (width + height)
				frame[y*width+x] = common.Color{
					Hue:        uint16(hue),
					Saturation: 0xFFFF,
					Brightness: 0xFFFF,
					Kelvin:     common.DefaultKelvin,
				}
			}
		}
		if err := r.send(packet.Set64, packet.EncodeSet64(frame, 0, uint32(tick.Milliseconds()))); err != nil {
			return err
		}
		if !r.sleep(ctx, tick) {
			return nil
		}
	}
	return nil
}

// matrixWave rolls a sine brightness field over a fixed hue.  Non-matrix
// devices collapse to a brightness breath at the same tempo.
func matrixWave(ctx context.Context, r *runner) error {
	period := r.params.period(2 * time.Second)
	tick := 100 * time.Millisecond

	width, height := 1, 1
	if r.dev.HasMatrix() {
		width, height = r.dev.MatrixSize()
	}

	hue := r.params.Color.Hue
	if r.params.Color == (common.Color{}) {
		hue = common.HueFromDegrees(200)
	}

	budget := r.params.Cycles * 10
	for step := 0; budget == 0 || step < budget; step++ {
		phase := 2 * math.Pi * float64(step) * float64(tick) / float64(period)
		frame := make([]common.Color, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				level := 0.5 + 0.5*math.Sin(phase+2*math.Pi*float64(x+y)/float64(width+height))
				frame[y*width+x] = common.Color{
					Hue:        hue,
					Saturation: 0xFFFF,
					Brightness: scale16(0.1 + 0.9*level),
					Kelvin:     common.DefaultKelvin,
				}
			}
		}

		var err error
		if r.dev.HasMatrix() {
			err = r.send(packet.Set64, packet.EncodeSet64(frame, 0, uint32(tick.Milliseconds())))
		} else {
			err = r.setColor(frame[0], tick)
		}
		if err != nil {
			return err
		}
		if !r.sleep(ctx, tick) {
			return nil
		}
	}
	return nil
}

// sky runs the firmware sky effect, falling back to the sunrise ramp on
// devices that cannot render it.
func sky(ctx context.Context, r *runner) error {
	if r.dev.HasMatrix() {
		params := packet.TileEffectParams{
			SkyType:            2, // clouds
			CloudSaturationMin: 50,
			CloudSaturationMax: 180,
		}
		err := firmwareTileEffect(ctx, r, packet.TileEffectSky, params, nil)
		if err == nil {
			return nil
		}
		common.Log.Warnf(`effects: firmware sky on %s failed (%v), using software renderer`, r.dev.Serial, err)
	}
	return sunrise(ctx, r)
}

// firmwareTileEffect starts a firmware tile effect and babysits it: the
// device renders on its own while the worker polls for liveness, and the
// effect is switched off when the worker stops.  Delivery failure of the
// start command is returned to the caller so it can fall back to software
// rendering.
func firmwareTileEffect(ctx context.Context, r *runner, kind packet.TileEffect, params packet.TileEffectParams, palette []common.Color) error {
	instanceID := r.rng.Uint32()
	speed := uint32(r.params.period(3 * time.Second).Milliseconds())

	start := packet.EncodeSetTileEffect(kind, instanceID, speed, 0, params, palette)
	if _, err := r.tx.Request(r.dev, packet.SetTileEffect, start, packet.Acknowledgement); err != nil {
		return err
	}

	takenOver := false
	defer func() {
		if takenOver {
			// whoever replaced the effect owns the device now
			return
		}
		off := packet.EncodeSetTileEffect(packet.TileEffectOff, instanceID, 0, 0, packet.TileEffectParams{}, nil)
		if err := r.send(packet.SetTileEffect, off); err != nil {
			common.Log.Warnf(`effects: could not switch off tile effect on %s: %v`, r.dev.Serial, err)
		}
	}()

	for {
		if !r.sleep(ctx, firmwarePollInterval) {
			return nil
		}
		reply, err := r.tx.Request(r.dev, packet.GetTileEffect, nil, packet.StateTileEffect)
		if err != nil {
			common.Log.Debugf(`effects: tile effect poll on %s: %v`, r.dev.Serial, err)
			continue
		}
		if state, err := packet.DecodeStateTileEffect(reply.Payload); err == nil && state.EffectType != kind {
			takenOver = true
			return nil
		}
	}
}

// averageColor collapses a frame to a single color for non-matrix devices.
func averageColor(frame []common.Color) common.Color {
	if len(frame) == 0 {
		return common.Color{Kelvin: common.DefaultKelvin}
	}
	var h, s, b, k int
	for _, c := range frame {
		h += int(c.Hue)
		s += int(c.Saturation)
		b += int(c.Brightness)
		k += int(c.Kelvin)
	}
	n := len(frame)
	return common.Color{
		Hue:        uint16(h / n),
		Saturation: uint16(s / n),
		Brightness: uint16(b / n),
		Kelvin:     uint16(k / n),
	}
}
