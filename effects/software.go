package effects

import (
	"context"
	"time"

	"github.com/lumenlabs/golight/common"
)

// Software effects drive the bulb with a stream of SetColor commands.  Each
// effect loops until its cycle budget runs out or the context is canceled;
// a zero cycle budget runs forever.

const rainbowInterval = 50 * time.Millisecond

// rainbow sweeps the full hue circle at constant brightness.  One cycle is
// one trip around the circle.
func rainbow(ctx context.Context, r *runner) error {
	period := r.params.period(5 * time.Second)
	ticks := int(period / rainbowInterval)
	if ticks < 1 {
		ticks = 1
	}
	step := 65535 / ticks
	if step < 1 {
		step = 1
	}

	hue := int(r.dev.Color.Hue)
	cycles := 0
	for {
		hue += step
		if hue > 0xFFFF {
			hue -= 0x10000
			cycles++
			if r.params.Cycles > 0 && cycles >= r.params.Cycles {
				return nil
			}
		}
		c := common.Color{
			Hue:        uint16(hue),
			Saturation: 0xFFFF,
			Brightness: 0xFFFF,
			Kelvin:     common.DefaultKelvin,
		}
		if err := r.setColor(c, rainbowInterval); err != nil {
			return err
		}
		if !r.sleep(ctx, rainbowInterval) {
			return nil
		}
	}
}

// candle flickers warm light around a 35-degree base hue, with randomized
// brightness and tick intervals.
func candle(ctx context.Context, r *runner) error {
	budget := r.params.Cycles * 10
	for tick := 0; budget == 0 || tick < budget; tick++ {
		hue := 35.0 + (r.rng.Float64()-0.5)*15.0
		c := common.Color{
			Hue:        common.HueFromDegrees(hue),
			Saturation: scale16(0.6),
			Brightness: scale16(0.7 + r.rng.Float64()*0.3),
			Kelvin:     2200,
		}
		interval := time.Duration(80+r.rng.Intn(120)) * time.Millisecond
		if err := r.setColor(c, interval); err != nil {
			return err
		}
		if !r.sleep(ctx, interval) {
			return nil
		}
	}
	return nil
}

// disco jumps between saturated hues, each jump at least a sixth of the hue
// circle from the last so consecutive colors read as distinct.
func disco(ctx context.Context, r *runner) error {
	interval := clampDuration(r.params.period(300*time.Millisecond), 100*time.Millisecond, 500*time.Millisecond)

	prev := -1
	// each jump is one cycle
	for tick := 0; r.params.Cycles == 0 || tick < r.params.Cycles; tick++ {
		hue := r.rng.Intn(0x10000)
		for prev >= 0 && hueDistance(hue, prev) < 10000 {
			hue = r.rng.Intn(0x10000)
		}
		prev = hue

		c := common.Color{
			Hue:        uint16(hue),
			Saturation: 0xFFFF,
			Brightness: 0xFFFF,
			Kelvin:     common.DefaultKelvin,
		}
		if err := r.setColor(c, 0); err != nil {
			return err
		}
		if !r.sleep(ctx, interval) {
			return nil
		}
	}
	return nil
}

// party cycles random saturated colors on a musical beat.
func party(ctx context.Context, r *runner) error {
	beat := clampDuration(r.params.period(500*time.Millisecond), 200*time.Millisecond, time.Second)

	for tick := 0; r.params.Cycles == 0 || tick < r.params.Cycles; tick++ {
		c := common.Color{
			Hue:        uint16(r.rng.Intn(0x10000)),
			Saturation: scale16(0.8 + r.rng.Float64()*0.2),
			Brightness: 0xFFFF,
			Kelvin:     common.DefaultKelvin,
		}
		if err := r.setColor(c, beat/4); err != nil {
			return err
		}
		if !r.sleep(ctx, beat) {
			return nil
		}
	}
	return nil
}

// police alternates double flashes of red and blue, emergency-beacon style.
func police(ctx context.Context, r *runner) error {
	speed := r.params.speed(1)
	interval := clampDuration(time.Duration(float64(r.params.period(time.Second))/speed/4), 50*time.Millisecond, 300*time.Millisecond)

	red := common.Color{Saturation: 0xFFFF, Brightness: 0xFFFF, Kelvin: common.DefaultKelvin}
	blue := common.Color{Hue: common.HueFromDegrees(240), Saturation: 0xFFFF, Brightness: 0xFFFF, Kelvin: common.DefaultKelvin}
	off := common.Color{Kelvin: common.DefaultKelvin}

	flash := func(c common.Color) bool {
		for i := 0; i < 2; i++ {
			if err := r.setColor(c, 0); err != nil {
				return false
			}
			if !r.sleep(ctx, interval) {
				return false
			}
			if err := r.setColor(off, 0); err != nil {
				return false
			}
			if !r.sleep(ctx, interval) {
				return false
			}
		}
		return true
	}

	for cycle := 0; r.params.Cycles == 0 || cycle < r.params.Cycles; cycle++ {
		if !flash(red) || !flash(blue) {
			return nil
		}
	}
	return nil
}

// relax breathes brightness slowly at a fixed warm temperature.
func relax(ctx context.Context, r *runner) error {
	period := r.params.period(10 * time.Second)
	step := 500 * time.Millisecond
	steps := int(period / step / 2)
	if steps < 1 {
		steps = 1
	}

	for cycle := 0; r.params.Cycles == 0 || cycle < r.params.Cycles; cycle++ {
		for i := 0; i <= steps; i++ {
			c := common.Color{
				Brightness: scale16(0.3 + 0.7*float64(i)/float64(steps)),
				Kelvin:     2700,
			}
			if err := r.setColor(c, step); err != nil {
				return err
			}
			if !r.sleep(ctx, step) {
				return nil
			}
		}
		for i := steps; i >= 0; i-- {
			c := common.Color{
				Brightness: scale16(0.3 + 0.7*float64(i)/float64(steps)),
				Kelvin:     2700,
			}
			if err := r.setColor(c, step); err != nil {
				return err
			}
			if !r.sleep(ctx, step) {
				return nil
			}
		}
	}
	return nil
}

// sunrise fades from a dim red glow up to bright neutral white in two
// phases: ignition, then bloom.
func sunrise(ctx context.Context, r *runner) error {
	return dawnRamp(ctx, r, false)
}

// sunset runs the sunrise ramp in reverse, ending with the light off.
func sunset(ctx context.Context, r *runner) error {
	return dawnRamp(ctx, r, true)
}

func dawnRamp(ctx context.Context, r *runner, reverse bool) error {
	total := r.params.period(10 * time.Second)
	if total < 10*time.Second {
		total = 10 * time.Second
	}
	step := 500 * time.Millisecond
	steps := int(total / step)

	for i := 0; i <= steps; i++ {
		progress := float64(i) / float64(steps)
		if reverse {
			progress = 1 - progress
		}
		if err := r.setColor(dawnColor(progress), step); err != nil {
			return err
		}
		if !r.sleep(ctx, step) {
			return nil
		}
	}
	if reverse {
		return r.setColor(common.Color{Kelvin: 1500}, 0)
	}
	return nil
}

// dawnColor maps ramp progress to a color: the first half warms a deep red
// glow, the second half desaturates toward full white.
func dawnColor(progress float64) common.Color {
	if progress < 0.5 {
		t := progress * 2
		return common.Color{
			Hue:        common.HueFromDegrees(30 * t),
			Saturation: scale16(1 - 0.5*t),
			Brightness: scale16(0.05 + 0.35*t),
			Kelvin:     uint16(1500 + t*1000),
		}
	}
	t := (progress - 0.5) * 2
	return common.Color{
		Hue:        common.HueFromDegrees(30),
		Saturation: scale16(0.5 * (1 - t)),
		Brightness: scale16(0.4 + 0.6*t),
		Kelvin:     uint16(2500 + t*1500),
	}
}

func scale16(f float64) uint16 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 0xFFFF
	}
	return uint16(f * 0xFFFF)
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// hueDistance measures the shortest way around the hue circle.
func hueDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 0x8000 {
		d = 0x10000 - d
	}
	return d
}
