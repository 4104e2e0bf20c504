// Package effects animates devices: hardware waveforms rendered by bulb
// firmware, software effects driven by timed command streams, and matrix
// effects rendered either by tile firmware or by a software fallback.
//
// Each animated device gets exactly one worker goroutine.  Starting an
// effect on a device that is already animating replaces the previous worker
// after a cooperative handover; stopping is always graceful.
package effects

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/protocol/packet"
	"github.com/lumenlabs/golight/registry"
)

// joinGrace bounds how long Stop waits for a worker to wind down before
// giving up on it.
const joinGrace = 1 * time.Second

// Transmitter delivers commands to devices.  The effects engine owns no
// sockets; everything it sends goes through this interface.
type Transmitter interface {
	// Send fires a command without waiting for a reply
	Send(dev *registry.Device, msgType packet.Message, payload []byte) error
	// Request sends a command and waits for the given response type
	Request(dev *registry.Device, msgType packet.Message, payload []byte, resp packet.Message) (*packet.Packet, error)
}

// Params tunes a running effect.  Zero values select per-effect defaults.
type Params struct {
	// Color is the target color for waveform effects
	Color common.Color
	// Period is one cycle's duration
	Period time.Duration
	// Cycles bounds the run; 0 means run until stopped
	Cycles int
	// Speed scales the tempo of software effects
	Speed float64
	// Persist leaves the device at the effect's target color instead of
	// restoring the original
	Persist bool
}

func (p Params) period(def time.Duration) time.Duration {
	if p.Period <= 0 {
		return def
	}
	return p.Period
}

func (p Params) speed(def float64) float64 {
	if p.Speed <= 0 {
		return def
	}
	return p.Speed
}

// An effect animates one device until the context is canceled or the
// effect's cycle budget runs out.
type effect struct {
	name string
	run  func(ctx context.Context, r *runner) error
}

// runner is the per-worker execution state handed to effect functions.
type runner struct {
	tx     Transmitter
	dev    *registry.Device
	params Params
	rng    *rand.Rand
}

// send encodes and fires one command at the worker's device.
func (r *runner) send(msgType packet.Message, payload []byte) error {
	return r.tx.Send(r.dev, msgType, payload)
}

// setColor transitions the device to a color over the given duration.
func (r *runner) setColor(c common.Color, duration time.Duration) error {
	payload, err := packet.EncodeSetColor(c, uint32(duration.Milliseconds()))
	if err != nil {
		return err
	}
	return r.send(packet.SetColor, payload)
}

// sleep waits for d or until the context is canceled, reporting whether the
// worker should keep running.
func (r *runner) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type worker struct {
	effect string
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine runs effects, one worker per device serial.
type Engine struct {
	tx Transmitter

	mu      sync.Mutex
	workers map[string]*worker

	// seed fixes the random stream of every worker when non-zero, so
	// stochastic effects can be replayed exactly
	seed int64
}

// NewEngine returns an Engine sending through tx.
func NewEngine(tx Transmitter) *Engine {
	return &Engine{
		tx:      tx,
		workers: make(map[string]*worker),
	}
}

// SetSeed fixes the random stream of subsequently started workers.  A zero
// seed restores time-based seeding.
func (e *Engine) SetSeed(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed = seed
}

// Names lists the available effects in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins the named effect on a device.  If the device is already
// animating, the previous worker is stopped first; there is never more than
// one worker per serial.
func (e *Engine) Start(dev *registry.Device, name string, params Params) error {
	eff, ok := catalog[name]
	if !ok {
		return common.ErrUnknownEffect
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{
		effect: name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// the registration must happen in the same critical section as the
	// previous-worker check, or two racing Starts could both spawn
	var seed int64
	for {
		e.mu.Lock()
		prev := e.workers[dev.Serial]
		if prev == nil {
			seed = e.seed
			e.workers[dev.Serial] = w
			e.mu.Unlock()
			break
		}
		e.mu.Unlock()
		e.stopWorker(dev.Serial, prev)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &runner{
		tx:     e.tx,
		dev:    dev,
		params: params,
		rng:    rand.New(rand.NewSource(seed)),
	}

	go func() {
		defer close(w.done)
		defer func() {
			e.mu.Lock()
			if e.workers[dev.Serial] == w {
				delete(e.workers, dev.Serial)
			}
			e.mu.Unlock()
		}()

		common.Log.Debugf(`effects: %s starting on %s`, name, dev.Serial)
		if err := eff.run(ctx, r); err != nil && err != context.Canceled {
			common.Log.Warnf(`effects: %s on %s: %v`, name, dev.Serial, err)
		}
		common.Log.Debugf(`effects: %s finished on %s`, name, dev.Serial)
	}()

	return nil
}

// Stop cancels the effect running on a device, waiting briefly for the
// worker to wind down.  Stopping an idle device is not an error.
func (e *Engine) Stop(serial string) {
	e.mu.Lock()
	w := e.workers[serial]
	e.mu.Unlock()
	if w == nil {
		return
	}
	e.stopWorker(serial, w)
}

// StopAll cancels every running effect.
func (e *Engine) StopAll() {
	e.mu.Lock()
	running := make(map[string]*worker, len(e.workers))
	for serial, w := range e.workers {
		running[serial] = w
	}
	e.mu.Unlock()

	for serial, w := range running {
		e.stopWorker(serial, w)
	}
}

// Running reports the effect name animating a device, if any.
func (e *Engine) Running(serial string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := e.workers[serial]
	if !ok {
		return ``, false
	}
	return w.effect, true
}

func (e *Engine) stopWorker(serial string, w *worker) {
	w.cancel()
	select {
	case <-w.done:
	case <-time.After(joinGrace):
		common.Log.Warnf(`effects: worker for %s did not stop within %v`, serial, joinGrace)
	}

	e.mu.Lock()
	if e.workers[serial] == w {
		delete(e.workers, serial)
	}
	e.mu.Unlock()
}
