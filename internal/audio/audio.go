// Package audio drives looping sound layers from zone blend weights.
package audio

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/blendzones/internal/logger"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// Bus mixes every layer into one stream. Mutations go through lock, which
// must be the lock of whatever device pulls samples from the bus.
type Bus struct {
	mixer      *beep.Mixer
	lock       sync.Locker
	sampleRate beep.SampleRate

	mu     sync.RWMutex
	master float64
}

// NewBus creates a bus. A nil lock is fine when nothing streams concurrently.
func NewBus(sampleRate beep.SampleRate, lock sync.Locker) *Bus {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Bus{
		mixer:      &beep.Mixer{},
		lock:       lock,
		sampleRate: sampleRate,
		master:     1.0,
	}
}

// Streamer returns the mixed output.
func (b *Bus) Streamer() beep.Streamer {
	return b.mixer
}

// SampleRate returns the output sample rate.
func (b *Bus) SampleRate() beep.SampleRate {
	return b.sampleRate
}

// Len returns the number of streams currently mixed.
func (b *Bus) Len() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.mixer.Len()
}

// SetMasterVolume sets the master volume (0.0 to 1.0). Layers pick it up on
// their next weight update.
func (b *Bus) SetMasterVolume(vol float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.master = clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (b *Bus) MasterVolume() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.master
}

func (b *Bus) do(fn func()) {
	b.lock.Lock()
	defer b.lock.Unlock()
	fn()
}

// Source opens a fresh stream for a layer.
type Source func() (beep.Streamer, beep.Format, error)

// WAVSource decodes WAV data on every open. When loop is set the stream
// restarts from the beginning whenever it runs out.
func WAVSource(data []byte, loop bool) Source {
	return func() (beep.Streamer, beep.Format, error) {
		streamer, format, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode wav: %w", err)
		}
		if loop {
			return &loopStreamer{streamer: streamer}, format, nil
		}
		return streamer, format, nil
	}
}

// LayerConfig describes a weight-driven sound layer.
type LayerConfig struct {
	Name   string
	Source Source
	// Gain scales the layer before the weight is applied (0.0 to 1.0).
	Gain float64
	// StopWhenZeroWeight stops playback whenever the weight drops to 0.
	// Otherwise the layer keeps playing silently.
	StopWhenZeroWeight bool
}

// Layer is a sound whose volume follows a blend weight. It starts playing
// when the weight becomes positive.
type Layer struct {
	mu  sync.Mutex
	cfg LayerConfig
	bus *Bus
	log *zap.Logger

	weight float64
	opened int

	ctrl   *beep.Ctrl
	volume *effects.Volume
	closer beep.StreamCloser
	done   *atomic.Bool
}

// NewLayer creates a stopped layer on bus.
func NewLayer(bus *Bus, cfg LayerConfig) *Layer {
	cfg.Gain = clamp(cfg.Gain, 0, 1)
	return &Layer{
		cfg: cfg,
		bus: bus,
		log: logger.Named("audio").With(zap.String("layer", cfg.Name)),
	}
}

// Start resets the weight to 0. Layers that keep playing at zero weight
// start their stream right away.
func (l *Layer) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.weight = 0
	if !l.cfg.StopWhenZeroWeight && !l.active() {
		if err := l.start(); err != nil {
			return err
		}
	}
	l.applyVolume()
	return nil
}

// SetWeight applies w (0.0 to 1.0) to the layer volume and starts or stops
// playback as needed. Start failures are logged.
func (l *Layer) SetWeight(w float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.weight = clamp(w, 0, 1)

	switch {
	case l.weight > 0 && !l.active():
		if err := l.start(); err != nil {
			l.log.Error("failed to start layer", zap.Error(err))
			return
		}
	case l.weight == 0 && l.cfg.StopWhenZeroWeight && l.active():
		l.stop()
		return
	}
	l.applyVolume()
}

// Weight returns the last applied weight.
func (l *Layer) Weight() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.weight, true
}

// Active reports whether the layer's stream is playing.
func (l *Layer) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active()
}

// Opened returns how many times the source has been opened.
func (l *Layer) Opened() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opened
}

// Stop stops playback.
func (l *Layer) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stop()
}

func (l *Layer) active() bool {
	return l.ctrl != nil && !l.done.Load()
}

func (l *Layer) start() error {
	if l.cfg.Source == nil {
		return fmt.Errorf("layer %q has no source", l.cfg.Name)
	}
	l.stop()

	streamer, format, err := l.cfg.Source()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	l.opened++

	if c, ok := streamer.(beep.StreamCloser); ok {
		l.closer = c
	}

	var resampled beep.Streamer = streamer
	if format.SampleRate != 0 && format.SampleRate != l.bus.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, l.bus.sampleRate, streamer)
	}

	done := &atomic.Bool{}
	l.done = done
	l.ctrl = &beep.Ctrl{Streamer: resampled}
	l.volume = &effects.Volume{Streamer: l.ctrl, Base: 2}
	l.applyVolume()

	// The callback runs on the device goroutine; it must not take l.mu.
	l.bus.do(func() {
		l.bus.mixer.Add(beep.Seq(l.volume, beep.Callback(func() {
			done.Store(true)
		})))
	})

	l.log.Debug("layer started")
	return nil
}

func (l *Layer) stop() {
	if l.ctrl == nil {
		return
	}
	ctrl := l.ctrl
	l.bus.do(func() {
		ctrl.Streamer = nil
	})
	if l.closer != nil {
		if err := l.closer.Close(); err != nil {
			l.log.Warn("failed to close source", zap.Error(err))
		}
	}
	l.done.Store(true)
	l.ctrl = nil
	l.volume = nil
	l.closer = nil
	l.log.Debug("layer stopped")
}

func (l *Layer) applyVolume() {
	if l.volume == nil {
		return
	}
	vol := l.bus.MasterVolume() * l.cfg.Gain * l.weight
	volume := l.volume
	l.bus.do(func() {
		volume.Silent = vol <= 0
		volume.Volume = gainExponent(vol)
	})
}

// gainExponent converts a linear amplitude (0.0 to 1.0) into the base-2
// exponent used by effects.Volume.
func gainExponent(vol float64) float64 {
	if vol <= 0 {
		return -16
	}
	return math.Log2(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loopStreamer wraps a streamer to make it loop.
type loopStreamer struct {
	streamer beep.StreamSeekCloser
}

func (l *loopStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.streamer.Stream(samples[filled:])
		filled += n
		if ok {
			continue
		}
		// Reset to beginning; give up on empty or unseekable streams.
		if l.streamer.Len() == 0 {
			return filled, filled > 0
		}
		if err := l.streamer.Seek(0); err != nil {
			return filled, filled > 0
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}

func (l *loopStreamer) Close() error {
	return l.streamer.Close()
}
