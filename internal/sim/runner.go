// Package sim drives blend weight updates from a listener at a fixed rate.
package sim

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/blendzones/internal/listener"
	"github.com/Faultbox/blendzones/internal/logger"
	"github.com/Faultbox/blendzones/pkg/math"
)

// Updater recomputes weights for a listener position. *blend.Manager
// implements it.
type Updater interface {
	Update(pos math.Vec3) error
}

// StagedUpdater splits Update into a weight pass and a delivery pass.
// *blend.Manager implements it.
type StagedUpdater interface {
	Updater
	UpdateWeights(pos math.Vec3) error
	Deliver()
}

// Dumper writes current weights to the log.
type Dumper interface {
	DebugWeights()
}

// Hook is called after every tick with the tick number (from 1) and the
// position the tick evaluated.
type Hook func(tick int, pos math.Vec3)

// Runner advances the listener and updates every Updater once per tick.
type Runner struct {
	provider  listener.Provider
	updaters  []Updater
	hook      Hook
	dumpEvery int
	log       *zap.Logger

	ticks int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to the global logger named "sim".
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithHook sets the per-tick hook.
func WithHook(h Hook) Option {
	return func(r *Runner) { r.hook = h }
}

// WithDebugInterval dumps weights from every Updater that is also a Dumper
// every n ticks. 0 disables dumps.
func WithDebugInterval(n int) Option {
	return func(r *Runner) { r.dumpEvery = max(n, 0) }
}

// NewRunner creates a runner reading positions from provider.
func NewRunner(provider listener.Provider, updaters []Updater, opts ...Option) *Runner {
	r := &Runner{
		provider: provider,
		updaters: updaters,
		log:      logger.Named("sim"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ticks returns the number of ticks run so far.
func (r *Runner) Ticks() int {
	return r.ticks
}

// Tick advances the listener by dt seconds and updates every Updater at its
// new position. Staged updaters all finish their weight pass before the
// first one delivers to consumers; plain updaters run in order. A listener
// without a position is evaluated at the origin. Update failures are logged
// and do not stop the tick.
func (r *Runner) Tick(dt float64) math.Vec3 {
	if a, ok := r.provider.(listener.Advancer); ok {
		a.Advance(dt)
	}

	pos, ok := r.provider.Position()
	if !ok {
		pos = math.Vec3{}
	}

	// Every staged updater recomputes its weights before any of them
	// delivers, so consumers bound across managers see this tick's weights.
	var ready []StagedUpdater
	for i, u := range r.updaters {
		var err error
		if s, ok := u.(StagedUpdater); ok {
			if err = s.UpdateWeights(pos); err == nil {
				ready = append(ready, s)
			}
		} else {
			err = u.Update(pos)
		}
		if err != nil {
			r.log.Error("update failed", zap.Int("updater", i), zap.Error(err))
		}
	}
	for _, s := range ready {
		s.Deliver()
	}

	r.ticks++
	if r.dumpEvery > 0 && r.ticks%r.dumpEvery == 0 {
		for _, u := range r.updaters {
			if d, ok := u.(Dumper); ok {
				d.DebugWeights()
			}
		}
	}
	if r.hook != nil {
		r.hook(r.ticks, pos)
	}
	return pos
}

// Run ticks every interval until ctx is cancelled, maxTicks ticks have run
// (when maxTicks > 0) or a path listener reaches its last waypoint. Each tick
// advances simulated time by exactly interval. It returns ctx.Err() when
// cancelled and nil otherwise.
func (r *Runner) Run(ctx context.Context, interval time.Duration, maxTicks int) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", interval)
	}

	r.log.Info("starting simulation",
		zap.Duration("interval", interval),
		zap.Int("max_ticks", maxTicks),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := interval.Seconds()
	for start := r.ticks; ; {
		select {
		case <-ctx.Done():
			r.log.Info("simulation interrupted", zap.Int("ticks", r.ticks))
			return ctx.Err()
		case <-ticker.C:
			r.Tick(dt)
		}

		if maxTicks > 0 && r.ticks-start >= maxTicks {
			r.log.Info("simulation finished", zap.Int("ticks", r.ticks))
			return nil
		}
		if p, ok := r.provider.(interface{ Done() bool }); ok && p.Done() {
			r.log.Info("listener reached the end of its path", zap.Int("ticks", r.ticks))
			return nil
		}
	}
}
