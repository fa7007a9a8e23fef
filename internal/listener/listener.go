// Package listener supplies the reference position blend weights are
// evaluated against.
package listener

import (
	"sync"

	"github.com/Faultbox/blendzones/pkg/math"
)

// Provider reports the current listener position. ok is false when no
// listener is available.
type Provider interface {
	Position() (pos math.Vec3, ok bool)
}

// Advancer is implemented by providers that move over time.
type Advancer interface {
	// Advance moves the listener forward by dt seconds.
	Advance(dt float64)
}

// Fixed is a listener that never moves.
type Fixed struct {
	mu  sync.RWMutex
	pos math.Vec3
}

// NewFixed creates a listener at pos.
func NewFixed(pos math.Vec3) *Fixed {
	return &Fixed{pos: pos}
}

// Position returns the listener position.
func (f *Fixed) Position() (math.Vec3, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pos, true
}

// Set moves the listener.
func (f *Fixed) Set(pos math.Vec3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
}

// Path moves a listener along waypoints at a constant speed.
type Path struct {
	mu sync.RWMutex

	waypoints []math.Vec3
	speed     float64 // units per second
	loop      bool

	pos       math.Vec3
	nextIndex int
	finished  bool
}

// NewPath creates a path listener starting at the first waypoint. With loop
// set, the listener heads back to the first waypoint after the last one.
func NewPath(waypoints []math.Vec3, speed float64, loop bool) *Path {
	p := &Path{
		waypoints: append([]math.Vec3(nil), waypoints...),
		speed:     max(speed, 0),
		loop:      loop,
	}
	if len(p.waypoints) > 0 {
		p.pos = p.waypoints[0]
		p.nextIndex = 1
	}
	p.finished = len(p.waypoints) <= 1
	return p
}

// Position returns the current position. ok is false for a path without
// waypoints.
func (p *Path) Position() (math.Vec3, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pos, len(p.waypoints) > 0
}

// Done reports whether the listener has stopped at the end of the path.
func (p *Path) Done() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.finished
}

// Advance moves the listener dt seconds along the path, passing through as
// many waypoints as the distance covers.
func (p *Path) Advance(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || dt <= 0 || p.speed == 0 {
		return
	}

	remaining := p.speed * dt
	hops := 0
	for remaining > 0 && !p.finished {
		target := p.waypoints[p.nextIndex]
		dist := p.pos.Distance(target)
		if dist == 0 {
			// A loop of coincident waypoints goes nowhere.
			if hops++; hops > len(p.waypoints) {
				return
			}
		} else {
			hops = 0
		}

		if dist > remaining {
			p.pos = p.pos.Lerp(target, remaining/dist)
			return
		}

		// Reached waypoint
		p.pos = target
		remaining -= dist
		p.setNextWaypoint()
	}
}

func (p *Path) setNextWaypoint() {
	p.nextIndex++
	if p.nextIndex < len(p.waypoints) {
		return
	}
	if p.loop {
		p.nextIndex = 0
		return
	}
	p.nextIndex = len(p.waypoints) - 1
	p.finished = true
}
