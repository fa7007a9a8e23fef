// Package blend distributes a shared weight budget across overlapping zones
// and feeds the results to weight consumers.
package blend

import (
	"cmp"
	"maps"
	"slices"

	"github.com/Faultbox/blendzones/internal/zone"
	"github.com/Faultbox/blendzones/pkg/math"
)

// ZoneSource resolves zone handles. Get must report false for handles whose
// zone has been destroyed.
type ZoneSource interface {
	Get(h zone.Handle) (*zone.Zone, bool)
}

type ranked struct {
	handle   zone.Handle
	priority int
}

// Distributor computes per-zone weights for a fixed set of zones so that the
// weights of all zones together never exceed 1. Higher priority zones
// consume the budget first.
//
// A Distributor is not safe for concurrent use.
type Distributor struct {
	zones       ZoneSource
	initialized bool

	order   []zone.Handle // registration order
	weights map[zone.Handle]float64

	// scratch, reused between updates
	relevant []ranked
}

// NewDistributor creates an uninitialized distributor reading zones from src.
// The distributor never owns the zones.
func NewDistributor(src ZoneSource) *Distributor {
	return &Distributor{zones: src}
}

// Initialize registers the zone set. It can only succeed once; later calls
// return ErrAlreadyInitialized and keep the first registration. Duplicate
// handles are registered once.
func (d *Distributor) Initialize(handles ...zone.Handle) error {
	if d.initialized {
		return ErrAlreadyInitialized
	}

	d.weights = make(map[zone.Handle]float64, len(handles))
	d.order = make([]zone.Handle, 0, len(handles))
	d.relevant = make([]ranked, 0, len(handles))

	for _, h := range handles {
		if _, ok := d.weights[h]; ok {
			continue
		}
		d.weights[h] = 0
		d.order = append(d.order, h)
	}

	d.initialized = true
	return nil
}

// Initialized reports whether Initialize has succeeded.
func (d *Distributor) Initialized() bool {
	return d.initialized
}

// UpdateWeightData recomputes every registered zone's weight for pos.
//
// Each zone's weight is first computed in isolation. When more than one zone
// ends up with a positive weight, zones are processed in groups of equal
// priority, highest first, starting from a budget of 1. A group asking for
// more than the remaining budget is scaled down to exactly the remaining
// budget; the budget then shrinks by the group's original demand.
func (d *Distributor) UpdateWeightData(pos math.Vec3) error {
	if !d.initialized {
		return ErrUninitialized
	}

	d.relevant = d.relevant[:0]

	for _, h := range d.order {
		z, ok := d.zones.Get(h)
		if !ok {
			d.weights[h] = 0
			continue
		}

		w := z.BlendWeight(pos)
		d.weights[h] = w
		if w > 0 {
			d.relevant = append(d.relevant, ranked{handle: h, priority: z.Priority})
		}
	}

	if len(d.relevant) <= 1 {
		return nil
	}

	slices.SortStableFunc(d.relevant, func(a, b ranked) int {
		return cmp.Compare(b.priority, a.priority)
	})

	remaining := 1.0
	for start := 0; start < len(d.relevant); {
		end := start + 1
		for end < len(d.relevant) && d.relevant[end].priority == d.relevant[start].priority {
			end++
		}
		remaining = d.distribute(d.relevant[start:end], remaining)
		start = end
	}

	return nil
}

// distribute fits one priority group into the remaining budget and returns
// the budget left for lower priorities.
func (d *Distributor) distribute(group []ranked, remaining float64) float64 {
	sum := 0.0
	for _, r := range group {
		sum += d.weights[r.handle]
	}

	if sum > remaining {
		for _, r := range group {
			d.weights[r.handle] = remaining * d.weights[r.handle] / sum
		}
	}

	return clamp(remaining-sum, 0, 1)
}

// GetWeight returns the last computed weight of a zone.
//
// A handle that was never registered yields ErrUnregisteredZone whether or
// not its zone is alive. NoHandle and registered zones that have since been
// destroyed yield ErrInvalidZone.
func (d *Distributor) GetWeight(h zone.Handle) (float64, error) {
	if !d.initialized {
		return 0, ErrUninitialized
	}
	if h == zone.NoHandle {
		return 0, ErrInvalidZone
	}

	w, ok := d.weights[h]
	if !ok {
		return 0, ErrUnregisteredZone
	}
	if _, alive := d.zones.Get(h); !alive {
		return 0, ErrInvalidZone
	}
	return w, nil
}

// GetAllWeights returns a copy of the current weight of every registered zone.
func (d *Distributor) GetAllWeights() (map[zone.Handle]float64, error) {
	if !d.initialized {
		return nil, ErrUninitialized
	}
	return maps.Clone(d.weights), nil
}

// Handles returns the registered handles in registration order.
func (d *Distributor) Handles() []zone.Handle {
	return slices.Clone(d.order)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
