package blend

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/blendzones/internal/zone"
)

// Consumer receives one aggregated weight in [0, 1] per evaluation.
type Consumer interface {
	SetWeight(w float64)
	// Weight returns the value currently applied by the consumer, if it
	// has one.
	Weight() (float64, bool)
}

// WeightReader looks up distributed zone weights. *Distributor satisfies it.
type WeightReader interface {
	GetWeight(h zone.Handle) (float64, error)
}

// Source names one zone weight a consumer depends on.
type Source struct {
	Reader WeightReader
	Zone   zone.Handle
}

// Aggregate sums the weights of sources and clamps the total to [0, 1].
// Sources that fail to resolve are logged and skipped. Sources may come
// from different distributors.
func Aggregate(log *zap.Logger, sources []Source) float64 {
	total := 0.0
	for _, s := range sources {
		if s.Reader == nil {
			continue
		}
		w, err := s.Reader.GetWeight(s.Zone)
		if err != nil {
			logResult(log, err, zap.Uint32("zone", uint32(s.Zone)))
			continue
		}
		total += w
	}
	return clamp(total, 0, 1)
}

// Parameter is a named value driven by zone weights. It follows the
// convention of game audio parameters and stores the weight as a
// percentage in [0, 100].
type Parameter struct {
	mu    sync.RWMutex
	name  string
	value float64
	set   bool
}

// NewParameter creates a parameter. It holds no value until the first
// SetWeight.
func NewParameter(name string) *Parameter {
	return &Parameter{name: name}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// SetWeight stores w as a percentage.
func (p *Parameter) SetWeight(w float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = clamp(w, 0, 1) * 100
	p.set = true
}

// Value returns the percentage.
func (p *Parameter) Value() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Weight returns the value as a weight in [0, 1].
func (p *Parameter) Weight() (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value / 100, p.set
}
