package blend

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/blendzones/internal/logger"
	"github.com/Faultbox/blendzones/internal/zone"
	"github.com/Faultbox/blendzones/pkg/math"
)

// DebugOptions selects what DebugWeights writes to the log.
type DebugOptions struct {
	ZoneWeights     bool
	ConsumerWeights bool
}

type binding struct {
	name     string
	consumer Consumer
	sources  []Source
	last     float64
}

// Manager owns a Distributor and the consumers bound to it, and runs one
// evaluation per Update.
type Manager struct {
	mu sync.Mutex

	name     string
	zones    ZoneSource
	dist     *Distributor
	bindings []*binding
	debug    DebugOptions
	log      *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to the global logger named "blend".
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithName labels the manager in log output.
func WithName(name string) Option {
	return func(m *Manager) { m.name = name }
}

// WithDebug enables debug weight dumps.
func WithDebug(opts DebugOptions) Option {
	return func(m *Manager) { m.debug = opts }
}

// NewManager creates a manager whose distributor reads zones from zones.
func NewManager(zones ZoneSource, opts ...Option) *Manager {
	m := &Manager{
		zones: zones,
		dist:  NewDistributor(zones),
		log:   logger.Named("blend"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.name != "" {
		m.log = m.log.With(zap.String("manager", m.name))
	}
	return m
}

// Distributor returns the manager's distributor, for binding its zones to
// consumers of other managers.
func (m *Manager) Distributor() *Distributor {
	return m.dist
}

// Bind attaches a consumer to zones of this manager's distributor.
func (m *Manager) Bind(name string, c Consumer, handles ...zone.Handle) {
	sources := make([]Source, 0, len(handles))
	for _, h := range handles {
		sources = append(sources, Source{Reader: m.dist, Zone: h})
	}
	m.BindSources(name, c, sources...)
}

// BindSources attaches a consumer to arbitrary weight sources, which may
// belong to other distributors.
func (m *Manager) BindSources(name string, c Consumer, sources ...Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings = append(m.bindings, &binding{name: name, consumer: c, sources: sources})
}

// Initialize registers every live zone bound to this manager's distributor.
// It must run after all Bind calls and before the first Update.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var handles []zone.Handle
	for _, b := range m.bindings {
		for _, s := range b.sources {
			if s.Reader != WeightReader(m.dist) {
				continue
			}
			if _, ok := m.zones.Get(s.Zone); ok {
				handles = append(handles, s.Zone)
			}
		}
	}

	if err := m.dist.Initialize(handles...); err != nil {
		logResult(m.log, err)
		return err
	}
	m.log.Info("blend weights initialized",
		zap.Int("zones", len(m.dist.Handles())),
		zap.Int("consumers", len(m.bindings)),
	)
	return nil
}

// Update recomputes zone weights for pos and delivers the aggregated weight
// to every bound consumer. A failed distributor update leaves consumers
// untouched.
func (m *Manager) Update(pos math.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.updateWeights(pos); err != nil {
		return err
	}
	m.deliver()
	return nil
}

// UpdateWeights recomputes zone weights for pos without touching consumers.
// Together with Deliver it lets several managers whose consumers read each
// other's distributors update every distributor before any consumer reads.
func (m *Manager) UpdateWeights(pos math.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateWeights(pos)
}

// Deliver hands every bound consumer its aggregated weight from the current
// distributor state.
func (m *Manager) Deliver() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliver()
}

func (m *Manager) updateWeights(pos math.Vec3) error {
	if err := m.dist.UpdateWeightData(pos); err != nil {
		logResult(m.log, err)
		return fmt.Errorf("updating weights: %w", err)
	}
	return nil
}

func (m *Manager) deliver() {
	for _, b := range m.bindings {
		if b.consumer == nil {
			continue
		}
		w := Aggregate(m.log.With(zap.String("consumer", b.name)), b.sources)
		b.last = w
		b.consumer.SetWeight(w)
	}
}

// ConsumerWeights returns the weight last delivered to each consumer by name.
func (m *Manager) ConsumerWeights() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]float64, len(m.bindings))
	for _, b := range m.bindings {
		out[b.name] = b.last
	}
	return out
}

// ZoneWeights returns the current distributed weight of each live zone by name.
func (m *Manager) ZoneWeights() (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.dist.GetAllWeights()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(all))
	for h, w := range all {
		if z, ok := m.zones.Get(h); ok {
			out[z.String()] = w
		}
	}
	return out, nil
}

// DebugWeights logs zone and consumer weights at info level as selected by
// DebugOptions.
func (m *Manager) DebugWeights() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.debug.ZoneWeights {
		all, err := m.dist.GetAllWeights()
		if err != nil {
			logResult(m.log, err)
		} else {
			for _, h := range m.dist.Handles() {
				z, ok := m.zones.Get(h)
				if !ok {
					continue
				}
				m.log.Info("zone weight",
					zap.String("zone", z.String()),
					zap.String("weight", formatWeight(all[h])),
				)
			}
		}
	}

	if m.debug.ConsumerWeights {
		for _, b := range m.bindings {
			if b.consumer == nil {
				continue
			}
			w, ok := b.consumer.Weight()
			if !ok {
				continue
			}
			m.log.Info("consumer weight",
				zap.String("consumer", b.name),
				zap.String("weight", formatWeight(w)),
			)
		}
	}
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 2, 64)
}
