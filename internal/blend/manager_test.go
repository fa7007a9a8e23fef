package blend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/blendzones/internal/zone"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestManagerDeliversAggregates(t *testing.T) {
	a := zone.NewArena()
	hall := fixedZone(a, "hall", 0.7, 2)
	alcove := fixedZone(a, "alcove", 0.7, 2)
	street := fixedZone(a, "street", 1.0, 1)

	log, _ := observed()
	m := NewManager(a, WithLogger(log))

	indoor := NewParameter("indoor")
	outdoor := NewParameter("outdoor")
	m.Bind("indoor", indoor, hall, alcove)
	m.Bind("outdoor", outdoor, street)

	_, ok := indoor.Weight()
	assert.False(t, ok, "no value before the first update")

	require.NoError(t, m.Initialize())
	require.NoError(t, m.Update(origin))

	w, ok := indoor.Weight()
	require.True(t, ok)
	assert.InDelta(t, 1.0, w, delta)
	assert.InDelta(t, 100.0, indoor.Value(), 1e-6)

	w, _ = outdoor.Weight()
	assert.InDelta(t, 0.0, w, delta)

	cw := m.ConsumerWeights()
	assert.InDelta(t, 1.0, cw["indoor"], delta)
	assert.InDelta(t, 0.0, cw["outdoor"], delta)

	zw, err := m.ZoneWeights()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, zw["hall"], delta)
	assert.InDelta(t, 0.5, zw["alcove"], delta)
}

func TestManagerUpdateBeforeInitialize(t *testing.T) {
	a := zone.NewArena()
	h := fixedZone(a, "a", 0.5, 0)

	log, logs := observed()
	m := NewManager(a, WithLogger(log))
	p := NewParameter("p")
	m.Bind("p", p, h)

	err := m.Update(origin)
	assert.ErrorIs(t, err, ErrUninitialized)
	_, ok := p.Weight()
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestManagerInitializeTwice(t *testing.T) {
	a := zone.NewArena()
	h := fixedZone(a, "a", 0.5, 0)

	log, logs := observed()
	m := NewManager(a, WithLogger(log))
	m.Bind("p", NewParameter("p"), h)

	require.NoError(t, m.Initialize())
	assert.ErrorIs(t, m.Initialize(), ErrAlreadyInitialized)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestManagerSkipsDestroyedZone(t *testing.T) {
	a := zone.NewArena()
	gone := fixedZone(a, "gone", 0.4, 1)
	kept := fixedZone(a, "kept", 0.3, 1)

	log, logs := observed()
	m := NewManager(a, WithLogger(log))
	p := NewParameter("p")
	m.Bind("p", p, gone, kept)
	require.NoError(t, m.Initialize())

	a.Destroy(gone)
	require.NoError(t, m.Update(origin))

	w, _ := p.Weight()
	assert.InDelta(t, 0.3, w, delta)

	skipped := logs.FilterField(zap.Uint32("zone", uint32(gone)))
	require.Equal(t, 1, skipped.Len())
	assert.Equal(t, zapcore.DebugLevel, skipped.All()[0].Level)
}

func TestManagerRegistersOnlyLiveBoundZones(t *testing.T) {
	a := zone.NewArena()
	bound := fixedZone(a, "bound", 0.5, 0)
	dead := fixedZone(a, "dead", 0.5, 0)
	fixedZone(a, "unbound", 0.5, 0)
	a.Destroy(dead)

	log, _ := observed()
	m := NewManager(a, WithLogger(log))
	m.Bind("p", NewParameter("p"), bound, dead, bound)
	require.NoError(t, m.Initialize())

	assert.Equal(t, []zone.Handle{bound}, m.Distributor().Handles())
}

func TestAggregateAcrossDistributors(t *testing.T) {
	a := zone.NewArena()
	first := fixedZone(a, "first", 0.6, 0)
	second := fixedZone(a, "second", 0.7, 0)

	log, _ := observed()
	m1 := NewManager(a, WithLogger(log), WithName("one"))
	m1.Bind("own", NewParameter("own"), first)
	m2 := NewManager(a, WithLogger(log), WithName("two"))

	mixed := NewParameter("mixed")
	m2.BindSources("mixed", mixed,
		Source{Reader: m1.Distributor(), Zone: first},
		Source{Reader: m2.Distributor(), Zone: second},
	)
	m2.Bind("own", NewParameter("own"), second)

	require.NoError(t, m1.Initialize())
	require.NoError(t, m2.Initialize())
	require.NoError(t, m1.Update(origin))
	require.NoError(t, m2.Update(origin))

	// 0.6 + 0.7 clamps to 1.
	w, _ := mixed.Weight()
	assert.InDelta(t, 1.0, w, delta)
	assert.Equal(t, []zone.Handle{second}, m2.Distributor().Handles())
}

type failingReader struct{ err error }

func (f failingReader) GetWeight(zone.Handle) (float64, error) { return 0, f.err }

type fixedReader float64

func (f fixedReader) GetWeight(zone.Handle) (float64, error) { return float64(f), nil }

func TestAggregate(t *testing.T) {
	log, logs := observed()

	got := Aggregate(log, []Source{
		{Reader: fixedReader(0.25), Zone: 1},
		{Reader: failingReader{ErrUnregisteredZone}, Zone: 2},
		{Reader: nil, Zone: 3},
		{Reader: fixedReader(0.5), Zone: 4},
	})
	assert.InDelta(t, 0.75, got, delta)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	assert.Equal(t, 1.0, Aggregate(log, []Source{{Reader: fixedReader(0.8)}, {Reader: fixedReader(0.8)}}))
	assert.Equal(t, 0.0, Aggregate(log, []Source{{Reader: fixedReader(-0.5)}}))
	assert.Equal(t, 0.0, Aggregate(log, nil))
}

func TestDebugWeights(t *testing.T) {
	a := zone.NewArena()
	h1 := fixedZone(a, "hall", 0.25, 0)
	h2 := fixedZone(a, "yard", 0.5, 0)

	log, logs := observed()
	m := NewManager(a, WithLogger(log), WithDebug(DebugOptions{ZoneWeights: true, ConsumerWeights: true}))
	m.Bind("ambience", NewParameter("ambience"), h1, h2)
	require.NoError(t, m.Initialize())
	require.NoError(t, m.Update(origin))

	m.DebugWeights()

	zones := logs.FilterMessage("zone weight").All()
	require.Len(t, zones, 2)
	assert.Equal(t, "hall", zones[0].ContextMap()["zone"])
	assert.Equal(t, "0.25", zones[0].ContextMap()["weight"])
	assert.Equal(t, "0.50", zones[1].ContextMap()["weight"])
	// Dumps are requested explicitly and must survive an info-level logger.
	assert.Equal(t, zapcore.InfoLevel, zones[0].Level)

	consumers := logs.FilterMessage("consumer weight").All()
	require.Len(t, consumers, 1)
	assert.Equal(t, "0.75", consumers[0].ContextMap()["weight"])
	assert.Equal(t, zapcore.InfoLevel, consumers[0].Level)
}

func TestDebugWeightsDisabled(t *testing.T) {
	a := zone.NewArena()
	h := fixedZone(a, "hall", 0.25, 0)

	log, logs := observed()
	m := NewManager(a, WithLogger(log))
	m.Bind("ambience", NewParameter("ambience"), h)
	require.NoError(t, m.Initialize())
	require.NoError(t, m.Update(origin))

	m.DebugWeights()
	assert.Zero(t, logs.FilterMessage("zone weight").Len())
	assert.Zero(t, logs.FilterMessage("consumer weight").Len())
}

func TestParameterClamps(t *testing.T) {
	p := NewParameter("p")
	assert.Equal(t, "p", p.Name())

	p.SetWeight(1.5)
	assert.Equal(t, 100.0, p.Value())
	p.SetWeight(-1)
	assert.Equal(t, 0.0, p.Value())
}
