// Package main runs a blend zone scene: a listener walks through the zones
// and every consumer follows its aggregated weight.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/blendzones/internal/audio"
	"github.com/Faultbox/blendzones/internal/audio/device"
	"github.com/Faultbox/blendzones/internal/blend"
	"github.com/Faultbox/blendzones/internal/config"
	"github.com/Faultbox/blendzones/internal/logger"
	"github.com/Faultbox/blendzones/internal/scene"
	"github.com/Faultbox/blendzones/internal/sim"
	"github.com/Faultbox/blendzones/internal/zone"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Dump the merged configuration instead of running
	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	// Initialize logger
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Blend Zone Simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("simulation error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("simulation closed normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	doc, err := scene.Load(cfg.Simulation.Scene)
	if err != nil {
		return err
	}

	arena := zone.NewArena()
	handles, err := scene.Build(doc, arena)
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	logger.Info("scene loaded",
		zap.String("path", cfg.Simulation.Scene),
		zap.Int("zones", arena.Len()),
		zap.Int("consumers", len(doc.Consumers)),
	)

	m := blend.NewManager(arena, blend.WithDebug(blend.DebugOptions{
		ZoneWeights:     cfg.Debug.ZoneWeights,
		ConsumerWeights: cfg.Debug.ConsumerWeights,
	}))

	var bus *audio.Bus
	if cfg.Audio.Enabled {
		spk := device.New()
		sr := beep.SampleRate(cfg.Audio.SampleRate)
		if err := spk.Init(sr); err != nil {
			return err
		}
		defer spk.Close()

		bus = audio.NewBus(sr, spk.Locker())
		bus.SetMasterVolume(cfg.Audio.MasterVolume)
		if err := spk.Play(bus.Streamer()); err != nil {
			return err
		}
	}

	layers, err := bindConsumers(m, doc, handles, bus)
	if err != nil {
		return err
	}
	defer func() {
		for _, l := range layers {
			l.Stop()
		}
	}()

	if err := m.Initialize(); err != nil {
		return err
	}
	for _, l := range layers {
		if err := l.Start(); err != nil {
			return err
		}
	}

	runner := sim.NewRunner(doc.NewListener(), []sim.Updater{m},
		sim.WithDebugInterval(cfg.Debug.Interval),
	)
	err = runner.Run(ctx, cfg.Simulation.TickInterval(), cfg.Simulation.MaxTicks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	reportWeights(m)
	return nil
}

// bindConsumers binds every consumer of doc to m. Consumers with a sound
// become audio layers when bus is set; the rest, and those whose sound file
// is missing, are plain parameters.
func bindConsumers(m *blend.Manager, doc *scene.Document, handles map[string]zone.Handle, bus *audio.Bus) ([]*audio.Layer, error) {
	var layers []*audio.Layer
	for _, c := range doc.Consumers {
		hs := make([]zone.Handle, 0, len(c.Zones))
		for _, name := range c.Zones {
			hs = append(hs, handles[name])
		}

		if bus == nil || c.Sound == "" {
			m.Bind(c.Name, blend.NewParameter(c.Name), hs...)
			continue
		}

		path := doc.Resolve(c.Sound)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("sound not found, consumer runs silent",
				zap.String("consumer", c.Name),
				zap.String("path", path),
			)
			m.Bind(c.Name, blend.NewParameter(c.Name), hs...)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("consumer %q: reading sound: %w", c.Name, err)
		}
		l := audio.NewLayer(bus, audio.LayerConfig{
			Name:               c.Name,
			Source:             audio.WAVSource(data, c.Loop),
			Gain:               c.GainOrDefault(),
			StopWhenZeroWeight: c.StopWhenZeroWeight,
		})
		m.Bind(c.Name, l, hs...)
		layers = append(layers, l)
	}
	return layers, nil
}

func reportWeights(m *blend.Manager) {
	weights := m.ConsumerWeights()
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		logger.Info("final weight",
			zap.String("consumer", name),
			zap.Float64("weight", weights[name]),
		)
	}
}
