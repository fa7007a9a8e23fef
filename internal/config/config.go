// Package config handles simulator configuration loading and management.
package config

import "time"

// Config holds all simulator settings.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Audio      AudioConfig      `yaml:"audio"`
	Debug      DebugConfig      `yaml:"debug"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig holds the scene and scheduler settings.
type SimulationConfig struct {
	Scene    string `yaml:"scene"`     // Path to the zone layout document
	TickRate int    `yaml:"tick_rate"` // Updates per second
	MaxTicks int    `yaml:"max_ticks"` // 0 runs until interrupted
}

// TickInterval returns the wall-clock duration of one tick.
func (s SimulationConfig) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.TickRate)
}

// AudioConfig holds audio output settings.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	MasterVolume float64 `yaml:"master_volume"`
	SampleRate   int     `yaml:"sample_rate"`
}

// DebugConfig selects which weights are written to the log.
type DebugConfig struct {
	ZoneWeights     bool `yaml:"zone_weights"`
	ConsumerWeights bool `yaml:"consumer_weights"`
	Interval        int  `yaml:"interval"` // Ticks between dumps
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Scene:    "scene.yaml",
			TickRate: 30,
			MaxTicks: 0,
		},
		Audio: AudioConfig{
			Enabled:      false,
			MasterVolume: 0.8,
			SampleRate:   44100,
		},
		Debug: DebugConfig{
			ZoneWeights:     false,
			ConsumerWeights: true,
			Interval:        30,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
