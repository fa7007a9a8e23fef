package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging and zone weight dumps")
	flagScene  = flag.String("scene", "", "Path to scene document")
	flagAudio  = flag.Bool("audio", false, "Play consumer sounds through the speaker")
	flagTicks  = flag.Int("ticks", 0, "Stop after this many ticks")
	flagRate   = flag.Int("rate", 0, "Ticks per second")

	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the path given via --write-config, if any.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.ZoneWeights = true
		cfg.Debug.ConsumerWeights = true
	}
	if *flagScene != "" {
		cfg.Simulation.Scene = *flagScene
	}
	if *flagAudio {
		cfg.Audio.Enabled = true
	}
	if *flagTicks > 0 {
		cfg.Simulation.MaxTicks = *flagTicks
	}
	if *flagRate > 0 {
		cfg.Simulation.TickRate = *flagRate
	}
}
