package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for check-in intervals, in minutes. Overridden by the config
// file; predictions override them again at schedule time when ml_enabled
// is set and no manual override pins the interval.
const (
	DefaultBurnoutCheckMin      = 45
	DefaultProcrastinationMin   = 5
	DefaultBreakElapsedMin      = 30
	DefaultRetrainEverySessions = 5
)

type Intervals struct {
	BurnoutCheckMin    float64 `yaml:"burnout_check_min"`
	ProcrastinationMin float64 `yaml:"procrastination_min"`
	BreakElapsedMin    float64 `yaml:"break_elapsed_min"`
	// Manual pins: when true the corresponding interval is never replaced
	// by a prediction even with ml_enabled.
	ManualBurnout bool `yaml:"manual_burnout"`
	ManualBreak   bool `yaml:"manual_break"`
}

type Config struct {
	DataDir          string    `yaml:"-"`
	DBPath           string    `yaml:"-"`
	Intervals        Intervals `yaml:"intervals"`
	MLEnabled        bool      `yaml:"ml_enabled"`
	RetrainEvery     int       `yaml:"retrain_every_sessions"`
	NotifierManifest string    `yaml:"notifier_manifest"`
}

func (c Config) BurnoutInterval() time.Duration {
	return minutes(c.Intervals.BurnoutCheckMin)
}

func (c Config) ProcrastinationInterval() time.Duration {
	return minutes(c.Intervals.ProcrastinationMin)
}

func (c Config) BreakInterval() time.Duration {
	return minutes(c.Intervals.BreakElapsedMin)
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// Load reads <dataDir>/config.yaml when present and fills defaults
// otherwise. The core treats the result as read-only.
func Load(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "focusd.db"),
		Intervals: Intervals{
			BurnoutCheckMin:    DefaultBurnoutCheckMin,
			ProcrastinationMin: DefaultProcrastinationMin,
			BreakElapsedMin:    DefaultBreakElapsedMin,
		},
		MLEnabled:    true,
		RetrainEvery: DefaultRetrainEverySessions,
	}

	raw, err := os.ReadFile(filepath.Join(dataDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Intervals.BurnoutCheckMin <= 0 {
		cfg.Intervals.BurnoutCheckMin = DefaultBurnoutCheckMin
	}
	if cfg.Intervals.ProcrastinationMin <= 0 {
		cfg.Intervals.ProcrastinationMin = DefaultProcrastinationMin
	}
	if cfg.Intervals.BreakElapsedMin <= 0 {
		cfg.Intervals.BreakElapsedMin = DefaultBreakElapsedMin
	}
	if cfg.RetrainEvery <= 0 {
		cfg.RetrainEvery = DefaultRetrainEverySessions
	}
	cfg.DataDir = dataDir
	cfg.DBPath = filepath.Join(dataDir, "focusd.db")
	return cfg, nil
}
