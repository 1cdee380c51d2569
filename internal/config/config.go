// Package config loads engine settings from file, environment, and
// defaults via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pedflow/pedflow/internal/algo"
	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/model"
	"github.com/pedflow/pedflow/internal/observability"
	"github.com/pedflow/pedflow/internal/sim"
)

// Config is the full engine configuration.
type Config struct {
	Logger     observability.LoggerConfig `mapstructure:"logger"`
	Engine     EngineConfig               `mapstructure:"engine"`
	Pathfinder PathfinderConfig           `mapstructure:"pathfinder"`
	Forces     ForcesConfig               `mapstructure:"forces"`
}

// EngineConfig bounds and tunes simulation runs.
type EngineConfig struct {
	MaxSimulationTime float64 `mapstructure:"max_simulation_time"`
	MaxTimeStep       float64 `mapstructure:"max_time_step"`
	MaxSpeedFactor    float64 `mapstructure:"max_speed_factor"`
	MaxAgents         int     `mapstructure:"max_agents"`

	BaseSpeed     float64 `mapstructure:"base_speed"`
	RadiusMin     float64 `mapstructure:"radius_min"`
	RadiusMax     float64 `mapstructure:"radius_max"`
	SpawnAttempts int     `mapstructure:"spawn_attempts"`
	Seed          int64   `mapstructure:"seed"`
	Parallel      bool    `mapstructure:"parallel"`
}

// PathfinderConfig tunes the grid planner.
type PathfinderConfig struct {
	CellSize       float64 `mapstructure:"cell_size"`
	SafetyMargin   float64 `mapstructure:"safety_margin"`
	Padding        float64 `mapstructure:"padding"`
	SnapRadius     int     `mapstructure:"snap_radius"`
	SmoothingAngle float64 `mapstructure:"smoothing_angle"`
	RandomSamples  int     `mapstructure:"random_samples"`
}

// ForcesConfig tunes the force model coefficients.
type ForcesConfig struct {
	DesiredGain       float64 `mapstructure:"desired_gain"`
	RepulsionStrength float64 `mapstructure:"repulsion_strength"`
	ObstacleStrength  float64 `mapstructure:"obstacle_strength"`
	DoorAttraction    float64 `mapstructure:"door_attraction"`
}

func setDefaults(v *viper.Viper) {
	lim := core.DefaultLimits()
	run := sim.DefaultConfig()
	pf := algo.DefaultOptions()
	fp := model.DefaultParams()

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "pedflow")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 14)

	v.SetDefault("engine.max_simulation_time", lim.MaxSimulationTime)
	v.SetDefault("engine.max_time_step", lim.MaxTimeStep)
	v.SetDefault("engine.max_speed_factor", lim.MaxSpeedFactor)
	v.SetDefault("engine.max_agents", lim.MaxAgents)
	v.SetDefault("engine.base_speed", run.BaseSpeed)
	v.SetDefault("engine.radius_min", run.RadiusMin)
	v.SetDefault("engine.radius_max", run.RadiusMax)
	v.SetDefault("engine.spawn_attempts", run.SpawnAttempts)
	v.SetDefault("engine.seed", run.Seed)
	v.SetDefault("engine.parallel", run.Parallel)

	v.SetDefault("pathfinder.cell_size", pf.CellSize)
	v.SetDefault("pathfinder.safety_margin", pf.SafetyMargin)
	v.SetDefault("pathfinder.padding", pf.Padding)
	v.SetDefault("pathfinder.snap_radius", pf.SnapRadius)
	v.SetDefault("pathfinder.smoothing_angle", pf.SmoothingAngle)
	v.SetDefault("pathfinder.random_samples", pf.RandomSamples)

	v.SetDefault("forces.desired_gain", fp.DesiredGain)
	v.SetDefault("forces.repulsion_strength", fp.RepulsionStrength)
	v.SetDefault("forces.obstacle_strength", fp.ObstacleStrength)
	v.SetDefault("forces.door_attraction", fp.DoorAttraction)
}

// Load reads the configuration from the given file, falling back to
// ./pedflow.yaml, PEDFLOW_* environment variables, and built-in defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pedflow")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("PEDFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// RunConfig converts the loaded configuration into a run configuration.
func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		BaseSpeed:     c.Engine.BaseSpeed,
		RadiusMin:     c.Engine.RadiusMin,
		RadiusMax:     c.Engine.RadiusMax,
		SpawnAttempts: c.Engine.SpawnAttempts,
		Seed:          c.Engine.Seed,
		Parallel:      c.Engine.Parallel,
		Limits: core.Limits{
			MaxSimulationTime: c.Engine.MaxSimulationTime,
			MaxTimeStep:       c.Engine.MaxTimeStep,
			MaxSpeedFactor:    c.Engine.MaxSpeedFactor,
			MaxAgents:         c.Engine.MaxAgents,
		},
		Pathfinder: algo.Options{
			CellSize:       c.Pathfinder.CellSize,
			SafetyMargin:   c.Pathfinder.SafetyMargin,
			Padding:        c.Pathfinder.Padding,
			SnapRadius:     c.Pathfinder.SnapRadius,
			SmoothingAngle: c.Pathfinder.SmoothingAngle,
			RandomSamples:  c.Pathfinder.RandomSamples,
		},
		Forces: model.Params{
			DesiredGain:       c.Forces.DesiredGain,
			RepulsionStrength: c.Forces.RepulsionStrength,
			ObstacleStrength:  c.Forces.ObstacleStrength,
			DoorAttraction:    c.Forces.DoorAttraction,
		},
	}
}
