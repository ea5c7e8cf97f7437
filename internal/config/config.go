// Package config loads run configuration from YAML files and SOCIALNAV_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"socialnav-sim/internal/common"
	"socialnav-sim/internal/simulation"
	"socialnav-sim/internal/trajectory"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SOCIALNAV"

var ErrInvalid = errors.New("invalid configuration")

// PersonConfig places one person on the grid.
type PersonConfig struct {
	Position    []float64 `mapstructure:"position" yaml:"position,flow"`
	Orientation float64   `mapstructure:"orientation" yaml:"orientation"`
}

// Config is everything a run needs: the navigation task, the driver and the outputs.
type Config struct {
	Start  []float64      `mapstructure:"start" yaml:"start,flow"`
	End    []float64      `mapstructure:"end" yaml:"end,flow"`
	People []PersonConfig `mapstructure:"people" yaml:"people"`

	Sigma            float64 `mapstructure:"sigma" yaml:"sigma"`
	GridScale        float64 `mapstructure:"grid_scale" yaml:"grid_scale"`
	GridCells        int     `mapstructure:"grid_cells" yaml:"grid_cells"`
	StepLength       float64 `mapstructure:"step_length" yaml:"step_length"`
	ActionCount      int     `mapstructure:"action_count" yaml:"action_count"`
	MaxSteps         int     `mapstructure:"max_steps" yaml:"max_steps"`
	GoalMargin       float64 `mapstructure:"goal_margin" yaml:"goal_margin"`
	SuccessBonus     float64 `mapstructure:"success_bonus" yaml:"success_bonus"`
	StepLimitPenalty float64 `mapstructure:"step_limit_penalty" yaml:"step_limit_penalty"`

	Episodes    int     `mapstructure:"episodes" yaml:"episodes"`
	Policy      string  `mapstructure:"policy" yaml:"policy"`
	Epsilon     float64 `mapstructure:"epsilon" yaml:"epsilon"`
	Seed        uint64  `mapstructure:"seed" yaml:"seed"`
	SmoothSigma float64 `mapstructure:"smooth_sigma" yaml:"smooth_sigma"`

	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	CanvasSize int    `mapstructure:"canvas_size" yaml:"canvas_size"`
}

func setDefaults(v *viper.Viper) {
	s := simulation.DefaultGridScale
	v.SetDefault("start", []float64{13.5 * s, 4.5 * s})
	v.SetDefault("end", []float64{4.5 * s, 13.5 * s})
	v.SetDefault("people", []map[string]any{
		{"position": []float64{4.5 * s, 3 * s}, "orientation": -90.0},
		{"position": []float64{8.25 * s, 9 * s}, "orientation": 90.0},
		{"position": []float64{9 * s, 10.5 * s}, "orientation": -90.0},
	})
	v.SetDefault("sigma", simulation.DefaultSigma)
	v.SetDefault("grid_scale", s)
	v.SetDefault("grid_cells", simulation.DefaultGridCells)
	v.SetDefault("step_length", simulation.DefaultStepLength)
	v.SetDefault("action_count", simulation.DefaultActionCount)
	v.SetDefault("max_steps", simulation.DefaultMaxSteps)
	v.SetDefault("goal_margin", simulation.DefaultGoalMargin)
	v.SetDefault("success_bonus", simulation.DefaultSuccessBonus)
	v.SetDefault("step_limit_penalty", simulation.DefaultStepLimitPenalty)
	v.SetDefault("episodes", 10)
	v.SetDefault("policy", "epsilon")
	v.SetDefault("epsilon", 0.2)
	v.SetDefault("seed", 0)
	v.SetDefault("smooth_sigma", trajectory.DefaultSigma)
	v.SetDefault("output_dir", "pic")
	v.SetDefault("log_file", "log/log.txt")
	v.SetDefault("log_level", "info")
	v.SetDefault("canvas_size", 800)
}

// Load reads the YAML file at path (skipped when empty) over the built-in
// defaults, then applies SOCIALNAV_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that the simulator does not check itself.
func (c *Config) Validate() error {
	if len(c.Start) != 2 {
		return fmt.Errorf("%w: start needs 2 coordinates, got %d", ErrInvalid, len(c.Start))
	}
	if len(c.End) != 2 {
		return fmt.Errorf("%w: end needs 2 coordinates, got %d", ErrInvalid, len(c.End))
	}
	for i, p := range c.People {
		if len(p.Position) != 2 {
			return fmt.Errorf("%w: person %d needs 2 coordinates, got %d", ErrInvalid, i, len(p.Position))
		}
	}
	switch c.Policy {
	case "greedy", "random", "epsilon":
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalid, c.Policy)
	}
	if c.Episodes < 0 {
		return fmt.Errorf("%w: episodes must be non-negative, got %d", ErrInvalid, c.Episodes)
	}
	if c.CanvasSize <= 0 {
		return fmt.Errorf("%w: canvas_size must be positive, got %d", ErrInvalid, c.CanvasSize)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Simulation converts the navigation part of the config, creating one
// obstacle per person.
func (c *Config) Simulation() simulation.Config {
	obstacles := make([]simulation.Obstacle, len(c.People))
	for i, p := range c.People {
		obstacles[i] = simulation.NewObstacle(common.NewVector(p.Position[0], p.Position[1]), p.Orientation)
	}
	return simulation.Config{
		Start:            common.NewVector(c.Start[0], c.Start[1]),
		Target:           common.NewVector(c.End[0], c.End[1]),
		Obstacles:        obstacles,
		Sigma:            c.Sigma,
		GridScale:        c.GridScale,
		GridCells:        c.GridCells,
		StepLength:       c.StepLength,
		ActionCount:      c.ActionCount,
		MaxSteps:         c.MaxSteps,
		GoalMargin:       c.GoalMargin,
		SuccessBonus:     c.SuccessBonus,
		StepLimitPenalty: c.StepLimitPenalty,
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// Save writes the config as YAML.
func Save(cfg *Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
