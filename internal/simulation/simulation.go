package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"socialnav-sim/internal/common"
	"socialnav-sim/internal/field"
)

// State is the lifecycle state of the current episode.
type State int

const (
	Idle State = iota // no episode started yet
	Active
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Terminal:
		return "terminal"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Observation is the agent position followed by the displacement to the target.
type Observation [4]float64

// Info carries per-step diagnostics. The episode summary fields are filled
// only on the terminal step.
type Info struct {
	Distance    float64         `json:"distance"`
	IsSuccess   bool            `json:"is_success"`
	Episode     int             `json:"current_episode,omitempty"`
	TotalReward float64         `json:"reward,omitempty"`
	Route       []common.Vector `json:"route,omitempty"`
	NumSteps    int             `json:"num_step,omitempty"`
}

// StepResult is the outcome of one transition.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool // always false; the step cap terminates instead
	Info        Info
}

// Simulator is the navigation environment. It is not safe for concurrent use;
// the Field it holds is read-only and may be shared.
type Simulator struct {
	cfg       Config
	gridSize  int
	field     *field.Field
	observers []Observer
	logger    *slog.Logger
	rng       *rand.Rand

	state       State
	episode     int
	stepCount   int
	totalReward float64
	agent       agent
}

// Option configures a Simulator at construction.
type Option func(*params)

type params struct {
	generator field.Generator
	field     *field.Field
	observers []Observer
	logger    *slog.Logger
}

// WithGenerator sets the per-person field generator. Defaults to field.DefaultGenerator.
func WithGenerator(gen field.Generator) Option {
	return func(p *params) {
		p.generator = gen
	}
}

// WithField injects a prebuilt field instead of generating one. Its size must
// match the configured grid.
func WithField(f *field.Field) Option {
	return func(p *params) {
		p.field = f
	}
}

// WithObserver adds a rendering sink. Nil observers are ignored.
func WithObserver(o Observer) Option {
	return func(p *params) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(p *params) {
		p.logger = l
	}
}

// New validates cfg and builds the potential field. The simulator starts idle;
// Reset must be called before Step.
func New(ctx context.Context, cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &params{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	g := cfg.GridSize()
	f := p.field
	if f == nil {
		sources := make([]field.Source, len(cfg.Obstacles))
		for i, o := range cfg.Obstacles {
			sources[i] = o
		}
		var err error
		f, err = field.Build(ctx, g, sources, cfg.Target, p.generator)
		if err != nil {
			return nil, fmt.Errorf("failed to build potential field: %w", err)
		}
	} else if f.Size() != g {
		return nil, fmt.Errorf("%w: injected field is %dx%d, grid is %dx%d", field.ErrDimensionMismatch, f.Size(), f.Size(), g, g)
	}

	cfg.Obstacles = append([]Obstacle(nil), cfg.Obstacles...)
	s := &Simulator{
		cfg:       cfg,
		gridSize:  g,
		field:     f,
		observers: p.observers,
		logger:    p.logger,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		state:     Idle,
	}
	s.agent.reset(cfg.Start)
	for _, o := range cfg.Obstacles {
		s.logger.Debug("person placed",
			"id", o.GetID(),
			"position", o.GetPosition().String(),
			"orientation", o.Orientation())
	}
	s.logger.Info("simulator created",
		"grid_size", g,
		"obstacles", len(cfg.Obstacles),
		"field_max", f.Max(),
		"start", cfg.Start.String(),
		"target", cfg.Target.String())
	return s, nil
}

// ResetOption customizes a single Reset call.
type ResetOption func(*Simulator)

// WithSeed reseeds the simulator's random source, used by drivers through Rand.
func WithSeed(seed uint64) ResetOption {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// Reset starts a new episode with the agent at the start point.
func (s *Simulator) Reset(opts ...ResetOption) (Observation, Info) {
	for _, opt := range opts {
		opt(s)
	}
	s.episode++
	s.stepCount = 0
	s.totalReward = 0
	s.agent.reset(s.cfg.Start)
	s.state = Active

	s.logger.Debug("episode reset", "episode", s.episode)
	s.redraw()
	return s.observation(), Info{Distance: s.distance()}
}

// Step moves the agent one step length along the heading selected by action
// and returns the shaped reward. It fails without changing state if action is
// out of range or no episode is active.
func (s *Simulator) Step(action int) (StepResult, error) {
	if action < 0 || action >= s.cfg.ActionCount {
		return StepResult{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAction, action, s.cfg.ActionCount)
	}
	if s.state != Active {
		return StepResult{}, fmt.Errorf("%w (state %s)", ErrEpisodeNotActive, s.state)
	}

	s.stepCount++
	prevDistance := s.distance()
	s.agent.move(common.FromHeading(s.Heading(action), s.cfg.StepLength), 0, float64(s.gridSize-1))
	s.redraw()
	newDistance := s.distance()

	var (
		reward     float64
		terminated bool
		info       = Info{Distance: newDistance}
	)
	if newDistance < s.cfg.StepLength+s.cfg.GoalMargin {
		reward = s.cfg.SuccessBonus
		terminated = true
		s.totalReward += reward
		info.IsSuccess = true
		s.snapshot(fmt.Sprintf("Episode%d.png", s.episode))
	} else {
		x, y := s.agent.position.Cell()
		reward = (prevDistance-newDistance)/s.cfg.StepLength - s.cfg.Sigma*s.field.At(x, y) - 1
		s.totalReward += reward
	}

	if s.stepCount >= s.cfg.MaxSteps {
		reward -= s.cfg.StepLimitPenalty
		s.totalReward -= s.cfg.StepLimitPenalty
		terminated = true
		info.IsSuccess = false
	}

	if terminated {
		s.state = Terminal
		info.Episode = s.episode
		info.TotalReward = s.totalReward
		info.Route = s.agent.routeCopy()
		info.NumSteps = s.stepCount
		s.logger.Info("episode finished",
			"episode", s.episode,
			"success", info.IsSuccess,
			"steps", s.stepCount,
			"total_reward", s.totalReward)
	} else {
		s.logger.Debug("step",
			"episode", s.episode,
			"step", s.stepCount,
			"action", action,
			"position", s.agent.position.String(),
			"reward", reward)
	}

	return StepResult{
		Observation: s.observation(),
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   false,
		Info:        info,
	}, nil
}

// Heading returns the direction in radians selected by action.
func (s *Simulator) Heading(action int) float64 {
	return float64(action) * (2 * math.Pi / float64(s.cfg.ActionCount))
}

// ObservationBounds returns the componentwise low and high limits of observations.
func (s *Simulator) ObservationBounds() (low, high Observation) {
	g := float64(s.gridSize)
	return Observation{0, 0, -g, -g}, Observation{g, g, g, g}
}

// RenderResult asks every observer to persist a snapshot under name.
func (s *Simulator) RenderResult(name string) error {
	frame := s.frame()
	var errs []error
	for _, o := range s.observers {
		if err := o.Snapshot(frame, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config returns the validated configuration the simulator was built with.
func (s *Simulator) Config() Config { return s.cfg }

// GridSize returns the side length of the square grid.
func (s *Simulator) GridSize() int { return s.gridSize }

// Field returns the potential field penalizing proximity to people.
func (s *Simulator) Field() *field.Field { return s.field }

// State returns the episode lifecycle state.
func (s *Simulator) State() State { return s.state }

// Episode returns the number of the current episode, starting at 1.
func (s *Simulator) Episode() int { return s.episode }

// StepCount returns the number of steps taken in the current episode.
func (s *Simulator) StepCount() int { return s.stepCount }

// TotalReward returns the cumulative reward of the current episode.
func (s *Simulator) TotalReward() float64 { return s.totalReward }

// Position returns the agent's current position.
func (s *Simulator) Position() common.Vector { return s.agent.position }

// Target returns the goal position.
func (s *Simulator) Target() common.Vector { return s.cfg.Target }

// Route returns a copy of the positions visited this episode.
func (s *Simulator) Route() []common.Vector { return s.agent.routeCopy() }

// Rand returns the simulator's random source, reseeded by WithSeed.
func (s *Simulator) Rand() *rand.Rand { return s.rng }

// ActionCount returns the number of discrete headings.
func (s *Simulator) ActionCount() int { return s.cfg.ActionCount }

// Obstacles returns a copy of the people on the grid.
func (s *Simulator) Obstacles() []Obstacle { return append([]Obstacle(nil), s.cfg.Obstacles...) }

func (s *Simulator) distance() float64 {
	return s.agent.position.Distance(s.cfg.Target)
}

func (s *Simulator) observation() Observation {
	delta := s.cfg.Target.Subtract(s.agent.position)
	return Observation{s.agent.position.X, s.agent.position.Y, delta.X, delta.Y}
}

// Frame returns the current picture as observers would receive it.
func (s *Simulator) Frame() Frame { return s.frame() }

func (s *Simulator) frame() Frame {
	return Frame{
		Episode:   s.episode,
		Step:      s.stepCount,
		GridSize:  s.gridSize,
		Position:  s.agent.position,
		Target:    s.cfg.Target,
		Route:     s.agent.routeCopy(),
		Obstacles: s.Obstacles(),
		Field:     s.field,
	}
}

func (s *Simulator) redraw() {
	if len(s.observers) == 0 {
		return
	}
	frame := s.frame()
	for _, o := range s.observers {
		o.Redraw(frame)
	}
}

func (s *Simulator) snapshot(name string) {
	if len(s.observers) == 0 {
		return
	}
	if err := s.RenderResult(name); err != nil {
		s.logger.Warn("snapshot failed", "name", name, "error", err)
	}
}
