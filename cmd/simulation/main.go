package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"socialnav-sim/internal/config"
	"socialnav-sim/internal/episodelog"
	"socialnav-sim/internal/policy"
	"socialnav-sim/internal/simulation"
	"socialnav-sim/internal/trajectory"
	"socialnav-sim/internal/visualization"
	"socialnav-sim/internal/visualization/live"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	stepDelay  time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "socialnav",
		Short:        "Socially-aware navigation environment: an agent crosses a grid toward a goal while keeping clear of people.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to the reference scenario)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run episodes headless with a baseline policy and write the episode log and snapshots",
		RunE:  runHeadless,
	}

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Run episodes while showing the grid in a window",
		RunE:  runWithViewer,
	}
	viewCmd.Flags().DurationVar(&stepDelay, "delay", 50*time.Millisecond, "pause after every step")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return config.Save(cfg, cmd.OutOrStdout())
		},
	}

	for _, envFile := range []string{".env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(runCmd, viewCmd, configCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session is one configured simulator with its outputs.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	runID    string
	renderer *visualization.Renderer
	sim      *simulation.Simulator
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	lvl, _ := cfg.Level()
	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})).With("run", runID[:8])

	renderer, err := visualization.NewRenderer(cfg.OutputDir, cfg.CanvasSize)
	if err != nil {
		return nil, err
	}
	sim, err := simulation.New(ctx, cfg.Simulation(),
		simulation.WithObserver(renderer),
		simulation.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create simulator: %w", err)
	}
	return &session{cfg: cfg, logger: logger, runID: runID, renderer: renderer, sim: sim}, nil
}

func (s *session) newPolicy() policy.Policy {
	rng := s.sim.Rand()
	if s.cfg.Seed != 0 {
		rng = rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed))
	}
	n := s.sim.ActionCount()
	switch s.cfg.Policy {
	case "greedy":
		return policy.Greedy{ActionCount: n}
	case "random":
		return policy.Random{ActionCount: n, Rand: rng}
	default:
		return policy.EpsilonGreedy{Greedy: policy.Greedy{ActionCount: n}, Epsilon: s.cfg.Epsilon, Rand: rng}
	}
}

// execute drives the episodes, logs each one, then smooths the last route and
// renders it as RL.png.
func (s *session) execute(ctx context.Context, env policy.Env) (policy.Summary, error) {
	rec, err := episodelog.Open(s.cfg.LogFile, s.runID)
	if err != nil {
		return policy.Summary{}, err
	}
	defer rec.Close()

	sum, err := policy.Rollout(ctx, env, s.newPolicy(), s.cfg.Episodes, rec.Record)
	if err != nil {
		return sum, err
	}
	if len(sum.LastRoute) == 0 {
		return sum, nil
	}

	smoothed := trajectory.Smooth(sum.LastRoute, s.cfg.SmoothSigma)
	if err := rec.RecordSmoothed(smoothed); err != nil {
		return sum, err
	}
	deviation, err := trajectory.Deviation(sum.LastRoute, smoothed)
	if err != nil {
		return sum, err
	}

	frame := s.sim.Frame()
	frame.Route = smoothed
	if err := s.renderer.Snapshot(frame, "RL.png"); err != nil {
		s.logger.Warn("result render failed", "error", err)
	}

	s.logger.Info("run finished",
		"episodes", sum.Episodes,
		"success_rate", sum.SuccessRate(),
		"mean_reward", sum.MeanReward,
		"mean_steps", sum.MeanSteps,
		"route_length", trajectory.Length(sum.LastRoute),
		"smoothed_length", trajectory.Length(smoothed),
		"smoothing_deviation", deviation)
	return sum, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	_, err = s.execute(ctx, s.sim)
	return err
}

// pacedEnv slows a simulator down so the viewer can keep up.
type pacedEnv struct {
	*simulation.Simulator
	delay  time.Duration
	viewer *live.Viewer
}

func (p pacedEnv) Step(action int) (simulation.StepResult, error) {
	res, err := p.Simulator.Step(action)
	p.viewer.SetStatus(fmt.Sprintf("Episode %d  Step %d  Reward %.2f", p.Episode(), p.StepCount(), p.TotalReward()))
	time.Sleep(p.delay)
	return res, err
}

func runWithViewer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	viewer := live.NewViewer(s.renderer, s.cfg.CanvasSize, done)
	var runErr error
	go func() {
		defer close(done)
		_, runErr = s.execute(ctx, pacedEnv{Simulator: s.sim, delay: stepDelay, viewer: viewer})
	}()

	viewErr := viewer.Run("socialnav")
	cancel()
	<-done
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return errors.Join(viewErr, runErr)
}
