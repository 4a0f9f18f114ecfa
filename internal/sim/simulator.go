// Package sim drives the per-tick loop: sense, decide, actuate, integrate,
// evaluate.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stevengo-git/jbotevolver/internal/controller"
	"github.com/stevengo-git/jbotevolver/internal/evaluation"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/input"
	"github.com/stevengo-git/jbotevolver/internal/robot"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

var ErrDuplicateRobot = errors.New("duplicate robot id")

// Broadcaster receives every post-step snapshot. Implementations must not
// block; the tick does not wait for delivery.
type Broadcaster interface {
	Broadcast(view world.View)
}

// Agent is one robot with its input wiring and controller. A nil controller
// leaves the robot's actuators as they are.
type Agent struct {
	Robot      *robot.Robot
	Wiring     *input.Wiring
	Controller controller.Controller
}

type Options struct {
	Dt          float64
	Workers     int
	Walls       []geom.Segment
	Broadcaster Broadcaster
	Logger      *slog.Logger
}

type Result struct {
	Ticks    int
	Time     float64
	Fitness  float64
	History  []float64
	Duration time.Duration
}

type Simulator struct {
	opts       Options
	log        *slog.Logger
	clock      *Clock
	agents     []*Agent
	evaluators []evaluation.Evaluator
	view       world.View
	history    []float64
}

func New(opts Options) (*Simulator, error) {
	clock, err := NewClock(opts.Dt)
	if err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		opts:  opts,
		log:   logger,
		clock: clock,
	}
	s.view = s.snapshot()
	return s, nil
}

// Clock is the handle to pass to clock-driven input adapters.
func (s *Simulator) Clock() *Clock { return s.clock }

func (s *Simulator) AddAgent(a *Agent) error {
	if a == nil || a.Robot == nil {
		return errors.New("agent needs a robot")
	}
	for _, existing := range s.agents {
		if existing.Robot.ID() == a.Robot.ID() {
			return fmt.Errorf("%w: %d", ErrDuplicateRobot, a.Robot.ID())
		}
	}
	if a.Controller != nil && a.Wiring == nil {
		return fmt.Errorf("robot %d has a controller but no input wiring", a.Robot.ID())
	}
	s.agents = append(s.agents, a)
	s.view = s.snapshot()
	return nil
}

func (s *Simulator) AddEvaluator(e evaluation.Evaluator) {
	s.evaluators = append(s.evaluators, e)
}

func (s *Simulator) Robots() []*robot.Robot {
	out := make([]*robot.Robot, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.Robot
	}
	return out
}

// View is the snapshot evaluators saw on the last tick.
func (s *Simulator) View() world.View { return s.view }

// Fitness sums every evaluator's current fitness.
func (s *Simulator) Fitness() float64 {
	total := 0.0
	for _, e := range s.evaluators {
		total += e.Fitness()
	}
	return total
}

// History holds Fitness after each tick.
func (s *Simulator) History() []float64 {
	return append([]float64(nil), s.history...)
}

// Step advances one tick. Every robot is integrated before any evaluator
// sees the new snapshot.
func (s *Simulator) Step(ctx context.Context) error {
	before := s.view
	for _, a := range s.agents {
		if err := s.control(a, before); err != nil {
			return err
		}
	}

	if err := s.integrate(ctx); err != nil {
		return err
	}
	s.clock.advance()
	s.view = s.snapshot()

	for _, e := range s.evaluators {
		e.Update(s.view)
	}
	if s.opts.Broadcaster != nil {
		s.opts.Broadcaster.Broadcast(s.view)
	}
	s.history = append(s.history, s.Fitness())
	return nil
}

func (s *Simulator) control(a *Agent, view world.View) error {
	a.Robot.UpdateSensors(view)
	if a.Controller == nil {
		return nil
	}
	inputs, err := a.Wiring.Vector()
	if err != nil {
		return fmt.Errorf("robot %d: %w", a.Robot.ID(), err)
	}
	outputs, err := a.Controller.Decide(inputs)
	if err != nil {
		return fmt.Errorf("robot %d controller: %w", a.Robot.ID(), err)
	}
	if err := controller.Dispatch(outputs, a.Robot.Actuators()); err != nil {
		return fmt.Errorf("robot %d: %w", a.Robot.ID(), err)
	}
	return nil
}

// integrate steps every robot. With several workers robots move in parallel
// and Wait is the barrier; a robot's step touches only that robot.
func (s *Simulator) integrate(ctx context.Context) error {
	dt := s.clock.Dt()
	if s.opts.Workers == 1 || len(s.agents) < 2 {
		for _, a := range s.agents {
			a.Robot.Step(dt)
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, a := range s.agents {
		r := a.Robot
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Step(dt)
			return nil
		})
	}
	return g.Wait()
}

func (s *Simulator) snapshot() world.View {
	robots := make([]world.RobotState, len(s.agents))
	for i, a := range s.agents {
		robots[i] = a.Robot.State()
	}
	return world.View{
		Time:   s.clock.Time(),
		Dt:     s.clock.Dt(),
		Robots: robots,
		Walls:  s.opts.Walls,
	}
}

// Run steps ticks times, checking ctx between ticks.
func (s *Simulator) Run(ctx context.Context, ticks int) (Result, error) {
	start := time.Now()
	s.log.Info("simulation started", "robots", len(s.agents), "ticks", ticks, "dt", s.clock.Dt(), "workers", s.opts.Workers)
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return s.result(start), err
		}
		if err := s.Step(ctx); err != nil {
			return s.result(start), fmt.Errorf("tick %d: %w", s.clock.Ticks(), err)
		}
	}
	res := s.result(start)
	s.log.Info("simulation finished", "ticks", res.Ticks, "time", res.Time, "fitness", res.Fitness, "elapsed", res.Duration)
	return res, nil
}

func (s *Simulator) result(start time.Time) Result {
	return Result{
		Ticks:    s.clock.Ticks(),
		Time:     s.clock.Time(),
		Fitness:  s.Fitness(),
		History:  s.History(),
		Duration: time.Since(start),
	}
}
