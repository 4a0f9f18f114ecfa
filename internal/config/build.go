package config

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/controller"
	"github.com/stevengo-git/jbotevolver/internal/evaluation"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/input"
	"github.com/stevengo-git/jbotevolver/internal/robot"
	"github.com/stevengo-git/jbotevolver/internal/sim"
)

type BuildOptions struct {
	Logger      *slog.Logger
	Broadcaster sim.Broadcaster
}

// Build assembles the simulator for one sample. Random placement and sensor
// noise are seeded from the experiment seed and the sample index, so a
// sample always replays identically.
func (e Experiment) Build(reg *capability.Registry, sample int, opts BuildOptions) (*sim.Simulator, error) {
	s, err := sim.New(sim.Options{
		Dt:          e.Dt,
		Workers:     e.Workers,
		Walls:       e.Walls(),
		Broadcaster: opts.Broadcaster,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	sampleSeed := e.Seed + int64(sample)*1009
	rng := rand.New(rand.NewPCG(uint64(sampleSeed), 0x6a09e667f3bcc908))
	spread := e.Environment.ArenaSize * 0.4

	for id := 0; id < e.Robots.Count; id++ {
		position := geom.V((rng.Float64()*2-1)*spread, (rng.Float64()*2-1)*spread)
		if id < len(e.Robots.Positions) {
			position = e.Robots.Positions[id]
		}
		orientation := e.Robots.Orientation
		if e.Robots.RandomOrientation {
			orientation = rng.Float64() * geom.TwoPi
		}

		agent, err := e.buildAgent(reg, s.Clock(), robot.Config{
			ID:          id,
			Position:    position,
			Orientation: orientation,
			Radius:      e.Robots.Radius,
			Physics:     *e.Robots.Physics,
		}, sampleSeed)
		if err != nil {
			return nil, err
		}
		if err := s.AddAgent(agent); err != nil {
			return nil, err
		}
	}

	evaluator, err := capability.ResolveAs[evaluation.Evaluator](reg, e.Evaluation.Name, e.Evaluation.Args)
	if err != nil {
		return nil, fmt.Errorf("evaluation: %w", err)
	}
	s.AddEvaluator(evaluator)
	return s, nil
}

func (e Experiment) buildAgent(reg *capability.Registry, clock *sim.Clock, cfg robot.Config, seed int64) (*sim.Agent, error) {
	r, err := robot.New(cfg)
	if err != nil {
		return nil, err
	}
	for i, d := range e.Robots.Sensors {
		args := d.Args
		if args.Defined("noise") && !args.Defined("seed") {
			args = args.With("seed", strconv.FormatInt(seed+int64(cfg.ID)*31+int64(i), 10))
		}
		s, err := capability.ResolveAs[robot.Sensor](reg, d.Name, args)
		if err != nil {
			return nil, fmt.Errorf("robot %d sensor %s: %w", cfg.ID, d.Name, err)
		}
		r.AttachSensor(s)
	}
	for _, d := range e.Robots.Actuators {
		a, err := capability.ResolveAs[robot.Actuator](reg, d.Name, d.Args)
		if err != nil {
			return nil, fmt.Errorf("robot %d actuator %s: %w", cfg.ID, d.Name, err)
		}
		r.AttachActuator(a)
	}
	if _, err := r.RequireWheels(); err != nil {
		return nil, err
	}

	wiring, err := input.Build(reg, r, clock, *e.Robots.Inputs)
	if err != nil {
		return nil, err
	}
	c, err := capability.ResolveAs[controller.Controller](reg, e.Robots.Controller.Name,
		wiring.Size(), controller.NumCommands(r.Actuators()), e.Robots.Controller.Args)
	if err != nil {
		return nil, fmt.Errorf("robot %d controller: %w", cfg.ID, err)
	}
	return &sim.Agent{Robot: r, Wiring: wiring, Controller: c}, nil
}
