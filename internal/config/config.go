// Package config loads experiment files and builds simulators from them.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stevengo-git/jbotevolver/internal/actuator"
	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/controller"
	"github.com/stevengo-git/jbotevolver/internal/evaluation"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/input"
	"github.com/stevengo-git/jbotevolver/internal/robot"
)

const (
	DefaultTicks     = 100
	DefaultDt        = 0.1
	DefaultArenaSize = 10.0
)

var ErrInvalidConfig = errors.New("invalid experiment config")

type Experiment struct {
	Name        string                `json:"name" yaml:"name"`
	Ticks       int                   `json:"ticks" yaml:"ticks"`
	Dt          float64               `json:"dt" yaml:"dt"`
	Samples     int                   `json:"samples" yaml:"samples"`
	Seed        int64                 `json:"seed" yaml:"seed"`
	Workers     int                   `json:"workers" yaml:"workers"`
	Environment Environment           `json:"environment" yaml:"environment"`
	Robots      Robots                `json:"robots" yaml:"robots"`
	Evaluation  capability.Descriptor `json:"evaluation" yaml:"evaluation"`
}

// Environment is a square arena. Walls encloses it in a box; Segments adds
// free-standing walls.
type Environment struct {
	ArenaSize float64        `json:"arena_size" yaml:"arena_size"`
	Walls     bool           `json:"walls" yaml:"walls"`
	Segments  []geom.Segment `json:"segments" yaml:"segments"`
}

type Robots struct {
	Count             int                     `json:"count" yaml:"count"`
	Positions         []geom.Vec2             `json:"positions" yaml:"positions"`
	Orientation       float64                 `json:"orientation" yaml:"orientation"`
	RandomOrientation bool                    `json:"random_orientation" yaml:"random_orientation"`
	Radius            float64                 `json:"radius" yaml:"radius"`
	Physics           *robot.Physics          `json:"physics" yaml:"physics"`
	Sensors           []capability.Descriptor `json:"sensors" yaml:"sensors"`
	Actuators         []capability.Descriptor `json:"actuators" yaml:"actuators"`
	Inputs            *input.Config           `json:"inputs" yaml:"inputs"`
	Controller        capability.Descriptor   `json:"controller" yaml:"controller"`
}

// Default is a single still robot with a compass, scored on alignment.
func Default() Experiment {
	exp := Experiment{
		Robots: Robots{
			Count:   1,
			Sensors: []capability.Descriptor{{Name: "CompassSensor"}},
		},
	}
	exp.ApplyDefaults()
	return exp
}

// Load reads JSON, or YAML when the file ends in .yaml or .yml. Unknown
// fields are rejected.
func Load(path string) (Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, err
	}
	var exp Experiment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&exp); err != nil {
			return Experiment{}, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&exp); err != nil {
			return Experiment{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if exp.Name == "" {
		exp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	exp.ApplyDefaults()
	if err := exp.Validate(); err != nil {
		return Experiment{}, fmt.Errorf("%s: %w", path, err)
	}
	return exp, nil
}

func (e *Experiment) ApplyDefaults() {
	if e.Name == "" {
		e.Name = "experiment"
	}
	if e.Ticks == 0 {
		e.Ticks = DefaultTicks
	}
	if e.Dt == 0 {
		e.Dt = DefaultDt
	}
	if e.Samples == 0 {
		e.Samples = 1
	}
	if e.Workers == 0 {
		e.Workers = 1
	}
	if e.Environment.ArenaSize == 0 {
		e.Environment.ArenaSize = DefaultArenaSize
	}
	if e.Robots.Count == 0 {
		e.Robots.Count = max(1, len(e.Robots.Positions))
	}
	if e.Robots.Physics == nil {
		physics := robot.DefaultPhysics()
		e.Robots.Physics = &physics
	}
	if len(e.Robots.Actuators) == 0 {
		e.Robots.Actuators = []capability.Descriptor{{Name: actuator.TwoWheelActuatorName}}
	}
	if e.Robots.Inputs == nil {
		inputs := input.AutoConfig()
		e.Robots.Inputs = &inputs
	}
	if e.Robots.Controller.Name == "" {
		e.Robots.Controller = capability.Descriptor{Name: controller.FixedControllerName}
	}
	if e.Evaluation.Name == "" {
		e.Evaluation = capability.Descriptor{Name: evaluation.AlignmentName}
	}
}

func (e Experiment) Validate() error {
	switch {
	case e.Ticks < 0:
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, e.Ticks)
	case e.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, e.Dt)
	case e.Samples < 1:
		return fmt.Errorf("%w: samples must be at least 1, got %d", ErrInvalidConfig, e.Samples)
	case e.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, e.Workers)
	case e.Environment.ArenaSize <= 0:
		return fmt.Errorf("%w: arena_size must be positive, got %f", ErrInvalidConfig, e.Environment.ArenaSize)
	case e.Robots.Count < 1:
		return fmt.Errorf("%w: robots.count must be at least 1, got %d", ErrInvalidConfig, e.Robots.Count)
	case len(e.Robots.Positions) > e.Robots.Count:
		return fmt.Errorf("%w: %d positions for %d robots", ErrInvalidConfig, len(e.Robots.Positions), e.Robots.Count)
	case e.Robots.Radius < 0:
		return fmt.Errorf("%w: robots.radius must not be negative", ErrInvalidConfig)
	}
	if e.Robots.Physics != nil {
		if err := e.Robots.Physics.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Walls lists the environment's wall segments.
func (e Experiment) Walls() []geom.Segment {
	walls := append([]geom.Segment(nil), e.Environment.Segments...)
	if e.Environment.Walls {
		walls = append(walls, geom.Box(e.Environment.ArenaSize)...)
	}
	return walls
}
