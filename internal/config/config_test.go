package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/catalog"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/robot"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONAppliesDefaults(t *testing.T) {
	path := writeFile(t, "flock.json", `{
  "ticks": 50,
  "robots": {
    "count": 3,
    "positions": [{"x": 1, "y": 2}],
    "sensors": ["CompassSensor", "NearRobotSensor:id=1,range=2"],
    "inputs": "auto"
  },
  "evaluation": {"name": "Cohesion"}
}`)
	exp, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exp.Name != "flock" || exp.Ticks != 50 || exp.Dt != DefaultDt || exp.Samples != 1 || exp.Workers != 1 {
		t.Fatalf("unexpected run settings %+v", exp)
	}
	if exp.Robots.Count != 3 || len(exp.Robots.Sensors) != 2 || exp.Robots.Sensors[1].Name != "NearRobotSensor" {
		t.Fatalf("unexpected robots %+v", exp.Robots)
	}
	if !exp.Robots.Inputs.Auto {
		t.Fatal("expected auto inputs")
	}
	if exp.Robots.Controller.Name != "FixedController" || exp.Evaluation.Name != "Cohesion" {
		t.Fatalf("unexpected controller %s / evaluation %s", exp.Robots.Controller, exp.Evaluation)
	}
	if exp.Robots.Physics == nil || exp.Robots.Physics.InertiaConstant != 0.05 {
		t.Fatalf("expected default physics, got %+v", exp.Robots.Physics)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "radial.yml", `
name: radial
dt: 0.05
seed: 9
environment:
  arena_size: 4
  walls: true
robots:
  count: 1
  positions: [{x: 0, y: 1}]
  sensors:
    - WallRaySensor:id=0,numberofrays=4
    - name: CompassSensor
      args: id=1
  inputs:
    - WallRayNNInput:id=0
    - CompassNNInput:id=1
    - BiasNNInput
  controller: NeuralNetworkController:hidden=(3),seed=4
evaluation: RadialQualityMetric:usedistance,targetdistance=1
`)
	exp, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exp.Robots.Inputs.Auto || len(exp.Robots.Inputs.Inputs) != 3 {
		t.Fatalf("unexpected inputs %s", exp.Robots.Inputs)
	}
	if len(exp.Walls()) != 4 {
		t.Fatalf("expected 4 walls, got %d", len(exp.Walls()))
	}
	if !exp.Evaluation.Args.Flag("usedistance") {
		t.Fatalf("unexpected evaluation %s", exp.Evaluation)
	}
}

func TestLoadRejectsUnknownFieldsAndBadValues(t *testing.T) {
	if _, err := Load(writeFile(t, "bad.json", `{"tickz": 5}`)); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "dt: -1\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := Load(writeFile(t, "many.json", `{"robots": {"count": 1, "positions": [{"x":0,"y":0},{"x":1,"y":1}]}}`)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildIsDeterministicPerSample(t *testing.T) {
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	exp := Default()
	exp.Robots.Count = 4
	exp.Robots.RandomOrientation = true
	exp.Seed = 3

	positions := func(sample int) []geom.Vec2 {
		s, err := exp.Build(reg, sample, BuildOptions{})
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		var out []geom.Vec2
		for _, r := range s.Robots() {
			out = append(out, r.Position())
		}
		return out
	}
	a, b, c := positions(0), positions(0), positions(1)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample 0 placement differs between builds: %s vs %s", a[i], b[i])
		}
		if a[i] != c[i] {
			same = false
		}
		if math.Abs(a[i].X) > 4 || math.Abs(a[i].Y) > 4 {
			t.Fatalf("robot %d placed outside the arena at %s", i, a[i])
		}
	}
	if same {
		t.Fatal("different samples should place robots differently")
	}
}

func TestBuildAndRunExplicitWiring(t *testing.T) {
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	exp := Default()
	exp.Ticks = 20
	exp.Robots.Positions = []geom.Vec2{geom.V(0, 2)}
	exp.Robots.Sensors = []capability.Descriptor{
		{Name: "CompassSensor", Args: capability.MustParseArguments("id=0,noise=0.01")},
	}
	exp.Robots.Inputs.Auto = false
	exp.Robots.Inputs.Inputs = []capability.Descriptor{{Name: "CompassNNInput"}, {Name: "TimeNNInput"}}
	exp.Robots.Controller = capability.Descriptor{Name: "neural", Args: capability.MustParseArguments("seed=1")}
	exp.Evaluation = capability.Descriptor{Name: "radial"}

	s, err := exp.Build(reg, 0, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	res, err := s.Run(context.Background(), exp.Ticks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Fitness < 0 || res.Fitness > 1 {
		t.Fatalf("radial fitness out of range: %f", res.Fitness)
	}
}

func TestBuildFailsOnUnknownCapability(t *testing.T) {
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	exp := Default()
	exp.Robots.Sensors = []capability.Descriptor{{Name: "SonarSensor"}}
	if _, err := exp.Build(reg, 0, BuildOptions{}); !errors.Is(err, capability.ErrUnknownCapabilityType) {
		t.Fatalf("expected ErrUnknownCapabilityType, got %v", err)
	}
	exp = Default()
	exp.Robots.Inputs.Auto = false
	exp.Robots.Inputs.Inputs = []capability.Descriptor{{Name: "CompassNNInput", Args: capability.MustParseArguments("id=4")}}
	if _, err := exp.Build(reg, 0, BuildOptions{}); err == nil {
		t.Fatal("expected missing sensor id to fail")
	}
}

func TestBuildRequiresWheelActuator(t *testing.T) {
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	exp, err := Load(writeFile(t, "led.json", `{
		"robots": {"count": 1, "sensors": ["CompassSensor"], "actuators": ["LedActuator"], "inputs": "auto"},
		"evaluation": {"name": "Alignment"}
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := exp.Build(reg, 0, BuildOptions{}); !errors.Is(err, robot.ErrMissingRequiredActuator) {
		t.Fatalf("expected ErrMissingRequiredActuator, got %v", err)
	}
}
