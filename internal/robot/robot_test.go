package robot

import (
	"errors"
	"math"
	"testing"

	"github.com/stevengo-git/jbotevolver/internal/geo"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

const tolerance = 1e-12

type recordingActuator struct {
	name    string
	applied *[]string
}

func (a recordingActuator) Name() string { return a.name }
func (a recordingActuator) Apply(*Robot) { *a.applied = append(*a.applied, a.name) }

type stubWheels struct {
	left, right float64
	applies     int
}

func (w *stubWheels) Name() string { return "stub-wheels" }
func (w *stubWheels) Apply(r *Robot) {
	w.applies++
	r.SetWheelSpeeds(w.left, w.right)
}
func (w *stubWheels) SetWheelSpeeds(left, right float64) {
	w.left, w.right = left, right
}

type countingSensor struct {
	id      int
	updates int
	lastX   float64
}

func (s *countingSensor) ID() int { return s.id }

func (s *countingSensor) Name() string { return "counting" }

func (s *countingSensor) InputKey() string { return "CountingNNInput" }

func (s *countingSensor) NumReadings() int { return 1 }

func (s *countingSensor) Reading(int) float64 { return s.lastX }

func (s *countingSensor) Update(self world.RobotState, _ world.View) {
	s.updates++
	s.lastX = self.Position.X
}

func newTestRobot(t *testing.T, orientation float64) *Robot {
	t.Helper()
	r, err := New(Config{ID: 1, Orientation: orientation, Physics: DefaultPhysics()})
	if err != nil {
		t.Fatalf("new robot: %v", err)
	}
	return r
}

func TestStepOrientationMatchesWrappedFormula(t *testing.T) {
	cases := []struct {
		name        string
		orientation float64
		left, right float64
		dt          float64
	}{
		{"straight", 0.3, 0.5, 0.5, 0.1},
		{"turn left", 0.1, -0.2, 0.4, 0.1},
		{"turn right across zero", 0.01, 0.8, -0.8, 0.05},
		{"wrap past 2π", 6.2, 0, 1, 0.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRobot(t, tc.orientation)
			r.SetWheelSpeeds(tc.left, tc.right)
			r.Step(tc.dt)

			sep := r.Physics().WheelSeparation
			want := geom.ModPI2(tc.orientation + tc.dt*0.5/(sep/2)*(tc.right-tc.left))
			if math.Abs(r.Orientation()-want) > tolerance {
				t.Fatalf("orientation %f want %f", r.Orientation(), want)
			}
			if r.Orientation() < 0 || r.Orientation() >= geom.TwoPi {
				t.Fatalf("orientation %f outside [0, 2π)", r.Orientation())
			}
		})
	}
}

func TestReverseAccelerationIsDamped(t *testing.T) {
	forward := newTestRobot(t, 0)
	forward.SetWheelSpeeds(0.6, 0.6)
	forward.Step(0.1)

	reverse := newTestRobot(t, 0)
	reverse.SetWheelSpeeds(-0.6, -0.6)
	reverse.Step(0.1)

	fwd := forward.Velocity().Length()
	rev := reverse.Velocity().Length()
	if math.Abs(rev-0.2*fwd) > tolerance {
		t.Fatalf("reverse acceleration %f, want 0.2 × %f", rev, fwd)
	}
	if reverse.Velocity().X >= 0 {
		t.Fatalf("reversing robot should move backwards, got velocity %s", reverse.Velocity())
	}
	wantFwd := DefaultAccelerationConstant * 0.6 * 0.6
	if math.Abs(fwd-wantFwd) > tolerance {
		t.Fatalf("forward acceleration %f want %f", fwd, wantFwd)
	}
}

func TestVelocityDecaysGeometrically(t *testing.T) {
	r := newTestRobot(t, 0)
	r.velocity = geom.V(1, -0.5)
	v0 := r.velocity

	const ticks = 25
	for i := 0; i < ticks; i++ {
		r.Step(0.1)
	}
	factor := math.Pow(1-DefaultInertiaConstant, ticks)
	want := v0.Scale(factor)
	if r.Velocity().DistanceTo(want) > 1e-12 {
		t.Fatalf("velocity %s want %s", r.Velocity(), want)
	}
}

func TestPositionFollowsVelocity(t *testing.T) {
	r := newTestRobot(t, math.Pi/2)
	r.SetWheelSpeeds(1, 1)
	r.Step(0.5)

	v := r.Velocity()
	if math.Abs(v.X) > 1e-12 || math.Abs(v.Y-DefaultAccelerationConstant) > tolerance {
		t.Fatalf("unexpected velocity %s", v)
	}
	if r.Position().DistanceTo(v.Scale(0.5)) > tolerance {
		t.Fatalf("position %s want %s", r.Position(), v.Scale(0.5))
	}
}

func TestZeroInputDoesNotDrift(t *testing.T) {
	r := newTestRobot(t, 1.2)
	r.Place(geom.V(3, -4), 1.2)
	for i := 0; i < 100; i++ {
		r.Step(0.1)
	}
	if r.Position() != geom.V(3, -4) {
		t.Fatalf("robot drifted to %s", r.Position())
	}
	if r.Orientation() != 1.2 {
		t.Fatalf("robot turned to %f", r.Orientation())
	}
}

func TestActuatorsApplyInAttachmentOrder(t *testing.T) {
	r := newTestRobot(t, 0)
	var applied []string
	r.AttachActuator(recordingActuator{name: "led", applied: &applied})
	r.AttachActuator(recordingActuator{name: "wheels", applied: &applied})
	r.AttachActuator(recordingActuator{name: "buzzer", applied: &applied})

	r.Step(0.1)
	r.Step(0.1)

	want := []string{"led", "wheels", "buzzer", "led", "wheels", "buzzer"}
	if len(applied) != len(want) {
		t.Fatalf("unexpected applications: %v", applied)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Fatalf("application %d: got %s want %s", i, applied[i], want[i])
		}
	}
}

func TestSetMotorSpeedsRequiresWheelActuator(t *testing.T) {
	r := newTestRobot(t, 0)
	if err := r.SetMotorSpeeds(0.2, 0.3); !errors.Is(err, ErrMissingRequiredActuator) {
		t.Fatalf("expected ErrMissingRequiredActuator, got %v", err)
	}

	if _, err := r.RequireWheels(); !errors.Is(err, ErrMissingRequiredActuator) {
		t.Fatalf("expected RequireWheels to fail without wheels, got %v", err)
	}

	wheels := &stubWheels{}
	r.AttachActuator(wheels)
	if got, err := r.RequireWheels(); err != nil || got != WheelDriver(wheels) {
		t.Fatalf("expected attached wheels, got %v err=%v", got, err)
	}
	if err := r.SetMotorSpeeds(0.2, 0.3); err != nil {
		t.Fatalf("set motor speeds: %v", err)
	}
	left, right := r.WheelSpeeds()
	if left != 0.2 || right != 0.3 || wheels.applies != 1 {
		t.Fatalf("unexpected wheel speeds left=%f right=%f applies=%d", left, right, wheels.applies)
	}
}

func TestUpdateSensorsAndLookupByID(t *testing.T) {
	r := newTestRobot(t, 0)
	r.Place(geom.V(2, 0), 0)
	s := &countingSensor{id: 7}
	r.AttachSensor(s)

	r.UpdateSensors(world.View{Robots: []world.RobotState{r.State()}})
	if s.updates != 1 || s.Reading(0) != 2 {
		t.Fatalf("unexpected sensor state: %+v", s)
	}
	if got, ok := r.SensorByID(7); !ok || got != Sensor(s) {
		t.Fatal("expected to find sensor 7")
	}
	if _, ok := r.SensorByID(8); ok {
		t.Fatal("unexpected sensor 8")
	}
}

func TestHeadingGPSAndAddress(t *testing.T) {
	r := newTestRobot(t, math.Pi/2)
	if h := r.CompassHeadingDegrees(); math.Abs(h) > 1e-9 && math.Abs(h-360) > 1e-9 {
		t.Fatalf("north-facing robot should have heading 0, got %f", h)
	}
	conv := geo.DefaultConverter()
	if got := r.GPS(conv); got != conv.Origin {
		t.Fatalf("robot at origin should report origin coordinates, got %s", got)
	}
	r.SetCompassHeadingDegrees(90)
	if math.Abs(r.Orientation()) > 1e-9 && math.Abs(r.Orientation()-2*math.Pi) > 1e-9 {
		t.Fatalf("heading 90 should face east, got orientation %f", r.Orientation())
	}
	if r.NetworkAddress() != "1:1:1:1" {
		t.Fatalf("unexpected network address %s", r.NetworkAddress())
	}
}

func TestNewRejectsInvalidPhysics(t *testing.T) {
	p := DefaultPhysics()
	p.WheelSeparation = 0
	if _, err := New(Config{Physics: p}); err == nil {
		t.Fatal("expected wheel separation validation")
	}
}
