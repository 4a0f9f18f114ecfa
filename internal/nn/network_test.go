package nn

import (
	"errors"
	"math"
	"testing"
)

func TestForwardAppliesWeightsBiasAndActivation(t *testing.T) {
	net, err := NewNetwork([]int{2, 1}, "identity", "identity")
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	if net.NumWeights() != 3 {
		t.Fatalf("expected 3 weights, got %d", net.NumWeights())
	}
	if err := net.SetGenome([]float64{0.5, -1, 0.25}); err != nil {
		t.Fatalf("set genome: %v", err)
	}
	out, err := net.Forward([]float64{2, 1})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if len(out) != 1 || math.Abs(out[0]-0.25) > 1e-12 {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestForwardThroughHiddenLayer(t *testing.T) {
	net, err := NewNetwork([]int{1, 2, 1}, "relu", "sigmoid")
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	// hidden: h0 = relu(1*x + 0), h1 = relu(-1*x + 0); output: sigmoid(h0 + h1 + 0)
	if err := net.SetGenome([]float64{1, 0, -1, 0, 1, 1, 0}); err != nil {
		t.Fatalf("set genome: %v", err)
	}
	for _, x := range []float64{-3, 0, 2} {
		out, err := net.Forward([]float64{x})
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		want := 1 / (1 + math.Exp(-math.Abs(x)))
		if math.Abs(out[0]-want) > 1e-12 {
			t.Fatalf("x=%f: output %f want %f", x, out[0], want)
		}
	}
}

func TestNetworkValidation(t *testing.T) {
	if _, err := NewNetwork([]int{3}, "tanh", "tanh"); err == nil {
		t.Fatal("expected size validation")
	}
	if _, err := NewNetwork([]int{2, 1}, "unknown", "tanh"); !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected ErrActivationNotFound, got %v", err)
	}
	net, _ := NewNetwork([]int{2, 2}, "tanh", "tanh")
	if err := net.SetGenome([]float64{1}); !errors.Is(err, ErrGenomeSize) {
		t.Fatalf("expected ErrGenomeSize, got %v", err)
	}
	if _, err := net.Forward([]float64{1}); err == nil {
		t.Fatal("expected input size validation")
	}
}

func TestActivationRegistry(t *testing.T) {
	resetActivationRegistryForTests()
	t.Cleanup(resetActivationRegistryForTests)

	if err := RegisterActivation("TanH", math.Tanh); !errors.Is(err, ErrActivationExists) {
		t.Fatalf("expected ErrActivationExists, got %v", err)
	}
	if err := RegisterActivation("double", func(x float64) float64 { return 2 * x }); err != nil {
		t.Fatalf("register: %v", err)
	}
	fn, err := GetActivation(" Double")
	if err != nil || fn(2) != 4 {
		t.Fatalf("unexpected activation lookup: %v", err)
	}
	names := ListActivations()
	if len(names) != 6 || names[0] != "double" {
		t.Fatalf("unexpected activation names %v", names)
	}
}
