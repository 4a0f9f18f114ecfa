package nn

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
)

var (
	ErrActivationExists   = errors.New("activation already registered")
	ErrActivationNotFound = errors.New("activation not found")
)

// ActivationFunc squashes a neuron's weighted sum.
type ActivationFunc func(x float64) float64

func builtInActivations() map[string]ActivationFunc {
	return map[string]ActivationFunc{
		"identity": func(x float64) float64 { return x },
		"relu":     func(x float64) float64 { return math.Max(0, x) },
		"tanh":     math.Tanh,
		"sigmoid":  func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		"step": func(x float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	}
}

// Activation names are matched case-insensitively so controller arguments
// such as activation=Tanh resolve.
var activations = struct {
	sync.RWMutex
	byName map[string]ActivationFunc
}{byName: builtInActivations()}

func activationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func RegisterActivation(name string, fn ActivationFunc) error {
	key := activationKey(name)
	switch {
	case key == "":
		return errors.New("activation name is required")
	case fn == nil:
		return fmt.Errorf("activation %s: function is required", name)
	}
	activations.Lock()
	defer activations.Unlock()
	if _, ok := activations.byName[key]; ok {
		return fmt.Errorf("%w: %s", ErrActivationExists, name)
	}
	activations.byName[key] = fn
	return nil
}

func MustRegisterActivation(name string, fn ActivationFunc) {
	if err := RegisterActivation(name, fn); err != nil {
		panic(err)
	}
}

func GetActivation(name string) (ActivationFunc, error) {
	activations.RLock()
	defer activations.RUnlock()
	if fn, ok := activations.byName[activationKey(name)]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrActivationNotFound, name)
}

// ListActivations returns the registered names in sorted order.
func ListActivations() []string {
	activations.RLock()
	defer activations.RUnlock()
	names := make([]string, 0, len(activations.byName))
	for name := range activations.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func resetActivationRegistryForTests() {
	activations.Lock()
	activations.byName = builtInActivations()
	activations.Unlock()
}
