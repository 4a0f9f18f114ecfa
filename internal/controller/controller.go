// Package controller turns a robot's input vector into actuator commands.
package controller

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/nn"
	"github.com/stevengo-git/jbotevolver/internal/robot"
)

const (
	NeuralControllerName = "NeuralNetworkController"
	FixedControllerName  = "FixedController"
)

var ErrOutputArity = errors.New("controller output arity mismatch")

type Controller interface {
	Decide(inputs []float64) ([]float64, error)
}

// NeuralController feeds the input vector through a feed-forward network.
// Outputs are in the output activation's range, [0,1] for the default sigmoid.
type NeuralController struct {
	net nn.Network
}

func NewNeuralController(inputs, outputs int, args capability.Arguments) (*NeuralController, error) {
	hidden, err := args.Floats("hidden")
	if err != nil {
		return nil, err
	}
	sizes := []int{inputs}
	for _, h := range hidden {
		sizes = append(sizes, int(h))
	}
	sizes = append(sizes, outputs)

	net, err := nn.NewNetwork(sizes, args.String("activation", "tanh"), args.String("outputactivation", "sigmoid"))
	if err != nil {
		return nil, err
	}
	c := &NeuralController{net: net}

	weights, err := args.Floats("weights")
	if err != nil {
		return nil, err
	}
	switch {
	case weights != nil:
		if err := net.SetGenome(weights); err != nil {
			return nil, err
		}
	case args.Defined("seed"):
		seed, err := args.Int("seed", 0)
		if err != nil {
			return nil, err
		}
		c.Randomize(uint64(seed))
	}
	return c, nil
}

func (c *NeuralController) Network() nn.Network { return c.net }

func (c *NeuralController) SetGenome(genome []float64) error { return c.net.SetGenome(genome) }

// Randomize draws every weight uniformly from [-1, 1].
func (c *NeuralController) Randomize(seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	genome := make([]float64, c.net.NumWeights())
	for i := range genome {
		genome[i] = rng.Float64()*2 - 1
	}
	// The genome is sized from NumWeights, so SetGenome cannot fail.
	_ = c.net.SetGenome(genome)
}

func (c *NeuralController) Decide(inputs []float64) ([]float64, error) {
	return c.net.Forward(inputs)
}

// FixedController ignores its inputs and always emits the same commands.
type FixedController struct {
	values []float64
}

// NewFixedController defaults every output to 0.5, which the wheel actuator
// maps to standing still.
func NewFixedController(outputs int, args capability.Arguments) (*FixedController, error) {
	values, err := args.Floats("values")
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make([]float64, outputs)
		for i := range values {
			values[i] = 0.5
		}
	}
	if len(values) != outputs {
		return nil, fmt.Errorf("%w: fixed controller has %d values, robot takes %d commands", ErrOutputArity, len(values), outputs)
	}
	return &FixedController{values: values}, nil
}

func (c *FixedController) Decide([]float64) ([]float64, error) {
	out := make([]float64, len(c.values))
	copy(out, c.values)
	return out, nil
}

// NumCommands sums the command slots of every commandable actuator.
func NumCommands(actuators []robot.Actuator) int {
	total := 0
	for _, a := range actuators {
		if c, ok := a.(robot.Commandable); ok {
			total += c.NumCommands()
		}
	}
	return total
}

// Dispatch splits outputs across the commandable actuators in attachment order.
func Dispatch(outputs []float64, actuators []robot.Actuator) error {
	if want := NumCommands(actuators); len(outputs) != want {
		return fmt.Errorf("%w: got %d outputs, actuators take %d", ErrOutputArity, len(outputs), want)
	}
	k := 0
	for _, a := range actuators {
		c, ok := a.(robot.Commandable)
		if !ok {
			continue
		}
		n := c.NumCommands()
		c.Command(outputs[k : k+n])
		k += n
	}
	return nil
}

func Register(reg *capability.Registry) error {
	err := reg.Register(capability.Spec{
		Name:    NeuralControllerName,
		Kind:    capability.KindController,
		Aliases: []string{"neural", "nn"},
		Constructors: []capability.Constructor{
			{
				Params: []capability.Param{capability.Int("inputs"), capability.Int("outputs"), capability.Args("args")},
				New: func(args []any) (any, error) {
					return NewNeuralController(args[0].(int), args[1].(int), args[2].(capability.Arguments))
				},
			},
		},
	})
	if err != nil {
		return err
	}
	return reg.Register(capability.Spec{
		Name:    FixedControllerName,
		Kind:    capability.KindController,
		Aliases: []string{"fixed"},
		Constructors: []capability.Constructor{
			{
				Params: []capability.Param{capability.Int("inputs"), capability.Int("outputs"), capability.Args("args")},
				New: func(args []any) (any, error) {
					return NewFixedController(args[1].(int), args[2].(capability.Arguments))
				},
			},
		},
	})
}
