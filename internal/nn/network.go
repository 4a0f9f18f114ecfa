// Package nn implements the fully connected feed-forward networks used as
// robot controllers. Weights come from outside as a flat genome.
package nn

import (
	"errors"
	"fmt"
)

var ErrGenomeSize = errors.New("genome size mismatch")

type Layer struct {
	// Weights[o][i] connects input i to output o.
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

type Network struct {
	Layers []Layer `json:"layers"`
}

// NewNetwork builds a zero-weight network with the given layer sizes, input
// first. Hidden layers use hidden, the output layer uses output.
func NewNetwork(sizes []int, hidden, output string) (Network, error) {
	if len(sizes) < 2 {
		return Network{}, fmt.Errorf("network needs at least input and output sizes, got %v", sizes)
	}
	for _, name := range []string{hidden, output} {
		if _, err := GetActivation(name); err != nil {
			return Network{}, err
		}
	}
	var net Network
	for l := 1; l < len(sizes); l++ {
		in, out := sizes[l-1], sizes[l]
		if in <= 0 || out <= 0 {
			return Network{}, fmt.Errorf("layer sizes must be positive, got %v", sizes)
		}
		layer := Layer{
			Weights:    make([][]float64, out),
			Biases:     make([]float64, out),
			Activation: hidden,
		}
		if l == len(sizes)-1 {
			layer.Activation = output
		}
		for o := range layer.Weights {
			layer.Weights[o] = make([]float64, in)
		}
		net.Layers = append(net.Layers, layer)
	}
	return net, nil
}

func (n Network) Inputs() int {
	if len(n.Layers) == 0 || len(n.Layers[0].Weights) == 0 {
		return 0
	}
	return len(n.Layers[0].Weights[0])
}

func (n Network) Outputs() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return len(n.Layers[len(n.Layers)-1].Biases)
}

// NumWeights counts every weight and bias, the genome length.
func (n Network) NumWeights() int {
	total := 0
	for _, layer := range n.Layers {
		for _, row := range layer.Weights {
			total += len(row)
		}
		total += len(layer.Biases)
	}
	return total
}

// SetGenome loads weights layer by layer; within a layer each output's
// incoming weights are followed by its bias.
func (n Network) SetGenome(genome []float64) error {
	if len(genome) != n.NumWeights() {
		return fmt.Errorf("%w: network has %d weights, genome has %d", ErrGenomeSize, n.NumWeights(), len(genome))
	}
	k := 0
	for _, layer := range n.Layers {
		for o, row := range layer.Weights {
			k += copy(row, genome[k:k+len(row)])
			layer.Biases[o] = genome[k]
			k++
		}
	}
	return nil
}

func (n Network) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.Inputs() {
		return nil, fmt.Errorf("network expects %d inputs, got %d", n.Inputs(), len(inputs))
	}
	values := inputs
	for li, layer := range n.Layers {
		fn, err := GetActivation(layer.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", li, err)
		}
		next := make([]float64, len(layer.Biases))
		for o, row := range layer.Weights {
			total := layer.Biases[o]
			for i, w := range row {
				total += values[i] * w
			}
			next[o] = fn(total)
		}
		values = next
	}
	return values, nil
}
