package sensor

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/stevengo-git/jbotevolver/internal/capability"
)

const defaultNoiseFrequency = 2.0

// Noise perturbs readings with smooth, seed-deterministic simplex noise so
// repeated runs with the same seed see identical sensor errors.
type Noise struct {
	Amplitude float64
	Frequency float64
	field     opensimplex.Noise
}

func NewNoise(amplitude, frequency float64, seed int64) *Noise {
	if frequency <= 0 {
		frequency = defaultNoiseFrequency
	}
	return &Noise{Amplitude: amplitude, Frequency: frequency, field: opensimplex.New(seed)}
}

// NoiseFromArguments reads noise, noisefrequency and seed; it returns nil
// when noise is absent or zero.
func NoiseFromArguments(args capability.Arguments, id int) (*Noise, error) {
	amplitude, err := args.Float("noise", 0)
	if err != nil {
		return nil, err
	}
	if amplitude == 0 {
		return nil, nil
	}
	frequency, err := args.Float("noisefrequency", defaultNoiseFrequency)
	if err != nil {
		return nil, err
	}
	seed, err := args.Int("seed", id)
	if err != nil {
		return nil, err
	}
	return NewNoise(amplitude, frequency, int64(seed)), nil
}

func (n *Noise) Apply(value, time float64, channel int) float64 {
	return value + n.Amplitude*n.field.Eval2(time*n.Frequency, float64(channel)*7.31)
}
