package stats

import (
	"errors"
	"fmt"
	"math"
)

var ErrNoSamples = errors.New("no samples")

// Summary describes the fitness of repeated samples of one experiment.
type Summary struct {
	Samples    int     `json:"samples"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	BestSample int     `json:"best_sample"`
}

// Summarize uses the population standard deviation.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoSamples
	}
	s := Summary{Samples: len(values), Min: values[0], Max: values[0]}
	total := 0.0
	for i, v := range values {
		total += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
			s.BestSample = i
		}
	}
	s.Mean = total / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - s.Mean) * (v - s.Mean)
	}
	s.Std = math.Sqrt(variance / float64(len(values)))
	return s, nil
}

// Overall summarizes the means of several runs.
func Overall(runs []Summary) (Summary, error) {
	means := make([]float64, len(runs))
	for i, r := range runs {
		means[i] = r.Mean
	}
	return Summarize(means)
}

func (s Summary) String() string {
	return fmt.Sprintf("%.6g +- %.6g (min %.6g, max %.6g, n=%d)", s.Mean, s.Std, s.Min, s.Max, s.Samples)
}
