// Package evaluation accumulates fitness over a run from post-step world
// snapshots.
package evaluation

import (
	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

const (
	AlignmentName             = "Alignment"
	RadialQualityMetricName   = "RadialQualityMetric"
	DistanceQualityMetricName = "DistanceQualityMetric"
	CohesionName              = "Cohesion"
)

// Evaluator sees every tick exactly once, after all robots have been
// integrated. Fitness may be read at any time.
type Evaluator interface {
	Update(view world.View)
	Fitness() float64
}

func Register(reg *capability.Registry) error {
	factories := []struct {
		name    string
		aliases []string
		build   func(capability.Arguments) (Evaluator, error)
	}{
		{AlignmentName, []string{"alignment"}, func(capability.Arguments) (Evaluator, error) { return NewAlignment(), nil }},
		{RadialQualityMetricName, []string{"radial"}, func(a capability.Arguments) (Evaluator, error) { return NewRadialQualityMetric(a) }},
		{DistanceQualityMetricName, []string{"distance"}, func(a capability.Arguments) (Evaluator, error) { return NewDistanceQualityMetric(a) }},
		{CohesionName, []string{"cohesion"}, func(capability.Arguments) (Evaluator, error) { return NewCohesion(), nil }},
	}
	for _, f := range factories {
		build := f.build
		err := reg.Register(capability.Spec{
			Name:    f.name,
			Kind:    capability.KindEvaluator,
			Aliases: f.aliases,
			Constructors: []capability.Constructor{
				{
					Params: []capability.Param{capability.Args("args")},
					New:    func(args []any) (any, error) { return build(args[0].(capability.Arguments)) },
				},
				{
					New: func([]any) (any, error) { return build(capability.Arguments{}) },
				},
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
