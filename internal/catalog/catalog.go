// Package catalog registers every built-in capability.
package catalog

import (
	"fmt"

	"github.com/stevengo-git/jbotevolver/internal/actuator"
	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/controller"
	"github.com/stevengo-git/jbotevolver/internal/evaluation"
	"github.com/stevengo-git/jbotevolver/internal/input"
	"github.com/stevengo-git/jbotevolver/internal/sensor"
)

var registrations = []struct {
	kind     capability.Kind
	register func(*capability.Registry) error
}{
	{capability.KindSensor, sensor.Register},
	{capability.KindActuator, actuator.Register},
	{capability.KindInput, input.Register},
	{capability.KindController, controller.Register},
	{capability.KindEvaluator, evaluation.Register},
}

func Register(reg *capability.Registry) error {
	for _, r := range registrations {
		if err := r.register(reg); err != nil {
			return fmt.Errorf("register %s capabilities: %w", r.kind, err)
		}
	}
	return nil
}

func NewRegistry() (*capability.Registry, error) {
	reg := capability.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
