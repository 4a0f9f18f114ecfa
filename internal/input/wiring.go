// Package input wires a robot's sensors to the ordered scalar vector its
// controller consumes.
package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/robot"
)

var (
	ErrSensorIDNotFound = errors.New("sensor id not found")
	ErrInputArity       = errors.New("input adapter changed its value count")
)

const autoKeyword = "auto"

// Config selects the adapters for one robot: either Auto (one adapter per
// attached sensor, named by the sensor's InputKey) or an explicit list.
type Config struct {
	Auto   bool
	Inputs []capability.Descriptor
	// SkipUnmatched drops sensors whose paired adapter does not accept them
	// instead of failing. Only for legacy configurations.
	SkipUnmatched bool
}

func AutoConfig() Config {
	return Config{Auto: true}
}

// ParseConfig reads "auto" or a comma separated list of adapter entries such
// as "CompassNNInput,WallRayNNInput=(id=1)".
func ParseConfig(text string) (Config, error) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, autoKeyword) {
		return AutoConfig(), nil
	}
	args, err := capability.ParseArguments(text)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	for i := 0; i < args.Len(); i++ {
		item := args.At(i)
		if strings.EqualFold(item.Key, autoKeyword) && args.Len() == 1 {
			return AutoConfig(), nil
		}
		sub, err := capability.ParseArguments(item.Value)
		if err != nil {
			return Config{}, err
		}
		cfg.Inputs = append(cfg.Inputs, capability.Descriptor{Name: item.Key, Args: sub})
	}
	return cfg, nil
}

func (c Config) String() string {
	if c.Auto {
		return autoKeyword
	}
	parts := make([]string, len(c.Inputs))
	for i, d := range c.Inputs {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

type configObject struct {
	Auto          bool                    `json:"auto" yaml:"auto"`
	Inputs        []capability.Descriptor `json:"inputs" yaml:"inputs"`
	SkipUnmatched bool                    `json:"skip_unmatched" yaml:"skip_unmatched"`
}

func (c Config) MarshalJSON() ([]byte, error) {
	if c.Auto && !c.SkipUnmatched {
		return json.Marshal(autoKeyword)
	}
	return json.Marshal(configObject{Auto: c.Auto, Inputs: c.Inputs, SkipUnmatched: c.SkipUnmatched})
}

// UnmarshalJSON accepts "auto", a list of adapter descriptors, or the full
// object form.
func (c *Config) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParseConfig(text)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var list []capability.Descriptor
	if err := json.Unmarshal(data, &list); err == nil {
		*c = Config{Inputs: list}
		return nil
	}
	var obj configObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode inputs: %w", err)
	}
	*c = Config(obj)
	return nil
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseConfig(node.Value)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case yaml.SequenceNode:
		var list []capability.Descriptor
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("decode inputs: %w", err)
		}
		*c = Config{Inputs: list}
		return nil
	default:
		var obj configObject
		if err := node.Decode(&obj); err != nil {
			return fmt.Errorf("decode inputs: %w", err)
		}
		*c = Config(obj)
		return nil
	}
}

// Wiring is the resolved, ordered adapter list of one robot.
type Wiring struct {
	adapters []Adapter
	sizes    []int
	total    int
}

func NewWiring(adapters []Adapter) *Wiring {
	w := &Wiring{adapters: append([]Adapter(nil), adapters...), sizes: make([]int, len(adapters))}
	for i, a := range adapters {
		w.sizes[i] = a.NumValues()
		w.total += w.sizes[i]
	}
	return w
}

// Build resolves the adapters cfg asks for against the robot's sensors.
func Build(reg *capability.Registry, r *robot.Robot, clock Clock, cfg Config) (*Wiring, error) {
	var (
		adapters []Adapter
		err      error
	)
	if cfg.Auto {
		adapters, err = buildAuto(reg, r, cfg.SkipUnmatched)
	} else {
		adapters, err = buildExplicit(reg, r, clock, cfg.Inputs)
	}
	if err != nil {
		return nil, fmt.Errorf("robot %d inputs: %w", r.ID(), err)
	}
	return NewWiring(adapters), nil
}

func buildAuto(reg *capability.Registry, r *robot.Robot, skipUnmatched bool) ([]Adapter, error) {
	var adapters []Adapter
	for _, s := range r.Sensors() {
		key := s.InputKey()
		adapter, err := capability.ResolveAs[Adapter](reg, key, s)
		if err != nil {
			if skipUnmatched && errors.Is(err, capability.ErrUnresolvedCapability) {
				continue
			}
			return nil, fmt.Errorf("sensor %s (id %d): %w", s.Name(), s.ID(), err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

func buildExplicit(reg *capability.Registry, r *robot.Robot, clock Clock, inputs []capability.Descriptor) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(inputs))
	for _, d := range inputs {
		name := d.Args.String("classname", d.Name)
		if clock != nil && !d.Args.Defined("id") && reg.Accepts(name, clock, d.Args) {
			adapter, err := capability.ResolveAs[Adapter](reg, name, clock, d.Args)
			if err != nil {
				return nil, err
			}
			adapters = append(adapters, adapter)
			continue
		}

		id, err := d.Args.Int("id", 0)
		if err != nil {
			return nil, err
		}
		s, ok := r.SensorByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: input %s wants sensor %d", ErrSensorIDNotFound, name, id)
		}
		adapter, err := capability.ResolveAs[Adapter](reg, name, s, d.Args)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

func (w *Wiring) Adapters() []Adapter {
	return append([]Adapter(nil), w.adapters...)
}

// Size is the length of every vector this wiring produces.
func (w *Wiring) Size() int { return w.total }

// Vector concatenates the current values of every adapter in order.
func (w *Wiring) Vector() ([]float64, error) {
	return w.AppendVector(make([]float64, 0, w.total))
}

func (w *Wiring) AppendVector(dst []float64) ([]float64, error) {
	for i, a := range w.adapters {
		if n := a.NumValues(); n != w.sizes[i] {
			return nil, fmt.Errorf("%w: %s declared %d values, now %d", ErrInputArity, a.Name(), w.sizes[i], n)
		}
		for j := 0; j < w.sizes[i]; j++ {
			dst = append(dst, a.Value(j))
		}
	}
	return dst, nil
}
